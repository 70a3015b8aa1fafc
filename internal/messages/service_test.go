package messages

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/fitfuel/fitfuel-server/internal/storage/memory"
	"github.com/google/uuid"
)

type testEnv struct {
	service       *Service
	messages      *memory.MessagesMemoryStorage
	users         *memory.UsersMemoryStorage
	notifications *memory.NotificationsMemoryStorage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		messages:      memory.NewMessagesMemoryStorage(),
		users:         memory.NewUsersMemoryStorage(),
		notifications: memory.NewNotificationsMemoryStorage(),
	}
	env.service = NewService(env.messages, env.users, env.notifications)
	return env
}

func (e *testEnv) seedUser(t *testing.T, name string) uuid.UUID {
	t.Helper()

	user := &storage.User{
		ID:    uuid.New(),
		Email: name + "@example.com",
		Name:  name,
		Role:  "user",
	}
	if err := e.users.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return user.ID
}

func TestSendValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	if _, err := env.service.Send(ctx, alice, bob, "   "); !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
	if _, err := env.service.Send(ctx, alice, alice, "hi me"); !errors.Is(err, ErrSelfMessage) {
		t.Fatalf("expected ErrSelfMessage, got %v", err)
	}
	if _, err := env.service.Send(ctx, alice, uuid.New(), "hi"); !errors.Is(err, ErrPeerNotFound) {
		t.Fatalf("expected ErrPeerNotFound, got %v", err)
	}

	long := make([]byte, maxBodyLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := env.service.Send(ctx, alice, bob, string(long)); !errors.Is(err, ErrBodyTooLong) {
		t.Fatalf("expected ErrBodyTooLong, got %v", err)
	}
}

func TestSendAndConversationList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	msg, err := env.service.Send(ctx, alice, bob, "hello bob")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.SenderID != alice || msg.Body != "hello bob" {
		t.Fatalf("unexpected message: %+v", msg)
	}

	// Bob sees one conversation with one unread message.
	conversations, err := env.service.ListConversations(ctx, bob)
	if err != nil {
		t.Fatalf("conversations: %v", err)
	}
	if len(conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(conversations))
	}
	c := conversations[0]
	if c.PeerID != alice || c.PeerName != "alice" || c.UnreadCount != 1 || c.LastBody != "hello bob" {
		t.Fatalf("unexpected conversation: %+v", c)
	}

	// Alice's own view carries no unread count.
	conversations, err = env.service.ListConversations(ctx, alice)
	if err != nil || len(conversations) != 1 {
		t.Fatalf("expected 1 conversation for alice, got %+v (%v)", conversations, err)
	}
	if conversations[0].UnreadCount != 0 {
		t.Fatalf("sender must not count own message unread: %+v", conversations[0])
	}

	count, err := env.notifications.UnreadCount(ctx, bob)
	if err != nil || count != 1 {
		t.Fatalf("expected one notification for bob, got %d (%v)", count, err)
	}
}

func TestReadingConversationMarksRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	if _, err := env.service.Send(ctx, alice, bob, "first"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := env.service.Send(ctx, alice, bob, "second"); err != nil {
		t.Fatalf("send: %v", err)
	}

	msgs, err := env.service.ListConversation(ctx, bob, alice, 50, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}

	conversations, err := env.service.ListConversations(ctx, bob)
	if err != nil || len(conversations) != 1 {
		t.Fatalf("conversations: %+v (%v)", conversations, err)
	}
	if conversations[0].UnreadCount != 0 {
		t.Fatalf("reading the conversation must clear unread, got %d", conversations[0].UnreadCount)
	}
}

func TestListConversationPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := env.messages.CreateMessage(ctx, &storage.Message{
			ID:          uuid.New(),
			SenderID:    alice,
			RecipientID: bob,
			Body:        string(rune('a' + i)),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	// Newest first: page 1 is e,d then c,b then a.
	page, err := env.service.ListConversation(ctx, bob, alice, 2, 0)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page) != 2 || page[0].Body != "e" || page[1].Body != "d" {
		t.Fatalf("unexpected page 1: %+v", page)
	}

	page, err = env.service.ListConversation(ctx, bob, alice, 2, 4)
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(page) != 1 || page[0].Body != "a" {
		t.Fatalf("unexpected page 3: %+v", page)
	}
}
