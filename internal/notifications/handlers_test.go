package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/fitfuel/fitfuel-server/internal/storage/memory"
	"github.com/fitfuel/fitfuel-server/internal/userctx"
	"github.com/google/uuid"
)

func newTestMux(store *memory.NotificationsMemoryStorage) *http.ServeMux {
	handler := NewHandler(NewService(store))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/notifications", handler.HandleList)
	mux.HandleFunc("POST /v1/notifications/read", handler.HandleMarkRead)
	return mux
}

func requestWithUser(method, target string, body []byte, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(userctx.WithUserID(req.Context(), userID.String()))
}

func seedNotification(t *testing.T, store *memory.NotificationsMemoryStorage, userID uuid.UUID, title string, at time.Time) uuid.UUID {
	t.Helper()

	n := &storage.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      "plan_suggested",
		Title:     title,
		Body:      "body",
		CreatedAt: at,
	}
	if err := store.CreateNotification(context.Background(), n); err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return n.ID
}

func TestListNotifications(t *testing.T) {
	store := memory.NewNotificationsMemoryStorage()
	mux := newTestMux(store)
	userID := uuid.New()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	seedNotification(t, store, userID, "older", base)
	seedNotification(t, store, userID, "newer", base.Add(time.Minute))
	seedNotification(t, store, uuid.New(), "foreign", base)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, requestWithUser(http.MethodGet, "/v1/notifications", nil, userID))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp NotificationListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(resp.Notifications))
	}
	if resp.Notifications[0].Title != "newer" {
		t.Fatalf("expected newest first, got %+v", resp.Notifications)
	}
	if resp.UnreadCount != 2 {
		t.Fatalf("expected unread 2, got %d", resp.UnreadCount)
	}
}

func TestMarkReadByIDs(t *testing.T) {
	store := memory.NewNotificationsMemoryStorage()
	mux := newTestMux(store)
	userID := uuid.New()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	first := seedNotification(t, store, userID, "first", base)
	seedNotification(t, store, userID, "second", base.Add(time.Minute))
	foreign := seedNotification(t, store, uuid.New(), "foreign", base)

	body, _ := json.Marshal(MarkReadRequest{IDs: []uuid.UUID{first, foreign}})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, requestWithUser(http.MethodPost, "/v1/notifications/read", body, userID))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp MarkReadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// The foreign id belongs to another user and is silently skipped.
	if resp.Marked != 1 {
		t.Fatalf("expected 1 marked, got %d", resp.Marked)
	}

	count, err := store.UnreadCount(context.Background(), userID)
	if err != nil || count != 1 {
		t.Fatalf("expected 1 unread left, got %d (%v)", count, err)
	}
}

func TestMarkAllReadAndUnreadFilter(t *testing.T) {
	store := memory.NewNotificationsMemoryStorage()
	mux := newTestMux(store)
	userID := uuid.New()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	seedNotification(t, store, userID, "a", base)
	seedNotification(t, store, userID, "b", base.Add(time.Minute))

	body, _ := json.Marshal(MarkReadRequest{All: true})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, requestWithUser(http.MethodPost, "/v1/notifications/read", body, userID))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var marked MarkReadResponse
	json.NewDecoder(rec.Body).Decode(&marked)
	if marked.Marked != 2 {
		t.Fatalf("expected 2 marked, got %d", marked.Marked)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, requestWithUser(http.MethodGet, "/v1/notifications?unread=true", nil, userID))

	var resp NotificationListResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Notifications) != 0 || resp.UnreadCount != 0 {
		t.Fatalf("expected empty unread view, got %+v", resp)
	}
}

func TestMarkReadRequiresIDs(t *testing.T) {
	store := memory.NewNotificationsMemoryStorage()
	mux := newTestMux(store)

	body, _ := json.Marshal(MarkReadRequest{})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, requestWithUser(http.MethodPost, "/v1/notifications/read", body, uuid.New()))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestNotificationsRequireAuth(t *testing.T) {
	mux := newTestMux(memory.NewNotificationsMemoryStorage())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/notifications", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
