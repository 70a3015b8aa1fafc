package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInsufficientStock is returned by CreateOrder when any ordered quantity
// exceeds the current stock. Both backends return it so the shop service can
// map it without knowing which storage is wired.
var ErrInsufficientStock = errors.New("insufficient stock")

// User is an account that can sign in. Role is "user" or "admin"; admins may
// mutate the food/activity catalogue and the product catalogue.
type User struct {
	ID           uuid.UUID
	Email        string // unique, lowercased
	PasswordHash string
	Name         string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the body parameters used by the workout rate calculation and
// the calorie-target computation. One row per user.
type Profile struct {
	UserID        uuid.UUID
	HeightCm      float64
	WeightKg      float64
	DateOfBirth   time.Time
	Gender        string // male | female
	ActivityLevel string // LAZY | MODERATE | ACTIVE | SPORTS_PERSON
	Goal          string // LOSE_WEIGHT | MAINTAIN | GAIN_MUSCLE
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Food is catalogue reference data. Nutrient fields are amounts per
// ServingSizeGm grams; ServingSizeGm must be > 0 for rate computation.
type Food struct {
	ID            uuid.UUID
	Name          string // unique
	Calories      float64
	Protein       float64
	Carbs         float64
	Fats          float64
	ServingSizeGm float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Activity is catalogue reference data. CaloriesPerKg is the energy burned
// per kg of body weight over DurationMin reference minutes; DurationMin must
// be > 0 for rate computation.
type Activity struct {
	ID            uuid.UUID
	Name          string // unique
	CaloriesPerKg float64
	DurationMin   float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DietPlan groups diet items for one user and calendar day.
type DietPlan struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Date      string // YYYY-MM-DD, frozen at creation
	Title     string
	PlanType  string // USER | AI
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DietItem is one scheduled consumption unit. Date duplicates the parent
// plan's date so the ledger can key DailyProgress without a join.
type DietItem struct {
	ID          uuid.UUID
	PlanID      uuid.UUID
	UserID      uuid.UUID
	Date        string // YYYY-MM-DD, frozen at creation
	FoodID      uuid.UUID
	MealSlot    string // breakfast | lunch | dinner | snack
	QuantityGm  float64
	Status      string // PENDING | COMPLETED | SKIPPED
	PlanType    string // USER | AI
	CreatedByID uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WorkoutPlan groups workout items for one user and calendar day.
type WorkoutPlan struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Date      string
	Title     string
	PlanType  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkoutItem is one scheduled exertion unit.
type WorkoutItem struct {
	ID          uuid.UUID
	PlanID      uuid.UUID
	UserID      uuid.UUID
	Date        string
	ActivityID  uuid.UUID
	TimeSlot    string // morning | afternoon | evening
	DurationMin float64
	Status      string
	PlanType    string
	CreatedByID uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DailyProgress is the per-user, per-day aggregate ledger. The intake and
// burned fields are maintained exclusively through ProgressDelta increments;
// StepsCount, WaterIntakeMl and GoalStatus are ancillary and never touched by
// the reconciler.
type DailyProgress struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Date           string // YYYY-MM-DD
	CaloriesIntake float64
	ProteinIntake  float64
	CarbsIntake    float64
	FatsIntake     float64
	CaloriesBurned float64
	StepsCount     int
	WaterIntakeMl  int
	GoalStatus     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProgressDelta is a signed increment over the ledger fields of one
// DailyProgress row. Implementations must apply it as a single atomic
// per-field increment, never as read-modify-write.
type ProgressDelta struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fats     float64
	Burned   float64
}

func (d ProgressDelta) IsZero() bool {
	return d.Calories == 0 && d.Protein == 0 && d.Carbs == 0 && d.Fats == 0 && d.Burned == 0
}

func (d ProgressDelta) Neg() ProgressDelta {
	return ProgressDelta{
		Calories: -d.Calories,
		Protein:  -d.Protein,
		Carbs:    -d.Carbs,
		Fats:     -d.Fats,
		Burned:   -d.Burned,
	}
}

// Product is a shop catalogue entry.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Category    string
	PriceCents  int64
	StockCount  int
	ImageKey    *string // blob object key, nil when no image uploaded
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CartItem is one product line in a user's cart.
type CartItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WishlistItem marks a product saved by a user.
type WishlistItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	CreatedAt time.Time
}

// Order is a placed order; OrderItems carry the price at purchase time.
type Order struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Status     string // placed | shipped | delivered | cancelled
	TotalCents int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type OrderItem struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	ProductID  uuid.UUID
	Quantity   int
	PriceCents int64
}

// Message is one direct message between two users.
type Message struct {
	ID          uuid.UUID
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Body        string
	CreatedAt   time.Time
	ReadAt      *time.Time
}

// ConversationSummary is one row of the conversation list.
type ConversationSummary struct {
	PeerID      uuid.UUID
	LastBody    string
	LastAt      time.Time
	UnreadCount int
}

// Notification is a user-visible inbox record.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Kind      string // plan_suggested | order_placed | message_received
	Title     string
	Body      string
	CreatedAt time.Time
	ReadAt    *time.Time
}

// PasswordResetCode stores a hashed password-reset OTP per email.
type PasswordResetCode struct {
	Email      string
	CodeHash   string
	ExpiresAt  time.Time
	Attempts   int
	LastSentAt time.Time
}

// ReportMeta describes a generated progress report.
type ReportMeta struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Format    string // "pdf" or "csv"
	FromDate  string // YYYY-MM-DD
	ToDate    string // YYYY-MM-DD
	ObjectKey *string // blob key (nil in memory mode)
	SizeBytes int64
	Status    string // "ready" or "failed"
	Error     *string
	CreatedAt time.Time
	Data      []byte // only used in memory mode (not stored in DB)
}

// UsersStorage persists accounts.
type UsersStorage interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
}

// ProfilesStorage persists body profiles (one per user).
type ProfilesStorage interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpsertProfile(ctx context.Context, profile *Profile) error
}

// CatalogueStorage persists the food and activity reference data.
type CatalogueStorage interface {
	CreateFood(ctx context.Context, food *Food) error
	GetFood(ctx context.Context, id uuid.UUID) (*Food, error)
	GetFoodByName(ctx context.Context, name string) (*Food, error)
	ListFoods(ctx context.Context, query string, limit, offset int) ([]Food, error)
	UpdateFood(ctx context.Context, food *Food) error
	DeleteFood(ctx context.Context, id uuid.UUID) error

	CreateActivity(ctx context.Context, activity *Activity) error
	GetActivity(ctx context.Context, id uuid.UUID) (*Activity, error)
	GetActivityByName(ctx context.Context, name string) (*Activity, error)
	ListActivities(ctx context.Context, query string, limit, offset int) ([]Activity, error)
	UpdateActivity(ctx context.Context, activity *Activity) error
	DeleteActivity(ctx context.Context, id uuid.UUID) error
}

// DietPlansStorage persists diet plans and items.
//
// The two ...ApplyingDelta operations are the transactional primitives the
// ledger reconciler relies on: the item mutation and the DailyProgress delta
// must commit or fail together. UpdateItemApplyingDelta upserts the progress
// row (create-at-zero, then increment); DeleteItemApplyingDelta only updates
// an existing row: when no row exists there is nothing to reverse and the
// delta is silently dropped.
type DietPlansStorage interface {
	CreatePlan(ctx context.Context, plan *DietPlan, items []DietItem) error
	GetPlan(ctx context.Context, id uuid.UUID) (*DietPlan, error)
	GetPlanByDate(ctx context.Context, userID uuid.UUID, date string) (*DietPlan, bool, error)
	CreateItem(ctx context.Context, item *DietItem) error
	GetItem(ctx context.Context, id uuid.UUID) (*DietItem, error)
	ListItems(ctx context.Context, planID uuid.UUID) ([]DietItem, error)
	ListItemsByDate(ctx context.Context, userID uuid.UUID, date string) ([]DietItem, error)
	UpdateItemApplyingDelta(ctx context.Context, item *DietItem, delta ProgressDelta) error
	DeleteItemApplyingDelta(ctx context.Context, id uuid.UUID, userID uuid.UUID, date string, delta ProgressDelta) error
}

// WorkoutPlansStorage persists workout plans and items; same transactional
// contract as DietPlansStorage.
type WorkoutPlansStorage interface {
	CreatePlan(ctx context.Context, plan *WorkoutPlan, items []WorkoutItem) error
	GetPlan(ctx context.Context, id uuid.UUID) (*WorkoutPlan, error)
	GetPlanByDate(ctx context.Context, userID uuid.UUID, date string) (*WorkoutPlan, bool, error)
	CreateItem(ctx context.Context, item *WorkoutItem) error
	GetItem(ctx context.Context, id uuid.UUID) (*WorkoutItem, error)
	ListItems(ctx context.Context, planID uuid.UUID) ([]WorkoutItem, error)
	ListItemsByDate(ctx context.Context, userID uuid.UUID, date string) ([]WorkoutItem, error)
	UpdateItemApplyingDelta(ctx context.Context, item *WorkoutItem, delta ProgressDelta) error
	DeleteItemApplyingDelta(ctx context.Context, id uuid.UUID, userID uuid.UUID, date string, delta ProgressDelta) error
}

// ProgressStorage persists DailyProgress rows.
type ProgressStorage interface {
	// GetDaily returns the row for (userID, date); found=false when absent.
	GetDaily(ctx context.Context, userID uuid.UUID, date string) (*DailyProgress, bool, error)

	// ApplyDelta atomically increments the ledger fields for (userID, date),
	// creating the row at zero first when absent.
	ApplyDelta(ctx context.Context, userID uuid.UUID, date string, delta ProgressDelta) error

	// UpsertAncillary sets steps/water/goal-status, creating the row when
	// absent. Nil pointers leave the field unchanged.
	UpsertAncillary(ctx context.Context, userID uuid.UUID, date string, steps *int, waterMl *int, goalStatus *string) (*DailyProgress, error)

	// ListRange returns rows for [from, to] ordered by date ascending.
	ListRange(ctx context.Context, userID uuid.UUID, from, to string) ([]DailyProgress, error)
}

// ShopStorage persists products, carts, wishlists and orders.
type ShopStorage interface {
	CreateProduct(ctx context.Context, product *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, query, category string, limit, offset int) ([]Product, error)
	UpdateProduct(ctx context.Context, product *Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	UpsertCartItem(ctx context.Context, item *CartItem) error
	ListCartItems(ctx context.Context, userID uuid.UUID) ([]CartItem, error)
	DeleteCartItem(ctx context.Context, userID, productID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error

	AddWishlistItem(ctx context.Context, item *WishlistItem) error
	ListWishlistItems(ctx context.Context, userID uuid.UUID) ([]WishlistItem, error)
	DeleteWishlistItem(ctx context.Context, userID, productID uuid.UUID) error

	// CreateOrder persists the order with its items and decrements product
	// stock in one transaction.
	CreateOrder(ctx context.Context, order *Order, items []OrderItem) error
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Order, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) error
}

// MessagesStorage persists direct messages.
type MessagesStorage interface {
	CreateMessage(ctx context.Context, msg *Message) error
	ListConversation(ctx context.Context, userID, peerID uuid.UUID, limit, offset int) ([]Message, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationSummary, error)
	MarkConversationRead(ctx context.Context, userID, peerID uuid.UUID) (int, error)
}

// NotificationsStorage persists the user-facing inbox.
type NotificationsStorage interface {
	CreateNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID, onlyUnread bool, limit, offset int) ([]Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error)
}

// PasswordResetStorage persists hashed password-reset codes keyed by email.
type PasswordResetStorage interface {
	UpsertCode(ctx context.Context, code *PasswordResetCode) error
	GetCode(ctx context.Context, email string) (*PasswordResetCode, error)
	DeleteCode(ctx context.Context, email string) error
	IncrementAttempts(ctx context.Context, email string) (int, error)
}

// ReportsStorage persists report metadata (and data, in memory mode).
type ReportsStorage interface {
	CreateReport(ctx context.Context, report *ReportMeta) error
	GetReport(ctx context.Context, id uuid.UUID) (*ReportMeta, error)
	ListReports(ctx context.Context, userID uuid.UUID, limit, offset int) ([]ReportMeta, error)
	DeleteReport(ctx context.Context, id uuid.UUID) error
}
