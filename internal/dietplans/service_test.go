package dietplans

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/ledger"
	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/fitfuel/fitfuel-server/internal/storage/memory"
	"github.com/google/uuid"
)

const testToday = "2026-03-10"

type testEnv struct {
	service   *Service
	progress  *memory.ProgressMemoryStorage
	catalogue *memory.CatalogueMemoryStorage
	food      *storage.Food
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	progress := memory.NewProgressMemoryStorage()
	plans := memory.NewDietPlansMemoryStorage(progress)
	catalogue := memory.NewCatalogueMemoryStorage()

	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := ledger.NewClockAt(time.UTC, at)

	food := &storage.Food{
		ID:            uuid.New(),
		Name:          "Banana",
		Calories:      89,
		Protein:       1.1,
		Carbs:         22.8,
		Fats:          0.3,
		ServingSizeGm: 100,
	}
	if err := catalogue.CreateFood(context.Background(), food); err != nil {
		t.Fatalf("seed food: %v", err)
	}

	return &testEnv{
		service:   NewService(plans, catalogue, ledger.NewReconciler(clock), clock),
		progress:  progress,
		catalogue: catalogue,
		food:      food,
	}
}

func (e *testEnv) createPlan(t *testing.T, userID uuid.UUID, date string, quantityGm float64) *DietPlanDTO {
	t.Helper()

	plan, err := e.service.CreatePlan(context.Background(), userID, CreatePlanRequest{
		Date:  date,
		Title: "Test plan",
		Items: []NewItemRequest{
			{FoodID: e.food.ID, MealSlot: "breakfast", QuantityGm: quantityGm},
		},
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	return plan
}

func (e *testEnv) intake(t *testing.T, userID uuid.UUID, date string) storage.ProgressDelta {
	t.Helper()

	row, found, err := e.progress.GetDaily(context.Background(), userID, date)
	if err != nil {
		t.Fatalf("get daily: %v", err)
	}
	if !found {
		return storage.ProgressDelta{}
	}
	return storage.ProgressDelta{
		Calories: row.CaloriesIntake,
		Protein:  row.ProteinIntake,
		Carbs:    row.CarbsIntake,
		Fats:     row.FatsIntake,
		Burned:   row.CaloriesBurned,
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestCreatePlanHasNoLedgerEffect(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	plan := env.createPlan(t, userID, testToday, 200)
	if len(plan.Items) != 1 || plan.Items[0].Status != ledger.StatusPending {
		t.Fatalf("expected one PENDING item, got %+v", plan.Items)
	}

	if got := env.intake(t, userID, testToday); !got.IsZero() {
		t.Fatalf("plan creation must not touch the ledger, got %+v", got)
	}

	fetched, err := env.service.GetPlanForDate(context.Background(), userID, testToday)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if fetched.ID != plan.ID || len(fetched.Items) != 1 {
		t.Fatalf("unexpected plan: %+v", fetched)
	}
}

func TestDuplicatePlanForDate(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	env.createPlan(t, userID, testToday, 100)
	_, err := env.service.CreatePlan(context.Background(), userID, CreatePlanRequest{Date: testToday})
	if err != ErrPlanExists {
		t.Fatalf("expected ErrPlanExists, got %v", err)
	}
}

func TestCompleteItemAppliesContribution(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	plan := env.createPlan(t, userID, testToday, 200)
	itemID := plan.Items[0].ID

	item, err := env.service.UpdateItem(context.Background(), userID, itemID, UpdateItemRequest{
		Status: strPtr(ledger.StatusCompleted),
	})
	if err != nil {
		t.Fatalf("complete item: %v", err)
	}
	if item.Status != ledger.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", item.Status)
	}

	// 89 kcal per 100g at 200g.
	got := env.intake(t, userID, testToday)
	if !approx(got.Calories, 178) {
		t.Fatalf("expected 178 kcal, got %g", got.Calories)
	}

	// Re-sending COMPLETED is idempotent.
	if _, err := env.service.UpdateItem(context.Background(), userID, itemID, UpdateItemRequest{
		Status: strPtr(ledger.StatusCompleted),
	}); err != nil {
		t.Fatalf("repeat complete: %v", err)
	}
	if got := env.intake(t, userID, testToday); !approx(got.Calories, 178) {
		t.Fatalf("idempotence violated: %g", got.Calories)
	}
}

func TestQuantityChangeWhileCompleted(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	plan := env.createPlan(t, userID, testToday, 200)
	itemID := plan.Items[0].ID

	if _, err := env.service.UpdateItem(context.Background(), userID, itemID, UpdateItemRequest{
		Status: strPtr(ledger.StatusCompleted),
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := env.service.UpdateItem(context.Background(), userID, itemID, UpdateItemRequest{
		QuantityGm: floatPtr(100),
	}); err != nil {
		t.Fatalf("requantify: %v", err)
	}

	if got := env.intake(t, userID, testToday); !approx(got.Calories, 89) {
		t.Fatalf("expected 89 kcal after halving, got %g", got.Calories)
	}
}

func TestSkipReversesContribution(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	plan := env.createPlan(t, userID, testToday, 200)
	itemID := plan.Items[0].ID

	for _, status := range []string{ledger.StatusCompleted, ledger.StatusSkipped} {
		if _, err := env.service.UpdateItem(context.Background(), userID, itemID, UpdateItemRequest{
			Status: strPtr(status),
		}); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	if got := env.intake(t, userID, testToday); !got.IsZero() {
		t.Fatalf("skip must reverse the contribution, got %+v", got)
	}
}

func TestDeleteCompletedItemReverses(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	plan := env.createPlan(t, userID, testToday, 150)
	itemID := plan.Items[0].ID

	if _, err := env.service.UpdateItem(context.Background(), userID, itemID, UpdateItemRequest{
		Status: strPtr(ledger.StatusCompleted),
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := env.service.DeleteItem(context.Background(), userID, itemID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if got := env.intake(t, userID, testToday); !got.IsZero() {
		t.Fatalf("delete must reverse the contribution, got %+v", got)
	}

	if _, err := env.service.UpdateItem(context.Background(), userID, itemID, UpdateItemRequest{
		Status: strPtr(ledger.StatusCompleted),
	}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestYesterdayItemIsLocked(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	plan := env.createPlan(t, userID, "2026-03-09", 100)
	itemID := plan.Items[0].ID

	_, err := env.service.UpdateItem(context.Background(), userID, itemID, UpdateItemRequest{
		Status: strPtr(ledger.StatusCompleted),
	})
	if err != ledger.ErrItemLocked {
		t.Fatalf("expected ErrItemLocked, got %v", err)
	}

	if err := env.service.DeleteItem(context.Background(), userID, itemID); err != ledger.ErrItemLocked {
		t.Fatalf("expected ErrItemLocked on delete, got %v", err)
	}
}

func TestItemsOfOtherUsersAreInvisible(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	intruder := uuid.New()

	plan := env.createPlan(t, owner, testToday, 100)
	itemID := plan.Items[0].ID

	if _, err := env.service.UpdateItem(context.Background(), intruder, itemID, UpdateItemRequest{
		Status: strPtr(ledger.StatusCompleted),
	}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for foreign item, got %v", err)
	}
}

func TestConcurrentCompletions(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	plan, err := env.service.CreatePlan(context.Background(), userID, CreatePlanRequest{
		Date: testToday,
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	const n = 20
	itemIDs := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		item, err := env.service.AddItem(context.Background(), userID, plan.ID, NewItemRequest{
			FoodID:     env.food.ID,
			MealSlot:   "snack",
			QuantityGm: 100,
		})
		if err != nil {
			t.Fatalf("add item %d: %v", i, err)
		}
		itemIDs = append(itemIDs, item.ID)
	}

	var wg sync.WaitGroup
	for _, id := range itemIDs {
		wg.Add(1)
		go func(itemID uuid.UUID) {
			defer wg.Done()
			if _, err := env.service.UpdateItem(context.Background(), userID, itemID, UpdateItemRequest{
				Status: strPtr(ledger.StatusCompleted),
			}); err != nil {
				t.Errorf("complete %s: %v", itemID, err)
			}
		}(id)
	}
	wg.Wait()

	// Sum of n independent completions, regardless of interleaving.
	got := env.intake(t, userID, testToday)
	if !approx(got.Calories, float64(n)*89) {
		t.Fatalf("expected %g kcal, got %g", float64(n)*89, got.Calories)
	}
}
