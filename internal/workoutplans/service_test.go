package workoutplans

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/ledger"
	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/fitfuel/fitfuel-server/internal/storage/memory"
	"github.com/google/uuid"
)

const testToday = "2026-03-10"

type testEnv struct {
	service  *Service
	progress *memory.ProgressMemoryStorage
	profiles *memory.ProfilesMemoryStorage
	activity *storage.Activity
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	progress := memory.NewProgressMemoryStorage()
	plans := memory.NewWorkoutPlansMemoryStorage(progress)
	catalogue := memory.NewCatalogueMemoryStorage()
	profiles := memory.NewProfilesMemoryStorage()

	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := ledger.NewClockAt(time.UTC, at)

	// 2.5 kcal per kg over a 30 minute reference run.
	activity := &storage.Activity{
		ID:            uuid.New(),
		Name:          "Running",
		CaloriesPerKg: 2.5,
		DurationMin:   30,
	}
	if err := catalogue.CreateActivity(context.Background(), activity); err != nil {
		t.Fatalf("seed activity: %v", err)
	}

	return &testEnv{
		service:  NewService(plans, catalogue, profiles, ledger.NewReconciler(clock), clock),
		progress: progress,
		profiles: profiles,
		activity: activity,
	}
}

func (e *testEnv) seedProfile(t *testing.T, userID uuid.UUID, weightKg float64) {
	t.Helper()

	err := e.profiles.UpsertProfile(context.Background(), &storage.Profile{
		UserID:        userID,
		HeightCm:      180,
		WeightKg:      weightKg,
		DateOfBirth:   time.Date(1994, 6, 15, 0, 0, 0, 0, time.UTC),
		Gender:        "male",
		ActivityLevel: "MODERATE",
		Goal:          "MAINTAIN",
	})
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func (e *testEnv) burned(t *testing.T, userID uuid.UUID, date string) float64 {
	t.Helper()

	row, found, err := e.progress.GetDaily(context.Background(), userID, date)
	if err != nil {
		t.Fatalf("get daily: %v", err)
	}
	if !found {
		return 0
	}
	return row.CaloriesBurned
}

func (e *testEnv) createPlan(t *testing.T, userID uuid.UUID, date string, durationMin float64) *WorkoutPlanDTO {
	t.Helper()

	plan, err := e.service.CreatePlan(context.Background(), userID, CreatePlanRequest{
		Date: date,
		Items: []NewItemRequest{
			{ActivityID: e.activity.ID, TimeSlot: "morning", DurationMin: durationMin},
		},
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	return plan
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestCompleteWorkoutBurnsByWeight(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	env.seedProfile(t, userID, 80)

	plan := env.createPlan(t, userID, testToday, 60)
	itemID := plan.Items[0].ID

	if _, err := env.service.UpdateItem(context.Background(), userID, itemID, UpdateItemRequest{
		Status: strPtr(ledger.StatusCompleted),
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// (2.5 / 30) kcal/min/kg * 60 min * 80 kg = 400 kcal.
	if got := env.burned(t, userID, testToday); !approx(got, 400) {
		t.Fatalf("expected 400 kcal burned, got %g", got)
	}
}

func TestDurationChangeWhileCompleted(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	env.seedProfile(t, userID, 80)

	plan := env.createPlan(t, userID, testToday, 60)
	itemID := plan.Items[0].ID

	if _, err := env.service.UpdateItem(context.Background(), userID, itemID, UpdateItemRequest{
		Status: strPtr(ledger.StatusCompleted),
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := env.service.UpdateItem(context.Background(), userID, itemID, UpdateItemRequest{
		DurationMin: floatPtr(30),
	}); err != nil {
		t.Fatalf("shorten: %v", err)
	}

	if got := env.burned(t, userID, testToday); !approx(got, 200) {
		t.Fatalf("expected 200 kcal after halving, got %g", got)
	}
}

func TestDeleteCompletedWorkoutReverses(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	env.seedProfile(t, userID, 70)

	plan := env.createPlan(t, userID, testToday, 45)
	itemID := plan.Items[0].ID

	if _, err := env.service.UpdateItem(context.Background(), userID, itemID, UpdateItemRequest{
		Status: strPtr(ledger.StatusCompleted),
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := env.service.DeleteItem(context.Background(), userID, itemID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if got := env.burned(t, userID, testToday); !approx(got, 0) {
		t.Fatalf("expected full reversal, got %g", got)
	}
}

func TestCompleteWithoutProfileFailsIntegrity(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	plan := env.createPlan(t, userID, testToday, 60)
	itemID := plan.Items[0].ID

	_, err := env.service.UpdateItem(context.Background(), userID, itemID, UpdateItemRequest{
		Status: strPtr(ledger.StatusCompleted),
	})
	if !errors.Is(err, ledger.ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity without a profile weight, got %v", err)
	}
}

func TestYesterdayWorkoutIsLocked(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	env.seedProfile(t, userID, 80)

	plan := env.createPlan(t, userID, "2026-03-09", 60)
	itemID := plan.Items[0].ID

	_, err := env.service.UpdateItem(context.Background(), userID, itemID, UpdateItemRequest{
		Status: strPtr(ledger.StatusCompleted),
	})
	if err != ledger.ErrItemLocked {
		t.Fatalf("expected ErrItemLocked, got %v", err)
	}
}

func TestInvalidTimeSlotRejected(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	_, err := env.service.CreatePlan(context.Background(), userID, CreatePlanRequest{
		Date: testToday,
		Items: []NewItemRequest{
			{ActivityID: env.activity.ID, TimeSlot: "midnight", DurationMin: 30},
		},
	})
	if err != ErrInvalidTimeSlot {
		t.Fatalf("expected ErrInvalidTimeSlot, got %v", err)
	}
}
