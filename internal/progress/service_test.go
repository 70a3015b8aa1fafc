package progress

import (
	"context"
	"testing"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/config"
	"github.com/fitfuel/fitfuel-server/internal/ledger"
	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/fitfuel/fitfuel-server/internal/storage/memory"
	"github.com/google/uuid"
)

const testToday = "2026-03-10"

func newTestService() (*Service, *memory.ProgressMemoryStorage) {
	cfg := &config.Config{
		ProgressMaxStepsPerDay:   100000,
		ProgressMaxWaterMlPerDay: 10000,
	}
	st := memory.NewProgressMemoryStorage()
	clock := ledger.NewClockAt(time.UTC, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	return NewService(cfg, st, clock), st
}

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func TestGetDailyAbsentRowReadsAsZero(t *testing.T) {
	service, _ := newTestService()
	userID := uuid.New()

	row, err := service.GetDaily(context.Background(), userID, "")
	if err != nil {
		t.Fatalf("get daily: %v", err)
	}
	if row.Date != testToday {
		t.Fatalf("expected today %s, got %s", testToday, row.Date)
	}
	if row.CaloriesIntake != 0 || row.StepsCount != 0 {
		t.Fatalf("absent row must read as zeros: %+v", row)
	}
}

func TestUpdateAncillary(t *testing.T) {
	service, st := newTestService()
	userID := uuid.New()

	row, err := service.UpdateAncillary(context.Background(), userID, testToday, UpdateAncillaryRequest{
		StepsCount:    intPtr(8000),
		WaterIntakeMl: intPtr(1500),
		GoalStatus:    strPtr("IN_PROGRESS"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if row.StepsCount != 8000 || row.WaterIntakeMl != 1500 || row.GoalStatus != "IN_PROGRESS" {
		t.Fatalf("unexpected row: %+v", row)
	}

	// Partial patch leaves other fields alone.
	row, err = service.UpdateAncillary(context.Background(), userID, testToday, UpdateAncillaryRequest{
		WaterIntakeMl: intPtr(2000),
	})
	if err != nil {
		t.Fatalf("partial update: %v", err)
	}
	if row.StepsCount != 8000 || row.WaterIntakeMl != 2000 {
		t.Fatalf("partial patch clobbered fields: %+v", row)
	}

	// Ledger fields stay untouched.
	stored, found, err := st.GetDaily(context.Background(), userID, testToday)
	if err != nil || !found {
		t.Fatalf("stored row missing: %v", err)
	}
	if stored.CaloriesIntake != 0 || stored.CaloriesBurned != 0 {
		t.Fatalf("ancillary update must not touch ledger fields: %+v", stored)
	}
}

func TestUpdateAncillaryValidation(t *testing.T) {
	service, _ := newTestService()
	userID := uuid.New()

	cases := []struct {
		name string
		req  UpdateAncillaryRequest
	}{
		{"negative steps", UpdateAncillaryRequest{StepsCount: intPtr(-1)}},
		{"steps above cap", UpdateAncillaryRequest{StepsCount: intPtr(100001)}},
		{"water above cap", UpdateAncillaryRequest{WaterIntakeMl: intPtr(10001)}},
		{"unknown goal status", UpdateAncillaryRequest{GoalStatus: strPtr("DONE")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.UpdateAncillary(context.Background(), userID, testToday, tc.req); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestDashboardStats(t *testing.T) {
	service, st := newTestService()
	userID := uuid.New()

	for i, date := range []string{"2026-03-08", "2026-03-09", "2026-03-10"} {
		err := st.ApplyDelta(context.Background(), userID, date, storage.ProgressDelta{
			Calories: float64(1000 + i*100),
			Burned:   200,
		})
		if err != nil {
			t.Fatalf("seed %s: %v", date, err)
		}
	}

	stats, err := service.DashboardStats(context.Background(), userID, "2026-03-08", "2026-03-10")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(stats.Days))
	}
	if stats.TotalIntake != 3300 || stats.TotalBurned != 600 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if stats.AvgIntakePerDay != 1100 {
		t.Fatalf("expected avg 1100, got %g", stats.AvgIntakePerDay)
	}

	if _, err := service.DashboardStats(context.Background(), userID, "2026-03-11", "2026-03-10"); err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestDashboardStatsDefaultWindow(t *testing.T) {
	service, _ := newTestService()

	stats, err := service.DashboardStats(context.Background(), uuid.New(), "", "")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.From != "2026-03-04" || stats.To != testToday {
		t.Fatalf("expected trailing week, got %s..%s", stats.From, stats.To)
	}
}
