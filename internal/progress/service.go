package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/config"
	"github.com/fitfuel/fitfuel-server/internal/ledger"
	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrInvalidDate       = errors.New("date must be YYYY-MM-DD")
	ErrInvalidRange      = errors.New("from must not be after to")
	ErrInvalidSteps      = errors.New("steps_count out of range")
	ErrInvalidWater      = errors.New("water_intake_ml out of range")
	ErrInvalidGoalStatus = errors.New("unknown goal_status")
)

var validGoalStatuses = map[string]bool{
	"IN_PROGRESS": true,
	"ACHIEVED":    true,
	"MISSED":      true,
}

type Service struct {
	config  *config.Config
	storage storage.ProgressStorage
	clock   *ledger.Clock
}

func NewService(cfg *config.Config, st storage.ProgressStorage, clock *ledger.Clock) *Service {
	return &Service{config: cfg, storage: st, clock: clock}
}

// GetDaily returns the ledger row for date (today when empty). An absent row
// reads as all zeros: rows are created lazily, absence and zero are the same
// state.
func (s *Service) GetDaily(ctx context.Context, userID uuid.UUID, date string) (*DailyProgressDTO, error) {
	if date == "" {
		date = s.clock.Today()
	}
	if !ledger.ValidDate(date) {
		return nil, ErrInvalidDate
	}

	row, found, err := s.storage.GetDaily(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if !found {
		return &DailyProgressDTO{UserID: userID, Date: date}, nil
	}

	dto := toDTO(row)
	return &dto, nil
}

// UpdateAncillary patches steps/water/goal-status for date (today when
// empty). These fields live outside the reconciler's invariant.
func (s *Service) UpdateAncillary(ctx context.Context, userID uuid.UUID, date string, req UpdateAncillaryRequest) (*DailyProgressDTO, error) {
	if date == "" {
		date = s.clock.Today()
	}
	if !ledger.ValidDate(date) {
		return nil, ErrInvalidDate
	}

	if req.StepsCount != nil {
		if *req.StepsCount < 0 || *req.StepsCount > s.config.ProgressMaxStepsPerDay {
			return nil, fmt.Errorf("%w: 0..%d", ErrInvalidSteps, s.config.ProgressMaxStepsPerDay)
		}
	}
	if req.WaterIntakeMl != nil {
		if *req.WaterIntakeMl < 0 || *req.WaterIntakeMl > s.config.ProgressMaxWaterMlPerDay {
			return nil, fmt.Errorf("%w: 0..%d", ErrInvalidWater, s.config.ProgressMaxWaterMlPerDay)
		}
	}
	if req.GoalStatus != nil && !validGoalStatuses[*req.GoalStatus] {
		return nil, ErrInvalidGoalStatus
	}

	row, err := s.storage.UpsertAncillary(ctx, userID, date, req.StepsCount, req.WaterIntakeMl, req.GoalStatus)
	if err != nil {
		return nil, err
	}

	dto := toDTO(row)
	return &dto, nil
}

// DashboardStats aggregates the rows of [from, to]. Defaults to the trailing
// seven days ending today.
func (s *Service) DashboardStats(ctx context.Context, userID uuid.UUID, from, to string) (*DashboardStatsResponse, error) {
	if to == "" {
		to = s.clock.Today()
	}
	if from == "" {
		toDay, err := time.Parse(ledger.DateLayout, to)
		if err != nil {
			return nil, ErrInvalidDate
		}
		from = toDay.AddDate(0, 0, -6).Format(ledger.DateLayout)
	}
	if !ledger.ValidDate(from) || !ledger.ValidDate(to) {
		return nil, ErrInvalidDate
	}
	if from > to {
		return nil, ErrInvalidRange
	}

	rows, err := s.storage.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	resp := &DashboardStatsResponse{
		From: from,
		To:   to,
		Days: make([]DailyProgressDTO, 0, len(rows)),
	}
	for i := range rows {
		resp.Days = append(resp.Days, toDTO(&rows[i]))
		resp.TotalIntake += rows[i].CaloriesIntake
		resp.TotalBurned += rows[i].CaloriesBurned
		resp.TotalSteps += rows[i].StepsCount
		resp.TotalWaterIntakeL += float64(rows[i].WaterIntakeMl) / 1000
	}

	if days := spanDays(from, to); days > 0 {
		resp.AvgIntakePerDay = resp.TotalIntake / float64(days)
		resp.AvgBurnedPerDay = resp.TotalBurned / float64(days)
	}
	return resp, nil
}

// spanDays counts calendar days in [from, to] inclusive. Dates are validated
// by the callers.
func spanDays(from, to string) int {
	a, err := time.Parse(ledger.DateLayout, from)
	if err != nil {
		return 0
	}
	b, err := time.Parse(ledger.DateLayout, to)
	if err != nil {
		return 0
	}
	return int(b.Sub(a).Hours()/24) + 1
}
