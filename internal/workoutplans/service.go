package workoutplans

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/ledger"
	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("workout plan or item not found")
	ErrPlanExists       = errors.New("a workout plan already exists for this date")
	ErrInvalidDate      = errors.New("date must be YYYY-MM-DD")
	ErrInvalidTimeSlot  = errors.New("time_slot must be morning, afternoon or evening")
	ErrActivityNotFound = errors.New("activity not found in catalogue")
)

var validTimeSlots = map[string]bool{
	"morning":   true,
	"afternoon": true,
	"evening":   true,
}

type Service struct {
	plans      storage.WorkoutPlansStorage
	catalogue  storage.CatalogueStorage
	profiles   storage.ProfilesStorage
	reconciler *ledger.Reconciler
	clock      *ledger.Clock
}

func NewService(plans storage.WorkoutPlansStorage, catalogue storage.CatalogueStorage, profiles storage.ProfilesStorage, reconciler *ledger.Reconciler, clock *ledger.Clock) *Service {
	return &Service{
		plans:      plans,
		catalogue:  catalogue,
		profiles:   profiles,
		reconciler: reconciler,
		clock:      clock,
	}
}

// CreatePlan creates a dated plan with optional initial items. Items start
// PENDING, so creation never touches the daily ledger.
func (s *Service) CreatePlan(ctx context.Context, userID uuid.UUID, req CreatePlanRequest) (*WorkoutPlanDTO, error) {
	date := req.Date
	if date == "" {
		date = s.clock.Today()
	}
	if !ledger.ValidDate(date) {
		return nil, ErrInvalidDate
	}

	if _, found, err := s.plans.GetPlanByDate(ctx, userID, date); err != nil {
		return nil, err
	} else if found {
		return nil, ErrPlanExists
	}

	now := time.Now().UTC()
	plan := &storage.WorkoutPlan{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      date,
		Title:     strings.TrimSpace(req.Title),
		PlanType:  ledger.PlanTypeUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	items := make([]storage.WorkoutItem, 0, len(req.Items))
	for _, in := range req.Items {
		item, err := s.buildItem(ctx, plan, userID, in, now)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	if err := s.plans.CreatePlan(ctx, plan, items); err != nil {
		return nil, err
	}

	dto := planToDTO(plan, items)
	return &dto, nil
}

// GetPlanForDate returns the plan and its items for date (today when empty).
func (s *Service) GetPlanForDate(ctx context.Context, userID uuid.UUID, date string) (*WorkoutPlanDTO, error) {
	if date == "" {
		date = s.clock.Today()
	}
	if !ledger.ValidDate(date) {
		return nil, ErrInvalidDate
	}

	plan, found, err := s.plans.GetPlanByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}

	items, err := s.plans.ListItems(ctx, plan.ID)
	if err != nil {
		return nil, err
	}

	dto := planToDTO(plan, items)
	return &dto, nil
}

// AddItem appends a PENDING item to an existing plan.
func (s *Service) AddItem(ctx context.Context, userID, planID uuid.UUID, req NewItemRequest) (*WorkoutItemDTO, error) {
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil || plan.UserID != userID {
		return nil, ErrNotFound
	}

	item, err := s.buildItem(ctx, plan, userID, req, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.plans.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	dto := itemToDTO(item)
	return &dto, nil
}

// UpdateItem patches status and/or duration through the reconciler. The
// burned-calories contribution uses the profile weight read at patch time;
// old and new contributions are computed at the same weight.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req UpdateItemRequest) (*WorkoutItemDTO, error) {
	old, err := s.plans.GetItem(ctx, itemID)
	if err != nil || old.UserID != userID {
		return nil, ErrNotFound
	}

	activity, _ := s.catalogue.GetActivity(ctx, old.ActivityID)

	merged, delta, err := s.reconciler.WorkoutUpdate(old, ledger.WorkoutItemPatch{
		Status:      req.Status,
		DurationMin: req.DurationMin,
	}, activity, s.profileWeight(ctx, userID))
	if err != nil {
		return nil, err
	}
	merged.UpdatedAt = time.Now().UTC()

	if err := s.plans.UpdateItemApplyingDelta(ctx, &merged, delta); err != nil {
		return nil, err
	}

	dto := itemToDTO(&merged)
	return &dto, nil
}

// DeleteItem removes an item, reversing its ledger contribution when it was
// COMPLETED.
func (s *Service) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	old, err := s.plans.GetItem(ctx, itemID)
	if err != nil || old.UserID != userID {
		return ErrNotFound
	}

	activity, _ := s.catalogue.GetActivity(ctx, old.ActivityID)

	delta, err := s.reconciler.WorkoutDelete(old, activity, s.profileWeight(ctx, userID))
	if err != nil {
		return err
	}

	return s.plans.DeleteItemApplyingDelta(ctx, old.ID, old.UserID, old.Date, delta)
}

// profileWeight returns the user's current weight, or 0 when no profile is
// set up yet. The reconciler rejects a zero weight only when a COMPLETED
// endpoint actually needs it.
func (s *Service) profileWeight(ctx context.Context, userID uuid.UUID) float64 {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return 0
	}
	return profile.WeightKg
}

func (s *Service) buildItem(ctx context.Context, plan *storage.WorkoutPlan, userID uuid.UUID, req NewItemRequest, now time.Time) (*storage.WorkoutItem, error) {
	slot := strings.ToLower(strings.TrimSpace(req.TimeSlot))
	if !validTimeSlots[slot] {
		return nil, ErrInvalidTimeSlot
	}
	if req.DurationMin <= 0 {
		return nil, ledger.ErrInvalidQuantity
	}
	if _, err := s.catalogue.GetActivity(ctx, req.ActivityID); err != nil {
		return nil, ErrActivityNotFound
	}

	return &storage.WorkoutItem{
		ID:          uuid.New(),
		PlanID:      plan.ID,
		UserID:      userID,
		Date:        plan.Date,
		ActivityID:  req.ActivityID,
		TimeSlot:    slot,
		DurationMin: req.DurationMin,
		Status:      ledger.StatusPending,
		PlanType:    ledger.PlanTypeUser,
		CreatedByID: userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
