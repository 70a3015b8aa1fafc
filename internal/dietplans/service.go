package dietplans

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
	ErrNotFound        = errors.New("diet plan or item not found")
	ErrPlanExists      = errors.New("a diet plan already exists for this date")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
	ErrInvalidMealSlot = errors.New("meal_slot must be breakfast, lunch, dinner or snack")
	ErrFoodNotFound    = errors.New("food not found in catalogue")
)

var validMealSlots = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

type Service struct {
	plans      storage.DietPlansStorage
	catalogue  storage.CatalogueStorage
	reconciler *ledger.Reconciler
	clock      *ledger.Clock
}

func NewService(plans storage.DietPlansStorage, catalogue storage.CatalogueStorage, reconciler *ledger.Reconciler, clock *ledger.Clock) *Service {
	return &Service{
		plans:      plans,
		catalogue:  catalogue,
		reconciler: reconciler,
		clock:      clock,
	}
}

// CreatePlan creates a dated plan with optional initial items. Items start
// PENDING, so creation never touches the daily ledger.
func (s *Service) CreatePlan(ctx context.Context, userID uuid.UUID, req CreatePlanRequest) (*DietPlanDTO, error) {
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
	plan := &storage.DietPlan{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      date,
		Title:     strings.TrimSpace(req.Title),
		PlanType:  ledger.PlanTypeUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	items := make([]storage.DietItem, 0, len(req.Items))
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
func (s *Service) GetPlanForDate(ctx context.Context, userID uuid.UUID, date string) (*DietPlanDTO, error) {
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

// AddItem appends a PENDING item to an existing plan. The item inherits the
// plan's frozen date; no ledger delta is produced.
func (s *Service) AddItem(ctx context.Context, userID, planID uuid.UUID, req NewItemRequest) (*DietItemDTO, error) {
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

// UpdateItem patches status and/or quantity through the reconciler, then
// commits the merged item together with the resulting ledger delta.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req UpdateItemRequest) (*DietItemDTO, error) {
	old, err := s.plans.GetItem(ctx, itemID)
	if err != nil || old.UserID != userID {
		return nil, ErrNotFound
	}

	// Catalogue snapshot is read fresh per operation; a nil food only fails
	// when a COMPLETED endpoint actually needs the rate.
	food, _ := s.catalogue.GetFood(ctx, old.FoodID)

	merged, delta, err := s.reconciler.DietUpdate(old, ledger.DietItemPatch{
		Status:     req.Status,
		QuantityGm: req.QuantityGm,
	}, food)
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

	food, _ := s.catalogue.GetFood(ctx, old.FoodID)

	delta, err := s.reconciler.DietDelete(old, food)
	if err != nil {
		return err
	}

	return s.plans.DeleteItemApplyingDelta(ctx, old.ID, old.UserID, old.Date, delta)
}

func (s *Service) buildItem(ctx context.Context, plan *storage.DietPlan, userID uuid.UUID, req NewItemRequest, now time.Time) (*storage.DietItem, error) {
	slot := strings.ToLower(strings.TrimSpace(req.MealSlot))
	if !validMealSlots[slot] {
		return nil, ErrInvalidMealSlot
	}
	if req.QuantityGm <= 0 {
		return nil, ledger.ErrInvalidQuantity
	}
	if _, err := s.catalogue.GetFood(ctx, req.FoodID); err != nil {
		return nil, ErrFoodNotFound
	}

	return &storage.DietItem{
		ID:          uuid.New(),
		PlanID:      plan.ID,
		UserID:      userID,
		Date:        plan.Date,
		FoodID:      req.FoodID,
		MealSlot:    slot,
		QuantityGm:  req.QuantityGm,
		Status:      ledger.StatusPending,
		PlanType:    ledger.PlanTypeUser,
		CreatedByID: userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
