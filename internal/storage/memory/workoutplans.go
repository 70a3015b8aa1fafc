package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

// WorkoutPlansMemoryStorage implements storage.WorkoutPlansStorage with the
// same combined item+delta contract as the diet variant.
type WorkoutPlansMemoryStorage struct {
	mu       sync.RWMutex
	plans    map[uuid.UUID]storage.WorkoutPlan
	byDate   map[string]uuid.UUID
	items    map[uuid.UUID]storage.WorkoutItem
	progress *ProgressMemoryStorage
}

func NewWorkoutPlansMemoryStorage(progress *ProgressMemoryStorage) *WorkoutPlansMemoryStorage {
	return &WorkoutPlansMemoryStorage{
		plans:    make(map[uuid.UUID]storage.WorkoutPlan),
		byDate:   make(map[string]uuid.UUID),
		items:    make(map[uuid.UUID]storage.WorkoutItem),
		progress: progress,
	}
}

func (s *WorkoutPlansMemoryStorage) CreatePlan(ctx context.Context, plan *storage.WorkoutPlan, items []storage.WorkoutItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := planDateKey(plan.UserID, plan.Date)
	if _, exists := s.byDate[key]; exists {
		return errors.New("plan already exists for date")
	}

	s.plans[plan.ID] = *plan
	s.byDate[key] = plan.ID
	for _, item := range items {
		s.items[item.ID] = item
	}
	return nil
}

func (s *WorkoutPlansMemoryStorage) GetPlan(ctx context.Context, id uuid.UUID) (*storage.WorkoutPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.plans[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *WorkoutPlansMemoryStorage) GetPlanByDate(ctx context.Context, userID uuid.UUID, date string) (*storage.WorkoutPlan, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byDate[planDateKey(userID, date)]
	if !exists {
		return nil, false, nil
	}
	p := s.plans[id]
	return &p, true, nil
}

func (s *WorkoutPlansMemoryStorage) CreateItem(ctx context.Context, item *storage.WorkoutItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[item.PlanID]; !exists {
		return ErrNotFound
	}
	s.items[item.ID] = *item
	return nil
}

func (s *WorkoutPlansMemoryStorage) GetItem(ctx context.Context, id uuid.UUID) (*storage.WorkoutItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (s *WorkoutPlansMemoryStorage) ListItems(ctx context.Context, planID uuid.UUID) ([]storage.WorkoutItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []storage.WorkoutItem
	for _, item := range s.items {
		if item.PlanID == planID {
			result = append(result, item)
		}
	}
	sortWorkoutItems(result)
	return result, nil
}

func (s *WorkoutPlansMemoryStorage) ListItemsByDate(ctx context.Context, userID uuid.UUID, date string) ([]storage.WorkoutItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []storage.WorkoutItem
	for _, item := range s.items {
		if item.UserID == userID && item.Date == date {
			result = append(result, item)
		}
	}
	sortWorkoutItems(result)
	return result, nil
}

func (s *WorkoutPlansMemoryStorage) UpdateItemApplyingDelta(ctx context.Context, item *storage.WorkoutItem, delta storage.ProgressDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ID]; !exists {
		return ErrNotFound
	}
	s.items[item.ID] = *item

	if delta.IsZero() {
		return nil
	}
	return s.progress.ApplyDelta(ctx, item.UserID, item.Date, delta)
}

func (s *WorkoutPlansMemoryStorage) DeleteItemApplyingDelta(ctx context.Context, id uuid.UUID, userID uuid.UUID, date string, delta storage.ProgressDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ErrNotFound
	}
	delete(s.items, id)

	if delta.IsZero() {
		return nil
	}
	return s.progress.ApplyDeltaIfExists(ctx, userID, date, delta)
}

func sortWorkoutItems(items []storage.WorkoutItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID.String() < items[j].ID.String()
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
