package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

// DietPlansMemoryStorage implements storage.DietPlansStorage. The combined
// item+delta operations apply both mutations under the item mutex before
// handing the delta to the progress storage; memory mode has no partial
// failure, so this matches the transactional contract.
type DietPlansMemoryStorage struct {
	mu       sync.RWMutex
	plans    map[uuid.UUID]storage.DietPlan
	byDate   map[string]uuid.UUID // key: userID:date -> plan ID
	items    map[uuid.UUID]storage.DietItem
	progress *ProgressMemoryStorage
}

func NewDietPlansMemoryStorage(progress *ProgressMemoryStorage) *DietPlansMemoryStorage {
	return &DietPlansMemoryStorage{
		plans:    make(map[uuid.UUID]storage.DietPlan),
		byDate:   make(map[string]uuid.UUID),
		items:    make(map[uuid.UUID]storage.DietItem),
		progress: progress,
	}
}

func planDateKey(userID uuid.UUID, date string) string {
	return userID.String() + ":" + date
}

func (s *DietPlansMemoryStorage) CreatePlan(ctx context.Context, plan *storage.DietPlan, items []storage.DietItem) error {
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

func (s *DietPlansMemoryStorage) GetPlan(ctx context.Context, id uuid.UUID) (*storage.DietPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.plans[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *DietPlansMemoryStorage) GetPlanByDate(ctx context.Context, userID uuid.UUID, date string) (*storage.DietPlan, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byDate[planDateKey(userID, date)]
	if !exists {
		return nil, false, nil
	}
	p := s.plans[id]
	return &p, true, nil
}

func (s *DietPlansMemoryStorage) CreateItem(ctx context.Context, item *storage.DietItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[item.PlanID]; !exists {
		return ErrNotFound
	}
	s.items[item.ID] = *item
	return nil
}

func (s *DietPlansMemoryStorage) GetItem(ctx context.Context, id uuid.UUID) (*storage.DietItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (s *DietPlansMemoryStorage) ListItems(ctx context.Context, planID uuid.UUID) ([]storage.DietItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []storage.DietItem
	for _, item := range s.items {
		if item.PlanID == planID {
			result = append(result, item)
		}
	}
	sortDietItems(result)
	return result, nil
}

func (s *DietPlansMemoryStorage) ListItemsByDate(ctx context.Context, userID uuid.UUID, date string) ([]storage.DietItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []storage.DietItem
	for _, item := range s.items {
		if item.UserID == userID && item.Date == date {
			result = append(result, item)
		}
	}
	sortDietItems(result)
	return result, nil
}

func (s *DietPlansMemoryStorage) UpdateItemApplyingDelta(ctx context.Context, item *storage.DietItem, delta storage.ProgressDelta) error {
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

func (s *DietPlansMemoryStorage) DeleteItemApplyingDelta(ctx context.Context, id uuid.UUID, userID uuid.UUID, date string, delta storage.ProgressDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ErrNotFound
	}
	delete(s.items, id)

	if delta.IsZero() {
		return nil
	}
	// Absent row means nothing to reverse, so do not create one.
	return s.progress.ApplyDeltaIfExists(ctx, userID, date, delta)
}

func sortDietItems(items []storage.DietItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID.String() < items[j].ID.String()
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
