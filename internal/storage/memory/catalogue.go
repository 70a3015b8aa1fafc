package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// CatalogueMemoryStorage implements storage.CatalogueStorage
type CatalogueMemoryStorage struct {
	mu             sync.RWMutex
	foods          map[uuid.UUID]storage.Food
	foodByName     map[string]uuid.UUID
	activities     map[uuid.UUID]storage.Activity
	activityByName map[string]uuid.UUID
}

func NewCatalogueMemoryStorage() *CatalogueMemoryStorage {
	return &CatalogueMemoryStorage{
		foods:          make(map[uuid.UUID]storage.Food),
		foodByName:     make(map[string]uuid.UUID),
		activities:     make(map[uuid.UUID]storage.Activity),
		activityByName: make(map[string]uuid.UUID),
	}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *CatalogueMemoryStorage) CreateFood(ctx context.Context, food *storage.Food) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := nameKey(food.Name)
	if _, exists := s.foodByName[key]; exists {
		return errors.New("food name already exists")
	}
	s.foods[food.ID] = *food
	s.foodByName[key] = food.ID
	return nil
}

func (s *CatalogueMemoryStorage) GetFood(ctx context.Context, id uuid.UUID) (*storage.Food, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, exists := s.foods[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (s *CatalogueMemoryStorage) GetFoodByName(ctx context.Context, name string) (*storage.Food, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.foodByName[nameKey(name)]
	if !exists {
		return nil, ErrNotFound
	}
	f := s.foods[id]
	return &f, nil
}

func (s *CatalogueMemoryStorage) ListFoods(ctx context.Context, query string, limit, offset int) ([]storage.Food, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = nameKey(query)
	var result []storage.Food
	for _, f := range s.foods {
		if query == "" || strings.Contains(strings.ToLower(f.Name), query) {
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return paginate(result, limit, offset), nil
}

func (s *CatalogueMemoryStorage) UpdateFood(ctx context.Context, food *storage.Food) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.foods[food.ID]
	if !exists {
		return ErrNotFound
	}

	newKey := nameKey(food.Name)
	oldKey := nameKey(existing.Name)
	if newKey != oldKey {
		if _, taken := s.foodByName[newKey]; taken {
			return errors.New("food name already exists")
		}
		delete(s.foodByName, oldKey)
		s.foodByName[newKey] = food.ID
	}

	s.foods[food.ID] = *food
	return nil
}

func (s *CatalogueMemoryStorage) DeleteFood(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, exists := s.foods[id]
	if !exists {
		return ErrNotFound
	}
	delete(s.foods, id)
	delete(s.foodByName, nameKey(f.Name))
	return nil
}

func (s *CatalogueMemoryStorage) CreateActivity(ctx context.Context, activity *storage.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := nameKey(activity.Name)
	if _, exists := s.activityByName[key]; exists {
		return errors.New("activity name already exists")
	}
	s.activities[activity.ID] = *activity
	s.activityByName[key] = activity.ID
	return nil
}

func (s *CatalogueMemoryStorage) GetActivity(ctx context.Context, id uuid.UUID) (*storage.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.activities[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *CatalogueMemoryStorage) GetActivityByName(ctx context.Context, name string) (*storage.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.activityByName[nameKey(name)]
	if !exists {
		return nil, ErrNotFound
	}
	a := s.activities[id]
	return &a, nil
}

func (s *CatalogueMemoryStorage) ListActivities(ctx context.Context, query string, limit, offset int) ([]storage.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = nameKey(query)
	var result []storage.Activity
	for _, a := range s.activities {
		if query == "" || strings.Contains(strings.ToLower(a.Name), query) {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return paginate(result, limit, offset), nil
}

func (s *CatalogueMemoryStorage) UpdateActivity(ctx context.Context, activity *storage.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.activities[activity.ID]
	if !exists {
		return ErrNotFound
	}

	newKey := nameKey(activity.Name)
	oldKey := nameKey(existing.Name)
	if newKey != oldKey {
		if _, taken := s.activityByName[newKey]; taken {
			return errors.New("activity name already exists")
		}
		delete(s.activityByName, oldKey)
		s.activityByName[newKey] = activity.ID
	}

	s.activities[activity.ID] = *activity
	return nil
}

func (s *CatalogueMemoryStorage) DeleteActivity(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.activities[id]
	if !exists {
		return ErrNotFound
	}
	delete(s.activities, id)
	delete(s.activityByName, nameKey(a.Name))
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
