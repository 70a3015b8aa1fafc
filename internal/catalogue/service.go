package catalogue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("catalogue entry not found")
	ErrNameTaken          = errors.New("name already in use")
	ErrInvalidName        = errors.New("name is required")
	ErrInvalidServingSize = errors.New("serving_size_gm must be greater than zero")
	ErrInvalidDuration    = errors.New("duration_min must be greater than zero")
	ErrInvalidNutrients   = errors.New("nutrient values must not be negative")
)

type Service struct {
	storage storage.CatalogueStorage
}

func NewService(st storage.CatalogueStorage) *Service {
	return &Service{storage: st}
}

func (s *Service) GetFood(ctx context.Context, id uuid.UUID) (*FoodDTO, error) {
	food, err := s.storage.GetFood(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	dto := foodToDTO(food)
	return &dto, nil
}

func (s *Service) ListFoods(ctx context.Context, query string, limit, offset int) ([]FoodDTO, error) {
	foods, err := s.storage.ListFoods(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	dtos := make([]FoodDTO, 0, len(foods))
	for i := range foods {
		dtos = append(dtos, foodToDTO(&foods[i]))
	}
	return dtos, nil
}

func (s *Service) CreateFood(ctx context.Context, req UpsertFoodRequest) (*FoodDTO, error) {
	if err := validateFood(req); err != nil {
		return nil, err
	}
	if _, err := s.storage.GetFoodByName(ctx, req.Name); err == nil {
		return nil, ErrNameTaken
	}

	now := time.Now().UTC()
	food := &storage.Food{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(req.Name),
		Calories:      req.Calories,
		Protein:       req.Protein,
		Carbs:         req.Carbs,
		Fats:          req.Fats,
		ServingSizeGm: req.ServingSizeGm,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.storage.CreateFood(ctx, food); err != nil {
		return nil, err
	}

	dto := foodToDTO(food)
	return &dto, nil
}

func (s *Service) UpdateFood(ctx context.Context, id uuid.UUID, req UpsertFoodRequest) (*FoodDTO, error) {
	if err := validateFood(req); err != nil {
		return nil, err
	}

	food, err := s.storage.GetFood(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if existing, err := s.storage.GetFoodByName(ctx, req.Name); err == nil && existing.ID != id {
		return nil, ErrNameTaken
	}

	food.Name = strings.TrimSpace(req.Name)
	food.Calories = req.Calories
	food.Protein = req.Protein
	food.Carbs = req.Carbs
	food.Fats = req.Fats
	food.ServingSizeGm = req.ServingSizeGm
	food.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateFood(ctx, food); err != nil {
		return nil, err
	}

	dto := foodToDTO(food)
	return &dto, nil
}

func (s *Service) DeleteFood(ctx context.Context, id uuid.UUID) error {
	if err := s.storage.DeleteFood(ctx, id); err != nil {
		return ErrNotFound
	}
	return nil
}

func (s *Service) GetActivity(ctx context.Context, id uuid.UUID) (*ActivityDTO, error) {
	activity, err := s.storage.GetActivity(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	dto := activityToDTO(activity)
	return &dto, nil
}

func (s *Service) ListActivities(ctx context.Context, query string, limit, offset int) ([]ActivityDTO, error) {
	activities, err := s.storage.ListActivities(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	dtos := make([]ActivityDTO, 0, len(activities))
	for i := range activities {
		dtos = append(dtos, activityToDTO(&activities[i]))
	}
	return dtos, nil
}

func (s *Service) CreateActivity(ctx context.Context, req UpsertActivityRequest) (*ActivityDTO, error) {
	if err := validateActivity(req); err != nil {
		return nil, err
	}
	if _, err := s.storage.GetActivityByName(ctx, req.Name); err == nil {
		return nil, ErrNameTaken
	}

	now := time.Now().UTC()
	activity := &storage.Activity{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(req.Name),
		CaloriesPerKg: req.CaloriesPerKg,
		DurationMin:   req.DurationMin,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.storage.CreateActivity(ctx, activity); err != nil {
		return nil, err
	}

	dto := activityToDTO(activity)
	return &dto, nil
}

func (s *Service) UpdateActivity(ctx context.Context, id uuid.UUID, req UpsertActivityRequest) (*ActivityDTO, error) {
	if err := validateActivity(req); err != nil {
		return nil, err
	}

	activity, err := s.storage.GetActivity(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if existing, err := s.storage.GetActivityByName(ctx, req.Name); err == nil && existing.ID != id {
		return nil, ErrNameTaken
	}

	activity.Name = strings.TrimSpace(req.Name)
	activity.CaloriesPerKg = req.CaloriesPerKg
	activity.DurationMin = req.DurationMin
	activity.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateActivity(ctx, activity); err != nil {
		return nil, err
	}

	dto := activityToDTO(activity)
	return &dto, nil
}

func (s *Service) DeleteActivity(ctx context.Context, id uuid.UUID) error {
	if err := s.storage.DeleteActivity(ctx, id); err != nil {
		return ErrNotFound
	}
	return nil
}

func validateFood(req UpsertFoodRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return ErrInvalidName
	}
	if req.ServingSizeGm <= 0 {
		return ErrInvalidServingSize
	}
	if req.Calories < 0 || req.Protein < 0 || req.Carbs < 0 || req.Fats < 0 {
		return ErrInvalidNutrients
	}
	return nil
}

func validateActivity(req UpsertActivityRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return ErrInvalidName
	}
	if req.DurationMin <= 0 {
		return ErrInvalidDuration
	}
	if req.CaloriesPerKg < 0 {
		return ErrInvalidNutrients
	}
	return nil
}
