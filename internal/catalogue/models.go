package catalogue

import (
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

// FoodDTO is the wire form of a catalogue food. Nutrient fields are per
// serving_size_gm grams.
type FoodDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Calories      float64   `json:"calories"`
	Protein       float64   `json:"protein"`
	Carbs         float64   `json:"carbs"`
	Fats          float64   `json:"fats"`
	ServingSizeGm float64   `json:"serving_size_gm"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ActivityDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	CaloriesPerKg float64   `json:"calories_per_kg"`
	DurationMin   float64   `json:"duration_min"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type UpsertFoodRequest struct {
	Name          string  `json:"name"`
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbs         float64 `json:"carbs"`
	Fats          float64 `json:"fats"`
	ServingSizeGm float64 `json:"serving_size_gm"`
}

type UpsertActivityRequest struct {
	Name          string  `json:"name"`
	CaloriesPerKg float64 `json:"calories_per_kg"`
	DurationMin   float64 `json:"duration_min"`
}

type FoodListResponse struct {
	Foods []FoodDTO `json:"foods"`
}

type ActivityListResponse struct {
	Activities []ActivityDTO `json:"activities"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func foodToDTO(f *storage.Food) FoodDTO {
	return FoodDTO{
		ID:            f.ID,
		Name:          f.Name,
		Calories:      f.Calories,
		Protein:       f.Protein,
		Carbs:         f.Carbs,
		Fats:          f.Fats,
		ServingSizeGm: f.ServingSizeGm,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

func activityToDTO(a *storage.Activity) ActivityDTO {
	return ActivityDTO{
		ID:            a.ID,
		Name:          a.Name,
		CaloriesPerKg: a.CaloriesPerKg,
		DurationMin:   a.DurationMin,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
