package ai

import (
	"context"
	"errors"
)

// ErrBadResponse marks a model reply that does not satisfy the structured
// contract. Callers treat it as "no suggestions", never as partial data.
var ErrBadResponse = errors.New("ai response violates the contract")

// Provider produces plan suggestions. Implementations must return only
// schema-valid suggestions and reject anything else with ErrBadResponse.
type Provider interface {
	SuggestDiet(ctx context.Context, req DietSuggestionRequest) ([]DietSuggestion, error)
	SuggestWorkout(ctx context.Context, req WorkoutSuggestionRequest) ([]WorkoutSuggestion, error)
}

// FoodOption is one catalogue food offered to the model.
type FoodOption struct {
	Name          string
	Calories      float64
	Protein       float64
	ServingSizeGm float64
}

// ActivityOption is one catalogue activity offered to the model.
type ActivityOption struct {
	Name          string
	CaloriesPerKg float64
	DurationMin   float64
}

type DietSuggestionRequest struct {
	Date           string
	Goal           string   // LOSE_WEIGHT | MAINTAIN | GAIN_MUSCLE
	TargetCalories float64  // daily TDEE-derived target
	MissingSlots   []string // meal slots without an item today
	Foods          []FoodOption
}

type WorkoutSuggestionRequest struct {
	Date               string
	Goal               string
	ActivityLevel      string
	TargetBurn         float64  // desired kcal burn for the day
	WeightKg           float64
	ExistingActivities []string // activity names already planned today
	Activities         []ActivityOption
}

// DietSuggestion is one proposed diet item, keyed by catalogue food name.
type DietSuggestion struct {
	FoodName   string  `json:"food_name"`
	MealSlot   string  `json:"meal_slot"`
	QuantityGm float64 `json:"quantity_gm"`
}

// WorkoutSuggestion is one proposed workout item, keyed by activity name.
type WorkoutSuggestion struct {
	ActivityName string  `json:"activity_name"`
	TimeSlot     string  `json:"time_slot"`
	DurationMin  float64 `json:"duration_min"`
}
