package suggest

import (
	"time"

	"github.com/google/uuid"
)

// DietSuggestionResponse reports the items inserted into today's diet plan.
type DietSuggestionResponse struct {
	Date           string            `json:"date"`
	PlanID         uuid.UUID         `json:"plan_id"`
	TargetCalories float64           `json:"target_calories"`
	Inserted       []InsertedDietDTO `json:"inserted"`
}

type InsertedDietDTO struct {
	ID         uuid.UUID `json:"id"`
	FoodID     uuid.UUID `json:"food_id"`
	FoodName   string    `json:"food_name"`
	MealSlot   string    `json:"meal_slot"`
	QuantityGm float64   `json:"quantity_gm"`
	Status     string    `json:"status"`
	PlanType   string    `json:"plan_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// WorkoutSuggestionResponse reports the items inserted into today's workout
// plan.
type WorkoutSuggestionResponse struct {
	Date     string               `json:"date"`
	PlanID   uuid.UUID            `json:"plan_id"`
	Inserted []InsertedWorkoutDTO `json:"inserted"`
}

type InsertedWorkoutDTO struct {
	ID           uuid.UUID `json:"id"`
	ActivityID   uuid.UUID `json:"activity_id"`
	ActivityName string    `json:"activity_name"`
	TimeSlot     string    `json:"time_slot"`
	DurationMin  float64   `json:"duration_min"`
	Status       string    `json:"status"`
	PlanType     string    `json:"plan_type"`
	CreatedAt    time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
