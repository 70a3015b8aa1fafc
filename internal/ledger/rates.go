package ledger

import (
	"errors"
	"fmt"

	"github.com/fitfuel/fitfuel-server/internal/storage"
)

// Plan item statuses. Only COMPLETED items contribute to the daily ledger.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusSkipped   = "SKIPPED"
)

// Plan origins.
const (
	PlanTypeUser = "USER"
	PlanTypeAI   = "AI"
)

var (
	// ErrDataIntegrity marks catalogue rows whose divisor fields make the
	// per-unit rate undefined. Rate computation fails rather than dividing.
	ErrDataIntegrity = errors.New("catalogue data integrity error")

	// ErrItemLocked marks mutations on items dated outside the current
	// reference calendar day.
	ErrItemLocked = errors.New("plan item is locked (not from today)")

	ErrInvalidStatus   = errors.New("invalid plan item status")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// ValidStatus reports whether s is one of the three item statuses.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusCompleted || s == StatusSkipped
}

// FoodRate holds nutrient amounts per one gram of a food.
type FoodRate struct {
	CaloriesPerGm float64
	ProteinPerGm  float64
	CarbsPerGm    float64
	FatsPerGm     float64
}

// FoodRateOf computes the per-gram rate from a catalogue snapshot. The
// snapshot is read fresh per operation; rates are never cached across
// requests because catalogue rows may change between them.
func FoodRateOf(food *storage.Food) (FoodRate, error) {
	if food == nil {
		return FoodRate{}, fmt.Errorf("%w: food entry missing", ErrDataIntegrity)
	}
	if food.ServingSizeGm <= 0 {
		return FoodRate{}, fmt.Errorf("%w: food %q has serving_size_gm=%g", ErrDataIntegrity, food.Name, food.ServingSizeGm)
	}
	return FoodRate{
		CaloriesPerGm: food.Calories / food.ServingSizeGm,
		ProteinPerGm:  food.Protein / food.ServingSizeGm,
		CarbsPerGm:    food.Carbs / food.ServingSizeGm,
		FatsPerGm:     food.Fats / food.ServingSizeGm,
	}, nil
}

// ActivityRateOf computes the energy rate per minute per kg of body weight.
func ActivityRateOf(activity *storage.Activity) (float64, error) {
	if activity == nil {
		return 0, fmt.Errorf("%w: activity entry missing", ErrDataIntegrity)
	}
	if activity.DurationMin <= 0 {
		return 0, fmt.Errorf("%w: activity %q has duration=%g", ErrDataIntegrity, activity.Name, activity.DurationMin)
	}
	return activity.CaloriesPerKg / activity.DurationMin, nil
}

// dietContribution is the contribution function over diet items: zero unless
// COMPLETED, else rate × quantity on every nutrient axis.
func dietContribution(status string, quantityGm float64, rate FoodRate) storage.ProgressDelta {
	if status != StatusCompleted {
		return storage.ProgressDelta{}
	}
	return storage.ProgressDelta{
		Calories: rate.CaloriesPerGm * quantityGm,
		Protein:  rate.ProteinPerGm * quantityGm,
		Carbs:    rate.CarbsPerGm * quantityGm,
		Fats:     rate.FatsPerGm * quantityGm,
	}
}

// workoutContribution: zero unless COMPLETED, else
// rate × duration × body weight, on the calories-burned axis.
func workoutContribution(status string, durationMin, ratePerMinPerKg, weightKg float64) storage.ProgressDelta {
	if status != StatusCompleted {
		return storage.ProgressDelta{}
	}
	return storage.ProgressDelta{
		Burned: ratePerMinPerKg * durationMin * weightKg,
	}
}
