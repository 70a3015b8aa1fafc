package ai

import (
	"context"
)

// MockProvider emits deterministic suggestions from the offered options. It
// backs AI_MODE=mock for local runs and is the test double everywhere.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// SuggestDiet proposes one offered food per missing slot, cycling through
// the options in order. Quantity is one serving.
func (p *MockProvider) SuggestDiet(ctx context.Context, req DietSuggestionRequest) ([]DietSuggestion, error) {
	if len(req.Foods) == 0 {
		return nil, nil
	}

	suggestions := make([]DietSuggestion, 0, len(req.MissingSlots))
	for i, slot := range req.MissingSlots {
		food := req.Foods[i%len(req.Foods)]
		suggestions = append(suggestions, DietSuggestion{
			FoodName:   food.Name,
			MealSlot:   slot,
			QuantityGm: food.ServingSizeGm,
		})
	}
	return suggestions, nil
}

// SuggestWorkout proposes offered activities that are not already planned,
// 30 minutes each, rotating through the day's time slots.
func (p *MockProvider) SuggestWorkout(ctx context.Context, req WorkoutSuggestionRequest) ([]WorkoutSuggestion, error) {
	planned := make(map[string]bool, len(req.ExistingActivities))
	for _, name := range req.ExistingActivities {
		planned[name] = true
	}

	timeSlots := []string{"morning", "afternoon", "evening"}
	var suggestions []WorkoutSuggestion
	for _, activity := range req.Activities {
		if planned[activity.Name] {
			continue
		}
		suggestions = append(suggestions, WorkoutSuggestion{
			ActivityName: activity.Name,
			TimeSlot:     timeSlots[len(suggestions)%len(timeSlots)],
			DurationMin:  30,
		})
	}
	return suggestions, nil
}
