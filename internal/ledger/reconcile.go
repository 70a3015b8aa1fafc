package ledger

import (
	"fmt"

	"github.com/fitfuel/fitfuel-server/internal/storage"
)

// Reconciler computes the signed DailyProgress delta for plan item mutations.
// It holds no storage handles: callers fetch the catalogue snapshot and the
// old item state, the reconciler does the arithmetic, and the storage layer
// applies item+delta in one transaction.
//
// Invariant maintained: every DailyProgress ledger field equals the sum of
// contributions of COMPLETED items for that (user, date). Only transitions
// into or out of COMPLETED, or quantity changes while COMPLETED, produce a
// non-zero delta.
type Reconciler struct {
	clock *Clock
}

func NewReconciler(clock *Clock) *Reconciler {
	return &Reconciler{clock: clock}
}

// DietItemPatch carries the fields a diet item update may change. Nil fields
// fall back to the old item's values.
type DietItemPatch struct {
	Status     *string
	QuantityGm *float64
}

// WorkoutItemPatch carries the fields a workout item update may change.
type WorkoutItemPatch struct {
	Status      *string
	DurationMin *float64
}

// DietUpdate validates the patch against the old item, merges it, and returns
// the merged item together with the ledger delta. The item must be dated
// today; violations return ErrItemLocked before any arithmetic.
func (r *Reconciler) DietUpdate(old *storage.DietItem, patch DietItemPatch, food *storage.Food) (storage.DietItem, storage.ProgressDelta, error) {
	if !r.clock.IsToday(old.Date) {
		return storage.DietItem{}, storage.ProgressDelta{}, ErrItemLocked
	}

	merged := *old
	if patch.Status != nil {
		if !ValidStatus(*patch.Status) {
			return storage.DietItem{}, storage.ProgressDelta{}, fmt.Errorf("%w: %q", ErrInvalidStatus, *patch.Status)
		}
		merged.Status = *patch.Status
	}
	if patch.QuantityGm != nil {
		if *patch.QuantityGm <= 0 {
			return storage.DietItem{}, storage.ProgressDelta{}, ErrInvalidQuantity
		}
		merged.QuantityGm = *patch.QuantityGm
	}

	// Fast path: neither endpoint of the transition is COMPLETED, so both
	// contributions are zero regardless of any quantity change.
	if old.Status != StatusCompleted && merged.Status != StatusCompleted {
		return merged, storage.ProgressDelta{}, nil
	}

	rate, err := FoodRateOf(food)
	if err != nil {
		return storage.DietItem{}, storage.ProgressDelta{}, err
	}

	oldContribution := dietContribution(old.Status, old.QuantityGm, rate)
	newContribution := dietContribution(merged.Status, merged.QuantityGm, rate)
	return merged, diff(newContribution, oldContribution), nil
}

// DietDelete returns the delta that reverses a diet item's contribution.
// PENDING and SKIPPED items contribute nothing, so their delta is zero.
func (r *Reconciler) DietDelete(old *storage.DietItem, food *storage.Food) (storage.ProgressDelta, error) {
	if !r.clock.IsToday(old.Date) {
		return storage.ProgressDelta{}, ErrItemLocked
	}
	if old.Status != StatusCompleted {
		return storage.ProgressDelta{}, nil
	}

	rate, err := FoodRateOf(food)
	if err != nil {
		return storage.ProgressDelta{}, err
	}
	return dietContribution(old.Status, old.QuantityGm, rate).Neg(), nil
}

// WorkoutUpdate is the workout-side analogue of DietUpdate. weightKg is the
// user's current profile weight at computation time; both the old and the new
// contribution are computed at the same weight so symmetry holds.
func (r *Reconciler) WorkoutUpdate(old *storage.WorkoutItem, patch WorkoutItemPatch, activity *storage.Activity, weightKg float64) (storage.WorkoutItem, storage.ProgressDelta, error) {
	if !r.clock.IsToday(old.Date) {
		return storage.WorkoutItem{}, storage.ProgressDelta{}, ErrItemLocked
	}

	merged := *old
	if patch.Status != nil {
		if !ValidStatus(*patch.Status) {
			return storage.WorkoutItem{}, storage.ProgressDelta{}, fmt.Errorf("%w: %q", ErrInvalidStatus, *patch.Status)
		}
		merged.Status = *patch.Status
	}
	if patch.DurationMin != nil {
		if *patch.DurationMin <= 0 {
			return storage.WorkoutItem{}, storage.ProgressDelta{}, ErrInvalidQuantity
		}
		merged.DurationMin = *patch.DurationMin
	}

	if old.Status != StatusCompleted && merged.Status != StatusCompleted {
		return merged, storage.ProgressDelta{}, nil
	}

	rate, err := ActivityRateOf(activity)
	if err != nil {
		return storage.WorkoutItem{}, storage.ProgressDelta{}, err
	}
	if weightKg <= 0 {
		return storage.WorkoutItem{}, storage.ProgressDelta{}, fmt.Errorf("%w: profile weight %g", ErrDataIntegrity, weightKg)
	}

	oldContribution := workoutContribution(old.Status, old.DurationMin, rate, weightKg)
	newContribution := workoutContribution(merged.Status, merged.DurationMin, rate, weightKg)
	return merged, diff(newContribution, oldContribution), nil
}

// WorkoutDelete returns the delta that reverses a workout item's contribution.
func (r *Reconciler) WorkoutDelete(old *storage.WorkoutItem, activity *storage.Activity, weightKg float64) (storage.ProgressDelta, error) {
	if !r.clock.IsToday(old.Date) {
		return storage.ProgressDelta{}, ErrItemLocked
	}
	if old.Status != StatusCompleted {
		return storage.ProgressDelta{}, nil
	}

	rate, err := ActivityRateOf(activity)
	if err != nil {
		return storage.ProgressDelta{}, err
	}
	if weightKg <= 0 {
		return storage.ProgressDelta{}, fmt.Errorf("%w: profile weight %g", ErrDataIntegrity, weightKg)
	}
	return workoutContribution(old.Status, old.DurationMin, rate, weightKg).Neg(), nil
}

func diff(a, b storage.ProgressDelta) storage.ProgressDelta {
	return storage.ProgressDelta{
		Calories: a.Calories - b.Calories,
		Protein:  a.Protein - b.Protein,
		Carbs:    a.Carbs - b.Carbs,
		Fats:     a.Fats - b.Fats,
		Burned:   a.Burned - b.Burned,
	}
}
