package suggest

import (
	"errors"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
)

var ErrProfileIncomplete = errors.New("profile is missing fields required for energy targets")

// activityMultipliers maps profile activity levels to TDEE factors.
var activityMultipliers = map[string]float64{
	"LAZY":          1.2,
	"MODERATE":      1.375,
	"ACTIVE":        1.55,
	"SPORTS_PERSON": 1.725,
}

// goalAdjustments shifts the daily calorie target relative to maintenance.
var goalAdjustments = map[string]float64{
	"LOSE_WEIGHT": -500,
	"MAINTAIN":    0,
	"GAIN_MUSCLE": 300,
}

// minDailyCalories floors the target so an aggressive deficit never produces
// an unsafe number.
const minDailyCalories = 1200

// BMR computes the Mifflin-St Jeor basal metabolic rate from a profile at
// the given reference time.
func BMR(profile *storage.Profile, at time.Time) (float64, error) {
	if profile == nil || profile.WeightKg <= 0 || profile.HeightCm <= 0 || profile.DateOfBirth.IsZero() {
		return 0, ErrProfileIncomplete
	}

	age := yearsBetween(profile.DateOfBirth, at)
	if age <= 0 {
		return 0, ErrProfileIncomplete
	}

	bmr := 10*profile.WeightKg + 6.25*profile.HeightCm - 5*float64(age)
	switch profile.Gender {
	case "male":
		bmr += 5
	case "female":
		bmr -= 161
	default:
		return 0, ErrProfileIncomplete
	}
	return bmr, nil
}

// TDEE is BMR scaled by the profile's activity multiplier.
func TDEE(profile *storage.Profile, at time.Time) (float64, error) {
	bmr, err := BMR(profile, at)
	if err != nil {
		return 0, err
	}

	multiplier, ok := activityMultipliers[profile.ActivityLevel]
	if !ok {
		return 0, ErrProfileIncomplete
	}
	return bmr * multiplier, nil
}

// CalorieTarget is the TDEE adjusted for the profile goal, floored at
// minDailyCalories.
func CalorieTarget(profile *storage.Profile, at time.Time) (float64, error) {
	tdee, err := TDEE(profile, at)
	if err != nil {
		return 0, err
	}

	adjustment, ok := goalAdjustments[profile.Goal]
	if !ok {
		return 0, ErrProfileIncomplete
	}

	target := tdee + adjustment
	if target < minDailyCalories {
		target = minDailyCalories
	}
	return target, nil
}

func yearsBetween(from, to time.Time) int {
	years := to.Year() - from.Year()
	anniversary := from.AddDate(years, 0, 0)
	if anniversary.After(to) {
		years--
	}
	return years
}
