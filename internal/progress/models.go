package progress

import (
	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

// DailyProgressDTO is the wire form of one day's ledger row.
type DailyProgressDTO struct {
	UserID         uuid.UUID `json:"user_id"`
	Date           string    `json:"date"`
	CaloriesIntake float64   `json:"calories_intake"`
	ProteinIntake  float64   `json:"protein_intake"`
	CarbsIntake    float64   `json:"carbs_intake"`
	FatsIntake     float64   `json:"fats_intake"`
	CaloriesBurned float64   `json:"calories_burned"`
	StepsCount     int       `json:"steps_count"`
	WaterIntakeMl  int       `json:"water_intake_ml"`
	GoalStatus     string    `json:"goal_status"`
}

// UpdateAncillaryRequest patches the fields the reconciler never touches;
// nil fields are unchanged.
type UpdateAncillaryRequest struct {
	StepsCount    *int    `json:"steps_count"`
	WaterIntakeMl *int    `json:"water_intake_ml"`
	GoalStatus    *string `json:"goal_status"`
}

// DashboardStatsResponse aggregates a date range for the dashboard.
type DashboardStatsResponse struct {
	From              string             `json:"from"`
	To                string             `json:"to"`
	Days              []DailyProgressDTO `json:"days"`
	TotalIntake       float64            `json:"total_calories_intake"`
	TotalBurned       float64            `json:"total_calories_burned"`
	AvgIntakePerDay   float64            `json:"avg_calories_intake_per_day"`
	AvgBurnedPerDay   float64            `json:"avg_calories_burned_per_day"`
	TotalSteps        int                `json:"total_steps"`
	TotalWaterIntakeL float64            `json:"total_water_intake_l"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toDTO(row *storage.DailyProgress) DailyProgressDTO {
	return DailyProgressDTO{
		UserID:         row.UserID,
		Date:           row.Date,
		CaloriesIntake: row.CaloriesIntake,
		ProteinIntake:  row.ProteinIntake,
		CarbsIntake:    row.CarbsIntake,
		FatsIntake:     row.FatsIntake,
		CaloriesBurned: row.CaloriesBurned,
		StepsCount:     row.StepsCount,
		WaterIntakeMl:  row.WaterIntakeMl,
		GoalStatus:     row.GoalStatus,
	}
}
