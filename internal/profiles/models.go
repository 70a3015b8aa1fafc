package profiles

import (
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

// ProfileDTO is the wire form of a body profile.
type ProfileDTO struct {
	UserID        uuid.UUID `json:"user_id"`
	HeightCm      float64   `json:"height_cm"`
	WeightKg      float64   `json:"weight_kg"`
	DateOfBirth   string    `json:"date_of_birth"` // YYYY-MM-DD
	Gender        string    `json:"gender"`
	ActivityLevel string    `json:"activity_level"`
	Goal          string    `json:"goal"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type UpsertProfileRequest struct {
	HeightCm      float64 `json:"height_cm"`
	WeightKg      float64 `json:"weight_kg"`
	DateOfBirth   string  `json:"date_of_birth"`
	Gender        string  `json:"gender"`
	ActivityLevel string  `json:"activity_level"`
	Goal          string  `json:"goal"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toDTO(p *storage.Profile) ProfileDTO {
	return ProfileDTO{
		UserID:        p.UserID,
		HeightCm:      p.HeightCm,
		WeightKg:      p.WeightKg,
		DateOfBirth:   p.DateOfBirth.Format("2006-01-02"),
		Gender:        p.Gender,
		ActivityLevel: p.ActivityLevel,
		Goal:          p.Goal,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
