package profiles

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("profile not found")
	ErrInvalidHeight    = errors.New("height_cm must be greater than zero")
	ErrInvalidWeight    = errors.New("weight_kg must be greater than zero")
	ErrInvalidBirthDate = errors.New("date_of_birth must be YYYY-MM-DD in the past")
	ErrInvalidGender    = errors.New("gender must be male or female")
	ErrInvalidActivity  = errors.New("unknown activity level")
	ErrInvalidGoal      = errors.New("unknown goal")
)

var validActivityLevels = map[string]bool{
	"LAZY":          true,
	"MODERATE":      true,
	"ACTIVE":        true,
	"SPORTS_PERSON": true,
}

var validGoals = map[string]bool{
	"LOSE_WEIGHT": true,
	"MAINTAIN":    true,
	"GAIN_MUSCLE": true,
}

type Service struct {
	storage storage.ProfilesStorage
}

func NewService(st storage.ProfilesStorage) *Service {
	return &Service{storage: st}
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.storage.GetProfile(ctx, userID)
	if err != nil {
		return nil, ErrNotFound
	}

	dto := toDTO(profile)
	return &dto, nil
}

func (s *Service) UpsertProfile(ctx context.Context, userID uuid.UUID, req UpsertProfileRequest) (*ProfileDTO, error) {
	if req.HeightCm <= 0 {
		return nil, ErrInvalidHeight
	}
	if req.WeightKg <= 0 {
		return nil, ErrInvalidWeight
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil || !dob.Before(time.Now()) {
		return nil, ErrInvalidBirthDate
	}

	gender := strings.ToLower(strings.TrimSpace(req.Gender))
	if gender != "male" && gender != "female" {
		return nil, ErrInvalidGender
	}

	level := strings.ToUpper(strings.TrimSpace(req.ActivityLevel))
	if !validActivityLevels[level] {
		return nil, ErrInvalidActivity
	}

	goal := strings.ToUpper(strings.TrimSpace(req.Goal))
	if !validGoals[goal] {
		return nil, ErrInvalidGoal
	}

	profile := &storage.Profile{
		UserID:        userID,
		HeightCm:      req.HeightCm,
		WeightKg:      req.WeightKg,
		DateOfBirth:   dob,
		Gender:        gender,
		ActivityLevel: level,
		Goal:          goal,
	}

	if err := s.storage.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}

	dto := toDTO(profile)
	return &dto, nil
}
