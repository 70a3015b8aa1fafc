package workoutplans

import (
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

// WorkoutPlanDTO is the wire form of a plan together with its items.
type WorkoutPlanDTO struct {
	ID        uuid.UUID        `json:"id"`
	Date      string           `json:"date"`
	Title     string           `json:"title"`
	PlanType  string           `json:"plan_type"`
	Items     []WorkoutItemDTO `json:"items"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type WorkoutItemDTO struct {
	ID          uuid.UUID `json:"id"`
	PlanID      uuid.UUID `json:"plan_id"`
	Date        string    `json:"date"`
	ActivityID  uuid.UUID `json:"activity_id"`
	TimeSlot    string    `json:"time_slot"`
	DurationMin float64   `json:"duration_min"`
	Status      string    `json:"status"`
	PlanType    string    `json:"plan_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreatePlanRequest struct {
	Date  string           `json:"date"`
	Title string           `json:"title"`
	Items []NewItemRequest `json:"items"`
}

type NewItemRequest struct {
	ActivityID  uuid.UUID `json:"activity_id"`
	TimeSlot    string    `json:"time_slot"`
	DurationMin float64   `json:"duration_min"`
}

// UpdateItemRequest carries a partial item update; nil fields are unchanged.
type UpdateItemRequest struct {
	Status      *string  `json:"status"`
	DurationMin *float64 `json:"duration_min"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func planToDTO(p *storage.WorkoutPlan, items []storage.WorkoutItem) WorkoutPlanDTO {
	dto := WorkoutPlanDTO{
		ID:        p.ID,
		Date:      p.Date,
		Title:     p.Title,
		PlanType:  p.PlanType,
		Items:     make([]WorkoutItemDTO, 0, len(items)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for i := range items {
		dto.Items = append(dto.Items, itemToDTO(&items[i]))
	}
	return dto
}

func itemToDTO(item *storage.WorkoutItem) WorkoutItemDTO {
	return WorkoutItemDTO{
		ID:          item.ID,
		PlanID:      item.PlanID,
		Date:        item.Date,
		ActivityID:  item.ActivityID,
		TimeSlot:    item.TimeSlot,
		DurationMin: item.DurationMin,
		Status:      item.Status,
		PlanType:    item.PlanType,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}
