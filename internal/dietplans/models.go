package dietplans

import (
	"time"

	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

// DietPlanDTO is the wire form of a plan together with its items.
type DietPlanDTO struct {
	ID        uuid.UUID     `json:"id"`
	Date      string        `json:"date"`
	Title     string        `json:"title"`
	PlanType  string        `json:"plan_type"`
	Items     []DietItemDTO `json:"items"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type DietItemDTO struct {
	ID         uuid.UUID `json:"id"`
	PlanID     uuid.UUID `json:"plan_id"`
	Date       string    `json:"date"`
	FoodID     uuid.UUID `json:"food_id"`
	MealSlot   string    `json:"meal_slot"`
	QuantityGm float64   `json:"quantity_gm"`
	Status     string    `json:"status"`
	PlanType   string    `json:"plan_type"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreatePlanRequest struct {
	Date  string           `json:"date"`
	Title string           `json:"title"`
	Items []NewItemRequest `json:"items"`
}

type NewItemRequest struct {
	FoodID     uuid.UUID `json:"food_id"`
	MealSlot   string    `json:"meal_slot"`
	QuantityGm float64   `json:"quantity_gm"`
}

// UpdateItemRequest carries a partial item update; nil fields are unchanged.
type UpdateItemRequest struct {
	Status     *string  `json:"status"`
	QuantityGm *float64 `json:"quantity_gm"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func planToDTO(p *storage.DietPlan, items []storage.DietItem) DietPlanDTO {
	dto := DietPlanDTO{
		ID:        p.ID,
		Date:      p.Date,
		Title:     p.Title,
		PlanType:  p.PlanType,
		Items:     make([]DietItemDTO, 0, len(items)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for i := range items {
		dto.Items = append(dto.Items, itemToDTO(&items[i]))
	}
	return dto
}

func itemToDTO(item *storage.DietItem) DietItemDTO {
	return DietItemDTO{
		ID:         item.ID,
		PlanID:     item.PlanID,
		Date:       item.Date,
		FoodID:     item.FoodID,
		MealSlot:   item.MealSlot,
		QuantityGm: item.QuantityGm,
		Status:     item.Status,
		PlanType:   item.PlanType,
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
	}
}
