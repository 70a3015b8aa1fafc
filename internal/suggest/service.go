package suggest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/ai"
	"github.com/fitfuel/fitfuel-server/internal/config"
	"github.com/fitfuel/fitfuel-server/internal/ledger"
	"github.com/fitfuel/fitfuel-server/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrProfileRequired = errors.New("profile must be set up before requesting suggestions")
	ErrAIUnavailable   = errors.New("suggestion provider unavailable")
)

// mealSlots is the slot order suggestions fill; one suggestion per missing
// slot at most.
var mealSlots = []string{"breakfast", "lunch", "dinner", "snack"}

var validTimeSlots = map[string]bool{
	"morning":   true,
	"afternoon": true,
	"evening":   true,
}

// catalogueOfferLimit caps how many catalogue rows are offered to the model.
const catalogueOfferLimit = 25

type Service struct {
	config        *config.Config
	profiles      storage.ProfilesStorage
	catalogue     storage.CatalogueStorage
	dietPlans     storage.DietPlansStorage
	workoutPlans  storage.WorkoutPlansStorage
	notifications storage.NotificationsStorage
	provider      ai.Provider
	clock         *ledger.Clock
}

func NewService(
	cfg *config.Config,
	profiles storage.ProfilesStorage,
	catalogue storage.CatalogueStorage,
	dietPlans storage.DietPlansStorage,
	workoutPlans storage.WorkoutPlansStorage,
	notifications storage.NotificationsStorage,
	provider ai.Provider,
	clock *ledger.Clock,
) *Service {
	return &Service{
		config:        cfg,
		profiles:      profiles,
		catalogue:     catalogue,
		dietPlans:     dietPlans,
		workoutPlans:  workoutPlans,
		notifications: notifications,
		provider:      provider,
		clock:         clock,
	}
}

// SuggestDiet fills today's empty meal slots with AI-proposed items. Slots
// that already hold an item are never touched; insertions are PENDING and
// plan_type AI, so the daily ledger is unaffected until the user completes
// them.
func (s *Service) SuggestDiet(ctx context.Context, userID uuid.UUID) (*DietSuggestionResponse, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, ErrProfileRequired
	}

	target, err := CalorieTarget(profile, s.referenceTime())
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	plan, existing, err := s.ensureDietPlan(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	missing := mealSlots
	if existing {
		items, err := s.dietPlans.ListItems(ctx, plan.ID)
		if err != nil {
			return nil, err
		}
		missing = missingMealSlots(items)
	}

	resp := &DietSuggestionResponse{
		Date:           today,
		PlanID:         plan.ID,
		TargetCalories: target,
		Inserted:       []InsertedDietDTO{},
	}
	if len(missing) == 0 {
		return resp, nil
	}

	foods, err := s.catalogue.ListFoods(ctx, "", catalogueOfferLimit, 0)
	if err != nil {
		return nil, err
	}
	offer := make([]ai.FoodOption, 0, len(foods))
	for _, f := range foods {
		offer = append(offer, ai.FoodOption{
			Name:          f.Name,
			Calories:      f.Calories,
			Protein:       f.Protein,
			ServingSizeGm: f.ServingSizeGm,
		})
	}

	suggestions, err := s.provider.SuggestDiet(ctx, ai.DietSuggestionRequest{
		Date:           today,
		Goal:           profile.Goal,
		TargetCalories: target,
		MissingSlots:   missing,
		Foods:          offer,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}

	openSlots := make(map[string]bool, len(missing))
	for _, slot := range missing {
		openSlots[slot] = true
	}

	now := time.Now().UTC()
	for _, sug := range suggestions {
		if len(resp.Inserted) >= s.config.SuggestMaxDietItems {
			break
		}
		slot := strings.ToLower(strings.TrimSpace(sug.MealSlot))
		if !openSlots[slot] || sug.QuantityGm <= 0 {
			continue
		}
		food, err := s.catalogue.GetFoodByName(ctx, sug.FoodName)
		if err != nil {
			continue // model named a food we do not carry
		}

		item := &storage.DietItem{
			ID:          uuid.New(),
			PlanID:      plan.ID,
			UserID:      userID,
			Date:        plan.Date,
			FoodID:      food.ID,
			MealSlot:    slot,
			QuantityGm:  sug.QuantityGm,
			Status:      ledger.StatusPending,
			PlanType:    ledger.PlanTypeAI,
			CreatedByID: userID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.dietPlans.CreateItem(ctx, item); err != nil {
			return nil, err
		}
		openSlots[slot] = false

		resp.Inserted = append(resp.Inserted, InsertedDietDTO{
			ID:         item.ID,
			FoodID:     food.ID,
			FoodName:   food.Name,
			MealSlot:   slot,
			QuantityGm: item.QuantityGm,
			Status:     item.Status,
			PlanType:   item.PlanType,
			CreatedAt:  item.CreatedAt,
		})
	}

	if len(resp.Inserted) > 0 {
		s.notify(ctx, userID, "Diet suggestions ready",
			fmt.Sprintf("Added %d suggested meal(s) to your plan for %s.", len(resp.Inserted), today))
	}
	return resp, nil
}

// SuggestWorkout inserts AI-proposed workout items for today, skipping
// activities already planned (deduplicated by activity id) and capping the
// number of insertions.
func (s *Service) SuggestWorkout(ctx context.Context, userID uuid.UUID) (*WorkoutSuggestionResponse, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, ErrProfileRequired
	}

	tdee, err := TDEE(profile, s.referenceTime())
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	plan, existing, err := s.ensureWorkoutPlan(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	planned := make(map[uuid.UUID]bool)
	var plannedNames []string
	if existing {
		items, err := s.workoutPlans.ListItems(ctx, plan.ID)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if planned[item.ActivityID] {
				continue
			}
			planned[item.ActivityID] = true
			if activity, err := s.catalogue.GetActivity(ctx, item.ActivityID); err == nil {
				plannedNames = append(plannedNames, activity.Name)
			}
		}
	}

	activities, err := s.catalogue.ListActivities(ctx, "", catalogueOfferLimit, 0)
	if err != nil {
		return nil, err
	}
	offer := make([]ai.ActivityOption, 0, len(activities))
	for _, a := range activities {
		offer = append(offer, ai.ActivityOption{
			Name:          a.Name,
			CaloriesPerKg: a.CaloriesPerKg,
			DurationMin:   a.DurationMin,
		})
	}

	suggestions, err := s.provider.SuggestWorkout(ctx, ai.WorkoutSuggestionRequest{
		Date:               today,
		Goal:               profile.Goal,
		ActivityLevel:      profile.ActivityLevel,
		TargetBurn:         tdee * 0.15,
		WeightKg:           profile.WeightKg,
		ExistingActivities: plannedNames,
		Activities:         offer,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}

	resp := &WorkoutSuggestionResponse{
		Date:     today,
		PlanID:   plan.ID,
		Inserted: []InsertedWorkoutDTO{},
	}

	now := time.Now().UTC()
	for _, sug := range suggestions {
		if len(resp.Inserted) >= s.config.SuggestMaxWorkoutItems {
			break
		}
		slot := strings.ToLower(strings.TrimSpace(sug.TimeSlot))
		if !validTimeSlots[slot] || sug.DurationMin <= 0 {
			continue
		}
		activity, err := s.catalogue.GetActivityByName(ctx, sug.ActivityName)
		if err != nil || planned[activity.ID] {
			continue
		}

		item := &storage.WorkoutItem{
			ID:          uuid.New(),
			PlanID:      plan.ID,
			UserID:      userID,
			Date:        plan.Date,
			ActivityID:  activity.ID,
			TimeSlot:    slot,
			DurationMin: sug.DurationMin,
			Status:      ledger.StatusPending,
			PlanType:    ledger.PlanTypeAI,
			CreatedByID: userID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.workoutPlans.CreateItem(ctx, item); err != nil {
			return nil, err
		}
		planned[activity.ID] = true

		resp.Inserted = append(resp.Inserted, InsertedWorkoutDTO{
			ID:           item.ID,
			ActivityID:   activity.ID,
			ActivityName: activity.Name,
			TimeSlot:     slot,
			DurationMin:  item.DurationMin,
			Status:       item.Status,
			PlanType:     item.PlanType,
			CreatedAt:    item.CreatedAt,
		})
	}

	if len(resp.Inserted) > 0 {
		s.notify(ctx, userID, "Workout suggestions ready",
			fmt.Sprintf("Added %d suggested workout(s) to your plan for %s.", len(resp.Inserted), today))
	}
	return resp, nil
}

func (s *Service) ensureDietPlan(ctx context.Context, userID uuid.UUID, date string) (*storage.DietPlan, bool, error) {
	plan, found, err := s.dietPlans.GetPlanByDate(ctx, userID, date)
	if err != nil {
		return nil, false, err
	}
	if found {
		return plan, true, nil
	}

	now := time.Now().UTC()
	plan = &storage.DietPlan{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      date,
		Title:     "AI suggested plan",
		PlanType:  ledger.PlanTypeAI,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.dietPlans.CreatePlan(ctx, plan, nil); err != nil {
		return nil, false, err
	}
	return plan, false, nil
}

func (s *Service) ensureWorkoutPlan(ctx context.Context, userID uuid.UUID, date string) (*storage.WorkoutPlan, bool, error) {
	plan, found, err := s.workoutPlans.GetPlanByDate(ctx, userID, date)
	if err != nil {
		return nil, false, err
	}
	if found {
		return plan, true, nil
	}

	now := time.Now().UTC()
	plan = &storage.WorkoutPlan{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      date,
		Title:     "AI suggested plan",
		PlanType:  ledger.PlanTypeAI,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.workoutPlans.CreatePlan(ctx, plan, nil); err != nil {
		return nil, false, err
	}
	return plan, false, nil
}

// referenceTime anchors age computation to the reference calendar day.
func (s *Service) referenceTime() time.Time {
	t, err := time.Parse(ledger.DateLayout, s.clock.Today())
	if err != nil {
		return time.Now().UTC()
	}
	return t
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, title, body string) {
	err := s.notifications.CreateNotification(ctx, &storage.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      "plan_suggested",
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("suggest: failed to create notification for %s: %v", userID, err)
	}
}

func missingMealSlots(items []storage.DietItem) []string {
	present := make(map[string]bool, len(items))
	for _, item := range items {
		present[item.MealSlot] = true
	}

	var missing []string
	for _, slot := range mealSlots {
		if !present[slot] {
			missing = append(missing, slot)
		}
	}
	return missing
}
