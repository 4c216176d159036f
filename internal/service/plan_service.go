package service

import (
	"context"
	"log/slog"
	"sort"

	"mealplanner/internal/middleware"
	"mealplanner/internal/models"
	"mealplanner/internal/observability"
	"mealplanner/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// PlanEventPublisher delivers plan events to a user's live connections.
type PlanEventPublisher interface {
	PublishPlan(ctx context.Context, userID uint, event models.PlanEvent) error
}

// PlanService edits and reads a user's weekly plan.
type PlanService struct {
	plans   repository.PlanRepository
	catalog repository.CatalogRepository
	users   repository.UserRepository
	events  PlanEventPublisher
}

// NewPlanService wires the plan use cases. events may be nil.
func NewPlanService(
	plans repository.PlanRepository,
	catalog repository.CatalogRepository,
	users repository.UserRepository,
	events PlanEventPublisher,
) *PlanService {
	return &PlanService{plans: plans, catalog: catalog, users: users, events: events}
}

// SlotInput identifies a plan slot and, for upserts, the meal to put in it.
type SlotInput struct {
	UserID   uint
	Day      string
	MealType string
	MealID   uint
}

func parseSlot(in SlotInput) (models.Day, models.MealType, error) {
	if in.UserID == 0 {
		return "", "", models.NewUnauthorizedError("Authentication required")
	}
	day, err := models.ParseDay(in.Day)
	if err != nil {
		return "", "", err
	}
	mealType, err := models.ParseMealType(in.MealType)
	if err != nil {
		return "", "", err
	}
	return day, mealType, nil
}

// UpsertSlot assigns in.MealID to the slot, replacing whatever was there.
// Concurrent upserts on the same slot leave exactly one row behind.
func (s *PlanService) UpsertSlot(ctx context.Context, in SlotInput) (*models.PlanSlot, error) {
	day, mealType, err := parseSlot(in)
	if err != nil {
		return nil, err
	}
	if in.MealID == 0 {
		return nil, models.NewValidationError("meal_id is required")
	}

	ctx, span := observability.StartSpan(ctx, "PlanService.UpsertSlot",
		attribute.String("plan.day", string(day)),
		attribute.String("plan.meal_type", string(mealType)),
		attribute.Int("plan.meal_id", int(in.MealID)),
	)
	defer func() { span.End(err) }()

	if _, err = s.catalog.GetMeal(ctx, in.MealID); err != nil {
		return nil, err
	}

	slot := &models.PlanSlot{
		UserID:   in.UserID,
		Day:      day,
		MealType: mealType,
		MealID:   in.MealID,
	}
	if err = s.plans.Upsert(ctx, slot); err != nil {
		return nil, err
	}

	s.afterMutation(ctx, "upsert", in.UserID)
	return slot, nil
}

// RemoveSlot empties a slot. Removing an empty slot is not an error.
func (s *PlanService) RemoveSlot(ctx context.Context, in SlotInput) error {
	day, mealType, err := parseSlot(in)
	if err != nil {
		return err
	}
	if _, err := s.plans.Remove(ctx, in.UserID, day, mealType); err != nil {
		return err
	}
	s.afterMutation(ctx, "remove", in.UserID)
	return nil
}

// ClearPlan removes every slot the user has.
func (s *PlanService) ClearPlan(ctx context.Context, userID uint) error {
	if userID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	if _, err := s.plans.Clear(ctx, userID); err != nil {
		return err
	}
	s.afterMutation(ctx, "clear", userID)
	return nil
}

// ListPlanSummary returns the user's name and assigned slots, ordered by
// weekday then meal type.
func (s *PlanService) ListPlanSummary(ctx context.Context, userID uint) (*models.AccountSummary, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.plans.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Day.Index() != b.Day.Index() {
			return a.Day.Index() < b.Day.Index()
		}
		if a.MealType.Index() != b.MealType.Index() {
			return a.MealType.Index() < b.MealType.Index()
		}
		return a.MealName < b.MealName
	})
	if entries == nil {
		entries = []models.PlanEntry{}
	}

	return &models.AccountSummary{Username: user.Username, Meals: entries}, nil
}

// GetPlanWithTotals returns the user's plan grouped by day with per-day
// nutrition totals.
func (s *PlanService) GetPlanWithTotals(ctx context.Context, userID uint) (models.WeeklyPlan, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	rows, err := s.plans.ListWithMeals(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Aggregate(rows), nil
}

// afterMutation records the mutation and pushes fresh totals to the user's
// live connections. Delivery failures never fail the mutation.
func (s *PlanService) afterMutation(ctx context.Context, op string, userID uint) {
	observability.PlanMutations.WithLabelValues(op).Inc()

	if s.events == nil {
		return
	}
	plan, err := s.GetPlanWithTotals(ctx, userID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "Failed to load plan for event",
			slog.String("op", op),
			slog.String("error", err.Error()))
		return
	}
	event := models.PlanEvent{Type: models.PlanEventUpdated, Plan: plan}
	if err := s.events.PublishPlan(ctx, userID, event); err != nil {
		middleware.Logger.WarnContext(ctx, "Failed to publish plan event",
			slog.String("op", op),
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()))
	}
}
