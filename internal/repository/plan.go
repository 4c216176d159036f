package repository

import (
	"context"

	"mealplanner/internal/models"
	"mealplanner/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlanRepository stores weekly plan slots.
type PlanRepository interface {
	// Upsert assigns slot.MealID to the slot's (user, day, meal type) key in a
	// single statement.
	Upsert(ctx context.Context, slot *models.PlanSlot) error
	Remove(ctx context.Context, userID uint, day models.Day, mealType models.MealType) (int64, error)
	Clear(ctx context.Context, userID uint) (int64, error)
	ListEntries(ctx context.Context, userID uint) ([]models.PlanEntry, error)
	ListWithMeals(ctx context.Context, userID uint) ([]models.PlanRow, error)
}

type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository returns a PlanRepository backed by db.
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Upsert(ctx context.Context, slot *models.PlanSlot) error {
	ctx, span := observability.StartRepositorySpan(ctx, "Upsert", "meal_plan")
	defer observability.TrackQuery("upsert", "meal_plan")()

	err := r.db.WithContext(ctx).
		Omit("Meal", "User").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}, {Name: "meal_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"meal_id", "updated_at"}),
		}).
		Create(slot).Error
	span.End(err)
	if err != nil {
		if isForeignKeyError(err) {
			return models.NewNotFoundError("Meal", slot.MealID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *planRepository) Remove(ctx context.Context, userID uint, day models.Day, mealType models.MealType) (int64, error) {
	defer observability.TrackQuery("delete", "meal_plan")()

	res := r.db.WithContext(ctx).
		Where("user_id = ? AND day = ? AND meal_type = ?", userID, day, mealType).
		Delete(&models.PlanSlot{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *planRepository) Clear(ctx context.Context, userID uint) (int64, error) {
	defer observability.TrackQuery("clear", "meal_plan")()

	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.PlanSlot{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *planRepository) ListEntries(ctx context.Context, userID uint) ([]models.PlanEntry, error) {
	defer observability.TrackQuery("list", "meal_plan")()

	entries := []models.PlanEntry{}
	err := r.db.WithContext(ctx).
		Table("meal_plan AS mp").
		Select("mp.meal_id, m.meal_name, mp.day, mp.meal_type").
		Joins("JOIN meals AS m ON m.meal_id = mp.meal_id").
		Where("mp.user_id = ?", userID).
		Scan(&entries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *planRepository) ListWithMeals(ctx context.Context, userID uint) ([]models.PlanRow, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "ListWithMeals", "meal_plan")
	defer observability.TrackQuery("list_totals", "meal_plan")()

	rows := []models.PlanRow{}
	err := r.db.WithContext(ctx).
		Table("meal_plan AS mp").
		Select("mp.day, mp.meal_type, mp.meal_id, m.meal_name, m.calories, m.carbs_g, m.fat_g, m.protein_g").
		Joins("JOIN meals AS m ON m.meal_id = mp.meal_id").
		Where("mp.user_id = ?", userID).
		Scan(&rows).Error
	span.End(err)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}
