package repository

import (
	"context"
	"errors"
	"strings"

	"mealplanner/internal/cache"
	"mealplanner/internal/models"
	"mealplanner/internal/observability"

	"gorm.io/gorm"
)

// CatalogRepository is the read-only view of meals and their compositions.
type CatalogRepository interface {
	GetMeal(ctx context.Context, id uint) (*models.Meal, error)
	ListMeals(ctx context.Context) ([]models.Meal, error)
	ListCompositions(ctx context.Context, mealID uint) ([]models.CompositionLine, error)
	// FindMealsContainingAll returns meals whose compositions include every
	// name in names. names must already be distinct.
	FindMealsContainingAll(ctx context.Context, names []string) ([]models.Meal, error)
	// FindMealsByTag returns candidate meals whose tag column contains tag as
	// a comma-delimited token. tag must already be trimmed and lower-cased.
	FindMealsByTag(ctx context.Context, tag string) ([]models.Meal, error)
}

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository returns a CatalogRepository backed by db.
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetMeal(ctx context.Context, id uint) (*models.Meal, error) {
	var meal models.Meal
	err := cache.Aside(ctx, cache.MealKey(id), &meal, cache.MealTTL, func() error {
		ctx, span := observability.StartRepositorySpan(ctx, "GetMeal", "meals")
		defer observability.TrackQuery("get", "meals")()

		err := readDB(r.db).WithContext(ctx).First(&meal, id).Error
		span.End(err)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Meal", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &meal, nil
}

func (r *catalogRepository) ListMeals(ctx context.Context) ([]models.Meal, error) {
	meals := []models.Meal{}
	err := cache.Aside(ctx, cache.MealListKey, &meals, cache.MealTTL, func() error {
		defer observability.TrackQuery("list", "meals")()
		if err := readDB(r.db).WithContext(ctx).Order("meal_name, meal_id").Find(&meals).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meals, nil
}

func (r *catalogRepository) ListCompositions(ctx context.Context, mealID uint) ([]models.CompositionLine, error) {
	defer observability.TrackQuery("list", "meal_ingredients")()

	lines := []models.CompositionLine{}
	err := readDB(r.db).WithContext(ctx).
		Table("meal_ingredients AS mi").
		Select("i.ingredient_name AS name, mi.quantity, i.unit").
		Joins("JOIN ingredients AS i ON i.ingredient_id = mi.ingredient_id").
		Where("mi.meal_id = ?", mealID).
		Order("i.ingredient_name").
		Scan(&lines).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return lines, nil
}

func (r *catalogRepository) FindMealsContainingAll(ctx context.Context, names []string) ([]models.Meal, error) {
	meals := []models.Meal{}
	if len(names) == 0 {
		return meals, nil
	}

	ctx, span := observability.StartRepositorySpan(ctx, "FindMealsContainingAll", "meal_ingredients")
	defer observability.TrackQuery("search_ingredients", "meal_ingredients")()

	db := readDB(r.db).WithContext(ctx)

	// A meal qualifies when the number of distinct query ingredients it
	// contains equals the query size. Extra ingredients are allowed.
	matching := db.Table("meal_ingredients AS mi").
		Select("mi.meal_id").
		Joins("JOIN ingredients AS i ON i.ingredient_id = mi.ingredient_id").
		Where("i.ingredient_name IN ?", names).
		Group("mi.meal_id").
		Having("COUNT(DISTINCT i.ingredient_name) = ?", len(names))

	err := db.Where("meal_id IN (?)", matching).Order("meal_name, meal_id").Find(&meals).Error
	span.End(err)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return meals, nil
}

func (r *catalogRepository) FindMealsByTag(ctx context.Context, tag string) ([]models.Meal, error) {
	meals := []models.Meal{}
	if tag == "" {
		return meals, nil
	}

	ctx, span := observability.StartRepositorySpan(ctx, "FindMealsByTag", "meals")
	defer observability.TrackQuery("search_tag", "meals")()

	// Padding with separators keeps "veg" from matching inside "vegan".
	// Spaces are dropped on both sides so multi-word tags still line up.
	err := readDB(r.db).WithContext(ctx).
		Where("LOWER(',' || REPLACE(tags, ' ', '') || ',') LIKE ?", "%,"+strings.ReplaceAll(tag, " ", "")+",%").
		Order("meal_name, meal_id").
		Find(&meals).Error
	span.End(err)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return meals, nil
}
