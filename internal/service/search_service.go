// Package service holds the application's use cases: catalog search, plan
// editing, nutrition aggregation and account sessions.
package service

import (
	"context"
	"sort"
	"strings"

	"mealplanner/internal/cache"
	"mealplanner/internal/models"
	"mealplanner/internal/observability"
	"mealplanner/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// SearchService answers catalog queries. Every method is a pure read.
type SearchService struct {
	catalog repository.CatalogRepository
}

func NewSearchService(catalog repository.CatalogRepository) *SearchService {
	return &SearchService{catalog: catalog}
}

// normalizeIngredientNames trims names and drops blanks and repeats, keeping
// first-seen order. Case is preserved because names match as stored.
func normalizeIngredientNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func sortMeals(meals []models.Meal) {
	sort.SliceStable(meals, func(i, j int) bool {
		if meals[i].Name != meals[j].Name {
			return meals[i].Name < meals[j].Name
		}
		return meals[i].ID < meals[j].ID
	})
}

// SearchByIngredients returns the meals whose compositions contain every
// distinct name in names. Meals may contain other ingredients too. An empty
// query yields an empty result without touching the store.
func (s *SearchService) SearchByIngredients(ctx context.Context, names []string) ([]models.Meal, error) {
	observability.SearchRequests.WithLabelValues("ingredients").Inc()

	distinct := normalizeIngredientNames(names)
	if len(distinct) == 0 {
		return []models.Meal{}, nil
	}

	ctx, span := observability.StartSpan(ctx, "SearchService.SearchByIngredients",
		attribute.Int("search.ingredients", len(distinct)))
	meals, err := s.catalog.FindMealsContainingAll(ctx, distinct)
	span.End(err)
	if err != nil {
		return nil, err
	}

	sortMeals(meals)
	return meals, nil
}

// SearchByPreference returns meals carrying tag as a whole tag,
// case-insensitively. A blank tag yields an empty result.
func (s *SearchService) SearchByPreference(ctx context.Context, tag string) ([]models.Meal, error) {
	observability.SearchRequests.WithLabelValues("preference").Inc()

	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return []models.Meal{}, nil
	}

	candidates, err := s.catalog.FindMealsByTag(ctx, tag)
	if err != nil {
		return nil, err
	}

	meals := make([]models.Meal, 0, len(candidates))
	for _, m := range candidates {
		if m.Tags.Has(tag) {
			meals = append(meals, m)
		}
	}
	sortMeals(meals)
	return meals, nil
}

// GetMealDetail returns a meal with its resolved ingredient list.
func (s *SearchService) GetMealDetail(ctx context.Context, mealID uint) (*models.MealDetail, error) {
	var detail models.MealDetail
	err := cache.Aside(ctx, cache.MealDetailKey(mealID), &detail, cache.MealTTL, func() error {
		meal, err := s.catalog.GetMeal(ctx, mealID)
		if err != nil {
			return err
		}
		lines, err := s.catalog.ListCompositions(ctx, mealID)
		if err != nil {
			return err
		}
		detail = models.MealDetail{Meal: *meal, Ingredients: lines}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListMeals returns the whole catalog ordered by name.
func (s *SearchService) ListMeals(ctx context.Context) ([]models.Meal, error) {
	meals, err := s.catalog.ListMeals(ctx)
	if err != nil {
		return nil, err
	}
	sortMeals(meals)
	return meals, nil
}
