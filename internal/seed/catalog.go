// Package seed loads the starter meal catalog and generates demo accounts
// with random weekly plans. It is used by cmd/seed and, when SEED_CATALOG is
// enabled, by server bootstrap.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"mealplanner/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed catalog.yml
var catalogYAML []byte

// Catalog is the YAML document describing ingredients and meals.
type Catalog struct {
	Ingredients []IngredientSpec `yaml:"ingredients"`
	Meals       []MealSpec       `yaml:"meals"`
}

// IngredientSpec declares one ingredient and its unit.
type IngredientSpec struct {
	Name string `yaml:"name"`
	Unit string `yaml:"unit"`
}

// MealSpec declares one meal. Macros are decimal strings; an empty string
// stores NULL.
type MealSpec struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Calories    *int          `yaml:"calories"`
	ProteinG    string        `yaml:"protein_g"`
	CarbsG      string        `yaml:"carbs_g"`
	FatG        string        `yaml:"fat_g"`
	Tags        string        `yaml:"tags"`
	ImageURL    string        `yaml:"image_url"`
	Ingredients []PortionSpec `yaml:"ingredients"`
}

// PortionSpec is a quantity of a declared ingredient within a meal.
type PortionSpec struct {
	Name     string `yaml:"name"`
	Quantity string `yaml:"quantity"`
}

// LoadResult counts the rows written by LoadCatalog.
type LoadResult struct {
	Ingredients  int
	Meals        int
	Compositions int
}

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks that names are unique, every portion names a declared
// ingredient and every decimal field parses.
func (c *Catalog) Validate() error {
	declared := make(map[string]struct{}, len(c.Ingredients))
	for _, ing := range c.Ingredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			return fmt.Errorf("catalog: ingredient with empty name")
		}
		if _, dup := declared[name]; dup {
			return fmt.Errorf("catalog: duplicate ingredient %q", name)
		}
		declared[name] = struct{}{}
	}

	meals := make(map[string]struct{}, len(c.Meals))
	for _, m := range c.Meals {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("catalog: meal with empty name")
		}
		if _, dup := meals[m.Name]; dup {
			return fmt.Errorf("catalog: duplicate meal %q", m.Name)
		}
		meals[m.Name] = struct{}{}

		for field, raw := range map[string]string{"protein_g": m.ProteinG, "carbs_g": m.CarbsG, "fat_g": m.FatG} {
			if _, err := parseMacro(raw); err != nil {
				return fmt.Errorf("catalog: meal %q %s: %w", m.Name, field, err)
			}
		}

		seen := make(map[string]struct{}, len(m.Ingredients))
		for _, p := range m.Ingredients {
			if _, ok := declared[p.Name]; !ok {
				return fmt.Errorf("catalog: meal %q uses undeclared ingredient %q", m.Name, p.Name)
			}
			if _, dup := seen[p.Name]; dup {
				return fmt.Errorf("catalog: meal %q lists %q twice", m.Name, p.Name)
			}
			seen[p.Name] = struct{}{}
			if _, err := decimal.NewFromString(p.Quantity); err != nil {
				return fmt.Errorf("catalog: meal %q quantity of %q: %w", m.Name, p.Name, err)
			}
		}
	}
	return nil
}

func parseMacro(raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// LoadCatalog writes cat in one transaction. Loading is idempotent: meals
// are matched by name and updated in place, ingredients and compositions are
// upserted on their unique keys.
func LoadCatalog(ctx context.Context, db *gorm.DB, cat *Catalog) (LoadResult, error) {
	var res LoadResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := upsertIngredients(tx, cat.Ingredients)
		if err != nil {
			return err
		}
		res.Ingredients = len(ids)

		for _, spec := range cat.Meals {
			meal, err := upsertMeal(tx, spec)
			if err != nil {
				return err
			}
			res.Meals++

			n, err := upsertCompositions(tx, meal.ID, spec.Ingredients, ids)
			if err != nil {
				return err
			}
			res.Compositions += n
		}
		return nil
	})
	return res, err
}

func upsertIngredients(tx *gorm.DB, specs []IngredientSpec) (map[string]uint, error) {
	ids := make(map[string]uint, len(specs))
	if len(specs) == 0 {
		return ids, nil
	}

	rows := make([]models.Ingredient, 0, len(specs))
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		name := strings.TrimSpace(s.Name)
		rows = append(rows, models.Ingredient{Name: name, Unit: s.Unit})
		names = append(names, name)
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ingredient_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"unit"}),
	}).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("upsert ingredients: %w", err)
	}

	// Conflicting rows do not report their IDs back on every dialect.
	var stored []models.Ingredient
	if err := tx.Where("ingredient_name IN ?", names).Find(&stored).Error; err != nil {
		return nil, fmt.Errorf("reload ingredients: %w", err)
	}
	for _, ing := range stored {
		ids[ing.Name] = ing.ID
	}
	return ids, nil
}

func upsertMeal(tx *gorm.DB, spec MealSpec) (*models.Meal, error) {
	protein, _ := parseMacro(spec.ProteinG)
	carbs, _ := parseMacro(spec.CarbsG)
	fat, _ := parseMacro(spec.FatG)

	meal := models.Meal{
		Name:        strings.TrimSpace(spec.Name),
		Description: spec.Description,
		Calories:    spec.Calories,
		ProteinG:    protein,
		CarbsG:      carbs,
		FatG:        fat,
		Tags:        models.NewTagSet(spec.Tags),
		ImageURL:    spec.ImageURL,
	}

	var existing models.Meal
	err := tx.Where("meal_name = ?", meal.Name).Order("meal_id").Limit(1).Find(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("find meal %q: %w", meal.Name, err)
	}
	if existing.ID == 0 {
		if err := tx.Omit(clause.Associations).Create(&meal).Error; err != nil {
			return nil, fmt.Errorf("create meal %q: %w", meal.Name, err)
		}
		return &meal, nil
	}

	meal.ID = existing.ID
	if err := tx.Omit(clause.Associations).Save(&meal).Error; err != nil {
		return nil, fmt.Errorf("update meal %q: %w", meal.Name, err)
	}
	return &meal, nil
}

func upsertCompositions(tx *gorm.DB, mealID uint, portions []PortionSpec, ids map[string]uint) (int, error) {
	if len(portions) == 0 {
		return 0, nil
	}
	rows := make([]models.MealIngredient, 0, len(portions))
	for _, p := range portions {
		rows = append(rows, models.MealIngredient{
			MealID:       mealID,
			IngredientID: ids[p.Name],
			Quantity:     decimal.RequireFromString(p.Quantity),
		})
	}
	if err := tx.Omit("Ingredient").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "meal_id"}, {Name: "ingredient_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
	}).Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("upsert compositions of meal %d: %w", mealID, err)
	}
	return len(rows), nil
}
