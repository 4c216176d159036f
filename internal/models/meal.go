// Package models contains data structures for the application's domain models.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Macros are rendered as JSON numbers rather than quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Meal is a catalog entry. The catalog is read-only for this service.
type Meal struct {
	ID          uint                `gorm:"column:meal_id;primaryKey" json:"meal_id"`
	Name        string              `gorm:"column:meal_name;size:255;not null" json:"meal_name"`
	Description string              `gorm:"type:text" json:"description"`
	Calories    *int                `json:"calories"`
	ProteinG    decimal.NullDecimal `gorm:"column:protein_g;type:numeric(8,2)" json:"protein_g"`
	CarbsG      decimal.NullDecimal `gorm:"column:carbs_g;type:numeric(8,2)" json:"carbs_g"`
	FatG        decimal.NullDecimal `gorm:"column:fat_g;type:numeric(8,2)" json:"fat_g"`
	Tags        TagSet              `gorm:"type:text" json:"tags"`
	ImageURL    string              `gorm:"column:image_url" json:"image_url"`

	Compositions []MealIngredient `gorm:"foreignKey:MealID;references:ID" json:"-"`
}

// TableName returns the database table name for Meal.
func (Meal) TableName() string {
	return "meals"
}

// Ingredient is a named ingredient with the unit its quantities are expressed in.
type Ingredient struct {
	ID   uint   `gorm:"column:ingredient_id;primaryKey" json:"ingredient_id"`
	Name string `gorm:"column:ingredient_name;size:255;uniqueIndex;not null" json:"ingredient_name"`
	Unit string `gorm:"size:32" json:"unit"`
}

// TableName returns the database table name for Ingredient.
func (Ingredient) TableName() string {
	return "ingredients"
}

// MealIngredient is the composition of a meal: one row per (meal, ingredient) pair.
type MealIngredient struct {
	MealID       uint            `gorm:"primaryKey;autoIncrement:false" json:"meal_id"`
	IngredientID uint            `gorm:"primaryKey;autoIncrement:false" json:"ingredient_id"`
	Quantity     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"quantity"`
	Ingredient   *Ingredient     `gorm:"foreignKey:IngredientID;references:ID" json:"ingredient,omitempty"`
}

// TableName returns the database table name for MealIngredient.
func (MealIngredient) TableName() string {
	return "meal_ingredients"
}

// CompositionLine is a resolved composition row for display.
type CompositionLine struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
}

// MealDetail is a meal together with its resolved ingredient list.
type MealDetail struct {
	Meal
	Ingredients []CompositionLine `json:"ingredients"`
}

// TagSet is an ordered set of lower-cased dietary tags. It is stored as a
// comma-joined string column.
type TagSet []string

// NewTagSet parses a comma-delimited tag list. Tags are trimmed and
// lower-cased; blanks and repeats are dropped, first occurrence wins.
func NewTagSet(raw string) TagSet {
	if strings.TrimSpace(raw) == "" {
		return TagSet{}
	}
	parts := strings.Split(raw, ",")
	out := make(TagSet, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		tag := normalizeTag(p)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Has reports whether tag is a whole member of the set (case-insensitive).
// "veg" is not a member of {"vegan"}.
func (t TagSet) Has(tag string) bool {
	tag = normalizeTag(tag)
	if tag == "" {
		return false
	}
	for _, existing := range t {
		if existing == tag {
			return true
		}
	}
	return false
}

// String returns the stored comma-joined form.
func (t TagSet) String() string {
	return strings.Join(t, ",")
}

// GormDataType tells GORM the column type used for TagSet.
func (TagSet) GormDataType() string {
	return "text"
}

// Scan implements sql.Scanner.
func (t *TagSet) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*t = TagSet{}
	case string:
		*t = NewTagSet(v)
	case []byte:
		*t = NewTagSet(string(v))
	default:
		return fmt.Errorf("cannot scan %T into TagSet", value)
	}
	return nil
}

// Value implements driver.Valuer.
func (t TagSet) Value() (driver.Value, error) {
	return t.String(), nil
}

// MarshalJSON renders the set as a JSON array, never null.
func (t TagSet) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// UnmarshalJSON accepts either an array of tags or a comma-delimited string.
func (t *TagSet) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = NewTagSet(strings.Join(list, ","))
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("tags must be an array or a comma-delimited string: %w", err)
	}
	*t = NewTagSet(raw)
	return nil
}
