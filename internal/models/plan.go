package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Day is a weekday label in a weekly plan.
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
)

// Days lists the weekdays in plan order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseDay resolves a weekday from its full name or three-letter
// abbreviation, case-insensitively.
func ParseDay(raw string) (Day, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", NewValidationError("day is required")
	}
	for _, d := range Days {
		full := strings.ToLower(string(d))
		if s == full || s == full[:3] {
			return d, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("invalid day %q", raw))
}

// Index returns the position of d in the week, or len(Days) if unknown.
func (d Day) Index() int {
	for i, day := range Days {
		if day == d {
			return i
		}
	}
	return len(Days)
}

// MealType is the slot within a day.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// MealTypes lists meal types in display order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner, Snack}

// ParseMealType resolves a meal type case-insensitively.
func ParseMealType(raw string) (MealType, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", NewValidationError("meal_type is required")
	}
	for _, mt := range MealTypes {
		if s == string(mt) {
			return mt, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("invalid meal_type %q", raw))
}

// Index returns the display position of mt, or len(MealTypes) if unknown.
func (mt MealType) Index() int {
	for i, t := range MealTypes {
		if t == mt {
			return i
		}
	}
	return len(MealTypes)
}

// PlanSlot assigns a meal to one (user, day, meal_type) coordinate.
// The triple is unique.
type PlanSlot struct {
	ID        uint      `gorm:"column:meal_plan_id;primaryKey" json:"meal_plan_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_meal_plan_slot,priority:1" json:"user_id"`
	Day       Day       `gorm:"type:varchar(16);not null;uniqueIndex:idx_meal_plan_slot,priority:2" json:"day"`
	MealType  MealType  `gorm:"type:varchar(16);not null;uniqueIndex:idx_meal_plan_slot,priority:3" json:"meal_type"`
	MealID    uint      `gorm:"not null;index" json:"meal_id"`
	Meal      *Meal     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for PlanSlot.
func (PlanSlot) TableName() string {
	return "meal_plan"
}

// PlanRow is a plan slot joined with the nutrition fields of its meal.
type PlanRow struct {
	Day      Day
	MealType MealType
	MealID   uint
	MealName string
	Calories *int
	CarbsG   decimal.NullDecimal
	FatG     decimal.NullDecimal
	ProteinG decimal.NullDecimal
}

// PlanEntry is one assigned slot resolved with the meal's display name.
type PlanEntry struct {
	MealID   uint     `json:"meal_id"`
	MealName string   `json:"meal_name"`
	Day      Day      `json:"day"`
	MealType MealType `json:"meal_type"`
}

// AccountSummary is a user's name plus their assigned slots.
type AccountSummary struct {
	Username string      `json:"username"`
	Meals    []PlanEntry `json:"meals"`
}

// MealSummary is the per-slot view of an assigned meal.
type MealSummary struct {
	MealID   uint            `json:"meal_id"`
	MealName string          `json:"meal_name"`
	Calories int64           `json:"calories"`
	CarbsG   decimal.Decimal `json:"carbs_g"`
	FatG     decimal.Decimal `json:"fat_g"`
	ProteinG decimal.Decimal `json:"protein_g"`
}

// NutritionTotals sums the macros of every meal assigned on a day.
type NutritionTotals struct {
	Calories int64           `json:"calories"`
	CarbsG   decimal.Decimal `json:"carbs_g"`
	FatG     decimal.Decimal `json:"fat_g"`
	ProteinG decimal.Decimal `json:"protein_g"`
}

// DayPlan holds a day's assigned meals and their totals.
type DayPlan struct {
	Meals  map[MealType]MealSummary `json:"meals"`
	Totals NutritionTotals          `json:"totals"`
}

// WeeklyPlan maps each day with at least one assigned slot to its plan.
// Days without assignments are absent.
type WeeklyPlan map[Day]DayPlan

// PlanEvent is pushed to a user's live connections after their plan changes.
type PlanEvent struct {
	Type string     `json:"type"`
	Plan WeeklyPlan `json:"plan"`
}

// PlanEventUpdated is the PlanEvent type sent after any slot mutation.
const PlanEventUpdated = "plan_updated"
