package database

import "mealplanner/internal/models"

// PersistentModels returns the schema-managed GORM models in dependency
// order.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Meal{},
		&models.Ingredient{},
		&models.MealIngredient{},
		&models.User{},
		&models.PlanSlot{},
	}
}
