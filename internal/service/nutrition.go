package service

import (
	"mealplanner/internal/models"

	"github.com/shopspring/decimal"
)

func nullToZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

// Aggregate folds joined plan rows into a sparse weekly plan. Only days with
// at least one row appear. Missing macros count as zero; sums are exact.
func Aggregate(rows []models.PlanRow) models.WeeklyPlan {
	plan := make(models.WeeklyPlan)

	for _, row := range rows {
		day, ok := plan[row.Day]
		if !ok {
			day = models.DayPlan{Meals: make(map[models.MealType]models.MealSummary)}
		}

		var calories int64
		if row.Calories != nil {
			calories = int64(*row.Calories)
		}
		day.Meals[row.MealType] = models.MealSummary{
			MealID:   row.MealID,
			MealName: row.MealName,
			Calories: calories,
			CarbsG:   nullToZero(row.CarbsG),
			FatG:     nullToZero(row.FatG),
			ProteinG: nullToZero(row.ProteinG),
		}
		plan[row.Day] = day
	}

	// Totals come from the final slot map so each slot counts exactly once.
	for d, day := range plan {
		day.Totals = sumTotals(day.Meals)
		plan[d] = day
	}
	return plan
}

func sumTotals(meals map[models.MealType]models.MealSummary) models.NutritionTotals {
	totals := models.NutritionTotals{
		CarbsG:   decimal.Zero,
		FatG:     decimal.Zero,
		ProteinG: decimal.Zero,
	}
	for _, m := range meals {
		totals.Calories += m.Calories
		totals.CarbsG = totals.CarbsG.Add(m.CarbsG)
		totals.FatG = totals.FatG.Add(m.FatG)
		totals.ProteinG = totals.ProteinG.Add(m.ProteinG)
	}
	return totals
}
