package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"mealplanner/internal/database"
	"mealplanner/internal/models"

	"gorm.io/gorm"
)

type migrationState struct {
	database.Migration
	Applied bool
}

func migrationStates(registered []database.Migration, applied []int) []migrationState {
	out := make([]migrationState, 0, len(registered))
	for _, m := range registered {
		out = append(out, migrationState{Migration: m, Applied: slices.Contains(applied, m.Version)})
	}
	return out
}

type tableCount struct {
	Table string
	Rows  int64
	// Missing is set when the table has not been created yet.
	Missing bool
}

// countTables reports row counts for the catalog and plan tables.
func countTables(ctx context.Context, db *gorm.DB) ([]tableCount, error) {
	tables := []struct {
		name  string
		model any
	}{
		{"ingredients", &models.Ingredient{}},
		{"meals", &models.Meal{}},
		{"meal_ingredients", &models.MealIngredient{}},
		{"users", &models.User{}},
		{"meal_plan", &models.PlanSlot{}},
	}

	out := make([]tableCount, 0, len(tables))
	for _, t := range tables {
		tc := tableCount{Table: t.name}
		if !db.Migrator().HasTable(t.model) {
			tc.Missing = true
			out = append(out, tc)
			continue
		}
		if err := db.WithContext(ctx).Model(t.model).Count(&tc.Rows).Error; err != nil {
			return nil, fmt.Errorf("%s: %w", t.name, err)
		}
		out = append(out, tc)
	}
	return out, nil
}

func writeStatus(w io.Writer, status *database.SchemaStatus, states []migrationState, counts []tableCount) error {
	fmt.Fprintf(w, "mode=%s env=%s run_sql=%t run_auto=%t\n\n",
		status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tNAME\tSTATE")
	for _, s := range states {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Fprintf(tw, "%06d\t%s\t%s\n", s.Version, s.Name, state)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tROWS")
	for _, c := range counts {
		if c.Missing {
			fmt.Fprintf(tw, "%s\t-\n", c.Table)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\n", c.Table, c.Rows)
	}
	return tw.Flush()
}
