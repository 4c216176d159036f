package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
)

var dayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

type planEvent struct {
	Type string             `json:"type"`
	Plan map[string]dayPlan `json:"plan"`
}

type dayPlan struct {
	Meals map[string]struct {
		MealName string `json:"meal_name"`
	} `json:"meals"`
	Totals struct {
		Calories int64   `json:"calories"`
		ProteinG float64 `json:"protein_g"`
		CarbsG   float64 `json:"carbs_g"`
		FatG     float64 `json:"fat_g"`
	} `json:"totals"`
}

// render formats one event as a per-day table.
func render(ev planEvent, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", at.Format("15:04:05"), ev.Type)
	if len(ev.Plan) == 0 {
		b.WriteString("  (empty plan)\n")
		return b.String()
	}

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  DAY\tMEALS\tKCAL\tPROTEIN\tCARBS\tFAT")
	for _, day := range dayOrder {
		p, ok := ev.Plan[day]
		if !ok {
			continue
		}
		names := make([]string, 0, len(p.Meals))
		for _, m := range p.Meals {
			names = append(names, m.MealName)
		}
		sort.Strings(names)
		fmt.Fprintf(w, "  %s\t%s\t%d\t%.1f\t%.1f\t%.1f\n", day, strings.Join(names, ", "),
			p.Totals.Calories, p.Totals.ProteinG, p.Totals.CarbsG, p.Totals.FatG)
	}
	_ = w.Flush()
	return b.String()
}
