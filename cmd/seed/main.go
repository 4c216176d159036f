// Command main loads the meal catalog and, optionally, demo accounts with
// random weekly plans.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"mealplanner/internal/bootstrap"
	"mealplanner/internal/cache"
	"mealplanner/internal/config"
	"mealplanner/internal/database"
	"mealplanner/internal/seed"
)

func main() {
	catalogPath := flag.String("catalog", "", "Load this catalog YAML instead of the built-in one")
	numUsers := flag.Int("users", 0, "Number of demo users to create")
	fill := flag.Float64("fill", 0.5, "Share of weekly slots to fill for each demo user")
	seedValue := flag.Int64("seed", 0, "Random seed for demo data (0 picks one)")
	flag.Parse()

	log.Println("🌱 Meal Planner Seeder")
	log.Println("======================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Cached catalog entries are dropped after loading when Redis is reachable.
	cache.InitRedis(cfg.RedisURL)

	ctx := context.Background()
	if *catalogPath == "" {
		if err := bootstrap.SeedCatalog(ctx, db); err != nil {
			log.Fatalf("❌ Catalog seeding failed: %v", err)
		}
	} else {
		data, err := os.ReadFile(*catalogPath)
		if err != nil {
			log.Fatalf("❌ Failed to read %s: %v", *catalogPath, err)
		}
		cat, err := seed.ParseCatalog(data)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		if err := bootstrap.LoadCatalog(ctx, db, cat); err != nil {
			log.Fatalf("❌ Catalog seeding failed: %v", err)
		}
	}
	log.Println("✓ Catalog loaded")

	if *numUsers > 0 {
		users, err := seed.SeedDemo(ctx, db, seed.DemoOptions{
			Users:     *numUsers,
			FillRatio: *fill,
			Seed:      *seedValue,
		})
		if err != nil {
			log.Fatalf("❌ Demo seeding failed: %v", err)
		}
		for _, u := range users {
			log.Printf("✓ %s (%d slots)", u.User.Username, u.Slots)
		}
		log.Printf("📧 All demo users have the password: %s", seed.DemoPassword)
	}

	log.Println("✨ All done!")
}
