// Package bootstrap establishes the runtime dependencies shared by the
// server and the operational commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"mealplanner/internal/cache"
	"mealplanner/internal/config"
	"mealplanner/internal/database"
	"mealplanner/internal/middleware"
	"mealplanner/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedCatalog loads the embedded starter catalog after connecting.
	SeedCatalog bool
}

// connectDB is replaced in tests.
var connectDB = func(cfg *config.Config) (*gorm.DB, error) {
	return database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: true})
}

// InitRuntime connects to the database and Redis and optionally seeds the
// catalog. The returned client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := connectDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedCatalog {
		if err := SeedCatalog(ctx, db); err != nil {
			return nil, nil, err
		}
	}

	return db, r, nil
}

// SeedCatalog loads the embedded starter catalog into db.
func SeedCatalog(ctx context.Context, db *gorm.DB) error {
	cat, err := seed.DefaultCatalog()
	if err != nil {
		return fmt.Errorf("failed to read built-in catalog: %w", err)
	}
	return LoadCatalog(ctx, db, cat)
}

// LoadCatalog writes cat into db and drops cached catalog entries so the
// next reads see the new rows.
func LoadCatalog(ctx context.Context, db *gorm.DB, cat *seed.Catalog) error {
	res, err := seed.LoadCatalog(ctx, db, cat)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	middleware.Logger.InfoContext(ctx, "catalog seeded",
		slog.Int("meals", res.Meals),
		slog.Int("ingredients", res.Ingredients),
		slog.Int("compositions", res.Compositions))

	if err := cache.InvalidateCatalog(ctx); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to invalidate catalog cache",
			slog.String("error", err.Error()))
	}
	return nil
}
