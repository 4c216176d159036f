package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	MealKeyPrefix       = "meal:%d"
	MealDetailKeyPrefix = "meal:%d:detail"
	MealListKey         = "meals:all"
)

// MealTTL bounds how stale a cached catalog entry can be. The catalog is
// read-only at runtime, so entries only change through seeding.
const MealTTL = 10 * time.Minute

func MealKey(mealID uint) string {
	return fmt.Sprintf(MealKeyPrefix, mealID)
}

func MealDetailKey(mealID uint) string {
	return fmt.Sprintf(MealDetailKeyPrefix, mealID)
}

// Invalidate drops keys from the cache. It is a no-op without a client.
func Invalidate(ctx context.Context, keys ...string) error {
	if client == nil || len(keys) == 0 {
		return nil
	}
	return client.Del(ctx, keys...).Err()
}

// InvalidateCatalog drops the catalog listing and every cached meal.
func InvalidateCatalog(ctx context.Context) error {
	if client == nil {
		return nil
	}
	iter := client.Scan(ctx, 0, "meal:*", 100).Iterator()
	keys := []string{MealListKey}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return Invalidate(ctx, keys...)
}
