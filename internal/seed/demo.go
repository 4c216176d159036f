package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mealplanner/internal/middleware"
	"mealplanner/internal/models"
	"mealplanner/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password given to every generated account.
const DemoPassword = "password123"

// DemoOptions configures SeedDemo.
type DemoOptions struct {
	Users int
	// FillRatio is the share of the 28 weekly slots assigned per user.
	FillRatio float64
	// Seed makes generation reproducible when non-zero.
	Seed int64
	// SkipBcrypt hashes at bcrypt.MinCost, for tests.
	SkipBcrypt bool
}

// DemoUser is a generated account and the slots assigned to it.
type DemoUser struct {
	User  models.User
	Slots int
}

// SeedDemo creates demo accounts and fills a random part of each account's
// week from the meals already in the catalog.
func SeedDemo(ctx context.Context, db *gorm.DB, opts DemoOptions) ([]DemoUser, error) {
	if opts.Users <= 0 {
		return nil, nil
	}
	if opts.FillRatio <= 0 || opts.FillRatio > 1 {
		opts.FillRatio = 0.5
	}

	var mealIDs []uint
	if err := db.WithContext(ctx).Model(&models.Meal{}).Order("meal_id").Pluck("meal_id", &mealIDs).Error; err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	if len(mealIDs) == 0 {
		return nil, fmt.Errorf("catalog is empty; load it before seeding demo plans")
	}

	faker := gofakeit.New(opts.Seed)

	cost := bcrypt.DefaultCost
	if opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	users := repository.NewUserRepository(db)
	plans := repository.NewPlanRepository(db)

	// Names are drawn before any slot so a seed always yields the same accounts.
	usernames := make([]string, opts.Users)
	for i := range usernames {
		usernames[i] = demoUsername(faker, i)
	}

	out := make([]DemoUser, 0, opts.Users)
	for _, username := range usernames {
		user := models.User{
			Username: username,
			Email:    username + "@example.com",
			Password: string(hashed),
		}
		if err := users.Create(ctx, &user); err != nil {
			if models.IsCode(err, models.CodeConflict) {
				middleware.Logger.Warn("demo user exists, skipping", slog.String("username", username))
				continue
			}
			return out, err
		}

		slots := 0
		for _, day := range models.Days {
			for _, mealType := range models.MealTypes {
				if faker.Float64Range(0, 1) >= opts.FillRatio {
					continue
				}
				slot := &models.PlanSlot{
					UserID:   user.ID,
					Day:      day,
					MealType: mealType,
					MealID:   mealIDs[faker.Number(0, len(mealIDs)-1)],
				}
				if err := plans.Upsert(ctx, slot); err != nil {
					return out, fmt.Errorf("assign %s %s for %s: %w", day, mealType, username, err)
				}
				slots++
			}
		}
		out = append(out, DemoUser{User: user, Slots: slots})
	}
	return out, nil
}

// demoUsername returns a validation-safe username with an index suffix so
// runs with the same seed never collide with each other.
func demoUsername(f *gofakeit.Faker, i int) string {
	base := strings.ToLower(f.FirstName() + "." + f.LastName())
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.':
			return r
		}
		return -1
	}, base)
	return fmt.Sprintf("%s%d", base, i+1)
}
