package service

import (
	"context"
	"sync"

	"mealplanner/internal/models"

	"github.com/shopspring/decimal"
)

// catalogRepoStub is a stub for repository.CatalogRepository.
type catalogRepoStub struct {
	getMealFn          func(context.Context, uint) (*models.Meal, error)
	listMealsFn        func(context.Context) ([]models.Meal, error)
	listCompositionsFn func(context.Context, uint) ([]models.CompositionLine, error)
	containingAllFn    func(context.Context, []string) ([]models.Meal, error)
	byTagFn            func(context.Context, string) ([]models.Meal, error)
}

func (s *catalogRepoStub) GetMeal(ctx context.Context, id uint) (*models.Meal, error) {
	return s.getMealFn(ctx, id)
}
func (s *catalogRepoStub) ListMeals(ctx context.Context) ([]models.Meal, error) {
	return s.listMealsFn(ctx)
}
func (s *catalogRepoStub) ListCompositions(ctx context.Context, mealID uint) ([]models.CompositionLine, error) {
	return s.listCompositionsFn(ctx, mealID)
}
func (s *catalogRepoStub) FindMealsContainingAll(ctx context.Context, names []string) ([]models.Meal, error) {
	return s.containingAllFn(ctx, names)
}
func (s *catalogRepoStub) FindMealsByTag(ctx context.Context, tag string) ([]models.Meal, error) {
	return s.byTagFn(ctx, tag)
}

// catalogOf serves GetMeal from a fixed set of meals.
func catalogOf(meals ...models.Meal) *catalogRepoStub {
	byID := make(map[uint]models.Meal, len(meals))
	for _, m := range meals {
		byID[m.ID] = m
	}
	return &catalogRepoStub{
		getMealFn: func(_ context.Context, id uint) (*models.Meal, error) {
			m, ok := byID[id]
			if !ok {
				return nil, models.NewNotFoundError("Meal", id)
			}
			return &m, nil
		},
		listMealsFn: func(_ context.Context) ([]models.Meal, error) { return meals, nil },
		listCompositionsFn: func(_ context.Context, _ uint) ([]models.CompositionLine, error) {
			return nil, nil
		},
		containingAllFn: func(_ context.Context, _ []string) ([]models.Meal, error) { return nil, nil },
		byTagFn:         func(_ context.Context, _ string) ([]models.Meal, error) { return nil, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

type slotKey struct {
	userID   uint
	day      models.Day
	mealType models.MealType
}

// memoryPlanStore is an in-memory repository.PlanRepository keyed like the
// meal_plan unique index.
type memoryPlanStore struct {
	mu      sync.Mutex
	meals   map[uint]models.Meal
	slots   map[slotKey]uint
	failErr error
}

func newMemoryPlanStore(meals ...models.Meal) *memoryPlanStore {
	byID := make(map[uint]models.Meal, len(meals))
	for _, m := range meals {
		byID[m.ID] = m
	}
	return &memoryPlanStore{meals: byID, slots: make(map[slotKey]uint)}
}

func (s *memoryPlanStore) Upsert(_ context.Context, slot *models.PlanSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.slots[slotKey{slot.UserID, slot.Day, slot.MealType}] = slot.MealID
	return nil
}

func (s *memoryPlanStore) Remove(_ context.Context, userID uint, day models.Day, mealType models.MealType) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return 0, s.failErr
	}
	k := slotKey{userID, day, mealType}
	if _, ok := s.slots[k]; !ok {
		return 0, nil
	}
	delete(s.slots, k)
	return 1, nil
}

func (s *memoryPlanStore) Clear(_ context.Context, userID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return 0, s.failErr
	}
	var n int64
	for k := range s.slots {
		if k.userID == userID {
			delete(s.slots, k)
			n++
		}
	}
	return n, nil
}

func (s *memoryPlanStore) ListEntries(_ context.Context, userID uint) ([]models.PlanEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PlanEntry
	for k, mealID := range s.slots {
		if k.userID != userID {
			continue
		}
		out = append(out, models.PlanEntry{
			MealID:   mealID,
			MealName: s.meals[mealID].Name,
			Day:      k.day,
			MealType: k.mealType,
		})
	}
	return out, nil
}

func (s *memoryPlanStore) ListWithMeals(_ context.Context, userID uint) ([]models.PlanRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	var out []models.PlanRow
	for k, mealID := range s.slots {
		if k.userID != userID {
			continue
		}
		m := s.meals[mealID]
		out = append(out, models.PlanRow{
			Day:      k.day,
			MealType: k.mealType,
			MealID:   m.ID,
			MealName: m.Name,
			Calories: m.Calories,
			CarbsG:   m.CarbsG,
			FatG:     m.FatG,
			ProteinG: m.ProteinG,
		})
	}
	return out, nil
}

func (s *memoryPlanStore) count(userID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.slots {
		if k.userID == userID {
			n++
		}
	}
	return n
}

// recordingPublisher captures published plan events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.PlanEvent
	err    error
}

func (p *recordingPublisher) PublishPlan(_ context.Context, _ uint, event models.PlanEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func intPtr(v int) *int { return &v }

func macro(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func meal(id uint, name string, calories int, protein string) models.Meal {
	return models.Meal{
		ID:       id,
		Name:     name,
		Calories: intPtr(calories),
		ProteinG: macro(protein),
	}
}
