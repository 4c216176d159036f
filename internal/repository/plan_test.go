package repository

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"mealplanner/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func countSlots(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.PlanSlot{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestPlanRepository_UpsertReplacesInPlace(t *testing.T) {
	db := setupSQLite(t)
	f := seedCatalog(t, db)
	user := seedUser(t, db, "ana")
	repo := NewPlanRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.PlanSlot{UserID: user.ID, Day: models.Monday, MealType: models.Lunch, MealID: f.chickenRice.ID}))
	require.NoError(t, repo.Upsert(ctx, &models.PlanSlot{UserID: user.ID, Day: models.Monday, MealType: models.Lunch, MealID: f.chickenRiceBroc.ID}))

	var slots []models.PlanSlot
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&slots).Error)
	require.Len(t, slots, 1)
	assert.Equal(t, f.chickenRiceBroc.ID, slots[0].MealID)
	assert.Equal(t, models.Monday, slots[0].Day)
	assert.Equal(t, models.Lunch, slots[0].MealType)
}

func TestPlanRepository_ConcurrentUpsertsKeepOneSlot(t *testing.T) {
	db := setupSQLite(t)
	f := seedCatalog(t, db)
	user := seedUser(t, db, "ben")
	repo := NewPlanRepository(db)

	meals := []uint{f.chickenRice.ID, f.chickenRiceBroc.ID, f.chickenOnly.ID}
	var wg sync.WaitGroup
	errs := make(chan error, 30)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(mealID uint) {
			defer wg.Done()
			errs <- repo.Upsert(context.Background(), &models.PlanSlot{
				UserID: user.ID, Day: models.Friday, MealType: models.Dinner, MealID: mealID,
			})
		}(meals[i%len(meals)])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, int64(1), countSlots(t, db, user.ID))
}

func TestPlanRepository_UpsertUnknownMealIsNotFound(t *testing.T) {
	db := setupSQLite(t)
	user := seedUser(t, db, "cy")
	repo := NewPlanRepository(db)

	err := repo.Upsert(context.Background(), &models.PlanSlot{UserID: user.ID, Day: models.Monday, MealType: models.Lunch, MealID: 4242})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.Equal(t, int64(0), countSlots(t, db, user.ID))
}

func TestPlanRepository_RemoveAndClearAreIdempotent(t *testing.T) {
	db := setupSQLite(t)
	f := seedCatalog(t, db)
	user := seedUser(t, db, "dee")
	other := seedUser(t, db, "eve")
	repo := NewPlanRepository(db)
	ctx := context.Background()

	for _, s := range []models.PlanSlot{
		{UserID: user.ID, Day: models.Monday, MealType: models.Breakfast, MealID: f.chickenRice.ID},
		{UserID: user.ID, Day: models.Monday, MealType: models.Lunch, MealID: f.chickenRiceBroc.ID},
		{UserID: user.ID, Day: models.Sunday, MealType: models.Dinner, MealID: f.chickenOnly.ID},
		{UserID: other.ID, Day: models.Monday, MealType: models.Breakfast, MealID: f.chickenRice.ID},
	} {
		slot := s
		require.NoError(t, repo.Upsert(ctx, &slot))
	}

	n, err := repo.Remove(ctx, user.ID, models.Monday, models.Breakfast)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Remove(ctx, user.ID, models.Monday, models.Breakfast)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = repo.Clear(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.Clear(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	assert.Equal(t, int64(1), countSlots(t, db, other.ID))
}

func TestPlanRepository_ListJoinsMeals(t *testing.T) {
	db := setupSQLite(t)
	f := seedCatalog(t, db)
	user := seedUser(t, db, "fay")
	repo := NewPlanRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.PlanSlot{UserID: user.ID, Day: models.Tuesday, MealType: models.Breakfast, MealID: f.chickenRice.ID}))
	require.NoError(t, repo.Upsert(ctx, &models.PlanSlot{UserID: user.ID, Day: models.Tuesday, MealType: models.Snack, MealID: f.chickenOnly.ID}))

	entries, err := repo.ListEntries(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	byType := map[models.MealType]models.PlanEntry{}
	for _, e := range entries {
		byType[e.MealType] = e
	}
	assert.Equal(t, "Chicken Rice Bowl", byType[models.Breakfast].MealName)
	assert.Equal(t, models.Tuesday, byType[models.Snack].Day)

	rows, err := repo.ListWithMeals(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		switch row.MealID {
		case f.chickenRice.ID:
			require.NotNil(t, row.Calories)
			assert.Equal(t, 400, *row.Calories)
			assert.True(t, row.ProteinG.Valid)
		case f.chickenOnly.ID:
			assert.Nil(t, row.Calories)
			assert.False(t, row.FatG.Valid)
		default:
			t.Fatalf("unexpected meal %d", row.MealID)
		}
	}

	empty, err := repo.ListWithMeals(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

var upsertSQL = regexp.QuoteMeta(`INSERT INTO "meal_plan" ("user_id","day","meal_type","meal_id","created_at","updated_at") VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT ("user_id","day","meal_type") DO UPDATE SET "meal_id"="excluded"."meal_id","updated_at"="excluded"."updated_at" RETURNING "meal_plan_id"`)

func TestPlanRepository_Upsert_SingleStatement(t *testing.T) {
	tests := []struct {
		name     string
		queryErr error
		wantCode string
	}{
		{name: "Success"},
		{name: "Foreign key violation", queryErr: &pgconn.PgError{Code: "23503"}, wantCode: models.CodeNotFound},
		{name: "Store failure", queryErr: errors.New("connection reset"), wantCode: models.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewPlanRepository(db)

			mock.ExpectBegin()
			q := mock.ExpectQuery(upsertSQL).
				WithArgs(7, "Monday", "lunch", 3, sqlmock.AnyArg(), sqlmock.AnyArg())
			if tt.queryErr != nil {
				q.WillReturnError(tt.queryErr)
				mock.ExpectRollback()
			} else {
				q.WillReturnRows(sqlmock.NewRows([]string{"meal_plan_id"}).AddRow(11))
				mock.ExpectCommit()
			}

			slot := &models.PlanSlot{UserID: 7, Day: models.Monday, MealType: models.Lunch, MealID: 3}
			err := repo.Upsert(context.Background(), slot)

			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, uint(11), slot.ID)
			} else {
				assert.True(t, models.IsCode(err, tt.wantCode), "got %v", err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
