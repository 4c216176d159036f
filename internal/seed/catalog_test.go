package seed

import (
	"context"
	"os"
	"testing"

	"mealplanner/internal/database"
	"mealplanner/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func TestDefaultCatalog_Valid(t *testing.T) {
	cat, err := DefaultCatalog()
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Ingredients)
	assert.NotEmpty(t, cat.Meals)
}

func TestParseCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "undeclared ingredient",
			doc: `
ingredients: [{name: egg, unit: pc}]
meals:
  - name: Toast
    ingredients: [{name: bread, quantity: "2"}]
`,
			want: "undeclared ingredient",
		},
		{
			name: "duplicate meal",
			doc: `
meals:
  - name: Toast
  - name: Toast
`,
			want: "duplicate meal",
		},
		{
			name: "bad macro",
			doc: `
meals:
  - name: Toast
    protein_g: lots
`,
			want: "protein_g",
		},
		{
			name: "bad quantity",
			doc: `
ingredients: [{name: egg, unit: pc}]
meals:
  - name: Eggs
    ingredients: [{name: egg, quantity: two}]
`,
			want: "quantity",
		},
		{
			name: "malformed yaml",
			doc:  "meals: [",
			want: "parse catalog",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadCatalog_Idempotent(t *testing.T) {
	db := openDB(t)
	cat, err := DefaultCatalog()
	require.NoError(t, err)
	ctx := context.Background()

	first, err := LoadCatalog(ctx, db, cat)
	require.NoError(t, err)
	assert.Equal(t, len(cat.Meals), first.Meals)
	assert.Equal(t, len(cat.Ingredients), first.Ingredients)

	_, err = LoadCatalog(ctx, db, cat)
	require.NoError(t, err)

	var meals, ingredients, comps int64
	require.NoError(t, db.Model(&models.Meal{}).Count(&meals).Error)
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&ingredients).Error)
	require.NoError(t, db.Model(&models.MealIngredient{}).Count(&comps).Error)
	assert.Equal(t, int64(len(cat.Meals)), meals)
	assert.Equal(t, int64(len(cat.Ingredients)), ingredients)
	assert.Equal(t, int64(first.Compositions), comps)
}

func TestLoadCatalog_StoresFields(t *testing.T) {
	db := openDB(t)
	cat, err := ParseCatalog([]byte(`
ingredients:
  - {name: egg, unit: pc}
  - {name: spinach, unit: g}
meals:
  - name: Omelette
    calories: 300
    protein_g: "21.5"
    tags: Vegetarian, keto
    ingredients:
      - {name: egg, quantity: "3"}
      - {name: spinach, quantity: "40.25"}
  - name: Plain Eggs
    ingredients:
      - {name: egg, quantity: "2"}
`))
	require.NoError(t, err)

	_, err = LoadCatalog(context.Background(), db, cat)
	require.NoError(t, err)

	var omelette models.Meal
	require.NoError(t, db.Where("meal_name = ?", "Omelette").First(&omelette).Error)
	require.NotNil(t, omelette.Calories)
	assert.Equal(t, 300, *omelette.Calories)
	assert.True(t, omelette.ProteinG.Valid)
	assert.Equal(t, "21.5", omelette.ProteinG.Decimal.String())
	assert.False(t, omelette.FatG.Valid)
	assert.True(t, omelette.Tags.Has("vegetarian"))

	var plain models.Meal
	require.NoError(t, db.Where("meal_name = ?", "Plain Eggs").First(&plain).Error)
	assert.Nil(t, plain.Calories)
	assert.False(t, plain.ProteinG.Valid)
}

func TestLoadCatalog_UpdatesQuantities(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	doc := func(qty string) *Catalog {
		cat, err := ParseCatalog([]byte(`
ingredients: [{name: egg, unit: pc}]
meals:
  - name: Eggs
    ingredients: [{name: egg, quantity: "` + qty + `"}]
`))
		require.NoError(t, err)
		return cat
	}

	_, err := LoadCatalog(ctx, db, doc("2"))
	require.NoError(t, err)
	_, err = LoadCatalog(ctx, db, doc("4"))
	require.NoError(t, err)

	var comps []models.MealIngredient
	require.NoError(t, db.Find(&comps).Error)
	require.Len(t, comps, 1)
	assert.Equal(t, "4", comps[0].Quantity.String())
}
