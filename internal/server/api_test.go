package server

import (
	"fmt"
	"net/http"
	"testing"

	"mealplanner/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type planJSON map[string]struct {
	Meals  map[string]map[string]any `json:"meals"`
	Totals struct {
		Calories int64   `json:"calories"`
		CarbsG   float64 `json:"carbs_g"`
		FatG     float64 `json:"fat_g"`
		ProteinG float64 `json:"protein_g"`
	} `json:"totals"`
}

func TestAPI_PlanLifecycle(t *testing.T) {
	app, _, cat := newTestApp(t)
	token := signupToken(t, app, "alice")

	resp := doJSON(t, app, http.MethodPut, "/api/plan/slots", map[string]any{
		"day": "Monday", "meal_type": "breakfast", "meal_id": cat.bowl.ID,
	}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/api/plan/slots", map[string]any{
		"day": "mon", "meal_type": "Lunch", "meal_id": cat.stirFry.ID,
	}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/plan", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	plan := decode[planJSON](t, resp)

	require.Len(t, plan, 1)
	monday := plan["Monday"]
	assert.Len(t, monday.Meals, 2)
	assert.Contains(t, monday.Meals, "breakfast")
	assert.Contains(t, monday.Meals, "lunch")
	assert.Equal(t, int64(1000), monday.Totals.Calories)
	assert.InDelta(t, 50.0, monday.Totals.ProteinG, 1e-9)
	assert.InDelta(t, 45.5, monday.Totals.CarbsG, 1e-9)
	assert.InDelta(t, 0.0, monday.Totals.FatG, 1e-9)

	// Replacing a slot keeps a single meal in it.
	resp = doJSON(t, app, http.MethodPut, "/api/plan/slots", map[string]any{
		"day": "Monday", "meal_type": "lunch", "meal_id": cat.omelette.ID,
	}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/account", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	account := decode[models.AccountSummary](t, resp)
	assert.Equal(t, "alice", account.Username)
	require.Len(t, account.Meals, 2)
	assert.Equal(t, models.Breakfast, account.Meals[0].MealType)
	assert.Equal(t, "Omelette", account.Meals[1].MealName)

	resp = doJSON(t, app, http.MethodDelete, "/api/plan/slots?day=Monday&meal_type=breakfast", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, app, http.MethodDelete, "/api/plan/slots?day=Monday&meal_type=breakfast", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/api/plan", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/plan", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[planJSON](t, resp))
}

func TestAPI_PlansAreScopedToCaller(t *testing.T) {
	app, _, cat := newTestApp(t)
	alice := signupToken(t, app, "alice")
	bob := signupToken(t, app, "bob")

	resp := doJSON(t, app, http.MethodPut, "/api/plan/slots", map[string]any{
		"day": "Friday", "meal_type": "dinner", "meal_id": cat.bowl.ID,
	}, alice)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/plan", nil, bob)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[planJSON](t, resp))
}

func TestAPI_UpsertErrors(t *testing.T) {
	app, _, cat := newTestApp(t)
	token := signupToken(t, app, "alice")

	tests := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{"unknown meal", map[string]any{"day": "Monday", "meal_type": "lunch", "meal_id": 9999}, http.StatusNotFound, models.CodeNotFound},
		{"bad day", map[string]any{"day": "Funday", "meal_type": "lunch", "meal_id": cat.bowl.ID}, http.StatusBadRequest, models.CodeValidation},
		{"bad meal type", map[string]any{"day": "Monday", "meal_type": "brunch", "meal_id": cat.bowl.ID}, http.StatusBadRequest, models.CodeValidation},
		{"missing meal", map[string]any{"day": "Monday", "meal_type": "lunch"}, http.StatusBadRequest, models.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPut, "/api/plan/slots", tt.body, token)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decode[models.ErrorResponse](t, resp).Code)
		})
	}
}

func TestAPI_PlanRequiresAuth(t *testing.T) {
	app, _, _ := newTestApp(t)

	for _, path := range []string{"/api/plan", "/api/account", "/api/my_account", "/api/meal_plan_with_totals"} {
		resp := doJSON(t, app, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp := doJSON(t, app, http.MethodGet, "/api/plan", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, models.CodeUnauthorized, decode[models.ErrorResponse](t, resp).Code)
}

func TestAPI_Search(t *testing.T) {
	app, _, cat := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/meals/search/ingredients",
		IngredientSearchRequest{Ingredients: []string{"chicken", "rice"}}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	meals := decode[[]models.Meal](t, resp)
	require.Len(t, meals, 1)
	assert.Equal(t, cat.bowl.ID, meals[0].ID)

	resp = doJSON(t, app, http.MethodPost, "/api/meals/search/ingredients",
		IngredientSearchRequest{Ingredients: []string{"chicken"}}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Meal](t, resp), 2)

	resp = doJSON(t, app, http.MethodPost, "/api/meals/search/ingredients",
		IngredientSearchRequest{}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]models.Meal](t, resp))

	resp = doJSON(t, app, http.MethodPost, "/api/meals/search/preference",
		PreferenceSearchRequest{Preference: "Veg"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	meals = decode[[]models.Meal](t, resp)
	require.Len(t, meals, 1)
	assert.Equal(t, cat.stirFry.ID, meals[0].ID)
}

func TestAPI_MealDetail(t *testing.T) {
	app, _, cat := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/meals/%d", cat.bowl.ID), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[models.MealDetail](t, resp)
	assert.Equal(t, "Chicken Bowl", detail.Name)
	require.Len(t, detail.Ingredients, 2)
	assert.Equal(t, "chicken", detail.Ingredients[0].Name)

	resp = doJSON(t, app, http.MethodGet, "/api/meals/9999", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/meals/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid ID", decode[models.ErrorResponse](t, resp).Error)

	resp = doJSON(t, app, http.MethodGet, "/api/meals", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Meal](t, resp), 3)
}

func TestAPI_LegacyRoutes(t *testing.T) {
	app, _, cat := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/signup", map[string]string{
		"username": "carol", "email": "carol@example.com", "password": "secret1", "confirm_password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/login", LoginRequest{Username: "carol", Password: "secret1"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := decode[AuthResponse](t, resp).Token
	require.NotEmpty(t, token)

	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/add_to_plan/%d", cat.omelette.ID),
		map[string]string{"day": "Sunday", "meal_type": "breakfast"}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Meal added or updated in your plan", decode[SlotResponse](t, resp).Message)

	resp = doJSON(t, app, http.MethodGet, "/api/meal_plan_with_totals", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(250), decode[planJSON](t, resp)["Sunday"].Totals.Calories)

	resp = doJSON(t, app, http.MethodPost, "/api/remove_from_plan",
		map[string]string{"day": "Sunday", "meal_type": "breakfast"}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/clear_meal_plan", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Meal plan cleared", decode[SlotResponse](t, resp).Message)

	resp = doJSON(t, app, http.MethodPost, "/api/by_ingredient",
		IngredientSearchRequest{Ingredients: []string{"egg"}}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Meal](t, resp), 1)

	resp = doJSON(t, app, http.MethodGet, "/api/all_meals", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/meal/%d", cat.bowl.ID), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_HealthAndTestDB(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/test_db", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Database connection is working!", decode[map[string]string](t, resp)["message"])

	resp = doJSON(t, app, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Without Redis the service is degraded but still ready.
	resp = doJSON(t, app, http.MethodGet, "/health/ready", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "degraded", decode[map[string]any](t, resp)["status"])
}

func TestAPI_UnknownRoute(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
