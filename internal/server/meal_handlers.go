package server

import (
	"github.com/gofiber/fiber/v2"
)

// IngredientSearchRequest lists the ingredients a meal must contain.
type IngredientSearchRequest struct {
	Ingredients []string `json:"ingredients"`
}

// PreferenceSearchRequest names one dietary tag.
type PreferenceSearchRequest struct {
	Preference string `json:"preference"`
}

// ListMeals godoc
// @Summary List all meals
// @Tags meals
// @Produce json
// @Success 200 {array} models.Meal
// @Router /meals [get]
func (s *Server) ListMeals(c *fiber.Ctx) error {
	meals, err := s.searchService.ListMeals(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(meals)
}

// GetMeal godoc
// @Summary Get a meal with its ingredients
// @Tags meals
// @Produce json
// @Param id path int true "Meal ID"
// @Success 200 {object} models.MealDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /meals/{id} [get]
func (s *Server) GetMeal(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	detail, err := s.searchService.GetMealDetail(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// SearchByIngredients godoc
// @Summary Find meals containing every listed ingredient
// @Description Meals may contain other ingredients too. An empty list returns no meals.
// @Tags meals
// @Accept json
// @Produce json
// @Param request body IngredientSearchRequest true "Ingredients"
// @Success 200 {array} models.Meal
// @Router /meals/search/ingredients [post]
func (s *Server) SearchByIngredients(c *fiber.Ctx) error {
	var req IngredientSearchRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	meals, err := s.searchService.SearchByIngredients(c.UserContext(), req.Ingredients)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(meals)
}

// SearchByPreference godoc
// @Summary Find meals carrying a dietary tag
// @Tags meals
// @Accept json
// @Produce json
// @Param request body PreferenceSearchRequest true "Preference"
// @Success 200 {array} models.Meal
// @Router /meals/search/preference [post]
func (s *Server) SearchByPreference(c *fiber.Ctx) error {
	var req PreferenceSearchRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	meals, err := s.searchService.SearchByPreference(c.UserContext(), req.Preference)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(meals)
}
