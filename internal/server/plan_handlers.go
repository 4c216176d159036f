package server

import (
	"mealplanner/internal/models"
	"mealplanner/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SlotRequest addresses a plan slot. MealID is ignored by removals.
type SlotRequest struct {
	Day      string `json:"day" query:"day"`
	MealType string `json:"meal_type" query:"meal_type"`
	MealID   uint   `json:"meal_id"`
}

// SlotResponse confirms a plan mutation.
type SlotResponse struct {
	Message string           `json:"message"`
	Slot    *models.PlanSlot `json:"slot,omitempty"`
}

// GetPlan godoc
// @Summary Get the weekly plan with per-day nutrition totals
// @Description Days without any assigned meal are omitted.
// @Tags plan
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.WeeklyPlan
// @Failure 401 {object} models.ErrorResponse
// @Router /plan [get]
func (s *Server) GetPlan(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	plan, err := s.planService.GetPlanWithTotals(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(plan)
}

// UpsertPlanSlot godoc
// @Summary Assign a meal to a plan slot
// @Description Replaces the meal already in the slot, if any.
// @Tags plan
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SlotRequest true "Slot and meal"
// @Success 200 {object} SlotResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /plan/slots [put]
func (s *Server) UpsertPlanSlot(c *fiber.Ctx) error {
	var req SlotRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	return s.upsertSlot(c, req)
}

// AddToPlan godoc
// @Summary Assign a meal to a plan slot (meal ID in path)
// @Tags plan
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Meal ID"
// @Param request body SlotRequest true "Slot"
// @Success 200 {object} SlotResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /add_to_plan/{id} [post]
func (s *Server) AddToPlan(c *fiber.Ctx) error {
	mealID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req SlotRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.MealID = mealID
	return s.upsertSlot(c, req)
}

func (s *Server) upsertSlot(c *fiber.Ctx, req SlotRequest) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	slot, err := s.planService.UpsertSlot(c.UserContext(), service.SlotInput{
		UserID:   userID,
		Day:      req.Day,
		MealType: req.MealType,
		MealID:   req.MealID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(SlotResponse{Message: "Meal added or updated in your plan", Slot: slot})
}

// RemovePlanSlot godoc
// @Summary Empty a plan slot
// @Description Succeeds even when the slot is already empty.
// @Tags plan
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param day query string false "Day"
// @Param meal_type query string false "Meal type"
// @Success 200 {object} SlotResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /plan/slots [delete]
func (s *Server) RemovePlanSlot(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req SlotRequest
	if err := c.QueryParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid query parameters"))
	}
	if req.Day == "" && req.MealType == "" && len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}

	if err := s.planService.RemoveSlot(c.UserContext(), service.SlotInput{
		UserID:   userID,
		Day:      req.Day,
		MealType: req.MealType,
	}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(SlotResponse{Message: "Meal removed from plan"})
}

// ClearPlan godoc
// @Summary Remove every meal from the plan
// @Tags plan
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SlotResponse
// @Router /plan [delete]
func (s *Server) ClearPlan(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.planService.ClearPlan(c.UserContext(), userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(SlotResponse{Message: "Meal plan cleared"})
}

// GetAccount godoc
// @Summary Get the caller's username and planned meals
// @Tags account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AccountSummary
// @Failure 404 {object} models.ErrorResponse
// @Router /account [get]
func (s *Server) GetAccount(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	summary, err := s.planService.ListPlanSummary(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
