package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"mealplanner/internal/middleware"
	"mealplanner/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketPlanHandler streams plan_updated events to the caller. The first
// frame is a snapshot of the current plan; later frames follow every plan
// mutation made by the same user on any instance.
func (s *Server) WebSocketPlanHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uint)
		if !ok || userID == 0 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		log := middleware.Logger.With(slog.Uint64("user_id", uint64(userID)))

		if s.hub == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"live updates unavailable"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Warn("plan feed registration rejected", slog.String("error", err.Error()))
			payload, _ := json.Marshal(models.ErrorResponse{Error: err.Error()})
			_ = conn.WriteMessage(websocket.TextMessage, payload)
			_ = conn.Close()
			return
		}
		log.Debug("plan feed connected")

		if plan, err := s.planService.GetPlanWithTotals(context.Background(), userID); err == nil {
			if snapshot, err := json.Marshal(models.PlanEvent{Type: models.PlanEventUpdated, Plan: plan}); err == nil {
				client.TrySend(snapshot)
			}
		} else {
			log.Warn("failed to load plan snapshot", slog.String("error", err.Error()))
		}

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.Status(fiber.StatusUpgradeRequired).JSON(models.ErrorResponse{
				Error: "WebSocket upgrade required",
			})
		}
		return upgrade(c)
	}
}
