package server

import (
	"context"
	"encoding/json"

	"timebank/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func writeWSError(conn *websocket.Conn, msg string) {
	b, _ := json.Marshal(fiber.Map{"type": "error", "payload": fiber.Map{"error": msg}})
	_ = conn.WriteMessage(websocket.TextMessage, b)
	_ = conn.Close()
}

// WebsocketHandler upgrades GET /ws. The client receives events addressed to
// the user plus the public events of the user's city room. The only frame the
// server reads is "ping".
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uint)
		if !ok || userID == 0 {
			writeWSError(conn, "unauthorized")
			return
		}
		if s.hub == nil {
			writeWSError(conn, "realtime unavailable")
			return
		}

		user, err := s.userService.GetProfile(context.Background(), userID)
		if err != nil {
			middleware.Logger.Warn("websocket profile lookup failed", "user_id", userID, "error", err)
			writeWSError(conn, "user not found")
			return
		}

		client, err := s.hub.Register(userID, user.City, conn)
		if err != nil {
			middleware.Logger.Warn("websocket register failed", "user_id", userID, "error", err)
			writeWSError(conn, err.Error())
			return
		}
		middleware.Logger.Debug("websocket connected", "user_id", userID, "city", client.City)

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}
