package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/auth"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/realtime"
)

const wsUserKey = "ws_user"

// WSHandler streams a user's notifications over a websocket. Browsers cannot
// set headers on the upgrade request, so the token travels as ?token=.
type WSHandler struct {
	Guard *auth.Guard
	Hub   *realtime.Hub
}

func NewWSHandler(g *auth.Guard, hub *realtime.Hub) *WSHandler {
	return &WSHandler{Guard: g, Hub: hub}
}

// Upgrade authenticates before the handshake so failures get a normal HTTP status.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	id, err := h.Guard.AuthenticateToken(c.UserContext(), c.Query("token"))
	if err != nil {
		return err
	}
	c.Locals(wsUserKey, id.ID)
	return c.Next()
}

func (h *WSHandler) Serve(c *websocket.Conn) {
	userID, ok := c.Locals(wsUserKey).(uuid.UUID)
	if !ok {
		_ = c.Close()
		return
	}
	realtime.Serve(h.Hub, c, userID)
}
