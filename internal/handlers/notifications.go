package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/services/notify"
)

type NotificationHandler struct {
	Notify *notify.Service
}

func NewNotificationHandler(s *notify.Service) *NotificationHandler {
	return &NotificationHandler{Notify: s}
}

// GET /api/notifications?unread=true
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	errs := FieldErrors{}
	unread := queryBool(c, "unread", errs)
	if len(errs) > 0 {
		return validationFail(c, errs)
	}
	p := pageFromQuery(c)
	me := middleware.Identity(c).ID
	items, total, err := h.Notify.List(c.UserContext(), me, unread != nil && *unread, p.Page)
	if err != nil {
		return err
	}
	count, err := h.Notify.UnreadCount(c.UserContext(), me)
	if err != nil {
		return err
	}
	return respondPage(c, items, total, p, fiber.Map{"unread_count": count})
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	count, err := h.Notify.UnreadCount(c.UserContext(), middleware.Identity(c).ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"count": count})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Notify.MarkRead(c.UserContext(), middleware.Identity(c).ID, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.Notify.MarkAllRead(c.UserContext(), middleware.Identity(c).ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "all notifications marked as read", fiber.Map{"updated": n})
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Notify.Delete(c.UserContext(), middleware.Identity(c).ID, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "notification deleted"})
}

func (h *NotificationHandler) DeleteAll(c *fiber.Ctx) error {
	n, err := h.Notify.DeleteAll(c.UserContext(), middleware.Identity(c).ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "notifications deleted", fiber.Map{"deleted": n})
}
