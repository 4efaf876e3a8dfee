package handlers

import (
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/services/messaging"
)

type MessageHandler struct {
	Messages *messaging.Service
}

func NewMessageHandler(s *messaging.Service) *MessageHandler {
	return &MessageHandler{Messages: s}
}

type sendMessageReq struct {
	ReceiverID string  `json:"receiver_id"`
	ProjectID  *string `json:"project_id"`
	Content    string  `json:"content"`
}

// queryID parses an optional uuid query parameter.
func queryID(c *fiber.Ctx, key string, errs FieldErrors) *uuid.UUID {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		errs.Add(key, "must be a valid id")
		return nil
	}
	return &id
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	var req sendMessageReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	errs := FieldErrors{}
	receiverID, err := uuid.Parse(strings.TrimSpace(req.ReceiverID))
	if err != nil {
		errs.Add("receiver_id", "receiver_id must be a valid id")
	}
	var projectID *uuid.UUID
	if p := trimPtr(req.ProjectID); p != nil && *p != "" {
		id, err := uuid.Parse(*p)
		if err != nil {
			errs.Add("project_id", "project_id must be a valid id")
		}
		projectID = &id
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		errs.Add("content", "content is required")
	} else if utf8.RuneCountInString(content) > models.MessageMaxLen {
		errs.Add("content", "content must be at most 2000 characters")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	m, err := h.Messages.Send(c.UserContext(), middleware.Identity(c).ID, messaging.SendInput{
		ReceiverID: receiverID,
		ProjectID:  projectID,
		Content:    content,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "message sent", m)
}

// GET /api/messages?user_id=&project_id=
func (h *MessageHandler) List(c *fiber.Ctx) error {
	errs := FieldErrors{}
	withUser := queryID(c, "user_id", errs)
	projectID := queryID(c, "project_id", errs)
	if len(errs) > 0 {
		return validationFail(c, errs)
	}
	p := pageFromQuery(c)
	items, total, err := h.Messages.List(c.UserContext(), middleware.Identity(c).ID, withUser, projectID, p.Page)
	if err != nil {
		return err
	}
	return respondPage(c, items, total, p)
}

func (h *MessageHandler) Conversations(c *fiber.Ctx) error {
	convs, err := h.Messages.Conversations(c.UserContext(), middleware.Identity(c).ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", convs)
}

func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.Messages.UnreadCount(c.UserContext(), middleware.Identity(c).ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"count": n})
}

func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.Messages.MarkRead(c.UserContext(), middleware.Identity(c).ID, id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "message marked as read", m)
}

// MarkConversationRead is called when the frontend opens a thread.
func (h *MessageHandler) MarkConversationRead(c *fiber.Ctx) error {
	other, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	n, err := h.Messages.MarkConversationRead(c.UserContext(), middleware.Identity(c).ID, other)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "conversation marked as read", fiber.Map{"updated": n})
}
