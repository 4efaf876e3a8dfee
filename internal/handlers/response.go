package handlers

import (
	"errors"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
)

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"success": false,
		"message": "Validation error",
		"errors":  errs,
	})
}

// ErrorHandler renders every error that reaches Fiber in the API envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"success": false,
			"message": fe.Message,
		})
	}

	status := apperr.HTTPStatus(err)
	body := fiber.Map{"success": false, "message": "internal server error"}
	if e, ok := apperr.As(err); ok && e.Kind != apperr.KindPersistence {
		body["message"] = e.Message
		body["code"] = string(e.Kind)
		if e.Reason != "" {
			body["code"] = e.Reason
		}
	}
	if status >= fiber.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(body)
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	body := fiber.Map{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

type pageReq struct {
	Number int
	store.Page
}

func pageFromQuery(c *fiber.Ctx) pageReq {
	p := store.NewPage(c.QueryInt("page", 1), c.QueryInt("limit", 10))
	return pageReq{Number: p.Offset/p.Limit + 1, Page: p}
}

// respondPage writes a list envelope. extra keys are merged into the body.
func respondPage[T any](c *fiber.Ctx, items []T, total int64, p pageReq, extra ...fiber.Map) error {
	if items == nil {
		items = []T{}
	}
	body := fiber.Map{
		"success": true,
		"data":    items,
		"pagination": fiber.Map{
			"page":        p.Number,
			"limit":       p.Limit,
			"total":       total,
			"total_pages": int(math.Ceil(float64(total) / float64(p.Limit))),
		},
	}
	for _, m := range extra {
		for k, v := range m {
			body[k] = v
		}
	}
	return c.JSON(body)
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	return nil
}

// queryFloat parses an optional numeric query parameter.
func queryFloat(c *fiber.Ctx, key string, errs FieldErrors) *float64 {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		errs.Add(key, "must be a number")
		return nil
	}
	return &v
}

func queryInt(c *fiber.Ctx, key string, errs FieldErrors) *int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		errs.Add(key, "must be an integer")
		return nil
	}
	return &v
}

func queryBool(c *fiber.Ctx, key string, errs FieldErrors) *bool {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		errs.Add(key, "must be true or false")
		return nil
	}
	return &v
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
