package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/workflow"
)

type PartnerHandler struct {
	Engine *workflow.Engine
}

func NewPartnerHandler(e *workflow.Engine) *PartnerHandler {
	return &PartnerHandler{Engine: e}
}

type partnerReq struct {
	Bio             *string  `json:"bio"`
	HourlyRate      *float64 `json:"hourly_rate"`
	ExperienceYears *int     `json:"experience_years"`
	Available       *bool    `json:"available"`
}

// GET /api/partners?search=&available=&experience_min=&hourly_rate_max=
func (h *PartnerHandler) List(c *fiber.Ctx) error {
	errs := FieldErrors{}
	f := store.PartnerFilter{
		Search:        strings.TrimSpace(c.Query("search")),
		Available:     queryBool(c, "available", errs),
		ExperienceMin: queryInt(c, "experience_min", errs),
		HourlyRateMax: queryFloat(c, "hourly_rate_max", errs),
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}
	p := pageFromQuery(c)
	f.Page = p.Page
	items, total, err := h.Engine.ListPartners(c.UserContext(), f)
	if err != nil {
		return err
	}
	return respondPage(c, items, total, p)
}

// GET /api/partners/:id
func (h *PartnerHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.Engine.GetPartner(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", detail)
}

// GET /api/partners/profile/me
func (h *PartnerHandler) Me(c *fiber.Ctx) error {
	p, err := h.Engine.GetMyPartnerProfile(c.UserContext(), middleware.Identity(c).ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", p)
}

// POST /api/partners/profile
func (h *PartnerHandler) Upsert(c *fiber.Ctx) error {
	var req partnerReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	errs := FieldErrors{}
	if req.HourlyRate != nil && *req.HourlyRate < 0 {
		errs.Add("hourly_rate", "hourly_rate must not be negative")
	}
	if req.ExperienceYears != nil && *req.ExperienceYears < 0 {
		errs.Add("experience_years", "experience_years must not be negative")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	p, err := h.Engine.UpsertPartnerProfile(c.UserContext(), middleware.Identity(c).ID, workflow.PartnerInput{
		Bio:             trimPtr(req.Bio),
		HourlyRate:      req.HourlyRate,
		ExperienceYears: req.ExperienceYears,
		Available:       req.Available,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "partner profile saved", p)
}
