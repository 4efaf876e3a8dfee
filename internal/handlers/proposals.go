package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/workflow"
)

type ProposalHandler struct {
	Engine *workflow.Engine
}

func NewProposalHandler(e *workflow.Engine) *ProposalHandler {
	return &ProposalHandler{Engine: e}
}

type proposalReq struct {
	ProjectID              string    `json:"project_id"`
	CoverLetter            *string   `json:"cover_letter"`
	ProposedRate           *float64  `json:"proposed_rate"`
	EstimatedDurationWeeks *int      `json:"estimated_duration_weeks"`
	PortfolioLinks         *[]string `json:"portfolio_links"`
}

func (r *proposalReq) validate(creating bool) FieldErrors {
	errs := FieldErrors{}
	r.CoverLetter = trimPtr(r.CoverLetter)
	if r.CoverLetter != nil && *r.CoverLetter == "" || creating && r.CoverLetter == nil {
		errs.Add("cover_letter", "cover_letter is required")
	}
	if r.ProposedRate != nil {
		if *r.ProposedRate <= 0 {
			errs.Add("proposed_rate", "proposed_rate must be positive")
		}
	} else if creating {
		errs.Add("proposed_rate", "proposed_rate is required")
	}
	if r.EstimatedDurationWeeks != nil && *r.EstimatedDurationWeeks < 1 {
		errs.Add("estimated_duration_weeks", "estimated_duration_weeks must be at least 1")
	}
	return errs
}

func proposalStatusQuery(c *fiber.Ctx) (models.ProposalStatus, bool) {
	s := models.ProposalStatus(c.Query("status"))
	return s, s == "" || s.Valid()
}

// POST /api/proposals
func (h *ProposalHandler) Create(c *fiber.Ctx) error {
	var req proposalReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	errs := req.validate(true)
	projectID, err := uuid.Parse(strings.TrimSpace(req.ProjectID))
	if err != nil {
		errs.Add("project_id", "project_id must be a valid id")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	in := workflow.ProposalInput{
		CoverLetter:            *req.CoverLetter,
		ProposedRate:           *req.ProposedRate,
		EstimatedDurationWeeks: req.EstimatedDurationWeeks,
	}
	if req.PortfolioLinks != nil {
		in.PortfolioLinks = *req.PortfolioLinks
	}
	p, err := h.Engine.SubmitProposal(c.UserContext(), middleware.Identity(c).ID, projectID, in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "proposal submitted", p)
}

// GET /api/proposals/my
func (h *ProposalHandler) Mine(c *fiber.Ctx) error {
	status, ok := proposalStatusQuery(c)
	if !ok {
		return validationFail(c, FieldErrors{"status": {"unknown status"}})
	}
	p := pageFromQuery(c)
	items, total, err := h.Engine.ListPartnerProposals(c.UserContext(), middleware.Identity(c).ID, status, p.Page)
	if err != nil {
		return err
	}
	return respondPage(c, items, total, p)
}

// GET /api/proposals/project/:projectId
func (h *ProposalHandler) ByProject(c *fiber.Ctx) error {
	projectID, err := paramID(c, "projectId")
	if err != nil {
		return err
	}
	status, ok := proposalStatusQuery(c)
	if !ok {
		return validationFail(c, FieldErrors{"status": {"unknown status"}})
	}
	p := pageFromQuery(c)
	items, total, err := h.Engine.ListProjectProposals(c.UserContext(), middleware.Identity(c).ID, projectID, status, p.Page)
	if err != nil {
		return err
	}
	return respondPage(c, items, total, p)
}

// GET /api/proposals/:id
func (h *ProposalHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Engine.GetProposal(c.UserContext(), middleware.Identity(c).ID, id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", p)
}

type proposalStatusReq struct {
	Status string `json:"status"`
}

// PUT /api/proposals/:id/status
func (h *ProposalHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req proposalStatusReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	next := models.ProposalStatus(strings.TrimSpace(req.Status))
	if !next.Valid() {
		return validationFail(c, FieldErrors{"status": {"status must be accepted or rejected"}})
	}

	p, err := h.Engine.UpdateProposalStatus(c.UserContext(), middleware.Identity(c).ID, id, next)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "proposal "+string(p.Status), p)
}

// PUT /api/proposals/:id
func (h *ProposalHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req proposalReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if errs := req.validate(false); len(errs) > 0 {
		return validationFail(c, errs)
	}

	p, err := h.Engine.EditProposal(c.UserContext(), middleware.Identity(c).ID, id, workflow.ProposalPatch{
		CoverLetter:            req.CoverLetter,
		ProposedRate:           req.ProposedRate,
		EstimatedDurationWeeks: req.EstimatedDurationWeeks,
		PortfolioLinks:         req.PortfolioLinks,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "proposal updated", p)
}

// POST /api/proposals/:id/withdraw
func (h *ProposalHandler) Withdraw(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Engine.WithdrawProposal(c.UserContext(), middleware.Identity(c).ID, id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "proposal withdrawn", p)
}
