package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/workflow"
)

type ContractHandler struct {
	Engine *workflow.Engine
}

func NewContractHandler(e *workflow.Engine) *ContractHandler {
	return &ContractHandler{Engine: e}
}

type contractReq struct {
	ProjectID  string   `json:"project_id"`
	PartnerID  string   `json:"partner_id"`
	ProposalID string   `json:"proposal_id"`
	AgreedRate *float64 `json:"agreed_rate"`
	Terms      *string  `json:"terms"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
}

// parseDate accepts a plain date or an RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func optionalDate(raw, field string, errs FieldErrors) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	t, err := parseDate(raw)
	if err != nil {
		errs.Add(field, field+" must be a date (YYYY-MM-DD)")
		return nil
	}
	return &t
}

func requiredID(raw, field string, errs FieldErrors) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		errs.Add(field, field+" must be a valid id")
	}
	return id
}

// POST /api/contracts
func (h *ContractHandler) Create(c *fiber.Ctx) error {
	var req contractReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	errs := FieldErrors{}
	in := workflow.ContractInput{
		ProjectID: requiredID(req.ProjectID, "project_id", errs),
		PartnerID: requiredID(req.PartnerID, "partner_id", errs),
	}
	if strings.TrimSpace(req.ProposalID) != "" {
		id := requiredID(req.ProposalID, "proposal_id", errs)
		in.ProposalID = &id
	}
	if req.AgreedRate == nil {
		errs.Add("agreed_rate", "agreed_rate is required")
	} else if *req.AgreedRate <= 0 {
		errs.Add("agreed_rate", "agreed_rate must be positive")
	} else {
		in.AgreedRate = *req.AgreedRate
	}
	if req.Terms != nil {
		in.Terms = strings.TrimSpace(*req.Terms)
	}
	if start := optionalDate(req.StartDate, "start_date", errs); start != nil {
		in.StartDate = *start
	}
	in.EndDate = optionalDate(req.EndDate, "end_date", errs)
	if in.EndDate != nil && !in.StartDate.IsZero() && in.EndDate.Before(in.StartDate) {
		errs.Add("end_date", "end_date must not be before start_date")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	contract, err := h.Engine.CreateContract(c.UserContext(), middleware.Identity(c).ID, in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "contract created", contract)
}

// GET /api/contracts
func (h *ContractHandler) List(c *fiber.Ctx) error {
	status := models.ContractStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return validationFail(c, FieldErrors{"status": {"unknown status"}})
	}
	p := pageFromQuery(c)
	items, total, err := h.Engine.ListContracts(c.UserContext(), *middleware.Identity(c), status, p.Page)
	if err != nil {
		return err
	}
	return respondPage(c, items, total, p)
}

// GET /api/contracts/:id
func (h *ContractHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	contract, err := h.Engine.GetContract(c.UserContext(), *middleware.Identity(c), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", contract)
}

type contractStatusReq struct {
	Status string `json:"status"`
}

// PUT /api/contracts/:id/status
func (h *ContractHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req contractStatusReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	next := models.ContractStatus(strings.TrimSpace(req.Status))
	if !next.Valid() {
		return validationFail(c, FieldErrors{"status": {"status must be completed or terminated"}})
	}

	contract, err := h.Engine.UpdateContractStatus(c.UserContext(), middleware.Identity(c).ID, id, next)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "contract "+string(contract.Status), contract)
}

// PUT /api/contracts/:id
func (h *ContractHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req contractReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	errs := FieldErrors{}
	if req.AgreedRate != nil && *req.AgreedRate <= 0 {
		errs.Add("agreed_rate", "agreed_rate must be positive")
	}
	patch := workflow.ContractPatch{
		AgreedRate: req.AgreedRate,
		Terms:      trimPtr(req.Terms),
		EndDate:    optionalDate(req.EndDate, "end_date", errs),
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	contract, err := h.Engine.UpdateContractTerms(c.UserContext(), middleware.Identity(c).ID, id, patch)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "contract updated", contract)
}
