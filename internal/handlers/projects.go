package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/workflow"
)

type ProjectHandler struct {
	Engine *workflow.Engine
}

func NewProjectHandler(e *workflow.Engine) *ProjectHandler {
	return &ProjectHandler{Engine: e}
}

type projectReq struct {
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	ProjectType   *string   `json:"project_type"`
	BudgetMin     *float64  `json:"budget_min"`
	BudgetMax     *float64  `json:"budget_max"`
	DurationWeeks *int      `json:"duration_weeks"`
	Skills        *[]string `json:"skills"`
	Draft         bool      `json:"draft"`
}

func (r *projectReq) validate(creating bool) FieldErrors {
	errs := FieldErrors{}
	r.Title = trimPtr(r.Title)
	r.Description = trimPtr(r.Description)

	if r.Title != nil && *r.Title == "" || creating && r.Title == nil {
		errs.Add("title", "title is required")
	} else if r.Title != nil && len(*r.Title) > 200 {
		errs.Add("title", "title must be at most 200 characters")
	}
	if r.Description != nil && *r.Description == "" || creating && r.Description == nil {
		errs.Add("description", "description is required")
	}
	if r.ProjectType != nil {
		if !models.ProjectType(*r.ProjectType).Valid() {
			errs.Add("project_type", "project_type must be fixed or hourly")
		}
	} else if creating {
		errs.Add("project_type", "project_type is required")
	}
	if r.BudgetMin != nil && *r.BudgetMin < 0 {
		errs.Add("budget_min", "budget_min must not be negative")
	}
	if r.BudgetMax != nil && *r.BudgetMax < 0 {
		errs.Add("budget_max", "budget_max must not be negative")
	}
	if r.BudgetMin != nil && r.BudgetMax != nil && *r.BudgetMin > *r.BudgetMax {
		errs.Add("budget_max", "budget_max must not be below budget_min")
	}
	if r.DurationWeeks != nil && *r.DurationWeeks < 1 {
		errs.Add("duration_weeks", "duration_weeks must be at least 1")
	}
	return errs
}

// GET /api/projects
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	errs := FieldErrors{}
	q := workflow.ProjectQuery{
		Status:      models.ProjectStatus(c.Query("status")),
		ProjectType: models.ProjectType(c.Query("project_type")),
		Search:      strings.TrimSpace(c.Query("search")),
		BudgetMin:   queryFloat(c, "budget_min", errs),
		BudgetMax:   queryFloat(c, "budget_max", errs),
	}
	if q.Status != "" && !q.Status.Valid() {
		errs.Add("status", "unknown status")
	}
	if q.ProjectType != "" && !q.ProjectType.Valid() {
		errs.Add("project_type", "project_type must be fixed or hourly")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	p := pageFromQuery(c)
	q.Page = p.Page
	items, total, err := h.Engine.ListProjects(c.UserContext(), q)
	if err != nil {
		return err
	}
	return respondPage(c, items, total, p)
}

// GET /api/projects/my
func (h *ProjectHandler) Mine(c *fiber.Ctx) error {
	status := models.ProjectStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return validationFail(c, FieldErrors{"status": {"unknown status"}})
	}
	p := pageFromQuery(c)
	items, total, err := h.Engine.ListClientProjects(c.UserContext(), middleware.Identity(c).ID, status, p.Page)
	if err != nil {
		return err
	}
	return respondPage(c, items, total, p)
}

// GET /api/projects/:id
func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	project, err := h.Engine.GetProject(c.UserContext(), id, middleware.Identity(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", project)
}

// POST /api/projects
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var req projectReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if errs := req.validate(true); len(errs) > 0 {
		return validationFail(c, errs)
	}

	in := workflow.ProjectInput{
		Title:         *req.Title,
		Description:   *req.Description,
		ProjectType:   models.ProjectType(*req.ProjectType),
		BudgetMin:     req.BudgetMin,
		BudgetMax:     req.BudgetMax,
		DurationWeeks: req.DurationWeeks,
		Draft:         req.Draft,
	}
	if req.Skills != nil {
		in.Skills = *req.Skills
	}
	project, err := h.Engine.CreateProject(c.UserContext(), middleware.Identity(c).ID, in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "project created", project)
}

// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req projectReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if errs := req.validate(false); len(errs) > 0 {
		return validationFail(c, errs)
	}

	patch := workflow.ProjectPatch{
		Title:         req.Title,
		Description:   req.Description,
		BudgetMin:     req.BudgetMin,
		BudgetMax:     req.BudgetMax,
		DurationWeeks: req.DurationWeeks,
		Skills:        req.Skills,
	}
	if req.ProjectType != nil {
		t := models.ProjectType(*req.ProjectType)
		patch.ProjectType = &t
	}
	project, err := h.Engine.UpdateProject(c.UserContext(), middleware.Identity(c).ID, id, patch)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "project updated", project)
}

// POST /api/projects/:id/publish
func (h *ProjectHandler) Publish(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	project, err := h.Engine.PublishProject(c.UserContext(), middleware.Identity(c).ID, id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "project published", project)
}

// POST /api/projects/:id/cancel
func (h *ProjectHandler) Cancel(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	project, err := h.Engine.CancelProject(c.UserContext(), middleware.Identity(c).ID, id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "project cancelled", project)
}

// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Engine.DeleteProject(c.UserContext(), middleware.Identity(c).ID, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "project deleted",
	})
}
