package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/workflow"
)

type ReviewHandler struct {
	Engine *workflow.Engine
}

func NewReviewHandler(e *workflow.Engine) *ReviewHandler {
	return &ReviewHandler{Engine: e}
}

type reviewReq struct {
	ContractID string  `json:"contract_id"`
	RevieweeID string  `json:"reviewee_id"`
	Rating     *int    `json:"rating"`
	Comment    *string `json:"comment"`
}

func checkRating(r *int, required bool, errs FieldErrors) {
	switch {
	case r == nil && required:
		errs.Add("rating", "rating is required")
	case r != nil && (*r < 1 || *r > 5):
		errs.Add("rating", "rating must be between 1 and 5")
	}
}

// POST /api/reviews
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var req reviewReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	errs := FieldErrors{}
	in := workflow.ReviewInput{
		ContractID: requiredID(req.ContractID, "contract_id", errs),
		RevieweeID: requiredID(req.RevieweeID, "reviewee_id", errs),
	}
	checkRating(req.Rating, true, errs)
	if len(errs) > 0 {
		return validationFail(c, errs)
	}
	in.Rating = *req.Rating
	if cm := trimPtr(req.Comment); cm != nil {
		in.Comment = *cm
	}

	r, err := h.Engine.CreateReview(c.UserContext(), middleware.Identity(c).ID, in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "review created", r)
}

// PUT /api/reviews/:id
func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req reviewReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	errs := FieldErrors{}
	checkRating(req.Rating, false, errs)
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	r, err := h.Engine.UpdateReview(c.UserContext(), middleware.Identity(c).ID, id, req.Rating, trimPtr(req.Comment))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "review updated", r)
}

// DELETE /api/reviews/:id
func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Engine.DeleteReview(c.UserContext(), middleware.Identity(c).ID, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "review deleted",
	})
}

// GET /api/reviews/user/:userId
func (h *ReviewHandler) ByUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	p := pageFromQuery(c)
	sum, err := h.Engine.ListUserReviews(c.UserContext(), userID, p.Page)
	if err != nil {
		return err
	}
	return respondPage(c, sum.Reviews, sum.Total, p, fiber.Map{"average_rating": sum.AverageRating})
}

// GET /api/reviews/contract/:contractId
func (h *ReviewHandler) ByContract(c *fiber.Ctx) error {
	contractID, err := paramID(c, "contractId")
	if err != nil {
		return err
	}
	items, err := h.Engine.ListContractReviews(c.UserContext(), contractID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", items)
}
