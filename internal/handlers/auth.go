package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/utils"
)

type AuthHandler struct {
	Store     store.Store
	JWTSecret string
	Expires   int
}

type RegisterReq struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // client / partner, admin is never self-registered
}

func userView(u *models.User) fiber.Map {
	return fiber.Map{
		"id":        u.ID,
		"full_name": u.FullName,
		"email":     u.Email,
		"role":      u.Role,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	name := strings.TrimSpace(req.FullName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	errs := FieldErrors{}
	if name == "" {
		errs.Add("full_name", "full name is required")
	}
	if email == "" {
		errs.Add("email", "email is required")
	} else if !strings.Contains(email, "@") {
		errs.Add("email", "email is not valid")
	}
	if password == "" {
		errs.Add("password", "password is required")
	} else if len(password) < 6 {
		errs.Add("password", "password must be at least 6 characters")
	}
	role := models.RoleClient
	if strings.TrimSpace(req.Role) != "" {
		r, ok := models.ParseRole(req.Role)
		if !ok || r == models.RoleAdmin {
			errs.Add("role", "role must be client or partner")
		}
		role = r
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	if _, err := h.Store.GetUserByEmail(c.UserContext(), email); err == nil {
		errs.Add("email", "email is already registered")
		return validationFail(c, errs)
	} else if !errors.Is(err, store.ErrNotFound) {
		return apperr.Persistence(err)
	}

	pw, err := utils.HashPassword(password)
	if err != nil {
		return apperr.Persistence(err)
	}
	u := &models.User{
		FullName: name,
		Email:    email,
		Password: pw,
		Role:     role,
		IsActive: true,
	}
	if err := h.Store.CreateUser(c.UserContext(), u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			errs.Add("email", "email is already registered")
			return validationFail(c, errs)
		}
		return apperr.Persistence(err)
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return apperr.Persistence(err)
	}

	return respond(c, fiber.StatusCreated, "registered", fiber.Map{
		"user":  userView(u),
		"token": token,
	})
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	errs := FieldErrors{}
	if email == "" {
		errs.Add("email", "email is required")
	}
	if password == "" {
		errs.Add("password", "password is required")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	u, err := h.Store.GetUserByEmail(c.UserContext(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Unauthorized("", "invalid email or password")
		}
		return apperr.Persistence(err)
	}
	if !utils.CheckPassword(u.Password, password) {
		return apperr.Unauthorized("", "invalid email or password")
	}
	if !u.IsActive {
		return apperr.Forbidden("account is inactive")
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return apperr.Persistence(err)
	}

	return respond(c, fiber.StatusOK, "logged in", fiber.Map{
		"user":  userView(u),
		"token": token,
	})
}

// Logout exists for clients that expect it. Tokens are stateless, so the
// client simply drops its copy.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "logged out",
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	me := middleware.Identity(c)
	u, err := h.Store.GetUser(c.UserContext(), me.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Unauthorized(apperr.ReasonUserNotFound, "user not found")
		}
		return apperr.Persistence(err)
	}

	out := userView(u)
	out["is_active"] = u.IsActive
	out["created_at"] = u.CreatedAt
	if u.Role == models.RolePartner {
		if p, err := h.Store.GetPartnerProfileByUser(c.UserContext(), u.ID); err == nil {
			out["partner_profile"] = p
		} else if !errors.Is(err, store.ErrNotFound) {
			return apperr.Persistence(err)
		}
	}
	return respond(c, fiber.StatusOK, "", out)
}

type UpdateMeReq struct {
	FullName *string `json:"full_name"`
}

// UpdateMe edits the caller's own account. Only the display name is editable;
// email and role are fixed at registration.
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	var req UpdateMeReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	name := trimPtr(req.FullName)
	if name == nil || *name == "" {
		errs := FieldErrors{}
		errs.Add("full_name", "full name is required")
		return validationFail(c, errs)
	}

	ctx := c.UserContext()
	u, err := h.Store.GetUser(ctx, middleware.Identity(c).ID)
	if err != nil {
		return apperr.Persistence(err)
	}
	u.FullName = *name
	u.PartnerProfile = nil
	if err := h.Store.UpdateUser(ctx, u); err != nil {
		return apperr.Persistence(err)
	}
	return respond(c, fiber.StatusOK, "profile updated", userView(u))
}

type ChangePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	current := strings.TrimSpace(req.CurrentPassword)
	errs := FieldErrors{}
	if current == "" {
		errs.Add("current_password", "current password is required")
	}
	if len(strings.TrimSpace(req.NewPassword)) < 6 {
		errs.Add("new_password", "password must be at least 6 characters")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	ctx := c.UserContext()
	u, err := h.Store.GetUser(ctx, middleware.Identity(c).ID)
	if err != nil {
		return apperr.Persistence(err)
	}
	if !utils.CheckPassword(u.Password, current) {
		errs.Add("current_password", "current password is incorrect")
		return validationFail(c, errs)
	}

	pw, err := utils.HashPassword(strings.TrimSpace(req.NewPassword))
	if err != nil {
		return apperr.Persistence(err)
	}
	u.Password = pw
	u.PartnerProfile = nil
	if err := h.Store.UpdateUser(ctx, u); err != nil {
		return apperr.Persistence(err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "password changed",
	})
}
