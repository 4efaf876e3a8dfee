package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/utils"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type GoogleOAuthHandler struct {
	Store           store.Users
	JWTSecret       string
	Expires         int
	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
	FrontendBaseURL string
}

func (h *GoogleOAuthHandler) oauthCfg() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.GoogleClientID,
		ClientSecret: h.GoogleSecret,
		RedirectURL:  h.GoogleRedirect,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}
}

func randomState(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func shortCookie(name, value string, maxAge int) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		SameSite: "Lax",
		MaxAge:   maxAge,
	}
}

// GoogleStart redirects to the consent screen. ?role=partner lets a new
// account sign up as a partner; ?next= is where the frontend lands afterwards.
func (h *GoogleOAuthHandler) GoogleStart(c *fiber.Ctx) error {
	st := randomState(32)
	role := models.RoleClient
	if r, ok := models.ParseRole(c.Query("role")); ok && r != models.RoleAdmin {
		role = r
	}

	c.Cookie(shortCookie("oauth_state", st, 10*60))
	c.Cookie(shortCookie("oauth_next", c.Query("next", "/"), 10*60))
	c.Cookie(shortCookie("oauth_role", string(role), 10*60))

	return c.Redirect(h.oauthCfg().AuthCodeURL(st, oauth2.AccessTypeOffline), http.StatusTemporaryRedirect)
}

type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (h *GoogleOAuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing code or state")
	}
	if st := c.Cookies("oauth_state"); st == "" || st != state {
		return fiber.NewError(fiber.StatusBadRequest, "invalid state")
	}
	next := c.Cookies("oauth_next")
	if !strings.HasPrefix(next, "/") {
		next = "/"
	}

	ctx := c.UserContext()
	tok, err := h.oauthCfg().Exchange(ctx, code)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to exchange code")
	}
	resp, err := h.oauthCfg().Client(ctx, tok).Get(googleUserInfoURL)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch userinfo")
	}
	defer resp.Body.Close()

	var gu googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "failed to decode userinfo")
	}
	email := strings.ToLower(strings.TrimSpace(gu.Email))
	if email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "google account has no email")
	}

	u, err := h.Store.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		role, ok := models.ParseRole(c.Cookies("oauth_role"))
		if !ok || role == models.RoleAdmin {
			role = models.RoleClient
		}
		// the account never logs in with a password; store an unguessable one
		hashed, err := utils.HashPassword(randomState(24))
		if err != nil {
			return err
		}
		u = &models.User{
			FullName: strings.TrimSpace(gu.Name),
			Email:    email,
			Password: hashed,
			Role:     role,
			IsActive: true,
		}
		if u.FullName == "" {
			u.FullName = strings.Split(email, "@")[0]
		}
		if err := h.Store.CreateUser(ctx, u); err != nil {
			log.Println("google sign-up failed:", err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to create account")
		}
	case err != nil:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load account")
	}

	c.Cookie(shortCookie("oauth_state", "", -1))
	c.Cookie(shortCookie("oauth_next", "", -1))
	c.Cookie(shortCookie("oauth_role", "", -1))

	if !u.IsActive {
		return c.Redirect(h.FrontendBaseURL+"/auth/login?err="+url.QueryEscape("account is inactive"), http.StatusTemporaryRedirect)
	}

	jwtToken, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to sign token")
	}

	// the fragment never reaches a server log
	target := h.FrontendBaseURL + "/auth/callback?next=" + url.QueryEscape(next) + "#token=" + url.QueryEscape(jwtToken)
	return c.Redirect(target, http.StatusTemporaryRedirect)
}
