package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/utils"
)

const secret = "test-secret"

func newGuard(t *testing.T) (*Guard, *store.MemoryStore, *models.User) {
	t.Helper()
	s := store.NewMemoryStore()
	u := &models.User{FullName: "Cara Client", Email: "cara@example.com", Role: models.RoleClient, IsActive: true}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewGuard(JWTVerifier{Secret: secret}, s), s, u
}

func expiredToken(t *testing.T, uid string) string {
	t.Helper()
	past := time.Now().Add(-2 * time.Hour)
	claims := utils.Claims{
		UserID: uid,
		Role:   "client",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestAuthenticate(t *testing.T) {
	g, _, u := newGuard(t)
	good, _ := utils.SignJWT(secret, u.ID.String(), string(u.Role), 10)
	forged, _ := utils.SignJWT("another-secret", u.ID.String(), string(u.Role), 10)
	ghost, _ := utils.SignJWT(secret, uuid.NewString(), "client", 10)
	notUUID, _ := utils.SignJWT(secret, "42", "client", 10)

	cases := []struct {
		name   string
		header string
		reason string
	}{
		{"missing header", "", apperr.ReasonMissingToken},
		{"not bearer", "Basic abc", apperr.ReasonMissingToken},
		{"bad signature", "Bearer " + forged, apperr.ReasonInvalidToken},
		{"malformed", "Bearer abc.def", apperr.ReasonInvalidToken},
		{"subject not uuid", "Bearer " + notUUID, apperr.ReasonInvalidToken},
		{"expired", "Bearer " + expiredToken(t, u.ID.String()), apperr.ReasonTokenExpired},
		{"deleted user", "Bearer " + ghost, apperr.ReasonUserNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.Authenticate(context.Background(), tc.header)
			if !apperr.Is(err, apperr.KindUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			if got := apperr.ReasonOf(err); got != tc.reason {
				t.Fatalf("expected reason %s, got %s", tc.reason, got)
			}
		})
	}

	id, err := g.Authenticate(context.Background(), "Bearer "+good)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if id.ID != u.ID || id.Email != u.Email || id.FullName != u.FullName || id.Role != models.RoleClient {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestAuthenticateOptional(t *testing.T) {
	g, _, u := newGuard(t)

	id, err := g.AuthenticateOptional(context.Background(), "")
	if err != nil || id != nil {
		t.Fatalf("no header: expected (nil, nil), got (%v, %v)", id, err)
	}
	id, err = g.AuthenticateOptional(context.Background(), "Bearer "+expiredToken(t, u.ID.String()))
	if err != nil || id != nil {
		t.Fatalf("expired: expected (nil, nil), got (%v, %v)", id, err)
	}

	good, _ := utils.SignJWT(secret, u.ID.String(), string(u.Role), 10)
	id, err = g.AuthenticateOptional(context.Background(), "Bearer "+good)
	if err != nil || id == nil || id.ID != u.ID {
		t.Fatalf("valid token: got (%v, %v)", id, err)
	}
}

type brokenUsers struct{}

func (brokenUsers) GetUser(context.Context, uuid.UUID) (*models.User, error) {
	return nil, errors.New("connection refused")
}

func TestAuthenticateStoreFailure(t *testing.T) {
	g := NewGuard(JWTVerifier{Secret: secret}, brokenUsers{})
	tok, _ := utils.SignJWT(secret, uuid.NewString(), "client", 10)

	if _, err := g.Authenticate(context.Background(), "Bearer "+tok); !apperr.Is(err, apperr.KindPersistence) {
		t.Fatalf("expected persistence failure, got %v", err)
	}
	if _, err := g.AuthenticateOptional(context.Background(), "Bearer "+tok); !apperr.Is(err, apperr.KindPersistence) {
		t.Fatalf("optional mode must surface store failures, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	partner := &Identity{ID: uuid.New(), Role: models.RolePartner}

	if err := RequireRole(partner, models.RolePartner, models.RoleAdmin); err != nil {
		t.Fatalf("allowed role rejected: %v", err)
	}
	if err := RequireRole(partner, models.RoleClient); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := RequireRole(nil, models.RoleClient); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for nil identity, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	if tok, ok := BearerToken("bearer abc"); !ok || tok != "abc" {
		t.Fatalf("scheme should be case-insensitive, got %q %v", tok, ok)
	}
	if _, ok := BearerToken("Bearer"); ok {
		t.Fatal("empty token accepted")
	}
}

func TestAuthenticateInactiveUser(t *testing.T) {
	g, s, u := newGuard(t)
	tok, _ := utils.SignJWT(secret, u.ID.String(), string(u.Role), 10)

	u.IsActive = false
	if err := s.UpdateUser(context.Background(), u); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := g.Authenticate(context.Background(), "Bearer "+tok)
	if !apperr.Is(err, apperr.KindUnauthorized) || apperr.ReasonOf(err) != apperr.ReasonUserInactive {
		t.Fatalf("expected UserInactive, got %v", err)
	}
	if _, err := g.AuthenticateToken(context.Background(), tok); apperr.ReasonOf(err) != apperr.ReasonUserInactive {
		t.Fatalf("socket path let an inactive user in: %v", err)
	}
	if id, err := g.AuthenticateOptional(context.Background(), "Bearer "+tok); err != nil || id != nil {
		t.Fatalf("optional: expected anonymous, got (%v, %v)", id, err)
	}
}
