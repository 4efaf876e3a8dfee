// Package auth resolves the caller of a request from a bearer token and
// enforces role membership.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/utils"
)

// Identity is the verified caller handed to business operations.
type Identity struct {
	ID       uuid.UUID   `json:"id"`
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Role     models.Role `json:"role"`
}

func (i *Identity) Is(role models.Role) bool {
	return i != nil && i.Role == role
}

type TokenClaims struct {
	SubjectID uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenVerifier interface {
	VerifyToken(token string) (TokenClaims, error)
}

type UserLoader interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// JWTVerifier checks HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	Secret string
}

func (v JWTVerifier) VerifyToken(token string) (TokenClaims, error) {
	claims, err := utils.ParseJWT(v.Secret, token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return TokenClaims{}, apperr.Unauthorized(apperr.ReasonTokenExpired, "token expired")
		}
		return TokenClaims{}, apperr.Unauthorized(apperr.ReasonInvalidToken, "invalid token")
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return TokenClaims{}, apperr.Unauthorized(apperr.ReasonInvalidToken, "invalid token subject")
	}
	out := TokenClaims{SubjectID: id}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

type Guard struct {
	Tokens TokenVerifier
	Users  UserLoader
}

func NewGuard(tokens TokenVerifier, users UserLoader) *Guard {
	return &Guard{Tokens: tokens, Users: users}
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func (g *Guard) Authenticate(ctx context.Context, header string) (*Identity, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, apperr.Unauthorized(apperr.ReasonMissingToken, "access token required")
	}
	return g.AuthenticateToken(ctx, token)
}

// AuthenticateToken is Authenticate for callers that carry the raw token
// somewhere other than the Authorization header (websocket query strings).
func (g *Guard) AuthenticateToken(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, apperr.Unauthorized(apperr.ReasonMissingToken, "access token required")
	}
	claims, err := g.Tokens.VerifyToken(token)
	if err != nil {
		if _, typed := apperr.As(err); typed {
			return nil, err
		}
		return nil, apperr.Unauthorized(apperr.ReasonInvalidToken, "invalid token")
	}

	u, err := g.Users.GetUser(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Unauthorized(apperr.ReasonUserNotFound, "user not found")
		}
		return nil, apperr.Persistence(err)
	}
	if !u.IsActive {
		return nil, apperr.Unauthorized(apperr.ReasonUserInactive, "account is inactive")
	}

	return &Identity{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
	}, nil
}

// AuthenticateOptional returns (nil, nil) whenever the caller cannot be
// identified. Only a persistence failure is reported.
func (g *Guard) AuthenticateOptional(ctx context.Context, header string) (*Identity, error) {
	id, err := g.Authenticate(ctx, header)
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			return nil, nil
		}
		return nil, err
	}
	return id, nil
}

func RequireRole(id *Identity, allowed ...models.Role) error {
	if id == nil {
		return apperr.Unauthorized(apperr.ReasonMissingToken, "authentication required")
	}
	for _, r := range allowed {
		if id.Role == r {
			return nil
		}
	}
	return apperr.Forbidden("insufficient role")
}
