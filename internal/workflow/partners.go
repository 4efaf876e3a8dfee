package workflow

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
)

type PartnerInput struct {
	Bio             *string
	HourlyRate      *float64
	ExperienceYears *int
	Available       *bool
}

type PartnerDetail struct {
	*models.PartnerProfile
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

// UpsertPartnerProfile creates the caller's profile on first use and patches it afterwards.
func (e *Engine) UpsertPartnerProfile(ctx context.Context, userID uuid.UUID, in PartnerInput) (*models.PartnerProfile, error) {
	var out *models.PartnerProfile
	err := e.atomically(ctx, func(tx store.Store, _ *outbox) error {
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return lookup(err, "user")
		}
		if err := partnerUserRole(u); err != nil {
			return err
		}
		p, err := tx.GetPartnerProfileByUser(ctx, userID)
		created := false
		switch {
		case errors.Is(err, store.ErrNotFound):
			p = &models.PartnerProfile{UserID: userID, Available: true}
			created = true
		case err != nil:
			return apperr.Persistence(err)
		}

		if in.Bio != nil {
			p.Bio = *in.Bio
		}
		if in.HourlyRate != nil {
			p.HourlyRate = in.HourlyRate
		}
		if in.ExperienceYears != nil {
			p.ExperienceYears = in.ExperienceYears
		}
		if in.Available != nil {
			p.Available = *in.Available
		}

		if created {
			if err := tx.CreatePartnerProfile(ctx, p); err != nil {
				return write(err, "partner profile already exists")
			}
		} else {
			p.User = nil
			if err := tx.UpdatePartnerProfile(ctx, p); err != nil {
				return apperr.Persistence(err)
			}
		}
		out = p
		return nil
	})
	return out, err
}

func (e *Engine) GetMyPartnerProfile(ctx context.Context, userID uuid.UUID) (*models.PartnerProfile, error) {
	return partnerOf(ctx, e.store, userID)
}

// GetPartner returns a public profile with its rating.
func (e *Engine) GetPartner(ctx context.Context, id uuid.UUID) (*PartnerDetail, error) {
	p, err := e.store.GetPartnerProfile(ctx, id)
	if err != nil {
		return nil, lookup(err, "partner")
	}
	avg, count, err := e.store.ReviewStats(ctx, p.UserID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return &PartnerDetail{PartnerProfile: p, AverageRating: roundRating(avg), ReviewCount: count}, nil
}

func (e *Engine) ListPartners(ctx context.Context, f store.PartnerFilter) ([]models.PartnerProfile, int64, error) {
	items, total, err := e.store.ListPartnerProfiles(ctx, f)
	if err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	return items, total, nil
}

// partnerUserRole guards profile creation for non-partners.
func partnerUserRole(u *models.User) error {
	if u.Role != models.RolePartner {
		return apperr.Forbidden("only partners have a partner profile")
	}
	return nil
}
