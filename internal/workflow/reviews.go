package workflow

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
)

type ReviewInput struct {
	ContractID uuid.UUID
	RevieweeID uuid.UUID
	Rating     int
	Comment    string
}

type ReviewSummary struct {
	Reviews       []models.Review `json:"reviews"`
	Total         int64           `json:"total"`
	AverageRating float64         `json:"average_rating"`
}

// CreateReview lets one party of a completed contract rate the other, once.
func (e *Engine) CreateReview(ctx context.Context, actorID uuid.UUID, in ReviewInput) (*models.Review, error) {
	var out *models.Review
	err := e.atomically(ctx, func(tx store.Store, box *outbox) error {
		c, err := tx.GetContract(ctx, in.ContractID)
		if err != nil {
			return lookup(err, "contract")
		}
		if c.Status != models.ContractStatusCompleted {
			return apperr.InvalidState("", "only a completed contract can be reviewed")
		}
		project, partner, err := contractParties(ctx, tx, c, false)
		if err != nil {
			return err
		}

		var other uuid.UUID
		switch actorID {
		case project.ClientID:
			other = partner.UserID
		case partner.UserID:
			other = project.ClientID
		default:
			return apperr.Forbidden("only the contract parties can review it")
		}
		if in.RevieweeID != other {
			return apperr.InvalidState(apperr.ReasonWrongReviewee, "you can only review the other party of the contract")
		}

		if _, err := tx.FindReview(ctx, c.ID, actorID); err == nil {
			return apperr.Conflict("you already reviewed this contract")
		} else if !errors.Is(err, store.ErrNotFound) {
			return apperr.Persistence(err)
		}

		r := &models.Review{
			ContractID: c.ID,
			ReviewerID: actorID,
			RevieweeID: other,
			Rating:     in.Rating,
			Comment:    in.Comment,
		}
		if err := tx.CreateReview(ctx, r); err != nil {
			return write(err, "you already reviewed this contract")
		}
		box.add(other, models.NotifReviewReceived,
			"New review",
			"You received a review for \""+project.Title+"\".",
			"/reviews/"+r.ID.String())
		out = r
		return nil
	})
	return out, err
}

func (e *Engine) ownReview(ctx context.Context, tx store.Store, actorID, reviewID uuid.UUID) (*models.Review, error) {
	r, err := tx.GetReview(ctx, reviewID)
	if err != nil {
		return nil, lookup(err, "review")
	}
	if r.ReviewerID != actorID {
		return nil, apperr.NotFound("review not found")
	}
	return r, nil
}

func (e *Engine) UpdateReview(ctx context.Context, actorID, reviewID uuid.UUID, rating *int, comment *string) (*models.Review, error) {
	var out *models.Review
	err := e.atomically(ctx, func(tx store.Store, _ *outbox) error {
		r, err := e.ownReview(ctx, tx, actorID, reviewID)
		if err != nil {
			return err
		}
		if rating != nil {
			r.Rating = *rating
		}
		if comment != nil {
			r.Comment = *comment
		}
		if err := tx.UpdateReview(ctx, r); err != nil {
			return apperr.Persistence(err)
		}
		out = r
		return nil
	})
	return out, err
}

func (e *Engine) DeleteReview(ctx context.Context, actorID, reviewID uuid.UUID) error {
	return e.atomically(ctx, func(tx store.Store, _ *outbox) error {
		r, err := e.ownReview(ctx, tx, actorID, reviewID)
		if err != nil {
			return err
		}
		if err := tx.DeleteReview(ctx, r.ID); err != nil {
			return lookup(err, "review")
		}
		return nil
	})
}

// ListUserReviews returns the reviews a user received with their average
// rating rounded to one decimal.
func (e *Engine) ListUserReviews(ctx context.Context, revieweeID uuid.UUID, page store.Page) (*ReviewSummary, error) {
	items, total, err := e.store.ListReviews(ctx, store.ReviewFilter{RevieweeID: &revieweeID, Page: page})
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	avg, _, err := e.store.ReviewStats(ctx, revieweeID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return &ReviewSummary{Reviews: items, Total: total, AverageRating: roundRating(avg)}, nil
}

func (e *Engine) ListContractReviews(ctx context.Context, contractID uuid.UUID) ([]models.Review, error) {
	if _, err := e.store.GetContract(ctx, contractID); err != nil {
		return nil, lookup(err, "contract")
	}
	items, _, err := e.store.ListReviews(ctx, store.ReviewFilter{ContractID: &contractID})
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return items, nil
}

func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
