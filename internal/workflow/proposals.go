package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
)

type ProposalInput struct {
	CoverLetter            string
	ProposedRate           float64
	EstimatedDurationWeeks *int
	PortfolioLinks         []string
}

type ProposalPatch struct {
	CoverLetter            *string
	ProposedRate           *float64
	EstimatedDurationWeeks *int
	PortfolioLinks         *[]string
}

func partnerOf(ctx context.Context, s store.Store, userID uuid.UUID) (*models.PartnerProfile, error) {
	p, err := s.GetPartnerProfileByUser(ctx, userID)
	if err != nil {
		return nil, lookup(err, "partner profile")
	}
	return p, nil
}

// SubmitProposal files a proposal from the partner behind partnerUserID.
func (e *Engine) SubmitProposal(ctx context.Context, partnerUserID, projectID uuid.UUID, in ProposalInput) (*models.Proposal, error) {
	var out *models.Proposal
	err := e.atomically(ctx, func(tx store.Store, box *outbox) error {
		partner, err := partnerOf(ctx, tx, partnerUserID)
		if err != nil {
			return err
		}
		project, err := tx.GetProjectForUpdate(ctx, projectID)
		if err != nil {
			return lookup(err, "project")
		}
		if project.Status != models.ProjectStatusOpen {
			return apperr.InvalidState(apperr.ReasonProjectNotOpen, "project is not accepting proposals")
		}
		if _, err := tx.FindLiveProposal(ctx, project.ID, partner.ID); err == nil {
			return apperr.Conflict("you already submitted a proposal for this project")
		} else if !errors.Is(err, store.ErrNotFound) {
			return apperr.Persistence(err)
		}

		p := &models.Proposal{
			ProjectID:              project.ID,
			PartnerID:              partner.ID,
			CoverLetter:            in.CoverLetter,
			ProposedRate:           in.ProposedRate,
			EstimatedDurationWeeks: in.EstimatedDurationWeeks,
			PortfolioLinks:         jsonList(in.PortfolioLinks),
			Status:                 models.ProposalStatusPending,
		}
		if err := tx.CreateProposal(ctx, p); err != nil {
			return write(err, "you already submitted a proposal for this project")
		}

		box.add(project.ClientID, models.NotifProposalReceived,
			"New proposal received",
			"A partner submitted a proposal for \""+project.Title+"\".",
			"/projects/"+project.ID.String()+"/proposals")
		out = p
		return nil
	})
	if err == nil {
		e.log.Info("proposal submitted", "proposal_id", out.ID, "project_id", projectID)
	}
	return out, err
}

// UpdateProposalStatus is the client's accept/reject decision on a pending proposal.
func (e *Engine) UpdateProposalStatus(ctx context.Context, actorID, proposalID uuid.UUID, next models.ProposalStatus) (*models.Proposal, error) {
	var out *models.Proposal
	err := e.atomically(ctx, func(tx store.Store, box *outbox) error {
		peek, err := tx.GetProposal(ctx, proposalID)
		if err != nil {
			return lookup(err, "proposal")
		}
		// project first, same lock order as contract creation
		project, err := tx.GetProjectForUpdate(ctx, peek.ProjectID)
		if err != nil {
			return lookup(err, "project")
		}
		if project.ClientID != actorID {
			return apperr.Forbidden("only the project owner can decide on proposals")
		}
		p, err := tx.GetProposalForUpdate(ctx, proposalID)
		if err != nil {
			return lookup(err, "proposal")
		}
		if next != models.ProposalStatusAccepted && next != models.ProposalStatusRejected {
			return apperr.InvalidState("", fmt.Sprintf("cannot set proposal status to %q", next))
		}
		if !p.Status.CanTransitionTo(next) {
			return apperr.InvalidState("", fmt.Sprintf("proposal is %s, only pending proposals can be decided", p.Status))
		}
		if next == models.ProposalStatusAccepted && project.Status != models.ProjectStatusOpen {
			return apperr.InvalidState(apperr.ReasonProjectNotOpen, "project is not open")
		}

		p.Status = next
		if err := tx.UpdateProposal(ctx, p); err != nil {
			return apperr.Persistence(err)
		}

		partner, err := tx.GetPartnerProfile(ctx, p.PartnerID)
		if err != nil {
			return lookup(err, "partner profile")
		}
		if next == models.ProposalStatusAccepted {
			box.add(partner.UserID, models.NotifProposalAccepted,
				"Proposal accepted",
				"Your proposal for \""+project.Title+"\" was accepted.",
				"/proposals/"+p.ID.String())
		} else {
			box.add(partner.UserID, models.NotifProposalRejected,
				"Proposal rejected",
				"Your proposal for \""+project.Title+"\" was not selected.",
				"/proposals/"+p.ID.String())
		}
		out = p
		return nil
	})
	if err == nil {
		e.log.Info("proposal decided", "proposal_id", proposalID, "status", next)
	}
	return out, err
}

// ownProposal locks a proposal that must belong to the partner behind userID
// and still be pending.
func ownProposal(ctx context.Context, tx store.Store, userID, proposalID uuid.UUID) (*models.Proposal, error) {
	p, err := tx.GetProposalForUpdate(ctx, proposalID)
	if err != nil {
		return nil, lookup(err, "proposal")
	}
	partner, err := tx.GetPartnerProfileByUser(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Persistence(err)
	}
	if partner == nil || partner.ID != p.PartnerID {
		return nil, apperr.Forbidden("only the proposal author can change it")
	}
	if p.Status != models.ProposalStatusPending {
		return nil, apperr.InvalidState("", "only a pending proposal can be changed")
	}
	return p, nil
}

func (e *Engine) EditProposal(ctx context.Context, partnerUserID, proposalID uuid.UUID, patch ProposalPatch) (*models.Proposal, error) {
	var out *models.Proposal
	err := e.atomically(ctx, func(tx store.Store, _ *outbox) error {
		p, err := ownProposal(ctx, tx, partnerUserID, proposalID)
		if err != nil {
			return err
		}
		if patch.CoverLetter != nil {
			p.CoverLetter = *patch.CoverLetter
		}
		if patch.ProposedRate != nil {
			p.ProposedRate = *patch.ProposedRate
		}
		if patch.EstimatedDurationWeeks != nil {
			p.EstimatedDurationWeeks = patch.EstimatedDurationWeeks
		}
		if patch.PortfolioLinks != nil {
			p.PortfolioLinks = jsonList(*patch.PortfolioLinks)
		}
		if err := tx.UpdateProposal(ctx, p); err != nil {
			return apperr.Persistence(err)
		}
		out = p
		return nil
	})
	return out, err
}

// WithdrawProposal retracts a pending proposal. The partner may apply again afterwards.
func (e *Engine) WithdrawProposal(ctx context.Context, partnerUserID, proposalID uuid.UUID) (*models.Proposal, error) {
	var out *models.Proposal
	err := e.atomically(ctx, func(tx store.Store, _ *outbox) error {
		p, err := ownProposal(ctx, tx, partnerUserID, proposalID)
		if err != nil {
			return err
		}
		p.Status = models.ProposalStatusWithdrawn
		if err := tx.UpdateProposal(ctx, p); err != nil {
			return apperr.Persistence(err)
		}
		out = p
		return nil
	})
	if err == nil {
		e.log.Info("proposal withdrawn", "proposal_id", proposalID)
	}
	return out, err
}

// GetProposal is visible to its author and to the project's client.
func (e *Engine) GetProposal(ctx context.Context, actorID, proposalID uuid.UUID) (*models.Proposal, error) {
	p, err := e.store.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, lookup(err, "proposal")
	}
	project, err := e.store.GetProject(ctx, p.ProjectID)
	if err != nil {
		return nil, lookup(err, "project")
	}
	partner, err := e.store.GetPartnerProfile(ctx, p.PartnerID)
	if err != nil {
		return nil, lookup(err, "partner profile")
	}
	if actorID != project.ClientID && actorID != partner.UserID {
		return nil, apperr.Forbidden("you cannot view this proposal")
	}
	p.Project = project
	p.PartnerProfile = partner
	return p, nil
}

func (e *Engine) ListProjectProposals(ctx context.Context, actorID, projectID uuid.UUID, status models.ProposalStatus, page store.Page) ([]models.Proposal, int64, error) {
	project, err := e.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, 0, lookup(err, "project")
	}
	if project.ClientID != actorID {
		return nil, 0, apperr.Forbidden("only the project owner can list its proposals")
	}
	items, total, err := e.store.ListProposals(ctx, store.ProposalFilter{ProjectID: &project.ID, Status: status, Page: page})
	if err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	return items, total, nil
}

// ListPartnerProposals lists the caller's own proposals. A partner without a
// profile has none.
func (e *Engine) ListPartnerProposals(ctx context.Context, partnerUserID uuid.UUID, status models.ProposalStatus, page store.Page) ([]models.Proposal, int64, error) {
	partner, err := e.store.GetPartnerProfileByUser(ctx, partnerUserID)
	if errors.Is(err, store.ErrNotFound) {
		return []models.Proposal{}, 0, nil
	}
	if err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	items, total, err := e.store.ListProposals(ctx, store.ProposalFilter{PartnerID: &partner.ID, Status: status, Page: page})
	if err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	return items, total, nil
}
