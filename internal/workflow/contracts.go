package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/auth"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
)

type ContractInput struct {
	ProjectID  uuid.UUID
	PartnerID  uuid.UUID // partner profile id
	ProposalID *uuid.UUID
	AgreedRate float64
	Terms      string
	StartDate  time.Time
	EndDate    *time.Time
}

type ContractPatch struct {
	AgreedRate *float64
	Terms      *string
	EndDate    *time.Time
}

// CreateContract hires a partner on an open project. Inside one transaction,
// in this order: the contract is inserted as active, the project moves to
// in_progress and every other pending proposal on the project is rejected.
func (e *Engine) CreateContract(ctx context.Context, clientID uuid.UUID, in ContractInput) (*models.Contract, error) {
	var out *models.Contract
	err := e.atomically(ctx, func(tx store.Store, box *outbox) error {
		// the row lock serializes racing hires of the same project
		project, err := ownedProject(ctx, tx, clientID, in.ProjectID)
		if err != nil {
			return err
		}
		if project.Status != models.ProjectStatusOpen {
			return apperr.InvalidState(apperr.ReasonProjectNotOpen, "project is not open")
		}

		if in.ProposalID != nil {
			proposal, err := tx.GetProposalForUpdate(ctx, *in.ProposalID)
			if err != nil {
				return lookup(err, "proposal")
			}
			if proposal.ProjectID != project.ID {
				return apperr.Conflict("proposal belongs to a different project")
			}
			if proposal.Status != models.ProposalStatusAccepted {
				return apperr.InvalidState("", "proposal has not been accepted")
			}
			if proposal.PartnerID != in.PartnerID {
				return apperr.Conflict("proposal belongs to a different partner")
			}
		}

		partner, err := tx.GetPartnerProfile(ctx, in.PartnerID)
		if err != nil {
			return lookup(err, "partner profile")
		}

		start := in.StartDate
		if start.IsZero() {
			start = e.now()
		}
		c := &models.Contract{
			ProjectID:  project.ID,
			PartnerID:  partner.ID,
			ProposalID: in.ProposalID,
			AgreedRate: in.AgreedRate,
			Terms:      in.Terms,
			Status:     models.ContractStatusActive,
			StartDate:  start,
			EndDate:    in.EndDate,
		}
		if err := tx.CreateContract(ctx, c); err != nil {
			return apperr.Persistence(err)
		}

		project.Status = models.ProjectStatusInProgress
		if err := tx.UpdateProject(ctx, project); err != nil {
			return apperr.Persistence(err)
		}

		rejected, err := tx.RejectPendingProposals(ctx, project.ID, in.ProposalID)
		if err != nil {
			return apperr.Persistence(err)
		}

		box.add(partner.UserID, models.NotifContractCreated,
			"New contract",
			"You have been hired for \""+project.Title+"\".",
			"/contracts/"+c.ID.String())
		for _, r := range rejected {
			loser, err := tx.GetPartnerProfile(ctx, r.PartnerID)
			if err != nil {
				return lookup(err, "partner profile")
			}
			box.add(loser.UserID, models.NotifProposalRejected,
				"Proposal rejected",
				"Another partner was hired for \""+project.Title+"\".",
				"/proposals/"+r.ID.String())
		}
		out = c
		return nil
	})
	if err == nil {
		e.log.Info("contract created", "contract_id", out.ID, "project_id", in.ProjectID)
	}
	return out, err
}

// contractParties resolves the two user ids bound by a contract.
func contractParties(ctx context.Context, tx store.Store, c *models.Contract, lockProject bool) (*models.Project, *models.PartnerProfile, error) {
	get := tx.GetProject
	if lockProject {
		get = tx.GetProjectForUpdate
	}
	project, err := get(ctx, c.ProjectID)
	if err != nil {
		return nil, nil, lookup(err, "project")
	}
	partner, err := tx.GetPartnerProfile(ctx, c.PartnerID)
	if err != nil {
		return nil, nil, lookup(err, "partner profile")
	}
	return project, partner, nil
}

// UpdateContractStatus closes an active contract as completed or terminated.
// Completing it completes the project too.
func (e *Engine) UpdateContractStatus(ctx context.Context, actorID, contractID uuid.UUID, next models.ContractStatus) (*models.Contract, error) {
	var out *models.Contract
	err := e.atomically(ctx, func(tx store.Store, box *outbox) error {
		peek, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return lookup(err, "contract")
		}
		project, partner, err := contractParties(ctx, tx, peek, true)
		if err != nil {
			return err
		}
		if actorID != project.ClientID && actorID != partner.UserID {
			return apperr.Forbidden("only the contract parties can change its status")
		}
		c, err := tx.GetContractForUpdate(ctx, contractID)
		if err != nil {
			return lookup(err, "contract")
		}
		if !c.Status.CanTransitionTo(next) {
			return apperr.InvalidState("", fmt.Sprintf("cannot move contract from %s to %s", c.Status, next))
		}

		c.Status = next
		if c.EndDate == nil {
			now := e.now()
			c.EndDate = &now
		}
		if err := tx.UpdateContract(ctx, c); err != nil {
			return apperr.Persistence(err)
		}

		if next == models.ContractStatusCompleted {
			if !project.Status.CanTransitionTo(models.ProjectStatusCompleted) {
				return apperr.InvalidState("", "project is not in progress")
			}
			project.Status = models.ProjectStatusCompleted
			if err := tx.UpdateProject(ctx, project); err != nil {
				return apperr.Persistence(err)
			}
		}

		other := project.ClientID
		if actorID == project.ClientID {
			other = partner.UserID
		}
		box.add(other, models.NotifContractUpdated,
			"Contract "+string(next),
			"The contract for \""+project.Title+"\" is now "+string(next)+".",
			"/contracts/"+c.ID.String())
		out = c
		return nil
	})
	if err == nil {
		e.log.Info("contract status changed", "contract_id", contractID, "status", next)
	}
	return out, err
}

// UpdateContractTerms lets the client amend an active contract.
func (e *Engine) UpdateContractTerms(ctx context.Context, actorID, contractID uuid.UUID, patch ContractPatch) (*models.Contract, error) {
	var out *models.Contract
	err := e.atomically(ctx, func(tx store.Store, _ *outbox) error {
		c, err := tx.GetContractForUpdate(ctx, contractID)
		if err != nil {
			return lookup(err, "contract")
		}
		project, err := tx.GetProject(ctx, c.ProjectID)
		if err != nil {
			return lookup(err, "project")
		}
		if project.ClientID != actorID {
			return apperr.Forbidden("only the client can amend the contract")
		}
		if c.Status != models.ContractStatusActive {
			return apperr.InvalidState("", "only an active contract can be amended")
		}
		if patch.AgreedRate != nil {
			c.AgreedRate = *patch.AgreedRate
		}
		if patch.Terms != nil {
			c.Terms = *patch.Terms
		}
		if patch.EndDate != nil {
			c.EndDate = patch.EndDate
		}
		if err := tx.UpdateContract(ctx, c); err != nil {
			return apperr.Persistence(err)
		}
		out = c
		return nil
	})
	return out, err
}

// GetContract is visible to both parties and to admins.
func (e *Engine) GetContract(ctx context.Context, actor auth.Identity, contractID uuid.UUID) (*models.Contract, error) {
	c, err := e.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, lookup(err, "contract")
	}
	project, partner, err := contractParties(ctx, e.store, c, false)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && actor.ID != project.ClientID && actor.ID != partner.UserID {
		return nil, apperr.Forbidden("you are not a party to this contract")
	}
	c.Project = project
	c.PartnerProfile = partner
	return c, nil
}

// ListContracts scopes the listing by role: a client sees contracts on their
// projects, a partner their own, an admin everything.
func (e *Engine) ListContracts(ctx context.Context, actor auth.Identity, status models.ContractStatus, page store.Page) ([]models.Contract, int64, error) {
	f := store.ContractFilter{Status: status, Page: page}
	switch actor.Role {
	case models.RoleClient:
		f.ClientID = &actor.ID
	case models.RolePartner:
		partner, err := e.store.GetPartnerProfileByUser(ctx, actor.ID)
		if errors.Is(err, store.ErrNotFound) {
			return []models.Contract{}, 0, nil
		}
		if err != nil {
			return nil, 0, apperr.Persistence(err)
		}
		f.PartnerID = &partner.ID
	case models.RoleAdmin:
	default:
		return nil, 0, apperr.Forbidden("unknown role")
	}
	items, total, err := e.store.ListContracts(ctx, f)
	if err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	return items, total, nil
}
