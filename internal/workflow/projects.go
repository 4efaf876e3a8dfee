package workflow

import (
	"context"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/auth"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
)

type ProjectInput struct {
	Title         string
	Description   string
	ProjectType   models.ProjectType
	BudgetMin     *float64
	BudgetMax     *float64
	DurationWeeks *int
	Skills        []string
	// Draft keeps the project out of the public listing until it is published.
	Draft bool
}

// ProjectPatch leaves nil fields untouched. Status is never patched.
type ProjectPatch struct {
	Title         *string
	Description   *string
	ProjectType   *models.ProjectType
	BudgetMin     *float64
	BudgetMax     *float64
	DurationWeeks *int
	Skills        *[]string
}

type ProjectQuery struct {
	Status      models.ProjectStatus
	ProjectType models.ProjectType
	Search      string
	BudgetMin   *float64
	BudgetMax   *float64
	store.Page
}

func (e *Engine) CreateProject(ctx context.Context, clientID uuid.UUID, in ProjectInput) (*models.Project, error) {
	status := models.ProjectStatusOpen
	if in.Draft {
		status = models.ProjectStatusDraft
	}
	p := &models.Project{
		ClientID:      clientID,
		Title:         in.Title,
		Description:   in.Description,
		ProjectType:   in.ProjectType,
		BudgetMin:     in.BudgetMin,
		BudgetMax:     in.BudgetMax,
		DurationWeeks: in.DurationWeeks,
		Skills:        jsonList(in.Skills),
		Status:        status,
	}
	if err := e.store.CreateProject(ctx, p); err != nil {
		return nil, apperr.Persistence(err)
	}
	e.log.Info("project created", "project_id", p.ID, "client_id", clientID, "status", p.Status)
	return p, nil
}

// ownedProject locks the project and checks that actorID is its client.
func ownedProject(ctx context.Context, tx store.Store, actorID, projectID uuid.UUID) (*models.Project, error) {
	p, err := tx.GetProjectForUpdate(ctx, projectID)
	if err != nil {
		return nil, lookup(err, "project")
	}
	if p.ClientID != actorID {
		return nil, apperr.Forbidden("only the project owner can do this")
	}
	return p, nil
}

func (e *Engine) UpdateProject(ctx context.Context, actorID, projectID uuid.UUID, patch ProjectPatch) (*models.Project, error) {
	var out *models.Project
	err := e.atomically(ctx, func(tx store.Store, _ *outbox) error {
		p, err := ownedProject(ctx, tx, actorID, projectID)
		if err != nil {
			return err
		}
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.ProjectType != nil {
			p.ProjectType = *patch.ProjectType
		}
		if patch.BudgetMin != nil {
			p.BudgetMin = patch.BudgetMin
		}
		if patch.BudgetMax != nil {
			p.BudgetMax = patch.BudgetMax
		}
		if patch.DurationWeeks != nil {
			p.DurationWeeks = patch.DurationWeeks
		}
		if patch.Skills != nil {
			p.Skills = jsonList(*patch.Skills)
		}
		if err := tx.UpdateProject(ctx, p); err != nil {
			return apperr.Persistence(err)
		}
		out = p
		return nil
	})
	return out, err
}

// PublishProject moves a draft into the public listing.
func (e *Engine) PublishProject(ctx context.Context, actorID, projectID uuid.UUID) (*models.Project, error) {
	var out *models.Project
	err := e.atomically(ctx, func(tx store.Store, _ *outbox) error {
		p, err := ownedProject(ctx, tx, actorID, projectID)
		if err != nil {
			return err
		}
		if !p.Status.CanTransitionTo(models.ProjectStatusOpen) {
			return apperr.InvalidState("", "only a draft project can be published")
		}
		p.Status = models.ProjectStatusOpen
		if err := tx.UpdateProject(ctx, p); err != nil {
			return apperr.Persistence(err)
		}
		out = p
		return nil
	})
	return out, err
}

// CancelProject closes an open project. Pending proposals are rejected and
// every partner who applied is told.
func (e *Engine) CancelProject(ctx context.Context, actorID, projectID uuid.UUID) (*models.Project, error) {
	var out *models.Project
	err := e.atomically(ctx, func(tx store.Store, box *outbox) error {
		p, err := ownedProject(ctx, tx, actorID, projectID)
		if err != nil {
			return err
		}
		if !p.Status.CanTransitionTo(models.ProjectStatusCancelled) {
			return apperr.InvalidState(apperr.ReasonProjectNotOpen, "only an open project can be cancelled")
		}
		p.Status = models.ProjectStatusCancelled
		if err := tx.UpdateProject(ctx, p); err != nil {
			return apperr.Persistence(err)
		}
		if _, err := tx.RejectPendingProposals(ctx, p.ID, nil); err != nil {
			return apperr.Persistence(err)
		}

		applied, _, err := tx.ListProposals(ctx, store.ProposalFilter{ProjectID: &p.ID})
		if err != nil {
			return apperr.Persistence(err)
		}
		for _, pr := range applied {
			if pr.Status == models.ProposalStatusWithdrawn || pr.PartnerProfile == nil {
				continue
			}
			box.add(pr.PartnerProfile.UserID, models.NotifProjectCancelled,
				"Project cancelled",
				"The project \""+p.Title+"\" you applied to has been cancelled.",
				"/projects/"+p.ID.String())
		}
		out = p
		return nil
	})
	if err == nil {
		e.log.Info("project cancelled", "project_id", projectID)
	}
	return out, err
}

func (e *Engine) DeleteProject(ctx context.Context, actorID, projectID uuid.UUID) error {
	err := e.atomically(ctx, func(tx store.Store, _ *outbox) error {
		p, err := ownedProject(ctx, tx, actorID, projectID)
		if err != nil {
			return err
		}
		if p.Status == models.ProjectStatusInProgress {
			return apperr.InvalidState("", "cannot delete a project with an active contract")
		}
		if err := tx.DeleteProject(ctx, p.ID); err != nil {
			return lookup(err, "project")
		}
		return nil
	})
	if err == nil {
		e.log.Info("project deleted", "project_id", projectID)
	}
	return err
}

// GetProject hides drafts from everyone but their owner.
func (e *Engine) GetProject(ctx context.Context, projectID uuid.UUID, viewer *auth.Identity) (*models.Project, error) {
	p, err := e.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, lookup(err, "project")
	}
	if p.Status == models.ProjectStatusDraft && (viewer == nil || viewer.ID != p.ClientID) {
		return nil, apperr.NotFound("project not found")
	}
	if client, err := e.store.GetUser(ctx, p.ClientID); err == nil {
		p.Client = client
	}
	return p, nil
}

// ListProjects is the public listing. Without a status it shows open projects;
// drafts are never listed.
func (e *Engine) ListProjects(ctx context.Context, q ProjectQuery) ([]models.Project, int64, error) {
	status := q.Status
	if status == "" {
		status = models.ProjectStatusOpen
	}
	if status == models.ProjectStatusDraft {
		return []models.Project{}, 0, nil
	}
	items, total, err := e.store.ListProjects(ctx, store.ProjectFilter{
		Statuses:     []models.ProjectStatus{status},
		ProjectType:  q.ProjectType,
		Search:       q.Search,
		BudgetMaxMin: q.BudgetMin,
		BudgetMaxMax: q.BudgetMax,
		Page:         q.Page,
	})
	if err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	return items, total, nil
}

// ListClientProjects lists the caller's own projects, drafts included.
func (e *Engine) ListClientProjects(ctx context.Context, clientID uuid.UUID, status models.ProjectStatus, page store.Page) ([]models.Project, int64, error) {
	f := store.ProjectFilter{ClientID: &clientID, Page: page}
	if status != "" {
		f.Statuses = []models.ProjectStatus{status}
	}
	items, total, err := e.store.ListProjects(ctx, f)
	if err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	return items, total, nil
}
