package workflow

import (
	"context"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/auth"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
)

type ClientDashboard struct {
	TotalProjects      int     `json:"total_projects"`
	OpenProjects       int     `json:"open_projects"`
	InProgressProjects int     `json:"in_progress_projects"`
	CompletedProjects  int     `json:"completed_projects"`
	PendingProposals   int     `json:"pending_proposals"`
	ActiveContracts    int     `json:"active_contracts"`
	CompletedContracts int     `json:"completed_contracts"`
	TotalSpent         float64 `json:"total_spent"`
}

type PartnerDashboard struct {
	TotalProposals     int     `json:"total_proposals"`
	PendingProposals   int     `json:"pending_proposals"`
	AcceptedProposals  int     `json:"accepted_proposals"`
	AcceptanceRate     float64 `json:"acceptance_rate"` // percent
	ActiveContracts    int     `json:"active_contracts"`
	CompletedContracts int     `json:"completed_contracts"`
	TotalEarnings      float64 `json:"total_earnings"`
	AverageRating      float64 `json:"average_rating"`
	TotalReviews       int64   `json:"total_reviews"`
}

// Dashboard summarizes the caller's activity. The result is a
// *ClientDashboard or a *PartnerDashboard depending on the role.
func (e *Engine) Dashboard(ctx context.Context, actor auth.Identity) (interface{}, error) {
	switch actor.Role {
	case models.RoleClient:
		return e.clientDashboard(ctx, actor)
	case models.RolePartner:
		return e.partnerDashboard(ctx, actor)
	}
	return nil, apperr.Forbidden("no dashboard for this role")
}

func (e *Engine) clientDashboard(ctx context.Context, actor auth.Identity) (*ClientDashboard, error) {
	projects, _, err := e.store.ListProjects(ctx, store.ProjectFilter{ClientID: &actor.ID})
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	out := &ClientDashboard{TotalProjects: len(projects)}
	for _, p := range projects {
		switch p.Status {
		case models.ProjectStatusOpen:
			out.OpenProjects++
		case models.ProjectStatusInProgress:
			out.InProgressProjects++
		case models.ProjectStatusCompleted:
			out.CompletedProjects++
		}
		pid := p.ID
		_, pending, err := e.store.ListProposals(ctx, store.ProposalFilter{
			ProjectID: &pid,
			Status:    models.ProposalStatusPending,
			Page:      store.Page{Limit: 1},
		})
		if err != nil {
			return nil, apperr.Persistence(err)
		}
		out.PendingProposals += int(pending)
	}

	contracts, _, err := e.store.ListContracts(ctx, store.ContractFilter{ClientID: &actor.ID})
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	for _, c := range contracts {
		out.TotalSpent += c.AgreedRate
		switch c.Status {
		case models.ContractStatusActive:
			out.ActiveContracts++
		case models.ContractStatusCompleted:
			out.CompletedContracts++
		}
	}
	return out, nil
}

func (e *Engine) partnerDashboard(ctx context.Context, actor auth.Identity) (*PartnerDashboard, error) {
	partner, err := partnerOf(ctx, e.store, actor.ID)
	if err != nil {
		return nil, err
	}

	proposals, _, err := e.store.ListProposals(ctx, store.ProposalFilter{PartnerID: &partner.ID})
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	out := &PartnerDashboard{TotalProposals: len(proposals)}
	for _, p := range proposals {
		switch p.Status {
		case models.ProposalStatusPending:
			out.PendingProposals++
		case models.ProposalStatusAccepted:
			out.AcceptedProposals++
		}
	}
	if out.TotalProposals > 0 {
		out.AcceptanceRate = roundRating(float64(out.AcceptedProposals) / float64(out.TotalProposals) * 100)
	}

	contracts, _, err := e.store.ListContracts(ctx, store.ContractFilter{PartnerID: &partner.ID})
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	for _, c := range contracts {
		out.TotalEarnings += c.AgreedRate
		switch c.Status {
		case models.ContractStatusActive:
			out.ActiveContracts++
		case models.ContractStatusCompleted:
			out.CompletedContracts++
		}
	}

	avg, count, err := e.store.ReviewStats(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	out.AverageRating = roundRating(avg)
	out.TotalReviews = count
	return out, nil
}
