// internal/models/proposal.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProposalStatus string

const (
	ProposalStatusPending   ProposalStatus = "pending"
	ProposalStatusAccepted  ProposalStatus = "accepted"
	ProposalStatusRejected  ProposalStatus = "rejected"
	ProposalStatusWithdrawn ProposalStatus = "withdrawn"
)

// Only a pending proposal moves. Accept/reject are the client's edges,
// withdraw is the partner's.
var proposalTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalStatusPending: {ProposalStatusAccepted, ProposalStatusRejected, ProposalStatusWithdrawn},
}

func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalStatusPending, ProposalStatusAccepted, ProposalStatusRejected, ProposalStatusWithdrawn:
		return true
	}
	return false
}

func (s ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	return containsStatus(proposalTransitions[s], next)
}

type Proposal struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	// one live proposal per (project, partner); withdrawn rows don't count
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_proposals_live,where:status <> 'withdrawn'" json:"project_id"`
	PartnerID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_proposals_live,where:status <> 'withdrawn'" json:"partner_id"`

	CoverLetter            string         `gorm:"type:text" json:"cover_letter"`
	ProposedRate           float64        `gorm:"not null" json:"proposed_rate"`
	EstimatedDurationWeeks *int           `json:"estimated_duration_weeks"`
	PortfolioLinks         datatypes.JSON `json:"portfolio_links"`

	Status ProposalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Project        *Project        `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	PartnerProfile *PartnerProfile `gorm:"foreignKey:PartnerID" json:"partner_profile,omitempty"`
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
