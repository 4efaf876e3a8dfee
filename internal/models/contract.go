// internal/models/contract.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContractStatus string

const (
	ContractStatusActive     ContractStatus = "active"
	ContractStatusCompleted  ContractStatus = "completed"
	ContractStatusTerminated ContractStatus = "terminated"
)

var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractStatusActive: {ContractStatusCompleted, ContractStatusTerminated},
}

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractStatusActive, ContractStatusCompleted, ContractStatusTerminated:
		return true
	}
	return false
}

func (s ContractStatus) CanTransitionTo(next ContractStatus) bool {
	return containsStatus(contractTransitions[s], next)
}

type Contract struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"project_id"`
	PartnerID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"partner_id"`
	ProposalID *uuid.UUID `gorm:"type:uuid;index" json:"proposal_id,omitempty"`

	AgreedRate float64 `gorm:"not null" json:"agreed_rate"`
	Terms      string  `gorm:"type:text" json:"terms"`

	Status    ContractStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	StartDate time.Time      `json:"start_date"`
	EndDate   *time.Time     `json:"end_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Project        *Project        `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	PartnerProfile *PartnerProfile `gorm:"foreignKey:PartnerID" json:"partner_profile,omitempty"`
	Proposal       *Proposal       `gorm:"foreignKey:ProposalID" json:"proposal,omitempty"`
}

func (c *Contract) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
