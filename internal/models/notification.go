package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotifProposalReceived NotificationType = "proposal_received"
	NotifProposalAccepted NotificationType = "proposal_accepted"
	NotifProposalRejected NotificationType = "proposal_rejected"
	NotifContractCreated  NotificationType = "contract_created"
	NotifContractUpdated  NotificationType = "contract_status_changed"
	NotifProjectCancelled NotificationType = "project_cancelled"
	NotifReviewReceived   NotificationType = "review_received"
)

type Notification struct {
	ID      uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID  uuid.UUID        `gorm:"type:uuid;index;not null" json:"user_id"`
	Type    NotificationType `gorm:"type:varchar(40);not null" json:"type"`
	Title   string           `gorm:"type:varchar(200)" json:"title"`
	Message string           `gorm:"type:text" json:"message"`
	Link    string           `gorm:"type:text" json:"link,omitempty"`
	IsRead  bool             `gorm:"default:false;index" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
