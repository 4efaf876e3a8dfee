package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageMaxLen caps the content of a direct message, in characters.
const MessageMaxLen = 2000

// Message is a direct message between two users, optionally about a project.
type Message struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SenderID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"sender_id"`
	ReceiverID uuid.UUID  `gorm:"type:uuid;index;not null" json:"receiver_id"`
	ProjectID  *uuid.UUID `gorm:"type:uuid;index" json:"project_id,omitempty"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	IsRead     bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	Sender   *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver *User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

// Counterpart returns the other side of the message as seen by userID.
func (m *Message) Counterpart(userID uuid.UUID) uuid.UUID {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}
