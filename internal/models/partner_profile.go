// internal/models/partner_profile.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PartnerProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	Bio             string   `gorm:"type:text" json:"bio"`
	HourlyRate      *float64 `json:"hourly_rate"`
	ExperienceYears *int     `json:"experience_years"`
	Available       bool     `gorm:"not null;default:true" json:"available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (p *PartnerProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
