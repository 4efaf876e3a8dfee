// internal/models/project.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectType string

const (
	ProjectTypeFixed  ProjectType = "fixed"
	ProjectTypeHourly ProjectType = "hourly"
)

func (t ProjectType) Valid() bool {
	return t == ProjectTypeFixed || t == ProjectTypeHourly
}

type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusOpen       ProjectStatus = "open"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// projectTransitions lists every edge of the project lifecycle.
// completed and cancelled are terminal.
var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectStatusDraft:      {ProjectStatusOpen},
	ProjectStatusOpen:       {ProjectStatusInProgress, ProjectStatusCancelled},
	ProjectStatusInProgress: {ProjectStatusCompleted},
}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusOpen, ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

func (s ProjectStatus) CanTransitionTo(next ProjectStatus) bool {
	return containsStatus(projectTransitions[s], next)
}

type Project struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`

	Title         string         `gorm:"type:varchar(200);not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	ProjectType   ProjectType    `gorm:"type:varchar(20);not null" json:"project_type"`
	BudgetMin     *float64       `json:"budget_min"`
	BudgetMax     *float64       `json:"budget_max"`
	DurationWeeks *int           `json:"duration_weeks"`
	Skills        datatypes.JSON `json:"skills"` // ["go", "postgres", ...]

	Status ProjectStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client *User `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

func containsStatus[S ~string](list []S, s S) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
