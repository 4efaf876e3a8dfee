// Package store is the persistence boundary of the marketplace. Every
// operation the workflow engine needs is expressed here as a typed method;
// multi-record changes go through Transaction.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Page is a limit/offset window. Limit <= 0 means no limit.
type Page struct {
	Limit  int
	Offset int
}

// NewPage converts a 1-based page number into a window.
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return Page{Limit: limit, Offset: (page - 1) * limit}
}

type ProjectFilter struct {
	ClientID     *uuid.UUID
	Statuses     []models.ProjectStatus
	ProjectType  models.ProjectType
	Search       string
	BudgetMaxMin *float64
	BudgetMaxMax *float64
	Page
}

type ProposalFilter struct {
	ProjectID *uuid.UUID
	PartnerID *uuid.UUID
	Status    models.ProposalStatus
	Page
}

type ContractFilter struct {
	ClientID  *uuid.UUID // owner of the contract's project
	PartnerID *uuid.UUID
	Status    models.ContractStatus
	Page
}

type ReviewFilter struct {
	ContractID *uuid.UUID
	RevieweeID *uuid.UUID
	Page
}

type PartnerFilter struct {
	Search        string
	Available     *bool
	ExperienceMin *int
	HourlyRateMax *float64
	Page
}

type NotificationFilter struct {
	UserID uuid.UUID
	IsRead *bool
	Page
}

// MessageFilter lists the messages UserID sent or received. WithUserID narrows
// it to the thread with one counterpart.
type MessageFilter struct {
	UserID     uuid.UUID
	WithUserID *uuid.UUID
	ProjectID  *uuid.UUID
	Page
}

// Conversation is one counterpart of a user with the newest message exchanged
// and the number of unread messages they sent.
type Conversation struct {
	UserID      uuid.UUID      `json:"user_id"`
	User        *models.User   `json:"user,omitempty"`
	LastMessage models.Message `json:"last_message"`
	UnreadCount int64          `json:"unread_count"`
}

type Users interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
}

type PartnerProfiles interface {
	GetPartnerProfile(ctx context.Context, id uuid.UUID) (*models.PartnerProfile, error)
	GetPartnerProfileByUser(ctx context.Context, userID uuid.UUID) (*models.PartnerProfile, error)
	CreatePartnerProfile(ctx context.Context, p *models.PartnerProfile) error
	UpdatePartnerProfile(ctx context.Context, p *models.PartnerProfile) error
	ListPartnerProfiles(ctx context.Context, f PartnerFilter) ([]models.PartnerProfile, int64, error)
}

type Projects interface {
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	// GetProjectForUpdate locks the row until the surrounding transaction ends.
	GetProjectForUpdate(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, f ProjectFilter) ([]models.Project, int64, error)
	CreateProject(ctx context.Context, p *models.Project) error
	UpdateProject(ctx context.Context, p *models.Project) error
	// DeleteProject removes the project with its proposals, contracts and
	// reviews. Messages about it lose their project reference.
	DeleteProject(ctx context.Context, id uuid.UUID) error
}

type Proposals interface {
	GetProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	GetProposalForUpdate(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	// FindLiveProposal returns the non-withdrawn proposal of partnerID on projectID.
	FindLiveProposal(ctx context.Context, projectID, partnerID uuid.UUID) (*models.Proposal, error)
	ListProposals(ctx context.Context, f ProposalFilter) ([]models.Proposal, int64, error)
	CreateProposal(ctx context.Context, p *models.Proposal) error
	UpdateProposal(ctx context.Context, p *models.Proposal) error
	// RejectPendingProposals flips every pending proposal of the project except
	// the given one and returns the rows it changed.
	RejectPendingProposals(ctx context.Context, projectID uuid.UUID, except *uuid.UUID) ([]models.Proposal, error)
}

type Contracts interface {
	GetContract(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	GetContractForUpdate(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	ListContracts(ctx context.Context, f ContractFilter) ([]models.Contract, int64, error)
	CreateContract(ctx context.Context, c *models.Contract) error
	UpdateContract(ctx context.Context, c *models.Contract) error
}

type Reviews interface {
	GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error)
	FindReview(ctx context.Context, contractID, reviewerID uuid.UUID) (*models.Review, error)
	ListReviews(ctx context.Context, f ReviewFilter) ([]models.Review, int64, error)
	CreateReview(ctx context.Context, r *models.Review) error
	UpdateReview(ctx context.Context, r *models.Review) error
	DeleteReview(ctx context.Context, id uuid.UUID) error
	// ReviewStats returns the average rating and review count of a reviewee.
	ReviewStats(ctx context.Context, revieweeID uuid.UUID) (float64, int64, error)
}

type Notifications interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, f NotificationFilter) ([]models.Notification, int64, error)
	CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkNotificationRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteNotification(ctx context.Context, userID, id uuid.UUID) error
	DeleteNotifications(ctx context.Context, userID uuid.UUID) (int64, error)
}

type Messages interface {
	CreateMessage(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context, f MessageFilter) ([]models.Message, int64, error)
	// ListConversations is ordered by the newest message, newest first.
	ListConversations(ctx context.Context, userID uuid.UUID) ([]Conversation, error)
	CountUnreadMessages(ctx context.Context, receiverID uuid.UUID) (int64, error)
	// MarkMessageRead only matches messages addressed to receiverID.
	MarkMessageRead(ctx context.Context, receiverID, id uuid.UUID) (*models.Message, error)
	MarkConversationRead(ctx context.Context, receiverID, senderID uuid.UUID) (int64, error)
}

type Store interface {
	Users
	PartnerProfiles
	Projects
	Proposals
	Contracts
	Reviews
	Notifications
	Messages

	// Transaction runs fn against a transactional view of the store. Writes
	// issued through tx are applied all together when fn returns nil and
	// discarded otherwise. Nested calls join the outer transaction.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
