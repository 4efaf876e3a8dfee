package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
)

func seedProject(t *testing.T, s *MemoryStore) *models.Project {
	t.Helper()
	p := &models.Project{
		ClientID:    uuid.New(),
		Title:       "Landing page",
		ProjectType: models.ProjectTypeFixed,
		Status:      models.ProjectStatusOpen,
	}
	if err := s.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func TestMemoryTransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := seedProject(t, s)

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx Store) error {
		locked, err := tx.GetProjectForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		locked.Status = models.ProjectStatusInProgress
		if err := tx.UpdateProject(ctx, locked); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := s.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if got.Status != models.ProjectStatusOpen {
		t.Fatalf("status leaked out of a failed transaction: %s", got.Status)
	}
}

func TestMemoryTransactionCommit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := seedProject(t, s)

	err := s.Transaction(ctx, func(tx Store) error {
		locked, err := tx.GetProjectForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		locked.Status = models.ProjectStatusInProgress
		if err := tx.UpdateProject(ctx, locked); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return tx.Transaction(ctx, func(inner Store) error {
			return inner.CreateContract(ctx, &models.Contract{ProjectID: p.ID, PartnerID: uuid.New()})
		})
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	got, _ := s.GetProject(ctx, p.ID)
	if got.Status != models.ProjectStatusInProgress {
		t.Fatalf("expected in_progress, got %s", got.Status)
	}
	contracts, total, _ := s.ListContracts(ctx, ContractFilter{})
	if total != 1 || len(contracts) != 1 {
		t.Fatalf("expected one contract, got %d", total)
	}
}

func TestMemoryLiveProposalUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := seedProject(t, s)
	partnerID := uuid.New()

	first := &models.Proposal{ProjectID: p.ID, PartnerID: partnerID, Status: models.ProposalStatusPending}
	if err := s.CreateProposal(ctx, first); err != nil {
		t.Fatalf("first proposal: %v", err)
	}
	dup := &models.Proposal{ProjectID: p.ID, PartnerID: partnerID, Status: models.ProposalStatusPending}
	if err := s.CreateProposal(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	first.Status = models.ProposalStatusWithdrawn
	if err := s.UpdateProposal(ctx, first); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	again := &models.Proposal{ProjectID: p.ID, PartnerID: partnerID, Status: models.ProposalStatusPending}
	if err := s.CreateProposal(ctx, again); err != nil {
		t.Fatalf("resubmit after withdraw: %v", err)
	}
}

func TestMemoryRejectPendingProposals(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := seedProject(t, s)

	keep := &models.Proposal{ProjectID: p.ID, PartnerID: uuid.New(), Status: models.ProposalStatusPending}
	other := &models.Proposal{ProjectID: p.ID, PartnerID: uuid.New(), Status: models.ProposalStatusPending}
	withdrawn := &models.Proposal{ProjectID: p.ID, PartnerID: uuid.New(), Status: models.ProposalStatusWithdrawn}
	for _, pr := range []*models.Proposal{keep, other, withdrawn} {
		if err := s.CreateProposal(ctx, pr); err != nil {
			t.Fatalf("create proposal: %v", err)
		}
	}

	changed, err := s.RejectPendingProposals(ctx, p.ID, &keep.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if len(changed) != 1 || changed[0].ID != other.ID {
		t.Fatalf("expected only %s rejected, got %+v", other.ID, changed)
	}

	got, _ := s.GetProposal(ctx, keep.ID)
	if got.Status != models.ProposalStatusPending {
		t.Fatalf("excluded proposal changed: %s", got.Status)
	}
	got, _ = s.GetProposal(ctx, withdrawn.ID)
	if got.Status != models.ProposalStatusWithdrawn {
		t.Fatalf("withdrawn proposal changed: %s", got.Status)
	}
}

func TestMemoryDeleteProjectCascades(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := seedProject(t, s)
	keep := seedProject(t, s)

	pr := &models.Proposal{ProjectID: p.ID, PartnerID: uuid.New(), Status: models.ProposalStatusPending}
	_ = s.CreateProposal(ctx, pr)
	c := &models.Contract{ProjectID: p.ID, PartnerID: pr.PartnerID, Status: models.ContractStatusCompleted}
	_ = s.CreateContract(ctx, c)
	r := &models.Review{ContractID: c.ID, ReviewerID: p.ClientID, RevieweeID: uuid.New(), Rating: 5}
	_ = s.CreateReview(ctx, r)
	other := &models.Proposal{ProjectID: keep.ID, PartnerID: uuid.New(), Status: models.ProposalStatusPending}
	_ = s.CreateProposal(ctx, other)

	if err := s.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetProposal(ctx, pr.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("proposal survived: %v", err)
	}
	if _, err := s.GetContract(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("contract survived: %v", err)
	}
	if _, err := s.GetReview(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("review survived: %v", err)
	}
	if _, err := s.GetProposal(ctx, other.ID); err != nil {
		t.Fatalf("unrelated proposal removed: %v", err)
	}
	if err := s.DeleteProject(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMemoryListProjectsFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	clientID := uuid.New()
	for i, title := range []string{"Go API", "Mobile app", "Go worker", "Logo design"} {
		status := models.ProjectStatusOpen
		if i == 3 {
			status = models.ProjectStatusDraft
		}
		_ = s.CreateProject(ctx, &models.Project{
			ClientID:    clientID,
			Title:       title,
			ProjectType: models.ProjectTypeHourly,
			Status:      status,
		})
	}

	items, total, err := s.ListProjects(ctx, ProjectFilter{
		Statuses: []models.ProjectStatus{models.ProjectStatusOpen},
		Search:   "go",
		Page:     NewPage(1, 1),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 matches, got %d", total)
	}
	if len(items) != 1 || items[0].Title != "Go worker" {
		t.Fatalf("expected newest match first, got %+v", items)
	}

	items, _, _ = s.ListProjects(ctx, ProjectFilter{
		Statuses: []models.ProjectStatus{models.ProjectStatusOpen},
		Search:   "go",
		Page:     NewPage(3, 1),
	})
	if len(items) != 0 {
		t.Fatalf("expected empty page, got %d", len(items))
	}
}

func TestMemoryReviewStatsAndUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	reviewee := uuid.New()

	avg, count, err := s.ReviewStats(ctx, reviewee)
	if err != nil || avg != 0 || count != 0 {
		t.Fatalf("empty stats: avg=%v count=%d err=%v", avg, count, err)
	}

	contractID := uuid.New()
	reviewer := uuid.New()
	_ = s.CreateReview(ctx, &models.Review{ContractID: contractID, ReviewerID: reviewer, RevieweeID: reviewee, Rating: 5})
	_ = s.CreateReview(ctx, &models.Review{ContractID: uuid.New(), ReviewerID: uuid.New(), RevieweeID: reviewee, Rating: 4})

	err = s.CreateReview(ctx, &models.Review{ContractID: contractID, ReviewerID: reviewer, RevieweeID: reviewee, Rating: 1})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	avg, count, _ = s.ReviewStats(ctx, reviewee)
	if avg != 4.5 || count != 2 {
		t.Fatalf("expected 4.5 over 2, got %v over %d", avg, count)
	}
}

func TestMemoryNotificationsScopedToOwner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	owner, stranger := uuid.New(), uuid.New()

	n := &models.Notification{UserID: owner, Type: models.NotifProposalReceived, Title: "New proposal"}
	_ = s.CreateNotification(ctx, n)
	_ = s.CreateNotification(ctx, &models.Notification{UserID: owner, Type: models.NotifContractCreated})

	if err := s.MarkNotificationRead(ctx, stranger, n.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stranger marked someone else's notification: %v", err)
	}
	if err := s.MarkNotificationRead(ctx, owner, n.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	unread, _ := s.CountUnreadNotifications(ctx, owner)
	if unread != 1 {
		t.Fatalf("expected 1 unread, got %d", unread)
	}
	changed, _ := s.MarkAllNotificationsRead(ctx, owner)
	if changed != 1 {
		t.Fatalf("expected 1 changed, got %d", changed)
	}
	deleted, _ := s.DeleteNotifications(ctx, owner)
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}
}
