package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
)

// GormStore is the Postgres-backed Store.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "unique constraint")
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func first[T any](q *gorm.DB, id uuid.UUID) (*T, error) {
	var out T
	if err := q.First(&out, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func forUpdate(q *gorm.DB) *gorm.DB {
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}

func paged(q *gorm.DB, p Page) *gorm.DB {
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	return q
}

func listWithCount[T any](q *gorm.DB, p Page) ([]T, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []T{}
	if err := paged(q, p).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *GormStore) save(ctx context.Context, v any) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Save(v).Error)
}

func (s *GormStore) create(ctx context.Context, v any) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(v).Error)
}

// ========= Users =========

func (s *GormStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return first[models.User](s.conn(ctx), id)
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error { return s.create(ctx, u) }

func (s *GormStore) UpdateUser(ctx context.Context, u *models.User) error { return s.save(ctx, u) }

// ========= Partner profiles =========

func (s *GormStore) GetPartnerProfile(ctx context.Context, id uuid.UUID) (*models.PartnerProfile, error) {
	return first[models.PartnerProfile](s.conn(ctx).Preload("User"), id)
}

func (s *GormStore) GetPartnerProfileByUser(ctx context.Context, userID uuid.UUID) (*models.PartnerProfile, error) {
	var p models.PartnerProfile
	if err := s.conn(ctx).Preload("User").Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) CreatePartnerProfile(ctx context.Context, p *models.PartnerProfile) error {
	return s.create(ctx, p)
}

func (s *GormStore) UpdatePartnerProfile(ctx context.Context, p *models.PartnerProfile) error {
	return s.save(ctx, p)
}

func (s *GormStore) ListPartnerProfiles(ctx context.Context, f PartnerFilter) ([]models.PartnerProfile, int64, error) {
	q := s.conn(ctx).Model(&models.PartnerProfile{})
	if f.Search != "" {
		q = q.Where("bio ILIKE ?", "%"+f.Search+"%")
	}
	if f.Available != nil {
		q = q.Where("available = ?", *f.Available)
	}
	if f.ExperienceMin != nil {
		q = q.Where("experience_years >= ?", *f.ExperienceMin)
	}
	if f.HourlyRateMax != nil {
		q = q.Where("hourly_rate <= ?", *f.HourlyRateMax)
	}
	return listWithCount[models.PartnerProfile](q.Preload("User"), f.Page)
}

// ========= Projects =========

func (s *GormStore) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return first[models.Project](s.conn(ctx), id)
}

func (s *GormStore) GetProjectForUpdate(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return first[models.Project](forUpdate(s.conn(ctx)), id)
}

func (s *GormStore) ListProjects(ctx context.Context, f ProjectFilter) ([]models.Project, int64, error) {
	q := s.conn(ctx).Model(&models.Project{})
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.ProjectType != "" {
		q = q.Where("project_type = ?", f.ProjectType)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("(title ILIKE ? OR description ILIKE ?)", like, like)
	}
	if f.BudgetMaxMin != nil {
		q = q.Where("budget_max >= ?", *f.BudgetMaxMin)
	}
	if f.BudgetMaxMax != nil {
		q = q.Where("budget_max <= ?", *f.BudgetMaxMax)
	}
	return listWithCount[models.Project](q, f.Page)
}

func (s *GormStore) CreateProject(ctx context.Context, p *models.Project) error { return s.create(ctx, p) }

func (s *GormStore) UpdateProject(ctx context.Context, p *models.Project) error { return s.save(ctx, p) }

func (s *GormStore) DeleteProject(ctx context.Context, id uuid.UUID) error {
	db := s.conn(ctx)
	contractIDs := db.Model(&models.Contract{}).Select("id").Where("project_id = ?", id)
	if err := db.Where("contract_id IN (?)", contractIDs).Delete(&models.Review{}).Error; err != nil {
		return translate(err)
	}
	if err := db.Where("project_id = ?", id).Delete(&models.Contract{}).Error; err != nil {
		return translate(err)
	}
	if err := db.Where("project_id = ?", id).Delete(&models.Proposal{}).Error; err != nil {
		return translate(err)
	}
	if err := db.Model(&models.Message{}).Where("project_id = ?", id).Update("project_id", nil).Error; err != nil {
		return translate(err)
	}
	res := db.Delete(&models.Project{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ========= Proposals =========

func (s *GormStore) GetProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	return first[models.Proposal](s.conn(ctx), id)
}

func (s *GormStore) GetProposalForUpdate(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	return first[models.Proposal](forUpdate(s.conn(ctx)), id)
}

func (s *GormStore) FindLiveProposal(ctx context.Context, projectID, partnerID uuid.UUID) (*models.Proposal, error) {
	var p models.Proposal
	err := s.conn(ctx).
		Where("project_id = ? AND partner_id = ? AND status <> ?", projectID, partnerID, models.ProposalStatusWithdrawn).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) ListProposals(ctx context.Context, f ProposalFilter) ([]models.Proposal, int64, error) {
	q := s.conn(ctx).Model(&models.Proposal{})
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.PartnerID != nil {
		q = q.Where("partner_id = ?", *f.PartnerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return listWithCount[models.Proposal](q.Preload("Project").Preload("PartnerProfile.User"), f.Page)
}

func (s *GormStore) CreateProposal(ctx context.Context, p *models.Proposal) error {
	return s.create(ctx, p)
}

func (s *GormStore) UpdateProposal(ctx context.Context, p *models.Proposal) error {
	return s.save(ctx, p)
}

func (s *GormStore) RejectPendingProposals(ctx context.Context, projectID uuid.UUID, except *uuid.UUID) ([]models.Proposal, error) {
	q := s.conn(ctx).Where("project_id = ? AND status = ?", projectID, models.ProposalStatusPending)
	if except != nil {
		q = q.Where("id <> ?", *except)
	}
	var pending []models.Proposal
	if err := forUpdate(q).Order("created_at ASC").Find(&pending).Error; err != nil {
		return nil, translate(err)
	}
	if len(pending) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(pending))
	for i := range pending {
		ids = append(ids, pending[i].ID)
		pending[i].Status = models.ProposalStatusRejected
	}
	err := s.conn(ctx).Model(&models.Proposal{}).
		Where("id IN ?", ids).
		Update("status", models.ProposalStatusRejected).Error
	if err != nil {
		return nil, translate(err)
	}
	return pending, nil
}

// ========= Contracts =========

func (s *GormStore) GetContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return first[models.Contract](s.conn(ctx), id)
}

func (s *GormStore) GetContractForUpdate(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return first[models.Contract](forUpdate(s.conn(ctx)), id)
}

func (s *GormStore) ListContracts(ctx context.Context, f ContractFilter) ([]models.Contract, int64, error) {
	q := s.conn(ctx).Model(&models.Contract{})
	if f.ClientID != nil {
		q = q.Where("project_id IN (?)",
			s.conn(ctx).Model(&models.Project{}).Select("id").Where("client_id = ?", *f.ClientID))
	}
	if f.PartnerID != nil {
		q = q.Where("partner_id = ?", *f.PartnerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return listWithCount[models.Contract](q.Preload("Project"), f.Page)
}

func (s *GormStore) CreateContract(ctx context.Context, c *models.Contract) error {
	return s.create(ctx, c)
}

func (s *GormStore) UpdateContract(ctx context.Context, c *models.Contract) error {
	return s.save(ctx, c)
}

// ========= Reviews =========

func (s *GormStore) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	return first[models.Review](s.conn(ctx), id)
}

func (s *GormStore) FindReview(ctx context.Context, contractID, reviewerID uuid.UUID) (*models.Review, error) {
	var r models.Review
	err := s.conn(ctx).Where("contract_id = ? AND reviewer_id = ?", contractID, reviewerID).First(&r).Error
	if err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *GormStore) ListReviews(ctx context.Context, f ReviewFilter) ([]models.Review, int64, error) {
	q := s.conn(ctx).Model(&models.Review{})
	if f.ContractID != nil {
		q = q.Where("contract_id = ?", *f.ContractID)
	}
	if f.RevieweeID != nil {
		q = q.Where("reviewee_id = ?", *f.RevieweeID)
	}
	return listWithCount[models.Review](q.Preload("Reviewer"), f.Page)
}

func (s *GormStore) CreateReview(ctx context.Context, r *models.Review) error { return s.create(ctx, r) }

func (s *GormStore) UpdateReview(ctx context.Context, r *models.Review) error { return s.save(ctx, r) }

func (s *GormStore) DeleteReview(ctx context.Context, id uuid.UUID) error {
	res := s.conn(ctx).Delete(&models.Review{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ReviewStats(ctx context.Context, revieweeID uuid.UUID) (float64, int64, error) {
	var row struct {
		Average float64
		Total   int64
	}
	err := s.conn(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Where("reviewee_id = ?", revieweeID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, translate(err)
	}
	return row.Average, row.Total, nil
}

// ========= Notifications =========

func (s *GormStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	return s.create(ctx, n)
}

func (s *GormStore) ListNotifications(ctx context.Context, f NotificationFilter) ([]models.Notification, int64, error) {
	q := s.conn(ctx).Model(&models.Notification{}).Where("user_id = ?", f.UserID)
	if f.IsRead != nil {
		q = q.Where("is_read = ?", *f.IsRead)
	}
	return listWithCount[models.Notification](q, f.Page)
}

func (s *GormStore) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := s.conn(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&total).Error
	return total, translate(err)
}

func (s *GormStore) MarkNotificationRead(ctx context.Context, userID, id uuid.UUID) error {
	res := s.conn(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.conn(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, translate(res.Error)
}

func (s *GormStore) DeleteNotification(ctx context.Context, userID, id uuid.UUID) error {
	res := s.conn(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.conn(ctx).Where("user_id = ?", userID).Delete(&models.Notification{})
	return res.RowsAffected, translate(res.Error)
}

// ========= Messages =========

func (s *GormStore) CreateMessage(ctx context.Context, m *models.Message) error {
	return s.create(ctx, m)
}

func involving(q *gorm.DB, userID uuid.UUID) *gorm.DB {
	return q.Where("(sender_id = ? OR receiver_id = ?)", userID, userID)
}

func (s *GormStore) ListMessages(ctx context.Context, f MessageFilter) ([]models.Message, int64, error) {
	q := s.conn(ctx).Model(&models.Message{})
	if f.WithUserID != nil {
		q = q.Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))",
			f.UserID, *f.WithUserID, *f.WithUserID, f.UserID)
	} else {
		q = involving(q, f.UserID)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	return listWithCount[models.Message](q.Preload("Sender").Preload("Receiver"), f.Page)
}

func (s *GormStore) ListConversations(ctx context.Context, userID uuid.UUID) ([]Conversation, error) {
	var msgs []models.Message
	err := involving(s.conn(ctx), userID).
		Preload("Sender").Preload("Receiver").
		Order("created_at DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, translate(err)
	}

	var unread []struct {
		SenderID uuid.UUID
		Total    int64
	}
	err = s.conn(ctx).Model(&models.Message{}).
		Select("sender_id, COUNT(*) AS total").
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Group("sender_id").
		Scan(&unread).Error
	if err != nil {
		return nil, translate(err)
	}
	counts := make(map[uuid.UUID]int64, len(unread))
	for _, u := range unread {
		counts[u.SenderID] = u.Total
	}

	out := []Conversation{}
	seen := map[uuid.UUID]bool{}
	for _, m := range msgs {
		other := m.Counterpart(userID)
		if seen[other] {
			continue
		}
		seen[other] = true
		conv := Conversation{UserID: other, LastMessage: m, UnreadCount: counts[other]}
		if m.SenderID == other {
			conv.User = m.Sender
		} else {
			conv.User = m.Receiver
		}
		out = append(out, conv)
	}
	return out, nil
}

func (s *GormStore) CountUnreadMessages(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	var total int64
	err := s.conn(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Count(&total).Error
	return total, translate(err)
}

func (s *GormStore) MarkMessageRead(ctx context.Context, receiverID, id uuid.UUID) (*models.Message, error) {
	var m models.Message
	if err := s.conn(ctx).Where("id = ? AND receiver_id = ?", id, receiverID).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	if m.IsRead {
		return &m, nil
	}
	now := time.Now().UTC()
	err := s.conn(ctx).Model(&models.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
	if err != nil {
		return nil, translate(err)
	}
	m.IsRead, m.ReadAt = true, &now
	return &m, nil
}

func (s *GormStore) MarkConversationRead(ctx context.Context, receiverID, senderID uuid.UUID) (int64, error) {
	res := s.conn(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", receiverID, senderID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now().UTC()})
	return res.RowsAffected, translate(res.Error)
}
