package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/models"
)

// MemoryStore keeps every table in process memory. It backs STORE_DRIVER=memory
// and the test suites. A transaction holds the store lock for its whole
// duration and works on a copy of the tables that replaces the live copy only
// on success, so concurrent transactions are serialized.
type MemoryStore struct {
	shared *memShared
	tx     *memData
}

type memShared struct {
	mu   sync.Mutex
	data *memData
	now  func() time.Time
}

type memData struct {
	seq           int64
	order         map[uuid.UUID]int64
	users         map[uuid.UUID]models.User
	partners      map[uuid.UUID]models.PartnerProfile
	projects      map[uuid.UUID]models.Project
	proposals     map[uuid.UUID]models.Proposal
	contracts     map[uuid.UUID]models.Contract
	reviews       map[uuid.UUID]models.Review
	notifications map[uuid.UUID]models.Notification
	messages      map[uuid.UUID]models.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{shared: &memShared{
		data: &memData{
			order:         map[uuid.UUID]int64{},
			users:         map[uuid.UUID]models.User{},
			partners:      map[uuid.UUID]models.PartnerProfile{},
			projects:      map[uuid.UUID]models.Project{},
			proposals:     map[uuid.UUID]models.Proposal{},
			contracts:     map[uuid.UUID]models.Contract{},
			reviews:       map[uuid.UUID]models.Review{},
			notifications: map[uuid.UUID]models.Notification{},
			messages:      map[uuid.UUID]models.Message{},
		},
		now: time.Now,
	}}
}

func cloneMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *memData) clone() *memData {
	return &memData{
		seq:           d.seq,
		order:         cloneMap(d.order),
		users:         cloneMap(d.users),
		partners:      cloneMap(d.partners),
		projects:      cloneMap(d.projects),
		proposals:     cloneMap(d.proposals),
		contracts:     cloneMap(d.contracts),
		reviews:       cloneMap(d.reviews),
		notifications: cloneMap(d.notifications),
		messages:      cloneMap(d.messages),
	}
}

// track assigns an id when missing and records insertion order.
func (d *memData) track(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	d.seq++
	d.order[*id] = d.seq
}

func (s *MemoryStore) begin() (*memData, func()) {
	if s.tx != nil {
		return s.tx, func() {}
	}
	s.shared.mu.Lock()
	return s.shared.data, s.shared.mu.Unlock
}

func (s *MemoryStore) now() time.Time { return s.shared.now().UTC() }

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()

	work := s.shared.data.clone()
	if err := fn(&MemoryStore{shared: s.shared, tx: work}); err != nil {
		return err
	}
	s.shared.data = work
	return nil
}

// newestFirst sorts by insertion order, newest first, then applies the page.
func newestFirst[T any](d *memData, items []T, id func(T) uuid.UUID, p Page) ([]T, int64) {
	if items == nil {
		items = []T{}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return d.order[id(items[i])] > d.order[id(items[j])]
	})
	total := int64(len(items))
	if p.Offset > 0 {
		if p.Offset >= len(items) {
			return []T{}, total
		}
		items = items[p.Offset:]
	}
	if p.Limit > 0 && len(items) > p.Limit {
		items = items[:p.Limit]
	}
	return items, total
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// ========= Users =========

func (s *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	d, done := s.begin()
	defer done()
	u, ok := d.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	d, done := s.begin()
	defer done()
	for _, u := range d.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *models.User) error {
	d, done := s.begin()
	defer done()
	for _, existing := range d.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicate
		}
	}
	d.track(&u.ID)
	u.CreatedAt, u.UpdatedAt = s.now(), s.now()
	d.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, u *models.User) error {
	d, done := s.begin()
	defer done()
	if _, ok := d.users[u.ID]; !ok {
		return ErrNotFound
	}
	u.UpdatedAt = s.now()
	d.users[u.ID] = *u
	return nil
}

// ========= Partner profiles =========

func (s *MemoryStore) withUser(d *memData, p models.PartnerProfile) models.PartnerProfile {
	if u, ok := d.users[p.UserID]; ok {
		p.User = &u
	}
	return p
}

func (s *MemoryStore) GetPartnerProfile(ctx context.Context, id uuid.UUID) (*models.PartnerProfile, error) {
	d, done := s.begin()
	defer done()
	p, ok := d.partners[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = s.withUser(d, p)
	return &p, nil
}

func (s *MemoryStore) GetPartnerProfileByUser(ctx context.Context, userID uuid.UUID) (*models.PartnerProfile, error) {
	d, done := s.begin()
	defer done()
	for _, p := range d.partners {
		if p.UserID == userID {
			p = s.withUser(d, p)
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreatePartnerProfile(ctx context.Context, p *models.PartnerProfile) error {
	d, done := s.begin()
	defer done()
	for _, existing := range d.partners {
		if existing.UserID == p.UserID {
			return ErrDuplicate
		}
	}
	d.track(&p.ID)
	p.CreatedAt, p.UpdatedAt = s.now(), s.now()
	stored := *p
	stored.User = nil
	d.partners[p.ID] = stored
	return nil
}

func (s *MemoryStore) UpdatePartnerProfile(ctx context.Context, p *models.PartnerProfile) error {
	d, done := s.begin()
	defer done()
	if _, ok := d.partners[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = s.now()
	stored := *p
	stored.User = nil
	d.partners[p.ID] = stored
	return nil
}

func (s *MemoryStore) ListPartnerProfiles(ctx context.Context, f PartnerFilter) ([]models.PartnerProfile, int64, error) {
	d, done := s.begin()
	defer done()
	var out []models.PartnerProfile
	for _, p := range d.partners {
		if f.Search != "" && !containsFold(p.Bio, f.Search) {
			continue
		}
		if f.Available != nil && p.Available != *f.Available {
			continue
		}
		if f.ExperienceMin != nil && (p.ExperienceYears == nil || *p.ExperienceYears < *f.ExperienceMin) {
			continue
		}
		if f.HourlyRateMax != nil && (p.HourlyRate == nil || *p.HourlyRate > *f.HourlyRateMax) {
			continue
		}
		out = append(out, s.withUser(d, p))
	}
	items, total := newestFirst(d, out, func(p models.PartnerProfile) uuid.UUID { return p.ID }, f.Page)
	return items, total, nil
}

// ========= Projects =========

func (s *MemoryStore) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	d, done := s.begin()
	defer done()
	p, ok := d.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// GetProjectForUpdate needs no extra lock: transactions already run one at a time.
func (s *MemoryStore) GetProjectForUpdate(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.GetProject(ctx, id)
}

func (s *MemoryStore) ListProjects(ctx context.Context, f ProjectFilter) ([]models.Project, int64, error) {
	d, done := s.begin()
	defer done()
	var out []models.Project
	for _, p := range d.projects {
		if f.ClientID != nil && p.ClientID != *f.ClientID {
			continue
		}
		if len(f.Statuses) > 0 && !containsProjectStatus(f.Statuses, p.Status) {
			continue
		}
		if f.ProjectType != "" && p.ProjectType != f.ProjectType {
			continue
		}
		if f.Search != "" && !containsFold(p.Title, f.Search) && !containsFold(p.Description, f.Search) {
			continue
		}
		if f.BudgetMaxMin != nil && (p.BudgetMax == nil || *p.BudgetMax < *f.BudgetMaxMin) {
			continue
		}
		if f.BudgetMaxMax != nil && (p.BudgetMax == nil || *p.BudgetMax > *f.BudgetMaxMax) {
			continue
		}
		out = append(out, p)
	}
	items, total := newestFirst(d, out, func(p models.Project) uuid.UUID { return p.ID }, f.Page)
	return items, total, nil
}

func containsProjectStatus(list []models.ProjectStatus, s models.ProjectStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateProject(ctx context.Context, p *models.Project) error {
	d, done := s.begin()
	defer done()
	d.track(&p.ID)
	p.CreatedAt, p.UpdatedAt = s.now(), s.now()
	d.projects[p.ID] = *p
	return nil
}

func (s *MemoryStore) UpdateProject(ctx context.Context, p *models.Project) error {
	d, done := s.begin()
	defer done()
	if _, ok := d.projects[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = s.now()
	d.projects[p.ID] = *p
	return nil
}

func (s *MemoryStore) DeleteProject(ctx context.Context, id uuid.UUID) error {
	d, done := s.begin()
	defer done()
	if _, ok := d.projects[id]; !ok {
		return ErrNotFound
	}
	for cid, c := range d.contracts {
		if c.ProjectID != id {
			continue
		}
		for rid, r := range d.reviews {
			if r.ContractID == cid {
				delete(d.reviews, rid)
			}
		}
		delete(d.contracts, cid)
	}
	for pid, p := range d.proposals {
		if p.ProjectID == id {
			delete(d.proposals, pid)
		}
	}
	for mid, m := range d.messages {
		if m.ProjectID != nil && *m.ProjectID == id {
			m.ProjectID = nil
			d.messages[mid] = m
		}
	}
	delete(d.projects, id)
	return nil
}

// ========= Proposals =========

func (s *MemoryStore) GetProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	d, done := s.begin()
	defer done()
	p, ok := d.proposals[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) GetProposalForUpdate(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	return s.GetProposal(ctx, id)
}

func (s *MemoryStore) FindLiveProposal(ctx context.Context, projectID, partnerID uuid.UUID) (*models.Proposal, error) {
	d, done := s.begin()
	defer done()
	for _, p := range d.proposals {
		if p.ProjectID == projectID && p.PartnerID == partnerID && p.Status != models.ProposalStatusWithdrawn {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListProposals(ctx context.Context, f ProposalFilter) ([]models.Proposal, int64, error) {
	d, done := s.begin()
	defer done()
	var out []models.Proposal
	for _, p := range d.proposals {
		if f.ProjectID != nil && p.ProjectID != *f.ProjectID {
			continue
		}
		if f.PartnerID != nil && p.PartnerID != *f.PartnerID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if partner, ok := d.partners[p.PartnerID]; ok {
			partner = s.withUser(d, partner)
			p.PartnerProfile = &partner
		}
		if project, ok := d.projects[p.ProjectID]; ok {
			p.Project = &project
		}
		out = append(out, p)
	}
	items, total := newestFirst(d, out, func(p models.Proposal) uuid.UUID { return p.ID }, f.Page)
	return items, total, nil
}

func (s *MemoryStore) CreateProposal(ctx context.Context, p *models.Proposal) error {
	d, done := s.begin()
	defer done()
	if p.Status != models.ProposalStatusWithdrawn {
		for _, existing := range d.proposals {
			if existing.ProjectID == p.ProjectID && existing.PartnerID == p.PartnerID &&
				existing.Status != models.ProposalStatusWithdrawn {
				return ErrDuplicate
			}
		}
	}
	d.track(&p.ID)
	p.CreatedAt, p.UpdatedAt = s.now(), s.now()
	d.proposals[p.ID] = stripProposal(*p)
	return nil
}

func (s *MemoryStore) UpdateProposal(ctx context.Context, p *models.Proposal) error {
	d, done := s.begin()
	defer done()
	if _, ok := d.proposals[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = s.now()
	d.proposals[p.ID] = stripProposal(*p)
	return nil
}

func stripProposal(p models.Proposal) models.Proposal {
	p.Project = nil
	p.PartnerProfile = nil
	return p
}

func (s *MemoryStore) RejectPendingProposals(ctx context.Context, projectID uuid.UUID, except *uuid.UUID) ([]models.Proposal, error) {
	d, done := s.begin()
	defer done()
	var changed []models.Proposal
	for id, p := range d.proposals {
		if p.ProjectID != projectID || p.Status != models.ProposalStatusPending {
			continue
		}
		if except != nil && id == *except {
			continue
		}
		p.Status = models.ProposalStatusRejected
		p.UpdatedAt = s.now()
		d.proposals[id] = p
		changed = append(changed, p)
	}
	sort.Slice(changed, func(i, j int) bool { return d.order[changed[i].ID] < d.order[changed[j].ID] })
	return changed, nil
}

// ========= Contracts =========

func (s *MemoryStore) GetContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	d, done := s.begin()
	defer done()
	c, ok := d.contracts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) GetContractForUpdate(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return s.GetContract(ctx, id)
}

func (s *MemoryStore) ListContracts(ctx context.Context, f ContractFilter) ([]models.Contract, int64, error) {
	d, done := s.begin()
	defer done()
	var out []models.Contract
	for _, c := range d.contracts {
		project, hasProject := d.projects[c.ProjectID]
		if f.ClientID != nil && (!hasProject || project.ClientID != *f.ClientID) {
			continue
		}
		if f.PartnerID != nil && c.PartnerID != *f.PartnerID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if hasProject {
			c.Project = &project
		}
		out = append(out, c)
	}
	items, total := newestFirst(d, out, func(c models.Contract) uuid.UUID { return c.ID }, f.Page)
	return items, total, nil
}

func (s *MemoryStore) CreateContract(ctx context.Context, c *models.Contract) error {
	d, done := s.begin()
	defer done()
	d.track(&c.ID)
	c.CreatedAt, c.UpdatedAt = s.now(), s.now()
	d.contracts[c.ID] = stripContract(*c)
	return nil
}

func (s *MemoryStore) UpdateContract(ctx context.Context, c *models.Contract) error {
	d, done := s.begin()
	defer done()
	if _, ok := d.contracts[c.ID]; !ok {
		return ErrNotFound
	}
	c.UpdatedAt = s.now()
	d.contracts[c.ID] = stripContract(*c)
	return nil
}

func stripContract(c models.Contract) models.Contract {
	c.Project = nil
	c.PartnerProfile = nil
	c.Proposal = nil
	return c
}

// ========= Reviews =========

func (s *MemoryStore) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	d, done := s.begin()
	defer done()
	r, ok := d.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) FindReview(ctx context.Context, contractID, reviewerID uuid.UUID) (*models.Review, error) {
	d, done := s.begin()
	defer done()
	for _, r := range d.reviews {
		if r.ContractID == contractID && r.ReviewerID == reviewerID {
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListReviews(ctx context.Context, f ReviewFilter) ([]models.Review, int64, error) {
	d, done := s.begin()
	defer done()
	var out []models.Review
	for _, r := range d.reviews {
		if f.ContractID != nil && r.ContractID != *f.ContractID {
			continue
		}
		if f.RevieweeID != nil && r.RevieweeID != *f.RevieweeID {
			continue
		}
		if u, ok := d.users[r.ReviewerID]; ok {
			r.Reviewer = &u
		}
		out = append(out, r)
	}
	items, total := newestFirst(d, out, func(r models.Review) uuid.UUID { return r.ID }, f.Page)
	return items, total, nil
}

func (s *MemoryStore) CreateReview(ctx context.Context, r *models.Review) error {
	d, done := s.begin()
	defer done()
	for _, existing := range d.reviews {
		if existing.ContractID == r.ContractID && existing.ReviewerID == r.ReviewerID {
			return ErrDuplicate
		}
	}
	d.track(&r.ID)
	r.CreatedAt, r.UpdatedAt = s.now(), s.now()
	stored := *r
	stored.Contract, stored.Reviewer = nil, nil
	d.reviews[r.ID] = stored
	return nil
}

func (s *MemoryStore) UpdateReview(ctx context.Context, r *models.Review) error {
	d, done := s.begin()
	defer done()
	if _, ok := d.reviews[r.ID]; !ok {
		return ErrNotFound
	}
	r.UpdatedAt = s.now()
	stored := *r
	stored.Contract, stored.Reviewer = nil, nil
	d.reviews[r.ID] = stored
	return nil
}

func (s *MemoryStore) DeleteReview(ctx context.Context, id uuid.UUID) error {
	d, done := s.begin()
	defer done()
	if _, ok := d.reviews[id]; !ok {
		return ErrNotFound
	}
	delete(d.reviews, id)
	return nil
}

func (s *MemoryStore) ReviewStats(ctx context.Context, revieweeID uuid.UUID) (float64, int64, error) {
	d, done := s.begin()
	defer done()
	var sum, count int64
	for _, r := range d.reviews {
		if r.RevieweeID == revieweeID {
			sum += int64(r.Rating)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

// ========= Notifications =========

func (s *MemoryStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	d, done := s.begin()
	defer done()
	d.track(&n.ID)
	n.CreatedAt = s.now()
	d.notifications[n.ID] = *n
	return nil
}

func (s *MemoryStore) ListNotifications(ctx context.Context, f NotificationFilter) ([]models.Notification, int64, error) {
	d, done := s.begin()
	defer done()
	var out []models.Notification
	for _, n := range d.notifications {
		if n.UserID != f.UserID {
			continue
		}
		if f.IsRead != nil && n.IsRead != *f.IsRead {
			continue
		}
		out = append(out, n)
	}
	items, total := newestFirst(d, out, func(n models.Notification) uuid.UUID { return n.ID }, f.Page)
	return items, total, nil
}

func (s *MemoryStore) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	d, done := s.begin()
	defer done()
	var count int64
	for _, n := range d.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) MarkNotificationRead(ctx context.Context, userID, id uuid.UUID) error {
	d, done := s.begin()
	defer done()
	n, ok := d.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	n.IsRead = true
	d.notifications[id] = n
	return nil
}

func (s *MemoryStore) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	d, done := s.begin()
	defer done()
	var changed int64
	for id, n := range d.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			d.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (s *MemoryStore) DeleteNotification(ctx context.Context, userID, id uuid.UUID) error {
	d, done := s.begin()
	defer done()
	n, ok := d.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	delete(d.notifications, id)
	return nil
}

func (s *MemoryStore) DeleteNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	d, done := s.begin()
	defer done()
	var removed int64
	for id, n := range d.notifications {
		if n.UserID == userID {
			delete(d.notifications, id)
			removed++
		}
	}
	return removed, nil
}

// ========= Messages =========

func (s *MemoryStore) withParties(d *memData, m models.Message) models.Message {
	if u, ok := d.users[m.SenderID]; ok {
		m.Sender = &u
	}
	if u, ok := d.users[m.ReceiverID]; ok {
		m.Receiver = &u
	}
	return m
}

func (s *MemoryStore) CreateMessage(ctx context.Context, m *models.Message) error {
	d, done := s.begin()
	defer done()
	d.track(&m.ID)
	m.CreatedAt = s.now()
	stored := *m
	stored.Sender, stored.Receiver = nil, nil
	d.messages[m.ID] = stored
	return nil
}

func (s *MemoryStore) ListMessages(ctx context.Context, f MessageFilter) ([]models.Message, int64, error) {
	d, done := s.begin()
	defer done()
	var out []models.Message
	for _, m := range d.messages {
		if m.SenderID != f.UserID && m.ReceiverID != f.UserID {
			continue
		}
		if f.WithUserID != nil && m.Counterpart(f.UserID) != *f.WithUserID {
			continue
		}
		if f.ProjectID != nil && (m.ProjectID == nil || *m.ProjectID != *f.ProjectID) {
			continue
		}
		out = append(out, s.withParties(d, m))
	}
	items, total := newestFirst(d, out, func(m models.Message) uuid.UUID { return m.ID }, f.Page)
	return items, total, nil
}

func (s *MemoryStore) ListConversations(ctx context.Context, userID uuid.UUID) ([]Conversation, error) {
	d, done := s.begin()
	defer done()
	var mine []models.Message
	for _, m := range d.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			mine = append(mine, m)
		}
	}
	mine, _ = newestFirst(d, mine, func(m models.Message) uuid.UUID { return m.ID }, Page{})

	out := []Conversation{}
	index := map[uuid.UUID]int{}
	for _, m := range mine {
		other := m.Counterpart(userID)
		i, seen := index[other]
		if !seen {
			conv := Conversation{UserID: other, LastMessage: s.withParties(d, m)}
			if u, ok := d.users[other]; ok {
				conv.User = &u
			}
			index[other] = len(out)
			out = append(out, conv)
			i = len(out) - 1
		}
		if m.ReceiverID == userID && !m.IsRead {
			out[i].UnreadCount++
		}
	}
	return out, nil
}

func (s *MemoryStore) CountUnreadMessages(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	d, done := s.begin()
	defer done()
	var count int64
	for _, m := range d.messages {
		if m.ReceiverID == receiverID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) MarkMessageRead(ctx context.Context, receiverID, id uuid.UUID) (*models.Message, error) {
	d, done := s.begin()
	defer done()
	m, ok := d.messages[id]
	if !ok || m.ReceiverID != receiverID {
		return nil, ErrNotFound
	}
	if !m.IsRead {
		now := s.now()
		m.IsRead, m.ReadAt = true, &now
		d.messages[id] = m
	}
	return &m, nil
}

func (s *MemoryStore) MarkConversationRead(ctx context.Context, receiverID, senderID uuid.UUID) (int64, error) {
	d, done := s.begin()
	defer done()
	var changed int64
	now := s.now()
	for id, m := range d.messages {
		if m.ReceiverID == receiverID && m.SenderID == senderID && !m.IsRead {
			m.IsRead, m.ReadAt = true, &now
			d.messages[id] = m
			changed++
		}
	}
	return changed, nil
}
