package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/hackathonone/sentiment-backend/internal/errors"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore implements Store with maps guarded by a single RWMutex.
type MemoryStore struct {
	mu            sync.RWMutex
	customers     map[uuid.UUID]Customer
	products      map[uuid.UUID]Product
	comments      map[uuid.UUID]Comment
	results       map[uuid.UUID]SentimentResult
	notifications map[uuid.UUID]Notification
	now           func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers:     make(map[uuid.UUID]Customer),
		products:      make(map[uuid.UUID]Product),
		comments:      make(map[uuid.UUID]Comment),
		results:       make(map[uuid.UUID]SentimentResult),
		notifications: make(map[uuid.UUID]Notification),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// --- results ---

func (s *MemoryStore) SaveResult(_ context.Context, r SentimentResult) (*SentimentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := s.prepareResult(r)
	s.results[saved.ID] = saved
	return &saved, nil
}

func (s *MemoryStore) prepareResult(r SentimentResult) SentimentResult {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.AnalyzedAt.IsZero() {
		r.AnalyzedAt = s.now()
	}
	return r
}

func (s *MemoryStore) FindResultByID(_ context.Context, id uuid.UUID) (*SentimentResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[id]
	if !ok {
		return nil, apperrors.ErrResultNotFound
	}
	return &r, nil
}

func (s *MemoryStore) FindResults(_ context.Context, filter ResultFilter, limit int) ([]SentimentResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]SentimentResult, 0)
	for _, r := range s.results {
		if s.matchResult(filter, r) {
			list = append(list, r)
		}
	}
	slices.SortFunc(list, func(a, b SentimentResult) int {
		if c := b.AnalyzedAt.Compare(a.AnalyzedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *MemoryStore) Tally(_ context.Context, filter ResultFilter) (Tally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t Tally
	for _, r := range s.results {
		if s.matchResult(filter, r) {
			t.Add(r)
		}
	}
	return t, nil
}

// matchResult must be called with the lock held.
func (s *MemoryStore) matchResult(f ResultFilter, r SentimentResult) bool {
	if f.BatchID != nil && (r.BatchID == nil || *r.BatchID != *f.BatchID) {
		return false
	}
	if f.Sentiment != nil && r.Sentiment != *f.Sentiment {
		return false
	}
	if f.From != nil && r.AnalyzedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && r.AnalyzedAt.After(*f.To) {
		return false
	}
	if f.SellerID != nil {
		if r.CommentID == nil {
			return false
		}
		c, ok := s.comments[*r.CommentID]
		if !ok {
			return false
		}
		if p, ok := s.products[c.ProductID]; !ok || p.SellerID != *f.SellerID {
			return false
		}
	}
	return true
}

// --- customers ---

func (s *MemoryStore) CreateCustomer(_ context.Context, c Customer) (*Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(c.Email, uuid.Nil) {
		return nil, apperrors.ErrEmailAlreadyExists
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	s.customers[c.ID] = c
	return &c, nil
}

func (s *MemoryStore) emailTaken(email string, except uuid.UUID) bool {
	for id, c := range s.customers {
		if c.Email == email && id != except {
			return true
		}
	}
	return false
}

func (s *MemoryStore) FindCustomerByID(_ context.Context, id uuid.UUID) (*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, apperrors.ErrCustomerNotFound
	}
	return &c, nil
}

func (s *MemoryStore) FindCustomerByEmail(_ context.Context, email string) (*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, apperrors.ErrCustomerNotFound
}

func (s *MemoryStore) FindCustomers(_ context.Context, kind *CustomerKind) ([]Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if kind == nil || c.Kind == *kind {
			list = append(list, c)
		}
	}
	slices.SortFunc(list, func(a, b Customer) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID.String(), b.ID.String()))
	})
	return list, nil
}

func (s *MemoryStore) UpdateCustomer(_ context.Context, c Customer) (*Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.customers[c.ID]
	if !ok {
		return nil, apperrors.ErrCustomerNotFound
	}
	if s.emailTaken(c.Email, c.ID) {
		return nil, apperrors.ErrEmailAlreadyExists
	}
	existing.Name = c.Name
	existing.Email = c.Email
	existing.Kind = c.Kind
	s.customers[c.ID] = existing
	return &existing, nil
}

func (s *MemoryStore) DeleteCustomer(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return apperrors.ErrCustomerNotFound
	}
	for _, p := range s.products {
		if p.SellerID == id {
			return apperrors.ErrCustomerInUse
		}
	}
	for _, c := range s.comments {
		if c.BuyerID != nil && *c.BuyerID == id {
			return apperrors.ErrCustomerInUse
		}
	}
	for _, n := range s.notifications {
		if n.SellerID == id {
			return apperrors.ErrCustomerInUse
		}
	}
	delete(s.customers, id)
	return nil
}

// --- products ---

func (s *MemoryStore) CreateProduct(_ context.Context, p Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[p.SellerID]; !ok {
		return nil, apperrors.ErrCustomerNotFound
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.products[p.ID] = p
	return &p, nil
}

func (s *MemoryStore) FindProductByID(_ context.Context, id uuid.UUID) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, apperrors.ErrProductNotFound
	}
	return &p, nil
}

func (s *MemoryStore) FindProducts(_ context.Context, filter ProductFilter) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name := strings.ToLower(filter.Name)
	list := make([]Product, 0)
	for _, p := range s.products {
		if filter.SellerID != nil && p.SellerID != *filter.SellerID {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(p.Name), name) {
			continue
		}
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b Product) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID.String(), b.ID.String()))
	})
	return list, nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, p Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[p.ID]
	if !ok {
		return nil, apperrors.ErrProductNotFound
	}
	if _, ok := s.customers[p.SellerID]; !ok {
		return nil, apperrors.ErrCustomerNotFound
	}
	p.CreatedAt = existing.CreatedAt
	s.products[p.ID] = p
	return &p, nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return apperrors.ErrProductNotFound
	}
	for _, c := range s.comments {
		if c.ProductID == id {
			return apperrors.ErrProductInUse
		}
	}
	delete(s.products, id)
	return nil
}

func (s *MemoryStore) CountProductsBySeller(_ context.Context, sellerID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, p := range s.products {
		if p.SellerID == sellerID {
			n++
		}
	}
	return n, nil
}

// --- comments ---

func (s *MemoryStore) CreateComment(_ context.Context, in NewComment) (*CommentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := in.Comment
	if _, ok := s.products[c.ProductID]; !ok {
		return nil, apperrors.ErrProductNotFound
	}
	if c.BuyerID != nil {
		if _, ok := s.customers[*c.BuyerID]; !ok {
			return nil, apperrors.ErrCustomerNotFound
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}

	r := s.prepareResult(in.Result)
	r.CommentID = &c.ID

	var n Notification
	if in.Notification != nil {
		n = *in.Notification
		if _, ok := s.customers[n.SellerID]; !ok {
			return nil, apperrors.ErrCustomerNotFound
		}
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = s.now()
		}
		n.ResultID = r.ID
	}

	s.comments[c.ID] = c
	s.results[r.ID] = r
	if in.Notification != nil {
		s.notifications[n.ID] = n
	}

	view := s.viewOf(c)
	return &view, nil
}

// viewOf must be called with the lock held.
func (s *MemoryStore) viewOf(c Comment) CommentView {
	v := CommentView{Comment: c}
	if p, ok := s.products[c.ProductID]; ok {
		v.ProductName = p.Name
		v.SellerID = p.SellerID
	}
	if c.BuyerID != nil {
		if b, ok := s.customers[*c.BuyerID]; ok {
			name := b.Name
			v.BuyerName = &name
		}
	}
	for _, r := range s.results {
		if r.CommentID != nil && *r.CommentID == c.ID {
			res := r
			v.Result = &res
			break
		}
	}
	return v
}

func (s *MemoryStore) FindCommentByID(_ context.Context, id uuid.UUID) (*CommentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, apperrors.ErrCommentNotFound
	}
	v := s.viewOf(c)
	return &v, nil
}

func (s *MemoryStore) FindCommentsByProduct(_ context.Context, productID uuid.UUID) ([]CommentView, error) {
	return s.findComments(func(c Comment) bool { return c.ProductID == productID }), nil
}

func (s *MemoryStore) FindCommentsBySeller(_ context.Context, sellerID uuid.UUID) ([]CommentView, error) {
	s.mu.RLock()
	owned := make(map[uuid.UUID]bool)
	for id, p := range s.products {
		if p.SellerID == sellerID {
			owned[id] = true
		}
	}
	s.mu.RUnlock()
	return s.findComments(func(c Comment) bool { return owned[c.ProductID] }), nil
}

func (s *MemoryStore) findComments(match func(Comment) bool) []CommentView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]CommentView, 0)
	for _, c := range s.comments {
		if match(c) {
			list = append(list, s.viewOf(c))
		}
	}
	slices.SortFunc(list, func(a, b CommentView) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return list
}

// --- notifications ---

func (s *MemoryStore) FindNotificationByID(_ context.Context, id uuid.UUID) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, apperrors.ErrNotificationNotFound
	}
	return &n, nil
}

func (s *MemoryStore) FindNotificationsBySeller(_ context.Context, sellerID uuid.UUID, pendingOnly bool) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Notification, 0)
	for _, n := range s.notifications {
		if n.SellerID != sellerID || (pendingOnly && n.Status != StatusPending) {
			continue
		}
		list = append(list, n)
	}
	slices.SortFunc(list, func(a, b Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return list, nil
}

func (s *MemoryStore) CountPendingNotifications(_ context.Context, sellerID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, notif := range s.notifications {
		if notif.SellerID == sellerID && notif.Status == StatusPending {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) MarkNotificationRead(_ context.Context, id uuid.UUID) (*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, apperrors.ErrNotificationNotFound
	}
	n.Status = StatusRead
	s.notifications[id] = n
	return &n, nil
}

func (s *MemoryStore) MarkAllNotificationsRead(_ context.Context, sellerID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var changed int64
	for id, n := range s.notifications {
		if n.SellerID == sellerID && n.Status == StatusPending {
			n.Status = StatusRead
			s.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (s *MemoryStore) MarkNotificationSent(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return apperrors.ErrNotificationNotFound
	}
	n.SentAt = &at
	s.notifications[id] = n
	return nil
}
