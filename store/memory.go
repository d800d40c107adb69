package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bizmarket/models"
)

// MemoryStore keeps everything in process memory. It backs the service and
// handler tests and mirrors the conditional semantics of GormStore: every
// check-and-write happens under one lock.
type MemoryStore struct {
	mu sync.RWMutex

	listings      map[uint]*models.Listing
	leads         map[uint]*models.Lead
	subscriptions map[uint]*models.Subscription
	users         map[uint]*models.User
	valuations    map[uint]*models.Valuation

	nextID uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		listings:      make(map[uint]*models.Listing),
		leads:         make(map[uint]*models.Lead),
		subscriptions: make(map[uint]*models.Subscription),
		users:         make(map[uint]*models.User),
		valuations:    make(map[uint]*models.Valuation),
	}
}

var _ Store = (*MemoryStore)(nil)

// stamp assigns an id unless one is set and fills unset timestamps. Callers
// hold the write lock.
func (s *MemoryStore) stamp(id *uint, createdAt, updatedAt *time.Time) {
	if *id == 0 {
		s.nextID++
		*id = s.nextID
	} else if *id > s.nextID {
		s.nextID = *id
	}
	now := time.Now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
}

// Listings

func (s *MemoryStore) CreateListing(_ context.Context, listing *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&listing.ID, &listing.CreatedAt, &listing.UpdatedAt)
	if listing.Tier == "" {
		listing.Tier = models.TierBasic
	}
	if listing.Status == "" {
		listing.Status = models.ListingPending
	}
	cp := *listing
	s.listings[cp.ID] = &cp
	return nil
}

func (s *MemoryStore) FindListing(_ context.Context, id uint) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *MemoryStore) SearchListings(_ context.Context, f ListingFilter) ([]models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	location := strings.ToLower(f.Location)
	term := strings.ToLower(f.SearchTerm)

	out := []models.Listing{}
	for _, l := range s.listings {
		if l.Status != models.ListingActive {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(l.Region), location) {
			continue
		}
		if f.Industry != "" && l.Industry != f.Industry {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(l.Title), term) &&
			!strings.Contains(strings.ToLower(l.Industry), term) {
			continue
		}
		if f.PriceMin != nil && l.Price.LessThan(*f.PriceMin) {
			continue
		}
		if f.PriceMax != nil && l.Price.GreaterThan(*f.PriceMax) {
			continue
		}
		if f.NetProfitMin != nil && (!l.NetProfit.Valid || l.NetProfit.Decimal.LessThan(*f.NetProfitMin)) {
			continue
		}
		out = append(out, *l)
	}

	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].Tier == models.TierPremium, out[j].Tier == models.TierPremium
		if pi != pj {
			return pi
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) ListingsBySeller(_ context.Context, sellerID uint) ([]models.SellerListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[uint]int64)
	for _, lead := range s.leads {
		counts[lead.ListingID]++
	}

	out := []models.SellerListing{}
	for _, l := range s.listings {
		if l.SellerID == sellerID {
			out = append(out, models.SellerListing{PrivateListing: l.Private(), LeadCount: counts[l.ID]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (s *MemoryStore) ListingsByAgent(_ context.Context, agentID uint) ([]models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Listing{}
	for _, l := range s.listings {
		if l.IsAssignedTo(agentID) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (s *MemoryStore) PendingListings(_ context.Context) ([]models.PendingListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.PendingListing{}
	for _, l := range s.listings {
		if l.Status != models.ListingPending {
			continue
		}
		p := models.PendingListing{PrivateListing: l.Private()}
		if seller, ok := s.users[l.SellerID]; ok {
			p.SellerName = seller.Name
			p.SellerEmail = seller.Email
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[j].CreatedAt, out[i].CreatedAt, out[j].ID, out[i].ID) })
	return out, nil
}

func (s *MemoryStore) CountListings(_ context.Context, c ListingCount) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, l := range s.listings {
		if c.Status != nil && l.Status != *c.Status {
			continue
		}
		if c.Tier != nil && l.Tier != *c.Tier {
			continue
		}
		n++
	}
	return n, nil
}

func (s *MemoryStore) TransitionListing(_ context.Context, t Transition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[t.ID]
	if !ok || l.Status != t.From {
		return false, nil
	}
	if t.Tier != nil && l.Tier != *t.Tier {
		return false, nil
	}
	if t.ExpiredBefore != nil && (l.ExpiryDate == nil || !l.ExpiryDate.Before(*t.ExpiredBefore)) {
		return false, nil
	}

	l.Status = t.To
	if t.AgentID != nil {
		agent := *t.AgentID
		l.AssignedAgentID = &agent
	}
	if t.ExpiryDate != nil {
		expiry := *t.ExpiryDate
		l.ExpiryDate = &expiry
	}
	l.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryStore) ReassignAgent(_ context.Context, listingID, agentID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[listingID]
	if !ok {
		return false, nil
	}
	l.AssignedAgentID = &agentID
	l.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryStore) UpdateDeliverables(_ context.Context, listingID, agentID uint, update models.DeliverablesUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[listingID]
	if !ok || !l.IsAssignedTo(agentID) {
		return false, nil
	}
	if !update.Empty() {
		l.Deliverables.Apply(update)
		l.UpdatedAt = time.Now()
	}
	return true, nil
}

func (s *MemoryStore) RequestFinancing(_ context.Context, listingID, sellerID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[listingID]
	if !ok || l.SellerID != sellerID || l.Tier != models.TierPremium {
		return false, nil
	}
	l.FinancingRequested = true
	l.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryStore) IncrementViews(_ context.Context, listingID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[listingID]
	if !ok {
		return ErrNotFound
	}
	l.Views++
	return nil
}

func (s *MemoryStore) ExpiryCandidates(_ context.Context, now time.Time, afterID uint, limit int) ([]models.ExpiryCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	due := []*models.Listing{}
	for _, l := range s.listings {
		if l.ID > afterID && l.Status == models.ListingActive && l.Tier == models.TierPremium &&
			l.ExpiryDate != nil && l.ExpiryDate.Before(now) {
			due = append(due, l)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	out := make([]models.ExpiryCandidate, 0, len(due))
	for _, l := range due {
		c := models.ExpiryCandidate{ListingID: l.ID, Title: l.Title, ExpiryDate: *l.ExpiryDate}
		if seller, ok := s.users[l.SellerID]; ok {
			c.SellerName = seller.Name
			c.SellerEmail = seller.Email
		}
		out = append(out, c)
	}
	return out, nil
}

// Leads

func (s *MemoryStore) CreateLeadUnlessRecent(_ context.Context, lead *models.Lead, since time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[lead.ListingID]; !ok {
		return ErrNotFound
	}
	for _, existing := range s.leads {
		if existing.ListingID == lead.ListingID && existing.BuyerID == lead.BuyerID && !existing.CreatedAt.Before(since) {
			return ErrCooldown
		}
	}

	if _, taken := s.leads[lead.ID]; taken {
		return ErrDuplicate
	}
	s.stamp(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
	if lead.Status == "" {
		lead.Status = models.LeadNew
	}
	cp := *lead
	s.leads[cp.ID] = &cp
	return nil
}

func (s *MemoryStore) FindLead(_ context.Context, id uint) (*models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leads[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *MemoryStore) LeadsForAgent(_ context.Context, agentID uint) ([]models.LeadView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.LeadView{}
	for _, lead := range s.leads {
		listing, ok := s.listings[lead.ListingID]
		if !ok || !listing.IsAssignedTo(agentID) {
			continue
		}
		out = append(out, leadView(lead, listing, s.users[lead.BuyerID], true))
	}
	sortLeadViews(out)
	return out, nil
}

func (s *MemoryStore) LeadsForBuyer(_ context.Context, buyerID uint) ([]models.LeadView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.LeadView{}
	for _, lead := range s.leads {
		if lead.BuyerID != buyerID {
			continue
		}
		out = append(out, leadView(lead, s.listings[lead.ListingID], nil, false))
	}
	sortLeadViews(out)
	return out, nil
}

func (s *MemoryStore) UpdateLeadStatus(_ context.Context, leadID, agentID uint, status models.LeadStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[leadID]
	if !ok {
		return false, nil
	}
	listing, ok := s.listings[lead.ListingID]
	if !ok || !listing.IsAssignedTo(agentID) {
		return false, nil
	}
	lead.Status = status
	lead.UpdatedAt = time.Now()
	return true, nil
}

// Subscriptions

func (s *MemoryStore) CreatePaidSubscription(_ context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[sub.ListingID]
	if !ok {
		return ErrNotFound
	}
	s.stamp(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	cp := *sub
	s.subscriptions[cp.ID] = &cp

	end := sub.EndDate
	l.Tier = models.TierPremium
	l.ExpiryDate = &end
	l.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) SubscriptionsByUser(_ context.Context, userID uint) ([]models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Subscription{}
	for _, sub := range s.subscriptions {
		if sub.UserID == userID {
			out = append(out, *sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

// Users

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicate
		}
	}
	s.stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if user.Role == "" {
		user.Role = models.RoleBuyer
	}
	if user.AccountStatus == "" {
		user.AccountStatus = models.AccountPending
	}
	cp := *user
	s.users[cp.ID] = &cp
	return nil
}

func (s *MemoryStore) FindUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListUsers(_ context.Context, f UserFilter) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.User{}
	for _, u := range s.users {
		if matchUser(u, f) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (s *MemoryStore) CountUsers(_ context.Context, f UserFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, u := range s.users {
		if matchUser(u, f) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) UpdateAccountStatus(_ context.Context, id uint, status models.AccountStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.AccountStatus = status
	u.UpdatedAt = time.Now()
	return nil
}

func matchUser(u *models.User, f UserFilter) bool {
	return (f.Role == "" || u.Role == f.Role) && (f.Status == "" || u.AccountStatus == f.Status)
}

func (s *MemoryStore) CreateValuation(_ context.Context, valuation *models.Valuation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stamp(&valuation.ID, &valuation.CreatedAt, &valuation.UpdatedAt)
	if valuation.Status == "" {
		valuation.Status = models.ValuationNew
	}
	cp := *valuation
	s.valuations[cp.ID] = &cp
	return nil
}

func newerFirst(a, b time.Time, aID, bID uint) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID > bID
}

func sortLeadViews(views []models.LeadView) {
	sort.Slice(views, func(i, j int) bool {
		return newerFirst(views[i].CreatedAt, views[j].CreatedAt, views[i].ID, views[j].ID)
	})
}
