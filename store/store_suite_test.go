package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bizmarket/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// StoreSuite is run against every Store implementation.
type StoreSuite struct {
	suite.Suite
	ctx   context.Context
	store Store
	fresh func() Store
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.fresh()
}

func (s *StoreSuite) newUser(role models.Role) *models.User {
	u := &models.User{
		Name:          string(role) + " user",
		Email:         fmt.Sprintf("%s-%d@example.com", role, time.Now().UnixNano()),
		PasswordHash:  "hash",
		Role:          role,
		AccountStatus: models.AccountActive,
	}
	s.Require().NoError(s.store.CreateUser(s.ctx, u))
	return u
}

func (s *StoreSuite) newListing(sellerID uint, mutate func(*models.Listing)) *models.Listing {
	l := &models.Listing{
		SellerID:          sellerID,
		Title:             "Corner Cafe",
		Industry:          "Hospitality",
		Region:            "Dubai Marina",
		Price:             decimal.NewFromInt(250000),
		LegalBusinessName: "Corner Cafe LLC",
		FullAddress:       "Shop 4, Marina Walk",
		OwnerName:         "Sam Owner",
		Tier:              models.TierBasic,
		Status:            models.ListingPending,
	}
	if mutate != nil {
		mutate(l)
	}
	s.Require().NoError(s.store.CreateListing(s.ctx, l))
	return l
}

func active(l *models.Listing) { l.Status = models.ListingActive }

func (s *StoreSuite) TestSearchListings() {
	seller := s.newUser(models.RoleSeller)
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	oldBasic := s.newListing(seller.ID, func(l *models.Listing) {
		active(l)
		l.CreatedAt = base
	})
	newBasic := s.newListing(seller.ID, func(l *models.Listing) {
		active(l)
		l.Title = "Gym Franchise"
		l.Industry = "Fitness"
		l.Region = "Abu Dhabi"
		l.Price = decimal.NewFromInt(900000)
		l.CreatedAt = base.Add(10 * time.Minute)
	})
	oldPremium := s.newListing(seller.ID, func(l *models.Listing) {
		active(l)
		l.Tier = models.TierPremium
		l.NetProfit = decimal.NewNullDecimal(decimal.NewFromInt(80000))
		l.CreatedAt = base.Add(-time.Hour)
	})
	s.newListing(seller.ID, nil) // pending, never listed

	s.Run("premium first then newest", func() {
		got, err := s.store.SearchListings(s.ctx, ListingFilter{})
		s.Require().NoError(err)
		s.Require().Len(got, 3)
		s.Equal([]uint{oldPremium.ID, newBasic.ID, oldBasic.ID}, ids(got))
	})

	s.Run("location is a case-insensitive substring", func() {
		got, err := s.store.SearchListings(s.ctx, ListingFilter{Location: "marina"})
		s.Require().NoError(err)
		s.ElementsMatch([]uint{oldPremium.ID, oldBasic.ID}, ids(got))
	})

	s.Run("search term matches title", func() {
		got, err := s.store.SearchListings(s.ctx, ListingFilter{SearchTerm: "GYM"})
		s.Require().NoError(err)
		s.Equal([]uint{newBasic.ID}, ids(got))
	})

	s.Run("industry is exact", func() {
		got, err := s.store.SearchListings(s.ctx, ListingFilter{Industry: "Fitness"})
		s.Require().NoError(err)
		s.Equal([]uint{newBasic.ID}, ids(got))
	})

	s.Run("price bounds are inclusive", func() {
		min := decimal.NewFromInt(250000)
		max := decimal.NewFromInt(250000)
		got, err := s.store.SearchListings(s.ctx, ListingFilter{PriceMin: &min, PriceMax: &max})
		s.Require().NoError(err)
		s.ElementsMatch([]uint{oldPremium.ID, oldBasic.ID}, ids(got))
	})

	s.Run("net profit minimum skips listings without figures", func() {
		min := decimal.NewFromInt(50000)
		got, err := s.store.SearchListings(s.ctx, ListingFilter{NetProfitMin: &min})
		s.Require().NoError(err)
		s.Equal([]uint{oldPremium.ID}, ids(got))
	})
}

func (s *StoreSuite) TestTransitionListing() {
	seller := s.newUser(models.RoleSeller)
	agent := s.newUser(models.RoleAgent)
	listing := s.newListing(seller.ID, nil)
	expiry := time.Now().Add(30 * 24 * time.Hour)

	ok, err := s.store.TransitionListing(s.ctx, Transition{
		ID: listing.ID, From: models.ListingPending, To: models.ListingActive,
		AgentID: &agent.ID, ExpiryDate: &expiry,
	})
	s.Require().NoError(err)
	s.True(ok)

	got, err := s.store.FindListing(s.ctx, listing.ID)
	s.Require().NoError(err)
	s.Equal(models.ListingActive, got.Status)
	s.True(got.IsAssignedTo(agent.ID))
	s.Require().NotNil(got.ExpiryDate)
	s.WithinDuration(expiry, *got.ExpiryDate, time.Second)

	s.Run("second transition from the old state does not match", func() {
		ok, err := s.store.TransitionListing(s.ctx, Transition{ID: listing.ID, From: models.ListingPending, To: models.ListingActive})
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("tier predicate", func() {
		premium := models.TierPremium
		ok, err := s.store.TransitionListing(s.ctx, Transition{
			ID: listing.ID, From: models.ListingActive, To: models.ListingExpired, Tier: &premium,
		})
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("expired-before predicate", func() {
		before := time.Now()
		ok, err := s.store.TransitionListing(s.ctx, Transition{
			ID: listing.ID, From: models.ListingActive, To: models.ListingExpired, ExpiredBefore: &before,
		})
		s.Require().NoError(err)
		s.False(ok)
	})
}

func (s *StoreSuite) TestConditionalListingWrites() {
	seller := s.newUser(models.RoleSeller)
	agent := s.newUser(models.RoleAgent)
	other := s.newUser(models.RoleAgent)
	listing := s.newListing(seller.ID, func(l *models.Listing) {
		active(l)
		l.AssignedAgentID = &agent.ID
	})
	yes := true

	s.Run("deliverables only by the assigned agent", func() {
		ok, err := s.store.UpdateDeliverables(s.ctx, listing.ID, other.ID, models.DeliverablesUpdate{SalePackReady: &yes})
		s.Require().NoError(err)
		s.False(ok)

		ok, err = s.store.UpdateDeliverables(s.ctx, listing.ID, agent.ID, models.DeliverablesUpdate{SalePackReady: &yes})
		s.Require().NoError(err)
		s.True(ok)

		got, err := s.store.FindListing(s.ctx, listing.ID)
		s.Require().NoError(err)
		s.True(got.Deliverables.SalePackReady)
		s.False(got.Deliverables.LegalAttestationReady)
	})

	s.Run("financing needs premium", func() {
		ok, err := s.store.RequestFinancing(s.ctx, listing.ID, seller.ID)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("reassign keeps status", func() {
		ok, err := s.store.ReassignAgent(s.ctx, listing.ID, other.ID)
		s.Require().NoError(err)
		s.True(ok)

		got, err := s.store.FindListing(s.ctx, listing.ID)
		s.Require().NoError(err)
		s.True(got.IsAssignedTo(other.ID))
		s.Equal(models.ListingActive, got.Status)
	})

	s.Run("views", func() {
		s.Require().NoError(s.store.IncrementViews(s.ctx, listing.ID))
		s.Require().NoError(s.store.IncrementViews(s.ctx, listing.ID))
		got, err := s.store.FindListing(s.ctx, listing.ID)
		s.Require().NoError(err)
		s.EqualValues(2, got.Views)

		s.ErrorIs(s.store.IncrementViews(s.ctx, 999999), ErrNotFound)
	})
}

func (s *StoreSuite) TestConcurrentViews() {
	seller := s.newUser(models.RoleSeller)
	listing := s.newListing(seller.ID, active)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NoError(s.store.IncrementViews(s.ctx, listing.ID))
		}()
	}
	wg.Wait()

	got, err := s.store.FindListing(s.ctx, listing.ID)
	s.Require().NoError(err)
	s.EqualValues(20, got.Views)
}

func (s *StoreSuite) TestPaidSubscription() {
	seller := s.newUser(models.RoleSeller)
	listing := s.newListing(seller.ID, nil)
	start := time.Now()
	end := start.Add(90 * 24 * time.Hour)

	sub := &models.Subscription{
		UserID: seller.ID, ListingID: listing.ID,
		Amount: decimal.NewFromInt(1500), Currency: "AED",
		PaymentStatus: models.PaymentPaid, TransactionID: "tx_test",
		StartDate: start, EndDate: end,
	}
	s.Require().NoError(s.store.CreatePaidSubscription(s.ctx, sub))
	s.NotZero(sub.ID)

	got, err := s.store.FindListing(s.ctx, listing.ID)
	s.Require().NoError(err)
	s.Equal(models.TierPremium, got.Tier)
	s.Equal(models.ListingPending, got.Status)
	s.Require().NotNil(got.ExpiryDate)
	s.WithinDuration(end, *got.ExpiryDate, time.Second)

	subs, err := s.store.SubscriptionsByUser(s.ctx, seller.ID)
	s.Require().NoError(err)
	s.Len(subs, 1)

	s.Run("unknown listing", func() {
		err := s.store.CreatePaidSubscription(s.ctx, &models.Subscription{
			UserID: seller.ID, ListingID: 999999, Amount: decimal.NewFromInt(1), StartDate: start, EndDate: end,
		})
		s.ErrorIs(err, ErrNotFound)
	})
}

func (s *StoreSuite) TestExpiryCandidates() {
	seller := s.newUser(models.RoleSeller)
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	var due []uint
	for i := 0; i < 3; i++ {
		l := s.newListing(seller.ID, func(l *models.Listing) {
			active(l)
			l.Tier = models.TierPremium
			l.ExpiryDate = &past
		})
		due = append(due, l.ID)
	}
	s.newListing(seller.ID, func(l *models.Listing) { // not yet due
		active(l)
		l.Tier = models.TierPremium
		l.ExpiryDate = &future
	})
	s.newListing(seller.ID, func(l *models.Listing) { // basic is never swept
		active(l)
		l.ExpiryDate = &past
	})

	page, err := s.store.ExpiryCandidates(s.ctx, now, 0, 2)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal(due[0], page[0].ListingID)
	s.Equal(seller.Email, page[0].SellerEmail)

	rest, err := s.store.ExpiryCandidates(s.ctx, now, page[1].ListingID, 2)
	s.Require().NoError(err)
	s.Require().Len(rest, 1)
	s.Equal(due[2], rest[0].ListingID)
}

func (s *StoreSuite) TestLeadCooldown() {
	seller := s.newUser(models.RoleSeller)
	buyer := s.newUser(models.RoleBuyer)
	listing := s.newListing(seller.ID, active)
	now := time.Now().Truncate(time.Second)

	first := &models.Lead{ListingID: listing.ID, BuyerID: buyer.ID, Message: "hi", Status: models.LeadNew}
	first.CreatedAt = now
	s.Require().NoError(s.store.CreateLeadUnlessRecent(s.ctx, first, now.Add(-7*24*time.Hour)))

	s.Run("within window", func() {
		again := &models.Lead{ListingID: listing.ID, BuyerID: buyer.ID, Message: "again", Status: models.LeadNew}
		err := s.store.CreateLeadUnlessRecent(s.ctx, again, now.Add(-7*24*time.Hour))
		s.ErrorIs(err, ErrCooldown)
	})

	s.Run("boundary is inclusive", func() {
		again := &models.Lead{ListingID: listing.ID, BuyerID: buyer.ID, Message: "again", Status: models.LeadNew}
		err := s.store.CreateLeadUnlessRecent(s.ctx, again, now)
		s.ErrorIs(err, ErrCooldown)
	})

	s.Run("after window", func() {
		later := &models.Lead{ListingID: listing.ID, BuyerID: buyer.ID, Message: "later", Status: models.LeadNew}
		later.CreatedAt = now.Add(8 * 24 * time.Hour)
		err := s.store.CreateLeadUnlessRecent(s.ctx, later, now.Add(time.Second))
		s.NoError(err)
	})

	s.Run("unknown listing", func() {
		err := s.store.CreateLeadUnlessRecent(s.ctx, &models.Lead{ListingID: 999999, BuyerID: buyer.ID, Message: "x"}, now)
		s.ErrorIs(err, ErrNotFound)
	})

	s.Run("insert failure is translated", func() {
		other := s.newListing(seller.ID, active)
		clash := &models.Lead{ListingID: other.ID, BuyerID: buyer.ID, Message: "clash", Status: models.LeadNew}
		clash.ID = first.ID
		err := s.store.CreateLeadUnlessRecent(s.ctx, clash, now.Add(-7*24*time.Hour))
		s.ErrorIs(err, ErrDuplicate)
	})
}

func (s *StoreSuite) TestConcurrentLeadsCreateOne() {
	seller := s.newUser(models.RoleSeller)
	buyer := s.newUser(models.RoleBuyer)
	listing := s.newListing(seller.ID, active)
	since := time.Now().Add(-7 * 24 * time.Hour)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.CreateLeadUnlessRecent(s.ctx, &models.Lead{ListingID: listing.ID, BuyerID: buyer.ID, Message: "race", Status: models.LeadNew}, since)
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(1, created)
}

func (s *StoreSuite) TestLeadViews() {
	seller := s.newUser(models.RoleSeller)
	agent := s.newUser(models.RoleAgent)
	other := s.newUser(models.RoleAgent)
	buyer := s.newUser(models.RoleBuyer)
	listing := s.newListing(seller.ID, func(l *models.Listing) {
		active(l)
		l.AssignedAgentID = &agent.ID
	})
	since := time.Now().Add(-time.Hour)

	lead := &models.Lead{ListingID: listing.ID, BuyerID: buyer.ID, Message: "interested", Status: models.LeadNew}
	s.Require().NoError(s.store.CreateLeadUnlessRecent(s.ctx, lead, since))

	forAgent, err := s.store.LeadsForAgent(s.ctx, agent.ID)
	s.Require().NoError(err)
	s.Require().Len(forAgent, 1)
	s.Equal(listing.Title, forAgent[0].Listing.Title)
	s.Require().NotNil(forAgent[0].Buyer)
	s.Equal(buyer.Email, forAgent[0].Buyer.Email)

	forOther, err := s.store.LeadsForAgent(s.ctx, other.ID)
	s.Require().NoError(err)
	s.Empty(forOther)

	forBuyer, err := s.store.LeadsForBuyer(s.ctx, buyer.ID)
	s.Require().NoError(err)
	s.Require().Len(forBuyer, 1)
	s.Nil(forBuyer[0].Buyer)

	mine, err := s.store.ListingsBySeller(s.ctx, seller.ID)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.EqualValues(1, mine[0].LeadCount)

	s.Run("status update only by the assigned agent", func() {
		ok, err := s.store.UpdateLeadStatus(s.ctx, lead.ID, other.ID, models.LeadContacted)
		s.Require().NoError(err)
		s.False(ok)

		ok, err = s.store.UpdateLeadStatus(s.ctx, lead.ID, agent.ID, models.LeadContacted)
		s.Require().NoError(err)
		s.True(ok)

		got, err := s.store.FindLead(s.ctx, lead.ID)
		s.Require().NoError(err)
		s.Equal(models.LeadContacted, got.Status)
	})
}

func (s *StoreSuite) TestUsers() {
	u := s.newUser(models.RoleBuyer)

	s.Run("email is unique", func() {
		dup := &models.User{Name: "dup", Email: u.Email, PasswordHash: "x", Role: models.RoleBuyer, AccountStatus: models.AccountPending}
		s.ErrorIs(s.store.CreateUser(s.ctx, dup), ErrDuplicate)
	})

	s.Run("lookup by email", func() {
		got, err := s.store.FindUserByEmail(s.ctx, u.Email)
		s.Require().NoError(err)
		s.Equal(u.ID, got.ID)

		_, err = s.store.FindUserByEmail(s.ctx, "nobody@example.com")
		s.ErrorIs(err, ErrNotFound)
	})

	s.Run("filter and status update", func() {
		s.newUser(models.RoleAgent)
		agents, err := s.store.ListUsers(s.ctx, UserFilter{Role: models.RoleAgent})
		s.Require().NoError(err)
		s.Len(agents, 1)

		s.Require().NoError(s.store.UpdateAccountStatus(s.ctx, u.ID, models.AccountRejected))
		n, err := s.store.CountUsers(s.ctx, UserFilter{Status: models.AccountRejected})
		s.Require().NoError(err)
		s.EqualValues(1, n)

		s.ErrorIs(s.store.UpdateAccountStatus(s.ctx, 999999, models.AccountActive), ErrNotFound)
	})
}

func ids(listings []models.Listing) []uint {
	out := make([]uint, len(listings))
	for i := range listings {
		out[i] = listings[i].ID
	}
	return out
}
