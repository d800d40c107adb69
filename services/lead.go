package services

import (
	"context"
	"strings"
	"time"

	"bizmarket/models"
	"bizmarket/store"

	"github.com/sirupsen/logrus"
)

// DefaultLeadCooldown is the minimum interval between two enquiries of one
// buyer about one listing.
const DefaultLeadCooldown = 7 * 24 * time.Hour

// LeadService routes buyer enquiries to the agent of the listing.
type LeadService struct {
	store    store.Store
	cooldown time.Duration
	log      *logrus.Entry
	now      func() time.Time
}

func NewLeadService(st store.Store, cooldown time.Duration, log *logrus.Entry) *LeadService {
	if cooldown <= 0 {
		cooldown = DefaultLeadCooldown
	}
	return &LeadService{store: st, cooldown: cooldown, log: log, now: time.Now}
}

// Create records an enquiry of actor about a listing unless the same buyer
// enquired about it within the cooldown window.
func (s *LeadService) Create(ctx context.Context, actor *models.Actor, listingID uint, message string) (*models.Lead, error) {
	if actor == nil || actor.Role != models.RoleBuyer {
		return nil, newError(KindForbidden, "only buyers can send enquiries")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, newError(KindValidation, "message is required")
	}

	now := s.now()
	lead := &models.Lead{
		ListingID: listingID,
		BuyerID:   actor.UserID,
		Message:   message,
		Status:    models.LeadNew,
	}
	lead.CreatedAt = now

	if err := s.store.CreateLeadUnlessRecent(ctx, lead, now.Add(-s.cooldown)); err != nil {
		return nil, storeError(err, "listing")
	}

	s.log.WithFields(logrus.Fields{
		"lead_id":    lead.ID,
		"listing_id": listingID,
		"buyer_id":   actor.UserID,
	}).Info("Lead created")
	return lead, nil
}

// ForAgent lists the leads of every listing assigned to actor, with buyer contacts.
func (s *LeadService) ForAgent(ctx context.Context, actor *models.Actor) ([]models.LeadView, error) {
	leads, err := s.store.LeadsForAgent(ctx, actor.UserID)
	if err != nil {
		return nil, storeError(err, "leads")
	}
	return leads, nil
}

// ForBuyer lists the enquiries actor sent, newest first.
func (s *LeadService) ForBuyer(ctx context.Context, actor *models.Actor) ([]models.LeadView, error) {
	leads, err := s.store.LeadsForBuyer(ctx, actor.UserID)
	if err != nil {
		return nil, storeError(err, "leads")
	}
	return leads, nil
}

// UpdateStatus sets the status of a lead on a listing assigned to actor.
// Any of new, contacted and closed may follow any other.
func (s *LeadService) UpdateStatus(ctx context.Context, actor *models.Actor, leadID uint, status models.LeadStatus) (*models.Lead, error) {
	if !models.ValidLeadStatus(status) {
		return nil, newError(KindValidation, "status must be one of new, contacted, closed")
	}

	lead, err := s.store.FindLead(ctx, leadID)
	if err != nil {
		return nil, storeError(err, "lead")
	}
	listing, err := s.store.FindListing(ctx, lead.ListingID)
	if err != nil {
		return nil, storeError(err, "listing")
	}
	if !CanManageListing(actor, listing) {
		return nil, newError(KindForbidden, "lead belongs to a listing not assigned to you")
	}

	ok, err := s.store.UpdateLeadStatus(ctx, leadID, actor.UserID, status)
	if err != nil {
		return nil, storeError(err, "lead")
	}
	if !ok {
		return nil, newError(KindForbidden, "lead belongs to a listing not assigned to you")
	}

	updated, err := s.store.FindLead(ctx, leadID)
	if err != nil {
		return nil, storeError(err, "lead")
	}
	return updated, nil
}
