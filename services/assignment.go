package services

import (
	"context"
	"time"

	"bizmarket/models"
	"bizmarket/store"

	"github.com/sirupsen/logrus"
)

// Validity windows of an activated listing, by tier.
const (
	BasicValidity   = 30 * 24 * time.Hour
	PremiumValidity = 90 * 24 * time.Hour
)

// ValidityFor returns how long a listing of tier stays listed once active.
func ValidityFor(tier models.Tier) time.Duration {
	if tier == models.TierPremium {
		return PremiumValidity
	}
	return BasicValidity
}

const assignAttempts = 3

// AssignmentService binds agents to listings.
type AssignmentService struct {
	store store.Store
	log   *logrus.Entry
	now   func() time.Time
}

func NewAssignmentService(st store.Store, log *logrus.Entry) *AssignmentService {
	return &AssignmentService{store: st, log: log, now: time.Now}
}

// Assign makes agentID the agent of a listing. A pending listing becomes active
// with an expiry date that depends on its tier; any other listing only gets
// its agent replaced.
func (s *AssignmentService) Assign(ctx context.Context, listingID, agentID uint) (*models.Listing, error) {
	listing, err := s.store.FindListing(ctx, listingID)
	if err != nil {
		return nil, storeError(err, "listing")
	}
	agent, err := s.store.FindUser(ctx, agentID)
	if err != nil {
		return nil, storeError(err, "agent")
	}
	if agent.Role != models.RoleAgent {
		return nil, newError(KindInvalidAgent, "user is not an agent")
	}

	for attempt := 0; attempt < assignAttempts; attempt++ {
		var ok bool
		if listing.Status == models.ListingPending {
			tier := listing.Tier
			expiry := s.now().Add(ValidityFor(tier))
			// The tier predicate keeps a concurrent upgrade from being
			// paired with the basic validity window.
			ok, err = s.store.TransitionListing(ctx, store.Transition{
				ID:         listingID,
				From:       models.ListingPending,
				To:         models.ListingActive,
				Tier:       &tier,
				AgentID:    &agentID,
				ExpiryDate: &expiry,
			})
		} else {
			ok, err = s.store.ReassignAgent(ctx, listingID, agentID)
		}
		if err != nil {
			return nil, storeError(err, "listing")
		}
		if ok {
			updated, err := s.store.FindListing(ctx, listingID)
			if err != nil {
				return nil, storeError(err, "listing")
			}
			s.log.WithFields(logrus.Fields{
				"listing_id": listingID,
				"agent_id":   agentID,
				"status":     updated.Status,
			}).Info("Agent assigned")
			return updated, nil
		}

		if listing, err = s.store.FindListing(ctx, listingID); err != nil {
			return nil, storeError(err, "listing")
		}
	}

	return nil, newError(KindInvalidState, "listing changed while assigning, try again")
}
