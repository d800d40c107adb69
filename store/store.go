// Package store is the persistence boundary of the marketplace. Every write that
// depends on prior state carries that state in its predicate, so concurrent
// requests and the expiry sweep cannot overwrite each other's changes.
package store

import (
	"context"
	"errors"
	"time"

	"bizmarket/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrCooldown is returned when the buyer already enquired about the listing inside the cooldown window.
	ErrCooldown = errors.New("lead cooldown active")
	// ErrDuplicate is returned when a unique attribute is already taken.
	ErrDuplicate = errors.New("record already exists")
)

// ListingFilter narrows a search of active listings.
type ListingFilter struct {
	Location     string // case-insensitive substring of region
	Industry     string // exact match
	SearchTerm   string // case-insensitive substring of title or industry
	PriceMin     *decimal.Decimal
	PriceMax     *decimal.Decimal
	NetProfitMin *decimal.Decimal
}

// ListingCount selects the listings to count; nil fields match everything.
type ListingCount struct {
	Status *models.ListingStatus
	Tier   *models.Tier
}

// Transition is a conditional status change of one listing. It applies only
// while the row still has status From and satisfies the optional predicates.
type Transition struct {
	ID   uint
	From models.ListingStatus
	To   models.ListingStatus

	// predicates
	Tier          *models.Tier
	ExpiredBefore *time.Time

	// extra columns written with the status
	AgentID    *uint
	ExpiryDate *time.Time
}

// UserFilter selects users; zero fields match everything.
type UserFilter struct {
	Role   models.Role
	Status models.AccountStatus
}

type ListingStore interface {
	CreateListing(ctx context.Context, listing *models.Listing) error
	FindListing(ctx context.Context, id uint) (*models.Listing, error)
	// SearchListings returns active listings, premium before basic, newest first within a tier.
	SearchListings(ctx context.Context, filter ListingFilter) ([]models.Listing, error)
	ListingsBySeller(ctx context.Context, sellerID uint) ([]models.SellerListing, error)
	ListingsByAgent(ctx context.Context, agentID uint) ([]models.Listing, error)
	PendingListings(ctx context.Context) ([]models.PendingListing, error)
	CountListings(ctx context.Context, count ListingCount) (int64, error)

	// TransitionListing reports whether the row matched and was changed.
	TransitionListing(ctx context.Context, t Transition) (bool, error)
	// ReassignAgent overwrites the assigned agent without touching status or expiry.
	ReassignAgent(ctx context.Context, listingID, agentID uint) (bool, error)
	// UpdateDeliverables writes the flags only while agentID is still the assigned agent.
	UpdateDeliverables(ctx context.Context, listingID, agentID uint, update models.DeliverablesUpdate) (bool, error)
	// RequestFinancing flags the listing only while it belongs to sellerID and is premium.
	RequestFinancing(ctx context.Context, listingID, sellerID uint) (bool, error)
	// IncrementViews adds one to the stored counter.
	IncrementViews(ctx context.Context, listingID uint) error
	// ExpiryCandidates pages through active premium listings whose expiry date is before now, by ascending id.
	ExpiryCandidates(ctx context.Context, now time.Time, afterID uint, limit int) ([]models.ExpiryCandidate, error)
}

type LeadStore interface {
	// CreateLeadUnlessRecent inserts lead unless the same buyer enquired about the
	// same listing at or after since. Returns ErrNotFound when the listing is absent
	// and ErrCooldown when a recent lead exists.
	CreateLeadUnlessRecent(ctx context.Context, lead *models.Lead, since time.Time) error
	FindLead(ctx context.Context, id uint) (*models.Lead, error)
	LeadsForAgent(ctx context.Context, agentID uint) ([]models.LeadView, error)
	LeadsForBuyer(ctx context.Context, buyerID uint) ([]models.LeadView, error)
	// UpdateLeadStatus writes the status only while agentID is assigned to the lead's listing.
	UpdateLeadStatus(ctx context.Context, leadID, agentID uint, status models.LeadStatus) (bool, error)
}

type SubscriptionStore interface {
	// CreatePaidSubscription records sub and, in the same transaction, upgrades
	// its listing to premium with expiry date sub.EndDate. Status is not touched.
	CreatePaidSubscription(ctx context.Context, sub *models.Subscription) error
	SubscriptionsByUser(ctx context.Context, userID uint) ([]models.Subscription, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUser(ctx context.Context, id uint) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error)
	CountUsers(ctx context.Context, filter UserFilter) (int64, error)
	UpdateAccountStatus(ctx context.Context, id uint, status models.AccountStatus) error
}

type ValuationStore interface {
	CreateValuation(ctx context.Context, valuation *models.Valuation) error
}

// Store is the full persistence surface the services run against.
type Store interface {
	ListingStore
	LeadStore
	SubscriptionStore
	UserStore
	ValuationStore
}
