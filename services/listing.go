package services

import (
	"context"
	"strings"
	"time"

	"bizmarket/models"
	"bizmarket/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CreateListingInput carries the seller-supplied fields of a new listing.
type CreateListingInput struct {
	Title             string
	Industry          string
	Region            string
	Price             *decimal.Decimal
	NetProfit         decimal.NullDecimal
	Turnover          decimal.NullDecimal
	LegalBusinessName string
	FullAddress       string
	OwnerName         string
	Tier              models.Tier
}

// ListingService owns the listing rules that do not belong to assignment,
// subscriptions or the sweep: creation, search, detail reads, deliverables
// and financing requests.
type ListingService struct {
	store store.ListingStore
	log   *logrus.Entry
	now   func() time.Time
}

func NewListingService(st store.ListingStore, log *logrus.Entry) *ListingService {
	return &ListingService{store: st, log: log, now: time.Now}
}

// Create stores a new pending listing owned by actor.
func (s *ListingService) Create(ctx context.Context, actor *models.Actor, in CreateListingInput) (*models.Listing, error) {
	if actor == nil || actor.Role != models.RoleSeller {
		return nil, newError(KindForbidden, "only sellers can create listings")
	}

	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Industry) == "" {
		missing = append(missing, "industry")
	}
	if strings.TrimSpace(in.Region) == "" {
		missing = append(missing, "region")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return nil, newError(KindValidation, "missing required fields: "+strings.Join(missing, ", "))
	}
	if in.Price.IsNegative() {
		return nil, newError(KindValidation, "price must not be negative")
	}

	switch in.Tier {
	case "", models.TierBasic:
	case models.TierPremium:
		return nil, newError(KindInvalidState, "premium tier is granted by a paid subscription")
	default:
		return nil, newError(KindValidation, "unknown tier "+string(in.Tier))
	}

	listing := &models.Listing{
		SellerID:          actor.UserID,
		Title:             strings.TrimSpace(in.Title),
		Industry:          strings.TrimSpace(in.Industry),
		Region:            strings.TrimSpace(in.Region),
		Price:             *in.Price,
		NetProfit:         in.NetProfit,
		Turnover:          in.Turnover,
		LegalBusinessName: in.LegalBusinessName,
		FullAddress:       in.FullAddress,
		OwnerName:         in.OwnerName,
		Tier:              models.TierBasic,
		Status:            models.ListingPending,
	}
	listing.CreatedAt = s.now()

	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, storeError(err, "listing")
	}

	s.log.WithFields(logrus.Fields{
		"listing_id": listing.ID,
		"seller_id":  actor.UserID,
	}).Info("Listing created")
	return listing, nil
}

// Search returns active listings, premium first, always masked.
func (s *ListingService) Search(ctx context.Context, filter store.ListingFilter) ([]models.PublicListing, error) {
	listings, err := s.store.SearchListings(ctx, filter)
	if err != nil {
		return nil, storeError(err, "listings")
	}
	return MaskAll(listings), nil
}

// Get reads one listing for viewer. Masked reads count as a view.
func (s *ListingService) Get(ctx context.Context, id uint, viewer *models.Actor) (models.ListingView, error) {
	listing, err := s.store.FindListing(ctx, id)
	if err != nil {
		return nil, storeError(err, "listing")
	}

	view := Mask(listing, viewer)
	if !view.Masked() {
		return view, nil
	}

	if err := s.store.IncrementViews(ctx, id); err != nil {
		return nil, storeError(err, "listing")
	}
	public := view.(models.PublicListing)
	public.Views++
	return public, nil
}

// MyListings returns every listing of the seller with its lead count.
func (s *ListingService) MyListings(ctx context.Context, actor *models.Actor) ([]models.SellerListing, error) {
	listings, err := s.store.ListingsBySeller(ctx, actor.UserID)
	if err != nil {
		return nil, storeError(err, "listings")
	}
	return listings, nil
}

// AgentListings returns the listings assigned to the agent.
func (s *ListingService) AgentListings(ctx context.Context, actor *models.Actor) ([]models.PrivateListing, error) {
	listings, err := s.store.ListingsByAgent(ctx, actor.UserID)
	if err != nil {
		return nil, storeError(err, "listings")
	}
	out := make([]models.PrivateListing, len(listings))
	for i := range listings {
		out[i] = listings[i].Private()
	}
	return out, nil
}

// UpdateDeliverables sets the deliverable flags of a listing assigned to actor.
// Only the four flags can change; the update type carries nothing else.
func (s *ListingService) UpdateDeliverables(ctx context.Context, actor *models.Actor, id uint, update models.DeliverablesUpdate) (*models.PrivateListing, error) {
	listing, err := s.store.FindListing(ctx, id)
	if err != nil {
		return nil, storeError(err, "listing")
	}
	if !CanManageListing(actor, listing) {
		return nil, newError(KindForbidden, "listing is not assigned to you")
	}

	ok, err := s.store.UpdateDeliverables(ctx, id, actor.UserID, update)
	if err != nil {
		return nil, storeError(err, "listing")
	}
	if !ok {
		return nil, newError(KindForbidden, "listing is not assigned to you")
	}

	return s.reloadPrivate(ctx, id)
}

// RequestFinancing flags a premium listing of actor for financing.
func (s *ListingService) RequestFinancing(ctx context.Context, actor *models.Actor, id uint) (*models.PrivateListing, error) {
	listing, err := s.store.FindListing(ctx, id)
	if err != nil {
		return nil, storeError(err, "listing")
	}
	if !IsOwner(actor, listing) {
		return nil, newError(KindForbidden, "you do not own this listing")
	}
	if listing.Tier != models.TierPremium {
		return nil, newError(KindInvalidState, "financing is available for premium listings only")
	}

	ok, err := s.store.RequestFinancing(ctx, id, actor.UserID)
	if err != nil {
		return nil, storeError(err, "listing")
	}
	if !ok {
		return nil, newError(KindInvalidState, "financing is available for premium listings only")
	}

	s.log.WithField("listing_id", id).Info("Financing requested")
	return s.reloadPrivate(ctx, id)
}

func (s *ListingService) reloadPrivate(ctx context.Context, id uint) (*models.PrivateListing, error) {
	listing, err := s.store.FindListing(ctx, id)
	if err != nil {
		return nil, storeError(err, "listing")
	}
	view := listing.Private()
	return &view, nil
}
