package services

import (
	"context"
	"time"

	"bizmarket/models"
	"bizmarket/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SubscriptionService applies paid premium upgrades. Payment capture happens
// elsewhere; the amount arriving here is already authorised.
type SubscriptionService struct {
	store      store.Store
	defaultFee decimal.Decimal
	currency   string
	log        *logrus.Entry
	now        func() time.Time
}

func NewSubscriptionService(st store.Store, defaultFee decimal.Decimal, currency string, log *logrus.Entry) *SubscriptionService {
	if currency == "" {
		currency = "AED"
	}
	return &SubscriptionService{store: st, defaultFee: defaultFee, currency: currency, log: log, now: time.Now}
}

// Subscribe records a paid subscription for a listing of actor and upgrades the
// listing to premium until the subscription ends. The listing status is left as is.
func (s *SubscriptionService) Subscribe(ctx context.Context, actor *models.Actor, listingID uint, amount *decimal.Decimal) (*models.Subscription, error) {
	listing, err := s.store.FindListing(ctx, listingID)
	if err != nil {
		return nil, storeError(err, "listing")
	}
	if !IsOwner(actor, listing) {
		return nil, newError(KindForbidden, "you do not own this listing")
	}

	fee := s.defaultFee
	if amount != nil {
		if !amount.IsPositive() {
			return nil, newError(KindValidation, "amount must be positive")
		}
		fee = *amount
	}

	start := s.now()
	sub := &models.Subscription{
		UserID:        actor.UserID,
		ListingID:     listingID,
		Amount:        fee,
		Currency:      s.currency,
		PaymentStatus: models.PaymentPaid,
		TransactionID: "tx_" + uuid.NewString(),
		StartDate:     start,
		EndDate:       start.Add(PremiumValidity),
	}
	if err := s.store.CreatePaidSubscription(ctx, sub); err != nil {
		return nil, storeError(err, "listing")
	}

	s.log.WithFields(logrus.Fields{
		"subscription_id": sub.ID,
		"listing_id":      listingID,
		"amount":          fee.StringFixed(2),
		"end_date":        sub.EndDate,
	}).Info("Listing upgraded to premium")
	return sub, nil
}

// MySubscriptions lists the subscriptions actor paid for.
func (s *SubscriptionService) MySubscriptions(ctx context.Context, actor *models.Actor) ([]models.Subscription, error) {
	subs, err := s.store.SubscriptionsByUser(ctx, actor.UserID)
	if err != nil {
		return nil, storeError(err, "subscriptions")
	}
	return subs, nil
}
