package services

import (
	"context"
	"fmt"
	"time"

	"bizmarket/models"
	"bizmarket/store"
	"bizmarket/utils"

	"github.com/sirupsen/logrus"
)

// Notifier delivers a best-effort message to one recipient.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string) error
}

const (
	DefaultSweepBatchSize = 200
	DefaultNotifyTimeout  = 10 * time.Second
)

// SweepResult summarises one run of the expiry sweep.
type SweepResult struct {
	Candidates   int `json:"candidates"`
	Expired      int `json:"expired"`
	Skipped      int `json:"skipped"` // changed by someone else between read and write
	Failed       int `json:"failed"`
	Notified     int `json:"notified"`
	NotifyFailed int `json:"notify_failed"`
}

// ExpirySweeper expires active premium listings whose validity has passed.
type ExpirySweeper struct {
	store         store.ListingStore
	notifier      Notifier
	batchSize     int
	notifyTimeout time.Duration
	log           *logrus.Entry
	now           func() time.Time
}

func NewExpirySweeper(st store.ListingStore, notifier Notifier, batchSize int, notifyTimeout time.Duration, log *logrus.Entry) *ExpirySweeper {
	if batchSize <= 0 {
		batchSize = DefaultSweepBatchSize
	}
	if notifyTimeout <= 0 {
		notifyTimeout = DefaultNotifyTimeout
	}
	return &ExpirySweeper{
		store:         st,
		notifier:      notifier,
		batchSize:     batchSize,
		notifyTimeout: notifyTimeout,
		log:           log,
		now:           time.Now,
	}
}

// Sweep pages through every due listing by id. A listing is expired with a
// conditional write and its seller notified afterwards; a failure on one
// listing is logged and the sweep moves on. Only a failing page query or a
// cancelled ctx ends the run early.
func (s *ExpirySweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	now := s.now()
	premium := models.TierPremium
	var afterID uint

	for {
		page, err := s.store.ExpiryCandidates(ctx, now, afterID, s.batchSize)
		if err != nil {
			return res, Internal("failed to load expiry candidates", err)
		}

		for _, c := range page {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			afterID = c.ListingID
			res.Candidates++

			ok, err := s.store.TransitionListing(ctx, store.Transition{
				ID:            c.ListingID,
				From:          models.ListingActive,
				To:            models.ListingExpired,
				Tier:          &premium,
				ExpiredBefore: &now,
			})
			if err != nil {
				res.Failed++
				utils.LogError("listing_expiry_failed", err, map[string]interface{}{"listing_id": c.ListingID})
				continue
			}
			if !ok {
				res.Skipped++
				continue
			}
			res.Expired++

			if s.notify(ctx, c) {
				res.Notified++
			} else {
				res.NotifyFailed++
			}
		}

		if len(page) < s.batchSize {
			break
		}
	}

	s.log.WithFields(logrus.Fields{
		"candidates":    res.Candidates,
		"expired":       res.Expired,
		"skipped":       res.Skipped,
		"failed":        res.Failed,
		"notify_failed": res.NotifyFailed,
	}).Info("Expiry sweep finished")
	return res, nil
}

func (s *ExpirySweeper) notify(ctx context.Context, c models.ExpiryCandidate) bool {
	if c.SellerEmail == "" {
		s.log.WithField("listing_id", c.ListingID).Warn("Expired listing has no seller email")
		return false
	}

	nctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	subject := "Your premium listing has expired"
	body := fmt.Sprintf("Hello %s,\n\nYour premium listing \"%s\" expired on %s and is no longer shown to buyers.\n",
		c.SellerName, c.Title, c.ExpiryDate.Format("2 Jan 2006"))

	if err := s.notifier.Notify(nctx, c.SellerEmail, subject, body); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"listing_id": c.ListingID,
			"to":         c.SellerEmail,
		}).Warn("Expiry notification failed")
		return false
	}
	return true
}
