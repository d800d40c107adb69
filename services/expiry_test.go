package services

import (
	"context"
	"testing"
	"time"

	"bizmarket/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepExpiresOnlyDuePremium(t *testing.T) {
	f := newFixture(t)
	seller := f.user(models.RoleSeller, "seller@example.com")
	agent := f.user(models.RoleAgent, "agent@example.com")

	activate := func(title string, premium bool) *models.Listing {
		l := f.listing(seller, title)
		if premium {
			_, err := f.subscriptions.Subscribe(f.ctx, seller, l.ID, nil)
			require.NoError(t, err)
		}
		_, err := f.assignment.Assign(f.ctx, l.ID, agent.UserID)
		require.NoError(t, err)
		return l
	}

	due := []*models.Listing{activate("P1", true), activate("P2", true), activate("P3", true)}
	basic := activate("Basic", false)
	pendingPremium := f.listing(seller, "Pending premium")
	_, err := f.subscriptions.Subscribe(f.ctx, seller, pendingPremium.ID, nil)
	require.NoError(t, err)

	f.clock.Advance(60 * 24 * time.Hour)
	fresh := activate("Fresh", true)

	f.clock.Advance(31 * 24 * time.Hour)
	res, err := f.sweeper.Sweep(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Expired)
	assert.Equal(t, 3, res.Notified)
	for _, l := range due {
		assert.Equal(t, models.ListingExpired, f.reload(l.ID).Status, l.Title)
	}
	// basic listings keep their 30 day expiry date but are never swept
	assert.Equal(t, models.ListingActive, f.reload(basic.ID).Status)
	assert.Equal(t, models.ListingPending, f.reload(pendingPremium.ID).Status)
	assert.Equal(t, models.ListingActive, f.reload(fresh.ID).Status)

	t.Run("second run is a no-op", func(t *testing.T) {
		res, err := f.sweeper.Sweep(f.ctx)
		require.NoError(t, err)
		assert.Zero(t, res.Candidates)
		assert.Len(t, f.mail.Sent(), 3)
	})
}

func TestSweepSurvivesNotificationFailure(t *testing.T) {
	f := newFixture(t)
	agent := f.user(models.RoleAgent, "agent@example.com")

	var ids []uint
	for _, email := range []string{"a@example.com", "broken@example.com", "c@example.com"} {
		seller := f.user(models.RoleSeller, email)
		l := f.listing(seller, "Shop "+email)
		_, err := f.subscriptions.Subscribe(f.ctx, seller, l.ID, nil)
		require.NoError(t, err)
		_, err = f.assignment.Assign(f.ctx, l.ID, agent.UserID)
		require.NoError(t, err)
		ids = append(ids, l.ID)
	}
	f.mail.fail["broken@example.com"] = true

	f.clock.Advance(91 * 24 * time.Hour)
	res, err := f.sweeper.Sweep(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Expired)
	assert.Equal(t, 2, res.Notified)
	assert.Equal(t, 1, res.NotifyFailed)
	for _, id := range ids {
		assert.Equal(t, models.ListingExpired, f.reload(id).Status)
	}
}

func TestSweepStopsOnCancelledContext(t *testing.T) {
	f := newFixture(t)
	seller := f.user(models.RoleSeller, "seller@example.com")
	agent := f.user(models.RoleAgent, "agent@example.com")
	l := f.listing(seller, "Shop")
	_, err := f.subscriptions.Subscribe(f.ctx, seller, l.ID, nil)
	require.NoError(t, err)
	_, err = f.assignment.Assign(f.ctx, l.ID, agent.UserID)
	require.NoError(t, err)
	f.clock.Advance(91 * 24 * time.Hour)

	ctx, cancel := context.WithCancel(f.ctx)
	cancel()
	_, err = f.sweeper.Sweep(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.ListingActive, f.reload(l.ID).Status)
}

// Seller S lists L, admin assigns agent A, buyer B enquires twice, S upgrades
// L to premium and the sweep runs 91 days later.
func TestListingLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	seller := f.user(models.RoleSeller, "s@example.com")
	agent := f.user(models.RoleAgent, "a@example.com")
	buyer := f.user(models.RoleBuyer, "b@example.com")
	start := f.clock.Now()

	l := f.listing(seller, "L")
	assert.Equal(t, models.TierBasic, l.Tier)
	assert.Equal(t, models.ListingPending, l.Status)

	assigned, err := f.assignment.Assign(f.ctx, l.ID, agent.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingActive, assigned.Status)
	assert.Equal(t, start.Add(30*24*time.Hour), *assigned.ExpiryDate)

	_, err = f.leads.Create(f.ctx, buyer, l.ID, "Interested")
	require.NoError(t, err)

	f.clock.Advance(12 * time.Hour)
	_, err = f.leads.Create(f.ctx, buyer, l.ID, "Interested again")
	requireKind(t, err, KindCooldown)

	amount := decimal.NewFromInt(1500)
	sub, err := f.subscriptions.Subscribe(f.ctx, seller, l.ID, &amount)
	require.NoError(t, err)
	upgraded := f.reload(l.ID)
	assert.Equal(t, models.TierPremium, upgraded.Tier)
	assert.Equal(t, f.clock.Now().Add(90*24*time.Hour), *upgraded.ExpiryDate)
	assert.Equal(t, sub.EndDate, *upgraded.ExpiryDate)

	f.clock.Advance(91 * 24 * time.Hour)
	res, err := f.sweeper.Sweep(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Expired)
	assert.Equal(t, models.ListingExpired, f.reload(l.ID).Status)

	sent := f.mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "s@example.com", sent[0].To)
	assert.Contains(t, sent[0].Body, "\"L\"")
}
