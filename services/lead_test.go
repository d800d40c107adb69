package services

import (
	"testing"
	"time"

	"bizmarket/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadCooldown(t *testing.T) {
	f := newFixture(t)
	seller := f.user(models.RoleSeller, "seller@example.com")
	buyer := f.user(models.RoleBuyer, "buyer@example.com")
	l := f.listing(seller, "Cafe")
	other := f.listing(seller, "Gym")

	first, err := f.leads.Create(f.ctx, buyer, l.ID, "Is it still available?")
	require.NoError(t, err)
	assert.Equal(t, models.LeadNew, first.Status)

	f.clock.Advance(24 * time.Hour)
	_, err = f.leads.Create(f.ctx, buyer, l.ID, "Following up")
	requireKind(t, err, KindCooldown)

	// other listings are not affected
	_, err = f.leads.Create(f.ctx, buyer, other.ID, "And this one?")
	require.NoError(t, err)

	// exactly seven days after the first lead is still inside the window
	f.clock.Advance(6 * 24 * time.Hour)
	_, err = f.leads.Create(f.ctx, buyer, l.ID, "Boundary")
	requireKind(t, err, KindCooldown)

	f.clock.Advance(time.Second)
	_, err = f.leads.Create(f.ctx, buyer, l.ID, "A week later")
	require.NoError(t, err)

	mine, err := f.leads.ForBuyer(f.ctx, buyer)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, "A week later", mine[0].Message)
	assert.Equal(t, "Cafe", mine[0].Listing.Title)
	assert.Nil(t, mine[0].Buyer)
}

func TestCreateLeadValidation(t *testing.T) {
	f := newFixture(t)
	seller := f.user(models.RoleSeller, "seller@example.com")
	buyer := f.user(models.RoleBuyer, "buyer@example.com")
	l := f.listing(seller, "Cafe")

	_, err := f.leads.Create(f.ctx, buyer, 999, "hello")
	requireKind(t, err, KindNotFound)

	_, err = f.leads.Create(f.ctx, buyer, l.ID, "   ")
	requireKind(t, err, KindValidation)

	_, err = f.leads.Create(f.ctx, seller, l.ID, "hello")
	requireKind(t, err, KindForbidden)
}

func TestLeadRoutingAndStatus(t *testing.T) {
	f := newFixture(t)
	seller := f.user(models.RoleSeller, "seller@example.com")
	agent := f.user(models.RoleAgent, "agent@example.com")
	other := f.user(models.RoleAgent, "other@example.com")
	buyer := f.user(models.RoleBuyer, "buyer@example.com")
	l := f.listing(seller, "Cafe")
	_, err := f.assignment.Assign(f.ctx, l.ID, agent.UserID)
	require.NoError(t, err)

	lead, err := f.leads.Create(f.ctx, buyer, l.ID, "interested")
	require.NoError(t, err)

	routed, err := f.leads.ForAgent(f.ctx, agent)
	require.NoError(t, err)
	require.Len(t, routed, 1)
	require.NotNil(t, routed[0].Buyer)
	assert.Equal(t, "buyer@example.com", routed[0].Buyer.Email)
	assert.Equal(t, l.ID, routed[0].Listing.ID)

	none, err := f.leads.ForAgent(f.ctx, other)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.leads.UpdateStatus(f.ctx, other, lead.ID, models.LeadContacted)
	requireKind(t, err, KindForbidden)

	_, err = f.leads.UpdateStatus(f.ctx, agent, 999, models.LeadContacted)
	requireKind(t, err, KindNotFound)

	_, err = f.leads.UpdateStatus(f.ctx, agent, lead.ID, "archived")
	requireKind(t, err, KindValidation)

	// statuses are free-form: closed straight from new, then back to new
	for _, status := range []models.LeadStatus{models.LeadClosed, models.LeadNew, models.LeadContacted} {
		got, err := f.leads.UpdateStatus(f.ctx, agent, lead.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
	}

	t.Run("follows reassignment", func(t *testing.T) {
		_, err := f.assignment.Assign(f.ctx, l.ID, other.UserID)
		require.NoError(t, err)

		_, err = f.leads.UpdateStatus(f.ctx, agent, lead.ID, models.LeadClosed)
		requireKind(t, err, KindForbidden)

		routed, err := f.leads.ForAgent(f.ctx, other)
		require.NoError(t, err)
		assert.Len(t, routed, 1)
	})
}
