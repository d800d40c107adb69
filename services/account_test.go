package services

import (
	"testing"
	"time"

	"bizmarket/models"
	"bizmarket/store"
	"bizmarket/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	accounts := NewAccountService(f.store, testSecret, time.Hour, quietLog())
	means := models.Means100KTo1M

	buyer, err := accounts.Register(f.ctx, RegisterInput{
		Name: "Buyer", Email: " Buyer@Example.com ", Password: "hunter22!", Role: models.RoleBuyer, FinancialMeans: &means,
	})
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", buyer.Email)
	assert.Equal(t, models.AccountPending, buyer.AccountStatus)
	assert.NotEqual(t, "hunter22!", buyer.PasswordHash)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := accounts.Register(f.ctx, RegisterInput{Name: "B", Email: "buyer@example.com", Password: "hunter22!", Role: models.RoleBuyer})
		requireKind(t, err, KindValidation)
	})

	t.Run("sellers must accept the commission", func(t *testing.T) {
		_, err := accounts.Register(f.ctx, RegisterInput{Name: "S", Email: "s@example.com", Password: "hunter22!", Role: models.RoleSeller})
		requireKind(t, err, KindInvalidState)
	})

	t.Run("no self-service agents or admins", func(t *testing.T) {
		_, err := accounts.Register(f.ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "hunter22!", Role: models.RoleAdmin})
		requireKind(t, err, KindValidation)
	})

	t.Run("bad email", func(t *testing.T) {
		_, err := accounts.Register(f.ctx, RegisterInput{Name: "A", Email: "not-an-email", Password: "hunter22!", Role: models.RoleBuyer})
		requireKind(t, err, KindValidation)
	})

	t.Run("throwaway domain", func(t *testing.T) {
		_, err := accounts.Register(f.ctx, RegisterInput{Name: "T", Email: "t@yopmail.com", Password: "hunter22!", Role: models.RoleBuyer})
		requireKind(t, err, KindValidation)
	})

	t.Run("login issues a token carrying the role", func(t *testing.T) {
		token, user, err := accounts.Login(f.ctx, "BUYER@example.com", "hunter22!")
		require.NoError(t, err)
		assert.Equal(t, buyer.ID, user.ID)

		claims, err := utils.ParseJWTToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, buyer.ID, claims.UserID)
		assert.Equal(t, models.RoleBuyer, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := accounts.Login(f.ctx, "buyer@example.com", "wrong")
		requireKind(t, err, KindUnauthorized)

		_, _, err = accounts.Login(f.ctx, "nobody@example.com", "wrong")
		requireKind(t, err, KindUnauthorized)
	})
}

func TestAdminStatsAndUsers(t *testing.T) {
	f := newFixture(t)
	seller := f.user(models.RoleSeller, "seller@example.com")
	agent := f.user(models.RoleAgent, "agent@example.com")
	pending := &models.User{Name: "P", Email: "p@example.com", PasswordHash: "x", Role: models.RoleSeller, AccountStatus: models.AccountPending}
	require.NoError(t, f.store.CreateUser(f.ctx, pending))

	for _, title := range []string{"A", "B", "C"} {
		l := f.listing(seller, title)
		if title != "C" {
			_, err := f.subscriptions.Subscribe(f.ctx, seller, l.ID, nil)
			require.NoError(t, err)
		}
		_, err := f.assignment.Assign(f.ctx, l.ID, agent.UserID)
		require.NoError(t, err)
	}
	f.listing(seller, "D")

	stats, err := f.admin.Stats(f.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.PendingApprovals)
	assert.EqualValues(t, 3, stats.ActiveListings)
	assert.EqualValues(t, 1, stats.TotalAgents)
	assert.True(t, stats.MonthlyRevenue.Equal(decimal.NewFromInt(998)))

	pendingListings, err := f.admin.PendingListings(f.ctx)
	require.NoError(t, err)
	require.Len(t, pendingListings, 1)
	assert.Equal(t, "seller@example.com", pendingListings[0].SellerEmail)

	approved, err := f.admin.SetUserStatus(f.ctx, pending.ID, models.AccountActive)
	require.NoError(t, err)
	assert.True(t, approved.IsActive())

	_, err = f.admin.SetUserStatus(f.ctx, pending.ID, "banned")
	requireKind(t, err, KindValidation)

	_, err = f.admin.SetUserStatus(f.ctx, 999, models.AccountActive)
	requireKind(t, err, KindNotFound)

	sellers, err := f.admin.Users(f.ctx, store.UserFilter{Role: models.RoleSeller})
	require.NoError(t, err)
	assert.Len(t, sellers, 2)
}

func TestCreateAgent(t *testing.T) {
	f := newFixture(t)

	agent, err := f.admin.CreateAgent(f.ctx, "Alex", "Alex@Example.com", "s3cure-pass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAgent, agent.Role)
	assert.True(t, agent.IsActive())
	assert.True(t, utils.CheckPassword(agent.PasswordHash, "s3cure-pass"))

	_, err = f.admin.CreateAgent(f.ctx, "Alex", "alex@example.com", "s3cure-pass")
	requireKind(t, err, KindValidation)

	_, err = f.admin.CreateAgent(f.ctx, "Alex", "alex2@example.com", "short")
	requireKind(t, err, KindValidation)
}

func TestSubmitValuation(t *testing.T) {
	f := newFixture(t)
	valuations := NewValuationService(f.store)

	v, err := valuations.Submit(f.ctx, ValuationInput{ContactEmail: "owner@example.com", BusinessDetails: "Cafe, 3 years, AED 1.2M turnover"})
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", v.ContactName)
	assert.Equal(t, models.ValuationNew, v.Status)

	_, err = valuations.Submit(f.ctx, ValuationInput{ContactEmail: "owner@example.com"})
	requireKind(t, err, KindValidation)
}
