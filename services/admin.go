package services

import (
	"context"
	"strings"

	"bizmarket/models"
	"bizmarket/store"
	"bizmarket/utils"

	"github.com/badoux/checkmail"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers       int64           `json:"total_users"`
	PendingApprovals int64           `json:"pending_approvals"`
	ActiveListings   int64           `json:"active_listings"`
	TotalAgents      int64           `json:"total_agents"`
	MonthlyRevenue   decimal.Decimal `json:"monthly_revenue"`
}

// AdminService covers account approval, agent onboarding and reporting.
type AdminService struct {
	store        store.Store
	monthlyValue decimal.Decimal
	log          *logrus.Entry
}

func NewAdminService(st store.Store, monthlyValue decimal.Decimal, log *logrus.Entry) *AdminService {
	return &AdminService{store: st, monthlyValue: monthlyValue, log: log}
}

// Stats counts users and listings. Revenue is an estimate: every active
// premium listing is valued at the configured monthly amount.
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	var err error

	if st.TotalUsers, err = s.store.CountUsers(ctx, store.UserFilter{}); err != nil {
		return nil, storeError(err, "users")
	}
	if st.PendingApprovals, err = s.store.CountUsers(ctx, store.UserFilter{Role: models.RoleSeller, Status: models.AccountPending}); err != nil {
		return nil, storeError(err, "users")
	}
	if st.TotalAgents, err = s.store.CountUsers(ctx, store.UserFilter{Role: models.RoleAgent}); err != nil {
		return nil, storeError(err, "users")
	}

	active := models.ListingActive
	premium := models.TierPremium
	if st.ActiveListings, err = s.store.CountListings(ctx, store.ListingCount{Status: &active}); err != nil {
		return nil, storeError(err, "listings")
	}
	activePremium, err := s.store.CountListings(ctx, store.ListingCount{Status: &active, Tier: &premium})
	if err != nil {
		return nil, storeError(err, "listings")
	}
	st.MonthlyRevenue = s.monthlyValue.Mul(decimal.NewFromInt(activePremium))

	return &st, nil
}

// Users lists accounts, newest first.
func (s *AdminService) Users(ctx context.Context, filter store.UserFilter) ([]models.User, error) {
	if filter.Role != "" && !models.ValidRole(filter.Role) {
		return nil, newError(KindValidation, "unknown role "+string(filter.Role))
	}
	if filter.Status != "" && !models.ValidAccountStatus(filter.Status) {
		return nil, newError(KindValidation, "unknown account status "+string(filter.Status))
	}
	users, err := s.store.ListUsers(ctx, filter)
	if err != nil {
		return nil, storeError(err, "users")
	}
	return users, nil
}

// SetUserStatus approves, rejects or resets an account.
func (s *AdminService) SetUserStatus(ctx context.Context, userID uint, status models.AccountStatus) (*models.User, error) {
	if !models.ValidAccountStatus(status) {
		return nil, newError(KindValidation, "status must be one of pending, active, rejected")
	}
	if err := s.store.UpdateAccountStatus(ctx, userID, status); err != nil {
		return nil, storeError(err, "user")
	}
	user, err := s.store.FindUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}

	utils.LogEvent("account_status_changed", map[string]interface{}{
		"user_id": userID,
		"status":  status,
	})
	return user, nil
}

// PendingListings lists listings waiting for an agent, oldest first.
func (s *AdminService) PendingListings(ctx context.Context) ([]models.PendingListing, error) {
	listings, err := s.store.PendingListings(ctx)
	if err != nil {
		return nil, storeError(err, "listings")
	}
	return listings, nil
}

// CreateAgent opens an active agent account.
func (s *AdminService) CreateAgent(ctx context.Context, name, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := checkmail.ValidateFormat(email); err != nil {
		return nil, newError(KindValidation, "invalid email address")
	}
	if len(password) < 8 {
		return nil, newError(KindValidation, "password must be at least 8 characters")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, Internal("failed to hash password", err)
	}
	agent := &models.User{
		Name:          strings.TrimSpace(name),
		Email:         email,
		PasswordHash:  hash,
		Role:          models.RoleAgent,
		AccountStatus: models.AccountActive,
	}
	if err := s.store.CreateUser(ctx, agent); err != nil {
		return nil, storeError(err, "user with this email")
	}

	s.log.WithField("agent_id", agent.ID).Info("Agent created")
	return agent, nil
}
