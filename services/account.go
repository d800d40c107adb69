package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"bizmarket/models"
	"bizmarket/store"
	"bizmarket/utils"

	"github.com/badoux/checkmail"
	"github.com/sirupsen/logrus"
)

// RegisterInput is a self-service sign-up.
type RegisterInput struct {
	Name             string
	Email            string
	Password         string
	Role             models.Role
	Mobile           *string
	FinancialMeans   *models.FinancialMeans
	AgreedCommission bool
}

// AccountService is the thin identity collaborator: sign-up, login and token issuance.
type AccountService struct {
	store     store.UserStore
	jwtSecret string
	jwtTTL    time.Duration
	log       *logrus.Entry
}

func NewAccountService(st store.UserStore, jwtSecret string, jwtTTL time.Duration, log *logrus.Entry) *AccountService {
	return &AccountService{store: st, jwtSecret: jwtSecret, jwtTTL: jwtTTL, log: log}
}

// Register creates a pending buyer or seller account.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Role != models.RoleBuyer && in.Role != models.RoleSeller {
		return nil, newError(KindValidation, "role must be buyer or seller")
	}
	if in.Role == models.RoleSeller && !in.AgreedCommission {
		return nil, newError(KindInvalidState, "sellers must agree to the 1% commission fee")
	}
	if in.FinancialMeans != nil {
		switch *in.FinancialMeans {
		case models.MeansUnder100K, models.Means100KTo1M, models.MeansOver1M:
		default:
			return nil, newError(KindValidation, "unknown financial means")
		}
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := utils.VerifyEmailAddress(email); err != nil {
		if errors.Is(err, checkmail.ErrBadFormat) {
			return nil, newError(KindValidation, "invalid email address")
		}
		return nil, newError(KindValidation, err.Error())
	}
	if len(in.Password) < 8 {
		return nil, newError(KindValidation, "password must be at least 8 characters")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, Internal("failed to hash password", err)
	}
	user := &models.User{
		Name:             strings.TrimSpace(in.Name),
		Email:            email,
		PasswordHash:     hash,
		Mobile:           in.Mobile,
		Role:             in.Role,
		AccountStatus:    models.AccountPending,
		FinancialMeans:   in.FinancialMeans,
		AgreedCommission: in.AgreedCommission,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, storeError(err, "user with this email")
	}

	utils.LogEvent("user_registered", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}

// Login checks credentials and issues a token. Accounts that are not active
// can still log in; the identity gate refuses them on protected routes.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.store.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, newError(KindUnauthorized, "invalid credentials")
		}
		return "", nil, storeError(err, "user")
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return "", nil, newError(KindUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateJWTToken(user, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return "", nil, Internal("failed to issue token", err)
	}
	return token, user, nil
}

// Me returns the account behind an authenticated actor.
func (s *AccountService) Me(ctx context.Context, actor *models.Actor) (*models.User, error) {
	user, err := s.store.FindUser(ctx, actor.UserID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}
