package controller

import (
	"time"

	"bizmarket/middleware"
	"bizmarket/models"
	"bizmarket/services"
	"bizmarket/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type RegisterRequest struct {
	Name             string                 `json:"name" validate:"required,max=120"`
	Email            string                 `json:"email" validate:"required,email"`
	Password         string                 `json:"password" validate:"required,min=8"`
	Role             models.Role            `json:"role" validate:"required,oneof=buyer seller"`
	Mobile           *string                `json:"mobile" validate:"omitempty,max=32"`
	FinancialMeans   *models.FinancialMeans `json:"financial_means"`
	AgreedCommission bool                   `json:"agreed_commission"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthController struct {
	Accounts *services.AccountService
	TokenTTL time.Duration
	Logger   *logrus.Entry
}

func NewAuthController(accounts *services.AccountService, tokenTTL time.Duration, logger *logrus.Entry) *AuthController {
	return &AuthController{
		Accounts: accounts,
		TokenTTL: tokenTTL,
		Logger:   logger,
	}
}

// Register creates a pending buyer or seller account.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if msg := bind(c, &req); msg != "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg)
	}

	user, err := ac.Accounts.Register(c.UserContext(), services.RegisterInput{
		Name:             req.Name,
		Email:            req.Email,
		Password:         req.Password,
		Role:             req.Role,
		Mobile:           req.Mobile,
		FinancialMeans:   req.FinancialMeans,
		AgreedCommission: req.AgreedCommission,
	})
	if err != nil {
		return handleServiceError(c, ac.Logger, err)
	}

	ac.Logger.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("account registered")
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(user))
}

// Login exchanges credentials for a bearer token, also set as the access_token cookie.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if msg := bind(c, &req); msg != "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg)
	}

	token, user, err := ac.Accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return handleServiceError(c, ac.Logger, err)
	}

	cookie := new(fiber.Cookie)
	cookie.Name = middleware.AccessTokenCookie
	cookie.Value = token
	cookie.Expires = time.Now().Add(ac.TokenTTL)
	cookie.HTTPOnly = true
	cookie.Secure = true
	cookie.SameSite = "Lax"
	c.Cookie(cookie)

	return c.JSON(utils.SuccessResponse(AuthResponse{Token: token, User: user}))
}

func (ac *AuthController) Me(c *fiber.Ctx) error {
	user, err := ac.Accounts.Me(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return handleServiceError(c, ac.Logger, err)
	}
	return c.JSON(utils.SuccessResponse(user))
}
