package controller

import (
	"bizmarket/models"
	"bizmarket/services"
	"bizmarket/store"
	"bizmarket/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AdminController struct {
	Admin      *services.AdminService
	Assignment *services.AssignmentService
	Logger     *logrus.Entry
}

func NewAdminController(admin *services.AdminService, assignment *services.AssignmentService, logger *logrus.Entry) *AdminController {
	return &AdminController{
		Admin:      admin,
		Assignment: assignment,
		Logger:     logger,
	}
}

// GetStats returns the dashboard counters.
func (ac *AdminController) GetStats(c *fiber.Ctx) error {
	stats, err := ac.Admin.Stats(c.UserContext())
	if err != nil {
		return handleServiceError(c, ac.Logger, err)
	}
	return c.JSON(utils.SuccessResponse(stats))
}

// GetUsers lists accounts, optionally filtered by role and status.
func (ac *AdminController) GetUsers(c *fiber.Ctx) error {
	users, err := ac.Admin.Users(c.UserContext(), store.UserFilter{
		Role:   models.Role(c.Query("role")),
		Status: models.AccountStatus(c.Query("status")),
	})
	if err != nil {
		return handleServiceError(c, ac.Logger, err)
	}
	return c.JSON(utils.ListResponse(users, len(users)))
}

func (ac *AdminController) UpdateUserStatus(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	var req struct {
		Status models.AccountStatus `json:"status" validate:"required,oneof=pending active rejected"`
	}
	if msg := bind(c, &req); msg != "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg)
	}

	user, err := ac.Admin.SetUserStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return handleServiceError(c, ac.Logger, err)
	}

	ac.Logger.WithFields(logrus.Fields{"user_id": id, "status": req.Status}).Info("account status changed")
	return c.JSON(utils.SuccessResponse(user))
}

func (ac *AdminController) PendingListings(c *fiber.Ctx) error {
	listings, err := ac.Admin.PendingListings(c.UserContext())
	if err != nil {
		return handleServiceError(c, ac.Logger, err)
	}
	return c.JSON(utils.ListResponse(listings, len(listings)))
}

// CreateAgent provisions an active agent account.
func (ac *AdminController) CreateAgent(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name" validate:"required,max=120"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}
	if msg := bind(c, &req); msg != "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg)
	}

	agent, err := ac.Admin.CreateAgent(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return handleServiceError(c, ac.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(agent))
}

// AssignAgent assigns an agent to a listing, activating it when still pending.
func (ac *AdminController) AssignAgent(c *fiber.Ctx) error {
	var req struct {
		ListingID uint `json:"listingId" validate:"required"`
		AgentID   uint `json:"agentId" validate:"required"`
	}
	if msg := bind(c, &req); msg != "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg)
	}

	listing, err := ac.Assignment.Assign(c.UserContext(), req.ListingID, req.AgentID)
	if err != nil {
		return handleServiceError(c, ac.Logger, err)
	}

	utils.LogEvent("agent_assigned", map[string]interface{}{
		"listing_id": listing.ID,
		"agent_id":   req.AgentID,
		"status":     listing.Status,
	})
	return c.JSON(utils.SuccessResponse(listing))
}
