package controller

import (
	"bizmarket/middleware"
	"bizmarket/models"
	"bizmarket/services"
	"bizmarket/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type LeadController struct {
	Leads  *services.LeadService
	Logger *logrus.Entry
}

func NewLeadController(leads *services.LeadService, logger *logrus.Entry) *LeadController {
	return &LeadController{
		Leads:  leads,
		Logger: logger,
	}
}

// CreateLead records a buyer enquiry, at most one per listing per cooldown window.
func (lc *LeadController) CreateLead(c *fiber.Ctx) error {
	var input struct {
		ListingID uint   `json:"listingId" validate:"required"`
		Message   string `json:"message" validate:"max=5000"`
	}
	if msg := bind(c, &input); msg != "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg)
	}

	lead, err := lc.Leads.Create(c.UserContext(), middleware.CurrentActor(c), input.ListingID, input.Message)
	if err != nil {
		return handleServiceError(c, lc.Logger, err)
	}

	lc.Logger.WithFields(logrus.Fields{"lead_id": lead.ID, "listing_id": lead.ListingID}).Info("lead created")
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(lead))
}

// MyEnquiries lists the calling buyer's leads.
func (lc *LeadController) MyEnquiries(c *fiber.Ctx) error {
	leads, err := lc.Leads.ForBuyer(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return handleServiceError(c, lc.Logger, err)
	}
	return c.JSON(utils.ListResponse(leads, len(leads)))
}

// AgentLeads lists the leads on listings assigned to the calling agent.
func (lc *LeadController) AgentLeads(c *fiber.Ctx) error {
	leads, err := lc.Leads.ForAgent(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return handleServiceError(c, lc.Logger, err)
	}
	return c.JSON(utils.ListResponse(leads, len(leads)))
}

func (lc *LeadController) UpdateLeadStatus(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid lead ID")
	}

	var input struct {
		Status models.LeadStatus `json:"status" validate:"required"`
	}
	if msg := bind(c, &input); msg != "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg)
	}

	lead, err := lc.Leads.UpdateStatus(c.UserContext(), middleware.CurrentActor(c), id, input.Status)
	if err != nil {
		return handleServiceError(c, lc.Logger, err)
	}
	return c.JSON(utils.SuccessResponse(lead))
}
