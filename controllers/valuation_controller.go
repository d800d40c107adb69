package controller

import (
	"bizmarket/services"
	"bizmarket/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ValuationController struct {
	Valuations *services.ValuationService
	Logger     *logrus.Entry
}

func NewValuationController(valuations *services.ValuationService, logger *logrus.Entry) *ValuationController {
	return &ValuationController{
		Valuations: valuations,
		Logger:     logger,
	}
}

// RequestValuation is the public valuation form; no account is needed.
func (vc *ValuationController) RequestValuation(c *fiber.Ctx) error {
	var req struct {
		ContactName     string `json:"contactName" validate:"max=120"`
		ContactEmail    string `json:"contactEmail" validate:"required,email"`
		Phone           string `json:"phone" validate:"max=32"`
		BusinessDetails string `json:"businessDetails" validate:"required,max=5000"`
	}
	if msg := bind(c, &req); msg != "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg)
	}

	valuation, err := vc.Valuations.Submit(c.UserContext(), services.ValuationInput{
		ContactName:     req.ContactName,
		ContactEmail:    req.ContactEmail,
		Phone:           req.Phone,
		BusinessDetails: req.BusinessDetails,
	})
	if err != nil {
		return handleServiceError(c, vc.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(valuation))
}
