package controller

import (
	"bizmarket/middleware"
	"bizmarket/services"
	"bizmarket/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type PaymentController struct {
	Subscriptions *services.SubscriptionService
	Logger        *logrus.Entry
}

func NewPaymentController(subscriptions *services.SubscriptionService, logger *logrus.Entry) *PaymentController {
	return &PaymentController{
		Subscriptions: subscriptions,
		Logger:        logger,
	}
}

// Subscribe upgrades one of the seller's listings to premium. The amount is
// optional and defaults to the configured premium fee.
func (pc *PaymentController) Subscribe(c *fiber.Ctx) error {
	var req struct {
		ListingID uint             `json:"listingId" validate:"required"`
		Amount    *decimal.Decimal `json:"amount"`
	}
	if msg := bind(c, &req); msg != "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg)
	}

	sub, err := pc.Subscriptions.Subscribe(c.UserContext(), middleware.CurrentActor(c), req.ListingID, req.Amount)
	if err != nil {
		return handleServiceError(c, pc.Logger, err)
	}

	utils.LogEvent("subscription_paid", map[string]interface{}{
		"listing_id":     sub.ListingID,
		"transaction_id": sub.TransactionID,
		"amount":         sub.Amount.String(),
	})
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(sub))
}

func (pc *PaymentController) MySubscriptions(c *fiber.Ctx) error {
	subs, err := pc.Subscriptions.MySubscriptions(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return handleServiceError(c, pc.Logger, err)
	}
	return c.JSON(utils.ListResponse(subs, len(subs)))
}
