package controller

import (
	"bizmarket/middleware"
	"bizmarket/models"
	"bizmarket/services"
	"bizmarket/store"
	"bizmarket/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CreateListingRequest struct {
	Title             string              `json:"title" validate:"max=200"`
	Industry          string              `json:"industry" validate:"max=100"`
	Region            string              `json:"region" validate:"max=100"`
	Price             *decimal.Decimal    `json:"price"`
	NetProfit         decimal.NullDecimal `json:"net_profit"`
	Turnover          decimal.NullDecimal `json:"turnover"`
	LegalBusinessName string              `json:"legal_business_name" validate:"max=200"`
	FullAddress       string              `json:"full_address" validate:"max=500"`
	OwnerName         string              `json:"owner_name" validate:"max=120"`
	Tier              models.Tier         `json:"tier" validate:"omitempty,oneof=basic premium"`
}

type ListingController struct {
	Listings *services.ListingService
	Logger   *logrus.Entry
}

func NewListingController(listings *services.ListingService, logger *logrus.Entry) *ListingController {
	return &ListingController{
		Listings: listings,
		Logger:   logger,
	}
}

// CreateListing stores a new pending listing for the calling seller.
func (lc *ListingController) CreateListing(c *fiber.Ctx) error {
	var req CreateListingRequest
	if msg := bind(c, &req); msg != "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg)
	}

	listing, err := lc.Listings.Create(c.UserContext(), middleware.CurrentActor(c), services.CreateListingInput{
		Title:             req.Title,
		Industry:          req.Industry,
		Region:            req.Region,
		Price:             req.Price,
		NetProfit:         req.NetProfit,
		Turnover:          req.Turnover,
		LegalBusinessName: req.LegalBusinessName,
		FullAddress:       req.FullAddress,
		OwnerName:         req.OwnerName,
		Tier:              req.Tier,
	})
	if err != nil {
		return handleServiceError(c, lc.Logger, err)
	}

	lc.Logger.WithFields(logrus.Fields{"listing_id": listing.ID, "seller_id": listing.SellerID}).Info("listing created")
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(listing))
}

// SearchListings returns active listings, premium first, with private fields masked.
func (lc *ListingController) SearchListings(c *fiber.Ctx) error {
	filter := store.ListingFilter{
		Location:   c.Query("location"),
		Industry:   c.Query("industry"),
		SearchTerm: c.Query("searchTerm"),
	}

	bounds := []struct {
		param string
		dst   **decimal.Decimal
	}{
		{"priceMin", &filter.PriceMin},
		{"priceMax", &filter.PriceMax},
		{"netProfitMin", &filter.NetProfitMin},
	}
	for _, b := range bounds {
		raw := c.Query(b.param)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, b.param+" must be a number")
		}
		*b.dst = &d
	}

	listings, err := lc.Listings.Search(c.UserContext(), filter)
	if err != nil {
		return handleServiceError(c, lc.Logger, err)
	}
	return c.JSON(utils.ListResponse(listings, len(listings)))
}

// GetListing returns one listing, full or masked depending on who asks.
func (lc *ListingController) GetListing(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid listing ID")
	}

	view, err := lc.Listings.Get(c.UserContext(), id, middleware.CurrentActor(c))
	if err != nil {
		return handleServiceError(c, lc.Logger, err)
	}
	return c.JSON(utils.SuccessResponse(view))
}

func (lc *ListingController) MyListings(c *fiber.Ctx) error {
	listings, err := lc.Listings.MyListings(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return handleServiceError(c, lc.Logger, err)
	}
	return c.JSON(utils.ListResponse(listings, len(listings)))
}

func (lc *ListingController) AgentListings(c *fiber.Ctx) error {
	listings, err := lc.Listings.AgentListings(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return handleServiceError(c, lc.Logger, err)
	}
	return c.JSON(utils.ListResponse(listings, len(listings)))
}

// UpdateDeliverables flips the deliverable flags of a listing the agent manages.
func (lc *ListingController) UpdateDeliverables(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid listing ID")
	}

	var update models.DeliverablesUpdate
	if msg := bind(c, &update); msg != "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg)
	}

	listing, err := lc.Listings.UpdateDeliverables(c.UserContext(), middleware.CurrentActor(c), id, update)
	if err != nil {
		return handleServiceError(c, lc.Logger, err)
	}
	return c.JSON(utils.SuccessResponse(listing))
}

func (lc *ListingController) RequestFinancing(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid listing ID")
	}

	listing, err := lc.Listings.RequestFinancing(c.UserContext(), middleware.CurrentActor(c), id)
	if err != nil {
		return handleServiceError(c, lc.Logger, err)
	}

	lc.Logger.WithField("listing_id", id).Info("financing requested")
	return c.JSON(utils.SuccessResponse(listing))
}
