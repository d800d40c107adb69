package routes

import (
	controller "bizmarket/controllers"
	"bizmarket/middleware"
	"bizmarket/models"
	"bizmarket/store"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Auth      *controller.AuthController
	Listings  *controller.ListingController
	Leads     *controller.LeadController
	Payments  *controller.PaymentController
	Admin     *controller.AdminController
	Valuation *controller.ValuationController
}

// Setup mounts the API under /api/v1 and the health check at the root.
func Setup(app *fiber.App, users store.UserStore, jwtSecret string, ctrl Controllers, log *logrus.Entry) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	protected := middleware.Protected(users, jwtSecret)
	optional := middleware.OptionalAuth(users, jwtSecret)

	seller := middleware.RequireRoles(models.RoleSeller)
	buyer := middleware.RequireRoles(models.RoleBuyer)
	agent := middleware.RequireRoles(models.RoleAgent)
	admin := middleware.RequireRoles(models.RoleAdmin)

	auth := api.Group("/auth")
	auth.Post("/register", ctrl.Auth.Register)
	auth.Post("/login", ctrl.Auth.Login)
	auth.Get("/me", protected, ctrl.Auth.Me)

	// my-listings is registered before :id so it is not parsed as an ID
	listings := api.Group("/listings")
	listings.Get("/", ctrl.Listings.SearchListings)
	listings.Post("/", protected, seller, ctrl.Listings.CreateListing)
	listings.Get("/my-listings", protected, seller, ctrl.Listings.MyListings)
	listings.Get("/:id", optional, ctrl.Listings.GetListing)
	listings.Post("/:id/financing", protected, seller, ctrl.Listings.RequestFinancing)

	leads := api.Group("/leads", protected, buyer)
	leads.Post("/", ctrl.Leads.CreateLead)
	leads.Get("/my-enquiries", ctrl.Leads.MyEnquiries)

	agents := api.Group("/agent", protected, agent)
	agents.Get("/leads", ctrl.Leads.AgentLeads)
	agents.Put("/leads/:id", ctrl.Leads.UpdateLeadStatus)
	agents.Get("/listings", ctrl.Listings.AgentListings)
	agents.Put("/listings/:id/deliverables", ctrl.Listings.UpdateDeliverables)

	payments := api.Group("/payments", protected, seller)
	payments.Post("/subscribe", ctrl.Payments.Subscribe)
	payments.Get("/my-subscriptions", ctrl.Payments.MySubscriptions)

	admins := api.Group("/admin", protected, admin)
	admins.Get("/stats", ctrl.Admin.GetStats)
	admins.Get("/users", ctrl.Admin.GetUsers)
	admins.Put("/users/:id/status", ctrl.Admin.UpdateUserStatus)
	admins.Get("/pending-listings", ctrl.Admin.PendingListings)
	admins.Post("/create-agent", ctrl.Admin.CreateAgent)
	admins.Post("/assign-agent", ctrl.Admin.AssignAgent)

	api.Post("/valuation", ctrl.Valuation.RequestValuation)

	log.Info("routes initialized")
}
