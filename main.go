package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bizmarket/config"
	controller "bizmarket/controllers"
	"bizmarket/middleware"
	"bizmarket/models"
	"bizmarket/routes"
	"bizmarket/services"
	"bizmarket/store"
	"bizmarket/utils"
	"bizmarket/worker"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

const sweepTimeout = 30 * time.Minute

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	entry := logrus.NewEntry(log).WithField("service", "bizmarket")

	cfg, err := config.LoadConfig()
	if err != nil {
		entry.WithError(err).Fatal("Failed to load configuration")
	}
	if cfg.Environment == "development" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	// utils.LogError and utils.LogEvent use the standard logger
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(log.GetLevel())
	cfg.Log(entry)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			entry.WithError(err).Warn("Sentry initialization failed")
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := config.ConnectDB(cfg, entry)
	if err != nil {
		entry.WithError(err).Fatal("Failed to connect to database")
	}
	st := store.NewGormStore(db)

	if cfg.Admin.Email != "" {
		hash, err := utils.HashPassword(cfg.Admin.Password)
		if err != nil {
			entry.WithError(err).Fatal("Failed to hash admin password")
		}
		if err := models.CreateDefaultAdmin(db, cfg.Admin.Name, cfg.Admin.Email, hash); err != nil {
			entry.WithError(err).Fatal("Failed to seed admin account")
		}
	}

	var notifier services.Notifier = utils.LogNotifier{Log: entry.WithField("component", "notifier")}
	if cfg.SMTP.Host != "" {
		notifier = utils.NewSMTPNotifier(utils.SMTPConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			FromEmail: cfg.SMTP.FromEmail,
			FromName:  cfg.SMTP.FromName,
		})
	}

	accounts := services.NewAccountService(st, cfg.JWTSecret, cfg.JWTTTL, entry.WithField("component", "accounts"))
	listings := services.NewListingService(st, entry.WithField("component", "listings"))
	leads := services.NewLeadService(st, cfg.LeadCooldown, entry.WithField("component", "leads"))
	assignment := services.NewAssignmentService(st, entry.WithField("component", "assignment"))
	subscriptions := services.NewSubscriptionService(st, cfg.PremiumFee, cfg.PremiumCurrency, entry.WithField("component", "subscriptions"))
	admin := services.NewAdminService(st, cfg.PremiumMonthlyValue, entry.WithField("component", "admin"))
	valuations := services.NewValuationService(st)
	sweeper := services.NewExpirySweeper(st, notifier, cfg.ExpirySweepBatchSize, cfg.NotifyTimeout, entry.WithField("component", "expiry"))

	limiter := middleware.RateLimitConfig{Max: cfg.RateLimitMax, Expiration: cfg.RateLimitWindow}
	if cfg.Redis.Enabled {
		redisStorage := middleware.NewRedisStorage(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisStorage.Ping(pingCtx)
		cancel()
		if err != nil {
			entry.WithError(err).Warn("Redis unavailable, rate limiting in memory")
		} else {
			limiter.Storage = redisStorage
			defer redisStorage.Close()
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "bizmarket",
		ErrorHandler: errorHandler(entry),
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSOrigins
	app.Use(middleware.CORS(corsCfg))
	app.Use(middleware.RateLimiter(limiter))

	routes.Setup(app, st, cfg.JWTSecret, routes.Controllers{
		Auth:      controller.NewAuthController(accounts, cfg.JWTTTL, entry.WithField("controller", "auth")),
		Listings:  controller.NewListingController(listings, entry.WithField("controller", "listings")),
		Leads:     controller.NewLeadController(leads, entry.WithField("controller", "leads")),
		Payments:  controller.NewPaymentController(subscriptions, entry.WithField("controller", "payments")),
		Admin:     controller.NewAdminController(admin, assignment, entry.WithField("controller", "admin")),
		Valuation: controller.NewValuationController(valuations, entry.WithField("controller", "valuation")),
	}, entry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	expiryWorker := worker.NewExpiryWorker(sweeper, cfg.ExpirySweepSchedule, sweepTimeout, entry.WithField("component", "expiry_worker"))
	if err := expiryWorker.Start(ctx); err != nil {
		entry.WithError(err).Fatal("Failed to start expiry worker")
	}

	go func() {
		<-ctx.Done()
		entry.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			entry.WithError(err).Error("Server shutdown failed")
		}
	}()

	entry.WithField("port", cfg.ServerPort).Info("Server starting")
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		entry.WithError(err).Error("Server stopped")
	}
	expiryWorker.Stop()
}

// errorHandler renders errors that escape the handlers, such as unknown routes
// and recovered panics, in the standard envelope.
func errorHandler(log *logrus.Entry) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.WithError(err).WithField("path", c.Path()).Error("unhandled error")
			utils.LogError("unhandled_error", err, map[string]interface{}{"path": c.Path()})
			return utils.ErrorResponse(c, code, "Internal server error")
		}
		return utils.ErrorResponse(c, code, err.Error())
	}
}
