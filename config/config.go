package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bizmarket/models"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type SMTPConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"-"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
}

type AdminConfig struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

type Config struct {
	Environment string `json:"environment"`
	LogLevel    string `json:"log_level"`
	ServerPort  string `json:"server_port"`

	DBHost         string `json:"db_host"`
	DBPort         string `json:"db_port"`
	DBUser         string `json:"db_user"`
	DBPassword     string `json:"-"`
	DBName         string `json:"db_name"`
	DBSSLMode      string `json:"db_ssl_mode"`
	DBMaxIdleConns int    `json:"db_max_idle_conns"`
	DBMaxOpenConns int    `json:"db_max_open_conns"`

	JWTSecret string        `json:"-"`
	JWTTTL    time.Duration `json:"jwt_ttl"`

	Redis           RedisConfig   `json:"redis"`
	RateLimitMax    int           `json:"rate_limit_max"`
	RateLimitWindow time.Duration `json:"rate_limit_window"`
	CORSOrigins     []string      `json:"cors_origins"`

	SMTP          SMTPConfig    `json:"smtp"`
	NotifyTimeout time.Duration `json:"notify_timeout"`
	SentryDSN     string        `json:"-"`

	PremiumFee          decimal.Decimal `json:"premium_fee"`
	PremiumCurrency     string          `json:"premium_currency"`
	PremiumMonthlyValue decimal.Decimal `json:"premium_monthly_value"`
	LeadCooldown        time.Duration   `json:"lead_cooldown"`

	ExpirySweepSchedule  string `json:"expiry_sweep_schedule"`
	ExpirySweepBatchSize int    `json:"expiry_sweep_batch_size"`

	Admin AdminConfig `json:"admin"`
}

// LoadConfig reads the environment, after merging a .env file when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ServerPort:  getEnv("SERVER_PORT", "5000"),

		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "bizmarket"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvAsDuration("JWT_TTL", 30*24*time.Hour),

		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 1000),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		CORSOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),

		SMTP: SMTPConfig{
			Host:      getEnv("SMTP_HOST", ""),
			Port:      getEnvAsInt("SMTP_PORT", 587),
			Username:  getEnv("SMTP_USERNAME", ""),
			Password:  getEnv("SMTP_PASSWORD", ""),
			FromEmail: getEnv("FROM_EMAIL", "no-reply@bizmarket.local"),
			FromName:  getEnv("FROM_NAME", "Business Marketplace"),
		},
		NotifyTimeout: getEnvAsDuration("NOTIFY_TIMEOUT", 10*time.Second),
		SentryDSN:     getEnv("SENTRY_DSN", ""),

		PremiumCurrency: getEnv("PREMIUM_CURRENCY", "AED"),
		LeadCooldown:    getEnvAsDuration("LEAD_COOLDOWN", 7*24*time.Hour),

		ExpirySweepSchedule:  getEnv("EXPIRY_SWEEP_SCHEDULE", "0 0 * * *"),
		ExpirySweepBatchSize: getEnvAsInt("EXPIRY_SWEEP_BATCH_SIZE", 200),

		Admin: AdminConfig{
			Name:     getEnv("ADMIN_NAME", "Administrator"),
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	var err error
	if cfg.PremiumFee, err = getEnvAsDecimal("PREMIUM_FEE", "1500"); err != nil {
		return nil, err
	}
	if cfg.PremiumMonthlyValue, err = getEnvAsDecimal("PREMIUM_MONTHLY_VALUE", "499"); err != nil {
		return nil, err
	}

	if cfg.DBPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Environment == "production" && len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	if cfg.Admin.Email != "" && len(cfg.Admin.Password) < 8 {
		return nil, fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters when ADMIN_EMAIL is set")
	}

	return cfg, nil
}

// DSN is the Postgres connection string built from the DB_* settings.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// ConnectDB opens the pool, checks it and migrates the schema.
func ConnectDB(cfg *Config, log *logrus.Entry) (*gorm.DB, error) {
	dsn := cfg.DSN()
	log.WithField("dsn", maskPassword(dsn)).Info("Connecting to database")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get DB instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	log.Info("Running database migration")
	if err := models.Migrate(db); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return db, nil
}

// Log writes the non-secret settings.
func (c *Config) Log(log *logrus.Entry) {
	log.WithFields(logrus.Fields{
		"environment":   c.Environment,
		"port":          c.ServerPort,
		"database":      fmt.Sprintf("%s@%s:%s/%s", c.DBUser, c.DBHost, c.DBPort, c.DBName),
		"redis":         c.Redis.Enabled,
		"smtp":          c.SMTP.Host != "",
		"sentry":        c.SentryDSN != "",
		"sweep":         c.ExpirySweepSchedule,
		"lead_cooldown": c.LeadCooldown.String(),
	}).Info("Loaded configuration")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func getEnvAsList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsDecimal(key, fallback string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, fallback))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return d, nil
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}
