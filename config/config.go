package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Port    string
	GinMode string

	DBDriver string
	DBDSN    string

	JWTSecret []byte
	TokenTTL  time.Duration

	CORSOrigin string
	LogLevel   string

	PlaceholderImageBase string

	PaymentVerifierURL string
	PaymentTimeout     time.Duration

	AMQPURL      string
	AMQPExchange string

	SeedCatalog       bool
	SeedAdminEmail    string
	SeedAdminPassword string

	// StrictDeliveryReads limits delivery users to orders assigned to them.
	StrictDeliveryReads bool
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// Load reads the configuration from the environment, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:                 getEnv("PORT", "8080"),
		GinMode:              getEnv("GIN_MODE", "debug"),
		DBDriver:             strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBDSN:                getEnv("DB_DSN", "foodiehub.db"),
		JWTSecret:            []byte(getEnv("JWT_SECRET", "foodiehub_dev_secret")),
		CORSOrigin:           getEnv("CORS_ORIGIN", "*"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		PlaceholderImageBase: getEnv("PLACEHOLDER_IMAGE_BASE", ""),
		PaymentVerifierURL:   strings.TrimRight(getEnv("PAYMENT_VERIFIER_URL", ""), "/"),
		AMQPURL:              getEnv("AMQP_URL", ""),
		AMQPExchange:         getEnv("AMQP_EXCHANGE", "foodiehub.orders"),
		SeedAdminEmail:       getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:    getEnv("SEED_ADMIN_PASSWORD", ""),
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.PaymentTimeout, err = getDuration("PAYMENT_TIMEOUT", 3*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SeedCatalog, err = getBool("SEED_CATALOG", true); err != nil {
		return Config{}, err
	}
	if cfg.StrictDeliveryReads, err = getBool("STRICT_DELIVERY_READS", false); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DBDriver != DriverSQLite && c.DBDriver != DriverPostgres {
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DBDriver)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.GinMode)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if len(c.JWTSecret) == 0 {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if (c.SeedAdminEmail == "") != (c.SeedAdminPassword == "") {
		return fmt.Errorf("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set together")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// NewLogger builds the process logger.
func NewLogger(c Config) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
