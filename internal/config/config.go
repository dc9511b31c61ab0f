// Package config loads the application configuration from environment
// variables. envconfig maps variables onto the struct fields; the decimal
// bonus rates are parsed manually since envconfig has no decimal decoder.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config holds ALL application settings.
type Config struct {
	// --- Database ---
	// Inside Docker "localhost" is almost always wrong. The default is the
	// docker-compose service name; override DB_HOST=localhost for local runs.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"referral"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"referral_backend"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Africa/Lagos"`

	// --- HTTP server ---
	HTTPPort            int           `envconfig:"HTTP_PORT" default:"8080"`
	HTTPShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`

	// --- Auth ---
	JWTSecret        string        `envconfig:"JWT_SECRET" required:"true"`
	JWTRefreshSecret string        `envconfig:"JWT_REFRESH_SECRET" required:"true"`
	JWTAccessExpiry  time.Duration `envconfig:"JWT_ACCESS_EXPIRY" default:"15m"`
	JWTRefreshExpiry time.Duration `envconfig:"JWT_REFRESH_EXPIRY" default:"168h"`

	// --- Bonus engine ---
	// Flat rate credited per approved direct referral, and per pair of
	// approved referrals. Parsed into the decimal fields below.
	BonusDirectReferralRateRaw string `envconfig:"BONUS_DIRECT_REFERRAL_RATE" default:"30000.00"`
	BonusMatchingPairRateRaw   string `envconfig:"BONUS_MATCHING_PAIR_RATE" default:"3000.00"`

	BonusDirectReferralRate decimal.Decimal `envconfig:"-"`
	BonusMatchingPairRate   decimal.Decimal `envconfig:"-"`

	// --- Payment gateway ---
	GatewayBaseURL   string        `envconfig:"GATEWAY_BASE_URL" default:"https://api.paystack.co"`
	GatewaySecretKey string        `envconfig:"GATEWAY_SECRET_KEY" required:"true"`
	GatewayTimeout   time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"15s"`
	WalletCurrency   string        `envconfig:"WALLET_CURRENCY" default:"NGN"`

	// --- Jobs ---
	// How old a pending deposit must be before the hourly sweep re-verifies
	// it against the gateway.
	DepositSweepMinAge time.Duration `envconfig:"DEPOSIT_SWEEP_MIN_AGE" default:"30m"`

	// --- Bootstrap admin ---
	AdminEmail        string `envconfig:"ADMIN_EMAIL" default:""`
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" default:""`
}

// DatabaseDSN returns the PostgreSQL connection string in DSN form.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort)
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if !c.BonusDirectReferralRate.IsPositive() {
		return fmt.Errorf("BONUS_DIRECT_REFERRAL_RATE must be > 0")
	}
	if !c.BonusMatchingPairRate.IsPositive() {
		return fmt.Errorf("BONUS_MATCHING_PAIR_RATE must be > 0")
	}
	if (c.AdminEmail == "") != (c.AdminPasswordHash == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD_HASH must be set together")
	}
	return nil
}

// Load reads the environment and fills the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}

	var err error
	cfg.BonusDirectReferralRate, err = decimal.NewFromString(cfg.BonusDirectReferralRateRaw)
	if err != nil {
		return nil, fmt.Errorf("BONUS_DIRECT_REFERRAL_RATE parse: %w", err)
	}
	cfg.BonusMatchingPairRate, err = decimal.NewFromString(cfg.BonusMatchingPairRateRaw)
	if err != nil {
		return nil, fmt.Errorf("BONUS_MATCHING_PAIR_RATE parse: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
