package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds the service configuration, parsed from environment variables.
type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:":8080"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE"  envDefault:"budget_tracker"`

	// ConfirmationURL is the public base of the confirmation endpoint; the
	// token is appended as a query parameter in the email link.
	ConfirmationURL string `env:"APP_CONFIRMATION_URL"`

	Token TokenConfig `envPrefix:"TOKEN_"`

	// ConfirmationTokenTTL is intentionally longer than ResendThrottleWindow
	// so a user can always obtain a fresh link before the old one expires.
	ConfirmationTokenTTL time.Duration `env:"CONFIRMATION_TOKEN_TTL" envDefault:"15m"`
	ResendThrottleWindow time.Duration `env:"RESEND_THROTTLE_WINDOW" envDefault:"10m"`
}

// TokenConfig holds session token signing configuration.
type TokenConfig struct {
	Secret    string        `env:"SECRET"`
	Issuer    string        `env:"ISSUER"     envDefault:"budget-tracker-api"`
	Audience  string        `env:"AUDIENCE"   envDefault:"budget-tracker-api"`
	ExpiresIn time.Duration `env:"EXPIRES_IN" envDefault:"1h"`
}

// NewConfig creates a Config instance from environment variables.
func NewConfig(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate service configuration")
	}

	return &cfg
}

// validate checks if the service configuration is valid.
func (c *Config) validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("missing MONGO_URI environment variable")
	}
	if c.Token.Secret == "" {
		return fmt.Errorf("missing TOKEN_SECRET environment variable")
	}
	if c.ConfirmationURL == "" {
		return fmt.Errorf("missing APP_CONFIRMATION_URL environment variable")
	}
	if c.ResendThrottleWindow >= c.ConfirmationTokenTTL {
		return fmt.Errorf("resend throttle window must be shorter than the confirmation token TTL")
	}

	return nil
}
