package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort     string   `env:"SERVER_PORT" envDefault:"8080"`
	DBPath         string   `env:"DB_PATH" envDefault:"db/mediation.db"`
	DBMaxOpenConns int      `env:"DB_MAX_OPEN_CONNS" envDefault:"1"`
	Environment    string   `env:"ENVIRONMENT" envDefault:"development"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	WriteRateLimit int      `env:"WRITE_RATE_LIMIT" envDefault:"60"` // Mutating requests per actor per minute, 0 disables
	// Email (Resend)
	ResendAPIKey  string `env:"RESEND_API_KEY"`
	EmailFrom     string `env:"EMAIL_FROM" envDefault:"noreply@mediationflow.org"`
	EmailFromName string `env:"EMAIL_FROM_NAME" envDefault:"Mediation Flow"`
	EmailTestMode bool   `env:"EMAIL_TEST_MODE" envDefault:"true"` // When true, emails are logged to console instead of sent
	// Follow-up reminders
	FollowUpCron          string `env:"FOLLOW_UP_CRON" envDefault:"0 8 * * *"`
	FollowUpTimezone      string `env:"FOLLOW_UP_TIMEZONE" envDefault:"UTC"`
	FollowUpLookaheadDays int    `env:"FOLLOW_UP_LOOKAHEAD_DAYS" envDefault:"1"`
}

// Load reads configuration from the environment, loading a .env file first when present.
func Load() (*Config, error) {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be expressed with tag defaults.
func (c *Config) Validate() error {
	if c.DBMaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1 (got %d)", c.DBMaxOpenConns)
	}
	if c.WriteRateLimit < 0 {
		return fmt.Errorf("WRITE_RATE_LIMIT cannot be negative (got %d)", c.WriteRateLimit)
	}
	if c.FollowUpLookaheadDays < 0 {
		return fmt.Errorf("FOLLOW_UP_LOOKAHEAD_DAYS cannot be negative (got %d)", c.FollowUpLookaheadDays)
	}
	if c.IsProduction() && !c.EmailTestMode && c.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY is required in production when EMAIL_TEST_MODE is off")
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
