package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Submission backends
const (
	BackendSimulated = "simulated"
	BackendAirtable  = "airtable"
	BackendSQLite    = "sqlite"
)

// Config holds all application configuration values
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	GinMode   string `env:"GIN_MODE" envDefault:"release"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Origins allowed to call the API; empty allows any
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	// Requests per minute per client IP on the demo API
	RateLimit int `env:"RATE_LIMIT" envDefault:"120"`

	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SubmittedDisplay time.Duration `env:"SUBMITTED_DISPLAY" envDefault:"3s"`

	Submit SubmitConfig `envPrefix:"SUBMIT_"`

	AirtableAPIKey    string `env:"AIRTABLE_API_KEY"`
	AirtableBaseID    string `env:"AIRTABLE_BASE_ID"`
	AirtableDemoTable string `env:"AIRTABLE_DEMO_TABLE" envDefault:"Demo Requests"`

	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `env:"TWILIO_FROM_NUMBER"`

	SQLitePath string `env:"SQLITE_PATH" envDefault:"demo-requests.db"`
}

// SubmitConfig controls how completed demo requests leave the service
type SubmitConfig struct {
	Backend        string        `env:"BACKEND" envDefault:"simulated"`
	SimulatedDelay time.Duration `env:"SIMULATED_DELAY" envDefault:"1s"`
	Timeout        time.Duration `env:"TIMEOUT" envDefault:"15s"`
	MaxTries       uint          `env:"MAX_TRIES" envDefault:"3"`
	RetryInitial   time.Duration `env:"RETRY_INITIAL" envDefault:"250ms"`
}

// LoadConfig reads configuration from environment variables
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected backend has what it needs
func (c *Config) Validate() error {
	switch c.Submit.Backend {
	case BackendSimulated:
		if c.Submit.SimulatedDelay <= 0 {
			return fmt.Errorf("SUBMIT_SIMULATED_DELAY must be positive")
		}
	case BackendAirtable:
		if c.AirtableAPIKey == "" || c.AirtableBaseID == "" {
			return fmt.Errorf("airtable backend needs AIRTABLE_API_KEY and AIRTABLE_BASE_ID")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite backend needs SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unknown SUBMIT_BACKEND %q", c.Submit.Backend)
	}
	if c.Submit.MaxTries == 0 {
		return fmt.Errorf("SUBMIT_MAX_TRIES must be at least 1")
	}
	if c.SessionTTL < time.Second {
		return fmt.Errorf("SESSION_TTL must be at least 1s")
	}
	return nil
}

// SMSEnabled reports whether Twilio confirmations are configured
func (c *Config) SMSEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != ""
}
