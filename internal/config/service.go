package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	AuthorizationSourceDatabase = "database"
	AuthorizationSourceSupabase = "supabase"
)

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	// AuthorizationSource is "database" or "supabase".
	AuthorizationSource string         `yaml:"authorization_source"`
	Supabase            SupabaseConfig `yaml:"supabase"`
}

type SupabaseConfig struct {
	JWTSecret  string `yaml:"jwt_secret"`
	ProjectURL string `yaml:"project_url"`
	APIKey     string `yaml:"api_key"`
}

const (
	defaultFieldsDelay = 600 * time.Millisecond
	defaultTasksDelay  = 800 * time.Millisecond
	defaultExtrasDelay = 800 * time.Millisecond
)

// AutosaveConfig holds the debounce delay of each draft channel.
type AutosaveConfig struct {
	FieldsDelay time.Duration `yaml:"fields_delay"`
	TasksDelay  time.Duration `yaml:"tasks_delay"`
	ExtrasDelay time.Duration `yaml:"extras_delay"`
}

type PricingConfig struct {
	VATRate string `yaml:"vat_rate"`
}

// Rate parses VATRate. Blank means the UK standard rate.
func (c PricingConfig) Rate() (decimal.Decimal, error) {
	if c.VATRate == "" {
		return decimal.NewFromFloat(0.20), nil
	}
	rate, err := decimal.NewFromString(c.VATRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid pricing.vat_rate %q: %w", c.VATRate, err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("pricing.vat_rate must not be negative")
	}
	return rate, nil
}

// EmailConfig configures the SMTP notifier. An empty Host disables mail.
type EmailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}
