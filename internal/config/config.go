package config

import (
	"fmt"

	pkgconfig "github.com/wekeepgrowing/workshop-backend/pkg/config"
	"github.com/wekeepgrowing/workshop-backend/pkg/logger"
)

// ServiceName selects configs/<env>/workshop.yaml and the WORKSHOP_ env prefix.
const ServiceName = "workshop"

type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Server   ServerConfig   `yaml:"server"`
	Log      logger.Config  `yaml:"log"`
	Autosave AutosaveConfig `yaml:"autosave"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Email    EmailConfig    `yaml:"email"`
}

func LoadConfig() (*Config, error) {
	src, err := pkgconfig.Load(ServiceName)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := src.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the values used for anything the config file leaves out.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:                "workshop",
			Environment:         "dev",
			AuthorizationSource: AuthorizationSourceDatabase,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Name:            "workshop",
			User:            "postgres",
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: defaultConnMaxLifetime,
			ConnMaxIdleTime: defaultConnMaxIdleTime,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Server: ServerConfig{
			HTTP: HTTPConfig{Host: "0.0.0.0", Port: 8080},
			GRPC: GRPCConfig{Host: "0.0.0.0", Port: 9090},
		},
		Log: logger.Config{
			Level:       "info",
			Format:      "json",
			Development: false,
		},
		Autosave: AutosaveConfig{
			FieldsDelay: defaultFieldsDelay,
			TasksDelay:  defaultTasksDelay,
			ExtrasDelay: defaultExtrasDelay,
		},
		Pricing: PricingConfig{
			VATRate: "0.20",
		},
		Email: EmailConfig{
			Port: 587,
		},
	}
}

func (c *Config) Validate() error {
	switch c.Service.AuthorizationSource {
	case AuthorizationSourceDatabase:
	case AuthorizationSourceSupabase:
		if c.Service.Supabase.ProjectURL == "" || c.Service.Supabase.APIKey == "" {
			return fmt.Errorf("supabase project_url and api_key are required when authorization_source is %q", AuthorizationSourceSupabase)
		}
	default:
		return fmt.Errorf("unknown authorization_source %q", c.Service.AuthorizationSource)
	}
	if c.Autosave.FieldsDelay <= 0 || c.Autosave.TasksDelay <= 0 || c.Autosave.ExtrasDelay <= 0 {
		return fmt.Errorf("autosave delays must be positive")
	}
	if _, err := c.Pricing.Rate(); err != nil {
		return err
	}
	return nil
}
