package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration for the mail API.
// It is loaded once in main and passed by value; nothing reads the
// environment after startup.
type Config struct {
	// Port is the HTTP listen port.
	Port string `yaml:"port"`
	// FrontendURL is the origin allowed by CORS.
	FrontendURL string `yaml:"frontend_url"`
	// Auth holds the session token and identity provider settings.
	Auth AuthConfig `yaml:"auth"`
	// SMTP holds the outgoing mail settings.
	SMTP SMTPConfig `yaml:"smtp"`
}

// AuthConfig configures the session authentication gateway.
type AuthConfig struct {
	// JWTSecret signs and verifies session tokens. Required.
	JWTSecret string `yaml:"jwt_secret"`
	// JWTExpiry is the session token lifetime from issuance.
	JWTExpiry time.Duration `yaml:"jwt_expiry"`
	// ProviderURL is the base URL of the RétroBus identity API. Required.
	ProviderURL string `yaml:"provider_url"`
	// ProviderKey is the static bearer credential that authorizes
	// this service against the identity API. Required.
	ProviderKey string `yaml:"provider_key"`
	// ProviderTimeout bounds each call to the identity API.
	ProviderTimeout time.Duration `yaml:"provider_timeout"`
}

// SMTPConfig configures outgoing mail delivery.
type SMTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Secure selects implicit TLS (SMTPS) instead of STARTTLS.
	Secure   bool   `yaml:"secure"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	// FromEmail is the fallback sender when a request carries none.
	FromEmail string `yaml:"from_email"`
}

// Default returns the configuration defaults. The token expiry of 168h
// and the provider timeout of 10s are the documented values for limits
// the environment used to leave implicit.
func Default() Config {
	return Config{
		Port:        "3001",
		FrontendURL: "http://localhost:5174",
		Auth: AuthConfig{
			JWTExpiry:       168 * time.Hour,
			ProviderTimeout: 10 * time.Second,
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// and environment variable overrides, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables on top of the current values.
func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.FrontendURL, "FRONTEND_URL")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Auth.ProviderURL, "RETROBUS_API_URL")
	setString(&cfg.Auth.ProviderKey, "RETROBUS_API_KEY")
	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setString(&cfg.SMTP.User, "SMTP_USER")
	setString(&cfg.SMTP.Password, "SMTP_PASSWORD")
	setString(&cfg.SMTP.FromEmail, "SMTP_FROM_EMAIL")

	if err := setDuration(&cfg.Auth.JWTExpiry, "JWT_EXPIRY"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Auth.ProviderTimeout, "RETROBUS_API_TIMEOUT"); err != nil {
		return err
	}

	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SMTP_PORT must be a number: %w", err)
		}
		cfg.SMTP.Port = port
	}
	if v := os.Getenv("SMTP_SECURE"); v != "" {
		cfg.SMTP.Secure = v == "true" || cfg.SMTP.Port == 465
	}
	return nil
}

// Validate checks that every required setting is present and sane.
func (c Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (JWT_SECRET) is required")
	}
	if c.Auth.ProviderURL == "" {
		return fmt.Errorf("auth.provider_url (RETROBUS_API_URL) is required")
	}
	if c.Auth.ProviderKey == "" {
		return fmt.Errorf("auth.provider_key (RETROBUS_API_KEY) is required")
	}
	if c.Auth.JWTExpiry <= 0 {
		return fmt.Errorf("auth.jwt_expiry must be positive")
	}
	if c.Auth.ProviderTimeout <= 0 {
		return fmt.Errorf("auth.provider_timeout must be positive")
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("smtp.port must be a valid port number")
	}
	return nil
}

// setString overlays a single string setting from the environment.
func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setDuration overlays a single duration setting from the environment.
func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s must be a Go duration (e.g. 168h): %w", key, err)
	}
	*dst = d
	return nil
}
