package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config is the root configuration for the relay, loaded from environment
// variables once at process start and passed into the components that need
// it. Business logic never reads ambient state.
type Config struct {
	Server    ServerConfig
	Claude    ClaudeConfig
	Evolution EvolutionConfig

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	RepliesFile string `env:"REPLIES_FILE"`
}

type ServerConfig struct {
	Port int `env:"PORT" envDefault:"3000"`
}

// ClaudeConfig configures the completion client. ProjectID is the optional
// knowledge-base reference; RequireProject makes it mandatory, in which case
// the client fails with ConfigMissing before any remote call when it is absent.
type ClaudeConfig struct {
	APIKey         string `env:"CLAUDE_API_KEY"`
	BaseURL        string `env:"CLAUDE_BASE_URL" envDefault:"https://api.anthropic.com"`
	Model          string `env:"CLAUDE_MODEL" envDefault:"claude-3-5-sonnet-20241022"`
	MaxTokens      int    `env:"CLAUDE_MAX_TOKENS" envDefault:"1000"`
	ProjectID      string `env:"CLAUDE_PROJECT_ID"`
	RequireProject bool   `env:"CLAUDE_REQUIRE_PROJECT" envDefault:"false"`
}

// EvolutionConfig configures the WhatsApp gateway (Evolution API) client.
type EvolutionConfig struct {
	BaseURL  string `env:"EVOLUTION_BASE_URL"`
	APIKey   string `env:"EVOLUTION_API_KEY"`
	Instance string `env:"EVOLUTION_INSTANCE"`
}

// Load parses the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("cannot parse environment: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges and formats. Presence of credentials is not
// checked here: a missing credential surfaces as ConfigMissing at call time,
// and the health endpoints report presence booleans.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, "PORT must be between 1 and 65535")
	}
	if cfg.Claude.MaxTokens < 1 {
		errs = append(errs, "CLAUDE_MAX_TOKENS must be >= 1")
	}
	if cfg.Claude.Model == "" {
		errs = append(errs, "CLAUDE_MODEL must not be empty")
	}
	if err := checkURL(cfg.Claude.BaseURL); err != nil {
		errs = append(errs, "CLAUDE_BASE_URL: "+err.Error())
	}
	if cfg.Evolution.BaseURL != "" {
		if err := checkURL(cfg.Evolution.BaseURL); err != nil {
			errs = append(errs, "EVOLUTION_BASE_URL: "+err.Error())
		}
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "LOG_LEVEL must be one of: debug, info, warn, error")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https, got %q", raw)
	}
	return nil
}

// HasClaudeKey reports whether the completion credential is present.
func (c *Config) HasClaudeKey() bool { return c.Claude.APIKey != "" }

// HasProject reports whether the knowledge-base reference is present.
func (c *Config) HasProject() bool { return c.Claude.ProjectID != "" }

// CanSend reports whether all gateway credentials required for outbound
// delivery are present.
func (c *Config) CanSend() bool {
	return c.Evolution.BaseURL != "" && c.Evolution.APIKey != "" && c.Evolution.Instance != ""
}
