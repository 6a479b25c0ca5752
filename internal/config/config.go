// Package config loads onepass settings from ONEPASS_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/illarion/onepass/internal/logger"
	"github.com/illarion/onepass/internal/passgen"
	"github.com/illarion/onepass/internal/security"
)

// Config holds every setting the CLI reads at startup
type Config struct {
	// Location overrides the vault path. Relative paths resolve under the home directory.
	Location string `env:"ONEPASS_LOCATION"`
	// Password supplies the master password non-interactively.
	Password string `env:"ONEPASS_PASSWORD"`
	// NoKeyring disables reading the master password from the OS keyring.
	NoKeyring bool `env:"ONEPASS_NO_KEYRING"`
	// NoPrompt makes commands fail instead of asking for the master password.
	NoPrompt bool `env:"ONEPASS_NO_PROMPT"`

	LogLevel string `env:"ONEPASS_LOG_LEVEL" envDefault:"warn"`

	// InterruptAttempts and InterruptInterval bound how long a signal waits for
	// an in-flight vault write.
	InterruptAttempts int           `env:"ONEPASS_INTERRUPT_ATTEMPTS" envDefault:"5"`
	InterruptInterval time.Duration `env:"ONEPASS_INTERRUPT_INTERVAL" envDefault:"1s"`

	// ClipboardTimeout is how long a copied password stays on the clipboard.
	ClipboardTimeout time.Duration `env:"ONEPASS_CLIPBOARD_TIMEOUT" envDefault:"30s"`

	// SuggestLength defaults to passgen.DefaultLength.
	SuggestLength int `env:"ONEPASS_SUGGEST_LENGTH"`
}

// Load parses the environment and validates the result
func Load() (*Config, error) {
	cfg := &Config{SuggestLength: passgen.DefaultLength}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func parseEnv(cfg any) error {
	err := env.Parse(cfg)
	if err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}

	return nil
}

// Validate checks that settings are usable
func (c *Config) Validate() error {
	if c.InterruptAttempts < 0 || c.InterruptInterval <= 0 {
		return ErrInvalidInterruptConfig
	}
	if c.ClipboardTimeout <= 0 {
		return ErrInvalidClipboardConfig
	}
	if c.SuggestLength < passgen.MinLength {
		return ErrInvalidSuggestConfig
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLogLevel, err)
	}
	return nil
}

// VaultPath resolves Location (or override, when non-empty) to the vault file path
func (c *Config) VaultPath(override string) (string, error) {
	location := c.Location
	if override != "" {
		location = override
	}
	return security.ResolveFromEnv(location)
}
