package assert

import (
	"errors"
	"fmt"
	"time"

	"github.com/LerianStudio/lib-debugassert/debugassert"
)

const (
	// DefaultDelay is the grace period between the notice and the fatal handoff.
	DefaultDelay = 5 * time.Second
	// DefaultLanguage selects the notice title translation.
	DefaultLanguage = "en"
	// DefaultUnknownFile stands in for a failure site whose file is unknown.
	DefaultUnknownFile = "<unknown file>"
)

const envDelay = "DEBUGASSERT_DELAY"

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid assertion config")

// Config holds the user-facing knobs of a Dispatcher.
type Config struct {
	Delay time.Duration `env:"DEBUGASSERT_DELAY"`
	// Title overrides the localized notice title when set.
	Title       string `env:"DEBUGASSERT_TITLE"`
	Language    string `env:"DEBUGASSERT_LANGUAGE"`
	UnknownFile string `env:"DEBUGASSERT_UNKNOWN_FILE"`
	ExitCode    int    `env:"DEBUGASSERT_EXIT_CODE"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Delay:       DefaultDelay,
		Language:    DefaultLanguage,
		UnknownFile: DefaultUnknownFile,
		ExitCode:    DefaultExitCode,
	}
}

// ConfigFromEnv overlays the DEBUGASSERT_* environment variables on
// DefaultConfig. A malformed variable is an error; the defaults are still
// returned so callers can carry on.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	var env Config
	if err := debugassert.SetConfigFromEnvVars(&env); err != nil {
		return cfg, fmt.Errorf("load assertion config: %w", err)
	}

	// A zero delay is a legitimate setting, so presence decides.
	if debugassert.GetenvOrDefault(envDelay, "") != "" {
		cfg.Delay = env.Delay
	}

	if env.Title != "" {
		cfg.Title = env.Title
	}

	if env.Language != "" {
		cfg.Language = env.Language
	}

	if env.UnknownFile != "" {
		cfg.UnknownFile = env.UnknownFile
	}

	if env.ExitCode != 0 {
		cfg.ExitCode = env.ExitCode
	}

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}

	return cfg, nil
}

// Validate rejects a negative delay and exit codes outside 0-255. An exit
// code of 0 selects DefaultExitCode.
func (c Config) Validate() error {
	if c.Delay < 0 {
		return fmt.Errorf("%w: negative delay %s", ErrInvalidConfig, c.Delay)
	}

	if c.ExitCode < 0 || c.ExitCode > 255 {
		return fmt.Errorf("%w: exit code %d out of range", ErrInvalidConfig, c.ExitCode)
	}

	return nil
}

func (c Config) withDefaults() Config {
	c.Delay = max(c.Delay, 0)

	if c.Language == "" {
		c.Language = DefaultLanguage
	}

	if c.UnknownFile == "" {
		c.UnknownFile = DefaultUnknownFile
	}

	if c.ExitCode <= 0 || c.ExitCode > 255 {
		c.ExitCode = DefaultExitCode
	}

	return c
}
