package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/paysuite/pkg/paysuite"
)

type Config struct {
	Paysuite      PaysuiteConfig      `mapstructure:"paysuite"`
	Sandbox       SandboxConfig       `mapstructure:"sandbox"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type PaysuiteConfig struct {
	Token   string        `mapstructure:"token" validate:"required"`
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SandboxConfig struct {
	Port         int           `mapstructure:"port"`
	Token        string        `mapstructure:"token"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// Defaults holds the value of every config key before files and environment
// are applied. Keys use viper's dotted form.
var Defaults = map[string]interface{}{
	"paysuite.token":               "",
	"paysuite.base_url":            paysuite.DefaultBaseURL,
	"paysuite.timeout":             paysuite.DefaultTimeout,
	"sandbox.port":                 8080,
	"sandbox.token":                "sandbox-token",
	"sandbox.read_timeout":         10 * time.Second,
	"sandbox.write_timeout":        10 * time.Second,
	"sandbox.idle_timeout":         60 * time.Second,
	"observability.logging.level":  "info",
	"observability.logging.format": "text",
}

// LoadConfigFromEnv builds the config from plain environment variables, for
// deployments without a config file.
func LoadConfigFromEnv() *Config {
	return &Config{
		Paysuite: PaysuiteConfig{
			Token:   getEnv("PAYSUITE_TOKEN", ""),
			BaseURL: getEnv("PAYSUITE_BASE_URL", paysuite.DefaultBaseURL),
			Timeout: getEnvAsDuration("PAYSUITE_TIMEOUT", paysuite.DefaultTimeout),
		},
		Sandbox: SandboxConfig{
			Port:         getEnvAsInt("SANDBOX_PORT", 8080),
			Token:        getEnv("SANDBOX_TOKEN", "sandbox-token"),
			ReadTimeout:  getEnvAsDuration("SANDBOX_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvAsDuration("SANDBOX_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getEnvAsDuration("SANDBOX_IDLE_TIMEOUT", 60*time.Second),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

// Validate checks everything a client call needs. The sandbox section is
// checked separately since only the sandbox command uses it.
func (c *Config) Validate() error {
	var errs []string

	if err := c.Paysuite.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("paysuite config: %v", err))
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *PaysuiteConfig) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return errors.New("token is required (set PAYSUITE_TOKEN)")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q", c.BaseURL)
	}
	if c.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}
	return nil
}

func (c *SandboxConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if strings.TrimSpace(c.Token) == "" {
		return errors.New("token is required")
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid level %q", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid format %q", c.Format)
	}
	return nil
}

// ClientOptions turns the paysuite section into client options.
func (c *PaysuiteConfig) ClientOptions() []paysuite.Option {
	opts := []paysuite.Option{paysuite.WithBaseURL(c.BaseURL)}
	if c.Timeout > 0 {
		opts = append(opts, paysuite.WithTimeout(c.Timeout))
	}
	return opts
}
