package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/frahmantamala/paysuite/internal"
	"github.com/frahmantamala/paysuite/pkg/logger"
	"github.com/frahmantamala/paysuite/pkg/paysuite"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:           "paysuite",
	Short:         "PaySuite payments client",
	Long:          `Create and inspect PaySuite payment requests, or run a local sandbox of the API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

func loadConfig(path string) (*internal.Config, error) {
	// A missing .env file is normal outside development.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading %s: %w", envFile, err)
	}

	// Plain environment variables only, for containers.
	if os.Getenv("APP_ENV") == "production" {
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Observability.Logging.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		return cfg, nil
	}

	v := viper.New()
	for key, value := range internal.Defaults {
		v.SetDefault(key, value)
	}
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setup loads the config and installs the process logger.
func setup() (*internal.Config, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	return cfg, nil
}

func newClient(cfg *internal.Config) (*paysuite.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return paysuite.NewClient(cfg.Paysuite.Token, append(cfg.Paysuite.ClientOptions(), paysuite.WithLogger(logger.L()))...)
}

// describeError prefixes err with the kind of failure a user should act on.
func describeError(err error) string {
	switch {
	case paysuite.IsValidationError(err):
		return "✗ Validation error:\n" + err.Error()
	case paysuite.IsAPIError(err):
		return "✗ API error:\n" + err.Error()
	default:
		return "✗ Unexpected error:\n" + err.Error()
	}
}

func fprintf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "Directory containing config.yml")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(sandboxCmd)
}
