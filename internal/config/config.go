// Package config loads nyaya's runtime configuration from defaults, an
// optional nyaya.yaml and environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/teslashibe/go-nyaya/internal/httpc"
	"github.com/teslashibe/go-nyaya/pkg/inference"
)

// Defaults.
const (
	DefaultPort     = 8080
	DefaultLogLevel = "info"
	DefaultTimeout  = 60 * time.Second
	EnvPrefix       = "NYAYA"
)

// Config is the resolved configuration.
type Config struct {
	Port          int           `mapstructure:"port"`
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model"`
	FallbackModel string        `mapstructure:"fallback_model"` // used when Model is overloaded or out of quota
	BaseURL       string        `mapstructure:"base_url"`       // Gemini endpoint override
	LogLevel      string        `mapstructure:"log_level"`
	Timeout       time.Duration `mapstructure:"timeout"`
	CopyAck       time.Duration `mapstructure:"copy_ack"`
	Debug         bool          `mapstructure:"debug"`
}

// Load resolves configuration. When path is empty nyaya.yaml is looked up
// in the working directory and ~/.config/nyaya; a missing file is fine.
// An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", DefaultPort)
	v.SetDefault("api_key", "")
	v.SetDefault("model", inference.DefaultModel)
	v.SetDefault("fallback_model", "")
	v.SetDefault("base_url", "")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("copy_ack", 2*time.Second)
	v.SetDefault("debug", false)

	// e.g. NYAYA_PORT, NYAYA_LOG_LEVEL
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", "NYAYA_API_KEY", "GEMINI_API_KEY", "API_KEY"); err != nil {
		return nil, fmt.Errorf("config: bind api key: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("nyaya")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/nyaya")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges. A missing API key is not an error here;
// commands that call the API check it with RequireAPIKey.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive")
	}
	if c.Model == "" {
		return fmt.Errorf("config: model cannot be empty")
	}
	if c.FallbackModel == c.Model {
		return fmt.Errorf("config: fallback_model must differ from model %q", c.Model)
	}
	return nil
}

// RequireAPIKey reports inference.ErrNoAPIKey when no credential is set.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: set GEMINI_API_KEY or API_KEY", inference.ErrNoAPIKey)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// InferenceOptions converts the configuration into provider options.
func (c *Config) InferenceOptions() []inference.Option {
	opts := []inference.Option{
		inference.WithAPIKey(c.APIKey),
		inference.WithModel(c.Model),
		inference.WithTimeout(c.Timeout),
		inference.WithHTTPClient(httpc.NewClient(c.Timeout)),
	}
	if c.BaseURL != "" {
		opts = append(opts, inference.WithBaseURL(c.BaseURL))
	}
	return opts
}

// NewProvider builds the Gemini provider. With FallbackModel set it is a
// chain that retries overloaded or rate-limited requests on that model.
func (c *Config) NewProvider(logger *slog.Logger) (inference.Provider, error) {
	if err := c.RequireAPIKey(); err != nil {
		return nil, err
	}
	primary, err := inference.NewGemini(append(c.InferenceOptions(), inference.WithLogger(logger))...)
	if err != nil {
		return nil, err
	}
	if c.FallbackModel == "" {
		return primary, nil
	}

	fallback, err := inference.NewGemini(append(c.InferenceOptions(),
		inference.WithModel(c.FallbackModel),
		inference.WithLogger(logger),
	)...)
	if err != nil {
		primary.Close()
		return nil, err
	}
	logger.Debug("fallback model enabled", "model", c.Model, "fallback", c.FallbackModel)
	return inference.NewChainWithLogger(logger, primary, fallback)
}
