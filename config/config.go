package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all configuration for the application
type Config struct {
	Kaggle    KaggleConfig
	LLM       LLMConfig
	Cache     CacheConfig
	Resolver  ResolverConfig
	Sampling  SamplingConfig
	RateLimit RateLimitConfig
}

// KaggleConfig holds Kaggle API configuration
type KaggleConfig struct {
	Username string `mapstructure:"username"`
	Key      string `mapstructure:"key"`
	BaseURL  string `mapstructure:"base_url"`
}

// LLMConfig holds chat-completion API configuration
type LLMConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// ResolverConfig holds catalog probing configuration
type ResolverConfig struct {
	MaxChecksPerName int     `mapstructure:"max_checks_per_name"`
	ScoreBandWidth   float64 `mapstructure:"score_band_width"`
}

// SamplingConfig caps how much of a downloaded dataset is sampled
type SamplingConfig struct {
	PerClass int `mapstructure:"per_class"`
	MaxTotal int `mapstructure:"max_total"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Kaggle int `mapstructure:"kaggle"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Pick up a local .env before viper reads the environment
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/paperforge/")

	// Environment variable settings
	v.SetEnvPrefix("PAPERFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	fillKaggleCredentials(&config)
	fillLLMKey(&config)

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Kaggle defaults. Credentials default to empty so viper binds their
	// environment variables during Unmarshal.
	v.SetDefault("kaggle.base_url", "https://www.kaggle.com/api/v1")
	v.SetDefault("kaggle.username", "")
	v.SetDefault("kaggle.key", "")

	// LLM defaults
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.api_key", "")

	// Cache defaults
	v.SetDefault("cache.ttl", "24h")

	// Resolver defaults
	v.SetDefault("resolver.max_checks_per_name", 8)
	v.SetDefault("resolver.score_band_width", 5)

	// Sampling defaults
	v.SetDefault("sampling.per_class", 200)
	v.SetDefault("sampling.max_total", 2000)

	// Rate limit defaults
	v.SetDefault("ratelimit.kaggle", 60)
}

// fillKaggleCredentials falls back to the conventional KAGGLE_USERNAME /
// KAGGLE_KEY variables and ~/.kaggle/kaggle.json when no explicit
// PAPERFORGE_ credentials are set.
func fillKaggleCredentials(config *Config) {
	if config.Kaggle.Username == "" {
		config.Kaggle.Username = os.Getenv("KAGGLE_USERNAME")
	}
	if config.Kaggle.Key == "" {
		config.Kaggle.Key = os.Getenv("KAGGLE_KEY")
	}
	if config.Kaggle.Username != "" && config.Kaggle.Key != "" {
		return
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	data, err := os.ReadFile(filepath.Join(home, ".kaggle", "kaggle.json"))
	if err != nil {
		return
	}
	var creds struct {
		Username string `json:"username"`
		Key      string `json:"key"`
	}
	if err := json.Unmarshal(data, &creds); err != nil {
		return
	}
	if config.Kaggle.Username == "" {
		config.Kaggle.Username = creds.Username
	}
	if config.Kaggle.Key == "" {
		config.Kaggle.Key = creds.Key
	}
}

// loadEnvFile loads a local .env file into the environment via gotenv.
// Existing variables are never overridden. A missing file is not an error.
func loadEnvFile() error {
	if err := gotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}

// fillLLMKey falls back to the conventional OPENAI_API_KEY variable
func fillLLMKey(config *Config) {
	if config.LLM.APIKey == "" {
		config.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Kaggle.Username == "" || config.Kaggle.Key == "" {
		return fmt.Errorf("Kaggle credentials are required (set PAPERFORGE_KAGGLE_USERNAME and PAPERFORGE_KAGGLE_KEY, or provide ~/.kaggle/kaggle.json)")
	}

	if config.Resolver.MaxChecksPerName <= 0 {
		return fmt.Errorf("resolver max_checks_per_name must be positive, got: %d", config.Resolver.MaxChecksPerName)
	}

	if config.Resolver.ScoreBandWidth < 0 {
		return fmt.Errorf("resolver score_band_width must be non-negative, got: %g", config.Resolver.ScoreBandWidth)
	}

	if config.Sampling.PerClass <= 0 || config.Sampling.MaxTotal <= 0 {
		return fmt.Errorf("sampling caps must be positive, got per_class=%d max_total=%d", config.Sampling.PerClass, config.Sampling.MaxTotal)
	}

	return nil
}
