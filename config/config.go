package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	CarsAPI CarsAPIConfig `mapstructure:"carsapi"`
	Suggest SuggestConfig `mapstructure:"suggest"`
	Session SessionConfig `mapstructure:"session"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CarsAPIConfig holds cars catalog API configuration
type CarsAPIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Host    string        `mapstructure:"host"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SuggestConfig holds autocomplete tuning
type SuggestConfig struct {
	Debounce       time.Duration `mapstructure:"debounce"`
	BlurGrace      time.Duration `mapstructure:"blur_grace"`
	MinQueryLength int           `mapstructure:"min_query_length"`
	Limit          int           `mapstructure:"limit"`
}

// SessionConfig holds session store configuration
type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// maxSuggestLimit is the longest suggestion list the page ever shows
const maxSuggestLimit = 5

// flagKeys maps command-line flag names to config keys
var flagKeys = map[string]string{
	"port":        "server.port",
	"environment": "server.environment",
}

// Load loads configuration from defaults, config file, .env and environment variables
func Load() (*Config, error) {
	return LoadWithFlags(nil)
}

// LoadWithFlags is Load with command-line flags taking precedence over everything else.
// Only flags that were explicitly set override other sources.
func LoadWithFlags(flags *pflag.FlagSet) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/carcompare/")

	// Environment variable settings
	v.SetEnvPrefix("CARCOMPARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("unable to bind flag %s: %w", name, err)
				}
			}
		}
	}

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Cars catalog defaults; the key has no default and is not validated
	v.SetDefault("carsapi.api_key", "")
	v.SetDefault("carsapi.base_url", "https://cars-by-api-ninjas.p.rapidapi.com")
	v.SetDefault("carsapi.host", "cars-by-api-ninjas.p.rapidapi.com")
	v.SetDefault("carsapi.timeout", "15s")

	// Autocomplete defaults
	v.SetDefault("suggest.debounce", "500ms")
	v.SetDefault("suggest.blur_grace", "200ms")
	v.SetDefault("suggest.min_query_length", 2)
	v.SetDefault("suggest.limit", 5)

	// Session defaults
	v.SetDefault("session.ttl", "30m")
	v.SetDefault("session.cleanup_interval", "1m")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if config.CarsAPI.BaseURL == "" {
		return fmt.Errorf("cars API base URL is required (set CARCOMPARE_CARSAPI_BASE_URL)")
	}

	if config.CarsAPI.Host == "" {
		return fmt.Errorf("cars API host is required (set CARCOMPARE_CARSAPI_HOST)")
	}

	if config.CarsAPI.Timeout <= 0 {
		return fmt.Errorf("cars API timeout must be positive, got: %s", config.CarsAPI.Timeout)
	}

	if config.Suggest.Debounce <= 0 || config.Suggest.BlurGrace <= 0 {
		return fmt.Errorf("suggest debounce and blur grace must be positive")
	}

	if config.Suggest.MinQueryLength < 1 {
		return fmt.Errorf("suggest min query length must be at least 1, got: %d", config.Suggest.MinQueryLength)
	}

	if config.Suggest.Limit < 1 || config.Suggest.Limit > maxSuggestLimit {
		return fmt.Errorf("suggest limit must be between 1 and %d, got: %d", maxSuggestLimit, config.Suggest.Limit)
	}

	if config.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got: %s", config.Session.TTL)
	}

	return nil
}

// loadEnvFile exports KEY=value pairs from ./.env without overriding variables already set.
// A missing file is not an error.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return err
		}
	}

	log.Printf("[CONFIG] loaded .env")
	return nil
}
