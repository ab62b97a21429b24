package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the runtime configuration for the bridge process.
type Config struct {
	Service ServiceConfig `mapstructure:"service"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Payment PaymentConfig `mapstructure:"payment"`
	S2S     S2SConfig     `mapstructure:"s2s"`
	DB      DBConfig      `mapstructure:"db"`
}

type ServiceConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type HTTPConfig struct {
	ListenAddr       string `mapstructure:"listenAddr"`
	RequestTimeoutMs int    `mapstructure:"requestTimeoutMs"`
}

type PaymentConfig struct {
	// API.URL is the PayHub base URL, e.g. https://payhub.example.net.
	API APIConfig `mapstructure:"api"`
}

type APIConfig struct {
	URL string `mapstructure:"url"`
}

type S2SConfig struct {
	// URL is the service-to-service credential issuer base URL.
	URL string `mapstructure:"url"`
}

type DBConfig struct {
	// Path is the SQLite database file. Empty selects the in-memory store.
	Path string `mapstructure:"path"`
}

// RequestTimeout returns the outbound per-request deadline.
func (c HTTPConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// Load reads configuration from defaults, an optional YAML file pointed at by
// BRIDGE_CONFIG, and environment overrides (BRIDGE_PAYMENT_API_URL etc.).
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("service.name", "payhub-bridge")
	v.SetDefault("service.env", "dev")
	v.SetDefault("http.listenAddr", ":8080")
	v.SetDefault("http.requestTimeoutMs", 30000)
	v.SetDefault("payment.api.url", "")
	v.SetDefault("s2s.url", "")
	v.SetDefault("db.path", "")

	v.SetEnvPrefix("BRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("BRIDGE_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate checks the presence of the settings the dispatch path cannot run without.
func (c *Config) Validate() error {
	if c.Payment.API.URL == "" {
		return fmt.Errorf("config: payment.api.url is required")
	}
	if c.S2S.URL == "" {
		return fmt.Errorf("config: s2s.url is required")
	}
	if c.HTTP.RequestTimeoutMs <= 0 {
		return fmt.Errorf("config: http.requestTimeoutMs must be positive")
	}
	return nil
}
