package config

import (
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	DefaultStrategy            = "round_robin"
	DefaultHealthCheckInterval = 30
	DefaultCacheTTL            = 300
	DefaultTimeout             = 30
	DefaultRetryAttempts       = 3
)

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type BackendConfig struct {
	URL             string `mapstructure:"url"`
	Weight          int    `mapstructure:"weight"`
	HealthCheckPath string `mapstructure:"health_check_path"`
	Timeout         int    `mapstructure:"timeout"`
}

type HealthCheckConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Interval doubles as the passive recovery window: a backend marked
	// unhealthy becomes eligible again once this many seconds have passed.
	Interval int `mapstructure:"interval"`
	// Active enables periodic probing of backend health endpoints.
	// Disabled by default; health state is otherwise purely passive.
	Active bool `mapstructure:"active"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	TTL     int  `mapstructure:"ttl"`
}

type RewriteRule struct {
	Pattern     string `mapstructure:"pattern"`
	Replacement string `mapstructure:"replacement"`
}

type AccessRule struct {
	Type    string `mapstructure:"type"`
	Pattern string `mapstructure:"pattern"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server        ServerConfig      `mapstructure:"server"`
	Backends      []BackendConfig   `mapstructure:"backends"`
	Strategy      string            `mapstructure:"strategy"`
	HealthCheck   HealthCheckConfig `mapstructure:"health_check"`
	Cache         CacheConfig       `mapstructure:"cache"`
	RewriteRules  []RewriteRule     `mapstructure:"rewrite_rules"`
	CustomHeaders map[string]string `mapstructure:"custom_headers"`
	AccessRules   []AccessRule      `mapstructure:"access_rules"`
	Logging       LoggingConfig     `mapstructure:"logging"`

	// Timeout and RetryAttempts are accepted for forward compatibility.
	// Neither is consumed by the request pipeline: all dispatches are
	// single-attempt and bounded only by the surrounding environment.
	Timeout       int `mapstructure:"timeout"`
	RetryAttempts int `mapstructure:"retry_attempts"`
}

func Load() (*Config, error) {
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.environment", EnvDev)
	viper.SetDefault("strategy", DefaultStrategy)
	viper.SetDefault("health_check.enabled", true)
	viper.SetDefault("health_check.interval", DefaultHealthCheckInterval)
	viper.SetDefault("health_check.active", false)
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.ttl", DefaultCacheTTL)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("timeout", DefaultTimeout)
	viper.SetDefault("retry_attempts", DefaultRetryAttempts)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Info("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

// normalize replaces out-of-range entries with the documented defaults.
// Only structurally broken configuration is treated as fatal by Validate.
func (c *Config) normalize() {
	if c.HealthCheck.Interval <= 0 {
		c.HealthCheck.Interval = DefaultHealthCheckInterval
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RetryAttempts < 0 {
		c.RetryAttempts = DefaultRetryAttempts
	}
	if c.Strategy == "" {
		c.Strategy = DefaultStrategy
	}
	for i := range c.Backends {
		if c.Backends[i].Weight < 1 {
			c.Backends[i].Weight = 1
		}
	}
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Backends,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.By(validateBackendConfig)),
		),
	)
}

// HealthCheckInterval returns the recovery window as a duration.
func (c *Config) HealthCheckInterval() time.Duration {
	return time.Duration(c.HealthCheck.Interval) * time.Second
}

// CacheTTL returns the cache entry lifetime as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}

// BackendURLs returns the configured backend base URLs in order.
func (c *Config) BackendURLs() []string {
	urls := make([]string, 0, len(c.Backends))
	for _, b := range c.Backends {
		urls = append(urls, b.URL)
	}
	return urls
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateBackendConfig(value interface{}) error {
	backend, ok := value.(BackendConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a BackendConfig")
	}

	if backend.URL == "" {
		return validation.NewError("validation_empty_url", "backend URL cannot be empty")
	}

	parsedURL, err := url.Parse(backend.URL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}
