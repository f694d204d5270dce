package config

import (
	"fmt"
	"os"
	"osrm-route-service/internal/domain"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Server   ServerConfig   `mapstructure:"server"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
	Provider ProviderConfig `mapstructure:"provider"`
}

type EngineConfig struct {
	DataPath  string `mapstructure:"data_path"`
	Algorithm string `mapstructure:"algorithm"`
}

// Algo returns the parsed algorithm. Validate guarantees it parses.
func (e EngineConfig) Algo() domain.Algorithm {
	a, _ := domain.ParseAlgorithm(e.Algorithm)
	return a
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

func (s ServerConfig) Addr() string { return fmt.Sprintf(":%d", s.Port) }

const (
	CacheNone     = "none"
	CacheSqlite   = "sqlite"
	CachePostgres = "postgres"
	CacheRedis    = "redis"
)

type CacheConfig struct {
	Driver     string `mapstructure:"driver"`
	DSN        string `mapstructure:"dsn"`
	RedisAddr  string `mapstructure:"redis_addr"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLSeconds) * time.Second }

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ProviderConfig struct {
	Concurrency    int `mapstructure:"concurrency"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Load reads configuration from an optional config.yaml and environment
// variables (OSRM_ENGINE_DATA_PATH -> engine.data_path).
func Load() (*Config, error) {
	v := viper.New()

	// Defaults. Every key needs one so AutomaticEnv can bind it.
	v.SetDefault("engine.data_path", "")
	v.SetDefault("engine.algorithm", string(domain.AlgorithmMLD))
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 120)
	v.SetDefault("cache.driver", CacheSqlite)
	v.SetDefault("cache.dsn", "data/cache.db")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.ttl_seconds", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("provider.concurrency", 4)
	v.SetDefault("provider.timeout_seconds", 30)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("OSRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Engine.DataPath) == "" {
		errs = append(errs, "engine.data_path is required")
	}
	if _, err := domain.ParseAlgorithm(c.Engine.Algorithm); err != nil {
		errs = append(errs, fmt.Sprintf("engine.algorithm: %v", err))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	switch c.Cache.Driver {
	case CacheNone:
	case CacheSqlite, CachePostgres:
		if c.Cache.DSN == "" {
			errs = append(errs, fmt.Sprintf("cache.dsn is required for driver %q", c.Cache.Driver))
		}
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			errs = append(errs, "cache.redis_addr is required for driver \"redis\"")
		}
	default:
		errs = append(errs, fmt.Sprintf("cache.driver must be none, sqlite, postgres or redis, got %q", c.Cache.Driver))
	}
	if c.Cache.TTLSeconds < 0 {
		errs = append(errs, "cache.ttl_seconds must not be negative")
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or console, got %q", c.Log.Format))
	}
	if c.Provider.Concurrency <= 0 {
		errs = append(errs, "provider.concurrency must be positive")
	}
	if c.Provider.TimeoutSeconds < 0 {
		errs = append(errs, "provider.timeout_seconds must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Get returns the environment variable key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
