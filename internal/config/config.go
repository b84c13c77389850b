package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jengzang/opportunity-map-go/internal/logging"
	"github.com/spf13/viper"
)

// envPrefix maps nested keys like "server.port" to MAPVIZ_SERVER_PORT
const envPrefix = "MAPVIZ"

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       logging.Config  `mapstructure:"log"`
	Map       MapConfig       `mapstructure:"map"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig JWT 配置
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// MapConfig 地图引擎配置
type MapConfig struct {
	Spacing      float64 `mapstructure:"spacing"`       // degrees between spread markers
	CacheEntries int     `mapstructure:"cache_entries"` // memoized cluster results
	MaxEntities  int     `mapstructure:"max_entities"`  // per cluster request
	IngestBatch  int     `mapstructure:"ingest_batch"`  // max entities per POST
}

// Load 加载配置. configPath may be empty to rely on defaults and MAPVIZ_* env vars.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("database.path", "./data/map/entities.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "opportunity-map")
	v.SetDefault("rate_limit.requests", 120)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("map.spacing", 0.04)
	v.SetDefault("map.cache_entries", 256)
	v.SetDefault("map.max_entities", 50000)
	v.SetDefault("map.ingest_batch", 500)
}

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate_limit.requests and rate_limit.window must be positive"))
	}
	if c.Map.Spacing <= 0 {
		errs = append(errs, errors.New("map.spacing must be positive"))
	}
	if c.Map.CacheEntries < 0 {
		errs = append(errs, errors.New("map.cache_entries must not be negative"))
	}
	if c.Map.MaxEntities <= 0 || c.Map.IngestBatch <= 0 {
		errs = append(errs, errors.New("map.max_entities and map.ingest_batch must be positive"))
	}
	return errors.Join(errs...)
}

// AuthEnabled reports whether mutating routes are protected
func (c *Config) AuthEnabled() bool {
	return c.Auth.JWTSecret != ""
}
