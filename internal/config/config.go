package config

import (
	"fmt"
	"photo-location-service/internal/adapters/projection"
	"photo-location-service/internal/domain"
	"photo-location-service/internal/platform/db"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Photos     PhotosConfig     `mapstructure:"photos"`
	Projection ProjectionConfig `mapstructure:"projection"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	URL      string `mapstructure:"url"`
	SeedPath string `mapstructure:"seed_path"`
}

// DSN returns the path or URL matching Driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == db.DriverPostgres {
		return d.URL
	}
	return d.Path
}

// Empty Addr disables the Redis metadata cache.
type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// Empty URL disables batch publishing.
type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type PhotosConfig struct {
	Root        string `mapstructure:"root"`
	DefaultWho  string `mapstructure:"default_who"`
	Concurrency int    `mapstructure:"concurrency"`
}

type ProjectionConfig struct {
	Default   string `mapstructure:"default"`
	Reference string `mapstructure:"reference"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads .env, an optional config.yaml and PHOTOLOC_* environment
// variables, in increasing order of precedence.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	v := viper.New()

	// Defaults. Every key needs one so AutomaticEnv can override it.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 120)
	v.SetDefault("database.driver", db.DriverSQLite)
	v.SetDefault("database.path", "data/app.db")
	v.SetDefault("database.url", "")
	v.SetDefault("database.seed_path", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.ttl_seconds", 86400)
	v.SetDefault("nats.url", "")
	v.SetDefault("photos.root", "data/photos")
	v.SetDefault("photos.default_who", "")
	v.SetDefault("photos.concurrency", 8)
	v.SetDefault("projection.default", projection.NameEquirectangular)
	v.SetDefault("projection.reference", string(domain.ReferenceCentroid))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

	// Environment variables: PHOTOLOC_DATABASE_DRIVER → database.driver
	v.SetEnvPrefix("PHOTOLOC")
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

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	switch c.Database.Driver {
	case db.DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			errs = append(errs, "database.path is required for the sqlite driver")
		}
	case db.DriverPostgres:
		if strings.TrimSpace(c.Database.URL) == "" {
			errs = append(errs, "database.url is required for the postgres driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.driver must be %q or %q, got %q",
			db.DriverSQLite, db.DriverPostgres, c.Database.Driver))
	}

	if c.Redis.TTLSeconds < 0 {
		errs = append(errs, "redis.ttl_seconds must not be negative")
	}

	if strings.TrimSpace(c.Photos.Root) == "" {
		errs = append(errs, "photos.root is required")
	}
	if c.Photos.Concurrency < 1 || c.Photos.Concurrency > 64 {
		errs = append(errs, fmt.Sprintf("photos.concurrency must be 1-64, got %d", c.Photos.Concurrency))
	}

	if _, err := (projection.Factory{}).NewProjection(c.Projection.Default, domain.Coordinates{}); err != nil {
		errs = append(errs, fmt.Sprintf("projection.default: %v", err))
	}
	if _, err := domain.ParseReferencePolicy(c.Projection.Reference); err != nil {
		errs = append(errs, fmt.Sprintf("projection.reference: %v", err))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
