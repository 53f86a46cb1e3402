package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds server settings. Values come from an optional YAML file, then
// environment variables (a .env file is loaded first when present).
type Config struct {
	Port      string        `yaml:"port"`
	LogLevel  string        `yaml:"logLevel"`
	LogFormat string        `yaml:"logFormat"`
	Mongo     MongoConfig   `yaml:"mongo"`
	RedisAddr string        `yaml:"redisAddr"`
	Catalog   CatalogConfig `yaml:"catalog"`
	Archive   ArchiveConfig `yaml:"archive"`
	Auth      AuthConfig    `yaml:"auth"`
	Cache     CacheConfig   `yaml:"cache"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// CatalogConfig points at the Postgres course catalog; an empty DSN disables it
type CatalogConfig struct {
	DSN string `yaml:"dsn"`
}

// ArchiveConfig points at the S3-compatible snapshot archive; an empty endpoint disables it
type ArchiveConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"useSSL"`
}

type AuthConfig struct {
	JWTSecret       string `yaml:"jwtSecret"`
	AdvisorUsername string `yaml:"advisorUsername"`
	AdvisorPassword string `yaml:"advisorPassword"`
}

type CacheConfig struct {
	DraftTTL         time.Duration `yaml:"draftTTL"`
	ProgressTTL      time.Duration `yaml:"progressTTL"`
	ProgramCacheSize int           `yaml:"programCacheSize"`
}

// Default returns the settings used for local development
func Default() *Config {
	return &Config{
		Port:      "8080",
		LogLevel:  "info",
		LogFormat: "text",
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "requirementsdb",
		},
		RedisAddr: "localhost:6379",
		Archive:   ArchiveConfig{Bucket: "program-snapshots"},
		Auth: AuthConfig{
			JWTSecret:       "super-secret-key-change-in-production",
			AdvisorUsername: "advisor",
			AdvisorPassword: "password123",
		},
		Cache: CacheConfig{
			DraftTTL:         7 * 24 * time.Hour,
			ProgressTTL:      time.Hour,
			ProgramCacheSize: 256,
		},
	}
}

// Load reads path (skipped when empty) and applies environment overrides
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.Mongo.URI = getEnv("MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.Database = getEnv("MONGO_DB", cfg.Mongo.Database)
	cfg.RedisAddr = strings.TrimPrefix(getEnv("REDIS_URI", cfg.RedisAddr), "redis://")
	cfg.Catalog.DSN = getEnv("CATALOG_PG_DSN", cfg.Catalog.DSN)
	cfg.Archive.Endpoint = getEnv("ARCHIVE_S3_ENDPOINT", cfg.Archive.Endpoint)
	cfg.Archive.AccessKey = getEnv("ARCHIVE_S3_ACCESS_KEY", cfg.Archive.AccessKey)
	cfg.Archive.SecretKey = getEnv("ARCHIVE_S3_SECRET_KEY", cfg.Archive.SecretKey)
	cfg.Archive.Bucket = getEnv("ARCHIVE_S3_BUCKET", cfg.Archive.Bucket)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.AdvisorUsername = getEnv("ADVISOR_USERNAME", cfg.Auth.AdvisorUsername)
	cfg.Auth.AdvisorPassword = getEnv("ADVISOR_PASSWORD", cfg.Auth.AdvisorPassword)

	var err error
	if cfg.Archive.UseSSL, err = getEnvBool("ARCHIVE_S3_USE_SSL", cfg.Archive.UseSSL); err != nil {
		return nil, err
	}
	if cfg.Cache.DraftTTL, err = getEnvDuration("DRAFT_TTL", cfg.Cache.DraftTTL); err != nil {
		return nil, err
	}
	if cfg.Cache.ProgressTTL, err = getEnvDuration("PROGRESS_TTL", cfg.Cache.ProgressTTL); err != nil {
		return nil, err
	}
	if cfg.Cache.ProgramCacheSize, err = getEnvInt("PROGRAM_CACHE_SIZE", cfg.Cache.ProgramCacheSize); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.Mongo.URI == "" || c.Mongo.Database == "" {
		errs = append(errs, errors.New("mongo uri and database are required"))
	}
	if c.RedisAddr == "" {
		errs = append(errs, errors.New("redis address is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("jwt secret is required"))
	}
	if c.Auth.AdvisorUsername == "" || c.Auth.AdvisorPassword == "" {
		errs = append(errs, errors.New("advisor credentials are required"))
	}
	if c.Cache.ProgramCacheSize < 1 {
		errs = append(errs, errors.New("program cache size must be positive"))
	}
	if c.Archive.Endpoint != "" && c.Archive.Bucket == "" {
		errs = append(errs, errors.New("archive bucket is required when the archive is enabled"))
	}
	return errors.Join(errs...)
}

// CatalogEnabled reports whether a course catalog is configured
func (c *Config) CatalogEnabled() bool {
	return strings.TrimSpace(c.Catalog.DSN) != ""
}

// ArchiveEnabled reports whether the snapshot archive is configured
func (c *Config) ArchiveEnabled() bool {
	return strings.TrimSpace(c.Archive.Endpoint) != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
