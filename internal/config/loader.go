package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "feedbackd.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "FEEDBACKD_PORT")
	setString(&cfg.Server.CORSOrigin, "FEEDBACKD_CORS_ORIGIN")
	setInt(&cfg.Server.PageSize, "FEEDBACKD_PAGE_SIZE")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "FEEDBACKD_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "FEEDBACKD_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "FEEDBACKD_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "FEEDBACKD_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "FEEDBACKD_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setInt64(&cfg.Cache.MaxSizeMB, "FEEDBACKD_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.ExportTTL, "FEEDBACKD_CACHE_EXPORT_TTL")
	setDuration(&cfg.Cache.SnapshotTTL, "FEEDBACKD_CACHE_SNAPSHOT_TTL")
	setString(&cfg.Share.Origin, "FEEDBACKD_SHARE_ORIGIN")
	setDuration(&cfg.Share.TTL, "FEEDBACKD_SHARE_TTL")
	setInt64(&cfg.Export.MaxConcurrent, "FEEDBACKD_EXPORT_MAX_CONCURRENT")
	setBool(&cfg.Auth.Enabled, "FEEDBACKD_AUTH_ENABLED")
	setFloat64(&cfg.Rate.RequestsPerSecond, "FEEDBACKD_RATE_RPS")
	setInt(&cfg.Rate.Burst, "FEEDBACKD_RATE_BURST")
	setString(&cfg.Notify.SlackWebhookURL, "FEEDBACKD_SLACK_WEBHOOK_URL")
	setString(&cfg.Notify.DiscordWebhookURL, "FEEDBACKD_DISCORD_WEBHOOK_URL")
	setString(&cfg.Logging.Level, "FEEDBACKD_LOG_LEVEL")
	setString(&cfg.Logging.Service, "FEEDBACKD_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "FEEDBACKD_LOG_ASYNC")
	setBool(&cfg.Telemetry.Enabled, "FEEDBACKD_OTEL_ENABLED")
	setString(&cfg.Telemetry.Endpoint, "FEEDBACKD_OTEL_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Server.PageSize < 1 {
		return errors.New("server.page_size must be >= 1")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if cfg.Share.Origin == "" {
		return errors.New("share.origin is required")
	}
	if cfg.Share.TTL <= 0 {
		return errors.New("share.ttl must be positive")
	}
	if cfg.Export.MaxConcurrent < 1 {
		return errors.New("export.max_concurrent must be >= 1")
	}
	if cfg.Rate.Burst < 1 {
		return errors.New("rate.burst must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
