package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Feed     FeedConfig     `yaml:"feed"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Storage  StorageConfig  `yaml:"storage"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type FeedConfig struct {
	URL              string               `yaml:"url"`
	UnderlyingSymbol string               `yaml:"underlying_symbol"`
	ContractTypes    []string             `yaml:"contract_types"`
	Timeout          time.Duration        `yaml:"timeout"`
	RateLimit        RateLimitConfig      `yaml:"rate_limit"`
	ConnectionPool   ConnectionPoolConfig `yaml:"connection_pool"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"requests_per_second"`
	BurstSize         int `yaml:"burst_size"`
}

type ConnectionPoolConfig struct {
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxConnsPerHost int           `yaml:"max_conns_per_host"`
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

type SnapshotConfig struct {
	BandPercent   float64 `yaml:"band_percent"`
	ExpiryPolicy  string  `yaml:"expiry_policy"`
	PriorLookback int     `yaml:"prior_lookback"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	Namespace string `yaml:"namespace"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

const (
	defaultFeedURL       = "https://api.india.delta.exchange/v2/tickers"
	defaultUnderlying    = "ETH"
	defaultFeedTimeout   = 30 * time.Second
	defaultBandPercent   = 25
	defaultExpiryPolicy  = "weekly_window"
	defaultPriorLookback = 300
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Feed: FeedConfig{
			URL:              defaultFeedURL,
			UnderlyingSymbol: defaultUnderlying,
			ContractTypes:    []string{"call_options", "put_options"},
			Timeout:          defaultFeedTimeout,
		},
		Snapshot: SnapshotConfig{
			BandPercent:   defaultBandPercent,
			ExpiryPolicy:  defaultExpiryPolicy,
			PriorLookback: defaultPriorLookback,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override settings from environment variables if available
	if config.Storage.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			config.Storage.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			config.Storage.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Storage.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			config.Storage.S3.Bucket = strings.TrimSpace(v)
		}
	}
	if v := os.Getenv("FEED_URL"); v != "" {
		config.Feed.URL = strings.TrimSpace(v)
	}

	config.Storage.S3.Bucket = strings.TrimSpace(config.Storage.S3.Bucket)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if cfg.App.Version == "" {
		return fmt.Errorf("app.version is required")
	}

	if cfg.Feed.URL == "" {
		return fmt.Errorf("feed.url is required")
	}
	if cfg.Feed.Timeout <= 0 {
		return fmt.Errorf("feed.timeout must be greater than 0")
	}

	if cfg.Snapshot.BandPercent <= 0 || cfg.Snapshot.BandPercent > 100 {
		return fmt.Errorf("snapshot.band_percent must be in (0, 100]")
	}
	switch cfg.Snapshot.ExpiryPolicy {
	case "weekly_window", "nearest_two":
	default:
		return fmt.Errorf("snapshot.expiry_policy '%s' is invalid", cfg.Snapshot.ExpiryPolicy)
	}
	if cfg.Snapshot.PriorLookback <= 0 {
		return fmt.Errorf("snapshot.prior_lookback must be greater than 0")
	}

	// Production-like deployments must persist somewhere durable.
	if !cfg.Storage.S3.Enabled && IsProductionLike(AppEnvironment()) {
		return fmt.Errorf("storage.s3 must be enabled in %s", AppEnvironment())
	}

	if cfg.Storage.S3.Enabled {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when S3 is enabled")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required when S3 is enabled")
		}
		if cfg.Storage.S3.AccessKeyID == "" || cfg.Storage.S3.SecretAccessKey == "" {
			return fmt.Errorf("storage.s3.access_key_id and storage.s3.secret_access_key are required when S3 is enabled")
		}
		if !isValidS3Bucket(cfg.Storage.S3.Bucket) {
			return fmt.Errorf("storage.s3.bucket '%s' is invalid", cfg.Storage.S3.Bucket)
		}
	}

	return nil
}

var s3BucketRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func isValidS3Bucket(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return s3BucketRegexp.MatchString(name)
}
