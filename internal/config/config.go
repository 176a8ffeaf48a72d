package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/robfig/cron/v3"
)

// Data provider names accepted in DATA_PROVIDER.
const (
	ProviderMock = "mock"
	ProviderAPI  = "api"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// River data source.
	DataProvider    string
	RiverAPIURL     string
	RiverAPITimeout time.Duration
	MockLatency     bool
	MockFixture     string

	DatabasePath   string
	EmergencyPhone string

	// Level-update publishing; disabled when KafkaBrokers is empty.
	KafkaBrokers    []string
	KafkaLevelTopic string

	LaunchIdleTimeout   time.Duration
	LaunchSweepSchedule string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// KafkaEnabled reports whether level updates are published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	riverAPITimeout, err := parseDuration("RIVER_API_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	idleTimeout, err := parseDuration("LAUNCH_IDLE_TIMEOUT", "30m")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	mockLatency, err := parseBool("MOCK_LATENCY", true)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataProvider:    strings.ToLower(sharedcfg.EnvOrDefault("DATA_PROVIDER", ProviderMock)),
		RiverAPIURL:     os.Getenv("RIVER_API_URL"),
		RiverAPITimeout: riverAPITimeout,
		MockLatency:     mockLatency,
		MockFixture:     os.Getenv("MOCK_FIXTURE"),

		DatabasePath:   sharedcfg.EnvOrDefault("DATABASE_PATH", "data/rioalert.db"),
		EmergencyPhone: sharedcfg.EnvOrDefault("EMERGENCY_PHONE", "199"),

		KafkaBrokers:    sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaLevelTopic: sharedcfg.EnvOrDefault("KAFKA_LEVEL_TOPIC", "river-levels"),

		LaunchIdleTimeout:   idleTimeout,
		LaunchSweepSchedule: sharedcfg.EnvOrDefault("LAUNCH_SWEEP_SCHEDULE", "@every 5m"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
	}

	switch cfg.DataProvider {
	case ProviderMock:
	case ProviderAPI:
		if cfg.RiverAPIURL == "" {
			return nil, errors.New("RIVER_API_URL is required when DATA_PROVIDER is api")
		}
	default:
		return nil, fmt.Errorf("invalid DATA_PROVIDER %q: must be mock or api", cfg.DataProvider)
	}
	if _, err := cron.ParseStandard(cfg.LaunchSweepSchedule); err != nil {
		return nil, fmt.Errorf("invalid LAUNCH_SWEEP_SCHEDULE: %w", err)
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: must be true or false", key)
	}
	return b, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
