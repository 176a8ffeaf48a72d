package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	httpadapter "github.com/couchcryptid/rio-alert-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/rio-alert-service/internal/adapter/kafka"
	"github.com/couchcryptid/rio-alert-service/internal/adapter/mapbox"
	"github.com/couchcryptid/rio-alert-service/internal/adapter/mock"
	"github.com/couchcryptid/rio-alert-service/internal/adapter/riverapi"
	"github.com/couchcryptid/rio-alert-service/internal/adapter/sqlite"
	"github.com/couchcryptid/rio-alert-service/internal/app"
	"github.com/couchcryptid/rio-alert-service/internal/config"
	"github.com/couchcryptid/rio-alert-service/internal/domain"
	"github.com/couchcryptid/rio-alert-service/internal/gate"
	"github.com/couchcryptid/rio-alert-service/internal/monitor"
	"github.com/couchcryptid/rio-alert-service/internal/observability"
	"github.com/couchcryptid/rio-alert-service/internal/view"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		logger.Error("failed to create database directory", "error", err)
		os.Exit(1)
	}
	store, err := sqlite.NewStore(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}

	provider, err := newProvider(cfg, clock, logger)
	if err != nil {
		logger.Error("failed to create river provider", "error", err)
		os.Exit(1)
	}

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	// Level-update publishing (enabled by KAFKA_BROKERS).
	var publisher *kafkaadapter.Publisher
	var levelPublisher domain.LevelPublisher
	if cfg.KafkaEnabled() {
		publisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaLevelTopic, logger)
		levelPublisher = publisher
		logger.Info("level update publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaLevelTopic)
	}

	svc := monitor.New(provider, levelPublisher, logger, metrics)
	registry := gate.NewRegistry(store, clock, cfg.LaunchIdleTimeout, logger, metrics)
	flows := app.New(registry, store, store, geocoder, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Flows:    flows,
		Monitor:  svc,
		Renderer: view.NewRenderer(cfg.EmergencyPhone),
		Ready:    readiness{store, svc},
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start idle-launch sweeper.
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		if err := registry.RunSweeper(ctx, cfg.LaunchSweepSchedule); err != nil {
			logger.Error("launch sweeper error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	<-sweeperDone
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// newProvider builds the river data source named by DATA_PROVIDER.
func newProvider(cfg *config.Config, clock clockwork.Clock, logger *slog.Logger) (domain.RiverProvider, error) {
	if cfg.DataProvider == config.ProviderAPI {
		logger.Info("using river api provider", "url", cfg.RiverAPIURL, "timeout", cfg.RiverAPITimeout)
		return riverapi.NewClient(cfg.RiverAPIURL, cfg.RiverAPITimeout, logger), nil
	}

	fixture := mock.Seed(clock.Now().UTC())
	if cfg.MockFixture != "" {
		var err error
		fixture, err = mock.LoadFixture(cfg.MockFixture)
		if err != nil {
			return nil, err
		}
	}
	var latency mock.Latency
	if cfg.MockLatency {
		latency = mock.DefaultLatency()
	}
	logger.Info("using mock river provider",
		"rivers", len(fixture.Rivers),
		"fixture", cfg.MockFixture,
		"latency", cfg.MockLatency,
	)
	return mock.New(fixture, clock, latency), nil
}

// readiness is ready when every checker is.
type readiness []sharedobs.ReadinessChecker

func (r readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}
