// Package monitor is the screen-facing entry point to river data. It wraps a
// domain.RiverProvider with metrics, level-update bookkeeping, and optional
// publishing of applied updates.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/rio-alert-service/internal/domain"
	"github.com/couchcryptid/rio-alert-service/internal/observability"
)

// observation is the last level the service saw for a river.
type observation struct {
	level   float64
	alert   domain.AlertLevel
	updated time.Time
}

// Service fetches river data on behalf of screens. Every call goes to the
// provider; nothing is cached or retried.
type Service struct {
	provider  domain.RiverProvider
	publisher domain.LevelPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu       sync.Mutex
	observed map[string]observation
}

// New creates a Service. publisher may be nil to disable publishing.
func New(provider domain.RiverProvider, publisher domain.LevelPublisher, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		provider:  provider,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		observed:  make(map[string]observation),
	}
}

// CheckReadiness reports whether the provider answers a river listing.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if _, err := s.provider.Rivers(ctx); err != nil {
		return fmt.Errorf("river provider not ready: %w", err)
	}
	return nil
}

func (s *Service) Rivers(ctx context.Context) ([]domain.RiverRecord, error) {
	done := s.track("rivers")
	rivers, err := s.provider.Rivers(ctx)
	done(err)
	if err != nil {
		return nil, fmt.Errorf("fetch rivers: %w", err)
	}
	if rivers == nil {
		rivers = []domain.RiverRecord{}
	}
	s.observe(rivers...)
	return rivers, nil
}

// River returns one record by id, or ErrNotFound.
func (s *Service) River(ctx context.Context, riverID string) (domain.RiverRecord, error) {
	rivers, err := s.Rivers(ctx)
	if err != nil {
		return domain.RiverRecord{}, err
	}
	for _, r := range rivers {
		if r.ID == riverID {
			return r, nil
		}
	}
	return domain.RiverRecord{}, fmt.Errorf("river %s: %w", riverID, domain.ErrNotFound)
}

// RiverAlert returns the river's alert, or nil when it has none.
func (s *Service) RiverAlert(ctx context.Context, riverID string) (*domain.RiverAlert, error) {
	done := s.track("alert")
	alert, err := s.provider.RiverAlert(ctx, riverID)
	done(err)
	if err != nil {
		return nil, fmt.Errorf("fetch alert for %s: %w", riverID, err)
	}
	return alert, nil
}

func (s *Service) Shelters(ctx context.Context) ([]domain.Shelter, error) {
	done := s.track("shelters")
	shelters, err := s.provider.Shelters(ctx)
	done(err)
	if err != nil {
		return nil, fmt.Errorf("fetch shelters: %w", err)
	}
	if shelters == nil {
		shelters = []domain.Shelter{}
	}
	return shelters, nil
}

func (s *Service) Forecast(ctx context.Context, city string) (string, error) {
	done := s.track("forecast")
	text, err := s.provider.WeatherForecast(ctx, city)
	done(err)
	if err != nil {
		return "", fmt.Errorf("fetch forecast for %q: %w", city, err)
	}
	return text, nil
}

// UpdateLevel applies a measured level to a river and publishes the change.
// A publish failure is logged and counted; the update itself stands.
func (s *Service) UpdateLevel(ctx context.Context, riverID string, level float64) (domain.RiverRecord, error) {
	if err := domain.ValidateLevel(level); err != nil {
		return domain.RiverRecord{}, fmt.Errorf("update river %s: %w", riverID, err)
	}

	prev, err := s.previous(ctx, riverID)
	if err != nil {
		return domain.RiverRecord{}, err
	}

	done := s.track("update")
	river, err := s.provider.UpdateRiverLevel(ctx, riverID, level)
	done(err)
	if err != nil {
		return domain.RiverRecord{}, fmt.Errorf("update river %s: %w", riverID, err)
	}
	s.observe(river)

	update := domain.LevelUpdate{River: river, PreviousLevel: prev.level, PreviousAlert: prev.alert}
	s.metrics.LevelUpdates.WithLabelValues(string(river.AlertLevel)).Inc()
	if update.Escalated() {
		s.metrics.LevelEscalations.Inc()
		s.logger.Warn("river alert escalated",
			"river_id", river.ID,
			"river", river.Name,
			"from", prev.alert,
			"to", river.AlertLevel,
			"level", river.CurrentLevel,
		)
	} else {
		s.logger.Info("river level updated",
			"river_id", river.ID,
			"level", river.CurrentLevel,
			"alert_level", river.AlertLevel,
		)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishLevel(ctx, update); err != nil {
			s.metrics.PublishErrors.Inc()
			s.logger.Error("publish level update failed", "error", err, "river_id", river.ID)
		}
	}
	return river, nil
}

// previous returns the last level seen for the river, listing the rivers
// once when the service has not seen it yet.
func (s *Service) previous(ctx context.Context, riverID string) (observation, error) {
	s.mu.Lock()
	obs, ok := s.observed[riverID]
	s.mu.Unlock()
	if ok {
		return obs, nil
	}

	r, err := s.River(ctx, riverID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return observation{}, fmt.Errorf("update river %s: %w", riverID, domain.ErrNotFound)
		}
		return observation{}, err
	}
	return observation{level: r.CurrentLevel, alert: r.AlertLevel, updated: r.LastUpdate}, nil
}

// observe records the rivers' levels. A record older than the one already
// seen is ignored, so a slow listing cannot roll back a newer update.
func (s *Service) observe(rivers ...domain.RiverRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rivers {
		if seen, ok := s.observed[r.ID]; ok && r.LastUpdate.Before(seen.updated) {
			continue
		}
		s.observed[r.ID] = observation{level: r.CurrentLevel, alert: r.AlertLevel, updated: r.LastUpdate}
	}
}

// track starts timing a provider call; the returned func records its outcome.
func (s *Service) track(op string) func(error) {
	start := time.Now()
	return func(err error) {
		s.metrics.ProviderDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		s.metrics.ProviderRequests.WithLabelValues(op, outcome).Inc()
	}
}
