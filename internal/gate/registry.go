package gate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/rio-alert-service/internal/domain"
	"github.com/couchcryptid/rio-alert-service/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
)

// Launch is one start of the app on a device.
type Launch struct {
	ID        string
	DeviceID  string
	CreatedAt time.Time
	Gate      *Gate

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns when the launch was last looked up.
func (l *Launch) LastSeen() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastSeen
}

func (l *Launch) touch(now time.Time) {
	l.mu.Lock()
	l.lastSeen = now
	l.mu.Unlock()
}

// Registry holds the launches currently alive in the service.
type Registry struct {
	firstAccess domain.FirstAccessStore
	clock       clockwork.Clock
	idleTimeout time.Duration
	logger      *slog.Logger
	metrics     *observability.Metrics

	mu       sync.Mutex
	launches map[string]*Launch
}

// NewRegistry creates an empty registry. Launches idle for longer than
// idleTimeout are removed by Sweep.
func NewRegistry(firstAccess domain.FirstAccessStore, clock clockwork.Clock, idleTimeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Registry {
	return &Registry{
		firstAccess: firstAccess,
		clock:       clock,
		idleTimeout: idleTimeout,
		logger:      logger,
		metrics:     metrics,
		launches:    make(map[string]*Launch),
	}
}

// Bootstrap builds the initial flags for a device. A failed read of the
// first-access flag counts as a first access so onboarding is shown.
func Bootstrap(ctx context.Context, store domain.FirstAccessStore, deviceID string, logger *slog.Logger) State {
	first, err := store.IsFirstAccess(ctx, deviceID)
	if err != nil {
		logger.Warn("read first access flag failed, showing onboarding",
			"device_id", deviceID,
			"error", err,
		)
		first = true
	}
	return State{OnboardingDone: !first}
}

// Start creates a launch for a device, positioned at Splash.
func (r *Registry) Start(ctx context.Context, deviceID string) (*Launch, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, fmt.Errorf("start launch: device id is required: %w", domain.ErrInvalidInput)
	}

	state := Bootstrap(ctx, r.firstAccess, deviceID, r.logger)
	now := r.clock.Now()
	l := &Launch{
		ID:        uuid.NewString(),
		DeviceID:  deviceID,
		CreatedAt: now,
		Gate:      New(state.OnboardingDone),
		lastSeen:  now,
	}

	r.mu.Lock()
	r.launches[l.ID] = l
	r.mu.Unlock()

	r.metrics.ActiveLaunches.Inc()
	r.metrics.GateTransitions.WithLabelValues(string(StageSplash)).Inc()
	r.logger.Info("launch started",
		"launch_id", l.ID,
		"device_id", deviceID,
		"onboarding_done", state.OnboardingDone,
	)
	return l, nil
}

// Get returns a launch by id and marks it as seen.
func (r *Registry) Get(id string) (*Launch, error) {
	r.mu.Lock()
	l, ok := r.launches[id]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("launch %s: %w", id, domain.ErrNotFound)
	}
	l.touch(r.clock.Now())
	return l, nil
}

// Len returns the number of live launches.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.launches)
}

// Sweep removes launches idle for longer than the idle timeout and returns
// how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.clock.Now().Add(-r.idleTimeout)

	r.mu.Lock()
	var expired []string
	for id, l := range r.launches {
		if l.LastSeen().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(r.launches, id)
	}
	r.mu.Unlock()

	if n := len(expired); n > 0 {
		r.metrics.ActiveLaunches.Sub(float64(n))
		r.metrics.ExpiredLaunches.Add(float64(n))
		r.logger.Debug("idle launches swept", "count", n)
	}
	return len(expired)
}

// RunSweeper runs Sweep on a cron schedule until the context is cancelled.
func (r *Registry) RunSweeper(ctx context.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { r.Sweep() }); err != nil {
		return fmt.Errorf("schedule launch sweep %q: %w", schedule, err)
	}

	r.logger.Info("launch sweeper started", "schedule", schedule, "idle_timeout", r.idleTimeout)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	r.logger.Info("launch sweeper stopped")
	return nil
}

// RecordTransition counts a stage entered through Apply.
func (r *Registry) RecordTransition(l *Launch, stage Stage) {
	r.metrics.GateTransitions.WithLabelValues(string(stage)).Inc()
	r.logger.Debug("gate transition", "launch_id", l.ID, "stage", stage)
}
