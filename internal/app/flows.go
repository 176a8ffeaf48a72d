// Package app binds the completion of each top-level stage (splash,
// onboarding, login or register, location setup, logout) to a launch's gate
// and to the stores behind it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/rio-alert-service/internal/domain"
	"github.com/couchcryptid/rio-alert-service/internal/gate"
	"github.com/couchcryptid/rio-alert-service/internal/observability"
)

// Flows runs stage completions against launches held in a registry.
type Flows struct {
	registry    *gate.Registry
	sessions    domain.SessionStore
	firstAccess domain.FirstAccessStore
	geocoder    domain.Geocoder
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates Flows. geocoder may be nil to store locations as entered.
func New(registry *gate.Registry, sessions domain.SessionStore, firstAccess domain.FirstAccessStore, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *Flows {
	return &Flows{
		registry:    registry,
		sessions:    sessions,
		firstAccess: firstAccess,
		geocoder:    geocoder,
		logger:      logger,
		metrics:     metrics,
	}
}

// Start begins a launch for a device.
func (f *Flows) Start(ctx context.Context, deviceID string) (*gate.Launch, error) {
	return f.registry.Start(ctx, deviceID)
}

// Launch looks up a live launch.
func (f *Flows) Launch(id string) (*gate.Launch, error) {
	return f.registry.Get(id)
}

func (f *Flows) FinishSplash(_ context.Context, l *gate.Launch) (gate.Stage, error) {
	return f.advance(l, gate.EventSplashFinished)
}

// CompleteOnboarding persists the onboarding flag for the device and moves
// on to Auth. A failed write is logged; the launch still advances and the
// device sees onboarding again on its next cold start.
func (f *Flows) CompleteOnboarding(ctx context.Context, l *gate.Launch) (gate.Stage, error) {
	if err := l.Gate.Require(gate.StageOnboarding); err != nil {
		return l.Gate.Stage(), err
	}
	if err := f.firstAccess.CompleteOnboarding(ctx, l.DeviceID); err != nil {
		f.logger.Warn("persist onboarding completion failed",
			"launch_id", l.ID,
			"device_id", l.DeviceID,
			"error", err,
		)
	}
	return f.advance(l, gate.EventOnboardingCompleted)
}

// Register creates an account, signs it in on the device, and moves on to
// location setup.
func (f *Flows) Register(ctx context.Context, l *gate.Launch, reg domain.Registration) (domain.User, gate.Stage, error) {
	if err := l.Gate.Require(gate.StageAuth); err != nil {
		return domain.User{}, l.Gate.Stage(), err
	}
	if err := reg.Validate(); err != nil {
		f.recordAuth("register", err)
		return domain.User{}, gate.StageAuth, err
	}

	user, err := f.sessions.Register(ctx, l.DeviceID, reg)
	f.recordAuth("register", err)
	if err != nil {
		return domain.User{}, gate.StageAuth, fmt.Errorf("register: %w", err)
	}
	f.logger.Info("user registered", "launch_id", l.ID, "user_id", user.ID)

	stage, err := f.advance(l, gate.EventAuthenticated)
	return user, stage, err
}

// Login signs an existing account in on the device.
func (f *Flows) Login(ctx context.Context, l *gate.Launch, creds domain.Credentials) (domain.User, gate.Stage, error) {
	if err := l.Gate.Require(gate.StageAuth); err != nil {
		return domain.User{}, l.Gate.Stage(), err
	}
	if err := creds.Validate(); err != nil {
		f.recordAuth("login", err)
		return domain.User{}, gate.StageAuth, err
	}

	user, err := f.sessions.Login(ctx, l.DeviceID, creds)
	f.recordAuth("login", err)
	if err != nil {
		return domain.User{}, gate.StageAuth, fmt.Errorf("login: %w", err)
	}
	f.logger.Info("user logged in", "launch_id", l.ID, "user_id", user.ID)

	stage, err := f.advance(l, gate.EventAuthenticated)
	return user, stage, err
}

// SaveLocation enriches the location, stores it on the signed-in user, and
// moves on to Main. A failed write is logged and the launch still advances.
func (f *Flows) SaveLocation(ctx context.Context, l *gate.Launch, loc domain.UserLocation) (domain.UserLocation, gate.Stage, error) {
	if err := l.Gate.Require(gate.StageLocationSetup); err != nil {
		return domain.UserLocation{}, l.Gate.Stage(), err
	}

	loc = domain.EnrichLocation(ctx, loc, f.geocoder, f.logger)
	if err := loc.Validate(); err != nil {
		return domain.UserLocation{}, gate.StageLocationSetup, err
	}

	if err := f.storeLocation(ctx, l, loc); err != nil {
		f.logger.Warn("persist user location failed",
			"launch_id", l.ID,
			"device_id", l.DeviceID,
			"error", err,
		)
	}

	stage, err := f.advance(l, gate.EventLocationCompleted)
	return loc, stage, err
}

func (f *Flows) storeLocation(ctx context.Context, l *gate.Launch, loc domain.UserLocation) error {
	user, err := f.sessions.CurrentUser(ctx, l.DeviceID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no user signed in on device %s: %w", l.DeviceID, domain.ErrNotFound)
	}
	_, err = f.sessions.UpdateUserLocation(ctx, user.ID, loc)
	return err
}

// Logout signs the device out and drops the launch back to Auth. The launch
// is signed out even when the store cannot be updated.
func (f *Flows) Logout(ctx context.Context, l *gate.Launch) (gate.Stage, error) {
	if err := l.Gate.Require(gate.StageMain); err != nil {
		return l.Gate.Stage(), err
	}
	if err := f.sessions.Logout(ctx, l.DeviceID); err != nil {
		f.logger.Warn("persist logout failed",
			"launch_id", l.ID,
			"device_id", l.DeviceID,
			"error", err,
		)
	}
	return f.advance(l, gate.EventLoggedOut)
}

// CurrentUser returns the user signed in on the launch's device, or nil.
func (f *Flows) CurrentUser(ctx context.Context, l *gate.Launch) (*domain.User, error) {
	user, err := f.sessions.CurrentUser(ctx, l.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return user, nil
}

func (f *Flows) advance(l *gate.Launch, ev gate.Event) (gate.Stage, error) {
	stage, err := l.Gate.Apply(ev)
	if err != nil {
		return stage, err
	}
	f.registry.RecordTransition(l, stage)
	return stage, nil
}

func (f *Flows) recordAuth(action string, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrDuplicateEmail):
		outcome = "rejected"
	default:
		outcome = "error"
	}
	f.metrics.AuthAttempts.WithLabelValues(action, outcome).Inc()
}
