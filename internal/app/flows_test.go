package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/rio-alert-service/internal/domain"
	"github.com/couchcryptid/rio-alert-service/internal/gate"
	"github.com/couchcryptid/rio-alert-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDevice = "device-1"

var errDiskFull = errors.New("disk full")

// --- fakes ---

type memoryStore struct {
	mu          sync.Mutex
	users       map[string]domain.User // by email
	passwords   map[string]string
	current     map[string]string // device -> email
	onboarded   map[string]bool
	onboardErr  error
	locationErr error
	logoutErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:     map[string]domain.User{},
		passwords: map[string]string{},
		current:   map[string]string{},
		onboarded: map[string]bool{},
	}
}

func (m *memoryStore) Register(_ context.Context, deviceID string, reg domain.Registration) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := domain.NormalizeEmail(reg.Email)
	if _, ok := m.users[email]; ok {
		return domain.User{}, domain.ErrDuplicateEmail
	}
	u := domain.User{ID: "u-" + email, Name: reg.Name, Email: email}
	m.users[email] = u
	m.passwords[email] = reg.Password
	m.current[deviceID] = email
	return u, nil
}

func (m *memoryStore) Login(_ context.Context, deviceID string, creds domain.Credentials) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := domain.NormalizeEmail(creds.Email)
	u, ok := m.users[email]
	if !ok || m.passwords[email] != creds.Password {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	m.current[deviceID] = email
	return u, nil
}

func (m *memoryStore) Logout(_ context.Context, deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.logoutErr != nil {
		return m.logoutErr
	}
	delete(m.current, deviceID)
	return nil
}

func (m *memoryStore) CurrentUser(_ context.Context, deviceID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email, ok := m.current[deviceID]
	if !ok {
		return nil, nil
	}
	u := m.users[email]
	return &u, nil
}

func (m *memoryStore) UpdateUserLocation(_ context.Context, userID string, loc domain.UserLocation) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locationErr != nil {
		return domain.User{}, m.locationErr
	}
	for email, u := range m.users {
		if u.ID == userID {
			u.Location = &loc
			m.users[email] = u
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (m *memoryStore) IsFirstAccess(_ context.Context, deviceID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.onboarded[deviceID], nil
}

func (m *memoryStore) CompleteOnboarding(_ context.Context, deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.onboardErr != nil {
		return m.onboardErr
	}
	m.onboarded[deviceID] = true
	return nil
}

type stubGeocoder struct {
	result domain.GeocodingResult
	err    error
}

func (g stubGeocoder) ForwardGeocode(context.Context, string, string) (domain.GeocodingResult, error) {
	return g.result, g.err
}

func (g stubGeocoder) ReverseGeocode(context.Context, float64, float64) (domain.GeocodingResult, error) {
	return g.result, g.err
}

// --- helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFlows(store *memoryStore, geocoder domain.Geocoder) (*Flows, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC))
	registry := gate.NewRegistry(store, clock, 30*time.Minute, discardLogger(), metrics)
	return New(registry, store, store, geocoder, discardLogger(), metrics), metrics
}

var maria = domain.Registration{Name: "Maria Silva", Email: "maria@example.com", Password: "segredo"}

// toAuth starts a launch and walks it to the Auth stage.
func toAuth(t *testing.T, f *Flows) *gate.Launch {
	t.Helper()
	ctx := context.Background()
	l, err := f.Start(ctx, testDevice)
	require.NoError(t, err)
	_, err = f.FinishSplash(ctx, l)
	require.NoError(t, err)
	if l.Gate.Stage() == gate.StageOnboarding {
		_, err = f.CompleteOnboarding(ctx, l)
		require.NoError(t, err)
	}
	require.Equal(t, gate.StageAuth, l.Gate.Stage())
	return l
}

// toMain walks a fresh launch all the way to Main as a newly registered user.
func toMain(t *testing.T, f *Flows) *gate.Launch {
	t.Helper()
	l := toAuth(t, f)
	_, _, err := f.Register(context.Background(), l, maria)
	require.NoError(t, err)
	_, stage, err := f.SaveLocation(context.Background(), l, domain.UserLocation{City: "São Paulo"})
	require.NoError(t, err)
	require.Equal(t, gate.StageMain, stage)
	return l
}

// --- tests ---

func TestFlows_FirstLaunchWalksEveryStage(t *testing.T) {
	store := newMemoryStore()
	f, metrics := newTestFlows(store, nil)
	ctx := context.Background()

	l, err := f.Start(ctx, testDevice)
	require.NoError(t, err)
	assert.Equal(t, gate.StageSplash, l.Gate.Stage())

	stage, err := f.FinishSplash(ctx, l)
	require.NoError(t, err)
	assert.Equal(t, gate.StageOnboarding, stage)

	stage, err = f.CompleteOnboarding(ctx, l)
	require.NoError(t, err)
	assert.Equal(t, gate.StageAuth, stage)
	assert.True(t, store.onboarded[testDevice])

	user, stage, err := f.Register(ctx, l, maria)
	require.NoError(t, err)
	assert.Equal(t, gate.StageLocationSetup, stage)
	assert.Equal(t, "maria@example.com", user.Email)

	loc, stage, err := f.SaveLocation(ctx, l, domain.UserLocation{City: "São Paulo", Neighborhood: "Pinheiros"})
	require.NoError(t, err)
	assert.Equal(t, gate.StageMain, stage)
	assert.Equal(t, "Pinheiros, São Paulo", loc.Label())

	current, err := f.CurrentUser(ctx, l)
	require.NoError(t, err)
	require.NotNil(t, current)
	require.NotNil(t, current.Location)
	assert.Equal(t, "São Paulo", current.Location.City)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GateTransitions.WithLabelValues("main")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthAttempts.WithLabelValues("register", "success")))
}

func TestFlows_ReturningDeviceSkipsOnboarding(t *testing.T) {
	store := newMemoryStore()
	store.onboarded[testDevice] = true
	f, _ := newTestFlows(store, nil)

	l, err := f.Start(context.Background(), testDevice)
	require.NoError(t, err)
	stage, err := f.FinishSplash(context.Background(), l)
	require.NoError(t, err)
	assert.Equal(t, gate.StageAuth, stage)
}

func TestFlows_OnboardingPersistFailureStillAdvances(t *testing.T) {
	store := newMemoryStore()
	store.onboardErr = errDiskFull
	f, _ := newTestFlows(store, nil)

	l := toAuth(t, f)
	assert.Equal(t, gate.StageAuth, l.Gate.Stage())
	assert.False(t, store.onboarded[testDevice])

	// the next cold start shows onboarding again
	next, err := f.Start(context.Background(), testDevice)
	require.NoError(t, err)
	stage, err := f.FinishSplash(context.Background(), next)
	require.NoError(t, err)
	assert.Equal(t, gate.StageOnboarding, stage)
}

func TestFlows_CannotSkipStages(t *testing.T) {
	f, _ := newTestFlows(newMemoryStore(), nil)
	ctx := context.Background()

	l, err := f.Start(ctx, testDevice)
	require.NoError(t, err)

	_, _, err = f.Login(ctx, l, domain.Credentials{Email: "maria@example.com", Password: "x"})
	require.ErrorIs(t, err, gate.ErrInvalidTransition)

	_, _, err = f.SaveLocation(ctx, l, domain.UserLocation{City: "Santos"})
	require.ErrorIs(t, err, gate.ErrInvalidTransition)

	_, err = f.Logout(ctx, l)
	require.ErrorIs(t, err, gate.ErrInvalidTransition)

	_, err = f.CompleteOnboarding(ctx, l)
	require.ErrorIs(t, err, gate.ErrInvalidTransition)

	assert.Equal(t, gate.StageSplash, l.Gate.Stage())
}

func TestFlows_RegisterDuplicateEmail(t *testing.T) {
	store := newMemoryStore()
	f, metrics := newTestFlows(store, nil)
	_, err := store.Register(context.Background(), "other-device", maria)
	require.NoError(t, err)

	l := toAuth(t, f)
	_, stage, err := f.Register(context.Background(), l, maria)
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
	assert.Equal(t, gate.StageAuth, stage)
	assert.Equal(t, gate.StageAuth, l.Gate.Stage())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthAttempts.WithLabelValues("register", "rejected")))
}

func TestFlows_RegisterMissingFields(t *testing.T) {
	f, _ := newTestFlows(newMemoryStore(), nil)
	l := toAuth(t, f)

	_, _, err := f.Register(context.Background(), l, domain.Registration{Email: "maria@example.com"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, gate.StageAuth, l.Gate.Stage())
}

func TestFlows_Login(t *testing.T) {
	store := newMemoryStore()
	_, err := store.Register(context.Background(), "other-device", maria)
	require.NoError(t, err)
	f, metrics := newTestFlows(store, nil)
	l := toAuth(t, f)

	_, _, err = f.Login(context.Background(), l, domain.Credentials{Email: maria.Email, Password: "errada"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, gate.StageAuth, l.Gate.Stage())

	user, stage, err := f.Login(context.Background(), l, domain.Credentials{Email: "MARIA@example.com", Password: maria.Password})
	require.NoError(t, err)
	assert.Equal(t, gate.StageLocationSetup, stage)
	assert.Equal(t, "Maria Silva", user.Name)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthAttempts.WithLabelValues("login", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthAttempts.WithLabelValues("login", "success")))
}

func TestFlows_SaveLocation_RequiresCityOrCoordinates(t *testing.T) {
	f, _ := newTestFlows(newMemoryStore(), nil)
	l := toAuth(t, f)
	_, _, err := f.Register(context.Background(), l, maria)
	require.NoError(t, err)

	_, stage, err := f.SaveLocation(context.Background(), l, domain.UserLocation{City: "  "})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, gate.StageLocationSetup, stage)
}

func TestFlows_SaveLocation_CoordinatesWithoutGeocoder(t *testing.T) {
	tests := []struct {
		name     string
		geocoder domain.Geocoder
	}{
		{"geocoding disabled", nil},
		{"geocoding fails", stubGeocoder{err: errors.New("mapbox unavailable")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			f, _ := newTestFlows(store, tt.geocoder)
			l := toAuth(t, f)
			_, _, err := f.Register(context.Background(), l, maria)
			require.NoError(t, err)

			here := domain.Geo{Latitude: -23.5505, Longitude: -46.6333}
			loc, stage, err := f.SaveLocation(context.Background(), l, domain.UserLocation{Coordinates: &here})
			require.NoError(t, err)
			assert.Equal(t, gate.StageMain, stage)
			assert.Empty(t, loc.City)
			require.NotNil(t, loc.Coordinates)
			assert.Equal(t, here, *loc.Coordinates)

			current, err := f.CurrentUser(context.Background(), l)
			require.NoError(t, err)
			require.NotNil(t, current)
			require.NotNil(t, current.Location)
			assert.Equal(t, here, *current.Location.Coordinates)
		})
	}
}

func TestFlows_SaveLocation_ReverseGeocodesCoordinates(t *testing.T) {
	geocoder := stubGeocoder{result: domain.GeocodingResult{PlaceName: "Santos", FormattedAddress: "Santos, São Paulo, Brasil"}}
	f, _ := newTestFlows(newMemoryStore(), geocoder)
	l := toAuth(t, f)
	_, _, err := f.Register(context.Background(), l, maria)
	require.NoError(t, err)

	loc, stage, err := f.SaveLocation(context.Background(), l, domain.UserLocation{
		Coordinates: &domain.Geo{Latitude: -23.9608, Longitude: -46.3336},
	})
	require.NoError(t, err)
	assert.Equal(t, gate.StageMain, stage)
	assert.Equal(t, "Santos", loc.City)
}

func TestFlows_SaveLocation_PersistFailureStillAdvances(t *testing.T) {
	store := newMemoryStore()
	store.locationErr = errDiskFull
	f, _ := newTestFlows(store, nil)
	l := toAuth(t, f)
	_, _, err := f.Register(context.Background(), l, maria)
	require.NoError(t, err)

	_, stage, err := f.SaveLocation(context.Background(), l, domain.UserLocation{City: "Campinas"})
	require.NoError(t, err)
	assert.Equal(t, gate.StageMain, stage)
}

func TestFlows_Logout(t *testing.T) {
	store := newMemoryStore()
	f, _ := newTestFlows(store, nil)
	l := toMain(t, f)

	stage, err := f.Logout(context.Background(), l)
	require.NoError(t, err)
	assert.Equal(t, gate.StageAuth, stage)

	state := l.Gate.State()
	assert.True(t, state.SplashDone)
	assert.True(t, state.OnboardingDone)
	assert.False(t, state.Authenticated)
	assert.False(t, state.LocationSet)

	user, err := f.CurrentUser(context.Background(), l)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestFlows_LogoutPersistFailureStillSignsOut(t *testing.T) {
	store := newMemoryStore()
	store.logoutErr = errDiskFull
	f, _ := newTestFlows(store, nil)
	l := toMain(t, f)

	stage, err := f.Logout(context.Background(), l)
	require.NoError(t, err)
	assert.Equal(t, gate.StageAuth, stage)
}

func TestFlows_Launch(t *testing.T) {
	f, _ := newTestFlows(newMemoryStore(), nil)

	l, err := f.Start(context.Background(), testDevice)
	require.NoError(t, err)

	got, err := f.Launch(l.ID)
	require.NoError(t, err)
	assert.Same(t, l, got)

	_, err = f.Launch("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.Start(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
