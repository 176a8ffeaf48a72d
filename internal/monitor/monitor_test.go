package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/rio-alert-service/internal/adapter/mock"
	"github.com/couchcryptid/rio-alert-service/internal/domain"
	"github.com/couchcryptid/rio-alert-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seedTime = time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingPublisher struct {
	updates []domain.LevelUpdate
	err     error
}

func (p *recordingPublisher) PublishLevel(_ context.Context, u domain.LevelUpdate) error {
	p.updates = append(p.updates, u)
	return p.err
}

type failingProvider struct {
	domain.RiverProvider
	err error
}

func (p failingProvider) Rivers(context.Context) ([]domain.RiverRecord, error) {
	return nil, p.err
}

func (p failingProvider) Shelters(context.Context) ([]domain.Shelter, error) {
	return nil, p.err
}

func newTestService(pub domain.LevelPublisher) (*Service, *observability.Metrics) {
	clock := clockwork.NewFakeClockAt(seedTime)
	provider := mock.New(mock.Seed(seedTime), clock, mock.Latency{})
	metrics := observability.NewMetricsForTesting()
	return New(provider, pub, discardLogger(), metrics), metrics
}

func TestService_Rivers(t *testing.T) {
	svc, metrics := newTestService(nil)

	rivers, err := svc.Rivers(context.Background())
	require.NoError(t, err)
	require.Len(t, rivers, 3)
	for _, r := range rivers {
		assert.True(t, r.Consistent(), "river %s", r.ID)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProviderRequests.WithLabelValues("rivers", "success")))
}

func TestService_River(t *testing.T) {
	svc, _ := newTestService(nil)

	r, err := svc.River(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "Rio Paranapanema", r.Name)

	_, err = svc.River(context.Background(), "99")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_RiverAlert(t *testing.T) {
	svc, _ := newTestService(nil)

	alert, err := svc.RiverAlert(context.Background(), "1")
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, domain.AlertYellow, alert.Level)

	alert, err = svc.RiverAlert(context.Background(), "99")
	require.NoError(t, err)
	assert.Nil(t, alert)
}

func TestService_SheltersAndForecast(t *testing.T) {
	svc, _ := newTestService(nil)

	shelters, err := svc.Shelters(context.Background())
	require.NoError(t, err)
	assert.Len(t, shelters, 5)

	text, err := svc.Forecast(context.Background(), "Santos")
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}

func TestService_UpdateLevel_Publishes(t *testing.T) {
	pub := &recordingPublisher{}
	svc, metrics := newTestService(pub)

	r, err := svc.UpdateLevel(context.Background(), "2", 4.5)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertYellow, r.AlertLevel)
	assert.Equal(t, 4.5, r.CurrentLevel)

	require.Len(t, pub.updates, 1)
	u := pub.updates[0]
	assert.Equal(t, 2.8, u.PreviousLevel)
	assert.Equal(t, domain.AlertGreen, u.PreviousAlert)
	assert.True(t, u.Escalated())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LevelEscalations))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LevelUpdates.WithLabelValues("yellow")))
}

func TestService_UpdateLevel_UsesLastObservedLevel(t *testing.T) {
	pub := &recordingPublisher{}
	svc, metrics := newTestService(pub)

	_, err := svc.UpdateLevel(context.Background(), "3", 6.0)
	require.NoError(t, err)
	_, err = svc.UpdateLevel(context.Background(), "3", 3.0)
	require.NoError(t, err)

	require.Len(t, pub.updates, 2)
	assert.Equal(t, 6.0, pub.updates[1].PreviousLevel)
	assert.Equal(t, domain.AlertRed, pub.updates[1].PreviousAlert)
	assert.False(t, pub.updates[1].Escalated())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.LevelEscalations))
}

// staleListing answers Rivers with a snapshot taken before later updates.
type staleListing struct {
	*mock.Provider
	snapshot []domain.RiverRecord
}

func (p staleListing) Rivers(context.Context) ([]domain.RiverRecord, error) {
	return p.snapshot, nil
}

func TestService_StaleListingKeepsNewerObservation(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(seedTime)
	provider := mock.New(mock.Seed(seedTime), clock, mock.Latency{})
	snapshot, err := provider.Rivers(ctx)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	metrics := observability.NewMetricsForTesting()
	svc := New(staleListing{Provider: provider, snapshot: snapshot}, pub, discardLogger(), metrics)

	clock.Advance(time.Minute)
	_, err = svc.UpdateLevel(ctx, "2", 5.3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LevelEscalations))

	// listing that started before the update lands after it
	rivers, err := svc.Rivers(ctx)
	require.NoError(t, err)
	require.Len(t, rivers, 3)

	clock.Advance(time.Minute)
	_, err = svc.UpdateLevel(ctx, "2", 5.6)
	require.NoError(t, err)

	require.Len(t, pub.updates, 2)
	assert.Equal(t, 5.3, pub.updates[1].PreviousLevel)
	assert.Equal(t, domain.AlertRed, pub.updates[1].PreviousAlert)
	assert.False(t, pub.updates[1].Escalated())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LevelEscalations))
}

func TestService_UpdateLevel_PublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, metrics := newTestService(pub)

	r, err := svc.UpdateLevel(context.Background(), "1", 5.0)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertRed, r.AlertLevel)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PublishErrors))
}

func TestService_UpdateLevel_Invalid(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(pub)

	_, err := svc.UpdateLevel(context.Background(), "1", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateLevel(context.Background(), "99", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Empty(t, pub.updates)
}

func TestService_ProviderErrors(t *testing.T) {
	cause := errors.New("upstream down")
	metrics := observability.NewMetricsForTesting()
	svc := New(failingProvider{err: cause}, nil, discardLogger(), metrics)

	_, err := svc.Rivers(context.Background())
	require.ErrorIs(t, err, cause)
	_, err = svc.Shelters(context.Background())
	require.ErrorIs(t, err, cause)

	err = svc.CheckReadiness(context.Background())
	require.ErrorIs(t, err, cause)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProviderRequests.WithLabelValues("rivers", "error")))
}

func TestService_CheckReadiness(t *testing.T) {
	svc, _ := newTestService(nil)
	assert.NoError(t, svc.CheckReadiness(context.Background()))
}
