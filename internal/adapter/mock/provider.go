// Package mock serves river data from memory with artificial latency, the way
// the app ran before a real backend existed.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/rio-alert-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Latency is the artificial delay of each operation.
type Latency struct {
	Rivers   time.Duration
	Alert    time.Duration
	Shelters time.Duration
	Forecast time.Duration
	Update   time.Duration
}

// DefaultLatency matches the delays the client was built against.
func DefaultLatency() Latency {
	return Latency{
		Rivers:   time.Second,
		Alert:    800 * time.Millisecond,
		Shelters: time.Second,
		Forecast: 800 * time.Millisecond,
		Update:   500 * time.Millisecond,
	}
}

// Provider implements domain.RiverProvider over an in-memory fixture.
// Level updates are kept for the life of the process.
type Provider struct {
	clock   clockwork.Clock
	latency Latency

	mu        sync.RWMutex
	rivers    []domain.RiverRecord
	forecasts map[string]string
}

// New creates a provider serving the given fixture. Records are copied in.
func New(f Fixture, clock clockwork.Clock, latency Latency) *Provider {
	rivers := make([]domain.RiverRecord, len(f.Rivers))
	for i, r := range f.Rivers {
		rivers[i] = r.Clone()
	}
	forecasts := make(map[string]string, len(f.Forecasts))
	for city, text := range f.Forecasts {
		forecasts[city] = text
	}
	return &Provider{
		clock:     clock,
		latency:   latency,
		rivers:    rivers,
		forecasts: forecasts,
	}
}

// wait blocks for d on the provider's clock or until ctx is done.
func (p *Provider) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.clock.After(d):
		return nil
	}
}

func (p *Provider) Rivers(ctx context.Context) ([]domain.RiverRecord, error) {
	if err := p.wait(ctx, p.latency.Rivers); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.RiverRecord, len(p.rivers))
	for i, r := range p.rivers {
		out[i] = r.Clone()
	}
	return out, nil
}

// RiverAlert derives the alert from the river's current classification.
func (p *Provider) RiverAlert(ctx context.Context, riverID string) (*domain.RiverAlert, error) {
	if err := p.wait(ctx, p.latency.Alert); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	i := p.indexOf(riverID)
	if i < 0 {
		return nil, nil
	}
	alert := domain.AlertFor(p.rivers[i])
	return &alert, nil
}

// Shelters flattens the shelters of every river in river order.
func (p *Provider) Shelters(ctx context.Context) ([]domain.Shelter, error) {
	if err := p.wait(ctx, p.latency.Shelters); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	out := []domain.Shelter{}
	for _, r := range p.rivers {
		out = append(out, r.Shelters...)
	}
	return out, nil
}

func (p *Provider) WeatherForecast(ctx context.Context, city string) (string, error) {
	if err := p.wait(ctx, p.latency.Forecast); err != nil {
		return "", err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if text, ok := p.forecasts[city]; ok {
		return text, nil
	}
	return NoCityForecast, nil
}

// UpdateRiverLevel applies a new level after the update latency. A request
// cancelled during the wait changes nothing.
func (p *Provider) UpdateRiverLevel(ctx context.Context, riverID string, level float64) (domain.RiverRecord, error) {
	if err := domain.ValidateLevel(level); err != nil {
		return domain.RiverRecord{}, fmt.Errorf("update river %s: %w", riverID, err)
	}
	if err := p.wait(ctx, p.latency.Update); err != nil {
		return domain.RiverRecord{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexOf(riverID)
	if i < 0 {
		return domain.RiverRecord{}, fmt.Errorf("river %s: %w", riverID, domain.ErrNotFound)
	}
	p.rivers[i] = p.rivers[i].ApplyLevel(level, p.clock.Now().UTC())
	return p.rivers[i].Clone(), nil
}

// indexOf must be called with mu held.
func (p *Provider) indexOf(riverID string) int {
	for i, r := range p.rivers {
		if r.ID == riverID {
			return i
		}
	}
	return -1
}
