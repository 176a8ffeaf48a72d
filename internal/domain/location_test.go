package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock geocoder ---

type mockGeocoder struct {
	forwardResult GeocodingResult
	forwardErr    error
	reverseResult GeocodingResult
	reverseErr    error
	forwardCalls  int
	reverseCalls  int
}

func (m *mockGeocoder) ForwardGeocode(_ context.Context, _, _ string) (GeocodingResult, error) {
	m.forwardCalls++
	return m.forwardResult, m.forwardErr
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (GeocodingResult, error) {
	m.reverseCalls++
	return m.reverseResult, m.reverseErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestEnrichLocation_NilGeocoder(t *testing.T) {
	loc := UserLocation{City: "São Paulo", Neighborhood: "Pinheiros"}

	result := EnrichLocation(context.Background(), loc, nil, discardLogger())

	assert.Equal(t, loc, result)
}

func TestEnrichLocation_ForwardGeocode(t *testing.T) {
	geo := &mockGeocoder{
		forwardResult: GeocodingResult{
			Lat:              -23.5614,
			Lon:              -46.6821,
			FormattedAddress: "Pinheiros, São Paulo, Brazil",
			PlaceName:        "Pinheiros",
			Confidence:       0.9,
		},
	}
	loc := UserLocation{City: "São Paulo", Neighborhood: "Pinheiros"}

	result := EnrichLocation(context.Background(), loc, geo, discardLogger())

	require.NotNil(t, result.Coordinates)
	assert.Equal(t, -23.5614, result.Coordinates.Latitude)
	assert.Equal(t, -46.6821, result.Coordinates.Longitude)
	assert.Equal(t, "Pinheiros, São Paulo, Brazil", result.PlaceName)
	assert.Equal(t, "São Paulo", result.City)
	assert.Equal(t, 1, geo.forwardCalls)
	assert.Equal(t, 0, geo.reverseCalls)
}

func TestEnrichLocation_ReverseGeocode(t *testing.T) {
	geo := &mockGeocoder{
		reverseResult: GeocodingResult{
			FormattedAddress: "Santos, São Paulo, Brazil",
			PlaceName:        "Santos",
		},
	}
	loc := UserLocation{Coordinates: &Geo{Latitude: -23.9608, Longitude: -46.3336}}

	result := EnrichLocation(context.Background(), loc, geo, discardLogger())

	assert.Equal(t, "Santos", result.City)
	assert.Equal(t, "Santos, São Paulo, Brazil", result.PlaceName)
	assert.Equal(t, 0, geo.forwardCalls)
	assert.Equal(t, 1, geo.reverseCalls)
}

func TestEnrichLocation_ForwardError_KeepsInput(t *testing.T) {
	geo := &mockGeocoder{forwardErr: errors.New("API timeout")}
	loc := UserLocation{City: "Campinas"}

	result := EnrichLocation(context.Background(), loc, geo, discardLogger())

	assert.Equal(t, loc, result)
	assert.Nil(t, result.Coordinates)
}

func TestEnrichLocation_ReverseError_KeepsInput(t *testing.T) {
	geo := &mockGeocoder{reverseErr: errors.New("rate limited")}
	loc := UserLocation{Coordinates: &Geo{Latitude: -22.9, Longitude: -47.06}}

	result := EnrichLocation(context.Background(), loc, geo, discardLogger())

	assert.Empty(t, result.City)
	assert.Equal(t, -22.9, result.Coordinates.Latitude)
}

func TestEnrichLocation_CompleteLocationSkipsLookup(t *testing.T) {
	geo := &mockGeocoder{}
	loc := UserLocation{City: "Santos", Coordinates: &Geo{Latitude: -23.96, Longitude: -46.33}}

	result := EnrichLocation(context.Background(), loc, geo, discardLogger())

	assert.Equal(t, loc, result)
	assert.Equal(t, 0, geo.forwardCalls)
	assert.Equal(t, 0, geo.reverseCalls)
}

func TestEnrichLocation_ForwardEmptyResult(t *testing.T) {
	geo := &mockGeocoder{forwardResult: GeocodingResult{}}
	loc := UserLocation{City: "Lugar Nenhum"}

	result := EnrichLocation(context.Background(), loc, geo, discardLogger())

	assert.Nil(t, result.Coordinates)
	assert.Empty(t, result.PlaceName)
}
