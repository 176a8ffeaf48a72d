package mock

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/rio-alert-service/internal/domain"
)

// NoCityForecast is returned for cities without a forecast.
const NoCityForecast = "Previsão não disponível para esta cidade."

// Fixture is the data a mock provider serves. cmd/genmock writes it to disk
// and cmd/validate checks it.
type Fixture struct {
	GeneratedAt time.Time            `json:"generatedAt"`
	Rivers      []domain.RiverRecord `json:"rivers"`
	Forecasts   map[string]string    `json:"forecasts"`
}

func forecast(s string) *string { return &s }

// Seed returns the built-in rivers with every LastUpdate set to now.
func Seed(now time.Time) Fixture {
	return Fixture{
		GeneratedAt: now,
		Rivers: []domain.RiverRecord{
			{
				ID:              "1",
				Name:            "Rio Tietê",
				CurrentLevel:    4.2,
				LastUpdate:      now,
				AlertLevel:      domain.AlertYellow,
				WeatherForecast: forecast("Chuva moderada nos próximos 3 dias. Risco de aumento do nível do rio."),
				Shelters: []domain.Shelter{
					{Name: "Escola Municipal João da Silva", Address: "Rua das Flores, 123", Capacity: 200, Distance: 1.2, Latitude: -23.5505, Longitude: -46.6333},
					{Name: "Centro Comunitário São José", Address: "Av. Principal, 456", Capacity: 150, Distance: 2.5, Latitude: -23.5510, Longitude: -46.6340},
				},
				Location: domain.Geo{Latitude: -23.5505, Longitude: -46.6333},
				HistoricalData: []domain.LevelSample{
					{Date: "2024-03-01", Level: 3.8},
					{Date: "2024-03-02", Level: 4.0},
					{Date: "2024-03-03", Level: 4.2},
				},
			},
			{
				ID:              "2",
				Name:            "Rio Pinheiros",
				CurrentLevel:    2.8,
				LastUpdate:      now,
				AlertLevel:      domain.AlertGreen,
				WeatherForecast: forecast("Tempo seco nos próximos dias. Nível do rio estável."),
				Shelters: []domain.Shelter{
					{Name: "Ginásio Municipal", Address: "Rua dos Esportes, 789", Capacity: 300, Distance: 0.8, Latitude: -23.5705, Longitude: -46.6933},
				},
				Location: domain.Geo{Latitude: -23.5705, Longitude: -46.6933},
				HistoricalData: []domain.LevelSample{
					{Date: "2024-03-01", Level: 2.7},
					{Date: "2024-03-02", Level: 2.8},
					{Date: "2024-03-03", Level: 2.8},
				},
			},
			{
				ID:              "3",
				Name:            "Rio Paranapanema",
				CurrentLevel:    5.5,
				LastUpdate:      now,
				AlertLevel:      domain.AlertRed,
				WeatherForecast: forecast("Chuva forte prevista para as próximas 24 horas. Risco de enchente."),
				Shelters: []domain.Shelter{
					{Name: "Centro de Eventos Municipal", Address: "Av. Principal, 1000", Capacity: 500, Distance: 1.5, Latitude: -22.9071, Longitude: -47.0632},
					{Name: "Escola Estadual São Paulo", Address: "Rua da Escola, 200", Capacity: 300, Distance: 2.0, Latitude: -22.9080, Longitude: -47.0640},
				},
				Location: domain.Geo{Latitude: -22.9071, Longitude: -47.0632},
				HistoricalData: []domain.LevelSample{
					{Date: "2024-03-01", Level: 4.8},
					{Date: "2024-03-02", Level: 5.2},
					{Date: "2024-03-03", Level: 5.5},
				},
			},
		},
		Forecasts: map[string]string{
			"São Paulo": "Tempo estável, sem previsão de chuva para os próximos dias.",
			"Santos":    "Chuva moderada prevista para as próximas 24 horas.",
			"Campinas":  "Chuva forte com possibilidade de tempestade.",
		},
	}
}

// LoadFixture reads a fixture written by cmd/genmock.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return f, nil
}
