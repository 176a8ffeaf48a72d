package domain

import (
	"time"
)

// NoForecastText is shown when a record has no weather forecast.
const NoForecastText = "Sem previsão disponível no momento"

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IsZero reports whether both coordinates are unset.
func (g Geo) IsZero() bool {
	return g.Latitude == 0 && g.Longitude == 0
}

// Valid reports whether the pair is within WGS-84 bounds.
func (g Geo) Valid() bool {
	return g.Latitude >= -90 && g.Latitude <= 90 && g.Longitude >= -180 && g.Longitude <= 180
}

// Shelter is an evacuation point near a river. Shelters are reference data
// and never change once loaded.
type Shelter struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Capacity  int     `json:"capacity"`
	Distance  float64 `json:"distance"` // km from the river's monitoring point
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LevelSample is one day of level history.
type LevelSample struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Level float64 `json:"level"`
}

// RiverRecord is the current state of a monitored river.
type RiverRecord struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	CurrentLevel    float64       `json:"currentLevel"`
	LastUpdate      time.Time     `json:"lastUpdate"`
	AlertLevel      AlertLevel    `json:"alertLevel"`
	WeatherForecast *string       `json:"weatherForecast,omitempty"`
	Shelters        []Shelter     `json:"shelters"`
	Location        Geo           `json:"location"`
	HistoricalData  []LevelSample `json:"historicalData,omitempty"`
}

// RiverAlert is the alert currently attached to a river.
type RiverAlert struct {
	ID        string     `json:"id"`
	RiverID   string     `json:"riverId"`
	Level     AlertLevel `json:"level"`
	Message   string     `json:"message"`
	Timestamp time.Time  `json:"timestamp"`
}

// alertMessages holds the user-facing text for each alert level.
var alertMessages = map[AlertLevel]string{
	AlertGreen:  "Nível normal do rio. Não há riscos imediatos.",
	AlertYellow: "Nível elevado. Mantenha-se atento às atualizações.",
	AlertRed:    "Nível crítico! Procure um local seguro imediatamente.",
}

// AlertMessage returns the standard alert text for a level.
func AlertMessage(level AlertLevel) string {
	return alertMessages[level]
}

// Forecast returns the weather forecast or the fallback sentence.
func (r RiverRecord) Forecast() string {
	if r.WeatherForecast == nil || *r.WeatherForecast == "" {
		return NoForecastText
	}
	return *r.WeatherForecast
}

// Clone returns a deep copy so callers cannot reach a provider's state.
func (r RiverRecord) Clone() RiverRecord {
	out := r
	if r.WeatherForecast != nil {
		f := *r.WeatherForecast
		out.WeatherForecast = &f
	}
	if r.Shelters != nil {
		out.Shelters = append([]Shelter(nil), r.Shelters...)
	}
	if r.HistoricalData != nil {
		out.HistoricalData = append([]LevelSample(nil), r.HistoricalData...)
	}
	return out
}

// ApplyLevel returns a copy of r with the new level, the alert level derived
// from it, and the update time set together.
func (r RiverRecord) ApplyLevel(level float64, now time.Time) RiverRecord {
	out := r.Clone()
	out.CurrentLevel = level
	out.AlertLevel = Classify(level)
	out.LastUpdate = now
	return out
}

// Consistent reports whether the stored alert level matches the level.
func (r RiverRecord) Consistent() bool {
	return r.AlertLevel == Classify(r.CurrentLevel)
}

// AlertFor builds the alert for a record from its current classification.
func AlertFor(r RiverRecord) RiverAlert {
	return RiverAlert{
		ID:        r.ID,
		RiverID:   r.ID,
		Level:     r.AlertLevel,
		Message:   AlertMessage(r.AlertLevel),
		Timestamp: r.LastUpdate,
	}
}

// LevelUpdate describes one applied level change.
type LevelUpdate struct {
	River         RiverRecord `json:"river"`
	PreviousLevel float64     `json:"previousLevel"`
	PreviousAlert AlertLevel  `json:"previousAlert"`
}

// Escalated reports whether the update moved the river to a more severe level.
func (u LevelUpdate) Escalated() bool {
	return u.River.AlertLevel.MoreSevere(u.PreviousAlert)
}
