package view

import (
	"slices"
	"time"

	"github.com/couchcryptid/rio-alert-service/internal/domain"
)

// Screen names, also used as action targets.
const (
	ScreenHome      = "home"
	ScreenRivers    = "rivers"
	ScreenAlerts    = "alerts"
	ScreenChecklist = "checklist"
	ScreenTips      = "tips"
	ScreenSettings  = "settings"
	ScreenLocation  = "location_setup"
)

// RiverCard is one river in a list.
type RiverCard struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	CurrentLevel float64           `json:"currentLevel"`
	LevelText    string            `json:"levelText"`
	AlertLevel   domain.AlertLevel `json:"alertLevel"`
	Color        string            `json:"color"`
	Description  string            `json:"description"`
	LastUpdate   time.Time         `json:"lastUpdate"`
	Forecast     *string           `json:"weatherForecast,omitempty"`
}

// Card builds the list entry for a record.
func Card(r domain.RiverRecord) RiverCard {
	c := RiverCard{
		ID:           r.ID,
		Name:         r.Name,
		CurrentLevel: r.CurrentLevel,
		LevelText:    LevelText(r.CurrentLevel),
		AlertLevel:   r.AlertLevel,
		Color:        Color(r.AlertLevel),
		Description:  Description(r.AlertLevel),
		LastUpdate:   r.LastUpdate,
	}
	if r.WeatherForecast != nil {
		f := *r.WeatherForecast
		c.Forecast = &f
	}
	return c
}

func cards(records []domain.RiverRecord) []RiverCard {
	out := make([]RiverCard, 0, len(records))
	for _, r := range records {
		out = append(out, Card(r))
	}
	return out
}

// Home is the landing screen.
type Home struct {
	Title     string      `json:"title"`
	Subtitle  string      `json:"subtitle"`
	Rivers    []RiverCard `json:"rivers"`
	Shortcuts []Action    `json:"shortcuts"`
	Legend    []string    `json:"legend"`
}

// Home lists every river with its badge and the quick actions.
func (v *Renderer) Home(records []domain.RiverRecord) Home {
	return Home{
		Title:    "Monitoramento de Rios",
		Subtitle: "Acompanhe o nível dos rios em sua região",
		Rivers:   cards(records),
		Shortcuts: []Action{
			{ID: "rivers", Label: "Ver Todos os Rios", Target: ScreenRivers},
			{ID: "alerts", Label: "Ver Alertas", Target: ScreenAlerts},
			{ID: "checklist", Label: "Checklist de segurança", Target: ScreenChecklist},
			{ID: "tips", Label: "Dicas de prevenção", Target: ScreenTips},
		},
		Legend: []string{
			"Verde: Nível normal, sem riscos",
			"Amarelo: Atenção, nível elevado",
			"Vermelho: Alerta de enchente",
		},
	}
}

// RiverList is the rivers tab.
type RiverList struct {
	Rivers []RiverCard `json:"rivers"`
}

// Rivers lists every river in provider order.
func (v *Renderer) Rivers(records []domain.RiverRecord) RiverList {
	return RiverList{Rivers: cards(records)}
}

// EmptyState is shown instead of an empty list.
type EmptyState struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// AlertList is the alerts tab.
type AlertList struct {
	Alerts []RiverCard `json:"alerts"`
	Empty  *EmptyState `json:"empty,omitempty"`
}

// Alerts keeps only yellow and red rivers, most severe first. Rivers on the
// same level keep provider order.
func (v *Renderer) Alerts(records []domain.RiverRecord) AlertList {
	var flagged []domain.RiverRecord
	for _, r := range records {
		if r.AlertLevel == domain.AlertYellow || r.AlertLevel == domain.AlertRed {
			flagged = append(flagged, r)
		}
	}
	slices.SortStableFunc(flagged, func(a, b domain.RiverRecord) int {
		return b.AlertLevel.Rank() - a.AlertLevel.Rank()
	})

	out := AlertList{Alerts: cards(flagged)}
	if len(flagged) == 0 {
		out.Empty = &EmptyState{
			Title:    "Nenhum alerta ativo",
			Subtitle: "Todos os rios estão em níveis seguros",
		}
	}
	return out
}

// RiverDetails is the per-river screen.
type RiverDetails struct {
	River   domain.RiverRecord   `json:"river"`
	Variant Variant              `json:"variant"`
	History []domain.LevelSample `json:"historicalData"`
}

// RiverDetails renders one record with its variant and level history.
func (v *Renderer) RiverDetails(r domain.RiverRecord) RiverDetails {
	history := append([]domain.LevelSample{}, r.HistoricalData...)
	return RiverDetails{
		River:   r.Clone(),
		Variant: v.SelectVariant(r),
		History: history,
	}
}
