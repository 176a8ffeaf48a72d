// Package view builds the JSON view models the mobile client draws.
//
// Nothing here fetches data or mutates it: every function takes records the
// caller already holds and returns a fresh value.
package view

import (
	"fmt"

	"github.com/couchcryptid/rio-alert-service/internal/domain"
)

// DefaultEmergencyPhone is the Defesa Civil number.
const DefaultEmergencyPhone = "199"

// Alert colors.
const (
	ColorRed    = "#F44336"
	ColorYellow = "#FFC107"
	ColorGreen  = "#4CAF50"
)

// Action is something the client can do from a screen: open another screen,
// dial a number, or open a map.
type Action struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Target string `json:"target"`
}

// Variant is the content block shown for one river, chosen by its alert level.
type Variant struct {
	Level        domain.AlertLevel `json:"level"`
	Status       string            `json:"status"`
	Headline     string            `json:"headline"`
	Subheadline  string            `json:"subheadline"`
	Color        string            `json:"color"`
	CurrentLevel float64           `json:"currentLevel"`
	LevelText    string            `json:"levelText"`
	Message      string            `json:"message"`
	Details      []string          `json:"details"`
	Forecast     string            `json:"forecast,omitempty"`
	Actions      []Action          `json:"actions"`

	Checklist []string   `json:"checklist,omitempty"`
	Emergency *Emergency `json:"emergency,omitempty"`
}

// Emergency is the extra content of the red variant.
type Emergency struct {
	Phone     string           `json:"phone"`
	Shelters  []domain.Shelter `json:"shelters"`
	MapTarget *domain.Shelter  `json:"mapTarget,omitempty"`
}

// preventionChecklist is shown inside the yellow variant.
var preventionChecklist = []string{
	"Mantenha-se informado sobre as condições climáticas",
	"Tenha um plano de evacuação preparado",
	"Mantenha documentos importantes em local seguro",
	"Tenha uma mochila de emergência pronta",
	"Conheça os pontos de encontro e abrigos próximos",
	"Mantenha contatos de emergência atualizados",
	"Verifique se há vazamentos em casa",
	"Mantenha calhas e bueiros desobstruídos",
}

// Renderer builds view models. The zero value is not usable; call NewRenderer.
type Renderer struct {
	emergencyPhone string
}

// NewRenderer returns a Renderer that puts phone in the red variant. An empty
// phone falls back to DefaultEmergencyPhone.
func NewRenderer(phone string) *Renderer {
	if phone == "" {
		phone = DefaultEmergencyPhone
	}
	return &Renderer{emergencyPhone: phone}
}

// SelectVariant picks the content block for a record. It looks only at the
// record's alert level; an unknown level renders as green.
func (v *Renderer) SelectVariant(r domain.RiverRecord) Variant {
	switch r.AlertLevel {
	case domain.AlertRed:
		return v.redVariant(r)
	case domain.AlertYellow:
		return yellowVariant(r)
	default:
		return greenVariant(r)
	}
}

func greenVariant(r domain.RiverRecord) Variant {
	return Variant{
		Level:        domain.AlertGreen,
		Status:       "Situação Normal",
		Headline:     "ALERTA VERDE",
		Subheadline:  "Situação normal",
		Color:        ColorGreen,
		CurrentLevel: r.CurrentLevel,
		LevelText:    LevelText(r.CurrentLevel),
		Message:      "Tudo em ordem! Mas fique sempre atento aos canais oficiais.",
		Details: []string{
			fmt.Sprintf("O nível do %s está em %.1fm, dentro da faixa de segurança.", r.Name, r.CurrentLevel),
			"Não há risco de alagamento no momento.",
			"Continue acompanhando pelo aplicativo e fique atento às mudanças nas condições climáticas.",
		},
		Forecast: r.Forecast(),
		Actions: []Action{
			{ID: "forecast", Label: "Ver previsão do tempo", Target: "https://www.google.com/search?q=previsao+do+tempo"},
			{ID: "tips", Label: "Dicas de prevenção", Target: ScreenTips},
		},
	}
}

func yellowVariant(r domain.RiverRecord) Variant {
	return Variant{
		Level:        domain.AlertYellow,
		Status:       "Atenção - Nível Elevado",
		Headline:     "ALERTA AMARELO",
		Subheadline:  "Atenção",
		Color:        ColorYellow,
		CurrentLevel: r.CurrentLevel,
		LevelText:    LevelText(r.CurrentLevel),
		Message:      "O nível do rio está elevado. Tome as precauções necessárias.",
		Details: []string{
			fmt.Sprintf("O nível do %s atingiu %.1fm, se aproximando do limite de risco.", r.Name, r.CurrentLevel),
			"Atenção redobrada nas áreas próximas.",
			"Prepare documentos e itens essenciais. Mantenha mochilas de emergência prontas.",
			"Acompanhe atualizações e planeje rotas de saída seguras.",
		},
		Forecast:  r.Forecast(),
		Checklist: append([]string(nil), preventionChecklist...),
		Actions: []Action{
			{ID: "checklist", Label: "Ver checklist de segurança", Target: ScreenChecklist},
			{ID: "routes", Label: "Conferir rotas para fuga", Target: "https://www.google.com/maps/dir/?api=1&destination=saferoute"},
		},
	}
}

func (v *Renderer) redVariant(r domain.RiverRecord) Variant {
	shelters := append([]domain.Shelter{}, r.Shelters...)
	em := &Emergency{Phone: v.emergencyPhone, Shelters: shelters}
	if len(shelters) > 0 {
		target := shelters[0]
		em.MapTarget = &target
	}

	return Variant{
		Level:        domain.AlertRed,
		Status:       "Alerta - Nível Crítico",
		Headline:     "ALERTA VERMELHO",
		Subheadline:  "Cheia / Emergência",
		Color:        ColorRed,
		CurrentLevel: r.CurrentLevel,
		LevelText:    LevelText(r.CurrentLevel),
		Message:      "Nível crítico detectado! Procure um local seguro imediatamente.",
		Details: []string{
			fmt.Sprintf("O nível do %s atingiu %.1fm, acima do limite crítico de %.2fm.", r.Name, r.CurrentLevel, domain.RedThreshold),
			"Áreas próximas podem ser alagadas a qualquer momento.",
			"Evacue imediatamente para locais seguros indicados pela Defesa Civil.",
			fmt.Sprintf("Ligue para %s ou 193 em caso de emergência.", v.emergencyPhone),
		},
		Emergency: em,
		Actions: []Action{
			{ID: "call", Label: "Ligar para Defesa Civil", Target: "tel:" + v.emergencyPhone},
			{ID: "shelters_map", Label: "Ver Abrigos no Mapa", Target: "map"},
		},
	}
}

// LevelText formats a level with one decimal, as every screen shows it.
func LevelText(level float64) string {
	return fmt.Sprintf("%.1fm", level)
}

// Color returns the hex color of an alert level.
func Color(l domain.AlertLevel) string {
	switch l {
	case domain.AlertRed:
		return ColorRed
	case domain.AlertYellow:
		return ColorYellow
	default:
		return ColorGreen
	}
}

// Description returns the short label shown next to the color badge.
func Description(l domain.AlertLevel) string {
	switch l {
	case domain.AlertRed:
		return "Alerta de Enchente"
	case domain.AlertYellow:
		return "Alerta de Atenção"
	default:
		return "Nível Normal"
	}
}
