package view

import "github.com/couchcryptid/rio-alert-service/internal/domain"

// Slide is one onboarding page.
type Slide struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

// OnboardingSlides returns the three onboarding pages.
func OnboardingSlides() []Slide {
	return []Slide{
		{ID: "1", Title: "Monitore os níveis dos rios da sua região.", Icon: "📊"},
		{ID: "2", Title: "Receba alertas com orientações para se proteger.", Icon: "🔔"},
		{ID: "3", Title: "Permita o uso da sua localização e notificações.", Icon: "📍"},
	}
}

// ChecklistItem is one entry of the emergency checklist. Items start
// unchecked; ticking them is client state.
type ChecklistItem struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// Checklist is the emergency checklist screen.
type Checklist struct {
	Title    string          `json:"title"`
	Subtitle string          `json:"subtitle"`
	Items    []ChecklistItem `json:"items"`
}

// Checklist returns the five checklist items. Items 1 and 3 share the same
// text and are still distinct entries.
func (v *Renderer) Checklist() Checklist {
	return Checklist{
		Title:    "ALERTA AMARELO",
		Subtitle: "Checklist de segurança",
		Items: []ChecklistItem{
			{ID: "1", Text: "Fechar registro de gás"},
			{ID: "2", Text: "Organizar mochila de emergência"},
			{ID: "3", Text: "Fechar registro de gás"},
			{ID: "4", Text: "Guardar documentos em local seguro"},
			{ID: "5", Text: "Evitar móveis no chão"},
		},
	}
}

// TipSection is a titled group of prevention tips.
type TipSection struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// Tips is the prevention tips screen.
type Tips struct {
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle"`
	Sections []TipSection `json:"sections"`
	Back     Action       `json:"back"`
}

// Tips returns the three sections of prevention tips.
func (v *Renderer) Tips() Tips {
	return Tips{
		Title:    "Previna-se antes da emergência",
		Subtitle: "Mesmo em dias tranquilos, a prevenção faz a diferença. Veja algumas atitudes simples que podem salvar vidas:",
		Sections: []TipSection{
			{
				Title: "Dicas Gerais",
				Items: []string{
					"Acompanhe previsões do tempo em canais oficiais (Defesa Civil, INMET, etc).",
					"Mantenha contato com vizinhos ou líderes comunitários para ações em grupo.",
					"Mantenha documentos importantes em sacos plásticos e em local alto.",
					"Tenha sempre uma lanterna com pilhas e carregador portátil para celular.",
					"Separe uma mochila com itens essenciais (remédios, água, cópias de documentos).",
					"Identifique os pontos de abrigo da sua região com antecedência.",
				},
			},
			{
				Title: "Cuidados com o ambiente",
				Items: []string{
					"Evite entulhos, móveis e lixo nas margens dos rios e ruas, isso agrava alagamentos.",
					"Faça revisões em instalações elétricas, especialmente em áreas sujeitas à água.",
					"Mantenha animais domésticos com guia ou caixas de transporte acessíveis.",
					"Marque pontos de risco em casa: locais que costumam alagar ou onde a água já entrou.",
				},
			},
			{
				Title: "Rotas e comunicação",
				Items: []string{
					"Planeje com sua família uma rota de fuga segura.",
					"Combine um ponto de encontro com familiares em caso de evacuação.",
					"Mantenha seu celular carregado e anote contatos úteis (Defesa Civil, bombeiros, vizinhos de confiança).",
				},
			},
		},
		Back: Action{ID: "home", Label: "Voltar para o início", Target: ScreenHome},
	}
}

// SettingsEntry is one row of the settings screen. Toggle is set for switch
// rows; Target for rows that open something.
type SettingsEntry struct {
	Title  string `json:"title"`
	Icon   string `json:"icon"`
	Target string `json:"target,omitempty"`
	Toggle *bool  `json:"toggle,omitempty"`
	Value  string `json:"value,omitempty"`
}

// SettingsSection is a titled group of rows.
type SettingsSection struct {
	Title   string          `json:"title"`
	Entries []SettingsEntry `json:"entries"`
}

// Settings is the settings screen.
type Settings struct {
	User     *domain.User      `json:"user,omitempty"`
	Location string            `json:"location,omitempty"`
	Sections []SettingsSection `json:"sections"`
}

// AppVersion is shown on the settings screen.
const AppVersion = "1.0.0"

// Settings returns the settings rows and, when known, the signed-in user.
func (v *Renderer) Settings(user *domain.User) Settings {
	on := true
	s := Settings{
		User: user,
		Sections: []SettingsSection{
			{Title: "Notificações", Entries: []SettingsEntry{
				{Title: "Alertas de Enchente", Icon: "notifications", Toggle: &on},
			}},
			{Title: "Localização", Entries: []SettingsEntry{
				{Title: "Usar Localização", Icon: "location-on", Toggle: &on},
				{Title: "Alterar Localização", Icon: "edit-location", Target: ScreenLocation},
			}},
			{Title: "Conta", Entries: []SettingsEntry{
				{Title: "Editar Perfil", Icon: "person"},
				{Title: "Alterar Senha", Icon: "lock"},
				{Title: "Sair", Icon: "exit-to-app", Target: "logout"},
			}},
			{Title: "Sobre", Entries: []SettingsEntry{
				{Title: "Termos de Uso", Icon: "description"},
				{Title: "Política de Privacidade", Icon: "privacy-tip"},
				{Title: "Versão do App", Icon: "info", Value: AppVersion},
			}},
		},
	}
	if user != nil && user.Location != nil {
		s.Location = user.Location.Label()
	}
	return s
}
