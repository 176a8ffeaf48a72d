package http

import (
	"fmt"
	"net/http"

	"github.com/couchcryptid/rio-alert-service/internal/domain"
	"github.com/couchcryptid/rio-alert-service/internal/gate"
	"github.com/couchcryptid/rio-alert-service/internal/view"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	l, ok := s.mainLaunch(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	switch screen := r.PathValue("screen"); screen {
	case view.ScreenHome, view.ScreenRivers, view.ScreenAlerts:
		rivers, err := s.monitor.Rivers(ctx)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		var body any
		switch screen {
		case view.ScreenHome:
			body = s.renderer.Home(rivers)
		case view.ScreenRivers:
			body = s.renderer.Rivers(rivers)
		default:
			body = s.renderer.Alerts(rivers)
		}
		sharedobs.WriteJSON(w, http.StatusOK, body)
	case view.ScreenChecklist:
		sharedobs.WriteJSON(w, http.StatusOK, s.renderer.Checklist())
	case view.ScreenTips:
		sharedobs.WriteJSON(w, http.StatusOK, s.renderer.Tips())
	case view.ScreenSettings:
		user, err := s.flows.CurrentUser(ctx, l)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		sharedobs.WriteJSON(w, http.StatusOK, s.renderer.Settings(user))
	default:
		s.writeErrorMessage(w, r, fmt.Errorf("screen %q: %w", screen, domain.ErrNotFound), "Tela não encontrada")
	}
}

func (s *Server) handleRiverDetails(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.mainLaunch(w, r); !ok {
		return
	}
	river, err := s.monitor.River(r.Context(), r.PathValue("riverID"))
	if err != nil {
		s.writeErrorMessage(w, r, err, "Rio não encontrado")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, s.renderer.RiverDetails(river))
}

// mainLaunch resolves the launch and refuses unless it is on Main.
func (s *Server) mainLaunch(w http.ResponseWriter, r *http.Request) (*gate.Launch, bool) {
	l, ok := s.launch(w, r)
	if !ok {
		return nil, false
	}
	if err := l.Gate.Require(gate.StageMain); err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return l, true
}
