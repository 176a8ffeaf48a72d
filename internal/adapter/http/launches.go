package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/couchcryptid/rio-alert-service/internal/domain"
	"github.com/couchcryptid/rio-alert-service/internal/gate"
	"github.com/couchcryptid/rio-alert-service/internal/view"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// launchView is what the client needs to draw the top-level screen.
type launchView struct {
	ID       string       `json:"id"`
	DeviceID string       `json:"deviceId"`
	Stage    gate.Stage   `json:"stage"`
	State    gate.State   `json:"state"`
	Slides   []view.Slide `json:"slides,omitempty"`
	User     *domain.User `json:"user,omitempty"`
}

func newLaunchView(l *gate.Launch) launchView {
	state := l.Gate.State()
	v := launchView{
		ID:       l.ID,
		DeviceID: l.DeviceID,
		Stage:    gate.Resolve(state),
		State:    state,
	}
	if v.Stage == gate.StageOnboarding {
		v.Slides = view.OnboardingSlides()
	}
	return v
}

type startLaunchRequest struct {
	DeviceID string `json:"device_id"`
}

type locationRequest struct {
	City         string      `json:"city"`
	Neighborhood string      `json:"neighborhood"`
	Coordinates  *domain.Geo `json:"coordinates"`
}

func (s *Server) handleStartLaunch(w http.ResponseWriter, r *http.Request) {
	var req startLaunchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.flows.Start(r.Context(), req.DeviceID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusCreated, newLaunchView(l))
}

func (s *Server) handleGetLaunch(w http.ResponseWriter, r *http.Request) {
	l, ok := s.launch(w, r)
	if !ok {
		return
	}
	v := newLaunchView(l)
	if v.State.Authenticated {
		user, err := s.flows.CurrentUser(r.Context(), l)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		v.User = user
	}
	sharedobs.WriteJSON(w, http.StatusOK, v)
}

func (s *Server) handleSplash(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.flows.FinishSplash)
}

func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.flows.CompleteOnboarding)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.flows.Logout)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	l, ok := s.launch(w, r)
	if !ok {
		return
	}
	var reg domain.Registration
	if err := decodeBody(r, &reg); err != nil {
		s.writeError(w, r, err)
		return
	}
	user, _, err := s.flows.Register(r.Context(), l, reg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v := newLaunchView(l)
	v.User = &user
	sharedobs.WriteJSON(w, http.StatusOK, v)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	l, ok := s.launch(w, r)
	if !ok {
		return
	}
	var creds domain.Credentials
	if err := decodeBody(r, &creds); err != nil {
		s.writeError(w, r, err)
		return
	}
	user, _, err := s.flows.Login(r.Context(), l, creds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v := newLaunchView(l)
	v.User = &user
	sharedobs.WriteJSON(w, http.StatusOK, v)
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	l, ok := s.launch(w, r)
	if !ok {
		return
	}
	var req locationRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	loc := domain.UserLocation{
		City:         req.City,
		Neighborhood: req.Neighborhood,
		Coordinates:  req.Coordinates,
	}
	if _, _, err := s.flows.SaveLocation(r.Context(), l, loc); err != nil {
		msg := ""
		if errors.Is(err, domain.ErrInvalidInput) {
			msg = "Por favor, digite sua localização"
		}
		s.writeErrorMessage(w, r, err, msg)
		return
	}

	v := newLaunchView(l)
	user, err := s.flows.CurrentUser(r.Context(), l)
	if err != nil {
		s.logger.Warn("read current user failed", "launch_id", l.ID, "error", err)
	}
	v.User = user
	sharedobs.WriteJSON(w, http.StatusOK, v)
}

// transition runs a body-less stage completion and answers with the launch.
func (s *Server) transition(w http.ResponseWriter, r *http.Request, step func(context.Context, *gate.Launch) (gate.Stage, error)) {
	l, ok := s.launch(w, r)
	if !ok {
		return
	}
	if _, err := step(r.Context(), l); err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, newLaunchView(l))
}

// launch resolves the {id} path value or writes a 404.
func (s *Server) launch(w http.ResponseWriter, r *http.Request) (*gate.Launch, bool) {
	l, err := s.flows.Launch(r.PathValue("id"))
	if err != nil {
		s.writeErrorMessage(w, r, err, "Sessão não encontrada")
		return nil, false
	}
	return l, true
}
