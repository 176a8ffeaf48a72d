package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/couchcryptid/rio-alert-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

type levelRequest struct {
	Level *float64 `json:"level"`
}

type forecastResponse struct {
	City     string `json:"city"`
	Forecast string `json:"forecast"`
}

func (s *Server) handleRivers(w http.ResponseWriter, r *http.Request) {
	rivers, err := s.monitor.Rivers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, rivers)
}

// handleRiverAlert answers null when the river has no alert.
func (s *Server) handleRiverAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := s.monitor.RiverAlert(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, alert)
}

// handleBackendAlert answers 404 when the river has no alert.
func (s *Server) handleBackendAlert(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	alert, err := s.monitor.RiverAlert(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if alert == nil {
		s.writeErrorMessage(w, r, fmt.Errorf("alert for river %s: %w", id, domain.ErrNotFound), "Rio não encontrado")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, alert)
}

func (s *Server) handleUpdateLevel(w http.ResponseWriter, r *http.Request) {
	var req levelRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Level == nil {
		s.writeError(w, r, fmt.Errorf("level is required: %w", domain.ErrInvalidInput))
		return
	}

	river, err := s.monitor.UpdateLevel(r.Context(), r.PathValue("id"), *req.Level)
	if err != nil {
		msg := ""
		switch {
		case errors.Is(err, domain.ErrNotFound):
			msg = "Rio não encontrado"
		case errors.Is(err, domain.ErrInvalidInput):
			msg = "Nível inválido"
		}
		s.writeErrorMessage(w, r, err, msg)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, river)
}

func (s *Server) handleShelters(w http.ResponseWriter, r *http.Request) {
	shelters, err := s.monitor.Shelters(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, shelters)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	s.forecast(w, r, r.URL.Query().Get("city"))
}

func (s *Server) handleBackendForecast(w http.ResponseWriter, r *http.Request) {
	s.forecast(w, r, r.PathValue("cidade"))
}

func (s *Server) forecast(w http.ResponseWriter, r *http.Request, city string) {
	city = strings.TrimSpace(city)
	if city == "" {
		s.writeErrorMessage(w, r, fmt.Errorf("city is required: %w", domain.ErrInvalidInput), "Por favor, informe a cidade")
		return
	}
	text, err := s.monitor.Forecast(r.Context(), city)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, forecastResponse{City: city, Forecast: text})
}
