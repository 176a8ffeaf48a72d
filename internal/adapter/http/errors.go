package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/couchcryptid/rio-alert-service/internal/domain"
	"github.com/couchcryptid/rio-alert-service/internal/gate"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const maxBodyBytes = 64 << 10

// errorResponse is the body of every non-2xx answer. Message is meant for
// the user; Error is for logs and debugging.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// statusFor maps a domain error to its HTTP status and default message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "Por favor, preencha todos os campos"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Email ou senha inválidos"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Não encontrado"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "Email já cadastrado"
	case errors.Is(err, gate.ErrInvalidTransition):
		return http.StatusConflict, "Ação indisponível nesta etapa"
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusServiceUnavailable, "Serviço temporariamente indisponível"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "Tempo de resposta esgotado"
	default:
		return http.StatusInternalServerError, "Ocorreu um erro"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeErrorMessage(w, r, err, "")
}

// writeErrorMessage answers with the status for err. A non-empty message
// replaces the default one for client errors.
func (s *Server) writeErrorMessage(w http.ResponseWriter, r *http.Request, err error, message string) {
	status, def := statusFor(err)
	if message == "" || status >= http.StatusInternalServerError {
		message = def
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	sharedobs.WriteJSON(w, status, errorResponse{Message: message, Error: err.Error()})
}

// decodeBody reads a JSON body into v. A malformed body is ErrInvalidInput.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}
