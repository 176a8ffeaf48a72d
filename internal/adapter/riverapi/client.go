// Package riverapi is the HTTP client for a river data backend.
package riverapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/rio-alert-service/internal/domain"
)

// Client implements domain.RiverProvider against the backend's REST API:
//
//	GET /rios                 all river records
//	GET /alerta/{id}          alert for one river, 404 when none
//	GET /abrigos              every shelter
//	GET /previsao/{cidade}    forecast for a city
//	PUT /rios/{id}/nivel      set a river's level
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a backend client. baseURL must not end with a slash.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// wireRiver accepts any alertLevel string from the backend; the level is
// reclassified locally.
type wireRiver struct {
	domain.RiverRecord
	AlertLevel string `json:"alertLevel"`
}

type wireAlert struct {
	domain.RiverAlert
	Level string `json:"level"`
}

type forecastResponse struct {
	City     string `json:"city"`
	Forecast string `json:"forecast"`
}

type levelRequest struct {
	Level float64 `json:"level"`
}

// Rivers fetches every record and derives each alert level from its level.
func (c *Client) Rivers(ctx context.Context) ([]domain.RiverRecord, error) {
	var wire []wireRiver
	if err := c.do(ctx, http.MethodGet, "/rios", nil, &wire); err != nil {
		return nil, fmt.Errorf("fetch rivers: %w", err)
	}

	out := make([]domain.RiverRecord, 0, len(wire))
	for _, w := range wire {
		out = append(out, c.reclassify(w))
	}
	return out, nil
}

// RiverAlert returns nil, nil when the backend has no alert for the river.
func (c *Client) RiverAlert(ctx context.Context, riverID string) (*domain.RiverAlert, error) {
	var wire wireAlert
	err := c.do(ctx, http.MethodGet, "/alerta/"+url.PathEscape(riverID), nil, &wire)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch alert for river %s: %w", riverID, err)
	}

	level, err := domain.ParseAlertLevel(wire.Level)
	if err != nil {
		return nil, fmt.Errorf("fetch alert for river %s: %w", riverID, err)
	}
	alert := wire.RiverAlert
	alert.Level = level
	return &alert, nil
}

func (c *Client) Shelters(ctx context.Context) ([]domain.Shelter, error) {
	var shelters []domain.Shelter
	if err := c.do(ctx, http.MethodGet, "/abrigos", nil, &shelters); err != nil {
		return nil, fmt.Errorf("fetch shelters: %w", err)
	}
	if shelters == nil {
		shelters = []domain.Shelter{}
	}
	return shelters, nil
}

func (c *Client) WeatherForecast(ctx context.Context, city string) (string, error) {
	var resp forecastResponse
	if err := c.do(ctx, http.MethodGet, "/previsao/"+url.PathEscape(city), nil, &resp); err != nil {
		return "", fmt.Errorf("fetch forecast for %s: %w", city, err)
	}
	return resp.Forecast, nil
}

// UpdateRiverLevel sets a level and returns the record the backend stored,
// reclassified locally.
func (c *Client) UpdateRiverLevel(ctx context.Context, riverID string, level float64) (domain.RiverRecord, error) {
	if err := domain.ValidateLevel(level); err != nil {
		return domain.RiverRecord{}, fmt.Errorf("update river %s: %w", riverID, err)
	}

	var wire wireRiver
	path := "/rios/" + url.PathEscape(riverID) + "/nivel"
	if err := c.do(ctx, http.MethodPut, path, levelRequest{Level: level}, &wire); err != nil {
		return domain.RiverRecord{}, fmt.Errorf("update river %s: %w", riverID, err)
	}
	return c.reclassify(wire), nil
}

func (c *Client) reclassify(w wireRiver) domain.RiverRecord {
	r := w.RiverRecord
	r.AlertLevel = domain.Classify(r.CurrentLevel)
	if w.AlertLevel != "" && w.AlertLevel != string(r.AlertLevel) {
		c.logger.Warn("backend alert level disagrees with level",
			"river_id", r.ID,
			"level", r.CurrentLevel,
			"backend_alert_level", w.AlertLevel,
			"alert_level", r.AlertLevel,
		)
	}
	if r.Shelters == nil {
		r.Shelters = []domain.Shelter{}
	}
	return r
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrNotFound)
	case resp.StatusCode == http.StatusBadRequest:
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %s: %w", method, path, bytes.TrimSpace(msg), domain.ErrInvalidInput)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("river API error: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
