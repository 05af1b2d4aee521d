package geoloc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"placemap/internal/models"
)

// Locator is the one-shot geolocation capability. Implementations are
// best-effort: a failure means "no fix", and callers fall back to the default
// map center without surfacing anything.
type Locator interface {
	Locate(ctx context.Context) (*models.Position, error)
}

const locateTimeout = 5 * time.Second

// IPLocator estimates the device position from its public IP using an
// ip-api.com style endpoint.
type IPLocator struct {
	endpoint   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewIPLocator creates a locator against the given endpoint.
func NewIPLocator(endpoint string, logger zerolog.Logger) *IPLocator {
	return NewIPLocatorWithOptions(endpoint, nil, logger)
}

// NewIPLocatorWithOptions allows overriding the HTTP client (used for tests).
func NewIPLocatorWithOptions(endpoint string, httpClient *http.Client, logger zerolog.Logger) *IPLocator {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: locateTimeout}
	}
	return &IPLocator{endpoint: endpoint, httpClient: httpClient, logger: logger}
}

type ipAPIResponse struct {
	Status string  `json:"status"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

// Locate performs a single position lookup.
func (l *IPLocator) Locate(ctx context.Context) (*models.Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("geoloc: failed to build request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geoloc: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geoloc: request returned status %d", resp.StatusCode)
	}

	var payload ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("geoloc: failed to decode response: %w", err)
	}
	if payload.Status != "success" {
		return nil, fmt.Errorf("geoloc: lookup failed with status %q", payload.Status)
	}
	return &models.Position{Lat: payload.Lat, Lng: payload.Lon}, nil
}

// Static is a Locator that always returns a fixed position. Useful for tests
// and for running without network access.
type Static struct {
	Position models.Position
}

// Locate returns the fixed position.
func (s Static) Locate(ctx context.Context) (*models.Position, error) {
	pos := s.Position
	return &pos, nil
}
