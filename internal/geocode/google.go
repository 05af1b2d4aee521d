package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"placemap/internal/models"
)

const (
	googleAutocompleteURL = "https://maps.googleapis.com/maps/api/place/queryautocomplete/json"
	googleDetailsURL      = "https://maps.googleapis.com/maps/api/place/details/json"
	googleDetailsFields   = "name,formatted_address,geometry,place_id"
	googleHTTPTimeout     = 8 * time.Second
	detailsCacheSize      = 256
)

// GoogleProvider implements Provider against the Google Places web APIs.
type GoogleProvider struct {
	apiKey          string
	httpClient      *http.Client
	autocompleteURL string
	detailsURL      string
	details         *lru.Cache[string, models.PlaceDetails]
	logger          zerolog.Logger
}

// NewGoogleProvider creates a provider using the production Google endpoints.
func NewGoogleProvider(apiKey string, logger zerolog.Logger) *GoogleProvider {
	return NewGoogleProviderWithOptions(apiKey, googleAutocompleteURL, googleDetailsURL, nil, logger)
}

// NewGoogleProviderWithOptions allows overriding the endpoints and HTTP client
// (used for tests).
func NewGoogleProviderWithOptions(apiKey, autocompleteURL, detailsURL string, httpClient *http.Client, logger zerolog.Logger) *GoogleProvider {
	if strings.TrimSpace(autocompleteURL) == "" {
		autocompleteURL = googleAutocompleteURL
	}
	if strings.TrimSpace(detailsURL) == "" {
		detailsURL = googleDetailsURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: googleHTTPTimeout}
	}
	cache, _ := lru.New[string, models.PlaceDetails](detailsCacheSize)
	return &GoogleProvider{
		apiKey:          apiKey,
		httpClient:      httpClient,
		autocompleteURL: autocompleteURL,
		detailsURL:      detailsURL,
		details:         cache,
		logger:          logger,
	}
}

// Suggest queries the query-autocomplete endpoint. ZERO_RESULTS maps to an
// empty slice, any other non-OK status to an error.
func (g *GoogleProvider) Suggest(ctx context.Context, input string, bias *Bias) ([]models.Suggestion, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("geocode: google api key is required")
	}

	params := url.Values{}
	params.Set("input", input)
	params.Set("key", g.apiKey)
	if bias != nil {
		params.Set("location", fmt.Sprintf("%f,%f", bias.Center.Lat, bias.Center.Lng))
		radius := bias.RadiusMeters
		if radius <= 0 {
			radius = 50000
		}
		params.Set("radius", fmt.Sprintf("%d", radius))
	}

	var payload googleAutocompleteResponse
	if err := g.get(ctx, g.autocompleteURL, params, &payload); err != nil {
		return nil, err
	}
	if payload.Status == "ZERO_RESULTS" {
		return []models.Suggestion{}, nil
	}
	if payload.Status != "OK" {
		return nil, statusError("autocomplete", payload.Status, payload.ErrorMessage)
	}

	suggestions := make([]models.Suggestion, 0, len(payload.Predictions))
	for _, p := range payload.Predictions {
		suggestions = append(suggestions, models.Suggestion{
			Description: p.Description,
			PlaceID:     p.PlaceID,
		})
	}
	return suggestions, nil
}

// Details resolves a place id with the fixed field set the engine needs.
func (g *GoogleProvider) Details(ctx context.Context, placeID string) (*models.PlaceDetails, error) {
	if cached, ok := g.details.Get(placeID); ok {
		return &cached, nil
	}
	if g.apiKey == "" {
		return nil, fmt.Errorf("geocode: google api key is required")
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", googleDetailsFields)
	params.Set("key", g.apiKey)

	var payload googleDetailsResponse
	if err := g.get(ctx, g.detailsURL, params, &payload); err != nil {
		return nil, err
	}
	if payload.Status == "NOT_FOUND" || payload.Status == "ZERO_RESULTS" {
		return nil, ErrPlaceNotFound
	}
	if payload.Status != "OK" || payload.Result == nil {
		return nil, statusError("details", payload.Status, payload.ErrorMessage)
	}

	details := models.PlaceDetails{
		PlaceID:   payload.Result.PlaceID,
		Name:      payload.Result.Name,
		Address:   payload.Result.FormattedAddress,
		Latitude:  payload.Result.Geometry.Location.Lat,
		Longitude: payload.Result.Geometry.Location.Lng,
	}
	g.details.Add(placeID, details)
	return &details, nil
}

func (g *GoogleProvider) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("geocode: failed to build request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geocode: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("geocode: request returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("geocode: failed to decode response: %w", err)
	}
	return nil
}

func statusError(op, status, message string) error {
	if message != "" {
		return fmt.Errorf("geocode: %s failed: %s - %s", op, status, message)
	}
	return fmt.Errorf("geocode: %s failed: %s", op, status)
}

type googleAutocompleteResponse struct {
	Status       string             `json:"status"`
	ErrorMessage string             `json:"error_message,omitempty"`
	Predictions  []googlePrediction `json:"predictions"`
}

type googlePrediction struct {
	Description string `json:"description"`
	PlaceID     string `json:"place_id"`
}

type googleDetailsResponse struct {
	Status       string              `json:"status"`
	ErrorMessage string              `json:"error_message,omitempty"`
	Result       *googlePlaceResult `json:"result"`
}

type googlePlaceResult struct {
	PlaceID          string         `json:"place_id"`
	Name             string         `json:"name"`
	FormattedAddress string         `json:"formatted_address"`
	Geometry         googleGeometry `json:"geometry"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
