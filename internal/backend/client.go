package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"placemap/internal/models"
)

const defaultHTTPTimeout = 10 * time.Second

// Client is the REST client for the favorites backend. It is stateless
// between calls; all persistent state lives server side.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a backend client for the given base URL (e.g.
// "http://localhost:8080/api").
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return NewClientWithOptions(baseURL, nil, logger)
}

// NewClientWithOptions allows overriding the HTTP client (used for tests).
func NewClientWithOptions(baseURL string, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Identify exchanges an optional previously issued client id for the
// authoritative one.
func (c *Client) Identify(ctx context.Context, existingID string) (string, error) {
	req := models.ClientIdentifyRequest{}
	if existingID != "" {
		req.ClientID = &existingID
	}
	var resp models.ClientIdentifyResponse
	if err := c.do(ctx, http.MethodPost, "/client/identify", req, &resp); err != nil {
		return "", err
	}
	return resp.ClientID, nil
}

// SaveVisited appends a location to the visited history.
func (c *Client) SaveVisited(ctx context.Context, req models.LocationRequest) (*models.Location, error) {
	var loc models.Location
	if err := c.do(ctx, http.MethodPost, "/locations/visited", req, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// GetVisited returns a page of visited history, newest first.
func (c *Client) GetVisited(ctx context.Context, clientID string, page, size int) (models.Page[models.Location], error) {
	var out models.Page[models.Location]
	err := c.do(ctx, http.MethodGet, "/locations/visited"+pageQuery(clientID, page, size), nil, &out)
	return out, err
}

// SaveFaved creates a favorite location.
func (c *Client) SaveFaved(ctx context.Context, req models.LocationRequest) (*models.Location, error) {
	var loc models.Location
	if err := c.do(ctx, http.MethodPost, "/locations/faved", req, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// GetFaved returns a page of favorites, newest first.
func (c *Client) GetFaved(ctx context.Context, clientID string, page, size int) (models.Page[models.Location], error) {
	var out models.Page[models.Location]
	err := c.do(ctx, http.MethodGet, "/locations/faved"+pageQuery(clientID, page, size), nil, &out)
	return out, err
}

// GetFavedByCategory returns a page of favorites in a category.
func (c *Client) GetFavedByCategory(ctx context.Context, categoryID, clientID string, page, size int) (models.Page[models.Location], error) {
	var out models.Page[models.Location]
	path := "/locations/faved/category/" + url.PathEscape(categoryID) + pageQuery(clientID, page, size)
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// AssignCategory reassigns a favorite's category; a nil CategoryID in req
// means uncategorized.
func (c *Client) AssignCategory(ctx context.Context, locationID string, req models.AssignCategoryRequest) (*models.Location, error) {
	var loc models.Location
	path := "/locations/faved/" + url.PathEscape(locationID) + "/category"
	if err := c.do(ctx, http.MethodPut, path, req, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// Weather returns current weather for decimal-string coordinates.
func (c *Client) Weather(ctx context.Context, latitude, longitude string) (models.WeatherResponse, error) {
	var out models.WeatherResponse
	q := url.Values{}
	q.Set("latitude", latitude)
	q.Set("longitude", longitude)
	err := c.do(ctx, http.MethodGet, "/locations/weather?"+q.Encode(), nil, &out)
	return out, err
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	var cat models.Category
	if err := c.do(ctx, http.MethodPost, "/categories", req, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// UpdateCategory renames a category.
func (c *Client) UpdateCategory(ctx context.Context, id, clientID string, req models.CategoryUpdateRequest) (*models.Category, error) {
	var cat models.Category
	path := "/categories/" + url.PathEscape(id) + "?clientId=" + url.QueryEscape(clientID)
	if err := c.do(ctx, http.MethodPut, path, req, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// GetCategories returns a page of the client's categories.
func (c *Client) GetCategories(ctx context.Context, clientID string, page, size int) (models.Page[models.Category], error) {
	var out models.Page[models.Category]
	err := c.do(ctx, http.MethodGet, "/categories"+pageQuery(clientID, page, size), nil, &out)
	return out, err
}

// GetCategory returns one category by id.
func (c *Client) GetCategory(ctx context.Context, id, clientID string) (*models.Category, error) {
	var cat models.Category
	path := "/categories/" + url.PathEscape(id) + "?clientId=" + url.QueryEscape(clientID)
	if err := c.do(ctx, http.MethodGet, path, nil, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func pageQuery(clientID string, page, size int) string {
	q := url.Values{}
	q.Set("clientId", clientID)
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("size", fmt.Sprintf("%d", size))
	return "?" + q.Encode()
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("backend: failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("backend: %s %s returned status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: failed to decode response: %w", err)
	}
	return nil
}
