package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"placemap/internal/models"
	"placemap/internal/service"
)

// LocationHandler handles visited and faved location requests.
type LocationHandler struct {
	service LocationService
	weather WeatherService
}

// LocationService interface for dependency injection.
type LocationService interface {
	SaveVisited(ctx context.Context, req models.LocationRequest) (*models.Location, error)
	SaveFaved(ctx context.Context, req models.LocationRequest) (*models.Location, error)
	GetVisited(ctx context.Context, clientID string, page, size int) (models.Page[models.Location], error)
	GetFaved(ctx context.Context, clientID string, page, size int) (models.Page[models.Location], error)
	GetFavedByCategory(ctx context.Context, categoryID, clientID string, page, size int) (models.Page[models.Location], error)
	AssignCategory(ctx context.Context, locationID string, categoryID *string, clientID string) (*models.Location, error)
}

// WeatherService interface for dependency injection.
type WeatherService interface {
	Current(ctx context.Context, latitude, longitude float64) (*models.WeatherData, error)
}

// NewLocationHandler creates a new location handler.
func NewLocationHandler(svc LocationService, weather WeatherService) *LocationHandler {
	return &LocationHandler{service: svc, weather: weather}
}

// SaveVisited handles POST /locations/visited requests.
func (h *LocationHandler) SaveVisited(c *gin.Context) {
	var req models.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	loc, err := h.service.SaveVisited(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// SaveFaved handles POST /locations/faved requests.
func (h *LocationHandler) SaveFaved(c *gin.Context) {
	var req models.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	loc, err := h.service.SaveFaved(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// GetVisited handles GET /locations/visited requests.
func (h *LocationHandler) GetVisited(c *gin.Context) {
	clientID, page, size, ok := pagingParams(c)
	if !ok {
		return
	}

	result, err := h.service.GetVisited(c.Request.Context(), clientID, page, size)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetFaved handles GET /locations/faved requests.
func (h *LocationHandler) GetFaved(c *gin.Context) {
	clientID, page, size, ok := pagingParams(c)
	if !ok {
		return
	}

	result, err := h.service.GetFaved(c.Request.Context(), clientID, page, size)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetFavedByCategory handles GET /locations/faved/category/:categoryId
// requests.
func (h *LocationHandler) GetFavedByCategory(c *gin.Context) {
	clientID, page, size, ok := pagingParams(c)
	if !ok {
		return
	}
	categoryID := c.Param("categoryId")

	result, err := h.service.GetFavedByCategory(c.Request.Context(), categoryID, clientID, page, size)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AssignCategory handles PUT /locations/faved/:id/category requests.
func (h *LocationHandler) AssignCategory(c *gin.Context) {
	id := c.Param("id")

	var req models.AssignCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	loc, err := h.service.AssignCategory(c.Request.Context(), id, req.CategoryID, req.ClientID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// Weather handles GET /locations/weather requests. The location echo always
// succeeds; the weather block is omitted when the upstream fails.
func (h *LocationHandler) Weather(c *gin.Context) {
	latStr := c.Query("latitude")
	lngStr := c.Query("longitude")
	if latStr == "" || lngStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameters 'latitude' and 'longitude'"})
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid latitude format"})
		return
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid longitude format"})
		return
	}

	resp := models.WeatherResponse{Latitude: latStr, Longitude: lngStr}
	if data, err := h.weather.Current(c.Request.Context(), lat, lng); err == nil {
		resp.Weather = data
	}
	c.JSON(http.StatusOK, resp)
}

func pagingParams(c *gin.Context) (clientID string, page, size int, ok bool) {
	clientID = c.Query("clientId")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'clientId'"})
		return "", 0, 0, false
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return "", 0, 0, false
	}
	size, err = strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid size"})
		return "", 0, 0, false
	}
	return clientID, page, size, true
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
