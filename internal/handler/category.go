package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"placemap/internal/models"
)

// CategoryHandler handles category CRUD requests.
type CategoryHandler struct {
	service CategoryService
}

// CategoryService interface for dependency injection.
type CategoryService interface {
	Create(ctx context.Context, req models.CategoryRequest) (*models.Category, error)
	Update(ctx context.Context, id, clientID string, req models.CategoryUpdateRequest) (*models.Category, error)
	Get(ctx context.Context, id, clientID string) (*models.Category, error)
	List(ctx context.Context, clientID string, page, size int) (models.Page[models.Category], error)
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(svc CategoryService) *CategoryHandler {
	return &CategoryHandler{service: svc}
}

// Create handles POST /categories requests.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cat, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// Update handles PUT /categories/:id requests.
func (h *CategoryHandler) Update(c *gin.Context) {
	id := c.Param("id")
	clientID := c.Query("clientId")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'clientId'"})
		return
	}

	var req models.CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cat, err := h.service.Update(c.Request.Context(), id, clientID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// Get handles GET /categories/:id requests.
func (h *CategoryHandler) Get(c *gin.Context) {
	id := c.Param("id")
	clientID := c.Query("clientId")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'clientId'"})
		return
	}

	cat, err := h.service.Get(c.Request.Context(), id, clientID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// List handles GET /categories requests.
func (h *CategoryHandler) List(c *gin.Context) {
	clientID, page, size, ok := pagingParams(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), clientID, page, size)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
