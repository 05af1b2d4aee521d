package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"placemap/internal/models"
)

// ClientHandler handles client identity requests.
type ClientHandler struct {
	service ClientService
}

// ClientService interface for dependency injection.
type ClientService interface {
	Identify(ctx context.Context, existing *string) (string, error)
}

// NewClientHandler creates a new client handler.
func NewClientHandler(svc ClientService) *ClientHandler {
	return &ClientHandler{service: svc}
}

// Identify handles POST /client/identify requests. An empty body is allowed
// and mints a fresh client id.
func (h *ClientHandler) Identify(c *gin.Context) {
	var req models.ClientIdentifyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	clientID, err := h.service.Identify(c.Request.Context(), req.ClientID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ClientIdentifyResponse{ClientID: clientID})
}
