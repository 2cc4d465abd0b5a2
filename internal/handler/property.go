package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/DeepakTayde/rentpe-v1-sub002/internal/model"

	"github.com/gin-gonic/gin"
)

// PropertyGetter loads a single verified property
type PropertyGetter interface {
	GetPropertyByID(ctx context.Context, id string) (*model.PropertySummary, error)
}

// PropertyHandler handles property detail HTTP requests
type PropertyHandler struct {
	store PropertyGetter
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(store PropertyGetter) *PropertyHandler {
	return &PropertyHandler{store: store}
}

// GetProperty handles GET /api/v1/properties/:id
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	property, err := h.store.GetPropertyByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property: " + err.Error()})
		return
	}

	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	c.JSON(http.StatusOK, property)
}
