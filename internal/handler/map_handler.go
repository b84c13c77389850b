package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/opportunity-map-go/internal/models"
	"github.com/jengzang/opportunity-map-go/internal/service"
	"github.com/jengzang/opportunity-map-go/pkg/response"
)

// MapHandler handles HTTP requests for map display data
type MapHandler struct {
	service *service.MapService
}

// NewMapHandler creates a new map handler
func NewMapHandler(service *service.MapService) *MapHandler {
	return &MapHandler{service: service}
}

// GetClusters handles GET /api/v1/map/clusters
func (h *MapHandler) GetClusters(c *gin.Context) {
	var filter models.ClusterFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	clusters, err := h.service.Clusters(c.Request.Context(), filter)
	if err != nil {
		fail(c, "Failed to cluster entities", err)
		return
	}

	response.Success(c, clusters)
}

// GetLegend handles GET /api/v1/map/legend
func (h *MapHandler) GetLegend(c *gin.Context) {
	legend, err := h.service.Legend(c.Request.Context(), c.Query("kind"))
	if err != nil {
		fail(c, "Failed to build legend", err)
		return
	}

	response.Success(c, legend)
}

// GetColor handles GET /api/v1/map/color
func (h *MapHandler) GetColor(c *gin.Context) {
	var q models.ColorQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	response.Success(c, gin.H{
		"value": q.Value,
		"min":   q.Min,
		"max":   q.Max,
		"color": h.service.Color(q),
	})
}

// GetGradient handles GET /api/v1/map/gradient
func (h *MapHandler) GetGradient(c *gin.Context) {
	response.Success(c, gin.H{
		"stops": h.service.Gradient(),
	})
}

// fail maps service errors onto HTTP statuses
func fail(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, err.Error(), err)
	case errors.Is(err, service.ErrNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), err)
	default:
		response.InternalError(c, message, err)
	}
}
