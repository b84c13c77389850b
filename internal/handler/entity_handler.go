package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jengzang/opportunity-map-go/internal/models"
	"github.com/jengzang/opportunity-map-go/internal/service"
	"github.com/jengzang/opportunity-map-go/pkg/response"
)

// EntityHandler handles HTTP requests for stored map entities
type EntityHandler struct {
	service *service.MapService
}

// NewEntityHandler creates a new entity handler
func NewEntityHandler(service *service.MapService) *EntityHandler {
	return &EntityHandler{service: service}
}

// IngestRequest is the body of POST /api/v1/entities
type IngestRequest struct {
	Entities []models.MapEntity `json:"entities" binding:"required"`
}

// ListEntities handles GET /api/v1/entities
func (h *EntityHandler) ListEntities(c *gin.Context) {
	var filter models.EntityFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	entities, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, "Failed to list entities", err)
		return
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	response.Success(c, gin.H{
		"data":     entities,
		"count":    len(entities),
		"page":     filter.Page,
		"pageSize": filter.PageSize,
	})
}

// GetEntity handles GET /api/v1/entities/:id
func (h *EntityHandler) GetEntity(c *gin.Context) {
	entity, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, "Failed to get entity", err)
		return
	}

	response.Success(c, entity)
}

// CreateEntities handles POST /api/v1/entities
func (h *EntityHandler) CreateEntities(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	stored, err := h.service.Ingest(c.Request.Context(), req.Entities)
	if err != nil {
		fail(c, "Failed to store entities", err)
		return
	}

	response.Created(c, gin.H{
		"entities": stored,
		"count":    len(stored),
	})
}

// DeleteEntity handles DELETE /api/v1/entities/:id
func (h *EntityHandler) DeleteEntity(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		fail(c, "Failed to delete entity", err)
		return
	}

	response.Success(c, gin.H{"id": id})
}
