package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docsonar/docsonar"
	"github.com/docsonar/docsonar/pkg/server/dto"
)

// GraphHandler handles knowledge-graph navigation requests
type GraphHandler struct {
	engine docsonar.Engine
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(engine docsonar.Engine) *GraphHandler {
	return &GraphHandler{
		engine: engine,
	}
}

// Stats handles GET /api/v1/graph/stats
func (h *GraphHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.GraphStats())
}

// Reload handles POST /api/v1/graph/reload
func (h *GraphHandler) Reload(c *gin.Context) {
	if err := h.engine.ReloadGraph(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "reload_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.engine.GraphStats())
}

// RelatedPages handles GET /api/v1/graph/related-pages/:function
func (h *GraphHandler) RelatedPages(c *gin.Context) {
	functionName := c.Param("function")

	nodes, err := h.engine.FindRelatedPages(c.Request.Context(), functionName)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.RelatedNodesResponse{Query: functionName, Nodes: nodes})
}

// RelatedFunctions handles GET /api/v1/graph/related-functions/:page
func (h *GraphHandler) RelatedFunctions(c *gin.Context) {
	pageID := c.Param("page")

	nodes, err := h.engine.FindRelatedFunctions(c.Request.Context(), pageID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.RelatedNodesResponse{Query: pageID, Nodes: nodes})
}
