package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docsonar/docsonar"
	"github.com/docsonar/docsonar/pkg/fusion"
	"github.com/docsonar/docsonar/pkg/server/dto"
)

// SearchHandler handles fused search and quality evaluation requests
type SearchHandler struct {
	engine docsonar.Engine
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(engine docsonar.Engine) *SearchHandler {
	return &SearchHandler{
		engine: engine,
	}
}

// Search handles POST /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	var opts *fusion.Options
	if req.MaxResults > 0 || req.IncludeGraphContext != nil {
		opts = fusion.DefaultOptions()
		if req.MaxResults > 0 {
			opts.MaxResults = req.MaxResults
		}
		if req.IncludeGraphContext != nil {
			opts.IncludeGraphContext = *req.IncludeGraphContext
		}
	}

	result, err := h.engine.Search(c.Request.Context(), req.Query, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "search_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.SearchResponse{
		Results:       result.Results,
		Query:         result.Query,
		FailedSources: result.FailedSources,
		Degraded:      result.Degraded,
		DurationMs:    result.Duration.Milliseconds(),
	})
}

// EvaluateQuality handles POST /api/v1/quality/evaluate
func (h *SearchHandler) EvaluateQuality(c *gin.Context) {
	var req dto.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	report, err := h.engine.EvaluateSearchQuality(c.Request.Context(), req.Queries)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "evaluation_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}
