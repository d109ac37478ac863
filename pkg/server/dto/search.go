package dto

import (
	"errors"
	"strings"

	"github.com/docsonar/docsonar/pkg/types"
)

// MaxQueryLength bounds incoming query strings.
const MaxQueryLength = 1024

// ErrQueryTooLong is returned when a query exceeds MaxQueryLength.
var ErrQueryTooLong = errors.New("query exceeds maximum length")

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query               string `json:"query" binding:"required"`
	MaxResults          int    `json:"max_results,omitempty"`
	IncludeGraphContext *bool  `json:"include_graph_context,omitempty"`
}

// Validate performs validation on SearchRequest
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return types.ErrEmptyQuery
	}
	if len(r.Query) > MaxQueryLength {
		return ErrQueryTooLong
	}
	if r.MaxResults < 0 {
		return types.ErrInvalidLimit
	}
	return nil
}

// SearchResponse is the body returned by POST /api/v1/search.
type SearchResponse struct {
	Results       []types.SearchResult `json:"results"`
	Query         string               `json:"query"`
	FailedSources []string             `json:"failed_sources,omitempty"`
	Degraded      bool                 `json:"degraded"`
	DurationMs    int64                `json:"duration_ms"`
}

// EvaluateRequest is the body of POST /api/v1/quality/evaluate.
type EvaluateRequest struct {
	Queries []string `json:"queries" binding:"required"`
}

// Validate performs validation on EvaluateRequest
func (r *EvaluateRequest) Validate() error {
	if len(r.Queries) == 0 {
		return types.ErrEmptyQuery
	}
	for _, q := range r.Queries {
		if strings.TrimSpace(q) == "" {
			return types.ErrEmptyQuery
		}
	}
	return nil
}

// RelatedNodesResponse is returned by the related-pages and
// related-functions endpoints.
type RelatedNodesResponse struct {
	Query string            `json:"query"`
	Nodes []types.GraphNode `json:"nodes"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
