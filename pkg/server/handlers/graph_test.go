package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/docsonar/docsonar/pkg/graph"
	"github.com/docsonar/docsonar/pkg/server/dto"
	"github.com/docsonar/docsonar/pkg/types"
)

func performGET(t *testing.T, handler gin.HandlerFunc, route, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET(route, handler)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGraphStatsHandler(t *testing.T) {
	engine := &fakeEngine{stats: graph.Stats{TotalNodes: 12, TotalEdges: 30}}
	h := NewGraphHandler(engine)

	w := performGET(t, h.Stats, "/stats", "/stats")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var stats graph.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if stats.TotalNodes != 12 || stats.TotalEdges != 30 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestRelatedPagesHandler(t *testing.T) {
	engine := &fakeEngine{
		relatedPages: []types.GraphNode{
			{ID: "page-1", Type: types.PageNodeType, Name: "classroom management page"},
		},
	}
	h := NewGraphHandler(engine)

	w := performGET(t, h.RelatedPages, "/related-pages/:function", "/related-pages/classroom%20management")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp dto.RelatedNodesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Query != "classroom management" {
		t.Errorf("unexpected query echo: %q", resp.Query)
	}
	if len(resp.Nodes) != 1 || resp.Nodes[0].ID != "page-1" {
		t.Errorf("unexpected nodes: %+v", resp.Nodes)
	}
}

func TestRelatedFunctionsHandler(t *testing.T) {
	engine := &fakeEngine{
		relatedFns: []types.GraphNode{
			{ID: "fn-1", Type: types.FunctionNodeType, Name: "classroom management"},
		},
	}
	h := NewGraphHandler(engine)

	w := performGET(t, h.RelatedFunctions, "/related-functions/:page", "/related-functions/page-1")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp dto.RelatedNodesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Nodes) != 1 || resp.Nodes[0].ID != "fn-1" {
		t.Errorf("unexpected nodes: %+v", resp.Nodes)
	}
}

func TestReloadHandlerError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := &fakeEngine{reloadErr: errors.New("source unreachable")}
	h := NewGraphHandler(engine)

	router := gin.New()
	router.POST("/reload", h.Reload)

	req := httptest.NewRequest(http.MethodPost, "/reload", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestHealthHandlers(t *testing.T) {
	h := NewHealthHandler(&fakeEngine{stats: graph.Stats{TotalNodes: 1}})

	w := performGET(t, h.HealthCheck, "/health", "/health")
	if w.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", w.Code)
	}

	w = performGET(t, h.ReadinessCheck, "/ready", "/ready")
	if w.Code != http.StatusOK {
		t.Errorf("ready: expected 200, got %d", w.Code)
	}

	w = performGET(t, h.LivenessCheck, "/live", "/live")
	if w.Code != http.StatusOK {
		t.Errorf("live: expected 200, got %d", w.Code)
	}
}

func TestReadinessCheckNilEngine(t *testing.T) {
	h := NewHealthHandler(nil)

	w := performGET(t, h.ReadinessCheck, "/ready", "/ready")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 for missing engine, got %d", w.Code)
	}
}
