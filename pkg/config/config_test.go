package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("unexpected server port: %d", cfg.Server.Port)
	}
	if cfg.Graph.Source != "file" || cfg.Graph.TraversalMode != "first-wins" {
		t.Errorf("unexpected graph defaults: %+v", cfg.Graph)
	}
	if cfg.Fusion.MaxResults != 20 || !cfg.Fusion.IncludeGraphContext {
		t.Errorf("unexpected fusion defaults: %+v", cfg.Fusion)
	}
	if cfg.Fusion.Weights.Vector != 0.4 || cfg.Fusion.Weights.Title != 0.05 {
		t.Errorf("unexpected weight defaults: %+v", cfg.Fusion.Weights)
	}
	if cfg.Fusion.SourceTimeoutMS != 3000 {
		t.Errorf("unexpected source timeout: %d", cfg.Fusion.SourceTimeoutMS)
	}
	if !cfg.CircuitBreaker.Enabled || cfg.CircuitBreaker.ReadyToTripRatio != 0.6 {
		t.Errorf("unexpected circuit breaker defaults: %+v", cfg.CircuitBreaker)
	}
	if cfg.Rerank.Enabled {
		t.Error("rerank must be off by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	resetViper(t)
	t.Setenv("INDEX_BASE_URL", "http://search.internal:9200")
	t.Setenv("INDEX_API_KEY", "sekrit")
	t.Setenv("GRAPH_SNAPSHOT_PATH", "/data/graph.json")
	t.Setenv("NEO4J_URI", "bolt://graph.internal:7687")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Adapter.BaseURL != "http://search.internal:9200" {
		t.Errorf("INDEX_BASE_URL not applied: %s", cfg.Adapter.BaseURL)
	}
	if cfg.Adapter.APIKey != "sekrit" {
		t.Errorf("INDEX_API_KEY not applied")
	}
	if cfg.Graph.SnapshotPath != "/data/graph.json" {
		t.Errorf("GRAPH_SNAPSHOT_PATH not applied: %s", cfg.Graph.SnapshotPath)
	}
	if cfg.Graph.Neo4j.URI != "bolt://graph.internal:7687" {
		t.Errorf("NEO4J_URI not applied: %s", cfg.Graph.Neo4j.URI)
	}
}

func TestLoadWeightsProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	content := "vector: 0.6\nbm25: 0.2\ngraph: 0.1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write profile: %v", err)
	}

	weights, err := LoadWeightsProfile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if weights.Vector != 0.6 || weights.BM25 != 0.2 || weights.Graph != 0.1 {
		t.Errorf("explicit weights not applied: %+v", weights)
	}
	// Unset weights fall back to defaults.
	if weights.Keyword != 0.05 || weights.Title != 0.05 {
		t.Errorf("unset weights must default: %+v", weights)
	}
}

func TestLoadWeightsProfileMissingFile(t *testing.T) {
	if _, err := LoadWeightsProfile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing profile")
	}
}

func TestLoadAppliesWeightsProfile(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "weights.yaml")
	if err := os.WriteFile(path, []byte("vector: 0.9\n"), 0644); err != nil {
		t.Fatalf("failed to write profile: %v", err)
	}
	viper.Set("fusion.weights_profile", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Fusion.Weights.Vector != 0.9 {
		t.Errorf("profile weight not applied: %+v", cfg.Fusion.Weights)
	}
}
