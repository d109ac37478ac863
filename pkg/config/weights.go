package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadWeightsProfile reads a fusion weight profile from a standalone YAML
// file, so ranking experiments can swap weights without touching the main
// config. Zero-valued weights are left at their configured defaults.
func LoadWeightsProfile(path string) (*Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights profile: %w", err)
	}

	weights := &Weights{}
	if err := yaml.Unmarshal(data, weights); err != nil {
		return nil, fmt.Errorf("failed to parse weights profile: %w", err)
	}

	defaults := Weights{Vector: 0.4, BM25: 0.3, Graph: 0.2, Keyword: 0.05, Title: 0.05}
	if weights.Vector == 0 {
		weights.Vector = defaults.Vector
	}
	if weights.BM25 == 0 {
		weights.BM25 = defaults.BM25
	}
	if weights.Graph == 0 {
		weights.Graph = defaults.Graph
	}
	if weights.Keyword == 0 {
		weights.Keyword = defaults.Keyword
	}
	if weights.Title == 0 {
		weights.Title = defaults.Title
	}
	return weights, nil
}
