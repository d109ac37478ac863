package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/docsonar/docsonar/pkg/types"
)

// HTTPConfig configures the REST binding to the document-index service.
type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration
	APIKey  string
}

// HTTPAdapter is a thin REST client for a remote document-index service.
// It is transport only: ranking happens on the other side of the wire.
type HTTPAdapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPAdapter creates an adapter for the index service at cfg.BaseURL.
func NewHTTPAdapter(cfg HTTPConfig) *HTTPAdapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPAdapter{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
	Mode  string `json:"mode"`
}

type searchResponse struct {
	Results []types.DocumentRecord `json:"results"`
}

// Search posts the query to the index service's /search endpoint.
func (a *HTTPAdapter) Search(ctx context.Context, query string, topK int, mode types.SearchMode) ([]types.DocumentRecord, error) {
	switch mode {
	case types.VectorMode, types.LexicalMode, types.KeywordMode, types.TitleMode:
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownMode, mode)
	}

	body, err := json.Marshal(searchRequest{Query: query, TopK: topK, Mode: string(mode)})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search request returned %d: %s", resp.StatusCode, string(payload))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return decoded.Results, nil
}

// GetByID fetches a single document record; a 404 resolves to (nil, nil).
func (a *HTTPAdapter) GetByID(ctx context.Context, id string) (*types.DocumentRecord, error) {
	if id == "" {
		return nil, types.ErrEmptyDocumentID
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/documents/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build document request: %w", err)
	}
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("document request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("document request returned %d: %s", resp.StatusCode, string(payload))
	}

	var record types.DocumentRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to decode document response: %w", err)
	}
	return &record, nil
}
