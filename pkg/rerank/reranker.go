// Package rerank reorders fused search results with an LLM relevance
// classifier. Reranking is optional and best-effort: any failure leaves the
// fused order untouched.
package rerank

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	jsonrepair "github.com/kaptinlin/jsonrepair"
	"github.com/sashabaranov/go-openai"

	"github.com/docsonar/docsonar/pkg/config"
	"github.com/docsonar/docsonar/pkg/types"
)

const (
	defaultModel          = "gpt-4o-mini"
	defaultMaxConcurrency = 10
	maxPassageRunes       = 2000
)

// Reranker scores result passages against the query concurrently and
// reorders them by classifier confidence.
type Reranker struct {
	client    *openai.Client
	model     string
	topN      int
	semaphore chan struct{}
	log       *slog.Logger
}

// NewReranker builds a reranker from config. Returns nil when disabled or
// when no API key is configured; callers treat a nil reranker as a no-op.
func NewReranker(cfg config.RerankConfig, log *slog.Logger) *Reranker {
	if !cfg.Enabled || cfg.APIKey == "" {
		return nil
	}
	if log == nil {
		log = slog.Default()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}

	return &Reranker{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     model,
		topN:      cfg.TopN,
		semaphore: make(chan struct{}, maxConcurrency),
		log:       log,
	}
}

// relevanceVerdict is the JSON shape the classifier is asked to emit.
type relevanceVerdict struct {
	Relevant   bool    `json:"relevant"`
	Confidence float64 `json:"confidence"`
}

// Rerank reorders the top results by classifier score. The fused order is
// kept whenever a passage cannot be scored, so reranking can only refine a
// ranking, never destroy it.
func (r *Reranker) Rerank(ctx context.Context, query string, results []types.SearchResult) []types.SearchResult {
	if r == nil || len(results) < 2 {
		return results
	}

	n := len(results)
	if r.topN > 0 && r.topN < n {
		n = r.topN
	}
	head := results[:n]

	scores := make([]float64, n)
	scored := make([]bool, n)
	var wg sync.WaitGroup

	for i := range head {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()

			r.semaphore <- struct{}{}
			defer func() { <-r.semaphore }()

			score, err := r.scorePassage(ctx, query, head[i])
			if err != nil {
				r.log.Warn("rerank scoring failed, keeping fused position",
					"document_id", head[i].DocumentID, "error", err)
				return
			}
			scores[i] = score
			scored[i] = true
		}()
	}
	wg.Wait()

	for _, ok := range scored {
		if !ok {
			return results
		}
	}

	reranked := make([]types.SearchResult, n)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	for pos, idx := range order {
		reranked[pos] = head[idx]
	}

	out := make([]types.SearchResult, 0, len(results))
	out = append(out, reranked...)
	out = append(out, results[n:]...)
	return out
}

// scorePassage asks the classifier for a relevance verdict on one result.
func (r *Reranker) scorePassage(ctx context.Context, query string, result types.SearchResult) (float64, error) {
	passage := result.Title + "\n" + result.Content
	runes := []rune(passage)
	if len(runes) > maxPassageRunes {
		passage = string(runes[:maxPassageRunes])
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert tasked with determining whether the passage is relevant to the query. Respond with JSON: {\"relevant\": true|false, \"confidence\": 0.0-1.0}",
			},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(`<PASSAGE>
%s
</PASSAGE>
<QUERY>
%s
</QUERY>`, passage, query),
			},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("no choices returned from API")
	}

	verdict, err := parseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return 0, err
	}
	if !verdict.Relevant {
		return 1 - verdict.Confidence, nil
	}
	return verdict.Confidence, nil
}

// parseVerdict decodes the classifier output, repairing malformed JSON
// before giving up.
func parseVerdict(content string) (*relevanceVerdict, error) {
	var verdict relevanceVerdict
	if err := json.Unmarshal([]byte(content), &verdict); err == nil {
		return &verdict, nil
	}

	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return nil, fmt.Errorf("unparseable verdict: %s", content)
	}
	if err := json.Unmarshal([]byte(repaired), &verdict); err != nil {
		return nil, fmt.Errorf("unparseable verdict after repair: %s", content)
	}
	return &verdict, nil
}
