package types

import "errors"

// Validation errors
var (
	ErrEmptyQuery      = errors.New("query cannot be empty")
	ErrEmptyDocumentID = errors.New("document id cannot be empty")
	ErrInvalidLimit    = errors.New("limit must be positive")
	ErrInvalidDepth    = errors.New("max depth must be positive")
	ErrUnknownMode     = errors.New("unknown search mode")
)

// NodeType identifies the kind of entity a graph node represents.
type NodeType string

const (
	// FunctionNodeType represents a business function or capability.
	FunctionNodeType NodeType = "Function"
	// SystemItemNodeType represents a system, service, or component.
	SystemItemNodeType NodeType = "SystemItem"
	// KeywordNodeType represents a recurring keyword or term.
	KeywordNodeType NodeType = "Keyword"
	// PageNodeType represents a synchronized document page.
	PageNodeType NodeType = "Page"
	// LabelNodeType represents a user-applied label.
	LabelNodeType NodeType = "Label"
)

// Relationship identifies the kind of edge connecting two graph nodes.
type Relationship string

const (
	Describes      Relationship = "DESCRIBES"
	Contains       Relationship = "CONTAINS"
	RelatesTo      Relationship = "RELATES_TO"
	AssociatedWith Relationship = "ASSOCIATED_WITH"
	TaggedWith     Relationship = "TAGGED_WITH"
)

// GraphNode is a single node in the knowledge graph. Nodes are immutable
// after the index holding them is built.
type GraphNode struct {
	ID         string                 `json:"id" mapstructure:"id"`
	Type       NodeType               `json:"type" mapstructure:"type"`
	Name       string                 `json:"name" mapstructure:"name"`
	Properties map[string]interface{} `json:"properties,omitempty" mapstructure:"properties"`
}

// GraphEdge is a directed, typed edge between two graph nodes.
type GraphEdge struct {
	Source       string                 `json:"source" mapstructure:"source"`
	Target       string                 `json:"target" mapstructure:"target"`
	Relationship Relationship           `json:"relationship" mapstructure:"relationship"`
	Properties   map[string]interface{} `json:"properties,omitempty" mapstructure:"properties"`
}

// Key returns the deduplication key for an edge: two edges with the same
// source, target, and relationship collapse to one after a merge.
func (e GraphEdge) Key() string {
	return e.Source + "|" + e.Target + "|" + string(e.Relationship)
}

// GraphPath is an ordered walk through the graph produced by a traversal.
// Length is the node count, so a direct neighbor path has length 2.
type GraphPath struct {
	Nodes          []GraphNode `json:"nodes"`
	Edges          []GraphEdge `json:"edges"`
	Length         int         `json:"length"`
	RelevanceScore float64     `json:"relevance_score"`
}

// Key returns the deduplication key for a path: the ordered node-id chain.
func (p GraphPath) Key() string {
	key := ""
	for i, n := range p.Nodes {
		if i > 0 {
			key += ">"
		}
		key += n.ID
	}
	return key
}

// SearchMode selects which index the source search adapter queries.
type SearchMode string

const (
	// VectorMode queries the semantic-similarity (embedding) index.
	VectorMode SearchMode = "vector"
	// LexicalMode queries the lexical (BM25) index.
	LexicalMode SearchMode = "lexical"
	// KeywordMode queries the keyword index.
	KeywordMode SearchMode = "keyword"
	// TitleMode queries the title index.
	TitleMode SearchMode = "title"
)

// SourceName identifies where a fused result contribution came from.
type SourceName string

const (
	VectorSource  SourceName = "vector"
	BM25Source    SourceName = "bm25"
	GraphSource   SourceName = "graph"
	KeywordSource SourceName = "keyword"
	TitleSource   SourceName = "title"
)

// AllSources lists every fusion source in dispatch order.
var AllSources = []SourceName{VectorSource, BM25Source, GraphSource, KeywordSource, TitleSource}

// DocumentRecord is the opaque ranked record returned by a source search
// adapter. The engine never interprets how the score was computed.
type DocumentRecord struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	URL          string   `json:"url"`
	Score        float64  `json:"score"`
	Labels       []string `json:"labels,omitempty"`
	LastModified string   `json:"last_modified,omitempty"`
	SpaceKey     string   `json:"space_key,omitempty"`
}

// ResultMetadata carries document metadata through fusion.
type ResultMetadata struct {
	Labels       []string `json:"labels,omitempty"`
	LastModified string   `json:"last_modified,omitempty"`
	SpaceKey     string   `json:"space_key,omitempty"`
}

// GraphContext is graph-derived context attached to a search result.
type GraphContext struct {
	RelatedFunctions []string `json:"related_functions,omitempty"`
	RelatedKeywords  []string `json:"related_keywords,omitempty"`
	Relationships    []string `json:"relationships,omitempty"`
}

// SearchResult is one fused, ranked document. Source is a comma-joined,
// deduplicated list of the sources that contributed to the fused score.
type SearchResult struct {
	DocumentID   string         `json:"document_id"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	URL          string         `json:"url"`
	Score        float64        `json:"score"`
	Source       string         `json:"source"`
	Metadata     ResultMetadata `json:"metadata"`
	GraphContext *GraphContext  `json:"graph_context,omitempty"`
}

// Sources splits the comma-joined source field back into its parts.
func (r *SearchResult) Sources() []string {
	if r.Source == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(r.Source); i++ {
		if i == len(r.Source) || r.Source[i] == ',' {
			if i > start {
				out = append(out, r.Source[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// NewDocumentResult converts an adapter record into a single-source result.
func NewDocumentResult(rec DocumentRecord, source SourceName) SearchResult {
	return SearchResult{
		DocumentID: rec.ID,
		Title:      rec.Title,
		Content:    rec.Content,
		URL:        rec.URL,
		Score:      rec.Score,
		Source:     string(source),
		Metadata: ResultMetadata{
			Labels:       rec.Labels,
			LastModified: rec.LastModified,
			SpaceKey:     rec.SpaceKey,
		},
	}
}
