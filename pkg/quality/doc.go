// Package quality scores fused search output for offline evaluation:
// relevance of the fused scores, diversity of contributing sources, and
// completeness against the pages the knowledge graph expects.
package quality
