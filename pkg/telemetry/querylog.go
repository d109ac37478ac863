// Package telemetry records per-query search telemetry to Parquet files for
// offline ranking analysis. Records are buffered and flushed in batches;
// telemetry failures never fail a query.
package telemetry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

// QueryRecord is a single fused-search observation.
type QueryRecord struct {
	ID            string    `parquet:"id"`
	Timestamp     time.Time `parquet:"timestamp"`
	Query         string    `parquet:"query"`
	Sources       string    `parquet:"sources"`        // comma-joined contributing sources
	FailedSources string    `parquet:"failed_sources"` // comma-joined failed sources
	ResultCount   int       `parquet:"result_count"`
	TopScore      float64   `parquet:"top_score"`
	DurationMs    int64     `parquet:"duration_ms"`
	Degraded      bool      `parquet:"degraded"`
}

// QueryLog batches query records into Parquet files under outputDir.
type QueryLog struct {
	outputDir string
	log       *slog.Logger

	mu        sync.Mutex
	buffer    []QueryRecord
	batchSize int
}

// NewQueryLog creates the output directory and a batched writer over it.
func NewQueryLog(outputDir string, log *slog.Logger) (*QueryLog, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	return &QueryLog{
		outputDir: outputDir,
		log:       log,
		batchSize: 100,
		buffer:    make([]QueryRecord, 0, 100),
	}, nil
}

// Observe buffers one observation, assigning it an id and timestamp.
func (q *QueryLog) Observe(query string, sources, failedSources []string, resultCount int, topScore float64, duration time.Duration, degraded bool) {
	record := QueryRecord{
		ID:            uuid.New().String(),
		Timestamp:     time.Now().UTC(),
		Query:         query,
		Sources:       strings.Join(sources, ","),
		FailedSources: strings.Join(failedSources, ","),
		ResultCount:   resultCount,
		TopScore:      topScore,
		DurationMs:    duration.Milliseconds(),
		Degraded:      degraded,
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.buffer = append(q.buffer, record)
	if len(q.buffer) >= q.batchSize {
		q.flush()
	}
}

// Flush writes any buffered records out immediately.
func (q *QueryLog) Flush() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.flush()
}

// Close flushes remaining records.
func (q *QueryLog) Close() error {
	q.Flush()
	return nil
}

// flush writes the current buffer to a new Parquet file.
// Caller must hold the lock.
func (q *QueryLog) flush() {
	if len(q.buffer) == 0 {
		return
	}

	filename := fmt.Sprintf("search_queries_%s_%d.parquet", time.Now().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(q.outputDir, filename)

	if err := parquet.WriteFile(path, q.buffer); err != nil {
		q.log.Warn("failed to write telemetry parquet file", "path", path, "error", err)
		return
	}

	q.buffer = q.buffer[:0]
}
