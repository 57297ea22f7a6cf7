package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// SuccessExample is one persisted record of a request body that produced
// usable text. Records are only ever appended, never mutated.
type SuccessExample struct {
	Format          string         `json:"format"`
	Body            map[string]any `json:"body"`
	ResponseSnippet string         `json:"response_snippet"`
	StatusCode      int            `json:"status_code"`
	Timestamp       time.Time      `json:"timestamp"`
}

// AggregatedExample is a derived, in-memory view grouping SuccessExamples
// by body equality. Score = frequency + freshness, where freshness decays
// with the age of the most recent success.
type AggregatedExample struct {
	Format   string         `json:"format"`
	Body     map[string]any `json:"body"`
	Freq     int            `json:"freq"`
	LatestTS time.Time      `json:"latest_ts"`
	Score    float64        `json:"score"`
}

// ExampleMemory is an append-only JSON store of success examples. Writes
// replace the whole file atomically (temp file + rename) so a concurrent
// reader never observes a partial document.
type ExampleMemory struct {
	path   string
	logger *slog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewExampleMemory creates a memory backed by the JSON file at path. The
// file is created on first recorded success.
func NewExampleMemory(path string, logger *slog.Logger) *ExampleMemory {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExampleMemory{path: path, logger: logger, now: time.Now}
}

// RecordSuccess appends an example to the store. Persistence failures are
// logged and swallowed: the caller's main flow must never be interrupted
// by memory bookkeeping.
func (m *ExampleMemory) RecordSuccess(ex SuccessExample) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.load()
	existing = append(existing, ex)

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		m.logger.Warn("example memory: marshal failed", "error", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		m.logger.Warn("example memory: mkdir failed", "error", err)
		return
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".examples-*.json")
	if err != nil {
		m.logger.Warn("example memory: temp file failed", "error", err)
		return
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		m.logger.Warn("example memory: write failed", "error", err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		m.logger.Warn("example memory: close failed", "error", err)
		return
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		os.Remove(tmpName)
		m.logger.Warn("example memory: rename failed", "error", err)
		return
	}
}

// Top loads the full store, aggregates by body equality and returns up to
// limit entries ordered by descending score. A missing or unreadable file
// yields an empty result.
func (m *ExampleMemory) Top(limit int) []AggregatedExample {
	m.mu.Lock()
	examples := m.load()
	now := m.now()
	m.mu.Unlock()

	groups := make(map[string]*AggregatedExample)
	var order []string
	for _, ex := range examples {
		key := bodyKey(ex.Body)
		g, ok := groups[key]
		if !ok {
			g = &AggregatedExample{Format: ex.Format, Body: ex.Body, LatestTS: ex.Timestamp}
			groups[key] = g
			order = append(order, key)
		}
		g.Freq++
		if ex.Timestamp.After(g.LatestTS) {
			g.LatestTS = ex.Timestamp
			g.Format = ex.Format
			g.Body = ex.Body
		}
	}

	entries := make([]AggregatedExample, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		g.Score = float64(g.Freq) + freshness(now, g.LatestTS)
		entries = append(entries, *g)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].LatestTS.After(entries[j].LatestTS)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// load reads the store. Any failure is treated as an empty store: the file
// may legitimately not exist yet, and a truncated or corrupt file must not
// break negotiation.
func (m *ExampleMemory) load() []SuccessExample {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("example memory: read failed", "error", err)
		}
		return nil
	}
	var examples []SuccessExample
	if err := json.Unmarshal(data, &examples); err != nil {
		m.logger.Warn("example memory: corrupt store, treating as empty", "error", err)
		return nil
	}
	return examples
}

// freshness decays from 1.0 toward 0 with the age of the last success.
// Future timestamps count as zero age.
func freshness(now, latest time.Time) float64 {
	if latest.IsZero() {
		return 0
	}
	ageDays := now.Sub(latest).Hours() / 24.0
	if ageDays < 0 {
		ageDays = 0
	}
	return 1.0 / (1.0 + ageDays)
}

// bodyKey is the canonical, order-independent serialization of a request
// body used for deduplication. encoding/json sorts map keys.
func bodyKey(body map[string]any) string {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Sprintf("%v", body)
	}
	return string(b)
}
