package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"netwatch/internal/models"
)

// Log persists connectivity transitions to disk as a JSON array in append
// order. Only the monitor tick writes to it.
type Log struct {
	mu         sync.RWMutex
	path       string
	maxEntries int
	entries    []models.HistoryEntry
}

// Stats summarises the logged transitions.
type Stats struct {
	TotalEvents       int     `json:"total_events"`
	ConnectedCount    int     `json:"connected_count"`
	DisconnectedCount int     `json:"disconnected_count"`
	AverageLatencyMs  float64 `json:"average_latency_ms,omitempty"`
}

// NewLog initialises the log and loads existing entries if present. A corrupt
// or unreadable file yields an empty log rather than an error; the previous
// file is overwritten on the next append.
func NewLog(path string, maxEntries int) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}

	l := &Log{path: path, maxEntries: maxEntries}
	l.entries = load(path)
	return l, nil
}

func load(path string) []models.HistoryEntry {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return nil
	}
	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}

// Append adds a transition entry and persists the log. When a cap is set,
// oldest entries are dropped first so the newest are always preserved.
func (l *Log) Append(entry models.HistoryEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	if l.maxEntries > 0 && len(l.entries) > l.maxEntries {
		l.entries = l.entries[len(l.entries)-l.maxEntries:]
	}
	return l.persistLocked()
}

// Recent returns up to n entries, most recent first. n <= 0 returns all.
func (l *Log) Recent(n int) []models.HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := len(l.entries)
	if n > 0 && n < count {
		count = n
	}
	out := make([]models.HistoryEntry, 0, count)
	for i := len(l.entries) - 1; i >= len(l.entries)-count; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// Len returns the number of stored entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Stats aggregates event counts and the average latency across connect events.
func (l *Log) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Stats{TotalEvents: len(l.entries)}
	var latencySum int64
	var latencyCount int
	for _, e := range l.entries {
		switch e.Event {
		case models.StateConnected:
			s.ConnectedCount++
		case models.StateDisconnected:
			s.DisconnectedCount++
		}
		if e.LatencyMs > 0 {
			latencySum += e.LatencyMs
			latencyCount++
		}
	}
	if latencyCount > 0 {
		s.AverageLatencyMs = float64(latencySum) / float64(latencyCount)
	}
	return s
}

// Clear removes all entries and persists the empty log.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	return l.persistLocked()
}

func (l *Log) persistLocked() error {
	entries := l.entries
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	bytes, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	tmpPath := fmt.Sprintf("%s.%d.tmp", l.path, time.Now().UnixNano())
	if err := os.WriteFile(tmpPath, bytes, 0o644); err != nil {
		return fmt.Errorf("write temp history: %w", err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace history file: %w", err)
	}
	return nil
}
