package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	MinIntervalSeconds = 1
	MaxIntervalSeconds = 60
)

// Settings holds the user-adjustable monitoring parameters.
type Settings struct {
	CheckIntervalSeconds int  `json:"check_interval_seconds"`
	NotificationsEnabled bool `json:"notifications_enabled"`
	BandwidthEnabled     bool `json:"bandwidth_enabled"`
	AutoStart            bool `json:"auto_start"`
}

// Defaults returns the out-of-the-box settings.
func Defaults() Settings {
	return Settings{
		CheckIntervalSeconds: 5,
		NotificationsEnabled: true,
		BandwidthEnabled:     true,
		AutoStart:            false,
	}
}

// Interval returns the check interval as a duration.
func (s Settings) Interval() time.Duration {
	return time.Duration(s.CheckIntervalSeconds) * time.Second
}

func clamp(s Settings) Settings {
	if s.CheckIntervalSeconds < MinIntervalSeconds {
		s.CheckIntervalSeconds = MinIntervalSeconds
	}
	if s.CheckIntervalSeconds > MaxIntervalSeconds {
		s.CheckIntervalSeconds = MaxIntervalSeconds
	}
	return s
}

// Store persists Settings to a JSON file. It is safe for one writer and many
// readers; the monitor reads one snapshot at the start of each tick.
type Store struct {
	mu      sync.RWMutex
	path    string
	current Settings
}

// NewStore loads settings from path, falling back to defaults if the file is
// missing or malformed. A malformed file never fails the caller.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure settings directory: %w", err)
	}
	s := &Store{path: path, current: load(path)}
	return s, nil
}

func load(path string) Settings {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults()
	}
	cfg := Defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Defaults()
	}
	return clamp(cfg)
}

// Snapshot returns the current settings by value.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update clamps, applies and persists new settings. The in-memory settings are
// updated even if the disk write fails, so the running monitor stays coherent
// with what the user asked for.
func (s *Store) Update(next Settings) (Settings, error) {
	next = clamp(next)

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	if err := s.persist(next); err != nil {
		return next, err
	}
	return next, nil
}

func (s *Store) persist(cfg Settings) error {
	bytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmpPath := fmt.Sprintf("%s.%d.tmp", s.path, time.Now().UnixNano())
	if err := os.WriteFile(tmpPath, bytes, 0o644); err != nil {
		return fmt.Errorf("write temp settings: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}
