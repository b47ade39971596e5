package tracker

import (
	"sync"
	"time"

	"netwatch/internal/models"
)

// Tracker owns the current connectivity state. Only the monitor tick mutates
// it; presentation code reads snapshots.
type Tracker struct {
	mu         sync.RWMutex
	state      models.ConnState
	stateSince time.Time
	latencyMs  int64
	rate       models.BandwidthRate
	conn       models.ConnectionInfo
	lastCheck  time.Time
	totalSent  float64
	totalRecv  float64

	now func() time.Time
}

// New starts a tracker in the disconnected state, the worst-case assumption
// until the first successful probe.
func New() *Tracker {
	return newWithClock(time.Now)
}

func newWithClock(now func() time.Time) *Tracker {
	return &Tracker{
		state:      models.StateDisconnected,
		stateSince: now().UTC(),
		now:        now,
	}
}

// Observe feeds one probe result into the state machine. It returns a
// HistoryEntry only when the observed reachability differs from the current
// state; identical consecutive observations return nil. Latency and the
// last-check timestamp update on every call regardless.
func (t *Tracker) Observe(sample models.ConnectivitySample) *models.HistoryEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := sample.CheckedAt
	if now.IsZero() {
		now = t.now().UTC()
	}
	t.lastCheck = now

	if sample.Reachable {
		t.latencyMs = sample.LatencyMs
	} else {
		t.latencyMs = 0
	}

	observed := models.StateDisconnected
	if sample.Reachable {
		observed = models.StateConnected
	}
	if observed == t.state {
		return nil
	}

	prevDuration := now.Sub(t.stateSince)
	t.state = observed
	t.stateSince = now

	entry := &models.HistoryEntry{
		Timestamp:        now,
		Event:            observed,
		PrevStateSeconds: prevDuration.Seconds(),
	}
	if sample.Reachable {
		entry.LatencyMs = sample.LatencyMs
	}
	return entry
}

// SetRate records the most recent bandwidth rate.
func (t *Tracker) SetRate(rate models.BandwidthRate) {
	t.mu.Lock()
	t.rate = rate
	t.mu.Unlock()
}

// SetTotals records cumulative usage in gigabytes.
func (t *Tracker) SetTotals(sentGB, recvGB float64) {
	t.mu.Lock()
	t.totalSent = sentGB
	t.totalRecv = recvGB
	t.mu.Unlock()
}

// SetConnection records the active connection description.
func (t *Tracker) SetConnection(info models.ConnectionInfo) {
	t.mu.Lock()
	t.conn = info
	t.mu.Unlock()
}

// State returns the current connectivity state.
func (t *Tracker) State() models.ConnState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Snapshot returns the current status by value for presentation clients.
func (t *Tracker) Snapshot() models.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return models.Snapshot{
		State:       t.state,
		LatencyMs:   t.latencyMs,
		Rate:        t.rate,
		Connection:  t.conn,
		StateSince:  t.stateSince,
		LastCheckAt: t.lastCheck,
		TotalSentGB: t.totalSent,
		TotalRecvGB: t.totalRecv,
	}
}
