package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"netwatch/internal/bandwidth"
	"netwatch/internal/history"
	"netwatch/internal/models"
	"netwatch/internal/netinfo"
	"netwatch/internal/notify"
	"netwatch/internal/settings"
	"netwatch/internal/tracker"
)

// Prober yields one reachability sample per call.
type Prober interface {
	Probe(ctx context.Context) models.ConnectivitySample
}

// InfoResolver describes the active connection. Looked up on reconnect only.
type InfoResolver interface {
	Lookup(ctx context.Context) models.ConnectionInfo
}

// Monitor drives the periodic probe/sample/update cycle. One tick runs to
// completion before the next is armed, so ticks never overlap.
type Monitor struct {
	prober   Prober
	sampler  bandwidth.Sampler
	tracker  *tracker.Tracker
	hist     *history.Log
	notifier notify.Notifier
	store    *settings.Store
	resolver InfoResolver
	log      *zap.SugaredLogger

	// meter is only touched under tickMu; resume requests a reset through
	// the resetMeter flag instead of reaching into it.
	meter bandwidth.Meter

	tickMu sync.Mutex // serialises RunOnce against the timer loop

	mu           sync.Mutex
	paused       bool
	writeFailed  bool
	resetMeter   bool
	connectCount uint64
	dropCount    uint64

	stopCh chan struct{}
	doneCh chan struct{}
}

// Options carries the monitor's collaborators.
type Options struct {
	Prober   Prober
	Sampler  bandwidth.Sampler
	Tracker  *tracker.Tracker
	History  *history.Log
	Notifier notify.Notifier
	Settings *settings.Store
	Resolver InfoResolver
	Log      *zap.SugaredLogger
}

// New assembles a monitor from its collaborators.
func New(opts Options) *Monitor {
	if opts.Notifier == nil {
		opts.Notifier = notify.Noop{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop().Sugar()
	}
	return &Monitor{
		prober:   opts.Prober,
		sampler:  opts.Sampler,
		tracker:  opts.Tracker,
		hist:     opts.History,
		notifier: opts.Notifier,
		store:    opts.Settings,
		resolver: opts.Resolver,
		log:      opts.Log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the monitoring loop in a goroutine.
func (m *Monitor) Start() {
	go m.run()
}

// Stop requests loop termination and waits for any in-flight tick.
func (m *Monitor) Stop() {
	select {
	case <-m.doneCh:
		return
	default:
	}
	close(m.stopCh)
	<-m.doneCh
}

// Pause skips future ticks without resetting the tracker.
func (m *Monitor) Pause() {
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
	m.log.Infow("monitoring paused")
}

// Resume re-enables ticks and runs one immediately so the snapshot is never
// stale after un-pausing. The bandwidth baseline from before the pause is
// dropped so the first rate is not computed across the gap; the reset is
// handed to the tick via a flag because the meter belongs to the tick.
func (m *Monitor) Resume() {
	m.mu.Lock()
	wasPaused := m.paused
	m.paused = false
	if wasPaused {
		m.resetMeter = true
	}
	m.mu.Unlock()

	if wasPaused {
		m.log.Infow("monitoring resumed")
		m.RunOnce(context.Background())
	}
}

// Paused reports whether ticks are currently skipped.
func (m *Monitor) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Status returns the tracker snapshot annotated with the pause flag.
func (m *Monitor) Status() models.Snapshot {
	snap := m.tracker.Snapshot()
	snap.Paused = m.Paused()
	return snap
}

func (m *Monitor) run() {
	defer close(m.doneCh)

	m.RunOnce(context.Background())

	timer := time.NewTimer(m.store.Snapshot().Interval())
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			if !m.Paused() {
				m.RunOnce(context.Background())
			}
			// Re-arm after the tick so interval changes apply from the
			// next cycle and ticks never overlap.
			timer.Reset(m.store.Snapshot().Interval())
		case <-m.stopCh:
			return
		}
	}
}

// RunOnce executes a single probe/sample/update cycle. It is also the
// refresh-now action, independent of the timer.
func (m *Monitor) RunOnce(ctx context.Context) models.ConnectivitySample {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()

	m.mu.Lock()
	resetMeter := m.resetMeter
	m.resetMeter = false
	m.mu.Unlock()
	if resetMeter {
		m.meter.Reset()
	}

	cfg := m.store.Snapshot()

	sample := m.prober.Probe(ctx)
	entry := m.tracker.Observe(sample)

	if cfg.BandwidthEnabled {
		m.sampleBandwidth()
	} else {
		m.meter.Reset()
		m.tracker.SetRate(models.BandwidthRate{})
	}

	if entry != nil {
		m.handleTransition(ctx, cfg, entry)
	}
	return sample
}

func (m *Monitor) sampleBandwidth() {
	bs, err := m.sampler.Sample()
	if err != nil {
		m.log.Warnw("bandwidth sample failed", "error", err)
		return
	}
	m.tracker.SetRate(m.meter.Observe(bs))
	sentGB, recvGB := bandwidth.TotalGB(bs)
	m.tracker.SetTotals(sentGB, recvGB)
}

// TransitionCounts returns the monotonic number of connect and disconnect
// transitions observed since the process started. Unlike the history log,
// these never decrease under capping or a history clear, so they are safe to
// export as counters.
func (m *Monitor) TransitionCounts() (connected, disconnected uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectCount, m.dropCount
}

func (m *Monitor) handleTransition(ctx context.Context, cfg settings.Settings, entry *models.HistoryEntry) {
	m.mu.Lock()
	switch entry.Event {
	case models.StateConnected:
		m.connectCount++
	case models.StateDisconnected:
		m.dropCount++
	}
	m.mu.Unlock()

	switch entry.Event {
	case models.StateConnected:
		info := models.ConnectionInfo{Type: "Unknown"}
		if m.resolver != nil {
			info = m.resolver.Lookup(ctx)
		}
		m.tracker.SetConnection(info)
		entry.Details = netinfo.Describe(info)
	case models.StateDisconnected:
		m.tracker.SetConnection(models.ConnectionInfo{})
		entry.Details = "Connection lost"
	}

	m.log.Infow("connectivity changed",
		"event", entry.Event,
		"latency_ms", entry.LatencyMs,
		"previous_state_seconds", entry.PrevStateSeconds,
	)

	m.appendHistory(*entry)

	if cfg.NotificationsEnabled {
		title, body := notificationText(entry)
		m.notifier.Notify(title, body)
	}
}

// appendHistory persists the entry. A write failure is logged and surfaced
// with at most one notification per failure streak; it never escapes the tick.
func (m *Monitor) appendHistory(entry models.HistoryEntry) {
	err := m.hist.Append(entry)

	m.mu.Lock()
	firstFailure := err != nil && !m.writeFailed
	m.writeFailed = err != nil
	m.mu.Unlock()

	if err == nil {
		return
	}
	m.log.Errorw("history append failed", "error", err)
	if firstFailure {
		m.notifier.Notify("NetWatch", "Failed to write history log: "+err.Error())
	}
}

func notificationText(entry *models.HistoryEntry) (title, body string) {
	if entry.Event == models.StateConnected {
		title = "Internet Connected"
		if entry.LatencyMs > 0 {
			body = fmt.Sprintf("Latency %dms (%s)", entry.LatencyMs, entry.Details)
		} else {
			body = entry.Details
		}
		return title, body
	}
	return "Internet Disconnected", "No internet connection. Check your network settings."
}
