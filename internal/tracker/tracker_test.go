package tracker

import (
	"testing"
	"time"

	"netwatch/internal/models"
)

func reachableAt(t time.Time, latency int64) models.ConnectivitySample {
	return models.ConnectivitySample{Reachable: true, LatencyMs: latency, CheckedAt: t}
}

func unreachableAt(t time.Time) models.ConnectivitySample {
	return models.ConnectivitySample{Reachable: false, CheckedAt: t}
}

func TestObserve(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return start }

	t.Run("starts disconnected", func(t *testing.T) {
		tr := newWithClock(clock)
		if tr.State() != models.StateDisconnected {
			t.Fatalf("expected initial state disconnected, got %s", tr.State())
		}
	})

	t.Run("first successful probe transitions to connected", func(t *testing.T) {
		tr := newWithClock(clock)
		entry := tr.Observe(reachableAt(start.Add(5*time.Second), 20))
		if entry == nil {
			t.Fatal("expected a transition entry")
		}
		if entry.Event != models.StateConnected {
			t.Errorf("expected connected event, got %s", entry.Event)
		}
		if entry.LatencyMs != 20 {
			t.Errorf("expected latency 20, got %d", entry.LatencyMs)
		}
		if entry.PrevStateSeconds != 5 {
			t.Errorf("expected 5s in previous state, got %f", entry.PrevStateSeconds)
		}
		if tr.State() != models.StateConnected {
			t.Errorf("expected state connected, got %s", tr.State())
		}
	})

	t.Run("repeated identical states emit nothing", func(t *testing.T) {
		tr := newWithClock(clock)
		tr.Observe(reachableAt(start, 20))

		for i := 1; i <= 5; i++ {
			ts := start.Add(time.Duration(i) * 5 * time.Second)
			if entry := tr.Observe(reachableAt(ts, int64(20+i))); entry != nil {
				t.Fatalf("tick %d: expected no entry, got %+v", i, entry)
			}
		}
		snap := tr.Snapshot()
		if snap.LatencyMs != 25 {
			t.Errorf("expected latency updated to 25 on last tick, got %d", snap.LatencyMs)
		}
	})

	t.Run("loss of reachability transitions with connected duration", func(t *testing.T) {
		tr := newWithClock(clock)
		tr.Observe(reachableAt(start, 20))

		entry := tr.Observe(unreachableAt(start.Add(90 * time.Second)))
		if entry == nil {
			t.Fatal("expected a disconnect entry")
		}
		if entry.Event != models.StateDisconnected {
			t.Errorf("expected disconnected event, got %s", entry.Event)
		}
		if entry.PrevStateSeconds != 90 {
			t.Errorf("expected 90s connected, got %f", entry.PrevStateSeconds)
		}
		if snap := tr.Snapshot(); snap.LatencyMs != 0 {
			t.Errorf("expected latency cleared when disconnected, got %d", snap.LatencyMs)
		}
	})

	t.Run("entry emitted iff reachability flips", func(t *testing.T) {
		tr := newWithClock(clock)
		seq := []bool{true, true, false, false, false, true, false, true, true}

		prev := false // tracker starts disconnected
		for i, reachable := range seq {
			ts := start.Add(time.Duration(i) * time.Second)
			var sample models.ConnectivitySample
			if reachable {
				sample = reachableAt(ts, 10)
			} else {
				sample = unreachableAt(ts)
			}

			entry := tr.Observe(sample)
			if wantEntry := reachable != prev; (entry != nil) != wantEntry {
				t.Fatalf("tick %d (reachable=%v): entry=%v, want entry=%v", i, reachable, entry != nil, wantEntry)
			}
			prev = reachable
		}
	})
}

func TestSnapshot(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tr := newWithClock(func() time.Time { return start })

	tr.Observe(reachableAt(start.Add(time.Second), 42))
	tr.SetRate(models.BandwidthRate{DownloadBps: 2048, UploadBps: 512})
	tr.SetTotals(1.5, 12.25)
	tr.SetConnection(models.ConnectionInfo{Type: "WiFi", SSID: "HomeNetwork"})

	snap := tr.Snapshot()
	if snap.State != models.StateConnected {
		t.Errorf("expected connected, got %s", snap.State)
	}
	if snap.LatencyMs != 42 {
		t.Errorf("expected latency 42, got %d", snap.LatencyMs)
	}
	if snap.Rate.DownloadBps != 2048 || snap.Rate.UploadBps != 512 {
		t.Errorf("unexpected rate %+v", snap.Rate)
	}
	if snap.Connection.SSID != "HomeNetwork" {
		t.Errorf("unexpected connection %+v", snap.Connection)
	}
	if snap.TotalSentGB != 1.5 || snap.TotalRecvGB != 12.25 {
		t.Errorf("unexpected totals %+v", snap)
	}
	if !snap.StateSince.Equal(start.Add(time.Second)) {
		t.Errorf("expected state since %v, got %v", start.Add(time.Second), snap.StateSince)
	}
}
