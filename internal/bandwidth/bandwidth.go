package bandwidth

import (
	"fmt"
	"time"

	gnet "github.com/shirou/gopsutil/v3/net"

	"netwatch/internal/models"
)

// Sampler reads cumulative byte counters for the machine's interfaces.
type Sampler interface {
	Sample() (models.BandwidthSample, error)
}

// SystemSampler reads counters from the OS, aggregated across interfaces.
type SystemSampler struct{}

// Sample returns the current cumulative sent/received byte totals.
func (SystemSampler) Sample() (models.BandwidthSample, error) {
	counters, err := gnet.IOCounters(false)
	if err != nil {
		return models.BandwidthSample{}, fmt.Errorf("read io counters: %w", err)
	}
	if len(counters) == 0 {
		return models.BandwidthSample{}, fmt.Errorf("no interface counters available")
	}
	return models.BandwidthSample{
		BytesSent: counters[0].BytesSent,
		BytesRecv: counters[0].BytesRecv,
		ReadAt:    time.Now().UTC(),
	}, nil
}

// Rate derives per-direction throughput from two consecutive samples. A
// decreasing counter (interface reset, roaming) is a discontinuity and yields
// zero for that direction rather than a negative rate. Non-positive elapsed
// time yields a zero rate.
func Rate(prev, cur models.BandwidthSample) models.BandwidthRate {
	elapsed := cur.ReadAt.Sub(prev.ReadAt).Seconds()
	if elapsed <= 0 {
		return models.BandwidthRate{}
	}

	var rate models.BandwidthRate
	if cur.BytesRecv >= prev.BytesRecv {
		rate.DownloadBps = float64(cur.BytesRecv-prev.BytesRecv) / elapsed
	}
	if cur.BytesSent >= prev.BytesSent {
		rate.UploadBps = float64(cur.BytesSent-prev.BytesSent) / elapsed
	}
	return rate
}

// Meter keeps the previous sample so each tick produces a rate. The first
// tick stores the sample and reports zero.
type Meter struct {
	prev    models.BandwidthSample
	hasPrev bool
}

// Observe folds a new sample into the meter and returns the derived rate.
func (m *Meter) Observe(cur models.BandwidthSample) models.BandwidthRate {
	if !m.hasPrev {
		m.prev = cur
		m.hasPrev = true
		return models.BandwidthRate{}
	}
	rate := Rate(m.prev, cur)
	m.prev = cur
	return rate
}

// Reset drops the stored sample, forcing the next observation to report zero.
func (m *Meter) Reset() {
	m.hasPrev = false
}

// TotalGB converts a cumulative sample to gigabytes sent and received.
func TotalGB(s models.BandwidthSample) (sentGB, recvGB float64) {
	const gb = 1 << 30
	return float64(s.BytesSent) / gb, float64(s.BytesRecv) / gb
}

// FormatSpeed renders a byte-per-second rate for display.
func FormatSpeed(bps float64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case bps >= mb:
		return fmt.Sprintf("%.2f MB/s", bps/mb)
	case bps >= kb:
		return fmt.Sprintf("%.1f KB/s", bps/kb)
	default:
		return fmt.Sprintf("%.0f B/s", bps)
	}
}
