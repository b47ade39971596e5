package models

import (
	"time"
)

// ConnState enumerates the tracker states.
type ConnState string

const (
	StateConnected    ConnState = "connected"
	StateDisconnected ConnState = "disconnected"
)

// ConnectivitySample captures the outcome of a single reachability probe.
type ConnectivitySample struct {
	Reachable bool      `json:"reachable"`
	LatencyMs int64     `json:"latency_ms,omitempty"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// BandwidthSample is a point-in-time read of cumulative interface counters.
type BandwidthSample struct {
	BytesSent uint64    `json:"bytes_sent"`
	BytesRecv uint64    `json:"bytes_recv"`
	ReadAt    time.Time `json:"read_at"`
}

// BandwidthRate is the per-direction throughput derived from two consecutive samples.
type BandwidthRate struct {
	DownloadBps float64 `json:"download_bps"`
	UploadBps   float64 `json:"upload_bps"`
}

// HistoryEntry records a single connectivity transition.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Event     ConnState `json:"event"`
	LatencyMs int64     `json:"latency_ms,omitempty"`
	// Duration of the state that just ended, in seconds.
	PrevStateSeconds float64 `json:"prev_state_seconds"`
	Details          string  `json:"details,omitempty"`
}

// ConnectionInfo describes the active network connection. Informational only.
type ConnectionInfo struct {
	Type       string `json:"type"`
	SSID       string `json:"ssid,omitempty"`
	LocalIP    string `json:"local_ip,omitempty"`
	ExternalIP string `json:"external_ip,omitempty"`
}

// Snapshot is the read-only view of current status served to presentation clients.
type Snapshot struct {
	State       ConnState      `json:"state"`
	LatencyMs   int64          `json:"latency_ms,omitempty"`
	Rate        BandwidthRate  `json:"rate"`
	Connection  ConnectionInfo `json:"connection"`
	StateSince  time.Time      `json:"state_since"`
	LastCheckAt time.Time      `json:"last_check_at,omitempty"`
	TotalSentGB float64        `json:"total_sent_gb"`
	TotalRecvGB float64        `json:"total_recv_gb"`
	Paused      bool           `json:"paused"`
}
