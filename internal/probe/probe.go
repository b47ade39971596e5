package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"netwatch/internal/models"
)

// Prober checks internet reachability against a low-payload endpoint.
// Unreachability is data, not an error: every probe yields a sample.
type Prober struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// New creates a prober for the given generate-204 style endpoint.
func New(endpoint string, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Prober{
		endpoint: endpoint,
		timeout:  timeout,
		client:   &http.Client{},
	}
}

// Probe performs one reachability check and measures round-trip latency.
// A sample with Reachable=false is returned on timeout or any transport
// error. No retries; cadence is owned by the monitor timer.
func (p *Prober) Probe(ctx context.Context) models.ConnectivitySample {
	sample := models.ConnectivitySample{CheckedAt: time.Now().UTC()}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		sample.Error = err.Error()
		return sample
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		sample.Error = err.Error()
		return sample
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))

	if resp.StatusCode != http.StatusNoContent {
		sample.Error = http.StatusText(resp.StatusCode)
		return sample
	}

	sample.Reachable = true
	sample.LatencyMs = time.Since(start).Milliseconds()
	return sample
}
