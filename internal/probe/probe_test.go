package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProbe(t *testing.T) {
	t.Run("204 response is reachable with latency", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		sample := New(srv.URL, 2*time.Second).Probe(context.Background())
		if !sample.Reachable {
			t.Fatalf("expected reachable, got error %q", sample.Error)
		}
		if sample.LatencyMs < 0 {
			t.Errorf("expected non-negative latency, got %d", sample.LatencyMs)
		}
		if sample.CheckedAt.IsZero() {
			t.Error("expected CheckedAt to be set")
		}
	})

	t.Run("unexpected status is unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		sample := New(srv.URL, 2*time.Second).Probe(context.Background())
		if sample.Reachable {
			t.Fatal("expected unreachable on 500")
		}
		if sample.Error == "" {
			t.Error("expected error text on unexpected status")
		}
	})

	t.Run("connection refused is unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		sample := New(url, time.Second).Probe(context.Background())
		if sample.Reachable {
			t.Fatal("expected unreachable against closed server")
		}
		if sample.LatencyMs != 0 {
			t.Errorf("expected zero latency when unreachable, got %d", sample.LatencyMs)
		}
	})

	t.Run("slow endpoint times out", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer func() {
			close(release)
			srv.Close()
		}()

		start := time.Now()
		sample := New(srv.URL, 50*time.Millisecond).Probe(context.Background())
		if sample.Reachable {
			t.Fatal("expected unreachable on timeout")
		}
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Errorf("probe took too long to give up: %v", elapsed)
		}
	})
}
