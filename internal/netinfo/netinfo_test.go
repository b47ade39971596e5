package netinfo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"netwatch/internal/models"
)

func TestDescribe(t *testing.T) {
	cases := []struct {
		info models.ConnectionInfo
		want string
	}{
		{models.ConnectionInfo{Type: "WiFi", SSID: "HomeNetwork"}, "WiFi - HomeNetwork"},
		{models.ConnectionInfo{Type: "Ethernet"}, "Ethernet"},
		{models.ConnectionInfo{Type: "Unknown"}, "Unknown"},
	}
	for _, tc := range cases {
		if got := Describe(tc.info); got != tc.want {
			t.Errorf("Describe(%+v) = %q, want %q", tc.info, got, tc.want)
		}
	}
}

func TestExternalIP(t *testing.T) {
	t.Run("uses the endpoint response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("203.0.113.7\n"))
		}))
		defer srv.Close()

		r := NewResolver(srv.URL)
		if got := r.externalIP(context.Background()); got != "203.0.113.7" {
			t.Errorf("expected 203.0.113.7, got %q", got)
		}
	})

	t.Run("non-ip body yields empty", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>blocked</html>"))
		}))
		defer srv.Close()

		if got := NewResolver(srv.URL).externalIP(context.Background()); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})

	t.Run("error status yields empty", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		if got := NewResolver(srv.URL).externalIP(context.Background()); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})

	t.Run("unreachable endpoint yields empty", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		if got := NewResolver(url).externalIP(context.Background()); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}
