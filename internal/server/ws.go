package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"netwatch/internal/bandwidth"
	"netwatch/internal/models"
)

const (
	statusPushInterval = 2 * time.Second
	statusWriteTimeout = 5 * time.Second
)

var statusUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(strings.TrimSpace(r.Host))
		originHost := strings.ToLower(strings.TrimSpace(u.Host))
		return host == originHost
	},
}

type statusPayload struct {
	GeneratedAt  time.Time       `json:"generated_at"`
	Status       models.Snapshot `json:"status"`
	DownloadText string          `json:"download_text"`
	UploadText   string          `json:"upload_text"`
}

func (s *Server) handleStatusWS(w http.ResponseWriter, r *http.Request) {
	conn, err := statusUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.serveStatusConnection(conn)
}

// serveStatusConnection pushes the live snapshot until the client goes away.
func (s *Server) serveStatusConnection(conn *websocket.Conn) {
	defer conn.Close()

	if err := writeStatusPayload(conn, s.statusPayload()); err != nil {
		return
	}

	ticker := time.NewTicker(statusPushInterval)
	defer ticker.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ticker.C:
			if err := writeStatusPayload(conn, s.statusPayload()); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) statusPayload() statusPayload {
	status := s.mon.Status()
	return statusPayload{
		GeneratedAt:  time.Now().UTC(),
		Status:       status,
		DownloadText: bandwidth.FormatSpeed(status.Rate.DownloadBps),
		UploadText:   bandwidth.FormatSpeed(status.Rate.UploadBps),
	}
}

func writeStatusPayload(conn *websocket.Conn, payload statusPayload) error {
	_ = conn.SetWriteDeadline(time.Now().Add(statusWriteTimeout))
	return conn.WriteJSON(payload)
}
