package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"netwatch/internal/history"
	"netwatch/internal/monitor"
	"netwatch/internal/settings"
)

// Server exposes the monitor's state over HTTP and WebSocket.
type Server struct {
	httpServer   *http.Server
	mon          *monitor.Monitor
	hist         *history.Log
	store        *settings.Store
	log          *zap.SugaredLogger
	historyLimit int
}

// New creates a configured HTTP server for the monitor.
func New(addr string, mon *monitor.Monitor, hist *history.Log, store *settings.Store, log *zap.SugaredLogger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		httpServer:   &http.Server{Addr: addr, Handler: mux},
		mon:          mon,
		hist:         hist,
		store:        store,
		log:          log,
		historyLimit: 200,
	}
	s.registerRoutes(mux)
	return s
}

// Run blocks and serves HTTP traffic.
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/api/refresh", s.handleRefresh)
	mux.HandleFunc("/api/pause", s.handlePause)
	mux.HandleFunc("/api/resume", s.handleResume)
	mux.HandleFunc("/ws", s.handleStatusWS)
	mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.mon.Status())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit := parseLimit(r, s.historyLimit)
		writeJSON(w, http.StatusOK, s.hist.Recent(limit))
	case http.MethodDelete:
		if err := s.hist.Clear(); err != nil {
			s.log.Errorw("history clear failed", "error", err)
			http.Error(w, "could not clear history", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.hist.Stats())
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.Snapshot())
	case http.MethodPut:
		// Decode over the current settings so fields omitted from the
		// payload keep their values instead of collapsing to zero.
		next := s.store.Snapshot()
		if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
			http.Error(w, "invalid settings payload", http.StatusBadRequest)
			return
		}
		applied, err := s.store.Update(next)
		if err != nil {
			s.log.Errorw("settings save failed", "error", err)
			// The in-memory settings were applied; report them with the
			// persistence failure flagged.
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"settings": applied,
				"error":    "settings could not be persisted",
			})
			return
		}
		writeJSON(w, http.StatusOK, applied)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mon.RunOnce(r.Context())
	writeJSON(w, http.StatusOK, s.mon.Status())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mon.Pause()
	writeJSON(w, http.StatusOK, s.mon.Status())
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mon.Resume()
	writeJSON(w, http.StatusOK, s.mon.Status())
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	if value > fallback {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
