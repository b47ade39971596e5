package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"netwatch/internal/bandwidth"
	"netwatch/internal/config"
	"netwatch/internal/history"
	"netwatch/internal/logger"
	"netwatch/internal/metrics"
	"netwatch/internal/monitor"
	"netwatch/internal/netinfo"
	"netwatch/internal/notify"
	"netwatch/internal/probe"
	"netwatch/internal/server"
	"netwatch/internal/settings"
	"netwatch/internal/tracker"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to daemon configuration file (YAML)")
		addr       = flag.String("addr", "", "address for the API server (overrides config)")
		noNotify   = flag.Bool("no-notify", false, "disable desktop notifications entirely")
		dev        = flag.Bool("dev", false, "human-readable log output")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}

	zlog := logger.New(cfg.LogLevel, *dev)
	defer func() { _ = zlog.Sync() }()

	if err := os.MkdirAll(cfg.DataDirectory, 0o755); err != nil {
		log.Fatalf("create data directory %s: %v", cfg.DataDirectory, err)
	}

	store, err := settings.NewStore(filepath.Join(cfg.DataDirectory, "settings.json"))
	if err != nil {
		log.Fatalf("initialise settings: %v", err)
	}
	hist, err := history.NewLog(filepath.Join(cfg.DataDirectory, "history.json"), cfg.HistoryMaxEntries)
	if err != nil {
		log.Fatalf("initialise history: %v", err)
	}

	var notifier notify.Notifier = notify.NewDesktop(zlog)
	if *noNotify {
		notifier = notify.Noop{}
	}

	mon := monitor.New(monitor.Options{
		Prober:   probe.New(cfg.ProbeEndpoint, time.Duration(cfg.ProbeTimeoutSeconds)*time.Second),
		Sampler:  bandwidth.SystemSampler{},
		Tracker:  tracker.New(),
		History:  hist,
		Notifier: notifier,
		Settings: store,
		Resolver: netinfo.NewResolver(cfg.ExternalIPEndpoint),
		Log:      zlog,
	})
	mon.Start()
	defer mon.Stop()

	prometheus.MustRegister(metrics.NewCollector(mon))

	srv := server.New(cfg.ListenAddr, mon, hist, store, zlog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zlog.Errorw("server shutdown", "error", err)
		}
	}()

	zlog.Infow("netwatch listening",
		"addr", cfg.ListenAddr,
		"interval_seconds", store.Snapshot().CheckIntervalSeconds,
		"probe_endpoint", cfg.ProbeEndpoint,
	)
	if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
