package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/threads-service/internal/config"
	"github.com/pribylovaa/threads-service/internal/metrics"
	"github.com/pribylovaa/threads-service/internal/models"
	"github.com/pribylovaa/threads-service/internal/seed"
	"github.com/pribylovaa/threads-service/internal/service"
	"github.com/pribylovaa/threads-service/internal/storage/memory"
	threadshttp "github.com/pribylovaa/threads-service/internal/transport/http"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting threads-service", "env", cfg.Env, "strict_targets", cfg.Debug.StrictTargets)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	store := memory.New()
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := service.New(store, *cfg, service.WithMetrics(metrics.New(reg)))
	log.Info("service_initialized")

	if err := loadSeed(rootCtx, svc, cfg.Seed.Path); err != nil {
		log.Error("seed_failed", slog.String("path", cfg.Seed.Path), slog.String("err", err.Error()))
		os.Exit(1)
	}

	if subjects, err := store.Subjects(rootCtx); err == nil {
		log.Info("store_ready", slog.Int("subjects", len(subjects)))
	}

	// Служебный HTTP: readiness/liveness/metrics.
	var ready atomic.Bool

	opsSrv := &http.Server{
		Addr:              cfg.Metrics.Addr(),
		Handler:           threadshttp.NewOpsHandler(&ready, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("ops_listen_start", "addr", opsSrv.Addr)
		if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("ops_serve_failed", slog.String("err", err.Error()))
		}
	}()

	apiHandler := threadshttp.NewRouter(svc, threadshttp.Options{
		Logger:  log,
		Timeout: cfg.Timeouts.Service,
		Guest: models.Author{
			ID:        cfg.Guest.ID,
			Name:      cfg.Guest.Name,
			AvatarURL: cfg.Guest.AvatarURL,
		},
	})

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           apiHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	ready.Store(true)
	log.Info("service_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	_ = opsSrv.Shutdown(shutdownCtx)

	log.Info("service_stopped")
}

// loadSeed засевает хранилище деревьями из YAML; пустой путь: старт без данных.
func loadSeed(ctx context.Context, svc *service.Service, path string) error {
	if path == "" {
		return nil
	}

	threads, err := seed.LoadFile(path, time.Now())
	if err != nil {
		return err
	}

	for _, th := range threads {
		if err := svc.Seed(ctx, th.SubjectID, th.Forest); err != nil {
			return fmt.Errorf("seed %q: %w", th.SubjectID, err)
		}
	}

	return nil
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
