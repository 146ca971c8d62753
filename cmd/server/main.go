package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/utakatalp/season-predictor/internal/api"
	"github.com/utakatalp/season-predictor/internal/config"
	"github.com/utakatalp/season-predictor/internal/store"
	"github.com/utakatalp/season-predictor/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		telemetry.Errorf("failed to connect to DB: %v", err)
		os.Exit(1)
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		telemetry.Errorf("migrate: %v", err)
		os.Exit(1)
	}

	tuning, err := config.LoadTuning(cfg.TuningPath)
	if err != nil {
		telemetry.Errorf("load tuning: %v", err)
		os.Exit(1)
	}
	if cfg.SimTrials > 0 && cfg.TuningPath == "" {
		tuning.Trials = cfg.SimTrials
	}

	srv, err := api.NewServer(st, tuning, api.Options{
		Workers:       cfg.SimWorkers,
		SimRatePerMin: cfg.SimRatePerMin,
	})
	if err != nil {
		telemetry.Errorf("build server: %v", err)
		os.Exit(1)
	}

	if cfg.TuningPath != "" {
		go func() {
			err := config.WatchTuning(ctx, cfg.TuningPath, func(t config.Tuning) {
				if err := srv.SetTuning(t); err != nil {
					telemetry.Warnf("tuning: %v", err)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				telemetry.Warnf("tuning watcher stopped: %v", err)
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	telemetry.Infof("listening on %s", cfg.HTTPAddr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		telemetry.Errorf("http server: %v", err)
		os.Exit(1)
	}
}
