package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mjelle/shotgroup/internal/adapters/http/api"
	"github.com/mjelle/shotgroup/internal/adapters/repository"
	app "github.com/mjelle/shotgroup/internal/app"
	"github.com/mjelle/shotgroup/internal/config"
	"github.com/mjelle/shotgroup/internal/domain/aggregate"
	"github.com/mjelle/shotgroup/internal/domain/classify"
	"github.com/mjelle/shotgroup/internal/domain/groupstats"
	"github.com/mjelle/shotgroup/internal/domain/insight"
	"github.com/mjelle/shotgroup/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := openHistoryStore(cfg)
	if err != nil {
		os.Stderr.WriteString("failed to open history store: " + err.Error() + "\n")
		return
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithHistoryStore(store),
		app.WithAnalyzerOptions(
			groupstats.WithOutlierMultiplier(cfg.OutlierMultiplier),
			groupstats.WithMinShots(cfg.MinShotsForStats),
		),
		app.WithConfidenceOptions(
			classify.WithConfidenceBounds(cfg.ConfidenceMediumShots, cfg.ConfidenceHighShots),
		),
		app.WithLabelerOptions(
			classify.WithTightnessBounds(cfg.TightMaxRadius, cfg.WideMinRadius),
			classify.WithBiasThreshold(cfg.BiasThreshold),
		),
		app.WithAggregatorOptions(
			aggregate.WithTrendMinPoints(cfg.TrendMinPoints),
			aggregate.WithTrendThreshold(cfg.TrendThreshold),
		),
		app.WithInsightOptions(
			insight.WithPressureThresholds(cfg.PressureWidenPct, cfg.PressureTightenPct),
			insight.WithOutlierRateAlert(cfg.OutlierRateAlert),
		),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// openHistoryStore picks the configured history backend.
func openHistoryStore(cfg *config.Config) (repository.Store, error) {
	if cfg.HistoryBackend == config.BackendSQLite {
		return repository.OpenSQLite(cfg.HistoryPath)
	}
	return repository.NewMemStore(), nil
}
