package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "agent-portal/internal/adapters/web"
	"agent-portal/internal/app"
	"agent-portal/internal/config"
	"agent-portal/internal/db"
	"agent-portal/internal/logging"
	"agent-portal/internal/portal"
	"agent-portal/internal/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const purgeInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config", zap.Error(err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client := portal.New(cfg.APIURL,
		portal.WithSMSURL(cfg.SMSURL),
		portal.WithTimeout(cfg.HTTPTimeout),
		portal.WithLogger(logger.Named("portal")),
		portal.WithMetrics(portal.NewMetrics(reg)),
	)
	svc := app.NewAppService(client, logger.Named("app"))

	records, purgeDone := openRecords(ctx, cfg, logger)

	handler := webAdapter.NewHandler(svc, records, webAdapter.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		JWTSecret:      cfg.JWTSecret,
		SessionTTL:     cfg.SessionTTL,
		CookieSecure:   cfg.CookieSecure,
		Logger:         logger.Named("web"),
		Registerer:     reg,
		Gatherer:       reg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	logger.Info("server starting",
		zap.String("addr", srv.Addr),
		zap.String("api_url", cfg.APIURL),
		zap.Bool("postgres_sessions", cfg.DatabaseURL != ""),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server", zap.Error(err))
	}

	<-purgeDone
	logger.Info("server stopped")
}

// openRecords picks the session record store: PostgreSQL when DATABASE_URL
// is set, memory otherwise. Either way a goroutine evicts expired records
// until ctx is done; the returned channel closes once it has exited.
func openRecords(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.RecordStore, <-chan struct{}) {
	if cfg.DatabaseURL == "" {
		mem := session.NewMemoryRecords()
		return mem, mem.StartPurge(ctx, purgeInterval)
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	records := session.NewPGRecords(pool)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer pool.Close()
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := records.Purge(ctx)
				if err != nil {
					logger.Warn("purge session records", zap.Error(err))
					continue
				}
				if n > 0 {
					logger.Debug("purged session records", zap.Int64("count", n))
				}
			}
		}
	}()
	return records, done
}
