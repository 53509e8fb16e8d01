package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/app"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/bookingapi"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/clock"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/config"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/fare"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/lock"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/logging"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/metrics"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/storage/postgres"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/internal/sweeper"
	transporthttp "github.com/ahmed34535/yourtravelsearch-production-sub003/internal/transport/http"
	"github.com/ahmed34535/yourtravelsearch-production-sub003/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(".env", "../.env")
	if err != nil {
		// Logger is not built yet.
		_, _ = os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.BookingAPIToken == "" {
		logger.Warn("BOOKING_API_TOKEN not set, upstream calls will be rejected")
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	locker, closeLocker := newLocker(startupCtx, cfg, logger)
	defer closeLocker()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("holds", reg)

	clk := clock.NewSystem()
	booking := bookingapi.New(cfg.BookingAPIURL, cfg.BookingAPIToken, cfg.BookingAPITimeout,
		bookingapi.WithLogger(logger.Named("bookingapi")),
		bookingapi.WithAPIVersion(cfg.BookingAPIVersion),
	)

	opts := []app.Option{
		app.WithLocker(locker),
		app.WithLogger(logger),
		app.WithMetrics(m),
		app.WithHoldDuration(cfg.HoldDuration),
		app.WithPaymentWindow(cfg.PaymentWindow),
		app.WithUpstreamTimeout(cfg.BookingAPITimeout),
		app.WithRefundMethod(fare.RefundMethod(cfg.RefundMethod)),
	}
	holdRepo := postgres.NewHoldRepository(pool)
	holdSvc := app.NewHoldService(holdRepo, booking, clk, opts...)
	paySvc := app.NewPaymentService(holdRepo, booking, clk, opts...)
	quoteSvc := app.NewQuoteService(holdRepo, booking, clk, opts...)
	expirySvc := app.NewExpiryService(postgres.NewExpiryRepository(pool), clk, opts...)

	sweep, err := sweeper.New(expirySvc, cfg.SweepSchedule, logger.Named("sweeper"))
	if err != nil {
		logger.Fatal("configure sweeper", zap.Error(err))
	}
	sweep.Start()

	router := transporthttp.NewRouter(transporthttp.Services{
		Holds:     holdSvc,
		Payments:  paySvc,
		Quotes:    quoteSvc,
		Ancillary: quoteSvc,
		Health:    pool,
		Metrics:   reg,
		Clock:     clk,
	})
	limiter := transporthttp.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst, logger)
	handler := transporthttp.RequestLogger(
		transporthttp.CORS(cfg.CORSOrigins, limiter.Middleware(router)),
		logger.Named("http"),
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("api listening", zap.String("addr", server.Addr), zap.String("env", cfg.Env))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", zap.Error(err))
	}
	sweep.Stop(shutdownCtx)
	logger.Info("server stopped")
}

// newLocker uses Redis when REDIS_ADDR is set so several instances share
// order locks; a single instance locks in-process.
func newLocker(ctx context.Context, cfg config.Config, logger *zap.Logger) (lock.Locker, func()) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, using in-process order locks")
		return lock.NewLocal(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatal("redis ping", zap.Error(err), zap.String("addr", cfg.RedisAddr))
	}
	return lock.NewRedis(client, lock.WithTTL(cfg.LockTTL), lock.WithLogger(logger.Named("lock"))), func() { _ = client.Close() }
}
