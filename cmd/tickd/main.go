// Command tickd runs a standalone step-loop daemon: a dispatcher driven
// at a fixed rate, with persisted gametime, optional cron entries, and
// a Prometheus metrics endpoint. It doubles as the reference wiring for
// embedding the dispatcher in a larger server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/voxelforge/tick"
	"github.com/voxelforge/tick/after"
	"github.com/voxelforge/tick/cron"
	"github.com/voxelforge/tick/gametime"
	"github.com/voxelforge/tick/loop"
	"github.com/voxelforge/tick/middleware"
	"github.com/voxelforge/tick/observability"
	bunstore "github.com/voxelforge/tick/store/bun"
	"github.com/voxelforge/tick/store/memory"
	redisstore "github.com/voxelforge/tick/store/redis"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "dotenv: %v\n", err)
	}

	flags := pflag.NewFlagSet("tickd", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to YAML config file")
	metricsAddr := flags.String("metrics-addr", "", "metrics listen address (overrides config)")
	storeBackend := flags.String("store", "", "gametime store backend: memory, redis, or postgres (overrides config)")
	logLevel := flags.String("log-level", "", "log level: debug, info, warn, or error (overrides config)")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "parse flags: %v\n", err)
		return 2
	}

	cfg, err := loadDaemonConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *storeBackend != "" {
		cfg.Store.Backend = *storeBackend
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.slogLevel(),
	}))

	ctx := context.Background()

	store, cleanup, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("store setup failed", slog.String("error", err.Error()))
		return 1
	}
	defer cleanup()

	initial, err := loop.LoadInitialGametime(ctx, store)
	if err != nil {
		logger.Error("gametime load failed", slog.String("error", err.Error()))
		return 1
	}
	logger.Info("world loaded",
		slog.String("store", cfg.Store.Backend),
		slog.Float64("gametime", initial),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	d := tick.New(
		tick.WithLogger(logger),
		tick.WithInitialGametime(initial),
		tick.WithExtension(observability.NewMetricsExtensionWithRegisterer(registry)),
		tick.WithMiddleware(middleware.Logging(logger)),
	)

	crons := cron.NewScheduler(func(fn after.Callback) after.Handle {
		return d.After(0, fn)
	}, d.Hooks(), logger)

	registerHeartbeat(d, crons, logger)

	metricsSrv := &http.Server{
		Addr: cfg.MetricsAddr,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}),
	}
	go func() {
		logger.Info("metrics listening", slog.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", slog.String("error", err.Error()))
		}
	}()

	l := loop.New(d,
		loop.WithConfig(cfg.loopConfig()),
		loop.WithStore(store),
		loop.WithCron(crons),
		loop.WithLogger(logger),
	)
	if err := l.Start(ctx); err != nil {
		logger.Error("loop start failed", slog.String("error", err.Error()))
		return 1
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	logger.Info("shutting down", slog.String("signal", s.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := l.Stop(shutdownCtx); err != nil {
		logger.Error("loop stop failed", slog.String("error", err.Error()))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", slog.String("error", err.Error()))
	}

	logger.Info("shutdown complete", slog.Float64("gametime", d.Gametime()))
	return 0
}

// openStore builds the configured gametime store. The returned cleanup
// closes whatever connection the backend owns.
func openStore(ctx context.Context, cfg storeConfig, logger *slog.Logger) (gametime.Store, func(), error) {
	switch cfg.Backend {
	case "", "memory":
		return memory.New(), func() {}, nil

	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		store := redisstore.New(client,
			redisstore.WithLogger(logger),
			redisstore.WithKeyPrefix(cfg.RedisKeyPrefix),
		)
		cleanup := func() {
			if err := client.Close(); err != nil {
				logger.Error("redis close failed", slog.String("error", err.Error()))
			}
		}
		return store, cleanup, nil

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, nil, errors.New("postgres backend requires a DSN (store.postgres_dsn or TICKD_POSTGRES_DSN)")
		}
		sqldb, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		db := bun.NewDB(sqldb, pgdialect.New())
		store := bunstore.New(db,
			bunstore.WithLogger(logger),
			bunstore.WithWorld(cfg.World),
		)
		if err := store.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		cleanup := func() {
			if err := db.Close(); err != nil {
				logger.Error("postgres close failed", slog.String("error", err.Error()))
			}
		}
		return store, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// registerHeartbeat wires a minimal workload so a bare daemon still
// produces observable activity: a gametime log line once per minute of
// wall time, and a slow in-world pulse that reschedules itself.
func registerHeartbeat(d *tick.Dispatcher, crons *cron.Scheduler, logger *slog.Logger) {
	if _, err := crons.Register("heartbeat", "@every 1m", func([]after.Arg) {
		logger.Info("heartbeat",
			slog.Float64("gametime", d.Gametime()),
			slog.Int("pending_jobs", d.Jobs().Len()),
			slog.Int("globalsteps", d.Steps().Len()),
		)
	}); err != nil {
		logger.Error("heartbeat cron registration failed", slog.String("error", err.Error()))
	}

	var pulse after.Callback
	pulse = func([]after.Arg) {
		logger.Debug("world pulse", slog.Float64("gametime", d.Gametime()))
		d.After(300, pulse)
	}
	d.After(300, pulse)

	var lastLogged time.Time
	d.RegisterStep("slow-step-watch", func(dtime float64) {
		if dtime >= 0.4 && time.Since(lastLogged) > 10*time.Second {
			lastLogged = time.Now()
			logger.Warn("slow step", slog.Float64("dtime", dtime))
		}
	})
}
