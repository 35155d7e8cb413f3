package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jrazmi/userdir/app/userdir/config"
	"github.com/jrazmi/userdir/core/repositories/usersrepo"
	"github.com/jrazmi/userdir/core/repositories/usersrepo/stores/userspgxstore"
	"github.com/jrazmi/userdir/core/repositories/usersrepo/stores/usersredisstore"
	"github.com/jrazmi/userdir/infrastructure/databases/postgresdb"
	"github.com/jrazmi/userdir/infrastructure/web"
	"github.com/jrazmi/userdir/sdk/logger"
	"github.com/jrazmi/userdir/sdk/metrics"
	"github.com/jrazmi/userdir/sdk/telemetry"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.New(cfg.Log)

		if err := serve(cmd.Context(), log, cfg); err != nil {
			log.ErrorContext(cmd.Context(), "startup", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, log *logger.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.InfoContext(ctx, "startup", "version", Version, "environment", cfg.Service.Environment, "GOMAXPROCS", runtime.GOMAXPROCS(0))

	// :*: TELEMETRY :*:
	tel, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("configuring telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(sctx); err != nil {
			log.ErrorContext(sctx, "shutdown", "status", "flushing spans", "error", err)
		}
	}()

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Metrics)
	}

	// :*: DATABASES :*:
	pool, err := postgresdb.New(cfg.Database, postgresdb.WithLogger(log.Logger))
	if err != nil {
		return fmt.Errorf("configuring postgres support: %w", err)
	}
	defer func() {
		log.InfoContext(ctx, "shutdown", "status", "closing database connection")
		pool.Close()
	}()

	// :*: REPOSITORIES :*:
	var storer usersrepo.Storer = userspgxstore.NewStore(log, pool,
		userspgxstore.WithQueryTimeout(cfg.Database.QueryTimeout),
		userspgxstore.WithTracer(tel.Tracer("userspgxstore")),
		userspgxstore.WithMetrics(collector),
	)

	if cfg.Cache.Enabled {
		client := usersredisstore.NewClient(cfg.Cache)
		defer client.Close()
		storer = usersredisstore.NewStore(log, client, storer,
			usersredisstore.WithTTL(cfg.Cache.TTL),
			usersredisstore.WithPrefix(cfg.Cache.Prefix),
			usersredisstore.WithTombstoneTTL(cfg.Cache.TombstoneTTL),
			usersredisstore.WithTimeout(cfg.Database.QueryTimeout),
			usersredisstore.WithMetrics(collector),
		)
		log.InfoContext(ctx, "startup", "status", "user cache enabled", "addr", cfg.Cache.Addr)
	}

	users := usersrepo.NewRepository(log, storer)

	// :*: CONFIG RELOAD :*:
	if cfgFile != "" {
		watcher := config.NewWatcher(cfgFile, log, func(next config.Config) {
			log.SetLevel(next.Log.Level)
		})
		go func() {
			if err := watcher.Run(ctx); err != nil {
				log.ErrorContext(ctx, "config watcher", "error", err)
			}
		}()
	}

	// :*: SERVER :*:
	server := web.NewServer(cfg.Server,
		web.WithHandler(webHandler(handlerDeps{
			cfg:     cfg,
			log:     log,
			tel:     tel,
			metrics: collector,
			users:   users,
			db:      pool,
		})),
		web.WithErrorLog(logger.NewStdLogger(log, slog.LevelError)),
	)

	serverErrors := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "startup", "status", "api router started", "host", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		log.InfoContext(ctx, "shutdown", "status", "shutdown started")
		defer log.InfoContext(ctx, "shutdown", "status", "shutdown complete")

		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(sctx); err != nil {
			server.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
