package main

import (
	"context"
	"net/http"
	"net/http/pprof"

	"github.com/jrazmi/userdir/app/userdir/config"
	"github.com/jrazmi/userdir/bridge/repositories/usersrepobridge"
	"github.com/jrazmi/userdir/bridge/scaffolding/errs"
	"github.com/jrazmi/userdir/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/userdir/bridge/scaffolding/mid"
	"github.com/jrazmi/userdir/infrastructure/databases/postgresdb"
	"github.com/jrazmi/userdir/infrastructure/web"
	"github.com/jrazmi/userdir/sdk/logger"
	"github.com/jrazmi/userdir/sdk/metrics"
	"github.com/jrazmi/userdir/sdk/telemetry"
)

// handlerDeps are the collaborators the HTTP surface is built from.
type handlerDeps struct {
	cfg     config.Config
	log     *logger.Logger
	tel     *telemetry.Telemetry
	metrics *metrics.Collector
	users   usersrepobridge.Repository
	db      postgresdb.Pinger
}

func webHandler(d handlerDeps) http.Handler {
	wh := web.NewWebHandler(d.cfg.Server.Handler,
		web.WithLogging(d.log),
		web.WithTelemetry(d.tel),
		web.WithGlobalMiddleware(
			mid.CORS(d.cfg.Server.Handler.CORSOrigins...),
			mid.Logger(d.log, d.tel),
			mid.Errors(d.log),
			mid.Metrics(d.metrics),
			mid.Panics(d.metrics),
		),
	)

	wh.GET("/healthz", healthz(d.db))

	usersrepobridge.AddHttpRoutes(wh.Group(d.cfg.Server.APIRoute), usersrepobridge.Config{
		Repository: d.users,
	})

	if d.metrics != nil {
		wh.HandleRaw("GET "+d.cfg.Metrics.Path, d.metrics.Handler())
	}

	if d.cfg.Server.EnableDebug {
		wh.HandleRaw("GET /debug/pprof/", http.HandlerFunc(pprof.Index))
		wh.HandleRaw("GET /debug/pprof/cmdline", http.HandlerFunc(pprof.Cmdline))
		wh.HandleRaw("GET /debug/pprof/profile", http.HandlerFunc(pprof.Profile))
		wh.HandleRaw("GET /debug/pprof/symbol", http.HandlerFunc(pprof.Symbol))
		wh.HandleRaw("GET /debug/pprof/trace", http.HandlerFunc(pprof.Trace))
	}

	return wh
}

// healthz reports whether the database answers a ping.
func healthz(db postgresdb.Pinger) web.HandlerFunc {
	return func(ctx context.Context, r *http.Request) web.Encoder {
		if err := postgresdb.StatusCheck(ctx, db); err != nil {
			return errs.Newf(errs.Unavailable, "database not ready: %s", err)
		}
		return fopbridge.NewCodeResponse("ok", "ready")
	}
}
