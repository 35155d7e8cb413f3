package mid

import (
	"context"
	"net/http"
	"time"

	"github.com/jrazmi/userdir/infrastructure/web"
	"github.com/jrazmi/userdir/sdk/logger"
)

// Logger writes one line when a request starts and one when it completes.
func Logger(log *logger.Logger, tel web.Telemetry) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			start := time.Now()
			traceID := ""
			if tel != nil {
				traceID = tel.GetTraceID(ctx)
			}

			path := r.URL.Path
			if r.URL.RawQuery != "" {
				path += "?" + r.URL.RawQuery
			}

			log.InfoContext(ctx, "request started",
				"trace_id", traceID,
				"method", r.Method,
				"path", path,
				"remoteaddr", r.RemoteAddr)

			resp := next(ctx, r)

			log.InfoContext(ctx, "request completed",
				"trace_id", traceID,
				"method", r.Method,
				"path", path,
				"status", web.StatusCode(resp),
				"since", time.Since(start).String())

			return resp
		}
	}
}
