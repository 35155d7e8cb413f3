package mid

import (
	"context"
	"net/http"
	"time"

	"github.com/jrazmi/userdir/infrastructure/web"
	"github.com/jrazmi/userdir/sdk/metrics"
)

// Metrics counts requests by method and status and observes their latency.
func Metrics(c *metrics.Collector) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			start := time.Now()

			resp := next(ctx, r)

			c.RecordRequest(r.Method, web.StatusCode(resp), time.Since(start))
			return resp
		}
	}
}
