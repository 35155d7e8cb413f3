package mid

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/jrazmi/userdir/bridge/scaffolding/errs"
	"github.com/jrazmi/userdir/infrastructure/web"
	"github.com/jrazmi/userdir/sdk/metrics"
)

// Panics recovers from panics and converts them into an internal error
// response carrying the stack for the error middleware to log.
func Panics(c *metrics.Collector) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) (resp web.Encoder) {
			defer func() {
				if rec := recover(); rec != nil {
					c.RecordPanic()
					resp = errs.Newf(errs.InternalOnlyLog, "PANIC [%v] TRACE[%s]", rec, string(debug.Stack()))
				}
			}()

			return next(ctx, r)
		}
	}
}
