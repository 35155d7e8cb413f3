package web

import "slices"

// buildHandlerChain wraps handler so that global middleware runs first, in
// registration order, followed by the route's own middleware.
func (wh *WebHandler) buildHandlerChain(handler HandlerFunc, middleware ...Middleware) HandlerFunc {
	allMiddleware := slices.Concat(wh.globalMiddleware, middleware)

	final := handler
	for i := len(allMiddleware) - 1; i >= 0; i-- {
		final = allMiddleware[i](final)
	}

	return final
}
