package web

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"strings"
	"sync"

	"github.com/jrazmi/userdir/sdk/logger"
)

// HandlerFunc represents a function that handles a http request and returns something to encode
type HandlerFunc func(ctx context.Context, r *http.Request) Encoder

// Middleware wraps a HandlerFunc
type Middleware func(HandlerFunc) HandlerFunc

// Telemetry stamps every request with a trace id.
type Telemetry interface {
	SetTraceID(ctx context.Context) context.Context
	GetTraceID(ctx context.Context) string
}

// requestEnder is implemented by telemetry providers that open a span in
// SetTraceID and need to close it once the response is written.
type requestEnder interface {
	EndRequest(ctx context.Context, status int)
}

type WebHandler struct {
	mux       *http.ServeMux
	log       *logger.Logger
	telemetry Telemetry

	defaultHeaders map[string]string

	globalMiddleware []Middleware

	mu        sync.Mutex
	preflight map[string]bool
}

// HandlerOptions is the exportable configuration struct
type HandlerOptions struct {
	CORSOrigins    []string          `yaml:"cors_origins" env:"CORS_ORIGINS" default:"*" separator:","`
	DefaultHeaders map[string]string `yaml:"default_headers"`
}

type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	log              *logger.Logger
	telemetry        Telemetry
	globalMiddleware []Middleware
}

// WithLogging sets the logger
func WithLogging(log *logger.Logger) HandlerOption {
	return func(o *handlerOptions) {
		o.log = log
	}
}

// WithTelemetry sets the telemetry provider
func WithTelemetry(tel Telemetry) HandlerOption {
	return func(o *handlerOptions) {
		o.telemetry = tel
	}
}

// WithGlobalMiddleware adds middleware applied to every route, outermost
// first.
func WithGlobalMiddleware(middleware ...Middleware) HandlerOption {
	return func(o *handlerOptions) {
		o.globalMiddleware = append(o.globalMiddleware, middleware...)
	}
}

// NewWebHandler creates a WebHandler from resolved options.
func NewWebHandler(cfg HandlerOptions, opts ...HandlerOption) *WebHandler {
	internalOpts := &handlerOptions{}
	for _, opt := range opts {
		opt(internalOpts)
	}

	log := internalOpts.log
	if log == nil {
		log = logger.NewDiscard()
	}

	return &WebHandler{
		mux:              http.NewServeMux(),
		log:              log,
		telemetry:        internalOpts.telemetry,
		defaultHeaders:   maps.Clone(cfg.DefaultHeaders),
		globalMiddleware: internalOpts.globalMiddleware,
		preflight:        make(map[string]bool),
	}
}

// Handle registers handler for method and path behind the global middleware
// followed by middleware. An OPTIONS route sharing the same chain is added the
// first time a path is seen so CORS preflight requests reach the middleware.
func (a *WebHandler) Handle(method, path string, handler HandlerFunc, middleware ...Middleware) {
	finalHandler := a.buildHandlerChain(handler, middleware...)
	pattern := fmt.Sprintf("%s %s", strings.ToUpper(method), path)
	a.mux.HandleFunc(pattern, a.serve(finalHandler))

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.preflight[path] {
		a.preflight[path] = true
		noContent := a.buildHandlerChain(func(context.Context, *http.Request) Encoder { return nil }, middleware...)
		a.mux.HandleFunc(http.MethodOptions+" "+path, a.serve(noContent))
	}
}

func (a *WebHandler) serve(handler HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if a.telemetry != nil {
			ctx = a.telemetry.SetTraceID(ctx)
		}
		ctx = setWriter(ctx, w)
		for k, v := range a.defaultHeaders {
			w.Header().Set(k, v)
		}

		resp := handler(ctx, r)

		if err := Respond(ctx, w, resp); err != nil {
			a.log.ErrorContext(ctx, "respond error", "error", err)
		}
		if ender, ok := a.telemetry.(requestEnder); ok {
			ender.EndRequest(ctx, StatusCode(resp))
		}
	}
}

// HandleRaw registers a plain http.Handler. Global middleware is not applied.
func (a *WebHandler) HandleRaw(pattern string, handler http.Handler) {
	a.mux.Handle(pattern, handler)
}

func (a *WebHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}
