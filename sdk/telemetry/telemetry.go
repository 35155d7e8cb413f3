// Package telemetry provides support for initializing the telemetry system.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Supported span exporters.
const (
	OutputNone   = "none"
	OutputStdout = "stdout"
	OutputGRPC   = "grpc"
	OutputHTTP   = "http"
)

// NoTrace is reported when no trace id is available.
const NoTrace = "--------NOTRACE--------"

type telKey int

const (
	traceIDKey telKey = iota + 1
)

// ErrUnknownOutput is returned for an unsupported Options.Output.
var ErrUnknownOutput = errors.New("unknown telemetry output")

// Options is the exportable telemetry configuration.
type Options struct {
	Output         string  `yaml:"output" env:"TELEMETRY_OUTPUT" default:"none"`
	Endpoint       string  `yaml:"endpoint" env:"TELEMETRY_ENDPOINT" default:"localhost:4317"`
	Insecure       bool    `yaml:"insecure" env:"TELEMETRY_INSECURE" default:"true"`
	ServiceName    string  `yaml:"service_name" env:"TELEMETRY_SERVICE_NAME" default:"userdir"`
	ServiceVersion string  `yaml:"service_version" env:"TELEMETRY_SERVICE_VERSION" default:"dev"`
	SampleRatio    float64 `yaml:"sample_ratio" env:"TELEMETRY_SAMPLE_RATIO" default:"1"`
}

// ValidOutput reports whether output names a supported exporter.
func ValidOutput(output string) bool {
	switch strings.ToLower(output) {
	case "", OutputNone, OutputStdout, OutputGRPC, OutputHTTP:
		return true
	}
	return false
}

// Telemetry owns the tracer provider used by the service. It never touches
// the otel global state.
type Telemetry struct {
	provider trace.TracerProvider
	shutdown func(context.Context) error
	tracer   trace.Tracer
}

type option struct {
	writer io.Writer
}

// Option tweaks construction, mostly for tests.
type Option func(*option)

// WithWriter redirects the stdout exporter.
func WithWriter(w io.Writer) Option {
	return func(o *option) {
		o.writer = w
	}
}

// NewTelemetry returns a Telemetry that records nothing but still hands out
// trace ids.
func NewTelemetry() *Telemetry {
	provider := noop.NewTracerProvider()
	return &Telemetry{
		provider: provider,
		shutdown: func(context.Context) error { return nil },
		tracer:   provider.Tracer("userdir"),
	}
}

// New builds the tracer provider for the configured output.
func New(ctx context.Context, cfg Options, opts ...Option) (*Telemetry, error) {
	o := option{writer: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	output := strings.ToLower(cfg.Output)
	if output == "" || output == OutputNone {
		return NewTelemetry(), nil
	}

	exporter, err := newExporter(ctx, output, cfg, o.writer)
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
		attribute.String("service.instance.id", uuid.NewString()),
	)

	ratio := cfg.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)

	return &Telemetry{
		provider: provider,
		shutdown: provider.Shutdown,
		tracer:   provider.Tracer(cfg.ServiceName),
	}, nil
}

func newExporter(ctx context.Context, output string, cfg Options, w io.Writer) (sdktrace.SpanExporter, error) {
	switch output {
	case OutputStdout:
		return stdouttrace.New(stdouttrace.WithWriter(w))
	case OutputGRPC:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exp, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating grpc span exporter: %w", err)
		}
		return exp, nil
	case OutputHTTP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating http span exporter: %w", err)
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOutput, output)
	}
}

// Tracer returns the named tracer from this provider.
func (t *Telemetry) Tracer(name string) trace.Tracer {
	return t.provider.Tracer(name)
}

// Shutdown flushes pending spans.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.shutdown(ctx)
}

// SetTraceID starts the request span and stores its trace id on the context.
// When the span is not sampled a random id is used instead.
func (t *Telemetry) SetTraceID(ctx context.Context) context.Context {
	ctx, _ = t.tracer.Start(ctx, "http.request", trace.WithSpanKind(trace.SpanKindServer))
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		return context.WithValue(ctx, traceIDKey, sc.TraceID().String())
	}
	return context.WithValue(ctx, traceIDKey, uuid.NewString())
}

// GetTraceID returns the id stored by SetTraceID.
func (t *Telemetry) GetTraceID(ctx context.Context) string {
	v, ok := ctx.Value(traceIDKey).(string)
	if !ok {
		return NoTrace
	}
	return v
}

// EndRequest ends the span opened by SetTraceID.
func (t *Telemetry) EndRequest(ctx context.Context, status int) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int("http.status_code", status))
	if status >= 500 {
		span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
	}
	span.End()
}

// RecordError marks the span as failed.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
