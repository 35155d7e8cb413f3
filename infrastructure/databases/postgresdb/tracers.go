package postgresdb

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// https://github.com/jackc/pgx/discussions/1677#discussioncomment-8815982
type MultiQueryTracer struct {
	Tracers []pgx.QueryTracer
}

func NewMultiQueryTracer(tracers ...pgx.QueryTracer) *MultiQueryTracer {
	return &MultiQueryTracer{Tracers: tracers}
}

func (m *MultiQueryTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, t := range m.Tracers {
		ctx = t.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (m *MultiQueryTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, t := range m.Tracers {
		t.TraceQueryEnd(ctx, conn, data)
	}
}

// LoggingQueryTracer logs every statement at debug level and every failed
// statement at error level, with its duration.
type LoggingQueryTracer struct {
	logger *slog.Logger
}

func NewLoggingQueryTracer(logger *slog.Logger) *LoggingQueryTracer {
	return &LoggingQueryTracer{logger: logger}
}

type queryStartKey struct{}

type queryStart struct {
	sql string
	at  time.Time
}

var (
	collapseSpaces    = regexp.MustCompile(`\s+`)
	tightenOpenParen  = regexp.MustCompile(`\(\s+`)
	tightenCloseParen = regexp.MustCompile(`\s+\)`)
)

// CompactSQL folds a multi-line statement onto one line.
func CompactSQL(sql string) string {
	compact := collapseSpaces.ReplaceAllString(sql, " ")
	compact = tightenOpenParen.ReplaceAllString(compact, "(")
	compact = tightenCloseParen.ReplaceAllString(compact, ")")
	return strings.TrimSpace(compact)
}

func (l *LoggingQueryTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	sql := CompactSQL(data.SQL)
	l.logger.DebugContext(ctx, "query start",
		slog.String("sql", sql),
		slog.Int("args", len(data.Args)),
	)
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: sql, at: time.Now()})
}

func (l *LoggingQueryTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	attrs := []any{slog.String("command_tag", data.CommandTag.String())}
	if start, ok := ctx.Value(queryStartKey{}).(queryStart); ok {
		attrs = append(attrs,
			slog.String("sql", start.sql),
			slog.Duration("duration", time.Since(start.at)),
		)
	}

	if data.Err != nil {
		attrs = append(attrs, slog.String("error", data.Err.Error()))
		l.logger.ErrorContext(ctx, "query end", attrs...)
		return
	}

	l.logger.DebugContext(ctx, "query end", attrs...)
}
