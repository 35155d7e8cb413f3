// Package userspgxstore implements usersrepo.Storer on Postgres through pgx.
package userspgxstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jrazmi/userdir/core/repositories"
	"github.com/jrazmi/userdir/core/repositories/usersrepo"
	"github.com/jrazmi/userdir/infrastructure/databases/postgresdb"
	"github.com/jrazmi/userdir/sdk/logger"
	"github.com/jrazmi/userdir/sdk/metrics"
	"github.com/jrazmi/userdir/sdk/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// DefaultQueryTimeout bounds every statement when no timeout is configured.
const DefaultQueryTimeout = 5 * time.Second

// Querier is the subset of *pgxpool.Pool the store needs. Each call borrows a
// connection that is released when the returned rows are closed.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Store struct {
	log     *logger.Logger
	db      Querier
	timeout time.Duration
	tracer  trace.Tracer
	metrics *metrics.Collector
}

// Option configures a Store.
type Option func(*Store)

// WithQueryTimeout sets the deadline armed around every statement.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithTracer opens a span per statement.
func WithTracer(t trace.Tracer) Option {
	return func(s *Store) {
		s.tracer = t
	}
}

// WithMetrics records statement counts and latency.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Store) {
		s.metrics = c
	}
}

func NewStore(log *logger.Logger, db Querier, opts ...Option) *Store {
	s := &Store{
		log:     log,
		db:      db,
		timeout: DefaultQueryTimeout,
		tracer:  noop.NewTracerProvider().Tracer("userspgxstore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the users matching filter in the order its directives ask
// for, never more than filter.PageSize.
func (s *Store) List(ctx context.Context, filter usersrepo.UserFilter) ([]usersrepo.User, error) {
	query, args, err := BuildListQuery(filter)
	if err != nil {
		s.metrics.RecordQuery("list", metrics.OutcomeInvalid, 0)
		return nil, err
	}

	var users []usersrepo.User
	err = s.run(ctx, "list", query, args, func(rows pgx.Rows) error {
		var err error
		users, err = pgx.CollectRows(rows, pgx.RowToStructByName[usersrepo.User])
		return err
	})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []usersrepo.User{}
	}
	return users, nil
}

// GetByID retrieves a single User by ID
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (usersrepo.User, error) {
	return s.one(ctx, "get_by_id", getByIDQuery, pgx.NamedArgs{"id": id})
}

// Create inserts a new User
func (s *Store) Create(ctx context.Context, input usersrepo.CreateUser) (usersrepo.User, error) {
	return s.one(ctx, "create", createQuery, pgx.NamedArgs{
		"name":     input.Name,
		"username": input.Username,
		"email":    input.Email,
	})
}

// Update modifies an existing User
func (s *Store) Update(ctx context.Context, input usersrepo.UpdateUser) (usersrepo.User, error) {
	return s.one(ctx, "update", updateQuery, pgx.NamedArgs{
		"id":       input.ID,
		"name":     input.Name,
		"username": input.Username,
		"email":    input.Email,
	})
}

func (s *Store) SoftDelete(ctx context.Context, id uuid.UUID) (usersrepo.User, error) {
	return s.one(ctx, "soft_delete", softDeleteQuery, pgx.NamedArgs{"id": id})
}

func (s *Store) Restore(ctx context.Context, id uuid.UUID) (usersrepo.User, error) {
	return s.one(ctx, "restore", restoreQuery, pgx.NamedArgs{"id": id})
}

// Delete removes a User
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (usersrepo.User, error) {
	return s.one(ctx, "delete", deleteQuery, pgx.NamedArgs{"id": id})
}

func (s *Store) one(ctx context.Context, op, query string, args pgx.NamedArgs) (usersrepo.User, error) {
	var user usersrepo.User
	err := s.run(ctx, op, query, args, func(rows pgx.Rows) error {
		var err error
		user, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[usersrepo.User])
		return err
	})
	if err != nil {
		return usersrepo.User{}, err
	}
	return user, nil
}

// run executes query under the store timeout and hands the rows to collect.
// The deadline is released on every return path.
func (s *Store) run(ctx context.Context, op, query string, args pgx.NamedArgs, collect func(pgx.Rows) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "userspgxstore."+op, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", op),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordQuery(op, outcome(err), time.Since(start))
		telemetry.RecordError(span, err)
	}()

	rows, err := s.db.Query(ctx, query, args)
	if err != nil {
		return s.classify(ctx, op, err)
	}

	if err := collect(rows); err != nil {
		return s.classify(ctx, op, err)
	}
	return nil
}

// classify maps a driver error onto the repository error kinds.
func (s *Store) classify(ctx context.Context, op string, err error) error {
	if postgresdb.IsTimeout(ctx, err) {
		s.log.WarnContext(ctx, "statement timed out", "op", op, "timeout", s.timeout)
		return fmt.Errorf("%w: %s after %s: %w", repositories.ErrQueryTimeout, op, s.timeout, err)
	}

	mapped := postgresdb.HandlePgError(err)
	if errors.Is(mapped, repositories.ErrNotFound) || errors.Is(mapped, repositories.ErrDuplicatedEntry) {
		return mapped
	}

	return fmt.Errorf("%w: %s: %w", repositories.ErrQueryExecution, op, err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, repositories.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, repositories.ErrQueryTimeout):
		return metrics.OutcomeTimeout
	default:
		return metrics.OutcomeError
	}
}
