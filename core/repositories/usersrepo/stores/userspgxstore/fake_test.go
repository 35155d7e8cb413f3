package userspgxstore

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jrazmi/userdir/core/repositories/usersrepo"
)

var fakeColumns = []string{"id", "name", "username", "email", "created_at", "updated_at", "deleted", "deleted_at"}

func userRow(u usersrepo.User) []any {
	var deletedAt any
	if u.DeletedAt != nil {
		deletedAt = *u.DeletedAt
	}
	return []any{u.ID, u.Name, u.Username, u.Email, u.CreatedAt, u.UpdatedAt, u.Deleted, deletedAt}
}

// fakeQuerier records statements and answers them with canned rows.
type fakeQuerier struct {
	mu sync.Mutex

	rows     [][]any
	queryErr error
	iterErr  error
	delay    time.Duration

	// waitExpiry holds Query until its context is done and then still hands
	// back rows, as a server cancelled mid-stream would.
	waitExpiry bool

	calls []fakeCall
	last  *fakeRows
}

type fakeCall struct {
	sql  string
	args pgx.NamedArgs
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.mu.Lock()
	call := fakeCall{sql: sql}
	if len(args) == 1 {
		call.args, _ = args[0].(pgx.NamedArgs)
	}
	q.calls = append(q.calls, call)
	q.mu.Unlock()

	if q.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("sending query: %w", ctx.Err())
		case <-time.After(q.delay):
		}
	}
	if q.waitExpiry {
		<-ctx.Done()
	}
	if q.queryErr != nil {
		return nil, q.queryErr
	}

	rows := &fakeRows{cols: fakeColumns, data: q.rows, err: q.iterErr}
	q.mu.Lock()
	q.last = rows
	q.mu.Unlock()
	return rows, nil
}

func (q *fakeQuerier) callCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.calls)
}

// fakeRows implements pgx.Rows over in-memory values.
type fakeRows struct {
	cols   []string
	data   [][]any
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Close()                        { r.closed = true }
func (r *fakeRows) Err() error                    { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) Conn() *pgx.Conn               { return nil }
func (r *fakeRows) RawValues() [][]byte           { return nil }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.cols))
	for i, c := range r.cols {
		fds[i] = pgconn.FieldDescription{Name: c}
	}
	return fds
}

func (r *fakeRows) Next() bool {
	if r.closed || r.pos >= len(r.data) {
		r.closed = true
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.data[r.pos-1], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d targets for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if row[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(row[i])
		switch {
		case v.Type().AssignableTo(target.Type()):
			target.Set(v)
		case target.Kind() == reflect.Pointer && v.Type().AssignableTo(target.Type().Elem()):
			p := reflect.New(target.Type().Elem())
			p.Elem().Set(v)
			target.Set(p)
		default:
			return fmt.Errorf("scan: cannot assign %s to %s", v.Type(), target.Type())
		}
	}
	return nil
}
