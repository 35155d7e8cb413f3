package userspgxstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jrazmi/userdir/core/repositories"
	"github.com/jrazmi/userdir/core/repositories/usersrepo"
	"github.com/jrazmi/userdir/sdk/logger"
	"github.com/jrazmi/userdir/sdk/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUser(name string) usersrepo.User {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return usersrepo.User{
		ID:        uuid.New(),
		Name:      name,
		Username:  name + "_" + uuid.NewString()[:8],
		Email:     name + "@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newTestStore(q Querier, opts ...Option) *Store {
	return NewStore(logger.NewDiscard(), q, opts...)
}

func TestListReturnsRowsInOrder(t *testing.T) {
	a, b, c := sampleUser("alice"), sampleUser("alice"), sampleUser("alice")
	q := &fakeQuerier{rows: [][]any{userRow(a), userRow(b), userRow(c)}}
	store := newTestStore(q)

	name := "alice"
	users, err := store.List(context.Background(), usersrepo.UserFilter{PageSize: 10, Name: &name})
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID, c.ID}, []uuid.UUID{users[0].ID, users[1].ID, users[2].ID})
	assert.Nil(t, users[0].DeletedAt)

	require.Equal(t, 1, q.callCount())
	call := q.calls[0]
	assert.Contains(t, call.sql, `ORDER BY "id" ASC LIMIT @limit`)
	assert.Equal(t, 10, call.args["limit"])
	assert.Equal(t, &name, call.args["name"])
	assert.True(t, q.last.closed, "rows must be closed so the connection goes back to the pool")
}

func TestListEmptyIsNotNil(t *testing.T) {
	store := newTestStore(&fakeQuerier{})
	users, err := store.List(context.Background(), usersrepo.UserFilter{PageSize: 5})
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestListScansDeletedAt(t *testing.T) {
	u := sampleUser("bob")
	deletedAt := u.CreatedAt.Add(time.Hour)
	u.Deleted = true
	u.DeletedAt = &deletedAt

	store := newTestStore(&fakeQuerier{rows: [][]any{userRow(u)}})
	users, err := store.List(context.Background(), usersrepo.UserFilter{PageSize: 1})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.NotNil(t, users[0].DeletedAt)
	assert.True(t, deletedAt.Equal(*users[0].DeletedAt))
	assert.True(t, users[0].Deleted)
}

func TestListInvalidFieldIssuesNoStatement(t *testing.T) {
	q := &fakeQuerier{}
	store := newTestStore(q)

	_, err := store.List(context.Background(), usersrepo.UserFilter{PageSize: 5, OrderBy: []string{"-name", "password"}})
	assert.ErrorIs(t, err, repositories.ErrInvalidFilterField)
	assert.Zero(t, q.callCount())
}

func TestListTimeout(t *testing.T) {
	q := &fakeQuerier{delay: time.Second, rows: [][]any{userRow(sampleUser("slow"))}}
	collector := metrics.NewCollector(metrics.Options{})
	store := newTestStore(q, WithQueryTimeout(20*time.Millisecond), WithMetrics(collector))

	start := time.Now()
	users, err := store.List(context.Background(), usersrepo.UserFilter{PageSize: 5})
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	require.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrQueryTimeout)
	assert.NotErrorIs(t, err, repositories.ErrQueryExecution)
	assert.Nil(t, users)

	series, err := testutil.GatherAndCount(collector.Registry(), "userdir_db_queries_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series)
}

func TestListTimeoutDuringIteration(t *testing.T) {
	q := &fakeQuerier{
		rows:       [][]any{userRow(sampleUser("a"))},
		iterErr:    &pgconn.PgError{Code: "57014", Message: "canceling statement due to user request"},
		waitExpiry: true,
	}
	store := newTestStore(q, WithQueryTimeout(10*time.Millisecond))

	users, err := store.List(context.Background(), usersrepo.UserFilter{PageSize: 5})
	assert.ErrorIs(t, err, repositories.ErrQueryTimeout)
	assert.Nil(t, users, "no partial results")
}

func TestListExecutionError(t *testing.T) {
	cause := errors.New("connection reset by peer")
	store := newTestStore(&fakeQuerier{queryErr: cause})

	_, err := store.List(context.Background(), usersrepo.UserFilter{PageSize: 5})
	assert.ErrorIs(t, err, repositories.ErrQueryExecution)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, repositories.ErrQueryTimeout)
}

func TestListCallerCancellationIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := newTestStore(&fakeQuerier{delay: time.Second})
	_, err := store.List(ctx, usersrepo.UserFilter{PageSize: 5})
	assert.ErrorIs(t, err, repositories.ErrQueryExecution)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetByIDNotFound(t *testing.T) {
	store := newTestStore(&fakeQuerier{})
	_, err := store.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGetByID(t *testing.T) {
	u := sampleUser("carol")
	q := &fakeQuerier{rows: [][]any{userRow(u)}}
	store := newTestStore(q)

	got, err := store.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, u.ID, q.calls[0].args["id"])
	assert.Equal(t, getByIDQuery, q.calls[0].sql)
}

func TestCreateDuplicate(t *testing.T) {
	q := &fakeQuerier{queryErr: &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}}
	store := newTestStore(q)

	_, err := store.Create(context.Background(), usersrepo.CreateUser{Name: "d", Username: "d", Email: "d@example.com"})
	assert.ErrorIs(t, err, repositories.ErrDuplicatedEntry)
	assert.Equal(t, "d@example.com", q.calls[0].args["email"])
}

func TestUpdateBindsOnlyProvidedFields(t *testing.T) {
	u := sampleUser("erin")
	q := &fakeQuerier{rows: [][]any{userRow(u)}}
	store := newTestStore(q)

	email := "erin@new.example.com"
	_, err := store.Update(context.Background(), usersrepo.UpdateUser{ID: u.ID, Email: &email})
	require.NoError(t, err)

	args := q.calls[0].args
	assert.Equal(t, &email, args["email"])
	assert.Nil(t, args["name"])
	assert.Nil(t, args["username"])
	assert.Contains(t, q.calls[0].sql, `COALESCE(@name::TEXT, "name")`)
}

func TestSingleRowOperationsUseTheirStatements(t *testing.T) {
	u := sampleUser("frank")
	tests := []struct {
		name  string
		query string
		call  func(*Store) (usersrepo.User, error)
	}{
		{"soft delete", softDeleteQuery, func(s *Store) (usersrepo.User, error) { return s.SoftDelete(context.Background(), u.ID) }},
		{"restore", restoreQuery, func(s *Store) (usersrepo.User, error) { return s.Restore(context.Background(), u.ID) }},
		{"delete", deleteQuery, func(s *Store) (usersrepo.User, error) { return s.Delete(context.Background(), u.ID) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuerier{rows: [][]any{userRow(u)}}
			got, err := tt.call(newTestStore(q))
			require.NoError(t, err)
			assert.Equal(t, u.ID, got.ID)
			assert.Equal(t, tt.query, q.calls[0].sql)
		})
	}
}

func TestSingleRowTimeout(t *testing.T) {
	store := newTestStore(&fakeQuerier{delay: time.Second}, WithQueryTimeout(10*time.Millisecond))
	_, err := store.SoftDelete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repositories.ErrQueryTimeout)
}
