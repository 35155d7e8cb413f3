package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jrazmi/userdir/app/userdir/config"
	"github.com/jrazmi/userdir/core/repositories"
	"github.com/jrazmi/userdir/core/repositories/usersrepo"
	"github.com/jrazmi/userdir/core/scaffolding/fop"
	"github.com/jrazmi/userdir/sdk/logger"
	"github.com/jrazmi/userdir/sdk/metrics"
	"github.com/jrazmi/userdir/sdk/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type users struct {
	list []usersrepo.User
}

func (u users) List(context.Context, usersrepo.UserFilter) ([]usersrepo.User, fop.Metadata, error) {
	return u.list, fop.NewMetadata(u.list, usersrepo.UserID), nil
}

func (u users) GetByID(_ context.Context, id uuid.UUID) (usersrepo.User, error) {
	for _, user := range u.list {
		if user.ID == id {
			return user, nil
		}
	}
	return usersrepo.User{}, repositories.ErrNotFound
}

func (u users) Create(context.Context, usersrepo.CreateUser) (usersrepo.User, error) {
	return usersrepo.User{}, errors.New("read only")
}

func (u users) Update(context.Context, usersrepo.UpdateUser) (usersrepo.User, error) {
	return usersrepo.User{}, errors.New("read only")
}

func (u users) SoftDelete(_ context.Context, id uuid.UUID) (usersrepo.User, error) {
	return u.GetByID(context.Background(), id)
}

func (u users) Restore(_ context.Context, id uuid.UUID) (usersrepo.User, error) {
	return u.GetByID(context.Background(), id)
}

func (u users) Delete(_ context.Context, id uuid.UUID) (usersrepo.User, error) {
	return u.GetByID(context.Background(), id)
}

func newTestHandler(t *testing.T, db pinger, mutate func(*config.Config)) http.Handler {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	if mutate != nil {
		mutate(&cfg)
	}

	return webHandler(handlerDeps{
		cfg:     cfg,
		log:     logger.NewDiscard(),
		tel:     telemetry.NewTelemetry(),
		metrics: metrics.NewCollector(cfg.Metrics),
		users:   users{list: []usersrepo.User{{ID: uuid.New(), Name: "Alice"}}},
		db:      db,
	})
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t, pinger{}, nil)
	rec := do(t, h, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":"ok","message":"ready"}`, rec.Body.String())

	down := newTestHandler(t, pinger{err: errors.New("connection refused")}, nil)
	rec = do(t, down, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUsersMountedUnderAPIRoute(t *testing.T) {
	h := newTestHandler(t, pinger{}, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/users?pageSize=10")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var body struct {
		Data     []usersrepo.User `json:"data"`
		Metadata fop.Metadata     `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 1, body.Metadata.ResponseLength)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/users").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t, pinger{}, nil)
	do(t, h, http.MethodGet, "/healthz")

	rec := do(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `userdir_http_requests_total{method="GET",status="200"} 1`)
}

func TestDebugRoutes(t *testing.T) {
	h := newTestHandler(t, pinger{}, nil)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/debug/pprof/").Code)

	debug := newTestHandler(t, pinger{}, func(c *config.Config) { c.Server.EnableDebug = true })
	assert.Equal(t, http.StatusOK, do(t, debug, http.MethodGet, "/debug/pprof/").Code)
}
