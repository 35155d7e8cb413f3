package userspgxstore

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jrazmi/userdir/core/repositories"
	"github.com/jrazmi/userdir/core/repositories/usersrepo"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestBuildListQueryGolden(t *testing.T) {
	tests := []struct {
		name    string
		orderBy []string
	}{
		{"default_order", nil},
		{"mixed_directives", []string{"-name", "created_at"}},
		{"id_repeated", []string{"id"}},
	}

	g := newGoldie(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := BuildListQuery(usersrepo.UserFilter{PageSize: 10, OrderBy: tt.orderBy})
			require.NoError(t, err)
			assert.Equal(t, 10, args["limit"])
			g.Assert(t, tt.name, []byte(query))
		})
	}
}

func TestBuildListQueryShapeIsConstant(t *testing.T) {
	id := uuid.New()
	name, username, email := "Alice", "alice", "alice@example.com"
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	full := usersrepo.UserFilter{
		PageSize:      5,
		ID:            &id,
		Name:          &name,
		Username:      &username,
		Email:         &email,
		CreatedAtFrom: &from,
		CreatedAtTo:   &to,
		UpdatedAtFrom: &from,
		UpdatedAtTo:   &to,
	}

	fullSQL, fullArgs, err := BuildListQuery(full)
	require.NoError(t, err)
	emptySQL, emptyArgs, err := BuildListQuery(usersrepo.UserFilter{PageSize: 5})
	require.NoError(t, err)

	assert.Equal(t, emptySQL, fullSQL)
	assert.Len(t, fullArgs, 9)
	assert.Len(t, emptyArgs, 9)

	assert.Equal(t, &name, fullArgs["name"])
	assert.Equal(t, &from, fullArgs["created_at_from"])
	assert.Nil(t, emptyArgs["name"])
	assert.Nil(t, emptyArgs["updated_at_to"])
}

func TestBuildListQueryUnknownField(t *testing.T) {
	for _, directive := range []string{"password", "-password", "name; DROP TABLE users", ""} {
		_, _, err := BuildListQuery(usersrepo.UserFilter{PageSize: 5, OrderBy: []string{"name", directive}})
		assert.ErrorIs(t, err, repositories.ErrInvalidFilterField, "%q", directive)
	}
}

func TestBuildListQueryAllowedFields(t *testing.T) {
	for field := range usersrepo.OrderByFields {
		_, _, err := BuildListQuery(usersrepo.UserFilter{PageSize: 1, OrderBy: []string{field, "-" + field}})
		assert.NoError(t, err, field)
	}
}
