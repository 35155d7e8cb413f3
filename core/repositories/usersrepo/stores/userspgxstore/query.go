package userspgxstore

import (
	"bytes"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jrazmi/userdir/core/repositories"
	"github.com/jrazmi/userdir/core/repositories/usersrepo"
	"github.com/jrazmi/userdir/core/scaffolding/fop"
	"github.com/jrazmi/userdir/infrastructure/databases/postgresdb"
)

const table = "users"

const userColumns = `"id", "name", "username", "email", "created_at", "updated_at", "deleted", "deleted_at"`

// filterPredicates lists every optional constraint of a list query. All of
// them are rendered on every call; unset fields bind NULL.
func filterPredicates(f usersrepo.UserFilter) []postgresdb.Predicate {
	return []postgresdb.Predicate{
		{Column: "id", Param: "id", Cast: "UUID", Op: postgresdb.OpEq, Value: f.ID},
		{Column: "name", Param: "name", Cast: "TEXT", Op: postgresdb.OpEq, Value: f.Name},
		{Column: "username", Param: "username", Cast: "TEXT", Op: postgresdb.OpEq, Value: f.Username},
		{Column: "email", Param: "email", Cast: "TEXT", Op: postgresdb.OpEq, Value: f.Email},
		{Column: "created_at", Param: "created_at_from", Cast: "TIMESTAMPTZ", Op: postgresdb.OpGte, Value: f.CreatedAtFrom},
		{Column: "created_at", Param: "created_at_to", Cast: "TIMESTAMPTZ", Op: postgresdb.OpLte, Value: f.CreatedAtTo},
		{Column: "updated_at", Param: "updated_at_from", Cast: "TIMESTAMPTZ", Op: postgresdb.OpGte, Value: f.UpdatedAtFrom},
		{Column: "updated_at", Param: "updated_at_to", Cast: "TIMESTAMPTZ", Op: postgresdb.OpLte, Value: f.UpdatedAtTo},
	}
}

// BuildListQuery renders the list statement for filter. Unknown sort fields
// fail with repositories.ErrInvalidFilterField before anything is rendered.
func BuildListQuery(filter usersrepo.UserFilter) (string, pgx.NamedArgs, error) {
	orderBy, err := fop.ParseOrderBy(usersrepo.OrderByFields, filter.OrderBy)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", repositories.ErrInvalidFilterField, err)
	}

	var buf bytes.Buffer
	data := pgx.NamedArgs{}

	buf.WriteString("SELECT ")
	buf.WriteString(userColumns)
	buf.WriteString(" FROM ")
	buf.WriteString(postgresdb.MustQuoteIdentifier(table))

	if err := postgresdb.AddPredicates(&buf, data, filterPredicates(filter)); err != nil {
		return "", nil, fmt.Errorf("%w: %w", repositories.ErrInvalidFilterField, err)
	}
	if err := postgresdb.AddOrderByClause(&buf, orderBy, usersrepo.OrderByID); err != nil {
		return "", nil, fmt.Errorf("%w: %w", repositories.ErrInvalidFilterField, err)
	}
	postgresdb.AddLimitClause(filter.PageSize, data, &buf)

	return buf.String(), data, nil
}

const (
	getByIDQuery = `SELECT ` + userColumns + ` FROM "users" WHERE "id" = @id`

	createQuery = `INSERT INTO "users" ("name", "username", "email")
VALUES (@name, @username, @email)
RETURNING ` + userColumns

	updateQuery = `UPDATE "users"
SET "name"       = COALESCE(@name::TEXT, "name"),
    "username"   = COALESCE(@username::TEXT, "username"),
    "email"      = COALESCE(@email::TEXT, "email"),
    "updated_at" = NOW()
WHERE "id" = @id
RETURNING ` + userColumns

	softDeleteQuery = `UPDATE "users"
SET "deleted"    = TRUE,
    "deleted_at" = NOW(),
    "updated_at" = NOW()
WHERE "id" = @id
RETURNING ` + userColumns

	restoreQuery = `UPDATE "users"
SET "deleted"    = FALSE,
    "deleted_at" = NULL,
    "updated_at" = NOW()
WHERE "id" = @id
RETURNING ` + userColumns

	deleteQuery = `DELETE FROM "users" WHERE "id" = @id RETURNING ` + userColumns
)
