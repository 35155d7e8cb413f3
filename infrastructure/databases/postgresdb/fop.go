package postgresdb

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jrazmi/userdir/core/scaffolding/fop"
)

// Comparison operators a Predicate may use.
const (
	OpEq  = "="
	OpGte = ">="
	OpLte = "<="
)

var validOperators = map[string]bool{OpEq: true, OpGte: true, OpLte: true}

// Predicate is one optional constraint of a WHERE clause. A nil Value
// disables the constraint without removing it from the statement.
type Predicate struct {
	Column string
	Param  string
	Cast   string
	Op     string
	Value  any
}

// AddPredicates appends a WHERE clause in which every predicate is rendered
// as "(@param::cast IS NULL OR column op @param::cast)". The text of the
// clause depends only on the predicate list, never on which values are set.
func AddPredicates(buf *bytes.Buffer, data pgx.NamedArgs, predicates []Predicate) error {
	if len(predicates) == 0 {
		return nil
	}

	clauses := make([]string, 0, len(predicates))
	for _, p := range predicates {
		column, err := QuoteIdentifier(p.Column)
		if err != nil {
			return fmt.Errorf("invalid predicate column: %w", err)
		}
		if !validOperators[p.Op] {
			return fmt.Errorf("invalid operator: %s", p.Op)
		}
		if !identifierPattern.MatchString(p.Param) || !identifierPattern.MatchString(p.Cast) {
			return fmt.Errorf("invalid parameter %q or cast %q", p.Param, p.Cast)
		}

		param := "@" + p.Param + "::" + p.Cast
		clauses = append(clauses, fmt.Sprintf("(%s IS NULL OR %s %s %s)", param, column, p.Op, param))
		data[p.Param] = p.Value
	}

	buf.WriteString(" WHERE ")
	buf.WriteString(strings.Join(clauses, " AND "))
	return nil
}

// AddOrderByClause appends an ORDER BY built from orderBy followed by pkField
// ascending. With no directives the clause is only pkField ascending.
func AddOrderByClause(buf *bytes.Buffer, orderBy []fop.By, pkField string) error {
	quotedPKField, err := QuoteIdentifier(pkField)
	if err != nil {
		return fmt.Errorf("invalid pk field name: %w", err)
	}

	terms := make([]string, 0, len(orderBy)+1)
	for _, by := range orderBy {
		field, err := QuoteIdentifier(by.Field)
		if err != nil {
			return fmt.Errorf("invalid order field name: %w", err)
		}
		direction := fop.ASC
		if by.Direction == fop.DESC {
			direction = fop.DESC
		}
		terms = append(terms, field+" "+direction)
	}
	terms = append(terms, quotedPKField+" "+fop.ASC)

	buf.WriteString(" ORDER BY ")
	buf.WriteString(strings.Join(terms, ", "))
	return nil
}

// AddLimitClause adds LIMIT clause to the query buffer
func AddLimitClause(limit int, data pgx.NamedArgs, buf *bytes.Buffer) {
	buf.WriteString(" LIMIT @limit")
	data["limit"] = limit
}
