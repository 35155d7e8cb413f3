package fop

import (
	"errors"
	"fmt"
	"strings"
)

// Set of directions for data ordering.
const (
	ASC  = "ASC"
	DESC = "DESC"
)

// ErrUnknownOrderField is returned when a directive names a field outside the
// allowed set.
var ErrUnknownOrderField = errors.New("unknown order field")

// By represents a single field used to order a query.
type By struct {
	Field     string
	Direction string
}

// NewBy constructs a By value. Unknown directions fall back to ASC.
func NewBy(field string, direction string) By {
	if direction != DESC {
		direction = ASC
	}
	return By{Field: field, Direction: direction}
}

// String renders the directive back in its external form.
func (b By) String() string {
	if b.Direction == ASC {
		return "-" + b.Field
	}
	return b.Field
}

// ParseOrderBy converts sort directives into an ordered list of By values.
//
// A bare field name sorts descending; a leading "-" sorts ascending. Keys of
// fieldMappings are the accepted external names, values the storage columns
// they resolve to. Directives are kept in input order and duplicates are
// preserved.
func ParseOrderBy(fieldMappings map[string]string, directives []string) ([]By, error) {
	orderBy := make([]By, 0, len(directives))
	for _, d := range directives {
		direction := DESC
		name := strings.TrimSpace(d)
		if rest, ok := strings.CutPrefix(name, "-"); ok {
			direction = ASC
			name = rest
		}

		column, exists := fieldMappings[name]
		if !exists {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOrderField, d)
		}
		orderBy = append(orderBy, By{Field: column, Direction: direction})
	}
	return orderBy, nil
}

// SplitOrderBy splits a comma separated directive list, dropping empty
// entries.
func SplitOrderBy(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	directives := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			directives = append(directives, p)
		}
	}
	return directives
}
