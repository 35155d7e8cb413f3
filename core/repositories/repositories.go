// Package repositories holds the error kinds shared by every repository and
// store.
package repositories

import "errors"

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicatedEntry    = errors.New("duplicated entry")
	ErrInvalidFilterField = errors.New("invalid filter field")
	ErrQueryTimeout       = errors.New("query timed out")
	ErrQueryExecution     = errors.New("query execution failed")
)
