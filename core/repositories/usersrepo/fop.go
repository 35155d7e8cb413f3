package usersrepo

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Columns a list may be ordered by.
const (
	OrderByID        = "id"
	OrderByName      = "name"
	OrderByUsername  = "username"
	OrderByEmail     = "email"
	OrderByCreatedAt = "created_at"
	OrderByUpdatedAt = "updated_at"
	OrderByDeleted   = "deleted"
	OrderByDeletedAt = "deleted_at"
)

// OrderByFields maps accepted sort directive names to their columns.
var OrderByFields = map[string]string{
	"id":         OrderByID,
	"name":       OrderByName,
	"username":   OrderByUsername,
	"email":      OrderByEmail,
	"created_at": OrderByCreatedAt,
	"updated_at": OrderByUpdatedAt,
	"deleted":    OrderByDeleted,
	"deleted_at": OrderByDeletedAt,
}

// UserFilter holds the available fields a list can be filtered on. Nil
// fields place no constraint; set fields are combined with AND.
//
// OrderBy holds sort directives: a bare name sorts descending, a leading "-"
// sorts ascending. Identifier ascending always breaks ties.
type UserFilter struct {
	PageSize int

	ID       *uuid.UUID
	Name     *string
	Username *string
	Email    *string

	CreatedAtFrom *time.Time
	CreatedAtTo   *time.Time
	UpdatedAtFrom *time.Time
	UpdatedAtTo   *time.Time

	OrderBy []string
}

// LogValue implements slog.LogValuer, listing only the constraints that are
// set.
func (f UserFilter) LogValue() slog.Value {
	attrs := []slog.Attr{slog.Int("page_size", f.PageSize)}
	if f.ID != nil {
		attrs = append(attrs, slog.String("id", f.ID.String()))
	}
	if f.Name != nil {
		attrs = append(attrs, slog.String("name", *f.Name))
	}
	if f.Username != nil {
		attrs = append(attrs, slog.String("username", *f.Username))
	}
	if f.Email != nil {
		attrs = append(attrs, slog.String("email", *f.Email))
	}
	ranges := []struct {
		key string
		t   *time.Time
	}{
		{"created_at_from", f.CreatedAtFrom},
		{"created_at_to", f.CreatedAtTo},
		{"updated_at_from", f.UpdatedAtFrom},
		{"updated_at_to", f.UpdatedAtTo},
	}
	for _, r := range ranges {
		if r.t != nil {
			attrs = append(attrs, slog.Time(r.key, *r.t))
		}
	}
	if len(f.OrderBy) > 0 {
		attrs = append(attrs, slog.Any("order_by", f.OrderBy))
	}
	return slog.GroupValue(attrs...)
}
