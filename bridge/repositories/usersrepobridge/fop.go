package usersrepobridge

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrazmi/userdir/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/userdir/core/repositories/usersrepo"
	"github.com/jrazmi/userdir/infrastructure/web"
	"github.com/jrazmi/userdir/sdk/validation"
)

// parseFilter builds a UserFilter from the list query string.
func parseFilter(r *http.Request) (usersrepo.UserFilter, error) {
	q := r.URL.Query()

	pageSize, err := fopbridge.PageSize(r)
	if err != nil {
		return usersrepo.UserFilter{}, err
	}

	filter := usersrepo.UserFilter{
		PageSize: pageSize,
		Name:     validation.StringPtrIfNotEmpty(q.Get("name")),
		Username: validation.StringPtrIfNotEmpty(q.Get("username")),
		Email:    validation.StringPtrIfNotEmpty(q.Get("email")),
		OrderBy:  fopbridge.OrderBy(r),
	}

	if raw := q.Get("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return usersrepo.UserFilter{}, fmt.Errorf("invalid id: %q", raw)
		}
		filter.ID = &id
	}

	times := []struct {
		param string
		dst   **time.Time
	}{
		{"createdAtFrom", &filter.CreatedAtFrom},
		{"createdAtTo", &filter.CreatedAtTo},
		{"updatedAtFrom", &filter.UpdatedAtFrom},
		{"updatedAtTo", &filter.UpdatedAtTo},
	}
	for _, tp := range times {
		t, err := validation.ParseTimePtr(q.Get(tp.param))
		if err != nil {
			return usersrepo.UserFilter{}, fmt.Errorf("invalid %s: %w", tp.param, err)
		}
		*tp.dst = t
	}

	return filter, nil
}

func parseUserID(r *http.Request) (uuid.UUID, error) {
	raw := web.Param(r, "user_id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id: %q", raw)
	}
	return id, nil
}
