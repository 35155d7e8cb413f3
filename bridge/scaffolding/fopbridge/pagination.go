// Package fopbridge turns list results and page parameters into HTTP
// responses.
package fopbridge

import (
	"encoding/json"
	"net/http"

	"github.com/jrazmi/userdir/core/scaffolding/fop"
)

// ListResponse is the body of every list endpoint.
type ListResponse[T any] struct {
	Data     []T          `json:"data"`
	Metadata fop.Metadata `json:"metadata"`
}

// NewListResponse wraps one page of records. A nil slice is sent as [].
func NewListResponse[T any](records []T, md fop.Metadata) ListResponse[T] {
	if records == nil {
		records = []T{}
	}
	return ListResponse[T]{Data: records, Metadata: md}
}

// Encode implements the encoder interface.
func (l ListResponse[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(l)
	return data, "application/json", err
}

// PageSize reads the pageSize query parameter, applying the default when it
// is absent.
func PageSize(r *http.Request) (int, error) {
	return fop.ParsePageSize(r.URL.Query().Get("pageSize"))
}

// OrderBy reads the comma separated orderBy query parameter.
func OrderBy(r *http.Request) []string {
	return fop.SplitOrderBy(r.URL.Query().Get("orderBy"))
}
