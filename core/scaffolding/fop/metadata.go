package fop

import "github.com/google/uuid"

// Metadata describes a page of results.
type Metadata struct {
	LastSeen       *uuid.UUID `json:"lastSeen,omitempty"`
	Next           bool       `json:"next"`
	ResponseLength int        `json:"responseLength"`
}

// NewMetadata derives page metadata from an ordered result set. Next only
// reports that the page was non-empty; it does not look for further rows.
func NewMetadata[T any](rows []T, idOf func(T) uuid.UUID) Metadata {
	md := Metadata{
		ResponseLength: len(rows),
		Next:           len(rows) > 0,
	}
	if len(rows) > 0 {
		last := idOf(rows[len(rows)-1])
		md.LastSeen = &last
	}
	return md
}
