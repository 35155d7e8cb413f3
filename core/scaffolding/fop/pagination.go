package fop

import (
	"fmt"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePageSize validates the requested page size, applying DefaultPageSize
// when none is given.
func ParsePageSize(pageSize string) (int, error) {
	size := DefaultPageSize

	if pageSize != "" {
		var err error
		size, err = strconv.Atoi(pageSize)
		if err != nil {
			return 0, fmt.Errorf("page size conversion: %w", err)
		}
	}

	if size <= 0 {
		return 0, fmt.Errorf("page size too small, must be larger than 0")
	}

	if size > MaxPageSize {
		return 0, fmt.Errorf("page size too large, must be at most %d", MaxPageSize)
	}

	return size, nil
}
