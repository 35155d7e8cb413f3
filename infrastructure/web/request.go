package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps how much of a request body Decode reads.
const MaxBodyBytes = 1 << 20

// Body errors returned by Decode.
var (
	ErrEmptyBody     = errors.New("request body is empty")
	ErrMalformedBody = errors.New("json decode")
	ErrInvalidBody   = errors.New("validation")
)

// Param returns the named path wildcard, e.g. {user_id}.
func Param(r *http.Request, key string) string {
	return r.PathValue(key)
}

// QueryParam returns the first value of a query string key.
func QueryParam(r *http.Request, key string) string {
	return r.URL.Query().Get(key)
}

type validator interface {
	Validate() error
}

// Decode unmarshals the JSON body of r into v, then calls v.Validate when v
// has one. The validation error is wrapped as is, so typed errors such as
// validation.FieldErrors stay reachable through errors.As.
func Decode(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyBody
	}
	if len(data) > MaxBodyBytes {
		return fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedBody, MaxBodyBytes)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}

	if val, ok := v.(validator); ok {
		if err := val.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidBody, err)
		}
	}
	return nil
}
