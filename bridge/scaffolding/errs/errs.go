// Package errs provides the error type returned by bridge handlers.
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/jrazmi/userdir/core/repositories"
	"github.com/jrazmi/userdir/sdk/validation"
)

// ErrCode is an error category with a fixed HTTP status.
type ErrCode struct {
	value  string
	status int
}

func (c ErrCode) String() string {
	return c.value
}

// HTTPStatus returns the status code for the category.
func (c ErrCode) HTTPStatus() int {
	return c.status
}

// MarshalText implements encoding.TextMarshaler.
func (c ErrCode) MarshalText() ([]byte, error) {
	return []byte(c.value), nil
}

var (
	InvalidArgument  = ErrCode{value: "invalid_argument", status: http.StatusBadRequest}
	NotFound         = ErrCode{value: "not_found", status: http.StatusNotFound}
	AlreadyExists    = ErrCode{value: "already_exists", status: http.StatusConflict}
	DeadlineExceeded = ErrCode{value: "deadline_exceeded", status: http.StatusGatewayTimeout}
	Unavailable      = ErrCode{value: "unavailable", status: http.StatusServiceUnavailable}
	Internal         = ErrCode{value: "internal", status: http.StatusInternalServerError}
	// InternalOnlyLog is logged in full but reported to the client as Internal.
	InternalOnlyLog = ErrCode{value: "internal_only_log", status: http.StatusInternalServerError}
)

// Error is the error response of a handler. It records where it was
// created so the error middleware can log it.
type Error struct {
	Code     ErrCode                `json:"code"`
	Message  string                 `json:"message"`
	Fields   validation.FieldErrors `json:"fields,omitempty"`
	FuncName string                 `json:"-"`
	FileName string                 `json:"-"`
}

// New builds an Error from err.
func New(code ErrCode, err error) *Error {
	return newError(code, err.Error())
}

// Newf builds an Error from a formatted message.
func Newf(code ErrCode, format string, v ...any) *Error {
	return newError(code, fmt.Sprintf(format, v...))
}

func newError(code ErrCode, msg string) *Error {
	e := Error{Code: code, Message: msg}
	if pc, file, line, ok := runtime.Caller(2); ok {
		e.FileName = fmt.Sprintf("%s:%d", file, line)
		if fn := runtime.FuncForPC(pc); fn != nil {
			e.FuncName = fn.Name()
		}
	}
	return &e
}

func (e *Error) Error() string {
	return e.Message
}

// Encode implements web.Encoder.
func (e *Error) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}

// HTTPStatus implements the web package's status interface.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// FromDecodeError reports a request body that could not be decoded or
// failed validation. Field level failures are listed under "fields".
func FromDecodeError(err error) *Error {
	e := newError(InvalidArgument, err.Error())
	var fields validation.FieldErrors
	if errors.As(err, &fields) {
		e.Fields = fields
	}
	return e
}

// FromRepoError maps a repository error onto the category a client should
// see. Unknown errors are kept for the logs only.
func FromRepoError(err error) *Error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return newError(NotFound, "record not found")
	case errors.Is(err, repositories.ErrInvalidFilterField):
		return newError(InvalidArgument, err.Error())
	case errors.Is(err, repositories.ErrDuplicatedEntry):
		return newError(AlreadyExists, err.Error())
	case errors.Is(err, repositories.ErrQueryTimeout):
		return newError(DeadlineExceeded, "query timed out")
	default:
		return newError(InternalOnlyLog, err.Error())
	}
}
