package operr

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure so handlers can decide
// whether to retry, report or abort
type Kind int

const (
	KIND_UNAUTHORIZED Kind = iota
	KIND_VALIDATION
	KIND_TIMEOUT
	KIND_DELIVERY
	KIND_STORAGE
	KIND_NOT_FOUND
)

var kindNames = map[Kind]string{
	KIND_UNAUTHORIZED: "unauthorized",
	KIND_VALIDATION:   "validation",
	KIND_TIMEOUT:      "timeout",
	KIND_DELIVERY:     "delivery",
	KIND_STORAGE:      "storage",
	KIND_NOT_FOUND:    "not found",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an operation error of the given kind
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind of an operation error,
// unwrapping as far as necessary
func KindOf(err error) (Kind, bool) {
	var operr *Error
	if errors.As(err, &operr) {
		return operr.Kind, true
	}
	return -1, false
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
