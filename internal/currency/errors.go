package currency

import (
	"errors"
	"fmt"
)

// Error kinds, matched with errors.Is
var (
	ErrDefaultCurrencyNotFound = errors.New("default currency not found")
	ErrCurrencyNotFound        = errors.New("currency not found")
	ErrCurrencyAlreadyExists   = errors.New("currency already exists")
	ErrInvalidParameter        = errors.New("invalid parameter")
	ErrNotSupportedStore       = errors.New("store not supported")
)

// Error is a registry failure of a given kind
type Error struct {
	Kind    error
	Code    string
	Details map[string]string
	Err     error
}

func newError(kind error, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Code)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// detailsOf returns the field-level details carried by err, if any
func detailsOf(err error) map[string]string {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Details
	}
	return nil
}
