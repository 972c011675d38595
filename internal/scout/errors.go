package scout

import (
	"errors"
	"fmt"
)

// Kind classifies a provider failure.
type Kind string

const (
	// KindConfig means a required credential is missing. No request was sent.
	KindConfig Kind = "config"
	// KindNetwork covers transport failures, non-2xx statuses and an open breaker.
	KindNetwork Kind = "network"
	// KindProvider is an application-level rejection reported in the response body.
	KindProvider Kind = "provider"
	// KindData means the response body did not have the expected shape.
	KindData Kind = "data"
)

var (
	// ErrLocationUnavailable is returned when the geo lookup yields no result.
	ErrLocationUnavailable = errors.New("location unavailable")
	// ErrRequiredData is returned when weather, sun times or places yield no result.
	ErrRequiredData = errors.New("required data unavailable")
)

// Error is a provider failure carrying its Kind.
type Error struct {
	Provider string
	Kind     Kind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a provider failure of the given kind.
func NewError(provider string, kind Kind, err error) *Error {
	return &Error{Provider: provider, Kind: kind, Err: err}
}

// IsKind reports whether err is a provider failure of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the failure kind of err, or "" if err is not a provider failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
