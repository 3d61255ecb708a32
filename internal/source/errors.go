package source

import (
	"errors"
	"fmt"
)

// ErrorKind classifies adapter failures. Every failure path out of a Source
// resolves to one of these; provider-specific errors never escape.
type ErrorKind string

const (
	// KindInvalidSymbol means the symbol failed source-side validation.
	KindInvalidSymbol ErrorKind = "invalid_symbol"
	// KindNoData means the lookup was well-formed but the payload was empty.
	KindNoData ErrorKind = "no_data"
	// KindNetwork covers transport failures, timeouts and bad upstream status.
	KindNetwork ErrorKind = "network"
	// KindComposite means a fallback chain was exhausted; the message carries
	// every underlying cause.
	KindComposite ErrorKind = "composite"
)

// Error is the typed failure arm of a fetch result.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Errf builds a typed error in fmt.Errorf style.
func Errf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Composite combines a primary and a fallback failure so callers can surface
// both causes, not just the last one.
func Composite(primary, fallback error) *Error {
	return &Error{
		Kind:    KindComposite,
		Message: fmt.Sprintf("primary: %v; fallback: %v", primary, fallback),
	}
}

// KindOf extracts the ErrorKind from err, or KindNetwork when err is not a
// typed source error (a conservative default for unexpected failures).
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindNetwork
}
