package codec

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced by the encoders wraps exactly one of these,
// so callers can branch with errors.Is.
var (
	ErrMalformedAddress        = errors.New("malformed address")
	ErrMalformedInteger        = errors.New("malformed integer")
	ErrSaltTooLarge            = errors.New("salt too large")
	ErrValueOverflow           = errors.New("value overflow")
	ErrHashMismatch            = errors.New("hash mismatch")
	ErrSignatureSchemeMismatch = errors.New("signature scheme mismatch")
)

// EncodingError carries the offending field and value alongside the error kind.
// Expected is set only for mismatches.
type EncodingError struct {
	Kind     error
	Field    string
	Value    string
	Expected string
}

func (e *EncodingError) Error() string {
	msg := fmt.Sprintf("%v: %q", e.Kind, e.Value)
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Expected != "" {
		msg += fmt.Sprintf(", expected %q", e.Expected)
	}
	return msg
}

func (e *EncodingError) Unwrap() error { return e.Kind }

func newError(kind error, field, value string) *EncodingError {
	return &EncodingError{Kind: kind, Field: field, Value: value}
}

// HashMismatch reports a locally computed hash that differs from the one a venue returned.
func HashMismatch(local, remote string) error {
	return &EncodingError{Kind: ErrHashMismatch, Field: "hash", Value: remote, Expected: local}
}

// SchemeMismatch reports a key of the wrong scheme handed to a signer.
func SchemeMismatch(want, got string) error {
	return &EncodingError{Kind: ErrSignatureSchemeMismatch, Field: "scheme", Value: got, Expected: want}
}
