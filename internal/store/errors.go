package store

import "errors"

var (
	// ErrDuplicateIdentity is returned when enrolling a name that is
	// already present. Names are compared in normalized form.
	ErrDuplicateIdentity = errors.New("identity already enrolled")

	// ErrUnknownIdentity is returned when looking up or deleting a name
	// that has no enrollment.
	ErrUnknownIdentity = errors.New("identity not enrolled")
)
