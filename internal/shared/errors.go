package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the caller lacks access to the record.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated indicates no identity is attached to the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrDuplicate indicates a uniqueness conflict.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates a rejected input.
	ErrValidation = errors.New("validation failed")
)
