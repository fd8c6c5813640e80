package domain

import "errors"

var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidInput indicates that the provided input data is invalid.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrForbidden indicates the caller is not allowed to perform the action.
	ErrForbidden = errors.New("action forbidden")
	// ErrRepository indicates a generic data persistence error.
	ErrRepository = errors.New("repository error")
	// ErrStorage indicates a failure in the object storage backend.
	ErrStorage = errors.New("object storage error")
)
