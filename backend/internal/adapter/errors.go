package adapter

import (
	"errors"
)

var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned when a resource with the same name already exists.
	ErrConflict = errors.New("resource already exists")

	// ErrForbidden is returned when the caller may not modify the resource.
	ErrForbidden = errors.New("forbidden")
)
