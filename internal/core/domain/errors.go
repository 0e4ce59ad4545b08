package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrUnknownCity is returned when a write references a city that does not exist.
	ErrUnknownCity = errors.New("city does not exist")
)
