package archive

import "errors"

var (
	// ErrNotFound indicates the item does not exist in the archive.
	ErrNotFound = errors.New("item not found")

	// ErrUnavailable indicates a transport failure or server-side error.
	// Callers may retry these; other errors are permanent.
	ErrUnavailable = errors.New("archive unavailable")
)
