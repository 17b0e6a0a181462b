package store

import "errors"

var (
	// ErrCorrupt is returned when the data file does not match the document schema.
	ErrCorrupt = errors.New("data file is corrupted")

	// ErrUnchanged may be returned from an Update callback to skip the write.
	ErrUnchanged = errors.New("no changes")
)
