package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for store errors.
var (
	// ErrNotFound reports that no game matched an identifier, including
	// identifiers that cannot be parsed at all.
	ErrNotFound = errors.New("game not found")
	// ErrStore reports that the storage collaborator failed (connect, read or write).
	ErrStore = errors.New("store failure")
	// ErrUnknownDriver reports an unsupported Settings.Driver.
	ErrUnknownDriver = errors.New("unknown store driver")

	errClosed = errors.New("store closed")
)

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

func notFound(op, id string) error {
	return fmt.Errorf("%s %q: %w", op, id, ErrNotFound)
}
