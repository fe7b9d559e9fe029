// Package repository defines the game store interface, its errors and the
// mongo, SQL and in-memory implementations.
package repository

import (
	"context"

	"github.com/okian/lotus-ledger/internal/domain/model"
)

// Store provides read/write access to the game collection.
type Store interface {
	// Create persists a new game built from fields (defaults applied) and
	// returns the record as read back from the store.
	Create(ctx context.Context, fields model.Fields) (model.Game, error)

	// List returns games in the store's natural order, windowed by page.
	// The result is never nil.
	List(ctx context.Context, page model.Page) ([]model.Game, error)

	// Get returns one game. Returns ErrNotFound for unknown or malformed ids.
	Get(ctx context.Context, id string) (model.Game, error)

	// Update applies the set slots of fields and returns the updated game.
	// Returns ErrNotFound for unknown or malformed ids.
	Update(ctx context.Context, id string, fields model.Fields) (model.Game, error)

	// Delete removes a game. Returns ErrNotFound when nothing was deleted.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored games.
	Count(ctx context.Context) (int64, error)

	// Ping checks that the storage collaborator is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close(ctx context.Context) error

	// Driver names the backing implementation, e.g. "mongo".
	Driver() string
}
