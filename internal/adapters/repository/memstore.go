package repository

import (
	"context"
	"sync"

	"github.com/okian/lotus-ledger/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process Store. Insertion order is the natural order.
type MemoryStore struct {
	mu     sync.RWMutex
	order  []primitive.ObjectID
	games  map[primitive.ObjectID]model.Game
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[primitive.ObjectID]model.Game),
	}
}

// Driver implements Store.
func (s *MemoryStore) Driver() string { return DriverMemory }

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, fields model.Fields) (model.Game, error) {
	g := model.NewGame(fields)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Game{}, storeError("create", errClosed)
	}
	// never hand out an id twice
	g.ID = model.NewID()
	for _, taken := s.games[g.ID]; taken; _, taken = s.games[g.ID] {
		g.ID = model.NewID()
	}
	s.games[g.ID] = g
	s.order = append(s.order, g.ID)
	return g, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, page model.Page) ([]model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storeError("list", errClosed)
	}
	start, end := page.Window(len(s.order))
	out := make([]model.Game, 0, end-start)
	for _, id := range s.order[start:end] {
		out = append(out, s.games[id])
	}
	return out, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (model.Game, error) {
	oid, err := model.ParseID(id)
	if err != nil {
		return model.Game{}, notFound("get", id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.Game{}, storeError("get", errClosed)
	}
	g, ok := s.games[oid]
	if !ok {
		return model.Game{}, notFound("get", id)
	}
	return g, nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, id string, fields model.Fields) (model.Game, error) {
	oid, err := model.ParseID(id)
	if err != nil {
		return model.Game{}, notFound("update", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Game{}, storeError("update", errClosed)
	}
	g, ok := s.games[oid]
	if !ok {
		return model.Game{}, notFound("update", id)
	}
	g.Apply(fields)
	s.games[oid] = g
	return g, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	oid, err := model.ParseID(id)
	if err != nil {
		return notFound("delete", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storeError("delete", errClosed)
	}
	if _, ok := s.games[oid]; !ok {
		return notFound("delete", id)
	}
	delete(s.games, oid)
	for i, cur := range s.order {
		if cur == oid {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, storeError("count", errClosed)
	}
	return int64(len(s.games)), nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return storeError("ping", errClosed)
	}
	return nil
}

// Close implements Store. Every call after Close fails with ErrStore.
func (s *MemoryStore) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
