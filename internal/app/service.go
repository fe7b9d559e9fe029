// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	repository "github.com/okian/lotus-ledger/internal/adapters/repository"
	"github.com/okian/lotus-ledger/internal/domain/model"
	"github.com/okian/lotus-ledger/pkg/logger"
	"github.com/okian/lotus-ledger/pkg/metrics"
)

// ErrNotStarted is returned by game operations before Start succeeds.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the game ledger.
type Service struct {
	mu sync.RWMutex

	store  repository.Store
	preset bool

	settings     repository.Settings
	maxListLimit int64

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore makes the service use an already opened store instead of
// opening one from its settings. The service still closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = repository.Instrument(store)
			s.preset = true
		}
	}
}

// WithSettings selects the store opened by Start.
func WithSettings(settings repository.Settings) Option {
	return func(s *Service) {
		s.settings = settings
	}
}

// WithMaxListLimit caps the page size of ListGames. Zero or less disables the cap.
func WithMaxListLimit(limit int64) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxListLimit = limit
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		settings: repository.Settings{Driver: repository.DriverMemory},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store and marks the service as serving.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}

	s.logger.Info(ctx, "starting game service...", logger.String("driver", s.driverName()))

	if s.store == nil {
		store, err := repository.Open(ctx, s.settings)
		if err != nil {
			metrics.UpdateStoreUp(false)
			return fmt.Errorf("open %s store: %w", s.settings.Driver, err)
		}
		s.store = store
	}
	metrics.UpdateStoreUp(true)

	s.started = true
	s.logger.Info(ctx, "game service started",
		logger.String("driver", s.store.Driver()),
		logger.Int64("maxListLimit", s.maxListLimit),
	)
	return nil
}

// Stop closes the store. It is safe to call more than once.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping game service...")

	var err error
	if s.store != nil {
		err = s.store.Close(ctx)
		if !s.preset {
			s.store = nil
		}
	}
	metrics.UpdateStoreUp(false)

	s.started = false
	if err != nil {
		s.logger.Error(ctx, "store close failed", logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "game service stopped")
	return nil
}

func (s *Service) driverName() string {
	if s.store != nil {
		return s.store.Driver()
	}
	return s.settings.Driver
}

// active returns the store while the service is started.
func (s *Service) active() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// CreateGame stores a new game. player1 and player2 are required; the other
// players default to model.DefaultScore.
func (s *Service) CreateGame(ctx context.Context, fields model.Fields) (model.Game, error) {
	if err := fields.ValidateCreate(); err != nil {
		return model.Game{}, err
	}
	store, err := s.active()
	if err != nil {
		return model.Game{}, err
	}
	g, err := store.Create(ctx, fields)
	if err != nil {
		s.logger.Error(ctx, "create game failed", logger.Error(err))
		return model.Game{}, err
	}
	metrics.RecordGameCreated()
	s.logger.Debug(ctx, "game created", logger.String("id", g.Hex()))
	return g, nil
}

// ListGames returns a window of games in insertion order. A limit above the
// configured maximum is clamped.
func (s *Service) ListGames(ctx context.Context, page model.Page) ([]model.Game, error) {
	store, err := s.active()
	if err != nil {
		return nil, err
	}
	if s.maxListLimit > 0 && (!page.Bounded() || page.Limit > s.maxListLimit) {
		page.Limit = s.maxListLimit
	}
	games, err := store.List(ctx, page)
	if err != nil {
		s.logger.Error(ctx, "list games failed", logger.Error(err))
		return nil, err
	}
	return games, nil
}

// GetGame returns one game by its hex id.
func (s *Service) GetGame(ctx context.Context, id string) (model.Game, error) {
	store, err := s.active()
	if err != nil {
		return model.Game{}, err
	}
	return store.Get(ctx, id)
}

// UpdateGame applies the supplied fields and returns the stored result.
func (s *Service) UpdateGame(ctx context.Context, id string, fields model.Fields) (model.Game, error) {
	store, err := s.active()
	if err != nil {
		return model.Game{}, err
	}
	g, err := store.Update(ctx, id, fields)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error(ctx, "update game failed", logger.String("id", id), logger.Error(err))
		}
		return model.Game{}, err
	}
	if !fields.Empty() {
		metrics.RecordGameUpdated()
	}
	return g, nil
}

// DeleteGame removes the game with the given id.
func (s *Service) DeleteGame(ctx context.Context, id string) error {
	store, err := s.active()
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, id); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error(ctx, "delete game failed", logger.String("id", id), logger.Error(err))
		}
		return err
	}
	metrics.RecordGameDeleted()
	s.logger.Debug(ctx, "game deleted", logger.String("id", id))
	return nil
}

// Ready reports whether the store answers a ping.
func (s *Service) Ready(ctx context.Context) error {
	store, err := s.active()
	if err != nil {
		return err
	}
	return store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	started := s.started
	store := s.store
	driver := s.driverName()
	s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      started,
		"driver":       driver,
		"maxListLimit": s.maxListLimit,
	}

	if started {
		total, err := store.Count(ctx)
		if err != nil {
			stats["totalGames"] = int64(-1)
			stats["storeError"] = "count failed"
		} else {
			stats["totalGames"] = total
			metrics.UpdateGamesTotal(total)
		}
	}

	return stats
}
