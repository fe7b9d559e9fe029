package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/lotus-ledger/internal/domain/model"
	"github.com/okian/lotus-ledger/pkg/logger"
	"github.com/okian/lotus-ledger/pkg/metrics"
)

// instrumented decorates a Store with per-operation metrics and debug logs.
type instrumented struct {
	next   Store
	logger logger.Logger
}

// Instrument wraps next so every call is timed and counted by outcome.
func Instrument(next Store, opts ...Option) Store {
	if _, ok := next.(*instrumented); ok {
		return next
	}
	o := buildOptions(opts)
	return &instrumented{next: next, logger: o.logger}
}

func (s *instrumented) observe(ctx context.Context, op string, start time.Time, err error) {
	result := metrics.ResultOK
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		result = metrics.ResultNotFound
	default:
		result = metrics.ResultError
		metrics.RecordErrorByComponent("repository", op)
	}
	elapsed := metrics.Since(start)
	metrics.RecordStoreOperation(s.next.Driver(), op, result, elapsed)
	s.logger.Debug(ctx, "store operation",
		logger.String("driver", s.next.Driver()),
		logger.String("operation", op),
		logger.String("result", result),
		logger.Float64("latencyMs", elapsed),
	)
}

func (s *instrumented) Driver() string { return s.next.Driver() }

func (s *instrumented) Create(ctx context.Context, fields model.Fields) (model.Game, error) {
	start := time.Now()
	g, err := s.next.Create(ctx, fields)
	s.observe(ctx, "create", start, err)
	return g, err
}

func (s *instrumented) List(ctx context.Context, page model.Page) ([]model.Game, error) {
	start := time.Now()
	games, err := s.next.List(ctx, page)
	s.observe(ctx, "list", start, err)
	return games, err
}

func (s *instrumented) Get(ctx context.Context, id string) (model.Game, error) {
	start := time.Now()
	g, err := s.next.Get(ctx, id)
	s.observe(ctx, "get", start, err)
	return g, err
}

func (s *instrumented) Update(ctx context.Context, id string, fields model.Fields) (model.Game, error) {
	start := time.Now()
	g, err := s.next.Update(ctx, id, fields)
	s.observe(ctx, "update", start, err)
	return g, err
}

func (s *instrumented) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.next.Delete(ctx, id)
	s.observe(ctx, "delete", start, err)
	return err
}

func (s *instrumented) Count(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := s.next.Count(ctx)
	s.observe(ctx, "count", start, err)
	return n, err
}

func (s *instrumented) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	s.observe(ctx, "ping", start, err)
	metrics.UpdateStoreUp(err == nil)
	return err
}

func (s *instrumented) Close(ctx context.Context) error {
	return s.next.Close(ctx)
}
