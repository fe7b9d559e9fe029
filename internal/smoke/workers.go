package smoke

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/okian/lotus-ledger/pkg/logger"
)

// createGames posts every payload using a pool of workers and returns the
// games the server acknowledged, in no particular order.
func createGames(ctx context.Context, config *Config, client *HTTPClient, payloads []map[string]uint8, stats *Stats) []Game {
	logger.Get().Info(ctx, "creating games",
		logger.Int("games", len(payloads)),
		logger.Int("workers", config.Workers),
	)

	var (
		mu      sync.Mutex
		created = make([]Game, 0, len(payloads))
		failed  int64
		wg      sync.WaitGroup
	)

	jobs := make(chan map[string]uint8, config.Workers*WorkerChannelMultiplier)
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				var g Game
				if err := client.expect(ctx, http.MethodPost, "/games", p, http.StatusCreated, &g); err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						logger.Get().Warn(ctx, "create failed", logger.Error(err))
					}
					continue
				}
				if err := checkCreated(g, p); err != nil {
					atomic.AddInt64(&failed, 1)
					logger.Get().Warn(ctx, "created game mismatch", logger.Error(err))
					continue
				}
				mu.Lock()
				created = append(created, g)
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, p := range payloads {
			select {
			case <-ctx.Done():
				return
			case jobs <- p:
			}
		}
	}()

	wg.Wait()

	stats.GamesCreated = len(created)
	stats.CreateFailed = int(atomic.LoadInt64(&failed))
	return created
}

// deleteGames removes every game with the same worker layout as createGames.
func deleteGames(ctx context.Context, config *Config, client *HTTPClient, games []Game, stats *Stats) {
	var (
		deleted, failed int64
		wg              sync.WaitGroup
	)

	jobs := make(chan string, config.Workers*WorkerChannelMultiplier)
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if err := client.expect(ctx, http.MethodDelete, "/games/"+id, nil, http.StatusNoContent, nil); err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				atomic.AddInt64(&deleted, 1)
			}
		}()
	}

	for _, g := range games {
		jobs <- g.Hex()
	}
	close(jobs)
	wg.Wait()

	stats.GamesDeleted = int(deleted)
	stats.DeleteFailed = int(failed)
	logger.Get().Info(ctx, "cleanup finished",
		logger.Int("deleted", stats.GamesDeleted),
		logger.Int("failed", stats.DeleteFailed),
	)
	if stats.DeleteFailed > 0 {
		logger.Get().Warn(ctx, fmt.Sprintf("%d games could not be deleted", stats.DeleteFailed))
	}
}
