package smoke

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/lotus-ledger/pkg/logger"
)

// Run executes the complete smoke test and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{
		StartTime: time.Now(),
	}
	if config.Workers < 1 {
		config.Workers = 1
	}

	logger.Get().Info(ctx, "starting lotus-ledger smoke test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("games", config.NumGames),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Bool("verbose", config.Verbose))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Single game lifecycle
	if err := runScenario(ctx, client, stats); err != nil {
		return stats, fmt.Errorf("scenario failed: %w", err)
	}

	// Step 3: Create games concurrently
	created := createGames(ctx, config, client, generatePayloads(config.NumGames), stats)
	if stats.CreateFailed > 0 {
		deleteGames(ctx, config, client, created, stats)
		return stats, fmt.Errorf("%d of %d creates failed", stats.CreateFailed, config.NumGames)
	}

	// Step 4: Verify the listing
	verifyErr := verifyListed(ctx, client, created, stats)

	// Step 5: Clean up
	if !config.Keep {
		deleteGames(ctx, config, client, created, stats)
	}
	if verifyErr != nil {
		return stats, fmt.Errorf("list verification failed: %w", verifyErr)
	}
	if stats.DeleteFailed > 0 {
		return stats, fmt.Errorf("%d deletes failed", stats.DeleteFailed)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "smoke test completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running and its store reachable.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")
	if err := client.expect(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, nil); err != nil {
		return err
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// runScenario walks one game through create, update, delete, a repeated
// delete and a final list.
func runScenario(ctx context.Context, client *HTTPClient, stats *Stats) error {
	step := func(err error) error {
		if err == nil {
			stats.ScenarioSteps++
		}
		return err
	}

	var g Game
	body := map[string]uint8{"player1": scenarioPlayer1, "player2": scenarioPlayer2}
	if err := step(client.expect(ctx, http.MethodPost, "/games", body, http.StatusCreated, &g)); err != nil {
		return err
	}
	if err := checkCreated(g, body); err != nil {
		return err
	}
	path := "/games/" + g.Hex()

	var updated Game
	if err := step(client.expect(ctx, http.MethodPut, path, map[string]uint8{"player1": scenarioUpdate}, http.StatusOK, &updated)); err != nil {
		return err
	}
	want := g
	want.Player1 = scenarioUpdate
	if updated != want {
		return fmt.Errorf("update returned %+v, want %+v", updated, want)
	}

	if err := step(client.expect(ctx, http.MethodDelete, path, nil, http.StatusNoContent, nil)); err != nil {
		return err
	}
	if err := step(client.expect(ctx, http.MethodDelete, path, nil, http.StatusNotFound, nil)); err != nil {
		return err
	}
	if err := step(client.expect(ctx, http.MethodGet, path, nil, http.StatusNotFound, nil)); err != nil {
		return err
	}

	var all []Game
	if err := step(client.expect(ctx, http.MethodGet, "/games", nil, http.StatusOK, &all)); err != nil {
		return err
	}
	for _, other := range all {
		if other.ID == g.ID {
			return fmt.Errorf("deleted game %s still listed", g.Hex())
		}
	}

	logger.Get().Info(ctx, "scenario passed", logger.Int("steps", stats.ScenarioSteps))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, gamesPerSecond float64

	attempted := stats.GamesCreated + stats.CreateFailed
	if attempted > 0 {
		successRate = float64(stats.GamesCreated) / float64(attempted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		gamesPerSecond = float64(attempted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("scenarioSteps", stats.ScenarioSteps),
		logger.Int("gamesCreated", stats.GamesCreated),
		logger.Int("createFailed", stats.CreateFailed),
		logger.Int("gamesListed", stats.GamesListed),
		logger.Int("gamesDeleted", stats.GamesDeleted),
		logger.Int("deleteFailed", stats.DeleteFailed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("gamesPerSecond", gamesPerSecond))
}
