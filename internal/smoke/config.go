// Package smoke drives a running lotus-ledger server through its CRUD
// surface and checks the answers.
package smoke

import (
	"time"

	"github.com/okian/lotus-ledger/internal/domain/model"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL  string        // Base URL of the service
	NumGames int           // Number of games created concurrently
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Keep     bool          // Leave the created games in place
	Verbose  bool          // Enable verbose logging
}

// Game is the wire shape returned by the service.
type Game = model.Game

// Stats holds run statistics.
type Stats struct {
	GamesCreated  int
	CreateFailed  int
	GamesListed   int
	GamesDeleted  int
	DeleteFailed  int
	ScenarioSteps int
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
