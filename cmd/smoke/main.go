package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/lotus-ledger/internal/smoke"
)

// Default configuration constants.
const (
	defaultNumGames    = 100
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 10 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:3000", "Base URL of the service")
		numGames = flag.Int("games", defaultNumGames, "Number of games created concurrently")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		keep     = flag.Bool("keep", false, "Leave the created games in place")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp(os.Stdout)
		return
	}

	if err := smoke.SetupLogging(os.Stdout, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultTestTimeout)
	defer cancel()

	config := &smoke.Config{
		BaseURL:  *baseURL,
		NumGames: *numGames,
		Workers:  *workers,
		Timeout:  *timeout,
		Keep:     *keep,
		Verbose:  *verbose,
	}

	if _, err := smoke.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Smoke test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
