package smoke

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/lotus-ledger/pkg/logger"
)

// SetupLogging initializes the global logger for the smoke tool, writing to
// out (stdout when nil). Verbose runs log at debug level.
func SetupLogging(out io.Writer, verbose bool) error {
	if out == nil {
		out = os.Stdout
	}
	if err := logger.InitWithOptions(logger.Options{Output: out}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `lotus-ledger smoke test
=======================

Exercises a running server: health check, a single game lifecycle
(create, update, delete, repeated delete, list), concurrent creates,
list verification and cleanup.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:3000")
  -games int
        Number of games created concurrently (default 100)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -keep
        Leave the created games in place
  -verbose
        Enable verbose logging
  -help
        Show this help message
`)
}
