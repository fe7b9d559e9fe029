// Command seed inserts one game with every player at the default score
// into the configured store and prints its id.
package main

import (
	"context"
	"os"

	repository "github.com/okian/lotus-ledger/internal/adapters/repository"
	"github.com/okian/lotus-ledger/internal/config"
	"github.com/okian/lotus-ledger/internal/domain/model"
	"github.com/okian/lotus-ledger/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	g, err := seed(ctx, cfg.StoreSettings())
	if err != nil {
		logger.Get().Error(ctx, "seed failed", logger.Error(err))
		os.Exit(1)
	}
	logger.Get().Info(ctx, "inserted default game",
		logger.String("id", g.Hex()),
		logger.String("driver", cfg.StoreDriver),
	)
}

// seed opens the store, inserts model.DefaultGame and closes the store.
func seed(ctx context.Context, settings repository.Settings) (model.Game, error) {
	store, err := repository.Open(ctx, settings, repository.WithLogger(logger.Named("seed")))
	if err != nil {
		return model.Game{}, err
	}
	defer func() { _ = store.Close(context.Background()) }()

	d := model.DefaultGame()
	return store.Create(ctx, model.Fields{
		Player1: model.Some(d.Player1),
		Player2: model.Some(d.Player2),
		Player3: model.Some(d.Player3),
		Player4: model.Some(d.Player4),
	})
}
