package smoke

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/lotus-ledger/internal/domain/model"
	"github.com/okian/lotus-ledger/pkg/logger"
)

// checkCreated compares a created game with the payload that produced it.
func checkCreated(g Game, payload map[string]uint8) error {
	want := map[string]uint8{
		"player1": payload["player1"],
		"player2": payload["player2"],
		"player3": model.DefaultScore,
		"player4": model.DefaultScore,
	}
	if v, ok := payload["player3"]; ok {
		want["player3"] = v
	}
	if v, ok := payload["player4"]; ok {
		want["player4"] = v
	}
	got := map[string]uint8{
		"player1": g.Player1,
		"player2": g.Player2,
		"player3": g.Player3,
		"player4": g.Player4,
	}
	for k, v := range want {
		if got[k] != v {
			return fmt.Errorf("game %s: %s is %d, want %d", g.Hex(), k, got[k], v)
		}
	}
	if g.ID.IsZero() {
		return fmt.Errorf("game has no id")
	}
	return nil
}

// verifyListed checks that every created game appears in the full listing
// and that limit windows are honored.
func verifyListed(ctx context.Context, client *HTTPClient, created []Game, stats *Stats) error {
	logger.Get().Info(ctx, "verifying list")

	var all []Game
	if err := client.expect(ctx, http.MethodGet, "/games", nil, http.StatusOK, &all); err != nil {
		return err
	}
	stats.GamesListed = len(all)

	listed := make(map[string]Game, len(all))
	for _, g := range all {
		listed[g.Hex()] = g
	}
	for _, g := range created {
		got, ok := listed[g.Hex()]
		if !ok {
			return fmt.Errorf("game %s missing from list", g.Hex())
		}
		if got != g {
			return fmt.Errorf("game %s listed as %+v, created as %+v", g.Hex(), got, g)
		}
	}

	var window []Game
	if err := client.expect(ctx, http.MethodGet, "/games?limit=1", nil, http.StatusOK, &window); err != nil {
		return err
	}
	if len(all) > 0 && len(window) != 1 {
		return fmt.Errorf("limit=1 returned %d games", len(window))
	}

	var empty []Game
	if err := client.expect(ctx, http.MethodGet, "/games?limit=0", nil, http.StatusOK, &empty); err != nil {
		return err
	}
	if len(empty) != 0 {
		return fmt.Errorf("limit=0 returned %d games", len(empty))
	}
	return nil
}
