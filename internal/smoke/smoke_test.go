package smoke

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/lotus-ledger/internal/adapters/http/api"
	repository "github.com/okian/lotus-ledger/internal/adapters/repository"
	service "github.com/okian/lotus-ledger/internal/app"
	"github.com/okian/lotus-ledger/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := SetupLogging(&bytes.Buffer{}, false); err != nil {
		panic(err)
	}
}

// newServer starts an API server over a fresh memory store.
func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(service.WithStore(repository.NewMemoryStore()))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	srv := httptest.NewServer(api.RequestMiddleware(mux))
	t.Cleanup(func() {
		srv.Close()
		_ = svc.Stop(context.Background())
	})
	return srv
}

func TestRun(t *testing.T) {
	Convey("Given a running server", t, func() {
		srv := newServer(t)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When running the smoke test", func() {
			stats, err := Run(ctx, &Config{
				BaseURL:  srv.URL,
				NumGames: 25,
				Workers:  4,
				Timeout:  5 * time.Second,
			})

			Convey("Then every step succeeds and the store is left empty", func() {
				So(err, ShouldBeNil)
				So(stats.ScenarioSteps, ShouldEqual, 6)
				So(stats.GamesCreated, ShouldEqual, 25)
				So(stats.GamesListed, ShouldEqual, 25)
				So(stats.GamesDeleted, ShouldEqual, 25)

				client := newHTTPClient(srv.URL, time.Second)
				var games []Game
				So(client.expect(ctx, http.MethodGet, "/games", nil, http.StatusOK, &games), ShouldBeNil)
				So(len(games), ShouldEqual, 0)
			})
		})

		Convey("When keeping the created games", func() {
			stats, err := Run(ctx, &Config{BaseURL: srv.URL, NumGames: 3, Workers: 0, Timeout: 5 * time.Second, Keep: true})

			Convey("Then they remain listed", func() {
				So(err, ShouldBeNil)
				So(stats.GamesDeleted, ShouldEqual, 0)
				client := newHTTPClient(srv.URL, time.Second)
				var games []Game
				So(client.expect(ctx, http.MethodGet, "/games", nil, http.StatusOK, &games), ShouldBeNil)
				So(len(games), ShouldEqual, 3)
			})
		})
	})

	Convey("Given an unhealthy server", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		Convey("Then the run stops at the health check", func() {
			_, err := Run(context.Background(), &Config{BaseURL: srv.URL, NumGames: 1, Workers: 1, Timeout: time.Second})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})
}

func TestCheckCreated(t *testing.T) {
	Convey("Given a created game", t, func() {
		g := Game{ID: model.NewID(), Player1: 1, Player2: 2, Player3: 40, Player4: 40}

		Convey("Then omitted players must hold the default", func() {
			So(checkCreated(g, map[string]uint8{"player1": 1, "player2": 2}), ShouldBeNil)
		})

		Convey("Then supplied players must match", func() {
			err := checkCreated(g, map[string]uint8{"player1": 1, "player2": 2, "player3": 7})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "player3")
		})

		Convey("Then a zero id is rejected", func() {
			g.ID = [12]byte{}
			So(checkCreated(g, map[string]uint8{"player1": 1, "player2": 2}), ShouldNotBeNil)
		})
	})
}

func TestGeneratePayloads(t *testing.T) {
	Convey("Given generated payloads", t, func() {
		payloads := generatePayloads(4)

		Convey("Then every payload carries the required players", func() {
			So(len(payloads), ShouldEqual, 4)
			for i, p := range payloads {
				So(p, ShouldContainKey, "player1")
				So(p, ShouldContainKey, "player2")
				if i%2 == 1 {
					So(p, ShouldContainKey, "player4")
				} else {
					So(p, ShouldNotContainKey, "player3")
				}
			}
		})
	})
}

func TestShowHelp(t *testing.T) {
	Convey("Given the help text", t, func() {
		var sb strings.Builder
		ShowHelp(&sb)

		Convey("Then it documents every flag", func() {
			for _, flag := range []string{"-url", "-games", "-workers", "-timeout", "-keep", "-verbose"} {
				So(sb.String(), ShouldContainSubstring, flag)
			}
		})
	})
}
