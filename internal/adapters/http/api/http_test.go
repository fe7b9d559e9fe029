package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/lotus-ledger/internal/adapters/http/api"
	repository "github.com/okian/lotus-ledger/internal/adapters/repository"
	service "github.com/okian/lotus-ledger/internal/app"
	"github.com/okian/lotus-ledger/internal/domain/model"
	"github.com/okian/lotus-ledger/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// failingDeps answers every call with a store fault.
type failingDeps struct{}

var errBoom = fmt.Errorf("list: %w: connection reset by peer", repository.ErrStore)

func (failingDeps) CreateGame(context.Context, model.Fields) (model.Game, error) {
	return model.Game{}, errBoom
}

func (failingDeps) ListGames(context.Context, model.Page) ([]model.Game, error) {
	return nil, errBoom
}

func (failingDeps) GetGame(context.Context, string) (model.Game, error) {
	return model.Game{}, errBoom
}

func (failingDeps) UpdateGame(context.Context, string, model.Fields) (model.Game, error) {
	return model.Game{}, errBoom
}

func (failingDeps) DeleteGame(context.Context, string) error { return errBoom }

func (failingDeps) Ready(context.Context) error { return errBoom }

func (failingDeps) GetStats(context.Context) map[string]interface{} {
	return map[string]interface{}{"started": false}
}

func newMux(t *testing.T, deps api.Dependencies) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	api.NewServer(deps).Register(context.Background(), mux)
	return mux
}

func newServiceMux(t *testing.T) *http.ServeMux {
	t.Helper()
	svc := service.New(service.WithStore(repository.NewMemoryStore()))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(func() { _ = svc.Stop(context.Background()) })
	return newMux(t, svc)
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeGame(w *httptest.ResponseRecorder) model.Game {
	var g model.Game
	So(json.Unmarshal(w.Body.Bytes(), &g), ShouldBeNil)
	return g
}

func decodeGames(w *httptest.ResponseRecorder) []model.Game {
	var games []model.Game
	So(json.Unmarshal(w.Body.Bytes(), &games), ShouldBeNil)
	return games
}

func TestGames_Scenario(t *testing.T) {
	Convey("Given an API backed by an empty memory store", t, func() {
		mux := newServiceMux(t)

		Convey("When running create, update, delete, delete, list", func() {
			created := do(mux, http.MethodPost, "/games", `{"player1":10,"player2":20}`)
			So(created.Code, ShouldEqual, http.StatusCreated)
			g := decodeGame(created)
			So(g.Player1, ShouldEqual, uint8(10))
			So(g.Player2, ShouldEqual, uint8(20))
			So(g.Player3, ShouldEqual, uint8(40))
			So(g.Player4, ShouldEqual, uint8(40))
			So(created.Header().Get("Location"), ShouldEqual, "/games/"+g.Hex())

			updated := do(mux, http.MethodPut, "/games/"+g.Hex(), `{"player1":35}`)
			So(updated.Code, ShouldEqual, http.StatusOK)
			u := decodeGame(updated)
			So(u.ID, ShouldEqual, g.ID)
			So(u.Player1, ShouldEqual, uint8(35))
			So(u.Player2, ShouldEqual, uint8(20))
			So(u.Player3, ShouldEqual, uint8(40))

			deleted := do(mux, http.MethodDelete, "/games/"+g.Hex(), "")
			So(deleted.Code, ShouldEqual, http.StatusNoContent)
			So(deleted.Body.Len(), ShouldEqual, 0)

			again := do(mux, http.MethodDelete, "/games/"+g.Hex(), "")
			So(again.Code, ShouldEqual, http.StatusNotFound)

			list := do(mux, http.MethodGet, "/games", "")
			So(list.Code, ShouldEqual, http.StatusOK)
			So(len(decodeGames(list)), ShouldEqual, 0)
		})

		Convey("When listing an empty collection", func() {
			w := do(mux, http.MethodGet, "/games", "")

			Convey("Then the body is an empty JSON array", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
			})
		})

		Convey("When creating a game with every player", func() {
			w := do(mux, http.MethodPost, "/games", `{"player1":1,"player2":2,"player3":3,"player4":4}`)

			Convey("Then the wire format uses _id as a hex string", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				var raw map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &raw), ShouldBeNil)
				id, ok := raw["_id"].(string)
				So(ok, ShouldBeTrue)
				So(len(id), ShouldEqual, 24)
				So(raw["player4"], ShouldEqual, float64(4))
			})

			Convey("And the game can be fetched by id", func() {
				g := decodeGame(w)
				got := do(mux, http.MethodGet, "/games/"+g.Hex(), "")
				So(got.Code, ShouldEqual, http.StatusOK)
				So(decodeGame(got), ShouldResemble, g)
			})
		})

		Convey("When paging through three games", func() {
			var ids []string
			for i := 1; i <= 3; i++ {
				w := do(mux, http.MethodPost, "/games", fmt.Sprintf(`{"player1":%d,"player2":0}`, i))
				So(w.Code, ShouldEqual, http.StatusCreated)
				ids = append(ids, decodeGame(w).Hex())
			}

			Convey("Then offset and limit select a window", func() {
				w := do(mux, http.MethodGet, "/games?offset=1&limit=1", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				games := decodeGames(w)
				So(len(games), ShouldEqual, 1)
				So(games[0].Hex(), ShouldEqual, ids[1])
			})

			Convey("Then limit zero yields an empty array", func() {
				w := do(mux, http.MethodGet, "/games?limit=0", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(decodeGames(w)), ShouldEqual, 0)
			})

			Convey("Then an offset past the end yields an empty array", func() {
				w := do(mux, http.MethodGet, "/games?offset=10", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(decodeGames(w)), ShouldEqual, 0)
			})

			Convey("Then an empty update returns the record unchanged", func() {
				w := do(mux, http.MethodPut, "/games/"+ids[0], `{}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decodeGame(w).Player1, ShouldEqual, uint8(1))
			})

			Convey("Then an explicit null leaves the field untouched", func() {
				w := do(mux, http.MethodPut, "/games/"+ids[2], `{"player1":null,"player2":9}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				g := decodeGame(w)
				So(g.Player1, ShouldEqual, uint8(3))
				So(g.Player2, ShouldEqual, uint8(9))
			})
		})
	})
}

func TestGames_BadInput(t *testing.T) {
	Convey("Given an API backed by a memory store", t, func() {
		mux := newServiceMux(t)
		malformed := "not-an-object-id"
		missing := model.NewID().Hex()

		cases := []struct {
			name   string
			method string
			path   string
			body   string
			status int
		}{
			{"create with invalid JSON", http.MethodPost, "/games", `{"player1":`, http.StatusBadRequest},
			{"create with an out of range score", http.MethodPost, "/games", `{"player1":256,"player2":1}`, http.StatusBadRequest},
			{"create with a negative score", http.MethodPost, "/games", `{"player1":-1,"player2":1}`, http.StatusBadRequest},
			{"create with a string score", http.MethodPost, "/games", `{"player1":"7","player2":1}`, http.StatusBadRequest},
			{"create without player2", http.MethodPost, "/games", `{"player1":1}`, http.StatusBadRequest},
			{"list with a negative offset", http.MethodGet, "/games?offset=-1", "", http.StatusBadRequest},
			{"list with a textual limit", http.MethodGet, "/games?limit=ten", "", http.StatusBadRequest},
			{"get a malformed id", http.MethodGet, "/games/" + malformed, "", http.StatusNotFound},
			{"get a missing id", http.MethodGet, "/games/" + missing, "", http.StatusNotFound},
			{"update a malformed id", http.MethodPut, "/games/" + malformed, `{"player1":1}`, http.StatusNotFound},
			{"update a missing id", http.MethodPut, "/games/" + missing, `{"player1":1}`, http.StatusNotFound},
			{"update with invalid JSON", http.MethodPut, "/games/" + missing, `[`, http.StatusBadRequest},
			{"delete a malformed id", http.MethodDelete, "/games/" + malformed, "", http.StatusNotFound},
			{"delete a missing id", http.MethodDelete, "/games/" + missing, "", http.StatusNotFound},
			{"patch a game", http.MethodPatch, "/games/" + missing, `{}`, http.StatusMethodNotAllowed},
		}

		for _, tc := range cases {
			Convey("When sending "+tc.name, func() {
				w := do(mux, tc.method, tc.path, tc.body)

				Convey(fmt.Sprintf("Then the status is %d", tc.status), func() {
					So(w.Code, ShouldEqual, tc.status)
				})
			})
		}

		Convey("When a 404 is returned", func() {
			w := do(mux, http.MethodDelete, "/games/"+missing, "")

			Convey("Then the body carries a not_found code", func() {
				var body map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["code"], ShouldEqual, "not_found")
			})
		})
	})
}

func TestGames_StoreFailure(t *testing.T) {
	Convey("Given an API whose store always fails", t, func() {
		mux := newMux(t, failingDeps{})
		id := model.NewID().Hex()

		Convey("Then every game operation answers 500 without leaking the cause", func() {
			for _, w := range []*httptest.ResponseRecorder{
				do(mux, http.MethodGet, "/games", ""),
				do(mux, http.MethodPost, "/games", `{"player1":1,"player2":2}`),
				do(mux, http.MethodGet, "/games/"+id, ""),
				do(mux, http.MethodPut, "/games/"+id, `{"player1":1}`),
				do(mux, http.MethodDelete, "/games/"+id, ""),
			} {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, "internal_error")
				So(w.Body.String(), ShouldNotContainSubstring, "connection reset")
			}
		})

		Convey("Then the health check reports unavailable", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestServer_Operational(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newServiceMux(t)

		Convey("Then /healthz reports the store as up", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"store":"up"`)
		})

		Convey("Then /stats returns service statistics", func() {
			do(mux, http.MethodPost, "/games", `{"player1":1,"player2":2}`)
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["started"], ShouldEqual, true)
			So(stats["totalGames"], ShouldEqual, float64(1))
		})

		Convey("Then /metrics exposes the custom registry", func() {
			do(mux, http.MethodGet, "/games", "")
			w := do(mux, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "lotus_ledger_http_requests_total")
		})

		Convey("Then an unknown path is not found", func() {
			w := do(mux, http.MethodGet, "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a nil mux", t, func() {
		Convey("Then Register panics", func() {
			So(func() {
				api.NewServer(failingDeps{}).Register(context.Background(), nil)
			}, ShouldPanic)
		})
	})
}

func TestRequestMiddleware(t *testing.T) {
	Convey("Given a handler behind the request middleware", t, func() {
		var seen string
		h := api.RequestMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = logger.RequestID(r.Context())
			w.WriteHeader(http.StatusTeapot)
		}))

		Convey("When the caller sends no request id", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

			Convey("Then one is generated and echoed", func() {
				So(w.Code, ShouldEqual, http.StatusTeapot)
				So(seen, ShouldNotBeEmpty)
				So(w.Header().Get(api.HeaderRequestID), ShouldEqual, seen)
			})
		})

		Convey("When the caller sends a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.Header.Set(api.HeaderRequestID, "abc-123")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is propagated unchanged", func() {
				So(seen, ShouldEqual, "abc-123")
				So(w.Header().Get(api.HeaderRequestID), ShouldEqual, "abc-123")
			})
		})
	})
}

func TestError(t *testing.T) {
	Convey("Given API errors", t, func() {
		cause := errors.New("unexpected EOF")

		Convey("Then WrapKind matches both kind and cause", func() {
			err := api.WrapKind("api.create_game", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.create_game: bad request: unexpected EOF")
		})

		Convey("Then NewKind carries only the kind", func() {
			err := api.NewKind("api.list_games", api.ErrBadRequest)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.list_games: bad request")
		})

		Convey("Then Wrap keeps the cause reachable", func() {
			err := api.Wrap("api.delete_game", repository.ErrNotFound)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeFalse)
		})
	})
}
