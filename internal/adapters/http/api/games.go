package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	repository "github.com/okian/lotus-ledger/internal/adapters/repository"
	"github.com/okian/lotus-ledger/internal/domain/model"
	"github.com/okian/lotus-ledger/pkg/logger"
)

// maxBodyBytes bounds create and update payloads.
const maxBodyBytes = 1 << 20

// GameDependencies defines the game operations the handlers call.
type GameDependencies interface {
	CreateGame(ctx context.Context, fields model.Fields) (model.Game, error)
	ListGames(ctx context.Context, page model.Page) ([]model.Game, error)
	GetGame(ctx context.Context, id string) (model.Game, error)
	UpdateGame(ctx context.Context, id string, fields model.Fields) (model.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

// GamesHandler handles the /games resource.
type GamesHandler struct {
	deps   GameDependencies
	logger logger.Logger
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GameDependencies) *GamesHandler {
	return &GamesHandler{
		deps:   deps,
		logger: logger.Named("api"),
	}
}

// HandleList handles GET /games?offset=N&limit=M requests.
func (h *GamesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_games"
	page, err := parsePage(r)
	if err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	games, err := h.deps.ListGames(r.Context(), page)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// HandleCreate handles POST /games requests.
func (h *GamesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_game"
	fields, err := decodeFields(w, r)
	if err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := fields.ValidateCreate(); err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	g, err := h.deps.CreateGame(r.Context(), fields)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/games/"+g.Hex())
	writeJSON(w, http.StatusCreated, g)
}

// HandleGet handles GET /games/{id} requests.
func (h *GamesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_game"
	g, err := h.deps.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// HandleUpdate handles PUT /games/{id} requests. Only the supplied player
// fields change.
func (h *GamesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_game"
	fields, err := decodeFields(w, r)
	if err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	g, err := h.deps.UpdateGame(r.Context(), r.PathValue("id"), fields)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// HandleDelete handles DELETE /games/{id} requests.
func (h *GamesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_game"
	if err := h.deps.DeleteGame(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps err to a status code. Store faults are logged and answered with
// a generic message.
func (h *GamesHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", repository.ErrNotFound)
	default:
		h.logger.Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", ErrInternal)
	}
}

func decodeFields(w http.ResponseWriter, r *http.Request) (model.Fields, error) {
	var fields model.Fields
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return model.Fields{}, err
	}
	return fields, nil
}

var (
	errBadOffset = errors.New("offset must be a non-negative integer")
	errBadLimit  = errors.New("limit must be a non-negative integer")
)

// parsePage reads the offset and limit query parameters. Missing values
// mean from the start and without a limit.
func parsePage(r *http.Request) (model.Page, error) {
	page := model.AllPages()
	q := r.URL.Query()
	if v := q.Get("offset"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return model.Page{}, errBadOffset
		}
		page.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return model.Page{}, errBadLimit
		}
		page.Limit = n
	}
	return page, nil
}
