package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/matryer/way"

	"github.com/rocketscienceinc/pegsolitaire-backend/internal/entity"
	"github.com/rocketscienceinc/pegsolitaire-backend/internal/repository"
)

type gameReader interface {
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	Results(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type painter interface {
	PNG(w io.Writer, board *entity.Board) error
}

type handlers struct {
	logger  *slog.Logger
	games   gameReader
	painter painter
}

// boardImage - GET /games/:id/board.png
func (that *handlers) boardImage(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "boardImage")

	game, err := that.games.GetGame(r.Context(), way.Param(r.Context(), "id"))
	if errors.Is(err, repository.ErrGameNotFound) {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get game", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err = that.painter.PNG(&buf, &game.Board); err != nil {
		log.Error("failed to render board", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err = buf.WriteTo(w); err != nil {
		log.Error("failed to write image", "error", err)
	}
}

// results - GET /players/:id/results?limit=N
func (that *handlers) results(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "results")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	results, err := that.games.Results(r.Context(), way.Param(r.Context(), "id"), limit)
	if err != nil {
		log.Error("failed to list results", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if results == nil {
		results = []*entity.Result{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(results); err != nil {
		log.Error("failed to encode results", "error", err)
	}
}
