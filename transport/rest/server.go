package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/matryer/way"
)

const shutdownTimeout = 5 * time.Second

// NewRouter builds the HTTP routes: health check, board images and result history.
func NewRouter(logger *slog.Logger, games gameReader, painter painter) http.Handler {
	h := &handlers{
		logger:  logger.With("component", "rest"),
		games:   games,
		painter: painter,
	}

	router := way.NewRouter()
	router.HandleFunc(http.MethodGet, "/ping", pingHandler)
	router.HandleFunc(http.MethodGet, "/games/:id/board.png", h.boardImage)
	router.HandleFunc(http.MethodGet, "/players/:id/results", h.results)

	return router
}

// Start serves handler on port until ctx is done.
func Start(ctx context.Context, logger *slog.Logger, port string, handler http.Handler) error {
	log := logger.With("component", "rest", "method", "Start")

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
