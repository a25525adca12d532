package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/pegsolitaire-backend/internal/entity"
	"github.com/rocketscienceinc/pegsolitaire-backend/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrNotConnected  = errors.New("connect first")
)

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)
	GetOrCreateGame(ctx context.Context, playerID string) (*entity.Game, error)
	RestartGame(ctx context.Context, playerID string) (*entity.Game, error)
	MakeMove(ctx context.Context, playerID string, from, to entity.Position) (*entity.Game, error)
	Hint(ctx context.Context, playerID string) (entity.Move, error)
	Subscribe(playerID string, listener usecase.MoveListener) func()
}

type handlerFunc func(ctx context.Context, s *session, msg *Message) error

type Server struct {
	logger   *slog.Logger
	game     gameUseCase
	upgrader websocket.Upgrader
	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, game gameUseCase) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		game:   game,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	server.handlers = map[string]handlerFunc{
		ActionConnect: server.handleConnect,
		ActionNewGame: server.handleNewGame,
		ActionRestart: server.handleRestart,
		ActionMove:    server.handleMove,
		ActionHint:    server.handleHint,
	}

	return server
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", that)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// ServeHTTP upgrades the connection and serves messages until the client goes away.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP", "remote", req.RemoteAddr)

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	s := newSession(log, conn)
	defer s.release()

	log.Info("WebSocket connection established")

	that.handleMessages(req.Context(), s)

	log.Info("WebSocket connection closed", "player_id", s.playerID)
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, s *session) {
	log := that.logger.With("method", "handleMessages")

	for {
		var message Message
		if err := s.conn.ReadJSON(&message); err != nil {
			var (
				syntaxErr *json.SyntaxError
				typeErr   *json.UnmarshalTypeError
			)
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				log.Error("failed to unmarshal message", "error", err)
				continue
			}

			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("error reading message", "error", err)
			}

			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			that.replyError(s, message.Action, fmt.Errorf("%w: %q", ErrUnknownAction, message.Action))
			continue
		}

		if err := handler(ctx, s, &message); err != nil {
			log.Debug("request refused", "action", message.Action, "error", err)
			that.replyError(s, message.Action, err)
		}
	}
}

func (that *Server) replyError(s *session, action string, cause error) {
	if err := s.send(action, ResponsePayload{Error: cause.Error()}); err != nil {
		that.logger.Error("failed to send error", "error", err)
	}
}
