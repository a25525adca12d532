package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/pegsolitaire-backend/internal/entity"
)

const writeTimeout = 10 * time.Second

// session is one client connection. Once bound to a player it receives that player's moves.
type session struct {
	logger *slog.Logger
	conn   *websocket.Conn

	writeMu sync.Mutex

	playerID    string
	unsubscribe func()
}

func newSession(logger *slog.Logger, conn *websocket.Conn) *session {
	return &session{
		logger: logger,
		conn:   conn,
	}
}

func (that *session) send(action string, payload ResponsePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.conn.WriteJSON(Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *session) OnMove(game *entity.Game, move entity.Move) {
	if err := that.send(ActionMoved, ResponsePayload{Game: game, Move: &move}); err != nil {
		that.logger.Error("failed to push move", "error", err)
	}
}

func (that *session) OnGameFinished(game *entity.Game) {
	if err := that.send(ActionFinished, ResponsePayload{Game: game}); err != nil {
		that.logger.Error("failed to push game end", "error", err)
	}
}

// bind ties the session to a player, dropping any earlier subscription.
func (that *session) bind(playerID string, unsubscribe func()) {
	that.release()
	that.playerID = playerID
	that.unsubscribe = unsubscribe
}

func (that *session) release() {
	if that.unsubscribe != nil {
		that.unsubscribe()
		that.unsubscribe = nil
	}
}
