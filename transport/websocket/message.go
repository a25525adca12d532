package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/pegsolitaire-backend/internal/entity"
)

const (
	ActionConnect  = "connect"
	ActionNewGame  = "game:new"
	ActionRestart  = "game:restart"
	ActionMove     = "game:move"
	ActionHint     = "game:hint"
	ActionMoved    = "game:moved"
	ActionFinished = "game:finished"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	Player *entity.Player   `json:"player,omitempty"`
	From   *entity.Position `json:"from,omitempty"`
	To     *entity.Position `json:"to,omitempty"`
}

type ResponsePayload struct {
	Player *entity.Player `json:"player,omitempty"`
	Game   *entity.Game   `json:"game,omitempty"`
	Move   *entity.Move   `json:"move,omitempty"`
	Error  string         `json:"error,omitempty"`
}
