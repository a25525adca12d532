package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMissingCells = errors.New("from and to are required")

func decodePayload(msg *Message) (RequestPayload, error) {
	var payload RequestPayload
	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}

func (that *Server) handleConnect(ctx context.Context, s *session, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	var playerID string
	if payload.Player != nil {
		playerID = payload.Player.ID
	}

	player, err := that.game.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to get or create player: %w", err)
	}

	s.bind(player.ID, that.game.Subscribe(player.ID, s))

	that.logger.Info("Player connected", "player_id", player.ID, "new", playerID != player.ID)

	return s.send(msg.Action, ResponsePayload{Player: player})
}

func (that *Server) handleNewGame(ctx context.Context, s *session, msg *Message) error {
	if s.playerID == "" {
		return ErrNotConnected
	}

	game, err := that.game.GetOrCreateGame(ctx, s.playerID)
	if err != nil {
		return fmt.Errorf("failed to get or create game: %w", err)
	}

	return s.send(msg.Action, ResponsePayload{Game: game})
}

func (that *Server) handleRestart(ctx context.Context, s *session, msg *Message) error {
	if s.playerID == "" {
		return ErrNotConnected
	}

	game, err := that.game.RestartGame(ctx, s.playerID)
	if err != nil {
		return fmt.Errorf("failed to restart game: %w", err)
	}

	return s.send(msg.Action, ResponsePayload{Game: game})
}

// handleMove - a refused drop is answered with an error and the connection stays open.
func (that *Server) handleMove(ctx context.Context, s *session, msg *Message) error {
	if s.playerID == "" {
		return ErrNotConnected
	}

	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payload.From == nil || payload.To == nil {
		return ErrMissingCells
	}

	game, err := that.game.MakeMove(ctx, s.playerID, *payload.From, *payload.To)
	if err != nil {
		return err
	}

	return s.send(msg.Action, ResponsePayload{Game: game})
}

func (that *Server) handleHint(ctx context.Context, s *session, msg *Message) error {
	if s.playerID == "" {
		return ErrNotConnected
	}

	move, err := that.game.Hint(ctx, s.playerID)
	if err != nil {
		return err
	}

	return s.send(msg.Action, ResponsePayload{Move: &move})
}
