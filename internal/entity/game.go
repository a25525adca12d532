package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/pegsolitaire-backend/internal/apperror"
)

const (
	StatusOngoing = "ongoing"
	StatusWon     = "won"
	StatusLost    = "lost"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

type Game struct {
	ID       string `json:"id"`
	PlayerID string `json:"player_id,omitempty"`
	Board    Board  `json:"board"`
	Status   string `json:"status"`
	PegCount int    `json:"peg_count"`
	Moves    []Move `json:"moves,omitempty"`
}

func NewGame(id, playerID string) *Game {
	board := NewBoard()

	return &Game{
		ID:       id,
		PlayerID: playerID,
		Board:    board,
		Status:   StatusOngoing,
		PegCount: board.PegCount(),
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusWon || that.Status == StatusLost
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

// Result is the archived outcome of a finished game.
type Result struct {
	GameID     string    `json:"game_id"`
	PlayerID   string    `json:"player_id"`
	Status     string    `json:"status"`
	PegsLeft   int       `json:"pegs_left"`
	Moves      int       `json:"moves"`
	FinishedAt time.Time `json:"finished_at"`
}

func NewResult(game *Game, finishedAt time.Time) *Result {
	return &Result{
		GameID:     game.ID,
		PlayerID:   game.PlayerID,
		Status:     game.Status,
		PegsLeft:   game.PegCount,
		Moves:      len(game.Moves),
		FinishedAt: finishedAt,
	}
}
