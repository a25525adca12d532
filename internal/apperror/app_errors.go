package apperror

import "errors"

var (
	ErrGameFinished  = errors.New("game is already finished")
	ErrIllegalMove   = errors.New("illegal move")
	ErrNoMoves       = errors.New("no legal moves left")
	ErrNoActiveGames = errors.New("no active games")
)
