package solitaire

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/pegsolitaire-backend/internal/apperror"
	"github.com/rocketscienceinc/pegsolitaire-backend/internal/entity"
)

type State int

const (
	Ongoing State = iota
	Won
	Lost
)

var ErrNotAJump = errors.New("target is not two cells away in a straight line")

func (that State) String() string {
	switch that {
	case Won:
		return entity.StatusWon
	case Lost:
		return entity.StatusLost
	default:
		return entity.StatusOngoing
	}
}

// IsLegalMove reports whether the peg at from can jump in direction d.
func IsLegalMove(board *entity.Board, from entity.Position, d entity.Direction) bool {
	if !d.Valid() || board.At(from) != entity.Peg {
		return false
	}

	move := entity.Move{From: from, Direction: d}

	// At reports Invalid outside the grid, so bounds and corners are one check.
	if board.At(move.To()) != entity.Empty {
		return false
	}

	return board.At(move.Over()) == entity.Peg
}

// ApplyMove performs the jump without checking it. Callers validate with IsLegalMove first.
func ApplyMove(board *entity.Board, from entity.Position, d entity.Direction) {
	move := entity.Move{From: from, Direction: d}

	board.Set(move.From, entity.Empty)
	board.Set(move.Over(), entity.Empty)
	board.Set(move.To(), entity.Peg)
}

// LegalMoves lists every legal jump, scanning columns left to right and each column top to bottom.
func LegalMoves(board *entity.Board) []entity.Move {
	var moves []entity.Move

	for x := range entity.BoardSize {
		for y := range entity.BoardSize {
			from := entity.Position{X: x, Y: y}
			if board.At(from) != entity.Peg {
				continue
			}

			for _, d := range entity.Directions {
				if IsLegalMove(board, from, d) {
					moves = append(moves, entity.Move{From: from, Direction: d})
				}
			}
		}
	}

	return moves
}

// CheckGameState decides whether the game is won, lost or still going.
// A single peg away from the center counts as lost: nothing can move any more.
// So does an empty board.
func CheckGameState(board *entity.Board) State {
	pegs := board.PegCount()

	if pegs == 1 && board.At(entity.Center) == entity.Peg {
		return Won
	}

	if len(LegalMoves(board)) == 0 {
		return Lost
	}

	return Ongoing
}

// MoveFromDrop turns a drag from one cell to another into a jump direction.
func MoveFromDrop(from, to entity.Position) (entity.Direction, error) {
	dx, dy := to.X-from.X, to.Y-from.Y

	switch {
	case dy == 0 && (dx == 2 || dx == -2):
		return entity.Direction{DX: dx / 2}, nil
	case dx == 0 && (dy == 2 || dy == -2):
		return entity.Direction{DY: dy / 2}, nil
	default:
		return entity.Direction{}, fmt.Errorf("%w: %s to %s", ErrNotAJump, from, to)
	}
}

// MakeMove validates and plays a move on the game, then refreshes its status.
// Finished games are frozen.
func MakeMove(game *entity.Game, move entity.Move) error {
	if err := game.ConfirmOngoingState(); err != nil {
		return err
	}

	if !IsLegalMove(&game.Board, move.From, move.Direction) {
		return fmt.Errorf("%w: %s", apperror.ErrIllegalMove, move)
	}

	ApplyMove(&game.Board, move.From, move.Direction)

	game.Moves = append(game.Moves, move)
	game.PegCount = game.Board.PegCount()
	game.Status = CheckGameState(&game.Board).String()

	return nil
}
