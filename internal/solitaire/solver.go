package solitaire

import (
	"context"

	"github.com/rocketscienceinc/pegsolitaire-backend/internal/entity"
)

// DefaultSearchLimit bounds how many dead positions Solve remembers before giving up.
// The opening position is solved well inside it.
const DefaultSearchLimit = 20_000

type solver struct {
	ctx   context.Context
	dead  map[uint64]struct{}
	path  []entity.Move
	limit int
}

// Solve searches for a move sequence that leaves a single peg on the center.
// The board is not modified.
func Solve(ctx context.Context, board entity.Board) ([]entity.Move, bool) {
	return SolveWithin(ctx, board, DefaultSearchLimit)
}

// SolveWithin is Solve with an explicit bound on the search. It reports false
// for unsolvable boards, when the bound is reached first and when ctx is done.
func SolveWithin(ctx context.Context, board entity.Board, limit int) ([]entity.Move, bool) {
	s := &solver{ctx: ctx, dead: make(map[uint64]struct{}), limit: limit}

	if !s.search(&board) {
		return nil, false
	}

	return s.path, true
}

func (that *solver) search(board *entity.Board) bool {
	switch CheckGameState(board) {
	case Won:
		return true
	case Lost:
		return false
	case Ongoing:
	}

	if that.ctx.Err() != nil {
		return false
	}

	key := pegMask(board)
	if _, ok := that.dead[key]; ok || len(that.dead) >= that.limit {
		return false
	}

	for _, move := range LegalMoves(board) {
		next := *board
		ApplyMove(&next, move.From, move.Direction)

		that.path = append(that.path, move)
		if that.search(&next) {
			return true
		}
		that.path = that.path[:len(that.path)-1]

		if that.ctx.Err() != nil {
			return false
		}
	}

	that.dead[key] = struct{}{}

	return false
}

func pegMask(board *entity.Board) uint64 {
	var mask uint64

	for x := range entity.BoardSize {
		for y := range entity.BoardSize {
			if board[x][y] == entity.Peg {
				mask |= 1 << uint(x*entity.BoardSize+y)
			}
		}
	}

	return mask
}
