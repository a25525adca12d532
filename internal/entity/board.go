package entity

import (
	"errors"
	"fmt"
)

// BoardSize is the width and height of the cross-shaped board.
const BoardSize = 7

type Cell uint8

const (
	Invalid Cell = iota
	Empty
	Peg
)

var ErrUnknownCell = errors.New("unknown cell")

func (that Cell) String() string {
	switch that {
	case Empty:
		return "empty"
	case Peg:
		return "peg"
	default:
		return "invalid"
	}
}

func (that Cell) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Cell) UnmarshalText(text []byte) error {
	switch string(text) {
	case "empty":
		*that = Empty
	case "peg":
		*that = Peg
	case "invalid":
		*that = Invalid
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCell, text)
	}

	return nil
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Center is the only hole that starts empty and the only place a winning peg may end.
var Center = Position{X: 3, Y: 3}

func (that Position) Add(d Direction) Position {
	return Position{X: that.X + d.DX, Y: that.Y + d.DY}
}

func (that Position) InBounds() bool {
	return that.X >= 0 && that.X < BoardSize && that.Y >= 0 && that.Y < BoardSize
}

func (that Position) String() string {
	return fmt.Sprintf("(%d,%d)", that.X, that.Y)
}

type Direction struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

var (
	Up    = Direction{DX: 0, DY: -1}
	Down  = Direction{DX: 0, DY: 1}
	Left  = Direction{DX: -1, DY: 0}
	Right = Direction{DX: 1, DY: 0}

	Directions = [4]Direction{Down, Up, Right, Left}
)

// Valid reports whether d is one of the four orthogonal unit vectors.
func (that Direction) Valid() bool {
	for _, d := range Directions {
		if d == that {
			return true
		}
	}

	return false
}

// Move is a jump of the peg at From over its neighbour in Direction.
type Move struct {
	From      Position  `json:"from"`
	Direction Direction `json:"direction"`
}

// Over returns the cell that is jumped over.
func (that Move) Over() Position {
	return that.From.Add(that.Direction)
}

// To returns the landing cell.
func (that Move) To() Position {
	return that.Over().Add(that.Direction)
}

func (that Move) String() string {
	return fmt.Sprintf("%s->%s", that.From, that.To())
}

// Board is indexed as [x][y].
type Board [BoardSize][BoardSize]Cell

// NewBoard returns the English starting position: every playable hole holds a peg except the center.
func NewBoard() Board {
	var board Board

	for x := range BoardSize {
		for y := range BoardSize {
			pos := Position{X: x, Y: y}
			switch {
			case IsCorner(pos):
				board[x][y] = Invalid
			case pos == Center:
				board[x][y] = Empty
			default:
				board[x][y] = Peg
			}
		}
	}

	return board
}

// IsCorner reports whether pos lies in one of the four 2x2 blocks cut out of the square.
func IsCorner(pos Position) bool {
	return (pos.X < 2 || pos.X >= 5) && (pos.Y < 2 || pos.Y >= 5)
}

// At returns Invalid for positions outside the grid.
func (that *Board) At(pos Position) Cell {
	if !pos.InBounds() {
		return Invalid
	}

	return that[pos.X][pos.Y]
}

// Set changes a playable cell. Corners and positions outside the grid are left alone.
func (that *Board) Set(pos Position, cell Cell) {
	if !pos.InBounds() || IsCorner(pos) {
		return
	}

	that[pos.X][pos.Y] = cell
}

func (that *Board) PegCount() int {
	count := 0
	for x := range BoardSize {
		for y := range BoardSize {
			if that[x][y] == Peg {
				count++
			}
		}
	}

	return count
}
