// Package render paints boards as PNG images.
package render

import (
	"fmt"
	"io"

	"github.com/gogpu/gg"

	"github.com/rocketscienceinc/pegsolitaire-backend/internal/config"
	"github.com/rocketscienceinc/pegsolitaire-backend/internal/entity"
)

const borderWidth = 1

type Painter struct {
	theme config.Theme
}

func NewPainter(theme config.Theme) *Painter {
	return &Painter{theme: theme}
}

// Size returns the width and height of a rendered board in pixels.
func (that *Painter) Size() int {
	return entity.BoardSize*that.theme.CellSize + (entity.BoardSize+1)*that.theme.Spacing
}

// CellOrigin returns the top-left pixel of the cell at pos.
func (that *Painter) CellOrigin(pos entity.Position) (float64, float64) {
	step := float64(that.theme.CellSize + that.theme.Spacing)
	offset := float64(that.theme.Spacing)

	return offset + float64(pos.X)*step, offset + float64(pos.Y)*step
}

// PNG writes the board to w. Playable holes get a light border; pegs fill their hole.
func (that *Painter) PNG(w io.Writer, board *entity.Board) error {
	size := that.Size()
	dc := gg.NewContext(size, size)
	defer dc.Close()

	dc.ClearWithColor(gg.Hex(that.theme.Background))

	cell := float64(that.theme.CellSize)
	inner := cell - 2*borderWidth

	for x := range entity.BoardSize {
		for y := range entity.BoardSize {
			pos := entity.Position{X: x, Y: y}
			state := board.At(pos)
			if state == entity.Invalid {
				continue
			}

			left, top := that.CellOrigin(pos)

			dc.SetHexColor(that.theme.Border)
			dc.DrawRectangle(left, top, cell, cell)
			if err := dc.Fill(); err != nil {
				return fmt.Errorf("failed to paint border at %s: %w", pos, err)
			}

			fill := that.theme.Background
			if state == entity.Peg {
				fill = that.theme.Peg
			}

			dc.SetHexColor(fill)
			dc.DrawRectangle(left+borderWidth, top+borderWidth, inner, inner)
			if err := dc.Fill(); err != nil {
				return fmt.Errorf("failed to paint cell at %s: %w", pos, err)
			}
		}
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}

	return nil
}
