// Package colorgrid holds the color grid sub-store: a rectangular-ish matrix
// of cell colors replaced by Grid messages and patched by GridUpdate messages.
package colorgrid

import (
	"fmt"

	"github.com/roach88/devlink/internal/colorpanel"
	"github.com/roach88/devlink/internal/protocol"
)

// Grid is a color grid addressed [row][column]. Rows may differ in length.
type Grid struct {
	cells  [][]string
	sender protocol.Sender
}

// Empty returns the grid in place before the first Grid message. It has no
// cells, so every patch against it is out of range.
func Empty(sender protocol.Sender) *Grid {
	return &Grid{sender: orDiscard(sender)}
}

// New builds a grid from a Grid message. The message cells are copied.
func New(msg protocol.Grid, sender protocol.Sender) *Grid {
	cells := make([][]string, len(msg.Grid))
	for r, row := range msg.Grid {
		cells[r] = make([]string, len(row))
		for c, color := range row {
			cells[r][c] = colorpanel.CSS(color)
		}
	}
	return &Grid{cells: cells, sender: orDiscard(sender)}
}

// Rows returns the number of rows.
func (g *Grid) Rows() int {
	return len(g.cells)
}

// Cell returns the color at (row, column).
func (g *Grid) Cell(row, column int) (string, bool) {
	if !g.inRange(row, column) {
		return "", false
	}
	return g.cells[row][column], true
}

// Cells returns a copy of all cells.
func (g *Grid) Cells() [][]string {
	out := make([][]string, len(g.cells))
	for r, row := range g.cells {
		out[r] = append([]string(nil), row...)
	}
	return out
}

// Update applies cell patches in order and returns how many landed.
// Patches addressing a cell outside the grid are skipped.
func (g *Grid) Update(msg protocol.GridUpdate) int {
	applied := 0
	for _, u := range msg.Updates {
		if !g.inRange(u.Row, u.Column) {
			continue
		}
		g.cells[u.Row][u.Column] = colorpanel.CSS(u.Color)
		applied++
	}
	return applied
}

// Click reports a tap on the cell at (row, column).
func (g *Grid) Click(row, column int, displayedAt float64) error {
	color, ok := g.Cell(row, column)
	if !ok {
		return fmt.Errorf("click grid cell (%d, %d): out of range", row, column)
	}

	msg := protocol.New(protocol.Header{}, protocol.GridPointer{
		Context:     protocol.PointerGrid,
		Row:         row,
		Column:      column,
		Color:       color,
		DisplayedAt: displayedAt,
	})
	if err := g.sender.Send(msg); err != nil {
		return fmt.Errorf("send grid pointer: %w", err)
	}
	return nil
}

func (g *Grid) inRange(row, column int) bool {
	return row >= 0 && row < len(g.cells) && column >= 0 && column < len(g.cells[row])
}

func orDiscard(s protocol.Sender) protocol.Sender {
	if s == nil {
		return protocol.Discard
	}
	return s
}
