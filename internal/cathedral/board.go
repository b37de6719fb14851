package cathedral

import "strings"

// Board is the 10x10 cell grid. Only State mutates it; the board itself
// never validates on write, only on the explicit IsMoveValid query.
type Board struct {
	Cells [BoardHeight][BoardWidth]CellState
}

// At returns the cell state. The square must be on the board.
func (b *Board) At(sq Square) CellState {
	return b.Cells[sq.Y][sq.X]
}

// colorCompatible reports whether a piece color may land on an existing
// cell: empty always, a player's own territory for that player's pieces.
// Neutral only ever lands on empty.
func colorCompatible(on, place CellState) bool {
	return on == Empty ||
		(on == BlackTerritory && place == BlackPiece) ||
		(on == WhiteTerritory && place == WhitePiece)
}

// IsMoveValid checks that every form square is on the board and compatible
// with the color the player would place.
func (b *Board) IsMoveValid(m Move, p Player) bool {
	color := PieceColor(m.Type, p)
	for _, sq := range m.Form {
		if !sq.OnBoard() || !colorCompatible(b.At(sq), color) {
			return false
		}
	}
	return true
}

// PlaceColor stamps color over the form. Callers validate first.
func (b *Board) PlaceColor(form []Square, color CellState) {
	for _, sq := range form {
		b.Cells[sq.Y][sq.X] = color
	}
}

// Clear resets the squares to empty.
func (b *Board) Clear(squares []Square) {
	for _, sq := range squares {
		if sq.OnBoard() {
			b.Cells[sq.Y][sq.X] = Empty
		}
	}
}

// String dumps the grid as one integer code per cell, row-major, one row
// per line. Human inspection format, not a machine protocol.
func (b *Board) String() string {
	var sb strings.Builder
	sb.Grow(BoardCells*2 + BoardHeight)
	for y := 0; y < BoardHeight; y++ {
		for x := 0; x < BoardWidth; x++ {
			sb.WriteByte('0' + byte(b.Cells[y][x]))
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
