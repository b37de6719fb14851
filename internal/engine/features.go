package engine

import (
	"github.com/CasparQuast/AlphaCathedral/internal/cathedral"
)

// Observation tensor layout: NumPlanes planes of 10x10 values, row major
// within a plane (offset = plane*100 + y*10 + x). Planes 0..13 hold one
// building type each, then game progress, free squares for the observing
// player, and the side indicator.
const (
	NumPlanes            = cathedral.NumBuildingTypes + 3
	gameProgressPlane    = cathedral.NumBuildingTypes
	freeSquaresPlane     = cathedral.NumBuildingTypes + 1
	sideIndicatorPlane   = cathedral.NumBuildingTypes + 2
	NumObservationValues = NumPlanes * cathedral.BoardCells
)

// NewObservation allocates and fills a tensor for the given observer.
func NewObservation(s *cathedral.State, player cathedral.Player) []float32 {
	out := make([]float32, NumObservationValues)
	EncodeObservation(s, player, out)
	return out
}

// EncodeObservation writes the network view of the position into out,
// which must hold at least NumObservationValues entries. Every entry is
// overwritten, zeros included, so batch buffers can be reused.
func EncodeObservation(s *cathedral.State, player cathedral.Player, out []float32) {
	out = out[:NumObservationValues]
	for i := range out {
		out[i] = 0
	}

	// Each surviving placement stamps its form into the plane of its
	// building type: sign for ownership, magnitude for rotation.
	for _, pa := range s.History() {
		if s.IsRemoved(pa) {
			continue
		}
		m, err := cathedral.DecodeMove(pa.Action)
		if err != nil {
			continue
		}
		value := 1.0 + float32(m.Rotation)*0.25
		if pa.Player != player {
			value = -value
		}
		base := int(m.Type) * cathedral.BoardCells
		for _, sq := range m.Form {
			out[base+sq.Y*cathedral.BoardWidth+sq.X] = value
		}
	}

	progress := float32(s.MoveCount()) / float32(cathedral.MaxGameLength)
	fillPlane(out, gameProgressPlane, progress)

	// A square is free for the observer when a piece of their color
	// could sit on it: empty, or territory they already claimed.
	ownColor := cathedral.WhitePiece
	if player == cathedral.Black {
		ownColor = cathedral.BlackPiece
	}
	ownTerritory := ownColor.Territory()
	board := s.Board()
	base := freeSquaresPlane * cathedral.BoardCells
	for y := 0; y < cathedral.BoardHeight; y++ {
		for x := 0; x < cathedral.BoardWidth; x++ {
			cell := board.Cells[y][x]
			if cell == cathedral.Empty || cell == ownTerritory {
				out[base+y*cathedral.BoardWidth+x] = 1.0
			}
		}
	}

	if player == cathedral.Black {
		fillPlane(out, sideIndicatorPlane, 1.0)
	}
}

func fillPlane(out []float32, plane int, value float32) {
	base := plane * cathedral.BoardCells
	for i := 0; i < cathedral.BoardCells; i++ {
		out[base+i] = value
	}
}
