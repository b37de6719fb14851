package cathedral

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRotation rejects a rotation index above the building's
	// symmetry class.
	ErrInvalidRotation = errors.New("cathedral: rotation not usable for building")

	// ErrActionOutOfRange rejects encoded actions outside [0, NumActions)
	// and unknown building types.
	ErrActionOutOfRange = errors.New("cathedral: action out of range")
)

// Move is one placement: a building type, a rotation and the anchor square
// the canonical form is translated to. Form and Corners are resolved at
// construction and never recomputed.
type Move struct {
	Pos      Square
	Type     BuildingType
	Rotation Rotation

	Form    []Square
	Corners []Square
}

// NewMove resolves the absolute form and corner squares of a placement.
// The rotation must not exceed the building's symmetry class.
func NewMove(pos Square, t BuildingType, r Rotation) (Move, error) {
	if !t.Valid() {
		return Move{}, fmt.Errorf("%w: building type %d", ErrActionOutOfRange, t)
	}
	b := GetBuilding(t)
	if r < 0 || r > b.MaxRotation() {
		return Move{}, fmt.Errorf("%w: %v rotated %d degrees", ErrInvalidRotation, t, r.Degrees())
	}
	return Move{
		Pos:      pos,
		Type:     t,
		Rotation: r,
		Form:     b.Form(r, pos),
		Corners:  b.Corners(r, pos),
	}, nil
}

// Encode packs the move into its flat action id.
func (m Move) Encode() int {
	return int(m.Type)*BoardCells*MaxRotations +
		int(m.Rotation)*BoardCells +
		m.Pos.Y*BoardWidth + m.Pos.X
}

// DecodeMove is the inverse of Encode. In-range ids can still imply a
// rotation the building cannot use; those fail like NewMove does.
func DecodeMove(action int) (Move, error) {
	if action < 0 || action >= NumActions {
		return Move{}, fmt.Errorf("%w: %d", ErrActionOutOfRange, action)
	}
	t := BuildingType(action / (BoardCells * MaxRotations))
	r := Rotation(action % (BoardCells * MaxRotations) / BoardCells)
	y := action % BoardCells / BoardWidth
	x := action % BoardWidth
	return NewMove(Square{X: x, Y: y}, t, r)
}

// mustDecode decodes a history entry. History only ever holds encodings of
// validated moves, so failure means corrupted state.
func mustDecode(action int) Move {
	m, err := DecodeMove(action)
	if err != nil {
		panic(err)
	}
	return m
}
