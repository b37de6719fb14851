package cathedral

const (
	BoardWidth  = 10
	BoardHeight = 10
	BoardCells  = BoardWidth * BoardHeight

	MaxRotations = 4

	// NumActions is the flat action space:
	// type*400 + rotation*100 + y*10 + x.
	NumActions = NumBuildingTypes * MaxRotations * BoardCells

	// MaxGameLength is 30 placements plus headroom for pieces that come
	// back after a capture.
	MaxGameLength = 40

	// InitialScore is each player's starting score; placements subtract
	// their square count, captures add it back.
	InitialScore = 47
)

type Player int8

const (
	NoPlayer Player = -1
	White    Player = 0 // moves first, owns the cathedral
	Black    Player = 1
)

func (p Player) Opponent() Player {
	switch p {
	case White:
		return Black
	case Black:
		return White
	}
	return NoPlayer
}

func (p Player) String() string {
	switch p {
	case White:
		return "white"
	case Black:
		return "black"
	}
	return "none"
}

// CellState is the content of one board cell. The numeric values are the
// board serialization codes and must not be reordered.
type CellState int8

const (
	Empty CellState = iota
	Neutral
	BlackPiece
	BlackTerritory
	WhitePiece
	WhiteTerritory
)

// Territory maps a piece color to the territory state of the same owner.
func (s CellState) Territory() CellState {
	switch s {
	case BlackPiece:
		return BlackTerritory
	case WhitePiece:
		return WhiteTerritory
	}
	return Empty
}

// PieceColor is the cell state a building stamps on the board. The
// cathedral is neutral no matter who places it.
func PieceColor(t BuildingType, p Player) CellState {
	if t == BuildingCathedral {
		return Neutral
	}
	switch p {
	case White:
		return WhitePiece
	case Black:
		return BlackPiece
	}
	return Empty
}
