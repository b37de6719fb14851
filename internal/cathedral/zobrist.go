package cathedral

import "sync"

// Zobrist keys over (cell state, square), the inventory counts and the
// side to move. Board and side alone are not enough: two identical boards
// can differ in whether the cathedral is still available.

const (
	zobristStates    = 6 // CellState range [0..5], empty unused
	zobristMaxCopies = 3 // counts range [0..2]
)

var (
	zobristOnce   sync.Once
	zobristCells  [zobristStates][BoardCells]uint64
	zobristCounts [2][NumBuildingTypes][zobristMaxCopies]uint64
	zobristSide   uint64
)

func initZobrist() {
	zobristOnce.Do(func() {
		seed := uint64(0x9E3779B97F4A7C15)
		next := func() uint64 {
			seed += 0x9E3779B97F4A7C15
			z := seed
			z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
			z = (z ^ (z >> 27)) * 0x94D049BB133111EB
			return z ^ (z >> 31)
		}

		for st := 1; st < zobristStates; st++ {
			for sq := 0; sq < BoardCells; sq++ {
				zobristCells[st][sq] = next()
			}
		}
		for p := 0; p < 2; p++ {
			for t := 0; t < NumBuildingTypes; t++ {
				for n := 0; n < zobristMaxCopies; n++ {
					zobristCounts[p][t][n] = next()
				}
			}
		}
		zobristSide = next()
	})
}

// Hash computes the zobrist key of the position from scratch. The capture
// sweep rewrites whole regions, so incremental updates do not pay off.
func (s *State) Hash() uint64 {
	initZobrist()

	var h uint64
	for y := 0; y < BoardHeight; y++ {
		for x := 0; x < BoardWidth; x++ {
			st := s.board.Cells[y][x]
			if st == Empty {
				continue
			}
			h ^= zobristCells[st][y*BoardWidth+x]
		}
	}
	for p := 0; p < 2; p++ {
		for t := BuildingType(0); t < NumBuildingTypes; t++ {
			h ^= zobristCounts[p][t][s.pieces[p].Remaining(t)]
		}
	}
	if s.current == Black {
		h ^= zobristSide
	}
	return h
}
