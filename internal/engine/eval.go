package engine

import (
	"github.com/CasparQuast/AlphaCathedral/internal/cathedral"
)

// Weights keep the heuristic in the same +-10000 range the NN value head
// maps to, so the win-probability conversion is one formula for both
// eval paths. The score margin dominates: it is the terminal outcome.
// Legal-action counts run into the thousands on an open board, hence a
// divisor rather than a multiplier for mobility.
const (
	marginWeight    = 200
	territoryWeight = 12
	mobilityDivisor = 8
	tempoBonus      = 5
)

// Evaluate scores a position from White's perspective: positive means
// the higher-score-wins terminal rule currently favors White.
func Evaluate(s *cathedral.State) int {
	white, black := s.Scores()
	score := (white - black) * marginWeight

	score += territoryBalance(s) * territoryWeight

	mobility := len(s.LegalActions()) / mobilityDivisor
	tempo := tempoBonus
	if s.CurrentPlayer() == cathedral.Black {
		mobility = -mobility
		tempo = -tempo
	}
	return score + mobility + tempo
}

// territoryBalance counts claimed cells, white minus black. Claimed
// cells are closed to the opponent for the rest of the game.
func territoryBalance(s *cathedral.State) int {
	board := s.Board()
	n := 0
	for y := 0; y < cathedral.BoardHeight; y++ {
		for x := 0; x < cathedral.BoardWidth; x++ {
			switch board.Cells[y][x] {
			case cathedral.WhiteTerritory:
				n++
			case cathedral.BlackTerritory:
				n--
			}
		}
	}
	return n
}

// eval prefers the NN value head when it is wired and healthy, with the
// heuristic as fallback. NN scores are cached by state hash because the
// search revisits transpositions constantly.
func (e *Engine) eval(s *cathedral.State) int {
	if e.UseNN && e.nn != nil && !e.hasNNFailure() {
		key := s.Hash()
		if v, ok := e.getNNEvalFromCache(key); ok {
			return v
		}
		res, err := e.nn.Evaluate(s)
		if err == nil && res != nil {
			score := int((res.WinProb - res.LossProb) * 10000)
			e.storeNNEvalCache(key, score)
			return score
		}
		e.markNNFailure()
	}
	return Evaluate(s)
}
