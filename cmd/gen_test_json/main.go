package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/CasparQuast/AlphaCathedral/internal/cathedral"
)

// TestCase is one position snapshot for cross-validation against another
// rules implementation: the history that reaches it, the serialized
// board, and the full sorted legal-action list.
type TestCase struct {
	Actions      []int  `json:"actions"`
	Board        string `json:"board"`
	ToMove       int    `json:"to_move"`
	WhiteScore   int    `json:"white_score"`
	BlackScore   int    `json:"black_score"`
	LegalActions []int  `json:"legal_actions"`
	Terminal     bool   `json:"terminal"`
}

func snapshot(s *cathedral.State) TestCase {
	actions := make([]int, 0, s.MoveCount())
	for _, pa := range s.History() {
		actions = append(actions, pa.Action)
	}
	white, black := s.Scores()
	toMove := 0
	if s.CurrentPlayer() == cathedral.Black {
		toMove = 1
	}
	legal := s.LegalActions()
	if legal == nil {
		legal = []int{}
	}
	return TestCase{
		Actions:      actions,
		Board:        s.String(),
		ToMove:       toMove,
		WhiteScore:   white,
		BlackScore:   black,
		LegalActions: legal,
		Terminal:     s.IsTerminal(),
	}
}

func main() {
	numGames := flag.Int("games", 10, "number of random games to sample")
	seed := flag.Int64("seed", 1, "random seed, fixed so fixtures reproduce")
	outPath := flag.String("out", "legal_actions_test_data.json", "fixture output file")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	var testCases []TestCase

	for g := 0; g < *numGames; g++ {
		s := cathedral.NewState()
		for moveCount := 0; moveCount < 2*cathedral.MaxGameLength; moveCount++ {
			tc := snapshot(s)
			testCases = append(testCases, tc)
			if tc.Terminal {
				break
			}

			legal := s.LegalActions()
			if len(legal) == 0 {
				break
			}
			if err := s.ApplyAction(legal[rng.Intn(len(legal))]); err != nil {
				log.Fatalf("random legal action failed to apply: %v", err)
			}
		}
	}

	file, err := json.MarshalIndent(testCases, "", "  ")
	if err != nil {
		log.Fatalf("marshal fixtures: %v", err)
	}
	if err := os.WriteFile(*outPath, file, 0644); err != nil {
		log.Fatalf("write %s: %v", *outPath, err)
	}
	fmt.Printf("Generated %d test cases from %d random games to %s\n",
		len(testCases), *numGames, *outPath)
}
