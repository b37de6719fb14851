package engine

import (
	"testing"
	"time"

	"github.com/CasparQuast/AlphaCathedral/internal/cathedral"
)

func containsAction(actions []int, a int) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}

// playToTerminal walks the lowest legal action until the game ends.
func playToTerminal(t *testing.T) *cathedral.State {
	t.Helper()
	s := cathedral.NewState()
	for moves := 0; !s.IsTerminal(); moves++ {
		if moves > 2*cathedral.MaxGameLength {
			t.Fatal("game did not terminate")
		}
		legal := s.LegalActions()
		if err := s.ApplyAction(legal[0]); err != nil {
			t.Fatalf("apply failed at move %d: %v", moves, err)
		}
	}
	return s
}

func TestSearchOpeningReturnsLegalPlacement(t *testing.T) {
	s := cathedral.NewState()
	e := NewEngine()
	res := e.Search(s, SearchConfig{MaxDepth: 1})

	if !containsAction(s.LegalActions(), res.BestAction) {
		t.Fatalf("best action %d is not legal", res.BestAction)
	}
	if res.Depth != 1 {
		t.Fatalf("completed depth: got=%d want=1", res.Depth)
	}
	if res.Nodes == 0 {
		t.Fatal("search visited no nodes")
	}
	if res.WinProb < 0 || res.WinProb > 1 {
		t.Fatalf("win probability out of range: %v", res.WinProb)
	}
	if res.NNFailed {
		t.Fatal("heuristic-only search reported an NN failure")
	}
	if err := s.ApplyAction(res.BestAction); err != nil {
		t.Fatalf("chosen action rejected by the rules: %v", err)
	}
}

func TestSearchStopsAtDeadline(t *testing.T) {
	s := cathedral.NewState()
	e := NewEngine()
	start := time.Now()
	res := e.Search(s, SearchConfig{MaxDepth: 64, TimeLimit: 50 * time.Millisecond})

	if !containsAction(s.LegalActions(), res.BestAction) {
		t.Fatalf("best action %d is not legal", res.BestAction)
	}
	if res.Depth < 1 {
		t.Fatalf("no completed iteration: depth=%d", res.Depth)
	}
	// generous bound: the budget plus the tail of the running iteration
	if elapsed := time.Since(start); elapsed > 30*time.Second {
		t.Fatalf("search ran far past its deadline: %v", elapsed)
	}
}

func TestSearchOnFinishedGame(t *testing.T) {
	s := playToTerminal(t)
	e := NewEngine()
	res := e.Search(s, SearchConfig{MaxDepth: 3})

	if res.BestAction != -1 {
		t.Fatalf("best action on a finished game: got=%d want=-1", res.BestAction)
	}
	whiteReturn, _ := s.Returns()
	if want := int(whiteReturn) * wonGameScore; res.Score != want {
		t.Fatalf("terminal score: got=%d want=%d", res.Score, want)
	}
	switch res.WinProb {
	case 0, 0.5, 1:
	default:
		t.Fatalf("terminal win probability: got=%v", res.WinProb)
	}
}

func TestSearchReusesDeeperIterations(t *testing.T) {
	// a nearly full board keeps the branching small enough for depth 2
	s := cathedral.NewState()
	for s.MoveCount() < 24 && !s.IsTerminal() {
		legal := s.LegalActions()
		if err := s.ApplyAction(legal[0]); err != nil {
			t.Fatalf("apply failed: %v", err)
		}
	}
	if s.IsTerminal() {
		t.Skip("scripted fill ended the game early")
	}

	e := NewEngine()
	res := e.Search(s, SearchConfig{MaxDepth: 2, TimeLimit: 2 * time.Second})
	if !containsAction(s.LegalActions(), res.BestAction) {
		t.Fatalf("best action %d is not legal", res.BestAction)
	}
	if res.Depth < 1 {
		t.Fatalf("no completed iteration: depth=%d", res.Depth)
	}
	if len(e.tt) == 0 {
		t.Fatal("iterative deepening stored nothing in the table")
	}
}

func TestOrderActionsBySizeFirst(t *testing.T) {
	actions := []int{
		0,    // tavern, 1 square
		5277, // cathedral, 6 squares
		401,  // stable, 2 squares
		1311, // bridge, 3 squares
	}
	orderActionsBySizeFirst(actions)
	want := []int{5277, 1311, 401, 0}
	for i := range want {
		if actions[i] != want[i] {
			t.Fatalf("order[%d]: got=%d want=%d (full order %v)", i, actions[i], want[i], actions)
		}
	}
}

func TestScoreToWinProb(t *testing.T) {
	cases := []struct {
		score int
		want  float32
	}{
		{0, 0.5},
		{10000, 1},
		{-10000, 0},
		{wonGameScore, 1},
		{-wonGameScore, 0},
		{5000, 0.75},
	}
	for _, c := range cases {
		if got := scoreToWinProb(c.score); got != c.want {
			t.Fatalf("scoreToWinProb(%d): got=%v want=%v", c.score, got, c.want)
		}
	}
}
