package mcts

import (
	"sync/atomic"
	"testing"

	"github.com/CasparQuast/AlphaCathedral/internal/cathedral"
	"github.com/CasparQuast/AlphaCathedral/internal/engine"
)

func TestSearchOpeningPicksCathedralPlacement(t *testing.T) {
	params := DefaultParams()
	params.Simulations = 64
	params.NumThreads = 4
	params.MaxTime = 0 // unlimited, keeps the playout count exact
	s := NewSearcher(nil, params)

	st := cathedral.NewState()
	res := s.Search(st)

	if res.BestAction < 0 {
		t.Fatal("no best action on the opening position")
	}
	if got := cathedral.BuildingType(res.BestAction / (cathedral.MaxRotations * cathedral.BoardCells)); got != cathedral.BuildingCathedral {
		t.Fatalf("opening action places %v, want the cathedral", got)
	}
	if err := st.ApplyAction(res.BestAction); err != nil {
		t.Fatalf("chosen action rejected by the rules: %v", err)
	}
	if res.WinProb < 0 || res.WinProb > 1 {
		t.Fatalf("win probability out of range: %v", res.WinProb)
	}
	if res.NNFailed {
		t.Fatal("heuristic-only search reported an NN failure")
	}
	if res.Nodes != int64(params.Simulations) {
		t.Fatalf("playouts recorded: got=%d want=%d", res.Nodes, params.Simulations)
	}
}

func TestSearchOnFinishedGame(t *testing.T) {
	st := cathedral.NewState()
	for moves := 0; !st.IsTerminal(); moves++ {
		if moves > 2*cathedral.MaxGameLength {
			t.Fatal("game did not terminate")
		}
		legal := st.LegalActions()
		if err := st.ApplyAction(legal[0]); err != nil {
			t.Fatalf("apply failed: %v", err)
		}
	}

	s := NewSearcher(nil, DefaultParams())
	res := s.Search(st)
	if res.BestAction != -1 {
		t.Fatalf("best action on a finished game: got=%d want=-1", res.BestAction)
	}
	switch res.WinProb {
	case 0, 0.5, 1:
	default:
		t.Fatalf("terminal win probability: got=%v", res.WinProb)
	}
}

func TestPlayoutAccounting(t *testing.T) {
	st := cathedral.NewState()
	s := NewSearcher(nil, DefaultParams())

	root := newRoot(st.CurrentPlayer())
	s.evaluateLeaf(root, st)
	if root.isTerminal {
		t.Fatal("opening position expanded as terminal")
	}

	const playouts = 40
	for i := 0; i < playouts; i++ {
		s.playout(root, st)
	}

	if got := atomic.LoadInt64(&root.visits); got != playouts {
		t.Fatalf("root visits: got=%d want=%d", got, playouts)
	}

	var childVisits int64
	for _, child := range root.children {
		v := atomic.LoadInt64(&child.visits)
		childVisits += v
		if atomic.LoadInt32(&child.virtualLosses) != 0 {
			t.Fatalf("child %d kept a virtual loss after search", child.action)
		}
		if v > 0 && child.pla() == cathedral.NoPlayer {
			t.Fatalf("visited child %d never resolved its side to move", child.action)
		}
	}
	// every playout descends through exactly one root child
	if childVisits != playouts {
		t.Fatalf("child visit sum: got=%d want=%d", childVisits, playouts)
	}
}

func TestExpandNormalizesPriors(t *testing.T) {
	st := cathedral.NewState()
	legal := st.LegalActions()

	res := &engine.NNResult{Policy: make([]float32, cathedral.NumActions)}
	res.Policy[legal[0]] = 3
	res.Policy[legal[1]] = 1

	s := NewSearcher(nil, DefaultParams())
	n := newRoot(st.CurrentPlayer())
	s.expand(n, legal, res, 0)

	if len(n.children) != len(legal) {
		t.Fatalf("children: got=%d want=%d", len(n.children), len(legal))
	}
	if got := n.priors[legal[0]]; got != 0.75 {
		t.Fatalf("prior of the hot action: got=%v want=0.75", got)
	}
	if got := n.priors[legal[1]]; got != 0.25 {
		t.Fatalf("prior of the cold action: got=%v want=0.25", got)
	}

	// without policy mass the prior falls back to uniform
	uniform := NewSearcher(nil, DefaultParams())
	m := newRoot(st.CurrentPlayer())
	uniform.expand(m, legal, nil, 0)
	want := 1.0 / float32(len(legal))
	for _, a := range legal {
		if got := m.priors[a]; got != want {
			t.Fatalf("uniform prior of %d: got=%v want=%v", a, got, want)
		}
	}
}

func TestExpandRunsOnce(t *testing.T) {
	st := cathedral.NewState()
	legal := st.LegalActions()

	s := NewSearcher(nil, DefaultParams())
	n := newRoot(st.CurrentPlayer())
	s.expand(n, legal, nil, 0.5)
	first := n.children[legal[0]]

	s.expand(n, legal, nil, -0.5)
	if n.children[legal[0]] != first {
		t.Fatal("second expand rebuilt the children")
	}
	if n.nnValue != 0.5 {
		t.Fatalf("second expand overwrote the leaf value: %v", n.nnValue)
	}
}

func TestGetCpuctGrowsWithWeight(t *testing.T) {
	p := DefaultParams()
	base := p.GetCpuct(0)
	if base != p.CpuctExploration {
		t.Fatalf("cpuct at zero weight: got=%v want=%v", base, p.CpuctExploration)
	}
	if grown := p.GetCpuct(1_000_000); grown <= base {
		t.Fatalf("cpuct did not grow with weight: %v <= %v", grown, base)
	}
}
