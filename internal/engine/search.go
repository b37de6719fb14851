package engine

import (
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/CasparQuast/AlphaCathedral/internal/cathedral"
)

const (
	// Large enough to act as +-infinity for the window.
	scoreInf = 1_000_000_000

	// Decided-game score, far outside the +-10000 eval range.
	wonGameScore = 1_000_000
)

type SearchConfig struct {
	MaxDepth  int           // maximum search depth in plies
	TimeLimit time.Duration // wall-clock budget, 0 means unlimited
}

type SearchResult struct {
	BestAction int     // encoded placement, -1 when no move exists
	Score      int     // positive favors White
	WinProb    float32 // White win probability
	Depth      int     // deepest completed iteration
	Nodes      int64
	TimeUsed   time.Duration
	PV         []int
	NNFailed   bool // NN eval failed mid-search; score came from fallback
}

// terminalOutcome maps a finished game onto the search scale.
func terminalOutcome(s *cathedral.State) int {
	whiteReturn, _ := s.Returns()
	return int(whiteReturn) * wonGameScore
}

// Search runs iterative deepening over a parallel root. The side to move
// is read from the state at every node; after a placement that strands
// the opponent the same side picks again, so max/min layers do not
// simply alternate.
func (e *Engine) Search(s *cathedral.State, cfg SearchConfig) SearchResult {
	start := time.Now()
	e.resetNNAbort()
	atomic.StoreInt64(&e.nodes, 0)

	legal := s.LegalActions()
	if len(legal) == 0 {
		outcome := terminalOutcome(s)
		return SearchResult{
			BestAction: -1,
			Score:      outcome,
			WinProb:    scoreToWinProb(outcome),
			TimeUsed:   time.Since(start),
		}
	}
	// A forced move needs no search.
	if len(legal) == 1 {
		score := e.eval(s)
		return SearchResult{
			BestAction: legal[0],
			Score:      score,
			WinProb:    scoreToWinProb(score),
			Depth:      1,
			Nodes:      1,
			TimeUsed:   time.Since(start),
			PV:         []int{legal[0]},
		}
	}

	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 3
	}
	deadline := time.Time{}
	if cfg.TimeLimit > 0 {
		deadline = start.Add(cfg.TimeLimit)
	}

	bestAction := -1
	bestScore := 0
	bestDepth := 0

	for depth := 1; depth <= cfg.MaxDepth; depth++ {
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		score, action := e.alphaBetaRoot(s, depth, -scoreInf, scoreInf, deadline)
		if action < 0 {
			break
		}
		bestAction = action
		bestScore = score
		bestDepth = depth
	}

	return SearchResult{
		BestAction: bestAction,
		Score:      bestScore,
		WinProb:    scoreToWinProb(bestScore),
		Depth:      bestDepth,
		Nodes:      atomic.LoadInt64(&e.nodes),
		TimeUsed:   time.Since(start),
		PV:         []int{bestAction},
		NNFailed:   e.UseNN && e.hasNNFailure(),
	}
}

func scoreToWinProb(score int) float32 {
	p := (float32(score)/10000.0 + 1.0) / 2.0
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

// alphaBetaRoot searches every root child in its own goroutine. Each
// worker gets a local engine so the shared transposition table stays
// single-threaded.
func (e *Engine) alphaBetaRoot(s *cathedral.State, depth, alpha, beta int, deadline time.Time) (int, int) {
	legal := s.LegalActions()
	if len(legal) == 0 {
		return terminalOutcome(s), -1
	}

	if e.UseNN && e.nn != nil && !e.hasNNFailure() {
		if res, err := e.nn.Evaluate(s); err == nil && res != nil {
			sort.SliceStable(legal, func(i, j int) bool {
				return res.Policy[legal[i]] > res.Policy[legal[j]]
			})
		} else {
			e.markNNFailure()
			orderActionsBySizeFirst(legal)
		}
	} else {
		orderActionsBySizeFirst(legal)
	}

	// The global TT is only touched here, in the root goroutine.
	key := s.Hash()
	if entry, ok := e.tt[key]; ok {
		for i := range legal {
			if legal[i] == entry.Action {
				legal[0], legal[i] = legal[i], legal[0]
				break
			}
		}
	}

	type childNode struct {
		action int
		child  *cathedral.State
	}
	children := make([]childNode, 0, len(legal))
	for _, a := range legal {
		child := s.Clone()
		if err := child.ApplyAction(a); err != nil {
			continue
		}
		children = append(children, childNode{action: a, child: child})
	}
	if len(children) == 0 {
		return e.eval(s), -1
	}

	if len(children) == 1 {
		local := newLocalEngine(e)
		score := local.alphaBeta(children[0].child, depth-1, alpha, beta, deadline)
		if local.nodes != 0 {
			atomic.AddInt64(&e.nodes, local.nodes)
		}
		e.storeTT(key, depth, score, children[0].action)
		return score, children[0].action
	}

	type rootResult struct {
		action int
		score  int
	}
	results := make(chan rootResult, len(children))

	for _, ch := range children {
		ch := ch
		go func() {
			local := newLocalEngine(e)
			score := local.alphaBeta(ch.child, depth-1, alpha, beta, deadline)
			if local.nodes != 0 {
				atomic.AddInt64(&e.nodes, local.nodes)
			}
			results <- rootResult{action: ch.action, score: score}
		}()
	}

	maximizing := s.CurrentPlayer() == cathedral.White
	bestAction := -1
	bestScore := 0
	for i := 0; i < len(children); i++ {
		r := <-results
		if bestAction < 0 {
			bestAction = r.action
			bestScore = r.score
			continue
		}
		if maximizing {
			if r.score > bestScore {
				bestScore = r.score
				bestAction = r.action
			}
		} else {
			if r.score < bestScore {
				bestScore = r.score
				bestAction = r.action
			}
		}
	}

	if bestAction < 0 {
		return e.eval(s), -1
	}
	e.storeTT(key, depth, bestScore, bestAction)
	return bestScore, bestAction
}

// alphaBeta is the sequential recursion run inside one local engine.
func (e *Engine) alphaBeta(s *cathedral.State, depth, alpha, beta int, deadline time.Time) int {
	e.nodes++

	legal := s.LegalActions()
	if len(legal) == 0 {
		return terminalOutcome(s)
	}
	if depth <= 0 {
		return e.eval(s)
	}
	if !deadline.IsZero() && time.Now().After(deadline) {
		// Out of time: static eval guarantees the stack unwinds.
		return e.eval(s)
	}

	key := s.Hash()
	if entry, ok := e.tt[key]; ok && entry.Depth >= depth {
		return entry.Score
	}

	orderActionsBySizeFirst(legal)

	maximizing := s.CurrentPlayer() == cathedral.White
	bestScore := math.MinInt
	if !maximizing {
		bestScore = math.MaxInt
	}
	bestAction := -1

	for _, a := range legal {
		// Branching runs into the thousands here; without this check an
		// expired deadline would still walk the whole child list.
		if bestAction >= 0 && !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		child := s.Clone()
		if err := child.ApplyAction(a); err != nil {
			continue
		}
		score := e.alphaBeta(child, depth-1, alpha, beta, deadline)
		if maximizing {
			if score > bestScore {
				bestScore = score
				bestAction = a
			}
			if score > alpha {
				alpha = score
			}
		} else {
			if score < bestScore {
				bestScore = score
				bestAction = a
			}
			if score < beta {
				beta = score
			}
		}
		if alpha >= beta {
			break
		}
	}

	if bestAction < 0 {
		return e.eval(s)
	}
	e.storeTT(key, depth, bestScore, bestAction)
	return bestScore
}

// orderActionsBySizeFirst puts large buildings first. Big placements
// swing the score margin and the territory picture the most, which is
// what shallow cutoffs want to see early.
func orderActionsBySizeFirst(actions []int) {
	sort.SliceStable(actions, func(i, j int) bool {
		si := actionFormSize(actions[i])
		sj := actionFormSize(actions[j])
		if si != sj {
			return si > sj
		}
		return actions[i] < actions[j]
	})
}

func actionFormSize(action int) int {
	t := cathedral.BuildingType(action / (cathedral.MaxRotations * cathedral.BoardCells))
	return cathedral.GetBuilding(t).Size()
}
