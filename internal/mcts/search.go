package mcts

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/CasparQuast/AlphaCathedral/internal/cathedral"
	"github.com/CasparQuast/AlphaCathedral/internal/engine"
)

// Searcher runs parallel Monte Carlo tree search over cathedral
// positions. Leaves are valued by the batched NN evaluator when one is
// attached, otherwise by the engine's static heuristic, so the searcher
// works with and without a loaded model.
type Searcher struct {
	nn     *engine.NNEvaluator
	params SearchParams

	nnFailed uint32 // atomic
}

func NewSearcher(nn *engine.NNEvaluator, params SearchParams) *Searcher {
	return &Searcher{nn: nn, params: params}
}

// Search runs the configured playout budget from the position and picks
// the root child with the most visits. The result reuses the alpha-beta
// result shape so callers can treat both search backends alike.
func (s *Searcher) Search(st *cathedral.State) *engine.SearchResult {
	start := time.Now()
	atomic.StoreUint32(&s.nnFailed, 0)
	p := s.params

	root := newRoot(st.CurrentPlayer())
	rootValue := s.evaluateLeaf(root, st)

	if root.isTerminal {
		return &engine.SearchResult{
			BestAction: -1,
			Score:      int(rootValue * 10000),
			WinProb:    float32((rootValue + 1.0) / 2.0),
			TimeUsed:   time.Since(start),
		}
	}

	numThreads := p.NumThreads
	if numThreads < 1 {
		numThreads = 1
	}
	simsPerThread := p.Simulations / numThreads
	if simsPerThread < 1 {
		simsPerThread = 1
	}

	var wg sync.WaitGroup
	for t := 0; t < numThreads; t++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < simsPerThread; i++ {
				if p.MaxTime > 0 && time.Since(start) > p.MaxTime {
					break
				}
				s.playout(root, st)
			}
		}()
	}
	wg.Wait()

	bestAction := -1
	maxVisits := int64(-1)
	for a, child := range root.children {
		if v := atomic.LoadInt64(&child.visits); v > maxVisits {
			maxVisits = v
			bestAction = a
		}
	}

	root.mu.Lock()
	avg := root.utilityAvg
	root.mu.Unlock()

	res := &engine.SearchResult{
		BestAction: bestAction,
		Score:      int(avg * 10000),
		WinProb:    float32((avg + 1.0) / 2.0),
		Nodes:      atomic.LoadInt64(&root.visits),
		TimeUsed:   time.Since(start),
		NNFailed:   s.nn != nil && atomic.LoadUint32(&s.nnFailed) != 0,
	}
	if bestAction >= 0 {
		res.PV = []int{bestAction}
	}
	return res
}

// playout walks the tree until an unexpanded or terminal node, values
// it, and folds the result back along the path. Virtual losses steer
// concurrent threads away from the path while it is being explored.
func (s *Searcher) playout(root *node, rootState *cathedral.State) {
	st := rootState.Clone()
	n := root
	path := make([]*node, 0, cathedral.MaxGameLength)
	path = append(path, n)

	for atomic.LoadInt32(&n.state) == stateExpanded && !n.isTerminal {
		action, child := s.selectChild(n, n == root)
		if child == nil {
			break
		}
		atomic.AddInt32(&child.virtualLosses, 1)
		path = append(path, child)
		n = child
		if err := st.ApplyAction(action); err != nil {
			break
		}
		// only now is the side to move at the child known: a placement
		// that strands the opponent keeps the mover on turn
		n.setNextPla(st.CurrentPlayer())
	}

	var utility float64
	if atomic.LoadInt32(&n.state) == stateExpanded && n.isTerminal {
		utility = n.terminalUtility
	} else {
		utility = s.evaluateLeaf(n, st)
	}

	for i := len(path) - 1; i >= 0; i-- {
		path[i].recordPlayout(utility)
		if i > 0 {
			atomic.AddInt32(&path[i].virtualLosses, -1)
		}
	}
}

// evaluateLeaf values the position and expands the node. Terminal
// positions store their exact outcome; everything else gets a leaf value
// and priors. Utilities are from white's perspective in [-1, 1].
func (s *Searcher) evaluateLeaf(n *node, st *cathedral.State) float64 {
	legal := st.LegalActions()
	if len(legal) == 0 {
		whiteReturn, _ := st.Returns()
		if atomic.CompareAndSwapInt32(&n.state, stateUnevaluated, stateEvaluating) {
			n.isTerminal = true
			n.terminalUtility = whiteReturn
			atomic.StoreInt32(&n.state, stateExpanded)
		}
		return whiteReturn
	}

	utility, res := s.leafValue(st)
	s.expand(n, legal, res, utility)
	return utility
}

// leafValue produces the white-perspective utility plus the raw NN
// result when one was obtained.
func (s *Searcher) leafValue(st *cathedral.State) (float64, *engine.NNResult) {
	if s.nn != nil {
		res, err := s.nn.Evaluate(st)
		if err == nil && res != nil {
			return float64(res.Score), res
		}
		atomic.StoreUint32(&s.nnFailed, 1)
	}
	ev := float64(engine.Evaluate(st)) / 10000.0
	if ev > 1 {
		ev = 1
	} else if ev < -1 {
		ev = -1
	}
	return ev, nil
}

// expand creates the children once. The CAS makes concurrent threads
// that reached the same leaf fall through; they still back up their own
// leaf value.
func (s *Searcher) expand(n *node, legal []int, res *engine.NNResult, value float64) {
	if !atomic.CompareAndSwapInt32(&n.state, stateUnevaluated, stateEvaluating) {
		return
	}

	priors := make(map[int]float32, len(legal))
	var total float32
	if res != nil {
		for _, a := range legal {
			if p := res.Policy[a]; p > 0 {
				priors[a] = p
				total += p
			}
		}
	}
	if total > 0 {
		inv := 1.0 / total
		for a := range priors {
			priors[a] *= inv
		}
	} else {
		// no usable policy mass: spread the prior uniformly
		uniform := 1.0 / float32(len(legal))
		for _, a := range legal {
			priors[a] = uniform
		}
	}

	children := make(map[int]*node, len(legal))
	for _, a := range legal {
		children[a] = newChild(a)
	}

	n.mu.Lock()
	n.priors = priors
	n.children = children
	n.nnValue = value
	n.mu.Unlock()
	atomic.StoreInt32(&n.state, stateExpanded)
}

// selectChild applies the PUCT rule from the chooser's perspective.
// Exploration scales with the utility spread seen at the node, and
// unvisited children start from the node value minus an FPU reduction
// that grows with the policy mass already visited.
func (s *Searcher) selectChild(n *node, isRoot bool) (int, *node) {
	chooser := n.pla()

	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.children) == 0 {
		return -1, nil
	}

	totalWeight := n.weightSum
	stdev := math.Sqrt(math.Max(0, n.utilitySqAvg-n.utilityAvg*n.utilityAvg))
	stdevFactor := 1.0 + 0.5*(stdev/0.4-1.0)
	if stdevFactor < 0.5 {
		stdevFactor = 0.5
	} else if stdevFactor > 2.0 {
		stdevFactor = 2.0
	}
	cpuct := s.params.GetCpuct(totalWeight) * stdevFactor
	sqrtWeight := math.Sqrt(totalWeight + 0.01)

	fpuMax := s.params.FpuReductionMax
	if isRoot {
		fpuMax = s.params.RootFpuReductionMax
	}
	policyMassVisited := 0.0
	for a, child := range n.children {
		if atomic.LoadInt64(&child.visits) > 0 {
			policyMassVisited += float64(n.priors[a])
		}
	}
	fpuBase := n.nnValue
	if chooser == cathedral.Black {
		fpuBase = -fpuBase
	}
	fpu := fpuBase - fpuMax*math.Sqrt(policyMassVisited)

	bestAction := -1
	var bestChild *node
	maxValue := math.Inf(-1)

	for a, child := range n.children {
		v := float64(atomic.LoadInt64(&child.visits))
		vLoss := float64(atomic.LoadInt32(&child.virtualLosses))
		childWeight := v + vLoss

		var q float64
		if childWeight > 0 {
			child.mu.Lock()
			q = child.utilityAvg
			child.mu.Unlock()
			if chooser == cathedral.Black {
				q = -q
			}
			if vLoss > 0 {
				// a playout already walking this child counts as a loss
				q = (q*v - vLoss) / childWeight
			}
		} else {
			q = fpu
		}

		u := cpuct * float64(n.priors[a]) * sqrtWeight / (1.0 + childWeight)
		if value := q + u; value > maxValue {
			maxValue = value
			bestAction = a
			bestChild = child
		}
	}
	return bestAction, bestChild
}
