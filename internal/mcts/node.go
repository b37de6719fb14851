package mcts

import (
	"sync"
	"sync/atomic"

	"github.com/CasparQuast/AlphaCathedral/internal/cathedral"
)

const (
	stateUnevaluated int32 = iota
	stateEvaluating
	stateExpanded
)

// plaUnknown marks a child whose side to move has not been resolved yet.
// A placement that strands the opponent keeps the mover on turn, so the
// child's player is only known after the action has been applied during
// a descent.
const plaUnknown int32 = -1

// node is one tree position. Utilities are stored from white's
// perspective throughout; selection flips the sign for a black chooser.
//
// Locking: state and nextPla are atomics, visits and virtualLosses are
// atomic counters, everything else is guarded by mu.
type node struct {
	mu sync.Mutex

	action  int   // placement that led here, -1 at the root
	nextPla int32 // atomic, holds a cathedral.Player or plaUnknown

	children map[int]*node
	priors   map[int]float32

	state   int32 // atomic
	nnValue float64

	visits        int64 // atomic
	weightSum     float64
	utilityAvg    float64
	utilitySqAvg  float64
	virtualLosses int32 // atomic

	isTerminal      bool
	terminalUtility float64
}

func newRoot(pla cathedral.Player) *node {
	return &node{action: -1, nextPla: int32(pla)}
}

func newChild(action int) *node {
	return &node{action: action, nextPla: plaUnknown}
}

func (n *node) setNextPla(pla cathedral.Player) {
	atomic.StoreInt32(&n.nextPla, int32(pla))
}

func (n *node) pla() cathedral.Player {
	return cathedral.Player(atomic.LoadInt32(&n.nextPla))
}

// recordPlayout folds one playout result into the running averages.
func (n *node) recordPlayout(utility float64) {
	n.mu.Lock()
	atomic.AddInt64(&n.visits, 1)
	n.weightSum += 1.0
	n.utilityAvg += (utility - n.utilityAvg) / n.weightSum
	n.utilitySqAvg += (utility*utility - n.utilitySqAvg) / n.weightSum
	n.mu.Unlock()
}
