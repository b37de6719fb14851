package mcts

import (
	"math"
	"time"
)

// SearchParams tunes the tree search. The cpuct constants follow the
// KataGo schedule: exploration grows with the log of the parent weight.
type SearchParams struct {
	Simulations int
	MaxTime     time.Duration
	NumThreads  int

	CpuctExploration     float64
	CpuctExplorationBase float64
	CpuctExplorationLog  float64

	// First-play-urgency: unvisited children start at the parent value
	// minus a reduction that scales with the policy mass already visited.
	FpuReductionMax     float64
	RootFpuReductionMax float64
}

func DefaultParams() SearchParams {
	return SearchParams{
		Simulations:          800,
		MaxTime:              5 * time.Second,
		NumThreads:           8,
		CpuctExploration:     1.1,
		CpuctExplorationBase: 10000.0,
		CpuctExplorationLog:  0.4,
		FpuReductionMax:      0.2,
		RootFpuReductionMax:  0.1,
	}
}

func (p *SearchParams) GetCpuct(totalChildWeight float64) float64 {
	return p.CpuctExploration +
		p.CpuctExplorationLog*math.Log((totalChildWeight+p.CpuctExplorationBase)/p.CpuctExplorationBase)
}
