package engine

import (
	"sync"
	"sync/atomic"
)

const nnEvalCacheCap = 500_000

type nnEvalCache struct {
	mu sync.RWMutex
	m  map[uint64]int
}

// Engine bundles the transposition table, the node counter and the
// optional neural evaluator. A single Engine is not safe for concurrent
// Search calls; the root search hands each worker its own local engine.
type Engine struct {
	tt    map[uint64]ttEntry
	nodes int64

	UseNN bool
	nn    *NNEvaluator

	// Shared per-search abort flag. Set to 1 when any NN eval fails.
	nnAbort *uint32

	// Shared NN value cache keyed by state hash.
	nnCache *nnEvalCache
}

func NewEngine() *Engine {
	abort := uint32(0)
	return &Engine{
		tt:      make(map[uint64]ttEntry, 1<<18),
		nnAbort: &abort,
		nnCache: &nnEvalCache{
			m: make(map[uint64]int, 1<<18),
		},
	}
}

// newLocalEngine shares the NN wiring (evaluator, abort flag, value
// cache) but not the transposition table, so root-parallel workers never
// contend on one map.
func newLocalEngine(e *Engine) *Engine {
	return &Engine{
		tt:      make(map[uint64]ttEntry, 1<<14),
		UseNN:   e.UseNN,
		nn:      e.nn,
		nnAbort: e.nnAbort,
		nnCache: e.nnCache,
	}
}

func (e *Engine) InitNN(modelPath, libPath string) error {
	nn, err := NewNNEvaluator(modelPath, libPath)
	if err != nil {
		return err
	}
	e.nn = nn
	e.UseNN = true
	return nil
}

// NN exposes the evaluator for callers that run their own search on top
// of it, such as the MCTS package.
func (e *Engine) NN() *NNEvaluator {
	return e.nn
}

func (e *Engine) resetNNAbort() {
	if e.nnAbort == nil {
		abort := uint32(0)
		e.nnAbort = &abort
	}
	atomic.StoreUint32(e.nnAbort, 0)
}

func (e *Engine) markNNFailure() {
	if e.nnAbort == nil {
		abort := uint32(0)
		e.nnAbort = &abort
	}
	atomic.StoreUint32(e.nnAbort, 1)
}

func (e *Engine) hasNNFailure() bool {
	return e.nnAbort != nil && atomic.LoadUint32(e.nnAbort) != 0
}

func (e *Engine) getNNEvalFromCache(key uint64) (int, bool) {
	if e.nnCache == nil {
		return 0, false
	}
	e.nnCache.mu.RLock()
	v, ok := e.nnCache.m[key]
	e.nnCache.mu.RUnlock()
	return v, ok
}

func (e *Engine) storeNNEvalCache(key uint64, score int) {
	if e.nnCache == nil {
		return
	}
	e.nnCache.mu.Lock()
	if len(e.nnCache.m) > nnEvalCacheCap {
		e.nnCache.m = make(map[uint64]int, 1<<18)
	}
	e.nnCache.m[key] = score
	e.nnCache.mu.Unlock()
}
