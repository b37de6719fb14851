package engine

type ttEntry struct {
	Key    uint64
	Depth  int
	Score  int
	Action int
}

// storeTT keeps the deeper entry on collision. Past the cap the whole
// table is dropped instead of evicting entry by entry.
func (e *Engine) storeTT(key uint64, depth, score, action int) {
	if len(e.tt) > 1_000_000 {
		e.tt = make(map[uint64]ttEntry, 1<<18)
	}
	old, ok := e.tt[key]
	if !ok || depth >= old.Depth {
		e.tt[key] = ttEntry{
			Key:    key,
			Depth:  depth,
			Score:  score,
			Action: action,
		}
	}
}
