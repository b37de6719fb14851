package cathedral

// Enclosed-region detection. After a placement the board is swept once per
// piece color; every maximal 8-connected region of cells not holding that
// color is a candidate, and a candidate with fewer than two enemy
// buildings inside is captured for that color.

// checkCaptures decides whether the placement can have sealed off a
// region. The placed move is already in history, so the earliest possible
// sweep is the third placement, and on exactly the third the sweep always
// runs regardless of corner contact.
func (s *State) checkCaptures(m Move, color CellState) {
	if len(s.history) <= 2 {
		return
	}
	forced := len(s.history) == 3
	connections := 0
	for _, sq := range m.Corners {
		if forced || !sq.OnBoard() || s.board.At(sq) == color {
			connections++
			if connections > 1 {
				s.buildRegions()
				return
			}
		}
	}
}

// buildRegions sweeps the board for black, then for white. Captures made
// in the black sweep change the cells the white sweep sees, so the mask is
// rebuilt per color.
func (s *State) buildRegions() {
	for _, color := range [2]CellState{BlackPiece, WhitePiece} {
		var free [BoardHeight][BoardWidth]bool
		for y := 0; y < BoardHeight; y++ {
			for x := 0; x < BoardWidth; x++ {
				free[y][x] = s.board.Cells[y][x] != color
			}
		}
		for i := 0; i < BoardCells; i++ {
			x, y := i%BoardWidth, i/BoardWidth
			if !free[y][x] {
				continue
			}
			region := collectRegion(&free, Square{X: x, Y: y})
			s.processRegion(region, color)
		}
	}
}

// collectRegion flood-fills the 8-connected free region containing start,
// consuming its cells from the mask.
func collectRegion(free *[BoardHeight][BoardWidth]bool, start Square) []Square {
	free[start.Y][start.X] = false
	queue := []Square{start}
	var region []Square
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		region = append(region, cur)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				n := Square{X: cur.X + dx, Y: cur.Y + dy}
				if n.OnBoard() && free[n.Y][n.X] {
					free[n.Y][n.X] = false
					queue = append(queue, n)
				}
			}
		}
	}
	return region
}

// processRegion captures the region for color unless two or more enemy
// buildings sit inside it. A captured building goes back to its owner,
// the cathedral excepted, and every region cell becomes territory.
func (s *State) processRegion(region []Square, color CellState) {
	enemies := s.enemyBuildingsInRegion(region, color)
	if len(enemies) >= 2 {
		return
	}
	for _, pa := range enemies {
		s.removeMove(pa)
	}
	territory := color.Territory()
	for _, sq := range region {
		s.board.Cells[sq.Y][sq.X] = territory
	}
}

// enemyBuildingsInRegion lists the non-removed placements anchored inside
// the region whose color differs from the sweep color. The neutral
// cathedral differs from both, so it is an enemy in both sweeps.
func (s *State) enemyBuildingsInRegion(region []Square, color CellState) []PlayerAction {
	inRegion := make(map[Square]bool, len(region))
	for _, sq := range region {
		inRegion[sq] = true
	}
	var enemies []PlayerAction
	for _, pa := range s.history {
		if s.isRemoved(pa) {
			continue
		}
		m := mustDecode(pa.Action)
		if inRegion[m.Pos] && PieceColor(m.Type, pa.Player) != color {
			enemies = append(enemies, pa)
		}
	}
	return enemies
}

// removeMove clears a captured building off the board, marks its history
// entry removed and returns the piece to its owner's pool.
func (s *State) removeMove(pa PlayerAction) {
	m := mustDecode(pa.Action)
	s.board.Clear(m.Form)
	s.removed[pa] = struct{}{}
	s.pieces[pa.Player].Return(m.Type)
}
