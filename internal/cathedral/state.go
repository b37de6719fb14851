package cathedral

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrIllegalMove reports a structurally valid move that the current board
// or inventory state does not allow. The state is unchanged.
var ErrIllegalMove = errors.New("cathedral: illegal move")

// PlayerAction is one history entry: who placed which encoded action.
type PlayerAction struct {
	Player Player `json:"player"`
	Action int    `json:"action"`
}

// State is one game in progress. A State is exclusively owned by its
// caller; search code works on Clones.
//
// Invariant: replaying history from an empty board and full inventories,
// skipping nothing (captures re-fire on the way), reproduces the board,
// the inventories and the removed set exactly. Undo relies on this.
type State struct {
	current Player
	board   Board
	pieces  [2]PlayerPieces
	history []PlayerAction
	removed map[PlayerAction]struct{}
}

// NewState returns the opening position: empty board, full inventories,
// white to place the cathedral.
func NewState() *State {
	return &State{
		current: White,
		pieces:  [2]PlayerPieces{NewPlayerPieces(White), NewPlayerPieces(Black)},
		removed: make(map[PlayerAction]struct{}),
	}
}

// NewStateFromActions replays an action sequence into a fresh state.
// Every action must be legal in order.
func NewStateFromActions(actions []int) (*State, error) {
	s := NewState()
	for i, a := range actions {
		if err := s.ApplyAction(a); err != nil {
			return nil, fmt.Errorf("action %d of %d: %w", i, len(actions), err)
		}
	}
	return s, nil
}

func (s *State) CurrentPlayer() Player { return s.current }

// MoveCount is the number of placements in history, removed ones included.
func (s *State) MoveCount() int { return len(s.history) }

// Board returns a copy of the grid; mutating it does not touch the game.
func (s *State) Board() Board { return s.board }

// At returns the cell state at (x, y).
func (s *State) At(x, y int) CellState { return s.board.Cells[y][x] }

// History returns a copy of the placement log.
func (s *State) History() []PlayerAction {
	return append([]PlayerAction(nil), s.history...)
}

// IsRemoved reports whether the history entry was captured off the board.
func (s *State) IsRemoved(pa PlayerAction) bool {
	return s.isRemoved(pa)
}

func (s *State) isRemoved(pa PlayerAction) bool {
	_, ok := s.removed[pa]
	return ok
}

// Pieces returns a copy of the player's inventory.
func (s *State) Pieces(p Player) PlayerPieces { return s.pieces[p] }

// String renders the board in the serialization format.
func (s *State) String() string { return s.board.String() }

// HistoryString renders the action ids space-separated, oldest first.
func (s *State) HistoryString() string {
	var sb strings.Builder
	for i, pa := range s.history {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(pa.Action))
	}
	return sb.String()
}

// Clone returns a deep copy sharing nothing mutable with the receiver.
func (s *State) Clone() *State {
	c := &State{
		current: s.current,
		board:   s.board,
		pieces:  s.pieces,
		history: append([]PlayerAction(nil), s.history...),
		removed: make(map[PlayerAction]struct{}, len(s.removed)),
	}
	for pa := range s.removed {
		c.removed[pa] = struct{}{}
	}
	return c
}

// LegalActions enumerates every legal placement for the current player as
// ascending, duplicate-free action ids. The very first move of the game
// is the cathedral only.
func (s *State) LegalActions() []int {
	var actions []int
	if len(s.history) == 0 {
		actions = s.actionsForType(BuildingCathedral, s.current, nil)
	} else {
		for _, t := range s.pieces[s.current].AvailableTypes() {
			actions = s.actionsForType(t, s.current, actions)
		}
	}
	sort.Ints(actions)
	return actions
}

// actionsForType appends the valid placements of one building type over
// every anchor and usable rotation.
func (s *State) actionsForType(t BuildingType, p Player, actions []int) []int {
	if !s.pieces[p].Available(t) {
		return actions
	}
	b := GetBuilding(t)
	color := PieceColor(t, p)
	for y := 0; y < BoardHeight; y++ {
		for x := 0; x < BoardWidth; x++ {
			for r := Rotate0; r <= b.MaxRotation(); r++ {
				if s.placementValid(b, r, Square{X: x, Y: y}, color) {
					actions = append(actions,
						int(t)*BoardCells*MaxRotations+int(r)*BoardCells+y*BoardWidth+x)
				}
			}
		}
	}
	return actions
}

// placementValid is Board.IsMoveValid without materializing the move.
func (s *State) placementValid(b *Building, r Rotation, pos Square, color CellState) bool {
	for _, rel := range b.forms[r] {
		sq := rel.Add(pos)
		if !sq.OnBoard() || !colorCompatible(s.board.At(sq), color) {
			return false
		}
	}
	return true
}

// HasMove reports whether the player has any legal placement left,
// independent of whose turn it is.
func (s *State) HasMove(p Player) bool {
	for _, t := range s.pieces[p].AvailableTypes() {
		b := GetBuilding(t)
		color := PieceColor(t, p)
		for y := 0; y < BoardHeight; y++ {
			for x := 0; x < BoardWidth; x++ {
				for r := Rotate0; r <= b.MaxRotation(); r++ {
					if s.placementValid(b, r, Square{X: x, Y: y}, color) {
						return true
					}
				}
			}
		}
	}
	return false
}

// ApplyAction decodes and applies an encoded action for the current
// player.
func (s *State) ApplyAction(action int) error {
	m, err := DecodeMove(action)
	if err != nil {
		return err
	}
	return s.MakeMove(m)
}

// MakeMove validates and applies a move for the current player. On error
// nothing changes.
func (s *State) MakeMove(m Move) error {
	if len(s.history) == 0 && m.Type != BuildingCathedral {
		return fmt.Errorf("%w: the opening move is the cathedral", ErrIllegalMove)
	}
	if !s.pieces[s.current].Available(m.Type) {
		return fmt.Errorf("%w: no %v left for %v", ErrIllegalMove, m.Type, s.current)
	}
	if !s.board.IsMoveValid(m, s.current) {
		return fmt.Errorf("%w: %v rotated %d at (%d,%d)", ErrIllegalMove,
			m.Type, m.Rotation.Degrees(), m.Pos.X, m.Pos.Y)
	}
	s.apply(m)
	return nil
}

// apply places the move for the current player, records it, runs the
// capture check and advances the turn. Callers validate first; undo
// replay calls this directly because history is trusted.
func (s *State) apply(m Move) {
	color := PieceColor(m.Type, s.current)
	s.board.PlaceColor(m.Form, color)
	s.pieces[s.current].Use(m.Type)
	s.history = append(s.history, PlayerAction{Player: s.current, Action: m.Encode()})

	s.checkCaptures(m, color)
	s.advanceTurn()
}

// advanceTurn hands the turn to the opponent only if they can move;
// otherwise the current player keeps placing.
func (s *State) advanceTurn() {
	next := s.current.Opponent()
	if s.HasMove(next) {
		s.current = next
	}
}

// IsTerminal reports whether neither player can place anything.
func (s *State) IsTerminal() bool {
	return !s.HasMove(s.current) && !s.HasMove(s.current.Opponent())
}

// UndoMove pops the last placement and rebuilds the state by replaying
// the rest of history from the start. Captures are not invertible square
// by square, so replay is the correctness-preserving path; games are
// short enough that the linear cost never matters.
func (s *State) UndoMove() {
	if len(s.history) == 0 {
		return
	}
	replay := make([]PlayerAction, len(s.history)-1)
	copy(replay, s.history[:len(s.history)-1])

	s.board = Board{}
	s.current = White
	s.history = s.history[:0]
	s.removed = make(map[PlayerAction]struct{})
	s.pieces[White].Reset()
	s.pieces[Black].Reset()

	for _, pa := range replay {
		s.apply(mustDecode(pa.Action))
	}
}

// Scores computes both players' scores: the initial 47 minus the square
// count of every non-removed placement of that color. The neutral
// cathedral counts for neither.
func (s *State) Scores() (white, black int) {
	white, black = InitialScore, InitialScore
	for _, pa := range s.history {
		if s.isRemoved(pa) {
			continue
		}
		m := mustDecode(pa.Action)
		switch PieceColor(m.Type, pa.Player) {
		case WhitePiece:
			white -= len(m.Form)
		case BlackPiece:
			black -= len(m.Form)
		}
	}
	return white, black
}

// Returns gives the terminal outcome from each player's view, higher
// score winning. Zeros while the game runs or on a draw.
func (s *State) Returns() (whiteReturn, blackReturn float64) {
	if !s.IsTerminal() {
		return 0, 0
	}
	white, black := s.Scores()
	switch {
	case white > black:
		return 1, -1
	case black > white:
		return -1, 1
	}
	return 0, 0
}
