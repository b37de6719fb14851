package httpserver

import "github.com/CasparQuast/AlphaCathedral/internal/cathedral"

// MoveDTO is the GUI spelling of a placement: client building id,
// quarter turns in degrees, anchor square.
type MoveDTO struct {
	Building int `json:"building"`
	Degrees  int `json:"degrees"`
	X        int `json:"x"`
	Y        int `json:"y"`
}

func dtoToAction(m MoveDTO) (int, cathedral.Player, error) {
	return ParseClientMove(m.Building, m.Degrees, m.X, m.Y)
}

func actionToDTO(action int, p cathedral.Player) (MoveDTO, error) {
	mv, err := cathedral.DecodeMove(action)
	if err != nil {
		return MoveDTO{}, err
	}
	id, err := ClientID(mv.Type, p)
	if err != nil {
		return MoveDTO{}, err
	}
	return MoveDTO{
		Building: id,
		Degrees:  mv.Rotation.Degrees(),
		X:        mv.Pos.X,
		Y:        mv.Pos.Y,
	}, nil
}

// AiMoveRequest asks the engine to pick a move but not to play it.
// GameID selects a stored game; Actions instead replays a position from
// the opening when the client keeps its own history.
type AiMoveRequest struct {
	GameID   string `json:"game_id"`
	Actions  []int  `json:"actions"`
	MaxDepth int    `json:"max_depth"`
	TimeMs   int64  `json:"time_ms"`

	UseMCTS         bool `json:"use_mcts"`
	MCTSSimulations int  `json:"mcts_simulations"`
}

type AiMoveResponse struct {
	BestAction int      `json:"best_action"` // -1 when no move exists
	BestMove   *MoveDTO `json:"best_move,omitempty"`
	Score      int      `json:"score"`
	WinProb    float32  `json:"win_prob"` // white's winning chance
	Depth      int      `json:"depth"`
	Nodes      int64    `json:"nodes"`
	Board      string   `json:"board"` // position searched, unchanged
	ToMove     int      `json:"to_move"`
	WhiteScore int      `json:"white_score"`
	BlackScore int      `json:"black_score"`
	Status     string   `json:"status"` // "ok" / "no_moves" / "nn_error"
	TimeMs     int64    `json:"time_ms"`
}

type NewGameResponse struct {
	GameID       string `json:"game_id"`
	Board        string `json:"board"`
	ToMove       int    `json:"to_move"` // 0=white, 1=black
	WhiteScore   int    `json:"white_score"`
	BlackScore   int    `json:"black_score"`
	LegalActions []int  `json:"legal_actions"`
}

// PlayRequest places one building. Action is the flat id; a client that
// only speaks the GUI numbering sends Move instead.
type PlayRequest struct {
	GameID string   `json:"game_id"`
	Action *int     `json:"action,omitempty"`
	Move   *MoveDTO `json:"move,omitempty"`
}

// PlayResponse carries the position after the placement. Removed holds
// history indexes of buildings captured off the board, so the client
// can hand pieces back without recomputing regions.
type PlayResponse struct {
	Board        string `json:"board"`
	ToMove       int    `json:"to_move"`
	WhiteScore   int    `json:"white_score"`
	BlackScore   int    `json:"black_score"`
	LegalActions []int  `json:"legal_actions"`
	History      []int  `json:"history"`
	Removed      []int  `json:"removed"`
	Status       string `json:"status"`
}

// StateRequest fetches the current board for a game id, e.g. after a
// page reload.
type StateRequest struct {
	GameID string `json:"game_id"`
}

// StateResponse mirrors PlayResponse; /api/undo answers with it too.
type StateResponse struct {
	Board        string `json:"board"`
	ToMove       int    `json:"to_move"`
	WhiteScore   int    `json:"white_score"`
	BlackScore   int    `json:"black_score"`
	LegalActions []int  `json:"legal_actions"`
	History      []int  `json:"history"`
	Removed      []int  `json:"removed"`
	Status       string `json:"status"`
}

// UndoRequest rewinds the last placement of a game.
type UndoRequest struct {
	GameID string `json:"game_id"`
}

func playerToInt(p cathedral.Player) int {
	switch p {
	case cathedral.White:
		return 0
	case cathedral.Black:
		return 1
	default:
		return -1
	}
}

// historyActions flattens the placement log to action ids.
func historyActions(s *cathedral.State) []int {
	hist := s.History()
	out := make([]int, len(hist))
	for i, pa := range hist {
		out[i] = pa.Action
	}
	return out
}

// removedIndexes lists positions in the history whose buildings were
// captured off the board.
func removedIndexes(s *cathedral.State) []int {
	out := []int{}
	for i, pa := range s.History() {
		if s.IsRemoved(pa) {
			out = append(out, i)
		}
	}
	return out
}

// statusOf reports "ongoing" until neither side can place, then the
// winner by remaining score.
func statusOf(s *cathedral.State) string {
	if !s.IsTerminal() {
		return "ongoing"
	}
	whiteReturn, _ := s.Returns()
	switch {
	case whiteReturn > 0:
		return "white_won"
	case whiteReturn < 0:
		return "black_won"
	}
	return "draw"
}
