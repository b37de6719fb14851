package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/CasparQuast/AlphaCathedral/internal/cathedral"
	"github.com/CasparQuast/AlphaCathedral/internal/engine"
	"github.com/CasparQuast/AlphaCathedral/internal/mcts"
	"github.com/CasparQuast/AlphaCathedral/internal/server/game"
)

var (
	errMissingMove = errors.New("missing action or move")
	errWrongSide   = errors.New("building belongs to the other player")
)

// Handler implements http.Handler for the /api/* routes.
type Handler struct {
	games  *game.Manager
	engine *engine.Engine

	// The alpha-beta engine keeps one transposition table, so only one
	// search may run on it at a time. Concurrent ai_move requests queue.
	searchMu sync.Mutex
}

func NewHandler() *Handler {
	return &Handler{
		games:  game.NewManager(),
		engine: engine.NewEngine(),
	}
}

func (h *Handler) Engine() *engine.Engine {
	return h.engine
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/new_game":
		h.handleNewGame(w, r)
	case "/api/play":
		h.handlePlay(w, r)
	case "/api/state":
		h.handleState(w, r)
	case "/api/undo":
		h.handleUndo(w, r)
	case "/api/ai_move":
		h.handleAiMove(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleNewGame(w http.ResponseWriter, r *http.Request) {
	g := h.games.NewGame()

	g.Mu.Lock()
	st := g.State
	white, black := st.Scores()
	resp := NewGameResponse{
		GameID:       g.ID,
		Board:        st.String(),
		ToMove:       playerToInt(st.CurrentPlayer()),
		WhiteScore:   white,
		BlackScore:   black,
		LegalActions: st.LegalActions(),
	}
	g.Mu.Unlock()

	writeJSON(w, resp)
}

func (h *Handler) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	g, err := h.games.Get(req.GameID)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	g.Mu.Lock()
	defer g.Mu.Unlock()
	st := g.State

	action, err := resolveAction(req, st.CurrentPlayer())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := st.ApplyAction(action); err != nil {
		http.Error(w, "illegal move", http.StatusBadRequest)
		return
	}
	h.games.Touch(g.ID)

	white, black := st.Scores()
	resp := PlayResponse{
		Board:        st.String(),
		ToMove:       playerToInt(st.CurrentPlayer()),
		WhiteScore:   white,
		BlackScore:   black,
		LegalActions: st.LegalActions(),
		History:      historyActions(st),
		Removed:      removedIndexes(st),
		Status:       statusOf(st),
	}
	writeJSON(w, resp)
}

// resolveAction accepts either encoding of a placement. A GUI move
// tuple also names the owner, which must be the side to move.
func resolveAction(req PlayRequest, toMove cathedral.Player) (int, error) {
	if req.Action != nil {
		return *req.Action, nil
	}
	if req.Move == nil {
		return 0, errMissingMove
	}
	action, owner, err := dtoToAction(*req.Move)
	if err != nil {
		return 0, err
	}
	if owner != toMove {
		return 0, errWrongSide
	}
	return action, nil
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	var req StateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	g, err := h.games.Get(req.GameID)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	g.Mu.Lock()
	resp := stateSnapshot(g.State)
	g.Mu.Unlock()

	writeJSON(w, resp)
}

// handleUndo pops the last placement. On a fresh board it is a no-op
// and still answers with the snapshot.
func (h *Handler) handleUndo(w http.ResponseWriter, r *http.Request) {
	var req UndoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	g, err := h.games.Get(req.GameID)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	g.Mu.Lock()
	g.State.UndoMove()
	resp := stateSnapshot(g.State)
	g.Mu.Unlock()
	h.games.Touch(g.ID)

	writeJSON(w, resp)
}

func stateSnapshot(st *cathedral.State) StateResponse {
	white, black := st.Scores()
	return StateResponse{
		Board:        st.String(),
		ToMove:       playerToInt(st.CurrentPlayer()),
		WhiteScore:   white,
		BlackScore:   black,
		LegalActions: st.LegalActions(),
		History:      historyActions(st),
		Removed:      removedIndexes(st),
		Status:       statusOf(st),
	}
}

func (h *Handler) handleAiMove(w http.ResponseWriter, r *http.Request) {
	var req AiMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	// Thinking runs on a private copy; the stored game never moves here.
	var st *cathedral.State
	switch {
	case req.GameID != "":
		g, err := h.games.Get(req.GameID)
		if err != nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		g.Mu.Lock()
		st = g.State.Clone()
		g.Mu.Unlock()
	case req.Actions != nil:
		replayed, err := cathedral.NewStateFromActions(req.Actions)
		if err != nil {
			http.Error(w, "invalid actions", http.StatusBadRequest)
			return
		}
		st = replayed
	default:
		http.Error(w, "missing game_id or actions", http.StatusBadRequest)
		return
	}

	depth := req.MaxDepth
	if depth <= 0 {
		depth = 2
	}
	// Early positions branch into the thousands; an unlimited search
	// would not come back, so the budget always has a ceiling.
	limit := 5 * time.Second
	if req.TimeMs > 0 {
		limit = time.Duration(req.TimeMs) * time.Millisecond
	}

	var res engine.SearchResult
	if req.UseMCTS {
		params := mcts.DefaultParams()
		if req.MCTSSimulations > 0 {
			params.Simulations = req.MCTSSimulations
		}
		params.MaxTime = limit
		res = *mcts.NewSearcher(h.engine.NN(), params).Search(st)
	} else {
		cfg := engine.SearchConfig{MaxDepth: depth, TimeLimit: limit}
		h.searchMu.Lock()
		res = h.engine.Search(st, cfg)
		h.searchMu.Unlock()
	}

	white, black := st.Scores()
	resp := AiMoveResponse{
		BestAction: -1,
		Score:      res.Score,
		Depth:      res.Depth,
		Nodes:      res.Nodes,
		Board:      st.String(),
		ToMove:     playerToInt(st.CurrentPlayer()),
		WhiteScore: white,
		BlackScore: black,
		TimeMs:     res.TimeUsed.Milliseconds(),
	}

	switch {
	case res.NNFailed:
		// Inference failed: report it and play nothing.
		resp.Status = "nn_error"
	case res.BestAction < 0:
		resp.Status = "no_moves"
	default:
		resp.Status = "ok"
		resp.BestAction = res.BestAction
		resp.WinProb = res.WinProb
		if dto, err := actionToDTO(res.BestAction, st.CurrentPlayer()); err == nil {
			resp.BestMove = &dto
		}
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("writeJSON error:", err)
	}
}
