package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CasparQuast/AlphaCathedral/internal/cathedral"
	"github.com/CasparQuast/AlphaCathedral/internal/testutil"
)

func postJSON(t *testing.T, h http.Handler, path string, body, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec
}

func newGame(t *testing.T, h *Handler) NewGameResponse {
	t.Helper()
	var resp NewGameResponse
	rec := postJSON(t, h, "/api/new_game", nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("new_game status = %d", rec.Code)
	}
	return resp
}

func intPtr(v int) *int { return &v }

func TestNewGameStartsAtOpening(t *testing.T) {
	h := NewHandler()
	resp := newGame(t, h)

	if resp.GameID == "" {
		t.Fatal("empty game id")
	}
	if resp.ToMove != 0 {
		t.Fatalf("to_move = %d, want 0 (white)", resp.ToMove)
	}
	if resp.WhiteScore != cathedral.InitialScore || resp.BlackScore != cathedral.InitialScore {
		t.Fatalf("scores = %d/%d, want %d/%d",
			resp.WhiteScore, resp.BlackScore, cathedral.InitialScore, cathedral.InitialScore)
	}
	if len(resp.LegalActions) == 0 {
		t.Fatal("no legal actions in the opening")
	}
	for _, a := range resp.LegalActions {
		if cathedral.BuildingType(a/400) != cathedral.BuildingCathedral {
			t.Fatalf("opening offers action %d, want cathedral placements only", a)
		}
	}
}

func TestPlayAdvancesGame(t *testing.T) {
	h := NewHandler()
	g := newGame(t, h)

	var resp PlayResponse
	rec := postJSON(t, h, "/api/play",
		PlayRequest{GameID: g.GameID, Action: intPtr(5277)}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("play status = %d: %s", rec.Code, rec.Body.String())
	}
	if resp.ToMove != 1 {
		t.Fatalf("to_move = %d, want 1 (black) after the cathedral", resp.ToMove)
	}
	testutil.AssertEqual(t, resp.History, []int{5277}, "history")
	testutil.AssertEqual(t, resp.Removed, []int{}, "removed")
	// The cathedral is neutral; neither score moves.
	if resp.WhiteScore != cathedral.InitialScore || resp.BlackScore != cathedral.InitialScore {
		t.Fatalf("scores = %d/%d after neutral placement", resp.WhiteScore, resp.BlackScore)
	}
	if resp.Status != "ongoing" {
		t.Fatalf("status = %q, want ongoing", resp.Status)
	}
}

func TestPlayRejectsBadRequests(t *testing.T) {
	h := NewHandler()
	g := newGame(t, h)

	rec := postJSON(t, h, "/api/play",
		PlayRequest{GameID: "does-not-exist", Action: intPtr(5277)}, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown game: status = %d, want 404", rec.Code)
	}

	// A tavern before the cathedral is illegal.
	rec = postJSON(t, h, "/api/play",
		PlayRequest{GameID: g.GameID, Action: intPtr(0)}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("illegal move: status = %d, want 400", rec.Code)
	}

	rec = postJSON(t, h, "/api/play", PlayRequest{GameID: g.GameID}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty move: status = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/play", bytes.NewBufferString("{"))
	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("truncated json: status = %d, want 400", recorder.Code)
	}
}

func TestPlayAcceptsGUIMoveTuples(t *testing.T) {
	h := NewHandler()
	g := newGame(t, h)

	var resp PlayResponse
	rec := postJSON(t, h, "/api/play", PlayRequest{
		GameID: g.GameID,
		Move:   &MoveDTO{Building: 23, Degrees: 0, X: 7, Y: 7},
	}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("gui move status = %d: %s", rec.Code, rec.Body.String())
	}
	testutil.AssertEqual(t, resp.History, []int{5277}, "history")

	// Black to move now; a white building id is the wrong side.
	rec = postJSON(t, h, "/api/play", PlayRequest{
		GameID: g.GameID,
		Move:   &MoveDTO{Building: 12, Degrees: 0, X: 0, Y: 0},
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong side status = %d, want 400", rec.Code)
	}
}

func TestStateReflectsPlays(t *testing.T) {
	h := NewHandler()
	g := newGame(t, h)

	for _, a := range []int{5277, 55} {
		rec := postJSON(t, h, "/api/play",
			PlayRequest{GameID: g.GameID, Action: intPtr(a)}, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("play %d status = %d", a, rec.Code)
		}
	}

	var resp StateResponse
	rec := postJSON(t, h, "/api/state", StateRequest{GameID: g.GameID}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("state status = %d", rec.Code)
	}
	testutil.AssertEqual(t, resp.History, []int{5277, 55}, "history")
	if resp.ToMove != 0 {
		t.Fatalf("to_move = %d, want 0 (white)", resp.ToMove)
	}
	if resp.BlackScore != cathedral.InitialScore-1 {
		t.Fatalf("black score = %d, want %d after a tavern", resp.BlackScore, cathedral.InitialScore-1)
	}

	rec = postJSON(t, h, "/api/state", StateRequest{GameID: "nope"}, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown game state status = %d, want 404", rec.Code)
	}
}

func TestUndoRewindsOnePlacement(t *testing.T) {
	h := NewHandler()
	g := newGame(t, h)

	for _, a := range []int{5277, 55} {
		postJSON(t, h, "/api/play", PlayRequest{GameID: g.GameID, Action: intPtr(a)}, nil)
	}

	var resp StateResponse
	rec := postJSON(t, h, "/api/undo", UndoRequest{GameID: g.GameID}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("undo status = %d", rec.Code)
	}
	testutil.AssertEqual(t, resp.History, []int{5277}, "history after undo")
	if resp.ToMove != 1 {
		t.Fatalf("to_move = %d, want 1 (black)", resp.ToMove)
	}

	postJSON(t, h, "/api/undo", UndoRequest{GameID: g.GameID}, &resp)
	testutil.AssertEqual(t, resp.History, []int{}, "history after second undo")

	// Undo on a fresh board stays a no-op.
	rec = postJSON(t, h, "/api/undo", UndoRequest{GameID: g.GameID}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("undo on fresh board status = %d", rec.Code)
	}
	testutil.AssertEqual(t, resp.History, []int{}, "history after no-op undo")
}

func TestAiMoveThinksWithoutPlaying(t *testing.T) {
	h := NewHandler()
	g := newGame(t, h)

	var resp AiMoveResponse
	rec := postJSON(t, h, "/api/ai_move",
		AiMoveRequest{GameID: g.GameID, MaxDepth: 1, TimeMs: 10_000}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("ai_move status = %d: %s", rec.Code, rec.Body.String())
	}
	if resp.Status != "ok" {
		t.Fatalf("status = %q, want ok", resp.Status)
	}
	if cathedral.BuildingType(resp.BestAction/400) != cathedral.BuildingCathedral {
		t.Fatalf("best action %d is not a cathedral placement", resp.BestAction)
	}
	if resp.BestMove == nil || resp.BestMove.Building != 23 {
		t.Fatalf("best move dto = %+v, want building 23", resp.BestMove)
	}
	if resp.WinProb < 0 || resp.WinProb > 1 {
		t.Fatalf("win_prob = %v outside [0,1]", resp.WinProb)
	}

	var st StateResponse
	postJSON(t, h, "/api/state", StateRequest{GameID: g.GameID}, &st)
	testutil.AssertEqual(t, st.History, []int{}, "thinking must not move")
}

func TestAiMoveOnReplayedActions(t *testing.T) {
	h := NewHandler()

	var resp AiMoveResponse
	rec := postJSON(t, h, "/api/ai_move",
		AiMoveRequest{Actions: []int{5277, 55}, MaxDepth: 1, TimeMs: 10_000}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("ai_move status = %d: %s", rec.Code, rec.Body.String())
	}
	if resp.Status != "ok" {
		t.Fatalf("status = %q, want ok", resp.Status)
	}
	if resp.ToMove != 0 {
		t.Fatalf("to_move = %d, want 0 (white)", resp.ToMove)
	}

	rec = postJSON(t, h, "/api/ai_move",
		AiMoveRequest{Actions: []int{0}, MaxDepth: 1}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid replay status = %d, want 400", rec.Code)
	}

	rec = postJSON(t, h, "/api/ai_move", AiMoveRequest{MaxDepth: 1}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty request status = %d, want 400", rec.Code)
	}

	rec = postJSON(t, h, "/api/ai_move",
		AiMoveRequest{GameID: "nope", MaxDepth: 1}, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown game status = %d, want 404", rec.Code)
	}
}

func TestAiMoveWithMCTS(t *testing.T) {
	h := NewHandler()
	g := newGame(t, h)

	var resp AiMoveResponse
	rec := postJSON(t, h, "/api/ai_move", AiMoveRequest{
		GameID:          g.GameID,
		UseMCTS:         true,
		MCTSSimulations: 32,
		TimeMs:          10_000,
	}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("mcts ai_move status = %d: %s", rec.Code, rec.Body.String())
	}
	if resp.Status != "ok" {
		t.Fatalf("status = %q, want ok", resp.Status)
	}
	if cathedral.BuildingType(resp.BestAction/400) != cathedral.BuildingCathedral {
		t.Fatalf("best action %d is not a cathedral placement", resp.BestAction)
	}
	if resp.Nodes <= 0 {
		t.Fatalf("nodes = %d, want > 0", resp.Nodes)
	}
}

func TestAiMoveReportsNoMovesWhenFinished(t *testing.T) {
	h := NewHandler()
	g := newGame(t, h)

	legal := g.LegalActions
	status := "ongoing"
	for moves := 0; status == "ongoing"; moves++ {
		if moves > 2*cathedral.MaxGameLength {
			t.Fatal("game did not finish")
		}
		if len(legal) == 0 {
			t.Fatal("ongoing game with no legal actions")
		}
		var resp PlayResponse
		rec := postJSON(t, h, "/api/play",
			PlayRequest{GameID: g.GameID, Action: intPtr(legal[0])}, &resp)
		if rec.Code != http.StatusOK {
			t.Fatalf("play status = %d: %s", rec.Code, rec.Body.String())
		}
		legal = resp.LegalActions
		status = resp.Status
	}
	if status != "white_won" && status != "black_won" && status != "draw" {
		t.Fatalf("terminal status = %q", status)
	}

	var resp AiMoveResponse
	rec := postJSON(t, h, "/api/ai_move",
		AiMoveRequest{GameID: g.GameID, MaxDepth: 1}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("ai_move status = %d", rec.Code)
	}
	if resp.Status != "no_moves" {
		t.Fatalf("status = %q, want no_moves", resp.Status)
	}
	if resp.BestAction != -1 || resp.BestMove != nil {
		t.Fatalf("finished game returned move %d (%+v)", resp.BestAction, resp.BestMove)
	}
}

func TestAPIRejectsWrongMethodAndPath(t *testing.T) {
	h := NewHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/new_game", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d, want 405", rec.Code)
	}

	rec = postJSON(t, h, "/api/bogus", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route status = %d, want 404", rec.Code)
	}
}
