package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/CasparQuast/AlphaCathedral/internal/cathedral"
	"github.com/CasparQuast/AlphaCathedral/internal/engine"
	"github.com/CasparQuast/AlphaCathedral/internal/mcts"
)

// moveRecord is one search decision inside a selfplay game.
type moveRecord struct {
	Action  int     `json:"action"`
	Visits  int64   `json:"visits"`
	Score   int     `json:"score"`
	WinProb float32 `json:"win_prob"`
	TimeMs  int64   `json:"time_ms"`
}

// gameRecord is one finished game, written as a single JSON line.
type gameRecord struct {
	Game       int          `json:"game"`
	Actions    []int        `json:"actions"`
	Moves      []moveRecord `json:"moves"`
	WhiteScore int          `json:"white_score"`
	BlackScore int          `json:"black_score"`
	Outcome    string       `json:"outcome"`
}

// player is one side's move picker; both search backends fit behind it.
type player struct {
	name   string
	search func(*cathedral.State) engine.SearchResult
}

func main() {
	modelPath := flag.String("model", "", "path to the ONNX evaluation model, empty runs the heuristic")
	libPath := flag.String("lib", "", "path to the onnxruntime shared library")
	games := flag.Int("games", 1, "number of games to play")
	depth := flag.Int("depth", 2, "alpha-beta search depth")
	timeMs := flag.Int64("time-ms", 3000, "per-move time budget")
	useMCTS := flag.Bool("mcts", true, "pick moves with MCTS instead of alpha-beta")
	sims := flag.Int("sims", 400, "MCTS simulations per move")
	outPath := flag.String("out", "selfplay.jsonl", "record file, one JSON object per game")
	benchmark := flag.Bool("benchmark", false, "run the alpha-beta vs MCTS arena instead of recording games")
	pprofAddr := flag.String("pprof", "", "pprof listen address, e.g. localhost:6060")
	flag.Parse()

	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof listening on %s", *pprofAddr)
			if err := http.ListenAndServe(*pprofAddr, nil); err != nil {
				log.Printf("pprof failed: %v", err)
			}
		}()
	}

	e := engine.NewEngine()
	if *modelPath != "" {
		log.Printf("initializing NN with model %s and lib %s", *modelPath, *libPath)
		if err := e.InitNN(*modelPath, *libPath); err != nil {
			log.Fatalf("failed to initialize NN: %v", err)
		}
	}

	limit := time.Duration(*timeMs) * time.Millisecond
	ab := abPlayer(e, *depth, limit)
	mc := mctsPlayer(e, *sims, limit)

	if *benchmark {
		runBenchmark(ab, mc, *games)
		return
	}

	mover := mc
	if !*useMCTS {
		mover = ab
	}
	runSelfplay(mover, *games, *outPath)
}

func abPlayer(e *engine.Engine, depth int, limit time.Duration) player {
	cfg := engine.SearchConfig{MaxDepth: depth, TimeLimit: limit}
	return player{
		name: fmt.Sprintf("alpha-beta depth %d", depth),
		search: func(st *cathedral.State) engine.SearchResult {
			return e.Search(st, cfg)
		},
	}
}

func mctsPlayer(e *engine.Engine, sims int, limit time.Duration) player {
	params := mcts.DefaultParams()
	params.Simulations = sims
	params.MaxTime = limit
	return player{
		name: fmt.Sprintf("mcts %d sims", sims),
		search: func(st *cathedral.State) engine.SearchResult {
			return *mcts.NewSearcher(e.NN(), params).Search(st)
		},
	}
}

func runSelfplay(mover player, games int, outPath string) {
	f, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("create %s: %v", outPath, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)

	log.Printf("selfplay with %s", mover.name)
	for g := 1; g <= games; g++ {
		rec := playRecordedGame(g, mover)
		log.Printf("game %d: %d moves, %s (%d:%d)",
			g, len(rec.Actions), rec.Outcome, rec.WhiteScore, rec.BlackScore)
		if err := enc.Encode(rec); err != nil {
			log.Fatalf("write record: %v", err)
		}
	}
	log.Printf("wrote %d games to %s", games, outPath)
}

func playRecordedGame(game int, mover player) gameRecord {
	st := cathedral.NewState()
	rec := gameRecord{Game: game, Actions: []int{}, Moves: []moveRecord{}}

	for moves := 0; moves < 2*cathedral.MaxGameLength; moves++ {
		res := mover.search(st)
		if res.BestAction < 0 {
			break
		}
		if err := st.ApplyAction(res.BestAction); err != nil {
			log.Fatalf("engine picked illegal action %d: %v", res.BestAction, err)
		}
		rec.Actions = append(rec.Actions, res.BestAction)
		rec.Moves = append(rec.Moves, moveRecord{
			Action:  res.BestAction,
			Visits:  res.Nodes,
			Score:   res.Score,
			WinProb: res.WinProb,
			TimeMs:  res.TimeUsed.Milliseconds(),
		})
		if st.IsTerminal() {
			break
		}
	}

	rec.WhiteScore, rec.BlackScore = st.Scores()
	rec.Outcome = outcomeString(st)
	return rec
}

func runBenchmark(ab, mc player, games int) {
	abWins, mcWins, draws := 0, 0, 0

	for g := 1; g <= games; g++ {
		// Alternate colors so first-move advantage cancels out.
		white, black := ab, mc
		if g%2 == 0 {
			white, black = mc, ab
		}

		fmt.Printf("\n=== game %d: white [%s] vs black [%s] ===\n", g, white.name, black.name)
		whiteReturn := playMatch(white, black)

		switch {
		case whiteReturn > 0:
			fmt.Printf("result: %s wins\n", white.name)
			if white.name == ab.name {
				abWins++
			} else {
				mcWins++
			}
		case whiteReturn < 0:
			fmt.Printf("result: %s wins\n", black.name)
			if black.name == ab.name {
				abWins++
			} else {
				mcWins++
			}
		default:
			fmt.Println("result: draw")
			draws++
		}
	}

	fmt.Printf("\n=== final score ===\n")
	fmt.Printf("%s: %d\n", ab.name, abWins)
	fmt.Printf("%s: %d\n", mc.name, mcWins)
	fmt.Printf("draws: %d\n", draws)
}

func playMatch(white, black player) float64 {
	st := cathedral.NewState()
	for moves := 0; moves < 2*cathedral.MaxGameLength && !st.IsTerminal(); moves++ {
		mover := white
		if st.CurrentPlayer() == cathedral.Black {
			mover = black
		}
		res := mover.search(st)
		if res.BestAction < 0 {
			break
		}
		if err := st.ApplyAction(res.BestAction); err != nil {
			log.Fatalf("engine picked illegal action %d: %v", res.BestAction, err)
		}
	}
	whiteReturn, _ := st.Returns()
	return whiteReturn
}

func outcomeString(st *cathedral.State) string {
	whiteReturn, _ := st.Returns()
	switch {
	case whiteReturn > 0:
		return "white_won"
	case whiteReturn < 0:
		return "black_won"
	}
	if st.IsTerminal() {
		return "draw"
	}
	return "aborted"
}
