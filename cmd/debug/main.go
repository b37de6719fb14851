package main

import (
	"flag"
	"fmt"
	"math/rand"

	"github.com/CasparQuast/AlphaCathedral/internal/cathedral"
)

func main() {
	seed := flag.Int64("seed", 1, "random seed for the demo game")
	flag.Parse()

	s := cathedral.NewState()
	fmt.Println("initial board:")
	fmt.Println(s)
	fmt.Println("legal actions:", len(s.LegalActions()))

	rng := rand.New(rand.NewSource(*seed))
	for !s.IsTerminal() {
		legal := s.LegalActions()
		if len(legal) == 0 {
			break
		}
		a := legal[rng.Intn(len(legal))]
		mv, err := cathedral.DecodeMove(a)
		if err != nil {
			panic(err)
		}
		fmt.Printf("move %d: %v plays %v turned %d at (%d,%d)\n",
			s.MoveCount()+1, s.CurrentPlayer(), mv.Type, mv.Rotation.Degrees(), mv.Pos.X, mv.Pos.Y)
		if err := s.ApplyAction(a); err != nil {
			panic(err)
		}
	}

	fmt.Println("final board:")
	fmt.Println(s)
	white, black := s.Scores()
	fmt.Printf("scores: white %d, black %d\n", white, black)
	whiteReturn, _ := s.Returns()
	switch {
	case whiteReturn > 0:
		fmt.Println("white wins")
	case whiteReturn < 0:
		fmt.Println("black wins")
	default:
		fmt.Println("draw")
	}
}
