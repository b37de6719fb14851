// Package main builds as a c-shared library so a native selfplay stack
// can query the rules without reimplementing them. Positions travel as
// the flat action history; boards alone cannot reproduce inventories or
// captured pieces.
package main

/*
#include <stdbool.h>
#include <stdint.h>
*/
import "C"
import (
	"fmt"
	"time"
	"unsafe"

	"github.com/CasparQuast/AlphaCathedral/internal/cathedral"
)

// replayActions rebuilds the position from a C action array.
func replayActions(actionsPtr *C.int32_t, numActions C.int) (*cathedral.State, error) {
	n := int(numActions)
	if n < 0 || n > cathedral.MaxGameLength {
		return nil, fmt.Errorf("action count %d out of range", n)
	}
	actions := make([]int, n)
	if n > 0 {
		for i, a := range unsafe.Slice(actionsPtr, n) {
			actions[i] = int(a)
		}
	}
	return cathedral.NewStateFromActions(actions)
}

//export CathedralIsLegal
func CathedralIsLegal(actionsPtr *C.int32_t, numActions C.int, action C.int32_t) C.bool {
	s, err := replayActions(actionsPtr, numActions)
	if err != nil {
		return C.bool(false)
	}
	for _, a := range s.LegalActions() {
		if a == int(action) {
			return C.bool(true)
		}
	}
	return C.bool(false)
}

// CathedralLegalMask writes a 0/1 byte per action id into maskOut, which
// must hold NumActions bytes, and returns the legal count. -1 flags a
// history that does not replay.
//
//export CathedralLegalMask
func CathedralLegalMask(actionsPtr *C.int32_t, numActions C.int, maskOut *C.int8_t) C.int32_t {
	start := time.Now()

	mask := unsafe.Slice(maskOut, cathedral.NumActions)
	for i := range mask {
		mask[i] = 0
	}

	s, err := replayActions(actionsPtr, numActions)
	if err != nil {
		return C.int32_t(-1)
	}

	legal := s.LegalActions()
	for _, a := range legal {
		mask[a] = 1
	}

	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		fmt.Printf("[cathedral bridge] slow call: moves=%d legal=%d took=%v\n",
			numActions, len(legal), elapsed)
	}
	return C.int32_t(len(legal))
}

// CathedralWinner reports 0 for white, 1 for black, 2 for a draw and 3
// while the game is still running. -1 flags a bad history.
//
//export CathedralWinner
func CathedralWinner(actionsPtr *C.int32_t, numActions C.int) C.int8_t {
	s, err := replayActions(actionsPtr, numActions)
	if err != nil {
		return C.int8_t(-1)
	}
	if !s.IsTerminal() {
		return C.int8_t(3)
	}
	whiteReturn, _ := s.Returns()
	switch {
	case whiteReturn > 0:
		return C.int8_t(0)
	case whiteReturn < 0:
		return C.int8_t(1)
	}
	return C.int8_t(2)
}

//export CathedralScores
func CathedralScores(actionsPtr *C.int32_t, numActions C.int, whiteOut, blackOut *C.int32_t) C.bool {
	s, err := replayActions(actionsPtr, numActions)
	if err != nil {
		return C.bool(false)
	}
	white, black := s.Scores()
	*whiteOut = C.int32_t(white)
	*blackOut = C.int32_t(black)
	return C.bool(true)
}

func main() {}
