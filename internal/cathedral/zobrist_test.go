package cathedral

import (
	"math/rand"
	"testing"
)

func TestHashDeterministicAcrossInstances(t *testing.T) {
	a := NewState()
	b := NewState()
	if a.Hash() != b.Hash() {
		t.Fatalf("fresh states hash differently: %d vs %d", a.Hash(), b.Hash())
	}

	actions := []int{5277, 55, 401}
	for _, action := range actions {
		if err := a.ApplyAction(action); err != nil {
			t.Fatalf("apply failed: %v", err)
		}
		if err := b.ApplyAction(action); err != nil {
			t.Fatalf("apply failed: %v", err)
		}
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("same sequence hashes differently: %d vs %d", a.Hash(), b.Hash())
	}
}

func TestHashChangesWithMovesAndRestoresOnUndo(t *testing.T) {
	s := NewState()
	h0 := s.Hash()
	if err := s.ApplyAction(5277); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	h1 := s.Hash()
	if h1 == h0 {
		t.Fatal("hash unchanged after a placement")
	}
	s.UndoMove()
	if got := s.Hash(); got != h0 {
		t.Fatalf("hash after undo: got=%d want=%d", got, h0)
	}
}

func TestCloneHashesEqual(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	s := NewState()
	for move := 0; move < 8; move++ {
		actions := s.LegalActions()
		if err := s.ApplyAction(actions[rng.Intn(len(actions))]); err != nil {
			t.Fatalf("apply failed: %v", err)
		}
	}
	if got, want := s.Clone().Hash(), s.Hash(); got != want {
		t.Fatalf("clone hash: got=%d want=%d", got, want)
	}
}

func TestHashIncludesSideToMove(t *testing.T) {
	s := NewState()
	h := s.Hash()
	s.current = Black
	if s.Hash() == h {
		t.Fatal("side to move not hashed")
	}
}

func TestHashIncludesInventories(t *testing.T) {
	s := NewState()
	h := s.Hash()
	s.pieces[White].Use(BuildingTavern)
	if s.Hash() == h {
		t.Fatal("inventory counts not hashed")
	}
}
