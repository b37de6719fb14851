package game

import (
	"sync"
	"time"

	"github.com/CasparQuast/AlphaCathedral/internal/cathedral"
)

// GameState is one hosted match. The rules state mutates in place, so
// handlers hold Mu across every read-modify cycle on State.
type GameState struct {
	ID string

	Mu    sync.Mutex
	State *cathedral.State

	CreatedAt time.Time
	UpdatedAt time.Time
}
