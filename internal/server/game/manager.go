package game

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CasparQuast/AlphaCathedral/internal/cathedral"
)

var ErrNotFound = errors.New("game not found")

// Manager keeps the live games in memory, keyed by uuid.
type Manager struct {
	mu    sync.RWMutex
	games map[string]*GameState
}

func NewManager() *Manager {
	return &Manager{games: make(map[string]*GameState)}
}

// NewGame registers a fresh match under a random id.
func (m *Manager) NewGame() *GameState {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	g := &GameState{
		ID:        uuid.NewString(),
		State:     cathedral.NewState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.games[g.ID] = g
	return g
}

func (m *Manager) Get(id string) (*GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}

// Touch bumps the update time after a state mutation.
func (m *Manager) Touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.games[id]; ok {
		g.UpdatedAt = time.Now()
	}
}
