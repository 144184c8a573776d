package record

import (
	"context"
	"errors"
	"lieng-server/pkg/lieng"
	"lieng-server/pkg/messenger"
	"sync"
	"time"
)

// ErrNotFound is returned when there is no record for the game
var ErrNotFound = errors.New("game record not found")

// Game is a record in the `lieng_games` table
type Game struct {
	ID        string
	Location  messenger.Location
	CreatorID string
	BetAmount int
	PlayerIDs []string
	Active    bool
	Created   time.Time
	Ended     time.Time
	Summary   *Summary
}

// Summary is what is stored when a game ends
// Unpaid lists winners whose credit failed, those chips are stuck in the pot.
type Summary struct {
	State  *lieng.State   `json:"state"`
	Unpaid map[string]int `json:"unpaid,omitempty"`
}

// Store persists game records
type Store interface {
	Create(ctx context.Context, g *Game) error
	End(ctx context.Context, id string, summary *Summary) error
	Get(ctx context.Context, id string) (*Game, error)
}

// Memory keeps records in a map
type Memory struct {
	mu    sync.Mutex
	games map[string]*Game
}

// NewMemory returns an empty store
func NewMemory() *Memory {
	return &Memory{games: make(map[string]*Game)}
}

// Create stores a new active record
func (m *Memory) Create(ctx context.Context, g *Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := *g
	rec.Active = true
	rec.Created = time.Now()
	m.games[g.ID] = &rec
	return nil
}

// End marks the record inactive and stores the summary
func (m *Memory) End(ctx context.Context, id string, summary *Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[id]
	if !ok {
		return ErrNotFound
	}

	g.Active = false
	g.Ended = time.Now()
	g.Summary = summary
	return nil
}

// Get returns a copy of the record
func (m *Memory) Get(ctx context.Context, id string) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}

	rec := *g
	return &rec, nil
}
