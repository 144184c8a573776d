package identity

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrUnknownPlayer is returned when a resolver has no name for the player
var ErrUnknownPlayer = errors.New("unknown player")

// Resolver looks up display names
type Resolver interface {
	DisplayName(ctx context.Context, playerID string) (string, error)
}

// Placeholder returns the name used for a player that could not be resolved
// position is zero based.
func Placeholder(position int) string {
	return fmt.Sprintf("Player %d", position+1)
}

// NameOrPlaceholder resolves a display name, falling back to the player's position
func NameOrPlaceholder(ctx context.Context, r Resolver, playerID string, position int) string {
	if r != nil {
		name, err := r.DisplayName(ctx, playerID)
		if err == nil && name != "" {
			return name
		}

		if err != nil && err != ErrUnknownPlayer {
			logrus.WithError(err).WithField("player", playerID).Warn("could not resolve display name")
		}
	}

	return Placeholder(position)
}

// Static resolves names from a map
type Static struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewStatic returns a resolver backed by names
func NewStatic(names map[string]string) *Static {
	s := &Static{names: make(map[string]string)}
	for id, name := range names {
		s.names[id] = name
	}

	return s
}

// Set sets the player's name
func (s *Static) Set(playerID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[playerID] = name
}

// DisplayName returns the player's name
func (s *Static) DisplayName(ctx context.Context, playerID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, ok := s.names[playerID]
	if !ok {
		return "", ErrUnknownPlayer
	}

	return name, nil
}

// Postgres resolves names from the players table
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Postgres resolver
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// DisplayName returns the player's name
func (p *Postgres) DisplayName(ctx context.Context, playerID string) (string, error) {
	const query = `SELECT display_name FROM players WHERE id = $1`

	var name string
	if err := p.db.QueryRowContext(ctx, query, playerID).Scan(&name); err != nil {
		if err == sql.ErrNoRows {
			return "", ErrUnknownPlayer
		}

		return "", errors.Wrap(err, "could not get display name")
	}

	return name, nil
}

// SetDisplayName creates or renames a player
func (p *Postgres) SetDisplayName(ctx context.Context, playerID, name string) error {
	const query = `
INSERT INTO players (id, display_name) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE
SET display_name = EXCLUDED.display_name, updated = (NOW() AT TIME ZONE 'utc')`

	_, err := p.db.ExecContext(ctx, query, playerID, name)
	return errors.Wrap(err, "could not set display name")
}
