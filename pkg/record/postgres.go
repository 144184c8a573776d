package record

import (
	"context"
	"database/sql"
	"lieng-server/pkg/db"

	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const gamesColumns = `id, clan_id, channel_id, creator_id, bet_amount, player_ids, state, is_active, created, ended`

// Postgres stores records in lieng_games
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Postgres store
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Create inserts an active record
func (p *Postgres) Create(ctx context.Context, g *Game) error {
	const query = `
INSERT INTO lieng_games (id, clan_id, channel_id, creator_id, bet_amount, player_ids)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created`

	row := p.db.QueryRowContext(ctx, query, g.ID, g.Location.ClanID, g.Location.ChannelID, g.CreatorID, g.BetAmount, pq.Array(g.PlayerIDs))
	if err := row.Scan(&g.Created); err != nil {
		return errors.Wrap(err, "could not create game record")
	}

	g.Active = true
	return nil
}

// End stores the summary and marks the game inactive
func (p *Postgres) End(ctx context.Context, id string, summary *Summary) error {
	b, err := json.Marshal(summary)
	if err != nil {
		return errors.Wrap(err, "could not marshal summary")
	}

	const query = `
UPDATE lieng_games
SET state = $1, is_active = FALSE, ended = (NOW() AT TIME ZONE 'utc'), updated = (NOW() AT TIME ZONE 'utc')
WHERE id = $2`

	res, err := p.db.ExecContext(ctx, query, b, id)
	if err != nil {
		return errors.Wrap(err, "could not end game record")
	}

	if ra, _ := res.RowsAffected(); ra == 0 {
		return ErrNotFound
	}

	return nil
}

// Get returns a record by its ID
func (p *Postgres) Get(ctx context.Context, id string) (*Game, error) {
	const query = `
SELECT ` + gamesColumns + `
FROM lieng_games
WHERE id = $1`

	g, err := gameByRow(p.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	return g, err
}

// ActiveGames returns the records of games that never ended, e.g. after a crash
func (p *Postgres) ActiveGames(ctx context.Context) ([]*Game, error) {
	const query = `
SELECT ` + gamesColumns + `
FROM lieng_games
WHERE is_active
ORDER BY created`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "could not query active games")
	}
	defer rows.Close()

	games := make([]*Game, 0)
	for rows.Next() {
		g, err := gameByRow(rows)
		if err != nil {
			return nil, err
		}

		games = append(games, g)
	}

	return games, rows.Err()
}

func gameByRow(row db.Scanner) (*Game, error) {
	var g Game
	var data []byte
	var ended sql.NullTime

	if err := row.Scan(&g.ID, &g.Location.ClanID, &g.Location.ChannelID, &g.CreatorID, &g.BetAmount,
		pq.Array(&g.PlayerIDs), &data, &g.Active, &g.Created, &ended); err != nil {
		return nil, err
	}

	if data != nil {
		g.Summary = &Summary{}
		if err := json.Unmarshal(data, g.Summary); err != nil {
			return nil, errors.Wrap(err, "could not unmarshal summary")
		}
	}

	g.Ended = ended.Time
	return &g, nil
}
