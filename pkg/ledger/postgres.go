package ledger

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Postgres keeps balances in the players table and writes every change to ledger_entries
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Postgres ledger
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Balance returns the player's balance
func (p *Postgres) Balance(ctx context.Context, playerID string) (int, error) {
	const query = `SELECT balance FROM players WHERE id = $1`

	var balance int
	if err := p.db.QueryRowContext(ctx, query, playerID).Scan(&balance); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrPlayerNotFound
		}

		return 0, errors.Wrap(err, "could not get balance")
	}

	return balance, nil
}

// CheckFunds returns an InsufficientFundsError naming the players who cannot cover amount
// Players without an account are treated as having a zero balance.
func (p *Postgres) CheckFunds(ctx context.Context, playerIDs []string, amount int) error {
	short := make([]string, 0)
	for _, id := range playerIDs {
		balance, err := p.Balance(ctx, id)
		if err != nil && err != ErrPlayerNotFound {
			return err
		}

		if balance < amount {
			short = append(short, id)
		}
	}

	if len(short) > 0 {
		return InsufficientFundsError{Players: short, Required: amount}
	}

	return nil
}

// Deduct charges every player in a single transaction, all or nothing
func (p *Postgres) Deduct(ctx context.Context, playerIDs []string, amount int, reason string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	return p.withTx(ctx, func(tx *sql.Tx) error {
		const query = `
UPDATE players
SET balance = balance - $1, updated = (NOW() AT TIME ZONE 'utc')
WHERE id = $2 AND balance >= $1
RETURNING balance`

		short := make([]string, 0)
		for _, id := range playerIDs {
			var balance int
			if err := tx.QueryRowContext(ctx, query, amount, id).Scan(&balance); err != nil {
				if err == sql.ErrNoRows {
					short = append(short, id)
					continue
				}

				return errors.Wrapf(err, "could not deduct from %s", id)
			}

			if err := insertEntry(ctx, tx, id, -amount, balance, reason); err != nil {
				return err
			}
		}

		if len(short) > 0 {
			return InsufficientFundsError{Players: short, Required: amount}
		}

		return nil
	})
}

// Credit adds amount to the player's balance, opening an account if needed
func (p *Postgres) Credit(ctx context.Context, playerID string, amount int, reason string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	return p.withTx(ctx, func(tx *sql.Tx) error {
		const query = `
INSERT INTO players (id, balance) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE
SET balance = players.balance + EXCLUDED.balance, updated = (NOW() AT TIME ZONE 'utc')
RETURNING balance`

		var balance int
		if err := tx.QueryRowContext(ctx, query, playerID, amount).Scan(&balance); err != nil {
			return errors.Wrapf(err, "could not credit %s", playerID)
		}

		return insertEntry(ctx, tx, playerID, amount, balance, reason)
	})
}

func (p *Postgres) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "could not begin transaction")
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logrus.WithError(rbErr).Error("could not rollback transaction")
		}

		return err
	}

	return errors.Wrap(tx.Commit(), "could not commit transaction")
}

func insertEntry(ctx context.Context, tx *sql.Tx, playerID string, amount, balance int, reason string) error {
	const query = `
INSERT INTO ledger_entries (player_id, amount, balance_after, reason)
VALUES ($1, $2, $3, $4)`

	_, err := tx.ExecContext(ctx, query, playerID, amount, balance, reason)
	return errors.Wrap(err, "could not write ledger entry")
}
