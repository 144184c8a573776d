package room

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrGameNotFound is returned when no game is running under the key
var ErrGameNotFound = errors.New("game not found")

// ErrGameIsOver is returned for an action that reaches a game after its showdown
var ErrGameIsOver = errors.New("game is over")

// ErrGameExists is returned when a game is started twice under the same key
var ErrGameExists = errors.New("a game is already running under this key")

// RollbackError is returned when StartGame failed after taking money
// The players in Refunded got their bet back, RefundFailed holds what could not be returned.
type RollbackError struct {
	Refunded     []string
	RefundFailed map[string]int
	Cause        error
}

func (r RollbackError) Error() string {
	if len(r.RefundFailed) > 0 {
		return fmt.Sprintf("game could not start (%v), refund failed for %s", r.Cause, joinAmounts(r.RefundFailed))
	}

	return fmt.Sprintf("game could not start (%v), bets refunded", r.Cause)
}

// Unwrap returns the reason the game could not start
func (r RollbackError) Unwrap() error {
	return r.Cause
}

// SettlementError is returned when winnings could not be credited
// The chips are stuck in the pot of a game that has already been torn down.
type SettlementError struct {
	GameID string
	Unpaid map[string]int
}

func (s SettlementError) Error() string {
	return fmt.Sprintf("could not pay out game %s: %s", s.GameID, joinAmounts(s.Unpaid))
}

func joinAmounts(amounts map[string]int) string {
	ids := make([]string, 0, len(amounts))
	for id := range amounts {
		ids = append(ids, id)
	}

	sort.Strings(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%s=%d", id, amounts[id])
	}

	return strings.Join(parts, ", ")
}
