package lieng

import (
	"fmt"
	"strings"
	"time"
)

// Action is something a player can do on their turn
type Action string

// actions
const (
	ActionCheck Action = "check"
	ActionCall  Action = "call"
	ActionFold  Action = "fold"
	ActionRaise Action = "raise"
	ActionAllIn Action = "allin"
)

// ActionFromString parses an action
func ActionFromString(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionCheck, ActionCall, ActionFold, ActionRaise, ActionAllIn:
		return a, nil
	}

	return "", fmt.Errorf("%w: unknown action %q", ErrInvalidAction, s)
}

// ActionRecord is an entry in the game's action history
type ActionRecord struct {
	PlayerID string    `json:"playerId"`
	Action   Action    `json:"action"`
	Amount   int       `json:"amount"`
	Chips    int       `json:"chips"`
	TotalBet int       `json:"totalBet"`
	Forced   bool      `json:"forced,omitempty"`
	Round    Round     `json:"round"`
	Time     time.Time `json:"time"`
}

// Move is a validated action whose chips have not been collected yet
// Cost is what must be taken from the player's balance before the move is committed.
type Move struct {
	PlayerID string
	Action   Action
	Amount   int
	Cost     int
	Forced   bool

	turn int
}
