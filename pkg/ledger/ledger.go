package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Ledger holds the players' balances
// Every call is atomic per player, two games deducting from the same player cannot both pass the balance check.
type Ledger interface {
	// Balance returns the player's balance
	Balance(ctx context.Context, playerID string) (int, error)

	// CheckFunds returns an InsufficientFundsError naming every player whose balance is below amount
	CheckFunds(ctx context.Context, playerIDs []string, amount int) error

	// Deduct takes amount from every player
	// An implementation either deducts from all or none, or returns a PartialDeductionError
	// naming who was charged.
	Deduct(ctx context.Context, playerIDs []string, amount int, reason string) error

	// Credit adds amount to the player's balance
	Credit(ctx context.Context, playerID string, amount int, reason string) error
}

// InsufficientFundsError is returned when one or more players cannot cover an amount
type InsufficientFundsError struct {
	Players  []string
	Required int
}

func (i InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for %s, %d required", strings.Join(i.Players, ", "), i.Required)
}

// PartialDeductionError is returned when a multi-player deduction stopped half-way
// Deducted lists the players whose balance was charged and must be refunded.
type PartialDeductionError struct {
	Deducted []string
	Cause    error
}

func (p PartialDeductionError) Error() string {
	return fmt.Sprintf("deducted from %d player(s) before failing: %v", len(p.Deducted), p.Cause)
}

// Unwrap returns the error that stopped the deduction
func (p PartialDeductionError) Unwrap() error {
	return p.Cause
}

// ErrPlayerNotFound is returned when the ledger has no account for the player
var ErrPlayerNotFound = errors.New("player has no account")

// ErrInvalidAmount is returned for non-positive amounts
var ErrInvalidAmount = errors.New("amount must be greater than zero")
