package ledger

import (
	"context"
	"sync"
)

// Memory is an in-process ledger
// Deduct charges players one at a time like a remote wallet would, so a failure part-way
// through returns a PartialDeductionError.
type Memory struct {
	mu       sync.Mutex
	balances map[string]int
}

// NewMemory returns a ledger seeded with balances
func NewMemory(balances map[string]int) *Memory {
	m := &Memory{balances: make(map[string]int)}
	for id, balance := range balances {
		m.balances[id] = balance
	}

	return m
}

// Balance returns the player's balance
func (m *Memory) Balance(ctx context.Context, playerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance, ok := m.balances[playerID]
	if !ok {
		return 0, ErrPlayerNotFound
	}

	return balance, nil
}

// CheckFunds returns an InsufficientFundsError naming the players who cannot cover amount
func (m *Memory) CheckFunds(ctx context.Context, playerIDs []string, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	short := make([]string, 0)
	for _, id := range playerIDs {
		if m.balances[id] < amount {
			short = append(short, id)
		}
	}

	if len(short) > 0 {
		return InsufficientFundsError{Players: short, Required: amount}
	}

	return nil
}

// Deduct charges each player in order and stops at the first failure
func (m *Memory) Deduct(ctx context.Context, playerIDs []string, amount int, reason string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	deducted := make([]string, 0, len(playerIDs))
	for _, id := range playerIDs {
		if err := ctx.Err(); err != nil {
			return m.partial(deducted, err)
		}

		if m.balances[id] < amount {
			return m.partial(deducted, InsufficientFundsError{Players: []string{id}, Required: amount})
		}

		m.balances[id] -= amount
		deducted = append(deducted, id)
	}

	return nil
}

func (m *Memory) partial(deducted []string, cause error) error {
	if len(deducted) == 0 {
		return cause
	}

	return PartialDeductionError{Deducted: deducted, Cause: cause}
}

// Credit adds amount to the player's balance, opening an account if needed
func (m *Memory) Credit(ctx context.Context, playerID string, amount int, reason string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances[playerID] += amount
	return nil
}
