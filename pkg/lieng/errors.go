package lieng

import (
	"errors"
	"fmt"
)

// ErrNotYourTurn is returned when a player acts out of turn
var ErrNotYourTurn = errors.New("it is not your turn")

// ErrInvalidAction is the parent of every rejected action
var ErrInvalidAction = errors.New("invalid action")

// ErrCannotCheck is returned when a player checks while facing a bet
var ErrCannotCheck = fmt.Errorf("%w: cannot check while facing a bet", ErrInvalidAction)

// ErrRaiseTooSmall is returned when a raise is smaller than the bet amount
var ErrRaiseTooSmall = fmt.Errorf("%w: raise is smaller than the bet amount", ErrInvalidAction)

// ErrNothingToCommit is returned when a player goes all-in with an empty balance
var ErrNothingToCommit = fmt.Errorf("%w: no chips to commit", ErrInvalidAction)

// ErrBettingClosed is returned when an action arrives outside the betting round
var ErrBettingClosed = errors.New("betting is closed")

// ErrAlreadyDealt is returned when Deal() is called twice
var ErrAlreadyDealt = errors.New("cards have already been dealt")

// ErrStaleMove is returned when a prepared move is committed after the game moved on
var ErrStaleMove = errors.New("the move is no longer valid")

// ErrDuplicatePlayer is returned when a player is seated twice
var ErrDuplicatePlayer = errors.New("player is already seated")

// ErrInvalidBetAmount is returned when the bet amount is not positive
var ErrInvalidBetAmount = errors.New("bet amount must be greater than zero")

// PlayerCountError is an error on the number of players in the game
type PlayerCountError struct {
	Min int
	Max int
	Got int
}

func (p PlayerCountError) Error() string {
	return fmt.Sprintf("expected %d-%d players, got %d", p.Min, p.Max, p.Got)
}
