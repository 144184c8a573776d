package invite

import "errors"

// ErrInviteNotFound is returned when there is no open invite for the key
var ErrInviteNotFound = errors.New("invite not found")

// ErrInviteExpired is returned when a response arrives after the deadline
var ErrInviteExpired = errors.New("invite has expired")

// ErrNotInvited is returned when someone who was not mentioned responds
var ErrNotInvited = errors.New("you are not invited to this game")

// ErrInvalidDecision is returned for a decision other than join or decline
var ErrInvalidDecision = errors.New("invalid decision")

// ErrInvalidBetAmount is returned when the bet is not positive
var ErrInvalidBetAmount = errors.New("bet amount must be greater than zero")
