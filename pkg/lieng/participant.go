package lieng

import "lieng-server/pkg/deck"

// Seat identifies a player joining the game
type Seat struct {
	PlayerID string
	Name     string
}

// Participant is an individual in the Liêng game
type Participant struct {
	PlayerID string
	Name     string
	Seat     int

	hand       deck.Hand
	folded     bool
	allIn      bool
	currentBet int
}

// NewParticipant returns a new participant
func NewParticipant(seat Seat, index int) *Participant {
	return &Participant{
		PlayerID: seat.PlayerID,
		Name:     seat.Name,
		Seat:     index,
		hand:     make(deck.Hand, 0, cardsPerHand),
	}
}

// Hand returns a shallow copy of the participant's hand
func (p *Participant) Hand() deck.Hand {
	return p.hand.Clone()
}

// HasFolded returns true if the participant folded
func (p *Participant) HasFolded() bool {
	return p.folded
}

// IsAllIn returns true if the participant committed their whole balance
func (p *Participant) IsAllIn() bool {
	return p.allIn
}

// CurrentBet returns how much the participant put in during the betting round, not counting the ante
func (p *Participant) CurrentBet() int {
	return p.currentBet
}

func (p *Participant) canAct() bool {
	return !p.folded && !p.allIn
}
