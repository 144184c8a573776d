package lieng

import "lieng-server/pkg/deck"

// RevealedHand is a hand shown at the showdown
type RevealedHand struct {
	PlayerID string     `json:"playerId"`
	Name     string     `json:"name"`
	Cards    deck.Hand  `json:"-"`
	Hand     HandResult `json:"hand"`
	Winner   bool       `json:"winner"`
}

// Result is the end of a game
// Share is paid to every winner, Remainder is what floor division left in the pot.
type Result struct {
	Pot         int             `json:"pot"`
	Winners     []string        `json:"winners"`
	Share       int             `json:"share"`
	Remainder   int             `json:"remainder"`
	Uncontested bool            `json:"uncontested"`
	Hands       []*RevealedHand `json:"hands,omitempty"`
}

// Payouts returns the chips owed to each winner
func (r *Result) Payouts() map[string]int {
	payouts := make(map[string]int, len(r.Winners))
	for _, id := range r.Winners {
		payouts[id] += r.Share
	}

	return payouts
}

// IsWinner returns true if the player won a share of the pot
func (r *Result) IsWinner(playerID string) bool {
	for _, id := range r.Winners {
		if id == playerID {
			return true
		}
	}

	return false
}

// ParticipantState is the public view of a participant
type ParticipantState struct {
	PlayerID   string `json:"playerId"`
	Name       string `json:"name"`
	Seat       int    `json:"seat"`
	Folded     bool   `json:"folded"`
	AllIn      bool   `json:"allIn"`
	CurrentBet int    `json:"currentBet"`
	ToAct      bool   `json:"toAct"`
}

// State is a snapshot of the game that is safe to show everyone, no hole cards
type State struct {
	ID            string              `json:"id"`
	Round         Round               `json:"round"`
	Pot           int                 `json:"pot"`
	BetAmount     int                 `json:"betAmount"`
	CurrentBet    int                 `json:"currentBet"`
	CurrentPlayer string              `json:"currentPlayer,omitempty"`
	Participants  []*ParticipantState `json:"participants"`
	History       []*ActionRecord     `json:"history"`
	Result        *Result             `json:"result,omitempty"`
}

// State returns a snapshot of the game
func (g *Game) State() *State {
	participants := make([]*ParticipantState, len(g.participants))
	for i, p := range g.participants {
		participants[i] = &ParticipantState{
			PlayerID:   p.PlayerID,
			Name:       p.Name,
			Seat:       p.Seat,
			Folded:     p.folded,
			AllIn:      p.allIn,
			CurrentBet: p.currentBet,
			ToAct:      g.toAct[p.PlayerID],
		}
	}

	state := &State{
		ID:           g.id,
		Round:        g.round,
		Pot:          g.pot,
		BetAmount:    g.options.BetAmount,
		CurrentBet:   g.currentBet,
		Participants: participants,
		History:      g.History(),
		Result:       g.result,
	}

	if g.round == RoundBetting {
		state.CurrentPlayer = g.CurrentPlayer().PlayerID
	}

	return state
}
