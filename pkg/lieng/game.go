package lieng

import (
	"fmt"
	"lieng-server/internal/rng"
	"lieng-server/pkg/deck"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Round is the state of the game
type Round string

// rounds, a game passes through each once and never goes back
const (
	RoundWaiting  Round = "waiting"
	RoundBetting  Round = "betting"
	RoundShowdown Round = "showdown"
)

// Game is a single deal of Liêng
// Game does no I/O and is not safe for concurrent use, callers serialize access per game.
type Game struct {
	id              string
	options         Options
	deck            *deck.Deck
	participants    []*Participant
	idToParticipant map[string]*Participant

	pot                int
	currentBet         int
	round              Round
	currentPlayerIndex int
	toAct              map[string]bool
	turn               int

	history []*ActionRecord
	result  *Result

	evaluate Evaluator
	now      func() time.Time
	logger   logrus.FieldLogger
}

// Outcome describes where the game went after a move
// Exactly one of Next and Result is set.
type Outcome struct {
	Record *ActionRecord
	Next   *Participant
	Result *Result
}

// NewGame returns a new Liêng game with players seated in the order given
func NewGame(logger logrus.FieldLogger, id string, seats []Seat, opts Options) (*Game, error) {
	if len(seats) < MinPlayers || len(seats) > MaxPlayers {
		return nil, PlayerCountError{
			Min: MinPlayers,
			Max: MaxPlayers,
			Got: len(seats),
		}
	}

	if opts.BetAmount <= 0 {
		return nil, ErrInvalidBetAmount
	}

	participants := make([]*Participant, len(seats))
	idToParticipant := make(map[string]*Participant)
	for i, seat := range seats {
		if _, found := idToParticipant[seat.PlayerID]; found {
			return nil, ErrDuplicatePlayer
		}

		p := NewParticipant(seat, i)
		participants[i] = p
		idToParticipant[seat.PlayerID] = p
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Game{
		id:              id,
		options:         opts,
		deck:            deck.New(),
		participants:    participants,
		idToParticipant: idToParticipant,
		round:           RoundWaiting,
		toAct:           make(map[string]bool),
		history:         make([]*ActionRecord, 0),
		evaluate:        EvaluateHand,
		now:             time.Now,
		logger:          logger.WithField("game", id),
	}, nil
}

// Deal shuffles the deck, deals three cards to each player and opens the betting
func (g *Game) Deal(gen rng.Generator) error {
	if g.round != RoundWaiting {
		return ErrAlreadyDealt
	}

	g.deck.Shuffle(gen)
	for _, p := range g.participants {
		for i := 0; i < cardsPerHand; i++ {
			card, err := g.deck.Draw()
			if err != nil {
				return err
			}

			p.hand.AddCard(card)
		}
	}

	g.pot = len(g.participants) * g.options.BetAmount
	g.currentBet = 0
	g.round = RoundBetting
	g.currentPlayerIndex = (g.options.DealerButton + 1) % len(g.participants)
	for _, p := range g.participants {
		g.toAct[p.PlayerID] = true
	}

	g.logger.WithField("pot", g.pot).Debug("cards dealt")
	return nil
}

// Prepare validates an action for the player without changing the game
// balance is only consulted for all-in, it is the player's remaining ledger balance.
func (g *Game) Prepare(playerID string, action Action, amount, balance int) (*Move, error) {
	if g.round != RoundBetting {
		return nil, ErrBettingClosed
	}

	p := g.CurrentPlayer()
	if p.PlayerID != playerID {
		return nil, ErrNotYourTurn
	}

	move := &Move{
		PlayerID: playerID,
		Action:   action,
		Amount:   amount,
		turn:     g.turn,
	}

	need := g.currentBet - p.currentBet
	switch action {
	case ActionFold:
	case ActionCheck:
		if need > 0 {
			return nil, ErrCannotCheck
		}
	case ActionCall:
		move.Cost = need
	case ActionRaise:
		raise := g.options.BetAmount
		if amount > 0 {
			if amount < g.options.BetAmount {
				return nil, ErrRaiseTooSmall
			}

			raise = amount
		}

		move.Cost = g.currentBet + raise - p.currentBet
	case ActionAllIn:
		if balance <= 0 {
			return nil, ErrNothingToCommit
		}

		move.Cost = balance
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidAction, action)
	}

	return move, nil
}

// Commit applies a prepared move once its cost has been collected and moves to the next turn
func (g *Game) Commit(move *Move) (*Outcome, error) {
	if g.round != RoundBetting {
		return nil, ErrBettingClosed
	}

	if move.turn != g.turn {
		return nil, ErrStaleMove
	}

	p := g.CurrentPlayer()
	if p.PlayerID != move.PlayerID {
		return nil, ErrNotYourTurn
	}

	switch move.Action {
	case ActionFold:
		p.folded = true
	case ActionCheck, ActionCall:
		g.collect(p, move.Cost)
	case ActionRaise:
		g.collect(p, move.Cost)
		g.currentBet = p.currentBet
		g.reopenAction(p)
	case ActionAllIn:
		g.collect(p, move.Cost)
		p.allIn = true
		if p.currentBet > g.currentBet {
			g.currentBet = p.currentBet
			g.reopenAction(p)
		}
	}

	record := &ActionRecord{
		PlayerID: p.PlayerID,
		Action:   move.Action,
		Amount:   move.Amount,
		Chips:    move.Cost,
		TotalBet: p.currentBet,
		Forced:   move.Forced,
		Round:    g.round,
		Time:     g.now(),
	}
	g.history = append(g.history, record)
	g.turn++

	g.logger.WithFields(logrus.Fields{
		"player": p.PlayerID,
		"action": move.Action,
		"chips":  move.Cost,
		"pot":    g.pot,
	}).Debug("player acted")

	outcome := g.nextTurn(p)
	outcome.Record = record
	return outcome, nil
}

// ForceFold folds the current player on their behalf, e.g. when their turn timed out
func (g *Game) ForceFold(playerID string) (*Outcome, error) {
	move, err := g.Prepare(playerID, ActionFold, 0, 0)
	if err != nil {
		return nil, err
	}

	move.Forced = true
	return g.Commit(move)
}

func (g *Game) collect(p *Participant, chips int) {
	p.currentBet += chips
	g.pot += chips
}

// reopenAction makes everyone still able to act respond to the new bet
func (g *Game) reopenAction(raiser *Participant) {
	g.toAct = make(map[string]bool)
	for _, p := range g.participants {
		if p.canAct() && p != raiser {
			g.toAct[p.PlayerID] = true
		}
	}
}

func (g *Game) nextTurn(actor *Participant) *Outcome {
	active := g.activeParticipants()
	if len(active) == 1 {
		return &Outcome{Result: g.finishUncontested(active[0])}
	}

	if actor.folded || actor.allIn || actor.currentBet == g.currentBet {
		delete(g.toAct, actor.PlayerID)
	}

	if len(g.toAct) == 0 && g.allMatched(active) {
		return &Outcome{Result: g.showdown(active)}
	}

	next := g.nextToAct()
	if next < 0 {
		return &Outcome{Result: g.showdown(active)}
	}

	g.currentPlayerIndex = next
	return &Outcome{Next: g.participants[next]}
}

// nextToAct walks the table from the current seat and returns the first player still owing an action
func (g *Game) nextToAct() int {
	n := len(g.participants)
	for i := 1; i <= n; i++ {
		idx := (g.currentPlayerIndex + i) % n
		if p := g.participants[idx]; p.canAct() && g.toAct[p.PlayerID] {
			return idx
		}
	}

	for i := 1; i <= n; i++ {
		idx := (g.currentPlayerIndex + i) % n
		if p := g.participants[idx]; p.canAct() && p.currentBet < g.currentBet {
			return idx
		}
	}

	return -1
}

func (g *Game) allMatched(active []*Participant) bool {
	for _, p := range active {
		if !p.allIn && p.currentBet != g.currentBet {
			return false
		}
	}

	return true
}

func (g *Game) activeParticipants() []*Participant {
	active := make([]*Participant, 0, len(g.participants))
	for _, p := range g.participants {
		if !p.folded {
			active = append(active, p)
		}
	}

	return active
}

func (g *Game) finishUncontested(winner *Participant) *Result {
	g.round = RoundShowdown
	g.toAct = make(map[string]bool)
	g.result = &Result{
		Pot:         g.pot,
		Winners:     []string{winner.PlayerID},
		Share:       g.pot,
		Uncontested: true,
	}

	g.logger.WithField("winner", winner.PlayerID).Debug("won uncontested")
	return g.result
}

func (g *Game) showdown(active []*Participant) *Result {
	g.round = RoundShowdown
	g.toAct = make(map[string]bool)

	hands := make([]*RevealedHand, len(active))
	for i, p := range active {
		hands[i] = &RevealedHand{
			PlayerID: p.PlayerID,
			Name:     p.Name,
			Cards:    p.Hand(),
			Hand:     g.evaluate(p.hand),
		}
	}

	sort.SliceStable(hands, func(i, j int) bool {
		return hands[i].Hand.Score > hands[j].Hand.Score
	})

	best := hands[0].Hand.Score
	winners := make([]string, 0)
	for _, h := range hands {
		if h.Hand.Score == best {
			h.Winner = true
			winners = append(winners, h.PlayerID)
		}
	}

	g.result = &Result{
		Pot:       g.pot,
		Winners:   winners,
		Share:     g.pot / len(winners),
		Remainder: g.pot % len(winners),
		Hands:     hands,
	}

	g.logger.WithFields(logrus.Fields{
		"winners":   winners,
		"share":     g.result.Share,
		"remainder": g.result.Remainder,
	}).Debug("showdown")

	return g.result
}

// ID returns the game ID
func (g *Game) ID() string {
	return g.id
}

// Round returns the current round
func (g *Game) Round() Round {
	return g.round
}

// Pot returns the chips committed so far, antes included
func (g *Game) Pot() int {
	return g.pot
}

// CurrentBet returns the table's high-water bet for the round
func (g *Game) CurrentBet() int {
	return g.currentBet
}

// BetAmount returns the fixed betting unit
func (g *Game) BetAmount() int {
	return g.options.BetAmount
}

// CurrentPlayer returns the player to act
func (g *Game) CurrentPlayer() *Participant {
	return g.participants[g.currentPlayerIndex]
}

// ToCall returns how much the player needs to add to match the table
func (g *Game) ToCall(playerID string) int {
	p, ok := g.idToParticipant[playerID]
	if !ok {
		return 0
	}

	return g.currentBet - p.currentBet
}

// Participants returns the players in seat order
func (g *Game) Participants() []*Participant {
	return append([]*Participant{}, g.participants...)
}

// Participant returns the player by ID
func (g *Game) Participant(playerID string) (*Participant, bool) {
	p, ok := g.idToParticipant[playerID]
	return p, ok
}

// IsToAct returns true if the player still owes an action this round
func (g *Game) IsToAct(playerID string) bool {
	return g.toAct[playerID]
}

// History returns the action log
func (g *Game) History() []*ActionRecord {
	return append([]*ActionRecord{}, g.history...)
}

// Result returns the result once the game reached the showdown
func (g *Game) Result() *Result {
	return g.result
}
