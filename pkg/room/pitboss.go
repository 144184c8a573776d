package room

import (
	"context"
	"fmt"
	"lieng-server/internal/rng"
	"lieng-server/pkg/identity"
	"lieng-server/pkg/invite"
	"lieng-server/pkg/ledger"
	"lieng-server/pkg/lieng"
	"lieng-server/pkg/livestate"
	"lieng-server/pkg/messenger"
	"lieng-server/pkg/record"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// GameKey identifies a running game
type GameKey struct {
	Location messenger.Location
	GameID   string
}

func (k GameKey) String() string {
	return fmt.Sprintf("%s/%s", k.Location, k.GameID)
}

// Options are the collaborators and timings of a PitBoss
type Options struct {
	Ledger    ledger.Ledger
	Messenger messenger.Messenger
	Names     identity.Resolver
	LiveState livestate.Tracker
	Records   record.Store
	RNG       rng.Generator

	TurnTimeout time.Duration
	DealDelay   time.Duration
}

// PitBoss is responsible for dispatching players to games
// It owns the registry of running games, one Dealer per key.
type PitBoss struct {
	mu      sync.Mutex
	dealers map[GameKey]*Dealer
	wg      sync.WaitGroup

	opts   Options
	logger logrus.FieldLogger
}

// NewPitBoss returns a new dispatch object
func NewPitBoss(logger logrus.FieldLogger, opts Options) *PitBoss {
	if opts.LiveState == nil {
		opts.LiveState = livestate.NewMemory()
	}

	if opts.Records == nil {
		opts.Records = record.NewMemory()
	}

	if opts.RNG == nil {
		opts.RNG = rng.Crypto{}
	}

	return &PitBoss{
		dealers: make(map[GameKey]*Dealer),
		opts:    opts,
		logger:  logger,
	}
}

// StartGame takes the bet from every player, deals and prompts the first player
// If only some bets could be taken they are refunded and a RollbackError is returned.
func (p *PitBoss) StartGame(ctx context.Context, req invite.StartRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := GameKey{Location: req.Location, GameID: req.GameID}

	p.mu.Lock()
	if _, found := p.dealers[key]; found {
		p.mu.Unlock()
		return ErrGameExists
	}

	d := NewDealer(p, key, req.CreatorID)
	p.dealers[key] = d
	p.wg.Add(1)
	p.mu.Unlock()

	d.StartShift()

	// start moves money, so it runs to completion even if the caller goes away
	startCtx, cancel := context.WithTimeout(context.Background(), settlementTimeout)
	defer cancel()

	var err error
	if !d.execAndWait(context.Background(), func() { err = d.start(startCtx, req) }) {
		err = ErrGameIsOver
	}

	if err != nil {
		p.remove(key, d)
		d.EndShift()
		return err
	}

	return nil
}

// Action applies a player's action to the game under key
// A SettlementError is returned together with the outcome when the game ended but a winner could not be paid.
func (p *PitBoss) Action(ctx context.Context, key GameKey, playerID string, action lieng.Action, amount int) (*lieng.Outcome, error) {
	d, ok := p.dealer(key)
	if !ok {
		return nil, ErrGameNotFound
	}

	var outcome *lieng.Outcome
	var err error
	if !d.execAndWait(ctx, func() { outcome, err = d.act(ctx, playerID, action, amount) }) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, ErrGameIsOver
	}

	return outcome, err
}

// State returns the public state of the game under key
func (p *PitBoss) State(ctx context.Context, key GameKey) (*lieng.State, error) {
	d, ok := p.dealer(key)
	if !ok {
		return nil, ErrGameNotFound
	}

	var state *lieng.State
	if !d.execAndWait(ctx, func() {
		if d.game != nil {
			state = d.game.State()
		}
	}) || state == nil {
		return nil, ErrGameNotFound
	}

	return state, nil
}

// FindGame returns the key of a running game by its ID
func (p *PitBoss) FindGame(gameID string) (GameKey, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key := range p.dealers {
		if key.GameID == gameID {
			return key, true
		}
	}

	return GameKey{}, false
}

// Games returns the number of running games
func (p *PitBoss) Games() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.dealers)
}

// Wait blocks until every game ended and its messages were sent
func (p *PitBoss) Wait() {
	p.wg.Wait()
}

// Close stops every game without settling it
// The live state of each game is kept so an operator can settle it by hand.
func (p *PitBoss) Close() {
	p.mu.Lock()
	dealers := make([]*Dealer, 0, len(p.dealers))
	for _, d := range p.dealers {
		dealers = append(dealers, d)
	}
	p.mu.Unlock()

	for _, d := range dealers {
		d := d
		d.exec(func() {
			d.abandon()
		})
	}

	p.Wait()
}

func (p *PitBoss) dealer(key GameKey) (*Dealer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	d, ok := p.dealers[key]
	return d, ok
}

// remove drops the dealer from the registry if it is still the one registered
func (p *PitBoss) remove(key GameKey, d *Dealer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if current, ok := p.dealers[key]; ok && current == d {
		delete(p.dealers, key)
	}
}
