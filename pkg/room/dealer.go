package room

import (
	"context"
	"errors"
	"fmt"
	"lieng-server/pkg/identity"
	"lieng-server/pkg/invite"
	"lieng-server/pkg/ledger"
	"lieng-server/pkg/lieng"
	"lieng-server/pkg/livestate"
	"lieng-server/pkg/messenger"
	"lieng-server/pkg/record"
	"time"

	"github.com/sirupsen/logrus"
)

// settlement must finish even when the request that ended the game was cancelled
const settlementTimeout = time.Second * 30

// Dealer is responsible for controlling a single game
// Every read and write of the game happens in the run loop. Messages are sent by a second
// goroutine, in order, after the change that produced them.
type Dealer struct {
	pitBoss   *PitBoss
	key       GameKey
	creatorID string
	game      *lieng.Game
	logger    logrus.FieldLogger

	execInRunLoop chan func()
	outbox        chan func(ctx context.Context)
	close         chan bool
	done          chan struct{}

	turnTimer *time.Timer
	turnSeq   int
	ended     bool

	// only used by the outbox goroutine
	prompt messenger.MessageRef
}

// NewDealer creates a new dealer object
func NewDealer(pitBoss *PitBoss, key GameKey, creatorID string) *Dealer {
	return &Dealer{
		pitBoss:   pitBoss,
		key:       key,
		creatorID: creatorID,
		logger: pitBoss.logger.WithFields(logrus.Fields{
			"game":    key.GameID,
			"clan":    key.Location.ClanID,
			"channel": key.Location.ChannelID,
		}),
		execInRunLoop: make(chan func(), 256),
		outbox:        make(chan func(ctx context.Context), 256),
		close:         make(chan bool),
		done:          make(chan struct{}),
	}
}

// StartShift starts the run loop
func (d *Dealer) StartShift() {
	go d.runLoop()
	go d.sendLoop()
}

// EndShift is called when the dealer is no longer needed
func (d *Dealer) EndShift() {
	select {
	case <-d.close:
	default:
		close(d.close)
	}
}

func (d *Dealer) runLoop() {
	d.logger.Debug("creating dealer run loop")
	defer close(d.outbox)
	defer close(d.done)

	for {
		select {
		case fn := <-d.execInRunLoop:
			fn()
		case <-d.close:
			d.logger.Debug("terminating dealer run loop")
			return
		}
	}
}

func (d *Dealer) sendLoop() {
	defer d.pitBoss.wg.Done()

	for fn := range d.outbox {
		fn(context.Background())
	}
}

// exec queues fn for the run loop, false if the loop already ended
func (d *Dealer) exec(fn func()) bool {
	select {
	case <-d.done:
		return false
	default:
	}

	select {
	case d.execInRunLoop <- fn:
		return true
	case <-d.done:
		return false
	}
}

// execAndWait runs fn in the run loop and waits for it
func (d *Dealer) execAndWait(ctx context.Context, fn func()) bool {
	finished := make(chan struct{})
	if !d.exec(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}

	select {
	case <-finished:
		return true
	case <-d.done:
		// the loop may have run fn right before it ended
		select {
		case <-finished:
			return true
		default:
			return false
		}
	case <-ctx.Done():
		return false
	}
}

// send queues a message
// NOTE: must only be called from the run loop
func (d *Dealer) send(fn func(ctx context.Context)) {
	d.outbox <- fn
}

// NOTE: must only be called from the run loop
func (d *Dealer) start(ctx context.Context, req invite.StartRequest) error {
	opts := d.pitBoss.opts
	reason := fmt.Sprintf("lieng bet %s", d.key.GameID)

	if err := opts.Ledger.Deduct(ctx, req.PlayerIDs, req.BetAmount, reason); err != nil {
		var pde ledger.PartialDeductionError
		if errors.As(err, &pde) {
			return d.refund(pde.Deducted, req.BetAmount, err)
		}

		return err
	}

	seats := make([]lieng.Seat, len(req.PlayerIDs))
	for i, id := range req.PlayerIDs {
		seats[i] = lieng.Seat{
			PlayerID: id,
			Name:     identity.NameOrPlaceholder(ctx, opts.Names, id, i),
		}
	}

	game, err := lieng.NewGame(d.logger, d.key.GameID, seats, lieng.Options{BetAmount: req.BetAmount})
	if err == nil {
		err = game.Deal(opts.RNG)
	}

	if err != nil {
		return d.refund(req.PlayerIDs, req.BetAmount, err)
	}

	d.game = game
	d.logger.WithField("players", len(seats)).Info("game started")

	rec := &record.Game{
		ID:        d.key.GameID,
		Location:  d.key.Location,
		CreatorID: d.creatorID,
		BetAmount: req.BetAmount,
		PlayerIDs: req.PlayerIDs,
	}

	d.send(func(ctx context.Context) {
		if err := opts.Records.Create(ctx, rec); err != nil {
			d.logger.WithError(err).Error("could not create game record")
		}
	})

	d.notifyChannel(startedText(game), nil)
	for _, p := range game.Participants() {
		d.notifyPlayer(p.PlayerID, handText(p))
	}

	d.saveLiveState()

	if opts.DealDelay <= 0 {
		d.promptCurrent()
		return nil
	}

	seq := d.turnSeq
	time.AfterFunc(opts.DealDelay, func() {
		d.exec(func() {
			if d.ended || d.turnSeq != seq {
				return
			}

			d.promptCurrent()
		})
	})

	return nil
}

// refund returns the bet to players after a failed start
func (d *Dealer) refund(playerIDs []string, amount int, cause error) error {
	rbErr := RollbackError{
		Refunded:     make([]string, 0, len(playerIDs)),
		RefundFailed: make(map[string]int),
		Cause:        cause,
	}

	ctx, cancel := context.WithTimeout(context.Background(), settlementTimeout)
	defer cancel()

	for _, id := range playerIDs {
		if err := d.pitBoss.opts.Ledger.Credit(ctx, id, amount, fmt.Sprintf("lieng refund %s", d.key.GameID)); err != nil {
			d.logger.WithError(err).WithFields(logrus.Fields{
				"player": id,
				"amount": amount,
			}).Error("could not refund bet")
			rbErr.RefundFailed[id] = amount
			continue
		}

		rbErr.Refunded = append(rbErr.Refunded, id)
	}

	d.logger.WithError(cause).WithField("refunded", len(rbErr.Refunded)).Warn("game start rolled back")
	return rbErr
}

// NOTE: must only be called from the run loop
func (d *Dealer) act(ctx context.Context, playerID string, action lieng.Action, amount int) (*lieng.Outcome, error) {
	if d.game == nil {
		return nil, ErrGameNotFound
	}

	if d.ended {
		return nil, ErrGameIsOver
	}

	opts := d.pitBoss.opts
	balance := 0
	if action == lieng.ActionAllIn && d.game.CurrentPlayer().PlayerID == playerID {
		var err error
		if balance, err = opts.Ledger.Balance(ctx, playerID); err != nil {
			return nil, err
		}
	}

	move, err := d.game.Prepare(playerID, action, amount, balance)
	if err != nil {
		return nil, err
	}

	if move.Cost > 0 {
		if err := opts.Ledger.Deduct(ctx, []string{playerID}, move.Cost, fmt.Sprintf("lieng %s %s", action, d.key.GameID)); err != nil {
			return nil, err
		}
	}

	outcome, err := d.game.Commit(move)
	if err != nil {
		if move.Cost > 0 {
			_ = d.refund([]string{playerID}, move.Cost, err)
		}

		return nil, err
	}

	d.cancelTurn()
	d.notifyChannel(actionText(d.game, outcome.Record), nil)
	return outcome, d.advance(outcome)
}

// NOTE: must only be called from the run loop
func (d *Dealer) timeout(playerID string) {
	outcome, err := d.game.ForceFold(playerID)
	if err != nil {
		d.logger.WithError(err).WithField("player", playerID).Error("could not fold on timeout")
		return
	}

	d.logger.WithField("player", playerID).Info("turn timed out")
	d.cancelTurn()
	d.notifyChannel(actionText(d.game, outcome.Record), nil)
	if err := d.advance(outcome); err != nil {
		d.logger.WithError(err).Error("could not settle game")
	}
}

// NOTE: must only be called from the run loop
func (d *Dealer) advance(outcome *lieng.Outcome) error {
	if outcome.Result == nil {
		d.promptCurrent()
		return nil
	}

	return d.finish(outcome.Result)
}

// promptCurrent asks the current player to act and arms the turn timer
// NOTE: must only be called from the run loop
func (d *Dealer) promptCurrent() {
	p := d.game.CurrentPlayer()
	d.turnSeq++
	seq := d.turnSeq

	if timeout := d.pitBoss.opts.TurnTimeout; timeout > 0 {
		d.turnTimer = time.AfterFunc(timeout, func() {
			d.exec(func() {
				if d.ended || d.turnSeq != seq {
					return
				}

				d.timeout(p.PlayerID)
			})
		})
	}

	text := promptText(d.game, p)
	buttons := promptButtons(d.game, p, d.key)
	msgr := d.pitBoss.opts.Messenger
	d.send(func(ctx context.Context) {
		ref, err := msgr.NotifyChannel(ctx, d.key.Location, text, buttons)
		if err != nil {
			d.logger.WithError(err).Warn("could not send turn prompt")
			return
		}

		d.prompt = ref
	})

	d.saveLiveState()
}

// cancelTurn stops the turn timer and removes the prompt
// A timer that already fired is ignored because its sequence no longer matches.
// NOTE: must only be called from the run loop
func (d *Dealer) cancelTurn() {
	if d.turnTimer != nil {
		d.turnTimer.Stop()
		d.turnTimer = nil
	}

	d.turnSeq++
	msgr := d.pitBoss.opts.Messenger
	d.send(func(ctx context.Context) {
		if d.prompt.IsZero() {
			return
		}

		if err := msgr.DeleteMessage(ctx, d.prompt); err != nil {
			d.logger.WithError(err).Warn("could not delete turn prompt")
		}

		d.prompt = messenger.MessageRef{}
	})
}

// finish pays the winners and tears the game down
// NOTE: must only be called from the run loop
func (d *Dealer) finish(result *lieng.Result) error {
	d.ended = true
	opts := d.pitBoss.opts

	ctx, cancel := context.WithTimeout(context.Background(), settlementTimeout)
	defer cancel()

	unpaid := make(map[string]int)
	for _, id := range result.Winners {
		if err := opts.Ledger.Credit(ctx, id, result.Share, fmt.Sprintf("lieng win %s", d.key.GameID)); err != nil {
			d.logger.WithError(err).WithFields(logrus.Fields{
				"player": id,
				"amount": result.Share,
			}).Error("could not credit winnings, chips are stuck in the pot")
			unpaid[id] = result.Share
		}
	}

	if result.Remainder > 0 {
		d.logger.WithField("remainder", result.Remainder).Info("pot did not split evenly, remainder kept by the house")
	}

	d.notifyChannel(resultText(d.game, result), nil)

	var err error
	if len(unpaid) > 0 {
		err = SettlementError{GameID: d.key.GameID, Unpaid: unpaid}
		d.notifyChannel(fmt.Sprintf("⚠️ Lỗi trả thưởng: %s", joinAmounts(unpaid)), nil)
	}

	summary := &record.Summary{State: d.game.State()}
	if len(unpaid) > 0 {
		summary.Unpaid = unpaid
	}

	d.send(func(ctx context.Context) {
		if err := opts.Records.End(ctx, d.key.GameID, summary); err != nil {
			d.logger.WithError(err).Error("could not end game record")
		}

		if err := opts.LiveState.Remove(ctx, d.key.Location, d.key.GameID); err != nil {
			d.logger.WithError(err).Warn("could not remove live state")
		}
	})

	d.logger.WithFields(logrus.Fields{
		"winners":     result.Winners,
		"pot":         result.Pot,
		"uncontested": result.Uncontested,
	}).Info("game ended")

	d.teardown()
	return err
}

// abandon stops a game without settling it
// NOTE: must only be called from the run loop
func (d *Dealer) abandon() {
	if d.turnTimer != nil {
		d.turnTimer.Stop()
	}

	d.ended = true
	d.logger.Warn("game abandoned")
	d.teardown()
}

// NOTE: must only be called from the run loop
func (d *Dealer) teardown() {
	d.turnSeq++
	d.pitBoss.remove(d.key, d)
	d.EndShift()
}

// NOTE: must only be called from the run loop
func (d *Dealer) saveLiveState() {
	snap := &livestate.Snapshot{
		Location:  d.key.Location,
		GameID:    d.key.GameID,
		CreatorID: d.creatorID,
		Game:      d.game.State(),
		Updated:   time.Now(),
	}

	tracker := d.pitBoss.opts.LiveState
	d.send(func(ctx context.Context) {
		if err := tracker.Save(ctx, snap); err != nil {
			d.logger.WithError(err).Warn("could not save live state")
		}
	})
}

// NOTE: must only be called from the run loop
func (d *Dealer) notifyChannel(text string, buttons []messenger.Button) {
	msgr := d.pitBoss.opts.Messenger
	d.send(func(ctx context.Context) {
		if _, err := msgr.NotifyChannel(ctx, d.key.Location, text, buttons); err != nil {
			d.logger.WithError(err).Warn("could not send channel message")
		}
	})
}

// NOTE: must only be called from the run loop
func (d *Dealer) notifyPlayer(playerID, text string) {
	msgr := d.pitBoss.opts.Messenger
	d.send(func(ctx context.Context) {
		if err := msgr.NotifyPlayer(ctx, playerID, text); err != nil {
			d.logger.WithError(err).WithField("player", playerID).Warn("could not send private message")
		}
	})
}
