package invite

import (
	"context"
	"fmt"
	"lieng-server/pkg/identity"
	"lieng-server/pkg/ledger"
	"lieng-server/pkg/lieng"
	"lieng-server/pkg/messenger"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// startTimeout bounds the work done when an invite resolves
const startTimeout = time.Second * 30

// StartRequest is handed to the GameStarter when an invite resolves with enough players
type StartRequest struct {
	GameID    string
	CreatorID string
	Location  messenger.Location
	PlayerIDs []string
	BetAmount int
}

// GameStarter starts a game from a resolved invite
type GameStarter interface {
	StartGame(ctx context.Context, req StartRequest) error
}

// CreateRequest is a request to invite players to a game
type CreateRequest struct {
	CreatorID string
	Location  messenger.Location
	Mentions  []string
	BetAmount int
}

// Manager owns the open invites
// An invite is resolved exactly once, by whoever removes it from the registry first:
// the last response or the expiry timer.
type Manager struct {
	mu      sync.Mutex
	invites map[Key]*Invite

	ledger    ledger.Ledger
	messenger messenger.Messenger
	names     identity.Resolver
	starter   GameStarter
	timeout   time.Duration
	logger    logrus.FieldLogger
	now       func() time.Time
}

// NewManager returns an invite manager
func NewManager(logger logrus.FieldLogger, l ledger.Ledger, m messenger.Messenger, names identity.Resolver, starter GameStarter, timeout time.Duration) *Manager {
	return &Manager{
		invites:   make(map[Key]*Invite),
		ledger:    l,
		messenger: m,
		names:     names,
		starter:   starter,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateInvite checks every player can afford the bet, posts the invite and arms its expiry timer
// The creator is always a player and counts as having joined.
func (m *Manager) CreateInvite(ctx context.Context, req CreateRequest) (Key, error) {
	if req.BetAmount <= 0 {
		return Key{}, ErrInvalidBetAmount
	}

	players := dedupe(append([]string{req.CreatorID}, req.Mentions...))
	if len(players) < lieng.MinPlayers || len(players) > lieng.MaxPlayers {
		return Key{}, lieng.PlayerCountError{Min: lieng.MinPlayers, Max: lieng.MaxPlayers, Got: len(players)}
	}

	if err := m.ledger.CheckFunds(ctx, players, req.BetAmount); err != nil {
		return Key{}, err
	}

	inv := &Invite{
		Key: Key{
			Location: req.Location,
			GameID:   NewGameID(),
		},
		CreatorID: req.CreatorID,
		Mentioned: players,
		BetAmount: req.BetAmount,
		ExpiresAt: m.now().Add(m.timeout),
		confirmed: map[string]bool{req.CreatorID: true},
		declined:  make(map[string]bool),
	}

	log := m.logger.WithFields(logrus.Fields{
		"invite":  inv.Key.GameID,
		"clan":    req.Location.ClanID,
		"channel": req.Location.ChannelID,
	})

	m.mu.Lock()
	m.invites[inv.Key] = inv
	inv.timer = time.AfterFunc(m.timeout, func() {
		m.expire(inv)
	})
	initial := inv.status()
	m.mu.Unlock()

	ref, err := m.messenger.NotifyChannel(ctx, req.Location, m.inviteText(ctx, inv), inviteButtons(inv.Key, initial))
	if err != nil {
		log.WithError(err).Error("could not send invite message")
	}

	m.mu.Lock()
	inv.message = ref
	current, open := m.invites[inv.Key]
	resolved := !open || current != inv
	final := inv.status()
	m.mu.Unlock()

	// responses may have resolved the invite while the message was in flight
	if resolved && !ref.IsZero() {
		final.Resolved = true
		if err := m.messenger.UpdateMessage(ctx, ref, closedText(inv, final), nil); err != nil {
			log.WithError(err).Warn("could not close invite message")
		}
	}

	log.WithField("players", len(players)).Info("invite created")
	return inv.Key, nil
}

// Respond records a decision and resolves the invite once everyone has answered
func (m *Manager) Respond(ctx context.Context, key Key, userID string, decision Decision) (Status, error) {
	if decision != DecisionJoin && decision != DecisionDecline {
		return Status{}, ErrInvalidDecision
	}

	m.mu.Lock()
	inv, ok := m.invites[key]
	if !ok {
		m.mu.Unlock()
		return Status{}, ErrInviteNotFound
	}

	if m.now().After(inv.ExpiresAt) {
		m.mu.Unlock()
		return Status{}, ErrInviteExpired
	}

	if !inv.isMentioned(userID) {
		m.mu.Unlock()
		return Status{}, ErrNotInvited
	}

	inv.respond(userID, decision)
	status := inv.status()
	message := inv.message
	if inv.quorum() {
		inv.timer.Stop()
		delete(m.invites, key)
		status.Resolved = true
	}
	m.mu.Unlock()

	ack := "Đã tham gia Liêng!"
	if decision == DecisionDecline {
		ack = "Đã từ chối."
	}

	if err := m.messenger.NotifyPlayer(ctx, userID, ack); err != nil {
		m.logger.WithError(err).WithField("player", userID).Warn("could not acknowledge response")
	}

	if status.Resolved {
		m.resolve(inv, status)
		return status, nil
	}

	if !message.IsZero() {
		if err := m.messenger.UpdateMessage(ctx, message, statusText(inv, status), inviteButtons(key, status)); err != nil {
			m.logger.WithError(err).WithField("invite", key.GameID).Warn("could not update invite message")
		}
	}

	return status, nil
}

// Status returns the responses to an open invite
func (m *Manager) Status(key Key) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.invites[key]
	if !ok {
		return Status{}, ErrInviteNotFound
	}

	return inv.status(), nil
}

// Open returns the number of open invites
func (m *Manager) Open() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.invites)
}

// Close stops every expiry timer and discards the open invites
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, inv := range m.invites {
		inv.timer.Stop()
		delete(m.invites, key)
	}
}

func (m *Manager) expire(inv *Invite) {
	m.mu.Lock()
	if current, ok := m.invites[inv.Key]; !ok || current != inv {
		// already resolved by the last response
		m.mu.Unlock()
		return
	}

	delete(m.invites, inv.Key)
	status := inv.status()
	status.Resolved = true
	m.mu.Unlock()

	m.logger.WithField("invite", inv.Key.GameID).Debug("invite expired")
	m.resolve(inv, status)
}

// resolve runs once per invite, after the invite left the registry
// It is not tied to the request of whoever answered last.
func (m *Manager) resolve(inv *Invite, status Status) {
	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()

	log := m.logger.WithFields(logrus.Fields{
		"invite":    inv.Key.GameID,
		"confirmed": len(status.Confirmed),
	})

	m.mu.Lock()
	message := inv.message
	m.mu.Unlock()

	if !message.IsZero() {
		if err := m.messenger.UpdateMessage(ctx, message, closedText(inv, status), nil); err != nil {
			log.WithError(err).Warn("could not close invite message")
		}
	}

	if len(status.Confirmed) < lieng.MinPlayers {
		log.Info("not enough players")
		if _, err := m.messenger.NotifyChannel(ctx, inv.Key.Location, "❌ Không đủ người chơi (Cần tối thiểu 2).", nil); err != nil {
			log.WithError(err).Warn("could not send message")
		}

		return
	}

	err := m.starter.StartGame(ctx, StartRequest{
		GameID:    inv.Key.GameID,
		CreatorID: inv.CreatorID,
		Location:  inv.Key.Location,
		PlayerIDs: status.Confirmed,
		BetAmount: inv.BetAmount,
	})
	if err != nil {
		log.WithError(err).Error("could not start game")
		if _, err := m.messenger.NotifyChannel(ctx, inv.Key.Location, fmt.Sprintf("❌ Không thể bắt đầu game: %s", err), nil); err != nil {
			log.WithError(err).Warn("could not send message")
		}
	}
}

func (m *Manager) inviteText(ctx context.Context, inv *Invite) string {
	names := make([]string, len(inv.Mentioned))
	for i, id := range inv.Mentioned {
		names[i] = identity.NameOrPlaceholder(ctx, m.names, id, i)
	}

	return fmt.Sprintf("🎴 **Lời mời chơi Liêng**\n%s\n💰 Cược: %d\n⏰ Game tự động bắt đầu sau %ds!",
		strings.Join(names, ", "), inv.BetAmount, int(m.timeout.Seconds()))
}

func statusText(inv *Invite, status Status) string {
	return fmt.Sprintf("🎴 **Lời mời chơi Liêng**\n💰 Cược: %d\n✅ Tham gia: %d\n❌ Từ chối: %d\n⏳ Chờ: %d\n⏰ Game tự động bắt đầu sau khi đủ người!",
		inv.BetAmount, len(status.Confirmed), len(status.Declined), status.Pending)
}

func closedText(inv *Invite, status Status) string {
	return fmt.Sprintf("🎴 **Lời mời chơi Liêng** (đã đóng)\n💰 Cược: %d\n✅ Tham gia: %d\n❌ Từ chối: %d",
		inv.BetAmount, len(status.Confirmed), len(status.Declined))
}

func inviteButtons(key Key, status Status) []messenger.Button {
	return []messenger.Button{
		{
			ID:    messenger.EncodeButtonID(string(DecisionJoin), key.GameID, key.Location),
			Label: fmt.Sprintf("🎯 Tham gia (%d)", len(status.Confirmed)),
			Style: messenger.StyleSuccess,
		},
		{
			ID:    messenger.EncodeButtonID(string(DecisionDecline), key.GameID, key.Location),
			Label: fmt.Sprintf("❌ Từ chối (%d)", len(status.Declined)),
			Style: messenger.StyleDanger,
		},
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}

		seen[id] = true
		out = append(out, id)
	}

	return out
}
