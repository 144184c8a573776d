package interaction

import (
	"context"
	"errors"
	"fmt"
	"lieng-server/pkg/invite"
	"lieng-server/pkg/ledger"
	"lieng-server/pkg/lieng"
	"lieng-server/pkg/messenger"
	"lieng-server/pkg/room"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a user sends actions faster than allowed
var ErrRateLimited = errors.New("too many actions, slow down")

// ErrNoMentions is returned when a game is started without inviting anyone
var ErrNoMentions = errors.New("mention at least one player")

// ErrUnknownCommand is returned for a command other than start or help
var ErrUnknownCommand = errors.New("unknown command")

// ErrInvalidBet is returned when the bet argument is not a positive number
var ErrInvalidBet = errors.New("bet must be a positive number")

// Invites is the part of the invite manager the dispatcher needs
type Invites interface {
	CreateInvite(ctx context.Context, req invite.CreateRequest) (invite.Key, error)
	Respond(ctx context.Context, key invite.Key, userID string, decision invite.Decision) (invite.Status, error)
}

// Games is the part of the pit boss the dispatcher needs
type Games interface {
	Action(ctx context.Context, key room.GameKey, playerID string, action lieng.Action, amount int) (*lieng.Outcome, error)
}

// Press is a button press forwarded by the chat bridge
type Press struct {
	ButtonID string `json:"buttonId"`
	UserID   string `json:"userId"`
	Amount   int    `json:"amount,omitempty"`
}

// StartCommand asks to invite players to a game
type StartCommand struct {
	CreatorID string
	Location  messenger.Location
	Mentions  []string
	BetAmount int
}

// Command is a text command, e.g. "*lieng start 5000 @a @b"
// Args excludes the command prefix, mentions are resolved by the chat bridge.
type Command struct {
	SenderID string             `json:"senderId"`
	Location messenger.Location `json:"location"`
	Args     []string           `json:"args"`
	Mentions []string           `json:"mentions"`
}

// Dispatcher routes commands and button presses to the invite manager and the pit boss
type Dispatcher struct {
	invites    Invites
	games      Games
	messenger  messenger.Messenger
	defaultBet int
	logger     logrus.FieldLogger

	limit    rate.Limit
	burst    int
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewDispatcher returns a dispatcher
// actionsPerSecond <= 0 disables rate limiting.
func NewDispatcher(logger logrus.FieldLogger, invites Invites, games Games, m messenger.Messenger, defaultBet int, actionsPerSecond float64) *Dispatcher {
	limit := rate.Inf
	burst := 1
	if actionsPerSecond > 0 {
		limit = rate.Limit(actionsPerSecond)
		burst = int(actionsPerSecond) + 1
	}

	return &Dispatcher{
		invites:    invites,
		games:      games,
		messenger:  m,
		defaultBet: defaultBet,
		logger:     logger,
		limit:      limit,
		burst:      burst,
		limiters:   make(map[string]*rate.Limiter),
	}
}

// Start creates an invite
func (d *Dispatcher) Start(ctx context.Context, cmd StartCommand) (invite.Key, error) {
	if len(cmd.Mentions) == 0 {
		return invite.Key{}, ErrNoMentions
	}

	if cmd.BetAmount == 0 {
		cmd.BetAmount = d.defaultBet
	}

	if cmd.BetAmount < 0 {
		return invite.Key{}, ErrInvalidBet
	}

	return d.invites.CreateInvite(ctx, invite.CreateRequest{
		CreatorID: cmd.CreatorID,
		Location:  cmd.Location,
		Mentions:  cmd.Mentions,
		BetAmount: cmd.BetAmount,
	})
}

// HandleCommand runs a text command and returns the reply for the channel
func (d *Dispatcher) HandleCommand(ctx context.Context, cmd Command) (string, error) {
	if len(cmd.Args) == 0 {
		return UsageText, nil
	}

	switch strings.ToLower(cmd.Args[0]) {
	case "help":
		return HelpText, nil
	case "start":
		bet := 0
		if len(cmd.Args) > 1 && !strings.HasPrefix(cmd.Args[1], "@") {
			var err error
			if bet, err = strconv.Atoi(cmd.Args[1]); err != nil || bet <= 0 {
				return "", ErrInvalidBet
			}
		}

		if _, err := d.Start(ctx, StartCommand{
			CreatorID: cmd.SenderID,
			Location:  cmd.Location,
			Mentions:  cmd.Mentions,
			BetAmount: bet,
		}); err != nil {
			return "", err
		}

		if bet == 0 {
			bet = d.defaultBet
		}

		return fmt.Sprintf("🎴 **Lời mời đã tạo!**\n💰 Cược: %d\n⏰ Game tự động bắt đầu khi hết giờ hoặc khi tất cả đã phản hồi.", bet), nil
	}

	return "", ErrUnknownCommand
}

// Press handles a button press
// Rejected presses are reported to the user privately and returned.
func (d *Dispatcher) Press(ctx context.Context, p Press) error {
	err := d.press(ctx, p)
	if err != nil {
		log := d.logger.WithError(err).WithFields(logrus.Fields{
			"player": p.UserID,
			"button": p.ButtonID,
		})
		log.Debug("button press rejected")

		if msgErr := d.messenger.NotifyPlayer(ctx, p.UserID, "❌ "+UserMessage(err)); msgErr != nil {
			log.WithError(msgErr).Warn("could not report rejected press")
		}
	}

	return err
}

func (d *Dispatcher) press(ctx context.Context, p Press) error {
	if !d.limiter(p.UserID).Allow() {
		return ErrRateLimited
	}

	btn, err := messenger.ParseButtonID(p.ButtonID)
	if err != nil {
		return err
	}

	if decision, err := invite.DecisionFromString(btn.Action); err == nil {
		_, err := d.invites.Respond(ctx, invite.Key{Location: btn.Location, GameID: btn.GameID}, p.UserID, decision)
		return err
	}

	action, err := lieng.ActionFromString(btn.Action)
	if err != nil {
		return err
	}

	_, err = d.games.Action(ctx, room.GameKey{Location: btn.Location, GameID: btn.GameID}, p.UserID, action, p.Amount)
	return err
}

func (d *Dispatcher) limiter(userID string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.limiters[userID]
	if !ok {
		l = rate.NewLimiter(d.limit, d.burst)
		d.limiters[userID] = l
	}

	return l
}

// UserMessage returns a message about err that is safe to show to a player
func UserMessage(err error) string {
	var ife ledger.InsufficientFundsError
	var pce lieng.PlayerCountError
	var rbe room.RollbackError

	switch {
	case errors.As(err, &rbe):
		return "Lỗi khi bắt đầu game. Tiền cược đã được hoàn lại."
	case errors.As(err, &ife):
		return fmt.Sprintf("Không đủ tiền, cần %d.", ife.Required)
	case errors.As(err, &pce):
		return fmt.Sprintf("Cần từ %d đến %d người chơi.", pce.Min, pce.Max)
	case errors.Is(err, lieng.ErrNotYourTurn):
		return "Chưa đến lượt của bạn."
	case errors.Is(err, lieng.ErrCannotCheck):
		return "Không thể xem bài khi đang có cược, hãy Theo hoặc Bỏ."
	case errors.Is(err, lieng.ErrRaiseTooSmall):
		return "Mức tố quá nhỏ."
	case errors.Is(err, lieng.ErrInvalidAction):
		return "Hành động không hợp lệ."
	case errors.Is(err, invite.ErrInviteNotFound), errors.Is(err, invite.ErrInviteExpired):
		return "Lời mời đã hết hạn."
	case errors.Is(err, invite.ErrNotInvited):
		return "Bạn không được mời vào game này."
	case errors.Is(err, room.ErrGameNotFound), errors.Is(err, room.ErrGameIsOver):
		return "Game không tồn tại hoặc đã kết thúc."
	case errors.Is(err, ErrRateLimited):
		return "Thao tác quá nhanh, vui lòng thử lại."
	case errors.Is(err, ErrNoMentions):
		return "Cần mention người chơi!"
	case errors.Is(err, ErrInvalidBet):
		return "Số tiền cược không hợp lệ."
	case errors.Is(err, ErrUnknownCommand):
		return "Lệnh không hợp lệ. Gõ `*lieng help` để xem hướng dẫn."
	}

	return "Có lỗi xảy ra."
}
