package interaction

import (
	"context"
	"fmt"
	"testing"

	"lieng-server/pkg/invite"
	"lieng-server/pkg/ledger"
	"lieng-server/pkg/lieng"
	"lieng-server/pkg/messenger"
	"lieng-server/pkg/room"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cbg = context.Background()

var loc = messenger.Location{ClanID: "clan", ChannelID: "chan"}

type fakeInvites struct {
	created   []invite.CreateRequest
	responses []string
	err       error
}

func (f *fakeInvites) CreateInvite(_ context.Context, req invite.CreateRequest) (invite.Key, error) {
	if f.err != nil {
		return invite.Key{}, f.err
	}

	f.created = append(f.created, req)
	return invite.Key{Location: req.Location, GameID: "lieng_abc"}, nil
}

func (f *fakeInvites) Respond(_ context.Context, key invite.Key, userID string, decision invite.Decision) (invite.Status, error) {
	f.responses = append(f.responses, fmt.Sprintf("%s:%s:%s", key.GameID, userID, decision))
	return invite.Status{Key: key}, f.err
}

type fakeGames struct {
	actions []string
	err     error
}

func (f *fakeGames) Action(_ context.Context, key room.GameKey, playerID string, action lieng.Action, amount int) (*lieng.Outcome, error) {
	f.actions = append(f.actions, fmt.Sprintf("%s:%s:%s:%d", key.GameID, playerID, action, amount))
	return &lieng.Outcome{}, f.err
}

func newDispatcher(perSecond float64) (*Dispatcher, *fakeInvites, *fakeGames, *messenger.Recorder) {
	inv := &fakeInvites{}
	games := &fakeGames{}
	msgs := messenger.NewRecorder()
	return NewDispatcher(logrus.StandardLogger(), inv, games, msgs, 1000, perSecond), inv, games, msgs
}

func TestDispatcher_Start(t *testing.T) {
	d, inv, _, _ := newDispatcher(0)

	_, err := d.Start(cbg, StartCommand{CreatorID: "p1", Location: loc})
	assert.Equal(t, ErrNoMentions, err)

	_, err = d.Start(cbg, StartCommand{CreatorID: "p1", Location: loc, Mentions: []string{"p2"}, BetAmount: -5})
	assert.Equal(t, ErrInvalidBet, err)

	key, err := d.Start(cbg, StartCommand{CreatorID: "p1", Location: loc, Mentions: []string{"p2"}})
	require.NoError(t, err)
	assert.Equal(t, "lieng_abc", key.GameID)
	require.Len(t, inv.created, 1)
	assert.Equal(t, 1000, inv.created[0].BetAmount)
	assert.Equal(t, []string{"p2"}, inv.created[0].Mentions)
}

func TestDispatcher_HandleCommand(t *testing.T) {
	d, inv, _, _ := newDispatcher(0)

	reply, err := d.HandleCommand(cbg, Command{SenderID: "p1", Location: loc})
	assert.NoError(t, err)
	assert.Equal(t, UsageText, reply)

	reply, err = d.HandleCommand(cbg, Command{SenderID: "p1", Location: loc, Args: []string{"HELP"}})
	assert.NoError(t, err)
	assert.Equal(t, HelpText, reply)

	_, err = d.HandleCommand(cbg, Command{SenderID: "p1", Location: loc, Args: []string{"deal"}})
	assert.Equal(t, ErrUnknownCommand, err)

	_, err = d.HandleCommand(cbg, Command{SenderID: "p1", Location: loc, Args: []string{"start", "abc"}, Mentions: []string{"p2"}})
	assert.Equal(t, ErrInvalidBet, err)

	_, err = d.HandleCommand(cbg, Command{SenderID: "p1", Location: loc, Args: []string{"start"}})
	assert.Equal(t, ErrNoMentions, err)

	reply, err = d.HandleCommand(cbg, Command{SenderID: "p1", Location: loc, Args: []string{"start", "5000", "@p2"}, Mentions: []string{"p2"}})
	require.NoError(t, err)
	assert.Contains(t, reply, "Cược: 5000")
	assert.Equal(t, 5000, inv.created[0].BetAmount)

	reply, err = d.HandleCommand(cbg, Command{SenderID: "p1", Location: loc, Args: []string{"start", "@p2"}, Mentions: []string{"p2"}})
	require.NoError(t, err)
	assert.Contains(t, reply, "Cược: 1000")
	assert.Equal(t, 1000, inv.created[1].BetAmount)
}

func TestDispatcher_Press(t *testing.T) {
	d, inv, games, msgs := newDispatcher(0)

	assert.NoError(t, d.Press(cbg, Press{ButtonID: messenger.EncodeButtonID("join", "lieng_abc", loc), UserID: "p2"}))
	assert.Equal(t, []string{"lieng_abc:p2:join"}, inv.responses)

	assert.NoError(t, d.Press(cbg, Press{ButtonID: messenger.EncodeButtonID("raise", "lieng_abc", loc), UserID: "p2", Amount: 2000}))
	assert.Equal(t, []string{"lieng_abc:p2:raise:2000"}, games.actions)

	err := d.Press(cbg, Press{ButtonID: "poker_call_x_y_z", UserID: "p2"})
	assert.ErrorIs(t, err, messenger.ErrInvalidButtonID)

	err = d.Press(cbg, Press{ButtonID: messenger.EncodeButtonID("dance", "lieng_abc", loc), UserID: "p2"})
	assert.ErrorIs(t, err, lieng.ErrInvalidAction)

	dms := msgs.DirectMessages("p2")
	require.Len(t, dms, 2)
	assert.Equal(t, "❌ Hành động không hợp lệ.", dms[1].Text)
}

func TestDispatcher_Press_reportsGameErrors(t *testing.T) {
	d, _, games, msgs := newDispatcher(0)
	games.err = lieng.ErrNotYourTurn

	err := d.Press(cbg, Press{ButtonID: messenger.EncodeButtonID("call", "lieng_abc", loc), UserID: "p3"})
	assert.Equal(t, lieng.ErrNotYourTurn, err)

	dms := msgs.DirectMessages("p3")
	require.Len(t, dms, 1)
	assert.Equal(t, "❌ Chưa đến lượt của bạn.", dms[0].Text)
}

func TestDispatcher_Press_rateLimited(t *testing.T) {
	d, _, games, _ := newDispatcher(1)
	id := messenger.EncodeButtonID("call", "lieng_abc", loc)

	var limited int
	for i := 0; i < 5; i++ {
		if err := d.Press(cbg, Press{ButtonID: id, UserID: "p2"}); err == ErrRateLimited {
			limited++
		}
	}

	assert.Greater(t, limited, 0)
	assert.Less(t, len(games.actions), 5)

	// other players have their own budget
	assert.NoError(t, d.Press(cbg, Press{ButtonID: id, UserID: "p3"}))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ledger.InsufficientFundsError{Players: []string{"p2"}, Required: 500}, "Không đủ tiền, cần 500."},
		{lieng.PlayerCountError{Min: 2, Max: 17, Got: 1}, "Cần từ 2 đến 17 người chơi."},
		{room.RollbackError{Cause: ledger.PartialDeductionError{Cause: ledger.InsufficientFundsError{}}}, "Lỗi khi bắt đầu game. Tiền cược đã được hoàn lại."},
		{fmt.Errorf("wrapped: %w", lieng.ErrCannotCheck), "Không thể xem bài khi đang có cược, hãy Theo hoặc Bỏ."},
		{invite.ErrInviteExpired, "Lời mời đã hết hạn."},
		{room.ErrGameNotFound, "Game không tồn tại hoặc đã kết thúc."},
		{fmt.Errorf("boom"), "Có lỗi xảy ra."},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, UserMessage(test.err), test.err.Error())
	}
}
