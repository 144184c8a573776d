package invite

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"lieng-server/pkg/identity"
	"lieng-server/pkg/ledger"
	"lieng-server/pkg/lieng"
	"lieng-server/pkg/messenger"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cbg = context.Background()

var loc = messenger.Location{ClanID: "clan", ChannelID: "chan"}

type recordingStarter struct {
	mu      sync.Mutex
	calls   []StartRequest
	ctxErrs []error
	err     error
}

func (r *recordingStarter) StartGame(ctx context.Context, req StartRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, req)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	return r.err
}

func (r *recordingStarter) Calls() []StartRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]StartRequest{}, r.calls...)
}

func newTestManager(timeout time.Duration) (*Manager, *recordingStarter, *messenger.Recorder) {
	l := ledger.NewMemory(map[string]int{"a": 1000, "b": 1000, "c": 1000, "poor": 10})
	rec := messenger.NewRecorder()
	starter := &recordingStarter{}
	names := identity.NewStatic(map[string]string{"a": "An", "b": "Bình"})

	return NewManager(logrus.StandardLogger(), l, rec, names, starter, timeout), starter, rec
}

func TestManager_CreateInvite(t *testing.T) {
	m, _, rec := newTestManager(time.Minute)
	defer m.Close()

	key, err := m.CreateInvite(cbg, CreateRequest{CreatorID: "a", Location: loc, Mentions: []string{"b", "c", "b", "a"}, BetAmount: 100})
	require.NoError(t, err)
	assert.Regexp(t, `^lieng_[0-9a-f]{8}$`, key.GameID)
	assert.Equal(t, loc, key.Location)

	status, err := m.Status(key)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a"}, status.Confirmed)
	assert.Equal(t, 2, status.Pending)

	msgs := rec.ChannelMessages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "An, Bình, Player 3")
	assert.Contains(t, msgs[0].Text, "Cược: 100")
	assert.Equal(t, "lieng_join_"+key.GameID+"_clan_chan", msgs[0].Buttons[0].ID)
	assert.Equal(t, "lieng_decline_"+key.GameID+"_clan_chan", msgs[0].Buttons[1].ID)
}

func TestManager_CreateInvite_errors(t *testing.T) {
	m, _, rec := newTestManager(time.Minute)
	defer m.Close()

	_, err := m.CreateInvite(cbg, CreateRequest{CreatorID: "a", Location: loc, Mentions: []string{"b", "poor"}, BetAmount: 100})
	var ife ledger.InsufficientFundsError
	assert.True(t, errors.As(err, &ife))
	assert.Equal(t, []string{"poor"}, ife.Players)

	_, err = m.CreateInvite(cbg, CreateRequest{CreatorID: "a", Location: loc, Mentions: []string{"a"}, BetAmount: 100})
	assert.IsType(t, lieng.PlayerCountError{}, err)

	_, err = m.CreateInvite(cbg, CreateRequest{CreatorID: "a", Location: loc, Mentions: []string{"b"}, BetAmount: 0})
	assert.Equal(t, ErrInvalidBetAmount, err)

	assert.Equal(t, 0, m.Open())
	assert.Len(t, rec.ChannelMessages(), 0)
}

func TestManager_Respond(t *testing.T) {
	m, starter, rec := newTestManager(time.Minute)
	defer m.Close()

	key, err := m.CreateInvite(cbg, CreateRequest{CreatorID: "a", Location: loc, Mentions: []string{"b", "c"}, BetAmount: 100})
	require.NoError(t, err)

	_, err = m.Respond(cbg, key, "z", DecisionJoin)
	assert.Equal(t, ErrNotInvited, err)

	_, err = m.Respond(cbg, Key{Location: loc, GameID: "lieng_nope"}, "b", DecisionJoin)
	assert.Equal(t, ErrInviteNotFound, err)

	_, err = m.Respond(cbg, key, "b", Decision("maybe"))
	assert.Equal(t, ErrInvalidDecision, err)

	// confirm then decline leaves the user in one set
	status, err := m.Respond(cbg, key, "b", DecisionJoin)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, status.Confirmed)

	status, err = m.Respond(cbg, key, "b", DecisionDecline)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a"}, status.Confirmed)
	assert.Equal(t, []string{"b"}, status.Declined)

	// idempotent
	status, err = m.Respond(cbg, key, "b", DecisionDecline)
	assert.NoError(t, err)
	assert.Equal(t, []string{"b"}, status.Declined)
	assert.Equal(t, 1, status.Pending)
	assert.False(t, status.Resolved)

	assert.Len(t, rec.DirectMessages("b"), 3)
	msgs := rec.ChannelMessages()
	assert.Equal(t, 3, msgs[0].Edits)
	assert.Contains(t, msgs[0].Text, "Từ chối: 1")
	assert.Equal(t, "❌ Từ chối (1)", msgs[0].Buttons[1].Label)

	assert.Len(t, starter.Calls(), 0)
}

func TestManager_QuorumStartsGame(t *testing.T) {
	m, starter, rec := newTestManager(time.Millisecond * 50)
	defer m.Close()

	key, err := m.CreateInvite(cbg, CreateRequest{CreatorID: "a", Location: loc, Mentions: []string{"c", "b"}, BetAmount: 100})
	require.NoError(t, err)

	_, _ = m.Respond(cbg, key, "b", DecisionJoin)
	status, err := m.Respond(cbg, key, "c", DecisionJoin)
	assert.NoError(t, err)
	assert.True(t, status.Resolved)

	calls := starter.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, key.GameID, calls[0].GameID)
	assert.Equal(t, "a", calls[0].CreatorID)
	assert.Equal(t, []string{"a", "c", "b"}, calls[0].PlayerIDs, "seated in mention order")
	assert.Equal(t, 100, calls[0].BetAmount)

	_, err = m.Respond(cbg, key, "c", DecisionDecline)
	assert.Equal(t, ErrInviteNotFound, err)

	// the cancelled timer never resolves a second time
	time.Sleep(time.Millisecond * 150)
	assert.Len(t, starter.Calls(), 1)
	assert.Equal(t, 0, m.Open())

	msgs := rec.ChannelMessages()
	assert.Contains(t, msgs[0].Text, "đã đóng")
	assert.Nil(t, msgs[0].Buttons)
}

func TestManager_QuorumIgnoresResponderContext(t *testing.T) {
	m, starter, _ := newTestManager(time.Minute)
	defer m.Close()

	key, err := m.CreateInvite(cbg, CreateRequest{CreatorID: "a", Location: loc, Mentions: []string{"b"}, BetAmount: 100})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status, err := m.Respond(ctx, key, "b", DecisionJoin)
	assert.NoError(t, err)
	assert.True(t, status.Resolved)

	require.Len(t, starter.Calls(), 1)
	starter.mu.Lock()
	defer starter.mu.Unlock()
	assert.NoError(t, starter.ctxErrs[0])
}

// pressWhilePosting answers the invite from inside the call that posts it
func pressWhilePosting(m *Manager, rec *messenger.Recorder, userID string) *error {
	var pressErr error
	pressed := false
	rec.OnChange = func(msg *messenger.Message) {
		if pressed || len(msg.Buttons) == 0 {
			return
		}

		pressed = true
		gameID := strings.TrimSuffix(strings.TrimPrefix(msg.Buttons[0].ID, "lieng_join_"), "_clan_chan")
		_, pressErr = m.Respond(cbg, Key{Location: loc, GameID: gameID}, userID, DecisionJoin)
	}

	return &pressErr
}

func TestManager_PressBeforeInvitePosted(t *testing.T) {
	m, starter, rec := newTestManager(time.Minute)
	defer m.Close()

	pressErr := pressWhilePosting(m, rec, "b")
	key, err := m.CreateInvite(cbg, CreateRequest{CreatorID: "a", Location: loc, Mentions: []string{"b", "c"}, BetAmount: 100})
	require.NoError(t, err)
	assert.NoError(t, *pressErr)

	status, err := m.Status(key)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, status.Confirmed)
	assert.Len(t, starter.Calls(), 0)
}

func TestManager_ResolvedBeforeInvitePosted(t *testing.T) {
	m, starter, rec := newTestManager(time.Minute)
	defer m.Close()

	pressErr := pressWhilePosting(m, rec, "b")
	_, err := m.CreateInvite(cbg, CreateRequest{CreatorID: "a", Location: loc, Mentions: []string{"b"}, BetAmount: 100})
	require.NoError(t, err)
	assert.NoError(t, *pressErr)

	assert.Len(t, starter.Calls(), 1)
	assert.Equal(t, 0, m.Open())

	msgs := rec.ChannelMessages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "đã đóng")
	assert.Nil(t, msgs[0].Buttons)
}

func TestManager_ExpiryStartsGame(t *testing.T) {
	m, starter, _ := newTestManager(time.Millisecond * 20)
	defer m.Close()

	key, err := m.CreateInvite(cbg, CreateRequest{CreatorID: "a", Location: loc, Mentions: []string{"b", "c"}, BetAmount: 100})
	require.NoError(t, err)
	_, _ = m.Respond(cbg, key, "c", DecisionJoin)

	assert.Eventually(t, func() bool {
		return len(starter.Calls()) == 1
	}, time.Second, time.Millisecond*5)

	assert.Equal(t, []string{"a", "c"}, starter.Calls()[0].PlayerIDs)
	time.Sleep(time.Millisecond * 50)
	assert.Len(t, starter.Calls(), 1)
}

func TestManager_ExpiryNotEnoughPlayers(t *testing.T) {
	m, starter, rec := newTestManager(time.Millisecond * 20)
	defer m.Close()

	_, err := m.CreateInvite(cbg, CreateRequest{CreatorID: "a", Location: loc, Mentions: []string{"b"}, BetAmount: 100})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, found := rec.FindChannelMessage("Không đủ người chơi")
		return found
	}, time.Second, time.Millisecond*5)

	assert.Len(t, starter.Calls(), 0)
	assert.Equal(t, 0, m.Open())
}

func TestManager_CreatorDeclines(t *testing.T) {
	m, starter, rec := newTestManager(time.Minute)
	defer m.Close()

	key, _ := m.CreateInvite(cbg, CreateRequest{CreatorID: "a", Location: loc, Mentions: []string{"b"}, BetAmount: 100})
	_, _ = m.Respond(cbg, key, "a", DecisionDecline)
	status, err := m.Respond(cbg, key, "b", DecisionJoin)
	assert.NoError(t, err)
	assert.True(t, status.Resolved)

	assert.Len(t, starter.Calls(), 0)
	_, found := rec.FindChannelMessage("Không đủ người chơi")
	assert.True(t, found)
}

func TestManager_Expired(t *testing.T) {
	m, _, _ := newTestManager(time.Minute)
	defer m.Close()

	key, _ := m.CreateInvite(cbg, CreateRequest{CreatorID: "a", Location: loc, Mentions: []string{"b"}, BetAmount: 100})
	m.now = func() time.Time { return time.Now().Add(time.Hour) }

	_, err := m.Respond(cbg, key, "b", DecisionJoin)
	assert.Equal(t, ErrInviteExpired, err)
}

func TestManager_StartFailureIsReported(t *testing.T) {
	m, starter, rec := newTestManager(time.Minute)
	defer m.Close()
	starter.err = errors.New("ledger down")

	key, _ := m.CreateInvite(cbg, CreateRequest{CreatorID: "a", Location: loc, Mentions: []string{"b"}, BetAmount: 100})
	_, err := m.Respond(cbg, key, "b", DecisionJoin)
	assert.NoError(t, err)

	_, found := rec.FindChannelMessage("ledger down")
	assert.True(t, found)
}

func TestManager_ConcurrentResponses(t *testing.T) {
	m, starter, _ := newTestManager(time.Millisecond * 200)
	defer m.Close()

	key, _ := m.CreateInvite(cbg, CreateRequest{CreatorID: "a", Location: loc, Mentions: []string{"b", "c"}, BetAmount: 100})

	var wg sync.WaitGroup
	for _, id := range []string{"b", "c", "b", "c"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _ = m.Respond(cbg, key, id, DecisionJoin)
		}(id)
	}

	wg.Wait()
	time.Sleep(time.Millisecond * 300)
	assert.Len(t, starter.Calls(), 1)
}

func TestDecisionFromString(t *testing.T) {
	d, err := DecisionFromString("join")
	assert.NoError(t, err)
	assert.Equal(t, DecisionJoin, d)

	_, err = DecisionFromString("raise")
	assert.Equal(t, ErrInvalidDecision, err)
}
