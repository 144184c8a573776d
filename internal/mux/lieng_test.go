package mux

import (
	"lieng-server/pkg/interaction"
	"lieng-server/pkg/lieng"
	"lieng-server/pkg/messenger"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loc = messenger.Location{ClanID: "clan", ChannelID: "chan"}

func TestLieng_fullGame(t *testing.T) {
	s := newStack(t)
	ts := httptest.NewServer(s.mux)
	defer ts.Close()

	p1, p2, p3 := token(t, "p1"), token(t, "p2"), token(t, "p3")

	var errObj errorResponse
	assertPost(t, ts, "/lieng/invites", map[string]interface{}{"mentions": []string{"p2"}}, &errObj, 400, p1)
	assert.Equal(t, "clanId and channelId are required", errObj.Message)

	assertPost(t, ts, "/lieng/invites", map[string]interface{}{
		"clanId":    "clan",
		"channelId": "chan",
		"mentions":  []string{"p3"},
		"betAmount": 100,
	}, &errObj, 402, p1)

	var inv inviteResponse
	assertPost(t, ts, "/lieng/invites", map[string]interface{}{
		"clanId":    "clan",
		"channelId": "chan",
		"mentions":  []string{"p2"},
		"betAmount": 100,
	}, &inv, 201, p1)
	require.Regexp(t, "^lieng_[a-f0-9]{8}$", inv.GameID)

	join := messenger.EncodeButtonID("join", inv.GameID, loc)
	assertPost(t, ts, "/lieng/interactions", map[string]interface{}{"buttonId": join}, &errObj, 403, p3)
	assertPost(t, ts, "/lieng/interactions", map[string]interface{}{"buttonId": join}, nil, 204, p2)

	var state lieng.State
	assertGet(t, ts, "/lieng/games/"+inv.GameID, &state, 200, p1)
	assert.Equal(t, 200, state.Pot)
	assert.Equal(t, "p2", state.CurrentPlayer)

	assertGet(t, ts, "/lieng/games/lieng_zzz", &errObj, 404, p1)

	assertPost(t, ts, "/lieng/games/"+inv.GameID+"/actions", map[string]interface{}{"action": "call"}, &errObj, 409, p1)
	assertPost(t, ts, "/lieng/games/"+inv.GameID+"/actions", map[string]interface{}{"action": "dance"}, &errObj, 400, p2)

	var action actionResponse
	assertPost(t, ts, "/lieng/games/"+inv.GameID+"/actions", map[string]interface{}{"action": "fold"}, &action, 200, p2)
	require.NotNil(t, action.Result)
	assert.Equal(t, []string{"p1"}, action.Result.Winners)
	assert.True(t, action.Result.Uncontested)
	assert.Equal(t, lieng.ActionFold, action.Record.Action)

	var balance balanceResponse
	assertGet(t, ts, "/lieng/balance", &balance, 200, p1)
	assert.Equal(t, 1100, balance.Balance)

	assert.Eventually(t, func() bool {
		return s.pitBoss.Games() == 0
	}, time.Second, time.Millisecond*5)
	assertGet(t, ts, "/lieng/games/"+inv.GameID, &errObj, 404, p1)
}

func TestLieng_commands(t *testing.T) {
	s := newStack(t)
	ts := httptest.NewServer(s.mux)
	defer ts.Close()

	p1 := token(t, "p1")

	var resp commandResponse
	assertPost(t, ts, "/lieng/commands", map[string]interface{}{"clanId": "clan", "channelId": "chan", "args": []string{"help"}}, &resp, 200, p1)
	assert.Equal(t, interaction.HelpText, resp.Reply)

	assertPost(t, ts, "/lieng/commands", map[string]interface{}{"clanId": "clan", "channelId": "chan", "args": []string{"start"}}, &resp, 400, p1)
	assert.Equal(t, "❌ Cần mention người chơi!", resp.Reply)

	assertPost(t, ts, "/lieng/commands", map[string]interface{}{
		"clanId":    "clan",
		"channelId": "chan",
		"args":      []string{"start", "200", "@Bình"},
		"mentions":  []string{"p2"},
	}, &resp, 200, p1)
	assert.Contains(t, resp.Reply, "Cược: 200")

	msg, ok := s.msgs.FindChannelMessage("Cược: 200")
	require.True(t, ok)
	assert.Len(t, msg.Buttons, 2)
}

func TestLieng_adminCredit(t *testing.T) {
	s := newStack(t)
	ts := httptest.NewServer(s.mux)
	defer ts.Close()

	var errObj errorResponse
	assertPost(t, ts, "/admin/player/p3/credit", map[string]interface{}{"amount": 500}, &errObj, 403, token(t, "p1"))

	var balance balanceResponse
	assertPost(t, ts, "/admin/player/p3/credit", map[string]interface{}{"amount": 500}, &balance, 200, token(t, "admin"))
	assert.Equal(t, 550, balance.Balance)

	assertPost(t, ts, "/admin/player/p3/credit", map[string]interface{}{"amount": -5}, &errObj, 400, token(t, "admin"))
	assertPost(t, ts, "/admin/player/p3/credit", "{}", &errObj, 400, token(t, "admin"))
}
