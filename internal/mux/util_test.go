package mux

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"
	"lieng-server/internal/jwt"
	"lieng-server/internal/rng"
	"lieng-server/pkg/identity"
	"lieng-server/pkg/interaction"
	"lieng-server/pkg/invite"
	"lieng-server/pkg/ledger"
	"lieng-server/pkg/lieng"
	"lieng-server/pkg/messenger"
	"lieng-server/pkg/room"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_gameErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ledger.InsufficientFundsError{Players: []string{"p2"}, Required: 100}, http.StatusPaymentRequired},
		{room.RollbackError{Cause: ledger.PartialDeductionError{Cause: ledger.InsufficientFundsError{}}}, http.StatusPaymentRequired},
		{interaction.ErrRateLimited, http.StatusTooManyRequests},
		{invite.ErrNotInvited, http.StatusForbidden},
		{room.ErrGameNotFound, http.StatusNotFound},
		{lieng.ErrNotYourTurn, http.StatusConflict},
		{lieng.ErrCannotCheck, http.StatusBadRequest},
		{lieng.PlayerCountError{Min: 2, Max: 17, Got: 1}, http.StatusBadRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, gameErrorStatus(test.err), test.err.Error())
	}
}

type stack struct {
	mux     *Mux
	ledger  *ledger.Memory
	msgs    *messenger.Recorder
	pitBoss *room.PitBoss
	invites *invite.Manager
}

func newStack(t *testing.T) *stack {
	t.Helper()
	setupJWT(t)

	s := &stack{
		ledger: ledger.NewMemory(map[string]int{"p1": 1000, "p2": 1000, "p3": 50}),
		msgs:   messenger.NewRecorder(),
	}

	names := identity.NewStatic(map[string]string{"p1": "An", "p2": "Bình"})
	s.pitBoss = room.NewPitBoss(logrus.StandardLogger(), room.Options{
		Ledger:      s.ledger,
		Messenger:   s.msgs,
		Names:       names,
		RNG:         rng.NewSeeded(3),
		TurnTimeout: time.Minute,
	})
	s.invites = invite.NewManager(logrus.StandardLogger(), s.ledger, s.msgs, names, s.pitBoss, time.Minute)

	t.Cleanup(func() {
		s.invites.Close()
		s.pitBoss.Close()
	})

	s.mux = NewMux("v1.2.3", Services{
		Dispatcher: interaction.NewDispatcher(logrus.StandardLogger(), s.invites, s.pitBoss, s.msgs, 100, 0),
		PitBoss:    s.pitBoss,
		Ledger:     s.ledger,
		Admins:     []string{"admin"},
	})

	return s
}

func setupJWT(t *testing.T) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	jwt.SetKeys(key)
}

func token(t *testing.T, playerID string) string {
	t.Helper()

	signed, err := jwt.Sign(playerID, time.Hour)
	require.NoError(t, err)
	return signed
}

func assertDo(t *testing.T, req *http.Request, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	if len(signedJWT) > 0 {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", signedJWT[0]))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Error(err)
		return nil
	}
	defer resp.Body.Close()

	if statusCode != resp.StatusCode {
		b, _ := io.ReadAll(resp.Body)
		t.Log(string(b))
		assert.Equal(t, statusCode, resp.StatusCode)
		return nil
	}

	if respObj != nil {
		if err := json.NewDecoder(resp.Body).Decode(respObj); err != nil {
			t.Error(err)
			return nil
		}
	}

	return resp
}

func assertGet(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Error(err)
		return nil
	}

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}

func assertPost(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	var body io.Reader
	switch val := payload.(type) {
	case string:
		body = strings.NewReader(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			t.Error(err)
			return nil
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	if err != nil {
		t.Error(err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}
