package mux

import (
	"errors"
	"lieng-server/pkg/interaction"
	"lieng-server/pkg/invite"
	"lieng-server/pkg/ledger"
	"lieng-server/pkg/lieng"
	"lieng-server/pkg/messenger"
	"lieng-server/pkg/room"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func decodeRequest(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if ct := r.Header.Get("Content-Type"); ct != "application/json" && ct != "text/json" {
		writeJSONError(w, http.StatusUnsupportedMediaType, nil)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("could not write JSON response")
	}
}

type errorResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// writeGameError maps an error from the game components to a status code
func writeGameError(w http.ResponseWriter, err error) {
	writeJSONError(w, gameErrorStatus(err), err)
}

func gameErrorStatus(err error) int {
	var ife ledger.InsufficientFundsError
	var pce lieng.PlayerCountError

	switch {
	case errors.As(err, &ife):
		return http.StatusPaymentRequired
	case errors.Is(err, interaction.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, invite.ErrNotInvited):
		return http.StatusForbidden
	case errors.Is(err, room.ErrGameNotFound),
		errors.Is(err, invite.ErrInviteNotFound),
		errors.Is(err, ledger.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, lieng.ErrNotYourTurn),
		errors.Is(err, lieng.ErrBettingClosed),
		errors.Is(err, lieng.ErrStaleMove),
		errors.Is(err, room.ErrGameIsOver),
		errors.Is(err, room.ErrGameExists),
		errors.Is(err, invite.ErrInviteExpired):
		return http.StatusConflict
	case errors.As(err, &pce),
		errors.Is(err, lieng.ErrInvalidAction),
		errors.Is(err, messenger.ErrInvalidButtonID),
		errors.Is(err, invite.ErrInvalidDecision),
		errors.Is(err, invite.ErrInvalidBetAmount),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, interaction.ErrNoMentions),
		errors.Is(err, interaction.ErrInvalidBet),
		errors.Is(err, interaction.ErrUnknownCommand):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func writeJSONError(w http.ResponseWriter, statusCode int, err error) {
	var msg string

	if statusCode < 500 && err != nil {
		msg = err.Error()
	} else {
		msg = http.StatusText(statusCode)
	}

	if statusCode >= 500 {
		logrus.WithField("statusCode", statusCode).Error(err)
	}

	writeJSON(w, statusCode, errorResponse{
		Message:    msg,
		StatusCode: statusCode,
	})
}
