package mux

import (
	"context"
	"errors"
	"lieng-server/pkg/interaction"
	"lieng-server/pkg/lieng"
	"lieng-server/pkg/messenger"
	"lieng-server/pkg/room"
	"net/http"

	gmux "github.com/gorilla/mux"
)

type locationPayload struct {
	ClanID    string `json:"clanId"`
	ChannelID string `json:"channelId"`
}

func (l locationPayload) location() messenger.Location {
	return messenger.Location{ClanID: l.ClanID, ChannelID: l.ChannelID}
}

func (l locationPayload) valid() bool {
	return l.ClanID != "" && l.ChannelID != ""
}

var errMissingLocation = errors.New("clanId and channelId are required")

type balanceResponse struct {
	PlayerID string `json:"playerId"`
	Balance  int    `json:"balance"`
}

func (m *Mux) getLiengBalance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := playerID(r)
		balance, err := m.ledger.Balance(r.Context(), id)
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, balanceResponse{PlayerID: id, Balance: balance})
	}
}

type postLiengCommandsPayload struct {
	locationPayload
	Args     []string `json:"args"`
	Mentions []string `json:"mentions"`
}

type commandResponse struct {
	Reply string `json:"reply"`
}

func (m *Mux) postLiengCommands() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pl postLiengCommandsPayload
		if !decodeRequest(w, r, &pl) {
			return
		}

		if !pl.valid() {
			writeJSONError(w, http.StatusBadRequest, errMissingLocation)
			return
		}

		reply, err := m.dispatcher.HandleCommand(r.Context(), interaction.Command{
			SenderID: playerID(r),
			Location: pl.location(),
			Args:     pl.Args,
			Mentions: pl.Mentions,
		})
		if err != nil {
			writeJSON(w, gameErrorStatus(err), commandResponse{Reply: "❌ " + interaction.UserMessage(err)})
			return
		}

		writeJSON(w, http.StatusOK, commandResponse{Reply: reply})
	}
}

type postLiengInvitesPayload struct {
	locationPayload
	Mentions  []string `json:"mentions"`
	BetAmount int      `json:"betAmount"`
}

type inviteResponse struct {
	GameID    string `json:"gameId"`
	ClanID    string `json:"clanId"`
	ChannelID string `json:"channelId"`
}

func (m *Mux) postLiengInvites() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pl postLiengInvitesPayload
		if !decodeRequest(w, r, &pl) {
			return
		}

		if !pl.valid() {
			writeJSONError(w, http.StatusBadRequest, errMissingLocation)
			return
		}

		key, err := m.dispatcher.Start(r.Context(), interaction.StartCommand{
			CreatorID: playerID(r),
			Location:  pl.location(),
			Mentions:  pl.Mentions,
			BetAmount: pl.BetAmount,
		})
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, inviteResponse{
			GameID:    key.GameID,
			ClanID:    key.Location.ClanID,
			ChannelID: key.Location.ChannelID,
		})
	}
}

type postLiengInteractionsPayload struct {
	ButtonID string `json:"buttonId"`
	Amount   int    `json:"amount"`
}

func (m *Mux) postLiengInteractions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pl postLiengInteractionsPayload
		if !decodeRequest(w, r, &pl) {
			return
		}

		if err := m.dispatcher.Press(r.Context(), interaction.Press{
			ButtonID: pl.ButtonID,
			UserID:   playerID(r),
			Amount:   pl.Amount,
		}); err != nil {
			writeGameError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// gameMiddleware resolves the running game from the path
func (m *Mux) gameMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := m.pitBoss.FindGame(gmux.Vars(r)["gameId"])
		if !ok {
			writeJSONError(w, http.StatusNotFound, room.ErrGameNotFound)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxGameKey, key)))
	})
}

func gameKey(r *http.Request) room.GameKey {
	return r.Context().Value(ctxGameKey).(room.GameKey)
}

func (m *Mux) getLiengGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := m.pitBoss.State(r.Context(), gameKey(r))
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, state)
	}
}

type postLiengGameActionsPayload struct {
	Action string `json:"action"`
	Amount int    `json:"amount"`
}

type actionResponse struct {
	Record *lieng.ActionRecord `json:"record"`
	Next   string              `json:"next,omitempty"`
	Result *lieng.Result       `json:"result,omitempty"`
	Unpaid map[string]int      `json:"unpaid,omitempty"`
}

func (m *Mux) postLiengGameActions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pl postLiengGameActionsPayload
		if !decodeRequest(w, r, &pl) {
			return
		}

		action, err := lieng.ActionFromString(pl.Action)
		if err != nil {
			writeGameError(w, err)
			return
		}

		outcome, err := m.pitBoss.Action(r.Context(), gameKey(r), playerID(r), action, pl.Amount)

		// the move stands even when a winner could not be paid
		var se room.SettlementError
		if err != nil && !(errors.As(err, &se) && outcome != nil) {
			writeGameError(w, err)
			return
		}

		resp := actionResponse{
			Record: outcome.Record,
			Result: outcome.Result,
			Unpaid: se.Unpaid,
		}

		if outcome.Next != nil {
			resp.Next = outcome.Next.PlayerID
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

type postAdminPlayerCreditPayload struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

func (m *Mux) postAdminPlayerCredit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pl postAdminPlayerCreditPayload
		if !decodeRequest(w, r, &pl) {
			return
		}

		if pl.Reason == "" {
			pl.Reason = "admin credit by " + playerID(r)
		}

		id := gmux.Vars(r)["id"]
		if err := m.ledger.Credit(r.Context(), id, pl.Amount, pl.Reason); err != nil {
			writeGameError(w, err)
			return
		}

		balance, err := m.ledger.Balance(r.Context(), id)
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, balanceResponse{PlayerID: id, Balance: balance})
	}
}
