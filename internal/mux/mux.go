package mux

import (
	"context"
	"lieng-server/internal/jwt"
	"lieng-server/pkg/interaction"
	"lieng-server/pkg/ledger"
	"lieng-server/pkg/room"
	"net/http"
	"strings"

	gmux "github.com/gorilla/mux"
)

type ctxKey int

const (
	ctxPlayerKey ctxKey = iota
	ctxGameKey
)

// Services are the game components served over HTTP
type Services struct {
	Dispatcher *interaction.Dispatcher
	PitBoss    *room.PitBoss
	Ledger     ledger.Ledger

	// Admins are the player IDs allowed on the admin endpoints
	Admins []string
}

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version    string
	dispatcher *interaction.Dispatcher
	pitBoss    *room.PitBoss
	ledger     ledger.Ledger
	admins     map[string]bool

	// store for testing purposes
	authRouter  *gmux.Router
	adminRouter *gmux.Router
}

// NewMux returns a new HTTP mux
func NewMux(version string, svc Services) *Mux {
	admins := make(map[string]bool)
	for _, id := range svc.Admins {
		admins[id] = true
	}

	this := &Mux{
		Router:     gmux.NewRouter(),
		version:    version,
		dispatcher: svc.Dispatcher,
		pitBoss:    svc.PitBoss,
		ledger:     svc.Ledger,
		admins:     admins,
	}

	this.authRouter = this.Router.NewRoute().Subrouter()
	this.authRouter.Use(this.authMiddleware)

	this.adminRouter = this.authRouter.NewRoute().Subrouter()
	this.adminRouter.Use(this.adminMiddleware)

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	}

	// requires bearer authorization
	{
		r := this.authRouter.PathPrefix("/lieng").Subrouter()

		r.Methods(http.MethodGet).Path("/balance").Handler(this.getLiengBalance())
		r.Methods(http.MethodPost).Path("/commands").Handler(this.postLiengCommands())
		r.Methods(http.MethodPost).Path("/invites").Handler(this.postLiengInvites())
		r.Methods(http.MethodPost).Path("/interactions").Handler(this.postLiengInteractions())

		gr := r.PathPrefix("/games/{gameId:lieng_[a-zA-Z0-9]+}").Subrouter()
		gr.Use(this.gameMiddleware)

		gr.Methods(http.MethodGet).Path("").Handler(this.getLiengGame())
		gr.Methods(http.MethodPost).Path("/actions").Handler(this.postLiengGameActions())
	}

	// requires admin access
	// depends on authMiddleware
	{
		r := this.adminRouter
		r.Methods(http.MethodPost).Path("/admin/player/{id}/credit").Handler(this.postAdminPlayerCredit())
	}

	return this
}

func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue("access_token")
		if token == "" {
			authHeader := strings.Split(r.Header.Get("Authorization"), " ")
			if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			token = authHeader[1]
		}

		playerID, err := jwt.ValidPlayerID(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxPlayerKey, playerID)
		w.Header().Set("Lieng-PlayerID", playerID)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

// adminMiddleware requires authMiddleware to execute first
func (m *Mux) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.admins[playerID(r)] {
			writeJSONError(w, http.StatusForbidden, nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func playerID(r *http.Request) string {
	id, _ := r.Context().Value(ctxPlayerKey).(string)
	return id
}
