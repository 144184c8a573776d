package main

import (
	"context"
	"flag"
	"lieng-server/internal/config"
	"lieng-server/internal/jwt"
	"lieng-server/internal/mux"
	"lieng-server/internal/rng"
	"lieng-server/pkg/db"
	"lieng-server/pkg/identity"
	"lieng-server/pkg/interaction"
	"lieng-server/pkg/invite"
	"lieng-server/pkg/ledger"
	"lieng-server/pkg/livestate"
	"lieng-server/pkg/messenger"
	"lieng-server/pkg/record"
	"lieng-server/pkg/room"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/nats-io/nats.go"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")

func main() {
	flag.Parse()
	setupLogger()

	cfg := config.Instance()

	// fail fast
	jwt.LoadKeys()

	dbh, err := db.Open(cfg.PGDSN)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to database")
	}
	defer dbh.Close()

	if err := db.Migrate(dbh, cfg.MigrationsPath); err != nil {
		logrus.WithError(err).Fatal("could not run migrations")
	}

	live := livestate.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer live.Close()
	if err := live.Ping(context.Background()); err != nil {
		logrus.WithError(err).Fatal("could not connect to redis")
	}

	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("lieng-server"))
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to nats")
	}
	defer nc.Close()

	l := ledger.NewPostgres(dbh)
	names := identity.NewPostgres(dbh)
	msgs := messenger.NewNATS(nc)
	records := record.NewPostgres(dbh)
	reportUnsettled(records)

	pitBoss := room.NewPitBoss(logrus.StandardLogger(), room.Options{
		Ledger:      l,
		Messenger:   msgs,
		Names:       names,
		LiveState:   live,
		Records:     records,
		RNG:         rng.Crypto{},
		TurnTimeout: cfg.Game.TurnTimeout,
		DealDelay:   cfg.Game.DealDelay,
	})
	defer pitBoss.Close()

	invites := invite.NewManager(logrus.StandardLogger(), l, msgs, names, pitBoss, cfg.Game.InviteTimeout)
	defer invites.Close()

	dispatcher := interaction.NewDispatcher(logrus.StandardLogger(), invites, pitBoss, msgs, cfg.Game.DefaultBet, cfg.Game.ActionsPerSecond)

	sub, err := nc.Subscribe(messenger.SubjectInteractions, dispatcher.HandleNATS)
	if err != nil {
		logrus.WithError(err).Fatal("could not subscribe to interactions")
	}
	defer sub.Unsubscribe()

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	srv := &http.Server{
		Addr: *addr,
		Handler: loggingHandler(c.Handler(mux.NewMux(Version, mux.Services{
			Dispatcher: dispatcher,
			PitBoss:    pitBoss,
			Ledger:     l,
			Admins:     cfg.Admins,
		}))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go func() {
		logrus.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logrus.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Warn("could not shut down cleanly")
	}
}

// reportUnsettled logs games left active by a previous run, they were never paid out
func reportUnsettled(records *record.Postgres) {
	games, err := records.ActiveGames(context.Background())
	if err != nil {
		logrus.WithError(err).Warn("could not load active games")
		return
	}

	for _, g := range games {
		logrus.WithFields(logrus.Fields{
			"game":    g.ID,
			"players": g.PlayerIDs,
			"bet":     g.BetAmount,
		}).Warn("game was not settled by a previous run")
	}
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
