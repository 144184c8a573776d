package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"lieng-server/internal/config"
	"lieng-server/internal/jwt"
	"lieng-server/pkg/db"
	"lieng-server/pkg/identity"
	"lieng-server/pkg/ledger"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var command = flag.String("c", "player", "specifies the command (player, credit, token)")
var stdin = bufio.NewReader(os.Stdin)

var ttl = flag.Duration("ttl", time.Hour*24*30, "lifetime of tokens issued with -c token")

func main() {
	flag.Parse()
	ctx := context.Background()

	switch *command {
	case "player":
		id := mustInput("Player ID")
		name := mustInput("Display name")

		if err := identity.NewPostgres(db.Instance()).SetDisplayName(ctx, id, name); err != nil {
			logrus.WithError(err).Fatal("could not save player")
		}

		fmt.Printf("Saved player %s\n", id)

	case "credit":
		id := mustInput("Player ID")
		amount, err := strconv.Atoi(mustInput("Amount"))
		if err != nil {
			logrus.WithError(err).Fatal("amount must be a number")
		}

		l := ledger.NewPostgres(db.Instance())
		if err := l.Credit(ctx, id, amount, "admin credit"); err != nil {
			logrus.WithError(err).Fatal("could not credit player")
		}

		balance, err := l.Balance(ctx, id)
		if err != nil {
			logrus.WithError(err).Fatal("could not read balance")
		}

		fmt.Printf("Balance of %s is now %d\n", id, balance)

	case "token":
		id := mustInput("Player ID")

		jwt.LoadKeys()
		token, err := jwt.Sign(id, *ttl)
		if err != nil {
			logrus.WithError(err).Fatal("could not sign token")
		}

		fmt.Println(token)
		if isAdmin(id) {
			_, _ = fmt.Fprintln(os.Stderr, "note: this player is an admin")
		}

	default:
		logrus.Fatalf("unknown command: %s", *command)
	}
}

func isAdmin(id string) bool {
	for _, admin := range config.Instance().Admins {
		if admin == id {
			return true
		}
	}

	return false
}

func mustInput(question string) string {
	str, err := getInput(question)
	if err != nil {
		logrus.WithError(err).Fatal("could not get answer")
	}

	if str == "" {
		os.Exit(1)
	}

	return str
}

func getInput(question string) (string, error) {
	fmt.Printf("%s: ", question)
	str, err := stdin.ReadString('\n')
	if err != nil {
		return "", err
	}
	str = strings.TrimRight(str, "\r\n")

	return str, nil
}
