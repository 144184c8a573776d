package main

import (
	"context"
	"flag"
	"fmt"
	"lieng-server/internal/rng"
	"lieng-server/internal/util"
	"lieng-server/pkg/identity"
	"lieng-server/pkg/interaction"
	"lieng-server/pkg/invite"
	"lieng-server/pkg/ledger"
	"lieng-server/pkg/lieng"
	"lieng-server/pkg/messenger"
	"lieng-server/pkg/room"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
)

var players = flag.Int("players", 4, "number of bots at the table")
var bet = flag.Int("bet", 1000, "bet amount")
var balance = flag.Int("balance", 10000, "starting balance of every bot")
var games = flag.Int("games", 1, "number of games to play")
var verbose = flag.Bool("v", false, "print every chat message")
var seed = flag.Int64("seed", time.Now().UnixNano(), "seed for the shuffle and the bots")

var loc = messenger.Location{ClanID: "sim", ChannelID: "table"}

func main() {
	flag.Parse()
	logrus.SetLevel(logrus.WarnLevel)
	ctx := context.Background()

	ids := make([]string, *players)
	names := identity.NewStatic(nil)
	balances := make(map[string]int)
	for i := range ids {
		ids[i] = "bot" + strconv.Itoa(i+1)
		names.Set(ids[i], util.GetRandomName())
		balances[ids[i]] = *balance
	}

	l := ledger.NewMemory(balances)
	var msgs messenger.Messenger = messenger.NewRecorder()
	if *verbose {
		pterm.EnableDebugMessages()
		msgs = terminal{Recorder: messenger.NewRecorder()}
	}
	bots := rng.NewSeeded(*seed + 1)

	pitBoss := room.NewPitBoss(logrus.StandardLogger(), room.Options{
		Ledger:      l,
		Messenger:   msgs,
		Names:       names,
		RNG:         rng.NewSeeded(*seed),
		TurnTimeout: time.Minute,
	})
	defer pitBoss.Close()

	invites := invite.NewManager(logrus.StandardLogger(), l, msgs, names, pitBoss, time.Minute)
	defer invites.Close()

	dispatcher := interaction.NewDispatcher(logrus.StandardLogger(), invites, pitBoss, msgs, *bet, 0)

	pterm.DefaultHeader.Println("Liêng simulator")
	pterm.Info.Printfln("%d bots, bet %d, seed %d", *players, *bet, *seed)

	for i := 0; i < *games; i++ {
		result, err := play(ctx, dispatcher, pitBoss, bots, ids)
		if err != nil {
			pterm.Error.Printfln("game %d: %v", i+1, err)
			break
		}

		printResult(i+1, result, names)
	}

	pitBoss.Wait()
	printBalances(ctx, l, names, ids)
}

func play(ctx context.Context, d *interaction.Dispatcher, pitBoss *room.PitBoss, gen rng.Generator, ids []string) (*lieng.Result, error) {
	key, err := d.Start(ctx, interaction.StartCommand{
		CreatorID: ids[0],
		Location:  loc,
		Mentions:  ids[1:],
	})
	if err != nil {
		return nil, err
	}

	for _, id := range ids[1:] {
		if err := d.Press(ctx, interaction.Press{
			ButtonID: messenger.EncodeButtonID(string(invite.DecisionJoin), key.GameID, loc),
			UserID:   id,
		}); err != nil {
			return nil, err
		}
	}

	gameKey := room.GameKey{Location: loc, GameID: key.GameID}
	for {
		state, err := pitBoss.State(ctx, gameKey)
		if err != nil {
			return nil, err
		}

		var toCall int
		for _, p := range state.Participants {
			if p.PlayerID == state.CurrentPlayer {
				toCall = state.CurrentBet - p.CurrentBet
			}
		}

		outcome, err := pitBoss.Action(ctx, gameKey, state.CurrentPlayer, botAction(gen, toCall), 0)
		if err != nil {
			pterm.Warning.Printfln("%s: %v", state.CurrentPlayer, err)
			if _, err := pitBoss.Action(ctx, gameKey, state.CurrentPlayer, lieng.ActionFold, 0); err != nil {
				return nil, err
			}

			continue
		}

		if outcome.Result != nil {
			return outcome.Result, nil
		}
	}
}

// botAction picks a loose-passive action, raising now and then
func botAction(gen rng.Generator, toCall int) lieng.Action {
	roll := gen.Intn(100)
	switch {
	case roll < 3:
		return lieng.ActionAllIn
	case roll < 15:
		return lieng.ActionRaise
	case toCall == 0:
		return lieng.ActionCheck
	case roll < 35:
		return lieng.ActionFold
	}

	return lieng.ActionCall
}

func printResult(n int, result *lieng.Result, names identity.Resolver) {
	ctx := context.Background()
	body := pterm.Sprintfln("Pot: %d", result.Pot)
	for _, id := range result.Winners {
		body += pterm.Sprintfln("%s wins %d", pterm.LightCyan(identity.NameOrPlaceholder(ctx, names, id, 0)), result.Share)
	}

	for _, h := range result.Hands {
		body += pterm.Sprintfln("%-20s %s  %s", h.Name, h.Cards, h.Hand.Label)
	}

	title := fmt.Sprintf("|GAME %d|", n)
	if result.Uncontested {
		title = fmt.Sprintf("|GAME %d, UNCONTESTED|", n)
	}

	pterm.DefaultBox.WithTitle(pterm.LightGreen(title)).WithTitleTopCenter().Println(body)
}

func printBalances(ctx context.Context, l ledger.Ledger, names identity.Resolver, ids []string) {
	data := pterm.TableData{{"Bot", "Name", "Balance"}}
	for i, id := range ids {
		b, _ := l.Balance(ctx, id)
		data = append(data, []string{id, identity.NameOrPlaceholder(ctx, names, id, i), strconv.Itoa(b)})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		logrus.WithError(err).Warn("could not render balances")
	}
}
