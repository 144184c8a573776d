package room

import (
	"fmt"
	"lieng-server/pkg/lieng"
	"lieng-server/pkg/messenger"
	"strings"
)

func startedText(g *lieng.Game) string {
	return fmt.Sprintf("🎴 **Liêng Game #%s bắt đầu!**\n💰 Pot hiện tại: %d", g.ID(), g.Pot())
}

func handText(p *lieng.Participant) string {
	hand := p.Hand()
	return fmt.Sprintf("🎴 Bài của bạn: %s\n📊 Điểm: **%s**", hand, lieng.EvaluateHand(hand).Label)
}

func promptText(g *lieng.Game, p *lieng.Participant) string {
	return fmt.Sprintf("👉 Lượt của **%s**\n💰 Pot: %d | Cược bàn: %d", p.Name, g.Pot(), g.CurrentBet())
}

func promptButtons(g *lieng.Game, p *lieng.Participant, key GameKey) []messenger.Button {
	button := func(action lieng.Action, label string, style messenger.ButtonStyle) messenger.Button {
		return messenger.Button{
			ID:    messenger.EncodeButtonID(string(action), key.GameID, key.Location),
			Label: label,
			Style: style,
		}
	}

	buttons := make([]messenger.Button, 0, 4)
	if toCall := g.ToCall(p.PlayerID); toCall > 0 {
		buttons = append(buttons, button(lieng.ActionCall, fmt.Sprintf("Theo (%d)", toCall), messenger.StylePrimary))
	} else {
		buttons = append(buttons, button(lieng.ActionCheck, "Xem (Check)", messenger.StyleSecondary))
	}

	return append(buttons,
		button(lieng.ActionFold, "Bỏ (Fold)", messenger.StyleDanger),
		button(lieng.ActionRaise, fmt.Sprintf("Tố (+%d)", g.BetAmount()), messenger.StyleSuccess),
		button(lieng.ActionAllIn, "All-in", messenger.StyleDanger),
	)
}

func actionText(g *lieng.Game, rec *lieng.ActionRecord) string {
	name := rec.PlayerID
	if p, ok := g.Participant(rec.PlayerID); ok {
		name = p.Name
	}

	switch rec.Action {
	case lieng.ActionFold:
		if rec.Forced {
			return fmt.Sprintf("⏰ **%s** hết thời gian, tự động Bỏ (Fold).", name)
		}

		return fmt.Sprintf("💀 **%s** đã Bỏ (Fold).", name)
	case lieng.ActionCall:
		if rec.Chips > 0 {
			return fmt.Sprintf("💸 **%s** Theo (Call) %d.", name, rec.Chips)
		}

		return fmt.Sprintf("👀 **%s** Xem (Check).", name)
	case lieng.ActionCheck:
		return fmt.Sprintf("👀 **%s** Xem (Check).", name)
	case lieng.ActionRaise:
		return fmt.Sprintf("🚀 **%s** Tố thêm (Raise)! (Tổng: %d)", name, rec.TotalBet)
	case lieng.ActionAllIn:
		return fmt.Sprintf("🔥 **%s** All-in %d! (Tổng: %d)", name, rec.Chips, rec.TotalBet)
	}

	return fmt.Sprintf("**%s** %s", name, rec.Action)
}

func resultText(g *lieng.Game, result *lieng.Result) string {
	name := func(id string) string {
		if p, ok := g.Participant(id); ok {
			return p.Name
		}

		return id
	}

	var sb strings.Builder
	if result.Uncontested {
		fmt.Fprintf(&sb, "🏆 **Thắng cuộc:** %s\n💰 Thắng: %d", name(result.Winners[0]), result.Pot)
		return sb.String()
	}

	if len(result.Winners) > 1 {
		fmt.Fprintf(&sb, "🤝 **HÒA!** %d người chia %d:\n", len(result.Winners), result.Pot)
		for _, h := range result.Hands {
			if h.Winner {
				fmt.Fprintf(&sb, "👑 %s (%s) - Nhận: %d\n", h.Name, h.Hand.Label, result.Share)
			}
		}
	} else {
		winner := result.Hands[0]
		fmt.Fprintf(&sb, "👑 **Chiến thắng:** %s (%s)\n💰 Thắng: %d\n\n", winner.Name, winner.Hand.Label, result.Share)
	}

	sb.WriteString("**Bài của các người chơi:**")
	for _, h := range result.Hands {
		fmt.Fprintf(&sb, "\n> %s: %s - %s", h.Name, h.Cards, h.Hand.Label)
	}

	return sb.String()
}
