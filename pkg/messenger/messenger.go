package messenger

import (
	"context"
	"fmt"
)

// Location is a channel inside a clan
type Location struct {
	ClanID    string `json:"clanId"`
	ChannelID string `json:"channelId"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s/%s", l.ClanID, l.ChannelID)
}

// ButtonStyle is the color of a button
type ButtonStyle string

// button styles
const (
	StylePrimary   ButtonStyle = "primary"
	StyleSecondary ButtonStyle = "secondary"
	StyleSuccess   ButtonStyle = "success"
	StyleDanger    ButtonStyle = "danger"
)

// Button is an action attached to a channel message
type Button struct {
	ID    string      `json:"id"`
	Label string      `json:"label"`
	Style ButtonStyle `json:"style"`
}

// MessageRef points at a message that was sent to a channel
type MessageRef struct {
	ID       string   `json:"id"`
	Location Location `json:"location"`
}

// IsZero returns true if the ref does not point at a message
func (m MessageRef) IsZero() bool {
	return m.ID == ""
}

// Messenger delivers messages to the chat platform
// Callers treat every method as best effort, a failure is logged and never changes game state.
type Messenger interface {
	NotifyChannel(ctx context.Context, loc Location, text string, buttons []Button) (MessageRef, error)
	NotifyPlayer(ctx context.Context, playerID string, text string) error
	UpdateMessage(ctx context.Context, ref MessageRef, text string, buttons []Button) error
	DeleteMessage(ctx context.Context, ref MessageRef) error
}
