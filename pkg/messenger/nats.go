package messenger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SubjectInteractions is where the chat bridge publishes button presses and commands
const SubjectInteractions = "lieng.in.interactions"

// ChannelSubject returns the subject for messages to a channel
func ChannelSubject(loc Location) string {
	return fmt.Sprintf("lieng.out.%s.%s", loc.ClanID, loc.ChannelID)
}

// PlayerSubject returns the subject for direct messages to a player
func PlayerSubject(playerID string) string {
	return fmt.Sprintf("lieng.dm.%s", playerID)
}

// EnvelopeType is the operation the chat bridge should perform
type EnvelopeType string

// envelope types
const (
	EnvelopeSend   EnvelopeType = "send"
	EnvelopeUpdate EnvelopeType = "update"
	EnvelopeDelete EnvelopeType = "delete"
	EnvelopeDirect EnvelopeType = "direct"
)

// Envelope is the JSON payload published for the chat bridge
type Envelope struct {
	Type      EnvelopeType `json:"type"`
	MessageID string       `json:"messageId,omitempty"`
	Location  *Location    `json:"location,omitempty"`
	PlayerID  string       `json:"playerId,omitempty"`
	Text      string       `json:"text,omitempty"`
	Buttons   []Button     `json:"buttons,omitempty"`
	Time      time.Time    `json:"time"`
}

// Publisher is the part of *nats.Conn the messenger needs
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATS publishes messages for a chat bridge to deliver
// Message IDs are assigned here so the bridge can map them to platform message IDs.
type NATS struct {
	conn Publisher
	now  func() time.Time
}

// NewNATS returns a messenger publishing on conn
func NewNATS(conn Publisher) *NATS {
	return &NATS{conn: conn, now: time.Now}
}

// NotifyChannel sends a message to a channel
func (n *NATS) NotifyChannel(ctx context.Context, loc Location, text string, buttons []Button) (MessageRef, error) {
	ref := MessageRef{ID: uuid.New().String(), Location: loc}
	err := n.publish(ChannelSubject(loc), Envelope{
		Type:      EnvelopeSend,
		MessageID: ref.ID,
		Location:  &loc,
		Text:      text,
		Buttons:   buttons,
	})
	if err != nil {
		return MessageRef{}, err
	}

	return ref, nil
}

// NotifyPlayer sends a direct message
func (n *NATS) NotifyPlayer(ctx context.Context, playerID string, text string) error {
	return n.publish(PlayerSubject(playerID), Envelope{
		Type:     EnvelopeDirect,
		PlayerID: playerID,
		Text:     text,
	})
}

// UpdateMessage replaces the text and buttons of a message
func (n *NATS) UpdateMessage(ctx context.Context, ref MessageRef, text string, buttons []Button) error {
	return n.publish(ChannelSubject(ref.Location), Envelope{
		Type:      EnvelopeUpdate,
		MessageID: ref.ID,
		Location:  &ref.Location,
		Text:      text,
		Buttons:   buttons,
	})
}

// DeleteMessage removes a message
func (n *NATS) DeleteMessage(ctx context.Context, ref MessageRef) error {
	return n.publish(ChannelSubject(ref.Location), Envelope{
		Type:      EnvelopeDelete,
		MessageID: ref.ID,
		Location:  &ref.Location,
	})
}

func (n *NATS) publish(subject string, env Envelope) error {
	env.Time = n.now()
	data, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "could not marshal envelope")
	}

	return errors.Wrapf(n.conn.Publish(subject, data), "could not publish to %s", subject)
}
