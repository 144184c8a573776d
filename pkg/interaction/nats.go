package interaction

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/nats-io/nats.go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const inboundTimeout = time.Second * 10

// inbound types
const (
	InboundPress   = "press"
	InboundCommand = "command"
)

// Inbound is what the chat bridge publishes on messenger.SubjectInteractions
type Inbound struct {
	Type    string   `json:"type"`
	Press   *Press   `json:"press,omitempty"`
	Command *Command `json:"command,omitempty"`
}

// HandleNATS handles a message from the chat bridge
// Command replies are posted to the command's channel.
func (d *Dispatcher) HandleNATS(msg *nats.Msg) {
	var in Inbound
	if err := json.Unmarshal(msg.Data, &in); err != nil {
		d.logger.WithError(err).WithField("subject", msg.Subject).Warn("could not decode inbound message")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), inboundTimeout)
	defer cancel()

	switch {
	case in.Type == InboundPress && in.Press != nil:
		// rejections are reported to the player by Press
		_ = d.Press(ctx, *in.Press)
	case in.Type == InboundCommand && in.Command != nil:
		reply, err := d.HandleCommand(ctx, *in.Command)
		if err != nil {
			reply = "❌ " + UserMessage(err)
		}

		if _, err := d.messenger.NotifyChannel(ctx, in.Command.Location, reply, nil); err != nil {
			d.logger.WithError(err).WithField("location", in.Command.Location.String()).Warn("could not reply to command")
		}
	default:
		d.logger.WithField("type", in.Type).Warn("unknown inbound message")
	}
}
