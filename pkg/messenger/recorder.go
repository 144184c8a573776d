package messenger

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Message is a message captured by Recorder
type Message struct {
	Ref      MessageRef
	PlayerID string
	Text     string
	Buttons  []Button
	Deleted  bool
	Edits    int
}

// Recorder keeps every message in memory, used by tests and the simulator
// Setting Err makes every call fail after recording nothing.
type Recorder struct {
	mu       sync.Mutex
	seq      int
	channel  []*Message
	direct   []*Message
	byID     map[string]*Message
	Err      error
	OnChange func(m *Message)
}

// NewRecorder returns an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{byID: make(map[string]*Message)}
}

// NotifyChannel records a channel message
func (r *Recorder) NotifyChannel(ctx context.Context, loc Location, text string, buttons []Button) (MessageRef, error) {
	r.mu.Lock()
	if r.Err != nil {
		r.mu.Unlock()
		return MessageRef{}, r.Err
	}

	r.seq++
	m := &Message{
		Ref:     MessageRef{ID: fmt.Sprintf("msg-%d", r.seq), Location: loc},
		Text:    text,
		Buttons: buttons,
	}
	r.channel = append(r.channel, m)
	r.byID[m.Ref.ID] = m
	r.mu.Unlock()

	r.changed(m)
	return m.Ref, nil
}

// NotifyPlayer records a direct message
func (r *Recorder) NotifyPlayer(ctx context.Context, playerID string, text string) error {
	r.mu.Lock()
	if r.Err != nil {
		r.mu.Unlock()
		return r.Err
	}

	m := &Message{PlayerID: playerID, Text: text}
	r.direct = append(r.direct, m)
	r.mu.Unlock()

	r.changed(m)
	return nil
}

// UpdateMessage records an edit
func (r *Recorder) UpdateMessage(ctx context.Context, ref MessageRef, text string, buttons []Button) error {
	r.mu.Lock()
	if r.Err != nil {
		r.mu.Unlock()
		return r.Err
	}

	m, ok := r.byID[ref.ID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("unknown message %s", ref.ID)
	}

	m.Text = text
	m.Buttons = buttons
	m.Edits++
	r.mu.Unlock()

	r.changed(m)
	return nil
}

// DeleteMessage records a removal
func (r *Recorder) DeleteMessage(ctx context.Context, ref MessageRef) error {
	r.mu.Lock()
	if r.Err != nil {
		r.mu.Unlock()
		return r.Err
	}

	m, ok := r.byID[ref.ID]
	if ok {
		m.Deleted = true
	}
	r.mu.Unlock()

	if ok {
		r.changed(m)
	}

	return nil
}

func (r *Recorder) changed(m *Message) {
	if r.OnChange != nil {
		r.OnChange(m)
	}
}

// SetErr makes every following call fail with err
func (r *Recorder) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Err = err
}

// ChannelMessages returns copies of the channel messages in the order they were sent
func (r *Recorder) ChannelMessages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := make([]Message, len(r.channel))
	for i, m := range r.channel {
		msgs[i] = *m
	}

	return msgs
}

// DirectMessages returns copies of the direct messages sent to the player
func (r *Recorder) DirectMessages(playerID string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := make([]Message, 0)
	for _, m := range r.direct {
		if m.PlayerID == playerID {
			msgs = append(msgs, *m)
		}
	}

	return msgs
}

// FindChannelMessage returns the most recent channel message containing substr
func (r *Recorder) FindChannelMessage(substr string) (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.channel) - 1; i >= 0; i-- {
		if strings.Contains(r.channel[i].Text, substr) {
			return *r.channel[i], true
		}
	}

	return Message{}, false
}
