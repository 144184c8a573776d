package main

import (
	"context"
	"strings"

	"lieng-server/pkg/messenger"

	"github.com/pterm/pterm"
)

// terminal prints every message as it is sent and keeps the record for later
type terminal struct {
	*messenger.Recorder
}

func (t terminal) NotifyChannel(ctx context.Context, loc messenger.Location, text string, buttons []messenger.Button) (messenger.MessageRef, error) {
	ref, err := t.Recorder.NotifyChannel(ctx, loc, text, buttons)
	if err != nil {
		return ref, err
	}

	pterm.DefaultBox.WithTitle(pterm.LightYellow("|" + loc.String() + "|")).Println(text + buttonRow(buttons))
	return ref, nil
}

func (t terminal) NotifyPlayer(ctx context.Context, playerID string, text string) error {
	if err := t.Recorder.NotifyPlayer(ctx, playerID, text); err != nil {
		return err
	}

	pterm.Info.Printfln("@%s %s", playerID, strings.ReplaceAll(text, "\n", " "))
	return nil
}

func (t terminal) UpdateMessage(ctx context.Context, ref messenger.MessageRef, text string, buttons []messenger.Button) error {
	if err := t.Recorder.UpdateMessage(ctx, ref, text, buttons); err != nil {
		return err
	}

	pterm.Debug.Printfln("%s edited: %s", ref.ID, strings.ReplaceAll(text, "\n", " "))
	return nil
}

func buttonRow(buttons []messenger.Button) string {
	if len(buttons) == 0 {
		return ""
	}

	labels := make([]string, len(buttons))
	for i, b := range buttons {
		labels[i] = "[" + b.Label + "]"
	}

	return "\n" + strings.Join(labels, " ")
}
