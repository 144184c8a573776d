package messenger

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Log writes every message to a logger instead of a chat platform
type Log struct {
	logger logrus.FieldLogger
}

// NewLog returns a messenger that logs
func NewLog(logger logrus.FieldLogger) *Log {
	return &Log{logger: logger}
}

// NotifyChannel logs a channel message
func (l *Log) NotifyChannel(ctx context.Context, loc Location, text string, buttons []Button) (MessageRef, error) {
	ref := MessageRef{ID: uuid.New().String(), Location: loc}
	l.logger.WithFields(logrus.Fields{
		"location": loc.String(),
		"message":  ref.ID,
		"buttons":  len(buttons),
	}).Info(text)

	return ref, nil
}

// NotifyPlayer logs a direct message
func (l *Log) NotifyPlayer(ctx context.Context, playerID string, text string) error {
	l.logger.WithField("player", playerID).Info(text)
	return nil
}

// UpdateMessage logs a message edit
func (l *Log) UpdateMessage(ctx context.Context, ref MessageRef, text string, buttons []Button) error {
	l.logger.WithFields(logrus.Fields{
		"location": ref.Location.String(),
		"message":  ref.ID,
		"buttons":  len(buttons),
	}).Info("(edited) " + text)

	return nil
}

// DeleteMessage logs a message removal
func (l *Log) DeleteMessage(ctx context.Context, ref MessageRef) error {
	l.logger.WithFields(logrus.Fields{
		"location": ref.Location.String(),
		"message":  ref.ID,
	}).Info("message deleted")

	return nil
}
