package notify

import (
	"context"

	"carpool/internal/logger"
)

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	Log logger.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	s.Log.Info("notification",
		"message_id", msg.ID,
		"recipient_id", msg.RecipientID,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
