package telegram

import (
	"context"
	"log/slog"
	"time"
)

// Listener drains the bot's update stream and hands each text message to a
// handler. chatID restricts delivery to one chat; zero accepts every chat
// (the searchbot answers whoever writes to it).
type Listener struct {
	client       *Client
	chatID       int64
	pollTimeout  time.Duration
	errorBackoff time.Duration
	log          *slog.Logger
}

func NewListener(client *Client, chatID int64, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		client:       client,
		chatID:       chatID,
		pollTimeout:  25 * time.Second,
		errorBackoff: 5 * time.Second,
		log:          logger,
	}
}

// Run polls until the context is cancelled. Poll errors are logged and
// retried after a short backoff; the listener never gives up.
func (l *Listener) Run(ctx context.Context, handle func(Message)) error {
	var offset int64

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		updates, err := l.client.GetUpdates(ctx, offset, l.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.log.Warn("getUpdates failed", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(l.errorBackoff):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			msg := update.Post()
			if msg == nil || msg.Text == "" {
				continue
			}
			if l.chatID != 0 && msg.Chat.ID != l.chatID {
				continue
			}
			handle(*msg)
		}
	}
}
