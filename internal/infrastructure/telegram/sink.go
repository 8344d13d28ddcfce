package telegram

import (
	"context"
	"fmt"

	"github.com/akozyrev/article-pricer/internal/core/domain"
	"github.com/akozyrev/article-pricer/internal/core/ports"
)

// ReportNotifier delivers the consolidated quote to the recipient chat.
// Delivery is fire and forget: the engine logs a failure and never retries.
type ReportNotifier struct {
	client *Client
	chatID int64
}

var _ ports.ReportSink = (*ReportNotifier)(nil)

func NewReportNotifier(client *Client, chatID int64) *ReportNotifier {
	return &ReportNotifier{client: client, chatID: chatID}
}

func (n *ReportNotifier) Deliver(ctx context.Context, report string, ref domain.SourceRequest) error {
	msg := OutgoingMessage{
		ChatID:         n.chatID,
		Text:           report,
		Markdown:       true,
		DisablePreview: true,
	}
	// Replying to the source message only works inside the same chat.
	if ref.ChatID == n.chatID {
		msg.ReplyTo = ref.MessageID
	}

	if err := n.client.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("deliver report: %w", err)
	}
	return nil
}
