package telegram

import (
	"context"
	"fmt"

	"github.com/akozyrev/article-pricer/internal/core/ports"
)

// OracleChannel posts article queries into the price-bot channel. The reply
// comes back later on the shared updates stream, with no correlation token;
// the engine matches it by content.
type OracleChannel struct {
	client *Client
	chatID int64
}

var _ ports.PriceOracle = (*OracleChannel)(nil)

func NewOracleChannel(client *Client, chatID int64) *OracleChannel {
	return &OracleChannel{client: client, chatID: chatID}
}

func (o *OracleChannel) Send(ctx context.Context, article string) error {
	if err := o.client.SendMessage(ctx, OutgoingMessage{ChatID: o.chatID, Text: article}); err != nil {
		return fmt.Errorf("send article to oracle channel: %w", err)
	}
	return nil
}
