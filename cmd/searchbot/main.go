package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/akozyrev/article-pricer/internal/config"
	"github.com/akozyrev/article-pricer/internal/infrastructure/sheet"
	"github.com/akozyrev/article-pricer/internal/infrastructure/telegram"
	"github.com/akozyrev/article-pricer/internal/observability/logging"
)

// searchbot answers single-article lookups from a static xlsx price base.
// It shares nothing with the reconciliation pipeline beyond the telegram
// transport.
func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("searchbot", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	base, err := sheet.Load(cfg.PriceBasePath)
	if err != nil {
		log.Fatalf("load price base: %v", err)
	}
	logger.Info("price base loaded", "path", cfg.PriceBasePath, "rows", base.Len())

	client := telegram.NewClient(cfg.SearchBotToken)
	listener := telegram.NewListener(client, 0, logger)

	err = listener.Run(ctx, func(msg telegram.Message) {
		hits := base.Search(msg.Text)
		if len(hits) == 0 {
			reply(ctx, client, logger, msg, "Артикул не найден")
			return
		}
		for _, item := range hits {
			reply(ctx, client, logger, msg, item.Format())
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("searchbot listener error: %v", err)
	}
}

func reply(ctx context.Context, client *telegram.Client, logger *slog.Logger, msg telegram.Message, text string) {
	err := client.SendMessage(ctx, telegram.OutgoingMessage{ChatID: msg.Chat.ID, Text: text})
	if err != nil {
		logger.Error("send reply failed", "chat_id", msg.Chat.ID, "error", err)
	}
}
