package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/akozyrev/article-pricer/internal/config"
	"github.com/akozyrev/article-pricer/internal/core/domain"
	natsqueue "github.com/akozyrev/article-pricer/internal/infrastructure/queue/nats"
	"github.com/akozyrev/article-pricer/internal/infrastructure/resilience"
	"github.com/akozyrev/article-pricer/internal/infrastructure/telegram"
	"github.com/akozyrev/article-pricer/internal/observability/logging"
)

// intake watches the source chat for purchase requests and hands the raw
// text to the pricer over NATS. It does no parsing of its own.
func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("intake", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, cfg.NATSQueueGroup, natsqueue.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		log.Fatalf("init request queue: %v", err)
	}
	defer queue.Close()

	client := telegram.NewClient(cfg.BotToken)
	listener := telegram.NewListener(client, cfg.SourceChatID, logger)

	logger.Info("intake started", "source_chat", cfg.SourceChatID)
	err = listener.Run(ctx, func(msg telegram.Message) {
		req := domain.SourceRequest{
			ID:         uuid.NewString(),
			Text:       msg.Text,
			ChatID:     msg.Chat.ID,
			MessageID:  msg.MessageID,
			ReceivedAt: time.Unix(msg.Date, 0).UTC(),
		}

		publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := queue.PublishRequest(publishCtx, req); err != nil {
			logger.Error("publish request failed", "request_id", req.ID, "error", err)
			return
		}
		logger.Info("request published", "request_id", req.ID, "message_id", msg.MessageID)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("intake listener error: %v", err)
	}
}
