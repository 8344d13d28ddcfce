package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akozyrev/article-pricer/internal/bootstrap"
	"github.com/akozyrev/article-pricer/internal/config"
	"github.com/akozyrev/article-pricer/internal/core/domain"
	"github.com/akozyrev/article-pricer/internal/infrastructure/telegram"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", app.Metrics.Handler())
		server := &http.Server{
			Addr:              ":" + cfg.MetricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Log.Error("metrics server stopped", "error", err)
		}
	}()

	go func() {
		if err := app.Engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			app.Log.Error("engine stopped", "error", err)
		}
	}()

	go func() {
		err := app.Replies.Run(ctx, func(msg telegram.Message) {
			app.Engine.HandleOracleReply(msg.Text)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			app.Log.Error("oracle reply listener stopped", "error", err)
		}
	}()

	app.Log.Info("pricer subscribed", "subject", cfg.NATSSubject, "group", cfg.NATSQueueGroup)
	err = app.Queue.SubscribeRequests(ctx, func(_ context.Context, req domain.SourceRequest) error {
		app.Engine.Enqueue(req)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("request subscription error: %v", err)
	}
}
