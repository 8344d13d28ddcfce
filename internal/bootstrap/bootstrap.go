package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/akozyrev/article-pricer/internal/config"
	"github.com/akozyrev/article-pricer/internal/core/ports"
	"github.com/akozyrev/article-pricer/internal/core/usecase"
	"github.com/akozyrev/article-pricer/internal/infrastructure/catalog"
	"github.com/akozyrev/article-pricer/internal/infrastructure/extractor/protalk"
	natsqueue "github.com/akozyrev/article-pricer/internal/infrastructure/queue/nats"
	"github.com/akozyrev/article-pricer/internal/infrastructure/resilience"
	"github.com/akozyrev/article-pricer/internal/infrastructure/telegram"
	"github.com/akozyrev/article-pricer/internal/observability/logging"
	"github.com/akozyrev/article-pricer/internal/observability/metrics"
)

// App wires the pricer: request transport in, reconciliation engine in the
// middle, telegram out.
type App struct {
	Config  config.Config
	Log     *slog.Logger
	Engine  *usecase.Engine
	Queue   ports.RequestQueue
	Replies *telegram.Listener
	Metrics *metrics.PipelineMetrics

	closeFn func()
}

func New(cfg config.Config) (*App, error) {
	logger := logging.NewJSONLogger("pricer", cfg.LogLevel)
	pipelineMetrics := metrics.NewPipelineMetrics("pricer")

	executor := resilience.NewExecutor(resilience.Config{
		MaxAttempts:    cfg.ExtractMaxAttempts,
		InitialBackoff: cfg.ExtractInitialBackoff,
		MaxBackoff:     cfg.ExtractMaxBackoff,
		Multiplier:     2,
		BreakerEnabled: true,
	})

	extractor := protalk.New(cfg.ExtractorURL, cfg.ExtractorBotID, cfg.ExtractorChatID, executor, logger)

	tg := telegram.NewClient(cfg.BotToken)
	oracle := telegram.NewOracleChannel(tg, cfg.OracleChatID)
	sink := telegram.NewReportNotifier(tg, cfg.ReportChatID)
	replies := telegram.NewListener(tg, cfg.OracleChatID, logger)

	sources, err := catalog.LoadSources(cfg.CatalogSourcesPath)
	if err != nil {
		// The catalog fallback is optional: without sources every oracle
		// miss stays unresolved, but the pipeline keeps working.
		logger.Warn("catalog sources unavailable, fallback disabled", "path", cfg.CatalogSourcesPath, "error", err)
	}
	scraper := catalog.NewScraper(nil, sources, logger)

	engine := usecase.NewEngine(
		usecase.EngineConfig{
			OracleTimeout:   cfg.OracleTimeout,
			SweepInterval:   cfg.SweepInterval,
			DiscountPercent: cfg.DiscountPercent,
		},
		extractor, oracle, scraper, sink, logger, pipelineMetrics,
	)

	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, cfg.NATSQueueGroup, natsqueue.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init request queue: %w", err)
	}

	return &App{
		Config:  cfg,
		Log:     logger,
		Engine:  engine,
		Queue:   queue,
		Replies: replies,
		Metrics: pipelineMetrics,
		closeFn: func() {
			queue.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
