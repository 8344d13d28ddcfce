package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akozyrev/article-pricer/internal/core/domain"
	"github.com/akozyrev/article-pricer/internal/core/ports"
)

// Recorder receives pipeline observations. Implemented by the prometheus
// metrics package; a nil Recorder disables recording.
type Recorder interface {
	JobFinished(outcome string, duration time.Duration)
	ItemResolved(outcome string)
	ObserveQueueDepth(depth int)
	ObserveReplyLag(lag time.Duration)
}

type EngineConfig struct {
	OracleTimeout   time.Duration
	SweepInterval   time.Duration
	DiscountPercent float64
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		OracleTimeout:   30 * time.Second,
		SweepInterval:   5 * time.Second,
		DiscountPercent: 3,
	}
}

func (c EngineConfig) normalize() EngineConfig {
	out := c
	def := DefaultEngineConfig()
	if out.OracleTimeout <= 0 {
		out.OracleTimeout = def.OracleTimeout
	}
	if out.SweepInterval <= 0 {
		out.SweepInterval = def.SweepInterval
	}
	if out.DiscountPercent < 0 || out.DiscountPercent >= 100 {
		out.DiscountPercent = def.DiscountPercent
	}
	return out
}

// Engine is the reconciliation state machine. It processes one job at a
// time: the oracle protocol carries no request identifier, so reply
// correlation is by substring match against the in-flight job's articles;
// overlapping article sets from concurrent jobs would make that ambiguous.
// Serializing removes the ambiguity at the cost of throughput.
type Engine struct {
	cfg       EngineConfig
	extractor ports.LineItemExtractor
	oracle    ports.PriceOracle
	catalog   ports.CatalogScraper
	sink      ports.ReportSink
	log       *slog.Logger
	metrics   Recorder

	now func() time.Time

	mu      sync.Mutex
	queue   *RequestFIFO
	current *domain.Job
	// pending indexes article -> line item for the in-flight job while the
	// oracle has not answered; cleared atomically on finalize.
	pending map[string]*domain.LineItem

	wake chan struct{}
}

func NewEngine(
	cfg EngineConfig,
	extractor ports.LineItemExtractor,
	oracle ports.PriceOracle,
	catalog ports.CatalogScraper,
	sink ports.ReportSink,
	logger *slog.Logger,
	metrics Recorder,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:       cfg.normalize(),
		extractor: extractor,
		oracle:    oracle,
		catalog:   catalog,
		sink:      sink,
		log:       logger,
		metrics:   metrics,
		now:       time.Now,
		queue:     NewRequestFIFO(),
		pending:   make(map[string]*domain.LineItem),
		wake:      make(chan struct{}, 1),
	}
}

// Enqueue appends an inbound request. Never rejects.
func (e *Engine) Enqueue(req domain.SourceRequest) {
	e.queue.Enqueue(req)
	if e.metrics != nil {
		e.metrics.ObserveQueueDepth(e.queue.Len())
	}
	e.log.Info("request enqueued", "request_id", req.ID, "queue_depth", e.queue.Len())
	e.signal()
}

// Run drives the queue-draining loop and the periodic timeout sweep until
// the context is cancelled. Oracle replies arrive concurrently through
// HandleOracleReply.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.SweepInterval)
	defer ticker.Stop()

	e.log.Info("engine started",
		"oracle_timeout", e.cfg.OracleTimeout.String(),
		"sweep_interval", e.cfg.SweepInterval.String(),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.wake:
		case <-ticker.C:
			e.Sweep()
		}
		e.step(ctx)
	}
}

// HandleOracleReply correlates an unsolicited oracle reply with a pending
// line item of the in-flight job. Replies that match nothing (late answers,
// chatter on the shared channel) are logged and discarded.
func (e *Engine) HandleOracleReply(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	job := e.current
	if job == nil || job.State != domain.StateAwaitingOracle {
		e.log.Debug("oracle reply with no job awaiting", "reply_len", len(text))
		return
	}

	// First unprocessed match in line-item order wins. When one article is a
	// substring of another the earlier item takes the reply; accepted
	// ambiguity, the protocol has nothing better to correlate on.
	for _, item := range job.Items {
		if item.OracleDone {
			continue
		}
		if _, waiting := e.pending[item.Article]; !waiting {
			continue
		}
		if !strings.Contains(text, item.Article) {
			continue
		}

		item.OracleDone = true
		delete(e.pending, item.Article)
		if e.metrics != nil {
			e.metrics.ObserveReplyLag(e.now().Sub(item.SentAt))
		}

		info, found := ParseOracleReply(text)
		if found {
			item.Oracle = &info
			item.Status = domain.ItemPricedByOracle
			if e.metrics != nil {
				e.metrics.ItemResolved("oracle")
			}
			e.log.Info("item priced by oracle",
				"job_id", job.ID, "article", item.Article, "unit_price", info.UnitPrice)
		} else {
			e.log.Info("oracle answered not found", "job_id", job.ID, "article", item.Article)
		}

		e.maybeAdvanceLocked(job)
		return
	}

	e.log.Warn("oracle reply matched no pending item", "job_id", job.ID, "reply_len", len(text))
}

// Sweep forces a "not found" outcome on every pending query older than the
// oracle timeout. Runs on a fixed interval, in-flight job only.
func (e *Engine) Sweep() {
	e.mu.Lock()
	defer e.mu.Unlock()

	job := e.current
	if job == nil || job.State != domain.StateAwaitingOracle {
		return
	}

	now := e.now()
	for _, item := range job.Items {
		if item.OracleDone {
			continue
		}
		if now.Sub(item.SentAt) < e.cfg.OracleTimeout {
			continue
		}
		item.OracleDone = true
		delete(e.pending, item.Article)
		e.log.Warn("oracle query timed out", "job_id", job.ID, "article", item.Article)
	}

	e.maybeAdvanceLocked(job)
}

// step claims queued requests while the engine is idle and runs the catalog
// pass once the oracle stage is complete. Called from the Run goroutine only.
func (e *Engine) step(ctx context.Context) {
	for {
		if job := e.takeAwaitingCatalog(); job != nil {
			e.runCatalogPass(ctx, job)
			e.finalize(ctx, job)
			continue
		}

		req, ok := e.claimNext()
		if !ok {
			return
		}
		e.process(ctx, req)

		e.mu.Lock()
		inFlight := e.current != nil && e.current.State == domain.StateAwaitingOracle
		e.mu.Unlock()
		if inFlight {
			return
		}
	}
}

// claimNext re-checks the single-flight invariant before dequeuing: a second
// job must never be claimed while one is active.
func (e *Engine) claimNext() (domain.SourceRequest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current != nil {
		return domain.SourceRequest{}, false
	}
	req, ok := e.queue.Dequeue()
	if !ok {
		return domain.SourceRequest{}, false
	}

	e.current = &domain.Job{
		ID:        uuid.NewString(),
		Request:   req,
		State:     domain.StateExtracting,
		CreatedAt: e.now(),
	}
	if e.metrics != nil {
		e.metrics.ObserveQueueDepth(e.queue.Len())
	}
	return req, true
}

func (e *Engine) process(ctx context.Context, req domain.SourceRequest) {
	e.mu.Lock()
	job := e.current
	e.mu.Unlock()

	items, err := e.extractor.Extract(ctx, req.Text)
	if err != nil {
		e.log.Error("extraction failed, dropping job", "job_id", job.ID, "request_id", req.ID, "error", err)
		e.drop(job)
		return
	}
	if len(items) == 0 {
		e.log.Info("no line items extracted, dropping job", "job_id", job.ID, "request_id", req.ID)
		e.drop(job)
		return
	}

	e.mu.Lock()
	for _, it := range items {
		line := &domain.LineItem{
			Article:  it.Article,
			Quantity: it.Quantity,
			Status:   domain.ItemPending,
		}
		job.Items = append(job.Items, line)
	}
	job.State = domain.StateAwaitingOracle
	e.mu.Unlock()

	// Fan-out of independent one-way sends. A send failure is not fatal to
	// the job: the item stays pending and the sweep resolves it as not found.
	for _, item := range job.Items {
		sentAt := e.now()
		if err := e.oracle.Send(ctx, item.Article); err != nil {
			e.log.Warn("oracle send failed", "job_id", job.ID, "article", item.Article, "error", err)
		}
		e.mu.Lock()
		item.SentAt = sentAt
		if _, exists := e.pending[item.Article]; !exists {
			e.pending[item.Article] = item
		}
		e.mu.Unlock()
	}

	e.log.Info("oracle queries sent", "job_id", job.ID, "items", len(job.Items))
}

func (e *Engine) takeAwaitingCatalog() *domain.Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != nil && e.current.State == domain.StateAwaitingCatalog {
		return e.current
	}
	return nil
}

// runCatalogPass queries the scraper for every item still unpriced, in
// extraction order, one article at a time. A scrape failure leaves that item
// unresolved and never blocks the rest of the pass.
func (e *Engine) runCatalogPass(ctx context.Context, job *domain.Job) {
	for _, item := range job.Items {
		if item.Priced() {
			continue
		}

		info, err := e.catalog.Lookup(ctx, item.Article)
		switch {
		case err != nil:
			e.log.Warn("catalog lookup failed", "job_id", job.ID, "article", item.Article, "error", err)
			item.Status = domain.ItemUnresolved
		case info == nil:
			item.Status = domain.ItemUnresolved
		default:
			item.Catalog = info
			item.Status = domain.ItemPricedByCatalog
			e.log.Info("item priced by catalog",
				"job_id", job.ID, "article", item.Article, "unit_price", info.UnitPrice)
		}

		if e.metrics != nil {
			if item.Status == domain.ItemPricedByCatalog {
				e.metrics.ItemResolved("catalog")
			} else {
				e.metrics.ItemResolved("unresolved")
			}
		}
	}
}

// finalize emits the report at most once and releases the single-flight
// slot. Idempotent: a second call on the same job is a no-op.
func (e *Engine) finalize(ctx context.Context, job *domain.Job) {
	e.mu.Lock()
	if job.State == domain.StateFinalized {
		e.mu.Unlock()
		return
	}
	job.State = domain.StateFinalized
	e.pending = make(map[string]*domain.LineItem)
	if e.current == job {
		e.current = nil
	}
	e.mu.Unlock()

	outcome := "priced"
	report, ok := BuildReport(job, e.cfg.DiscountPercent)
	if !ok {
		outcome = "empty"
		e.log.Info("no item priced, skipping report", "job_id", job.ID)
	} else if err := e.sink.Deliver(ctx, report, job.Request); err != nil {
		// Fire and forget: delivery failure is logged, never retried.
		e.log.Error("report delivery failed", "job_id", job.ID, "error", err)
	} else {
		e.log.Info("report delivered", "job_id", job.ID, "items", len(job.Items), "priced", job.PricedCount())
	}

	if e.metrics != nil {
		e.metrics.JobFinished(outcome, e.now().Sub(job.CreatedAt))
	}
	e.signal()
}

func (e *Engine) drop(job *domain.Job) {
	e.mu.Lock()
	job.State = domain.StateFinalized
	if e.current == job {
		e.current = nil
	}
	e.mu.Unlock()
	if e.metrics != nil {
		e.metrics.JobFinished("dropped", e.now().Sub(job.CreatedAt))
	}
}

// maybeAdvanceLocked fires the oracle -> catalog transition exactly once per
// job, triggered by whichever of {last reply, sweep} happens first.
func (e *Engine) maybeAdvanceLocked(job *domain.Job) {
	if job.State != domain.StateAwaitingOracle {
		return
	}
	if job.PendingOracleCount() > 0 {
		return
	}
	job.State = domain.StateAwaitingCatalog
	e.signal()
}

func (e *Engine) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}
