package ports

import (
	"context"

	"github.com/akozyrev/article-pricer/internal/core/domain"
)

// ExtractedItem is one (article, quantity) pair returned by the extractor.
type ExtractedItem struct {
	Article  string
	Quantity float64
}

// LineItemExtractor turns free-form request text into structured line items.
// A transient failure is reported as domain.ErrTemporary; a definitive-empty
// result is a nil slice with no error.
type LineItemExtractor interface {
	Extract(ctx context.Context, text string) ([]ExtractedItem, error)
}

// PriceOracle sends an article to the external chat-based responder.
// Fire-and-forget: replies arrive later on a shared stream and are fed to the
// engine by the transport, not returned here.
type PriceOracle interface {
	Send(ctx context.Context, article string) error
}

// CatalogScraper prices an article from a product page, synchronously.
// A nil result with nil error means the article was not found.
type CatalogScraper interface {
	Lookup(ctx context.Context, article string) (*domain.PriceInfo, error)
}

// ReportSink delivers the formatted quote back to its destination, replying
// to the originating request message.
type ReportSink interface {
	Deliver(ctx context.Context, report string, ref domain.SourceRequest) error
}

// RequestQueue publishes/consumes inbound source requests between the intake
// monitor and the pricer.
type RequestQueue interface {
	PublishRequest(ctx context.Context, req domain.SourceRequest) error
	SubscribeRequests(ctx context.Context, handler func(context.Context, domain.SourceRequest) error) error
}
