package ports

import "github.com/akozyrev/article-pricer/internal/core/domain"

// RequestProcessor is the inbound contract of the reconciliation engine.
type RequestProcessor interface {
	Enqueue(req domain.SourceRequest)
	HandleOracleReply(text string)
}
