package domain

import "time"

type JobState string

const (
	StateExtracting      JobState = "extracting"
	StateAwaitingOracle  JobState = "awaiting_oracle"
	StateAwaitingCatalog JobState = "awaiting_catalog"
	StateFinalized       JobState = "finalized"
)

type ItemStatus string

const (
	ItemPending         ItemStatus = "pending"
	ItemPricedByOracle  ItemStatus = "priced_by_oracle"
	ItemPricedByCatalog ItemStatus = "priced_by_catalog"
	ItemUnresolved      ItemStatus = "unresolved"
)

// SourceRequest is one inbound message from the request channel. Immutable
// once queued; the message reference is kept so the final quote can link back
// to the originating post.
type SourceRequest struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	ChatID     int64     `json:"chat_id"`
	MessageID  int       `json:"message_id"`
	ReceivedAt time.Time `json:"received_at"`
}

// PriceInfo is one source's answer for an article. Stock is nil when the
// source did not report a warehouse quantity.
type PriceInfo struct {
	Name      string
	UnitPrice float64
	Stock     *int
}

// LineItem is one (article, quantity) pair extracted from a request. It is
// mutated only by the reconciliation engine and lives for the lifetime of its
// parent Job.
type LineItem struct {
	Article  string
	Quantity float64
	Status   ItemStatus

	// OracleDone marks a definitive oracle outcome (priced, explicit "not
	// found" or timeout). Items with OracleDone and no oracle price are
	// eligible for the catalog fallback pass.
	OracleDone bool
	SentAt     time.Time

	Oracle  *PriceInfo
	Catalog *PriceInfo
}

// Priced reports whether either source produced a unit price for the item.
func (li *LineItem) Priced() bool {
	return li.Status == ItemPricedByOracle || li.Status == ItemPricedByCatalog
}

// Job owns a source request and its extracted line items while they move
// through the pipeline. At most one Job is in a non-Finalized state at a time.
type Job struct {
	ID        string
	Request   SourceRequest
	Items     []*LineItem
	State     JobState
	CreatedAt time.Time
}

// PendingOracleCount counts items still waiting for an oracle outcome.
func (j *Job) PendingOracleCount() int {
	n := 0
	for _, item := range j.Items {
		if !item.OracleDone {
			n++
		}
	}
	return n
}

// PricedCount counts items priced by either source.
func (j *Job) PricedCount() int {
	n := 0
	for _, item := range j.Items {
		if item.Priced() {
			n++
		}
	}
	return n
}
