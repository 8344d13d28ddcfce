package usecase

import (
	"sync"

	"github.com/akozyrev/article-pricer/internal/core/domain"
)

// RequestFIFO holds inbound requests awaiting the single-flight engine.
// Unbounded, no deduplication: a request appearing twice is processed twice.
type RequestFIFO struct {
	mu    sync.Mutex
	items []domain.SourceRequest
}

func NewRequestFIFO() *RequestFIFO {
	return &RequestFIFO{}
}

func (q *RequestFIFO) Enqueue(req domain.SourceRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, req)
}

// Dequeue removes and returns the head, or ok=false when the queue is empty.
func (q *RequestFIFO) Dequeue() (domain.SourceRequest, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return domain.SourceRequest{}, false
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true
}

func (q *RequestFIFO) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
