package usecase

import (
	"testing"

	"github.com/akozyrev/article-pricer/internal/core/domain"
)

func TestRequestFIFOOrder(t *testing.T) {
	q := NewRequestFIFO()

	if _, ok := q.Dequeue(); ok {
		t.Fatalf("empty queue must report empty")
	}

	q.Enqueue(domain.SourceRequest{ID: "a"})
	q.Enqueue(domain.SourceRequest{ID: "b"})
	q.Enqueue(domain.SourceRequest{ID: "c"})

	for _, want := range []string{"a", "b", "c"} {
		req, ok := q.Dequeue()
		if !ok || req.ID != want {
			t.Fatalf("expected %s, got %s (ok=%v)", want, req.ID, ok)
		}
	}
	if q.Len() != 0 {
		t.Fatalf("queue must be drained, len=%d", q.Len())
	}
}

func TestRequestFIFOKeepsDuplicates(t *testing.T) {
	q := NewRequestFIFO()
	q.Enqueue(domain.SourceRequest{ID: "dup"})
	q.Enqueue(domain.SourceRequest{ID: "dup"})

	if q.Len() != 2 {
		t.Fatalf("no deduplication expected, len=%d", q.Len())
	}
}
