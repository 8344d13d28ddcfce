package protalk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akozyrev/article-pricer/internal/core/domain"
	"github.com/akozyrev/article-pricer/internal/infrastructure/resilience"
)

func testExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2,
		BreakerEnabled: false,
	})
}

func TestExtractParsesItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.BotID != 25815 || req.Message == "" {
			t.Errorf("unexpected request payload: %+v", req)
		}
		json.NewEncoder(w).Encode(askResponse{Done: "11Y-60-28712: 3\n708-2H-32210: 2 шт\nгарбидж без разделителя\nAAA-1:"})
	}))
	defer server.Close()

	client := New(server.URL, 25815, "channel_monitor", testExecutor(), nil)
	items, err := client.Extract(context.Background(), "need 3 of 11Y-60-28712 and 2 of 708-2H-32210")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", len(items), items)
	}
	if items[0].Article != "11Y-60-28712" || items[0].Quantity != 3 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Article != "708-2H-32210" || items[1].Quantity != 2 {
		t.Fatalf("unexpected second item: %+v", items[1])
	}
	// Missing quantity defaults to 1.
	if items[2].Article != "AAA-1" || items[2].Quantity != 1 {
		t.Fatalf("unexpected third item: %+v", items[2])
	}
}

func TestExtractPlaceholderAnswerMeansEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(askResponse{Done: "…"})
	}))
	defer server.Close()

	client := New(server.URL, 1, "c", testExecutor(), nil)
	items, err := client.Extract(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("placeholder answer must extract nothing, got %+v", items)
	}
}

func TestExtractRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "upstream busy", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(askResponse{Done: "AAA-1: 2"})
	}))
	defer server.Close()

	client := New(server.URL, 1, "c", testExecutor(), nil)
	items, err := client.Extract(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error after retries: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestExtractExhaustedRetriesAreTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, 1, "c", testExecutor(), nil)
	_, err := client.Extract(context.Background(), "text")
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("exhausted transient failures must surface as temporary, got %v", err)
	}
}

func TestExtractClientErrorIsNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.URL, 1, "c", testExecutor(), nil)
	_, err := client.Extract(context.Background(), "text")
	if err == nil {
		t.Fatalf("expected an error")
	}
	if attempts != 1 {
		t.Fatalf("4xx must not be retried, attempts=%d", attempts)
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("4xx is definitive, not temporary: %v", err)
	}
}
