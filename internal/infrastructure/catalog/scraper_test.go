package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const productPage = `<html><body>
<div class="product-card">
  <div class="product-card__title">Фильтр 11Y-60-28712</div>
  <div class="product-card__price">1 250,50 руб.</div>
  <div class="product-card__stock">В наличии: 7 шт</div>
</div>
</body></html>`

func testSource(baseURL string) SourceConfig {
	return SourceConfig{
		Name:          "test",
		SearchURL:     baseURL + "/search?q={article}",
		ItemSelector:  ".product-card",
		NameSelector:  ".product-card__title",
		PriceSelector: ".product-card__price",
		StockSelector: ".product-card__stock",
	}
}

func TestLookupParsesProductCard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "11Y-60-28712" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		fmt.Fprint(w, productPage)
	}))
	defer server.Close()

	scraper := NewScraper(server.Client(), []SourceConfig{testSource(server.URL)}, nil)
	info, err := scraper.Lookup(context.Background(), "11Y-60-28712")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info == nil {
		t.Fatalf("expected a price info")
	}
	if info.Name != "Фильтр 11Y-60-28712" {
		t.Fatalf("unexpected name %q", info.Name)
	}
	if info.UnitPrice != 1250.50 {
		t.Fatalf("unexpected price %v", info.UnitPrice)
	}
	if info.Stock == nil || *info.Stock != 7 {
		t.Fatalf("unexpected stock %v", info.Stock)
	}
}

func TestLookupMissReturnsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body><p>ничего не найдено</p></body></html>")
	}))
	defer server.Close()

	scraper := NewScraper(server.Client(), []SourceConfig{testSource(server.URL)}, nil)
	info, err := scraper.Lookup(context.Background(), "NOPE-1")
	if err != nil {
		t.Fatalf("a miss is not an error: %v", err)
	}
	if info != nil {
		t.Fatalf("expected nil for a miss, got %+v", info)
	}
}

func TestLookupFallsThroughToNextSource(t *testing.T) {
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body></body></html>")
	}))
	defer empty.Close()
	full := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, productPage)
	}))
	defer full.Close()

	scraper := NewScraper(nil, []SourceConfig{testSource(empty.URL), testSource(full.URL)}, nil)
	info, err := scraper.Lookup(context.Background(), "11Y-60-28712")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info == nil || info.UnitPrice != 1250.50 {
		t.Fatalf("expected the second source to answer, got %+v", info)
	}
}

func TestLookupAllSourcesFailing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "ошибка", http.StatusInternalServerError)
	}))
	defer server.Close()

	scraper := NewScraper(nil, []SourceConfig{testSource(server.URL)}, nil)
	if _, err := scraper.Lookup(context.Background(), "AAA-1"); err == nil {
		t.Fatalf("expected an error when every source failed")
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1 250,50 руб.", 1250.50, true},
		{"99.90", 99.90, true},
		{"от 15 000 ₽", 15000, true},
		{"нет цены", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parsePrice(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("parsePrice(%q) = %v,%v; want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
