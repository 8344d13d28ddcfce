package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/akozyrev/article-pricer/internal/core/domain"
	"github.com/akozyrev/article-pricer/internal/core/ports"
)

var (
	priceExpr = regexp.MustCompile(`\d[\d\s]*(?:[.,]\d+)?`)
	stockExpr = regexp.MustCompile(`\d+`)
)

// Scraper prices an article from configured catalog pages. Sources are tried
// in order; the first one that yields a price wins. Single attempt per call,
// the engine decides what a miss means.
type Scraper struct {
	client  *http.Client
	sources []SourceConfig
	log     *slog.Logger
}

var _ ports.CatalogScraper = (*Scraper)(nil)

func NewScraper(client *http.Client, sources []SourceConfig, logger *slog.Logger) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{client: client, sources: sources, log: logger}
}

// Lookup returns nil, nil when no source carries the article. An error is
// returned only when every source failed to respond.
func (s *Scraper) Lookup(ctx context.Context, article string) (*domain.PriceInfo, error) {
	var lastErr error
	failed := 0

	for _, src := range s.sources {
		info, err := s.lookupSource(ctx, src, article)
		if err != nil {
			s.log.Warn("catalog source failed", "source", src.Name, "article", article, "error", err)
			lastErr = err
			failed++
			continue
		}
		if info != nil {
			return info, nil
		}
	}

	if failed > 0 && failed == len(s.sources) {
		return nil, lastErr
	}
	return nil, nil
}

func (s *Scraper) lookupSource(ctx context.Context, src SourceConfig, article string) (*domain.PriceInfo, error) {
	pageURL := strings.ReplaceAll(src.SearchURL, "{article}", url.QueryEscape(article))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "article-pricer/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request catalog page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse catalog page: %w", err)
	}

	item := doc.Find(src.ItemSelector).First()
	if item.Length() == 0 {
		return nil, nil
	}

	price, ok := parsePrice(item.Find(src.PriceSelector).First().Text())
	if !ok {
		return nil, nil
	}

	info := &domain.PriceInfo{UnitPrice: price}
	if src.NameSelector != "" {
		info.Name = strings.TrimSpace(item.Find(src.NameSelector).First().Text())
	}
	if src.StockSelector != "" {
		if stock, ok := parseStock(item.Find(src.StockSelector).First().Text()); ok {
			info.Stock = &stock
		}
	}
	return info, nil
}

// parsePrice pulls the first numeric token out of a price cell, tolerating
// thousands spaces, comma decimals and currency suffixes.
func parsePrice(text string) (float64, bool) {
	match := priceExpr.FindString(text)
	if match == "" {
		return 0, false
	}
	match = strings.ReplaceAll(match, " ", "")
	match = strings.ReplaceAll(match, " ", "")
	match = strings.ReplaceAll(match, ",", ".")

	price, err := strconv.ParseFloat(match, 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}

func parseStock(text string) (int, bool) {
	match := stockExpr.FindString(text)
	if match == "" {
		return 0, false
	}
	stock, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return stock, true
}
