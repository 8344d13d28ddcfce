package protalk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/akozyrev/article-pricer/internal/core/domain"
	"github.com/akozyrev/article-pricer/internal/core/ports"
	"github.com/akozyrev/article-pricer/internal/infrastructure/resilience"
)

// Client calls the pro-talk extraction endpoint: free-form request text in,
// one "article: quantity" line per extracted item out.
type Client struct {
	endpoint   string
	botID      int
	chatID     string
	httpClient *http.Client
	executor   *resilience.Executor
	log        *slog.Logger
}

func New(endpoint string, botID int, chatID string, executor *resilience.Executor, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		botID:      botID,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		executor:   executor,
		log:        logger,
	}
}

var _ ports.LineItemExtractor = (*Client)(nil)

type askRequest struct {
	BotID   int    `json:"bot_id"`
	ChatID  string `json:"chat_id"`
	Message string `json:"message"`
}

type askResponse struct {
	Done string `json:"done"`
}

// Extract sends the raw request text and parses the structured line items
// out of the answer. Transient transport failures are retried by the
// executor; exhaustion surfaces as domain.ErrTemporary so the engine can
// drop the job.
func (c *Client) Extract(ctx context.Context, text string) ([]ports.ExtractedItem, error) {
	var resp askResponse
	call := func(ctx context.Context) error {
		return c.ask(ctx, text, &resp)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Do(ctx, "protalk.ask", isRetryable, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		if isRetryable(err) || resilience.IsCircuitOpen(err) {
			return nil, domain.WrapError(domain.ErrTemporary, "protalk ask", err)
		}
		return nil, err
	}

	return c.parseItems(resp.Done), nil
}

func (c *Client) ask(ctx context.Context, text string, out *askResponse) error {
	body, err := json.Marshal(askRequest{
		BotID:   c.botID,
		ChatID:  c.chatID,
		Message: text,
	})
	if err != nil {
		return fmt.Errorf("marshal ask request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create ask request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("protalk ask request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode ask response: %w", err)
	}
	return nil
}

// parseItems reads one "article: quantity" pair per answer line. A missing
// or unparseable quantity defaults to 1; lines without a separator are
// skipped. The placeholder answers "..." and "…" mean the service extracted
// nothing.
func (c *Client) parseItems(answer string) []ports.ExtractedItem {
	answer = strings.TrimSpace(answer)
	if answer == "" || answer == "..." || answer == "…" {
		return nil
	}

	var items []ports.ExtractedItem
	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, ":") {
			continue
		}

		articlePart, quantityPart, _ := strings.Cut(line, ":")
		article := strings.TrimSpace(articlePart)
		if article == "" {
			c.log.Debug("skipping extraction line without article", "line", line)
			continue
		}

		quantity := 1.0
		fields := strings.Fields(quantityPart)
		if len(fields) > 0 {
			parsed, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", "."), 64)
			if err == nil && parsed > 0 {
				quantity = parsed
			}
		}

		items = append(items, ports.ExtractedItem{Article: article, Quantity: quantity})
	}
	return items
}
