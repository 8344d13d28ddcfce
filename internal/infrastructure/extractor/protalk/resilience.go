package protalk

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

type HTTPStatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "protalk status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("protalk status: %s", e.Status)
	}
	return fmt.Sprintf("protalk status: %s: %s", e.Status, e.Body)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// http.Client wraps transport errors in *url.Error; treat anything that
	// never reached the server as transient.
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "EOF")
}
