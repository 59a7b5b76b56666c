// Package apierr maps provider HTTP failures onto domain errors so that
// services can tell a rate limit from an outage without knowing which
// provider they talk to.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

// maxBodyInError bounds how much of a response body is echoed in errors.
const maxBodyInError = 512

// FromResponse converts a non-2xx response into an error.
// 429 becomes a *domain.RateLimitError carrying the Retry-After hint;
// anything else wraps unavailable.
func FromResponse(provider string, resp *http.Response, body []byte, unavailable error) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return &domain.RateLimitError{
			Provider:   provider,
			RetryAfter: RetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}
	return fmt.Errorf("%w: %s returned status %d: %s", unavailable, provider, resp.StatusCode, snippet(body))
}

// FromMessage wraps a provider error message that arrived with a 2xx status
// or inside an otherwise decodable error body.
func FromMessage(provider, message string, unavailable error) error {
	return fmt.Errorf("%w: %s: %s", unavailable, provider, message)
}

// FromTransport wraps a failure to reach the provider. Context cancellation
// is preserved so callers can still match context.Canceled.
func FromTransport(provider string, err error, unavailable error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", provider, err)
	}
	return fmt.Errorf("%w: %s: %v", unavailable, provider, err)
}

// RetryAfter parses a Retry-After header given in seconds or as an HTTP date.
// Unparseable or past values yield zero.
func RetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d.Round(time.Second)
		}
	}
	return 0
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxBodyInError {
		return s[:maxBodyInError] + "..."
	}
	return s
}
