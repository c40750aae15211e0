package github

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func resolveHTTPClient(client *http.Client, timeout time.Duration) httpDoer {
	if client != nil {
		return client
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = defaultGraphQLURL
	}
	return strings.TrimSuffix(raw, "/")
}

// retryAfter reads Retry-After (seconds) or, failing that, X-RateLimit-Reset (unix seconds).
func retryAfter(h http.Header, now time.Time) time.Duration {
	if raw := strings.TrimSpace(h.Get(headerRetryAfter)); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if raw := strings.TrimSpace(h.Get(headerRateReset)); raw != "" {
		if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
			if d := time.Unix(unix, 0).Sub(now); d > 0 {
				return d
			}
		}
	}
	return 0
}

// isRateLimited reports whether a 403 is GitHub's primary or secondary rate limit rather than a permission error.
func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if resp.StatusCode != http.StatusForbidden {
		return false
	}
	return resp.Header.Get(headerRateRemaining) == "0" || resp.Header.Get(headerRetryAfter) != ""
}
