package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
	"github.com/preston-bernstein/contrib-widget-service/internal/providers"
)

// TokenSource supplies the credential attached to each request. An empty token sends no Authorization header.
type TokenSource interface {
	Token() string
}

// Config controls how the GitHub client reaches the GraphQL API.
type Config struct {
	GraphQLURL string
	Tokens     TokenSource
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client fetches contribution calendars from the GitHub GraphQL API.
type Client struct {
	url        string
	tokens     TokenSource
	httpClient httpDoer
	now        func() time.Time
}

// NewClient constructs a GitHub client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		url:        normalizeURL(cfg.GraphQLURL),
		tokens:     cfg.Tokens,
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		now:        time.Now,
	}
}

// FetchCalendar retrieves one calendar year of daily contribution counts for login.
func (c *Client) FetchCalendar(ctx context.Context, login string, year int) (contributions.Calendar, error) {
	login = contributions.NormalizeLogin(login)
	if login == "" {
		return contributions.Calendar{}, fmt.Errorf("github: %w: empty login", providers.ErrUserNotFound)
	}

	req, err := c.buildRequest(ctx, login, year)
	if err != nil {
		return contributions.Calendar{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return contributions.Calendar{}, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return contributions.Calendar{}, err
	}

	var payload graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return contributions.Calendar{}, fmt.Errorf("github: decode response: %w", err)
	}
	if err := payloadError(login, payload); err != nil {
		return contributions.Calendar{}, err
	}

	cal := mapCalendar(login, year, payload.Data.User.ContributionsCollection.ContributionCalendar)
	cal.FetchedAt = c.now().UTC()
	return cal, nil
}

func (c *Client) buildRequest(ctx context.Context, login string, year int) (*http.Request, error) {
	from, to := yearWindow(year)
	body, err := json.Marshal(graphQLRequest{
		Query: contributionsQuery,
		Variables: map[string]any{
			"login": login,
			"from":  from,
			"to":    to,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(snippet))

	if isRateLimited(resp) {
		return &providers.RateLimitError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			RetryAfter: retryAfter(resp.Header, c.now()),
			Remaining:  resp.Header.Get(headerRateRemaining),
			Message:    "github: rate limited",
		}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("github: %w: %s", providers.ErrUnauthorized, msg)
	}
	return fmt.Errorf("github: unexpected status %d: %s", resp.StatusCode, msg)
}

func payloadError(login string, payload graphQLResponse) error {
	if len(payload.Errors) > 0 {
		gqlErr := &providers.GraphQLError{Provider: providerName}
		for _, issue := range payload.Errors {
			gqlErr.Messages = append(gqlErr.Messages, issue.Message)
			gqlErr.Types = append(gqlErr.Types, issue.Type)
		}
		if gqlErr.HasType(errorTypeNotFound) {
			return fmt.Errorf("github: %w: %s: %w", providers.ErrUserNotFound, login, gqlErr)
		}
		return gqlErr
	}
	if payload.Data == nil || payload.Data.User == nil {
		return fmt.Errorf("github: %w: %s", providers.ErrUserNotFound, login)
	}
	return nil
}
