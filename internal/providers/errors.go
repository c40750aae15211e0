package providers

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrProviderUnavailable is returned when no upstream provider is configured.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrUserNotFound is returned when the upstream has no account for the login.
	ErrUserNotFound = errors.New("user not found")
	// ErrUnauthorized is returned when the upstream rejects the credential.
	ErrUnauthorized = errors.New("unauthorized")
)

// RateLimitError captures rate limit responses from upstream providers.
type RateLimitError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Remaining  string
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "provider rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}

// GraphQLError carries the errors array of a GraphQL response.
type GraphQLError struct {
	Provider string
	Messages []string
	Types    []string
}

func (e *GraphQLError) Error() string {
	if len(e.Messages) == 0 {
		return "graphql query failed"
	}
	return "graphql: " + strings.Join(e.Messages, "; ")
}

// HasType reports whether any reported error carries the given type (e.g. NOT_FOUND).
func (e *GraphQLError) HasType(kind string) bool {
	for _, t := range e.Types {
		if strings.EqualFold(t, kind) {
			return true
		}
	}
	return false
}

// AsGraphQLError attempts to unwrap an error into a GraphQLError.
func AsGraphQLError(err error) (*GraphQLError, bool) {
	var gqlErr *GraphQLError
	if errors.As(err, &gqlErr) {
		return gqlErr, true
	}
	return nil, false
}

// IsPermanent reports whether retrying the same request cannot succeed.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrProviderUnavailable) {
		return true
	}
	_, isGraphQL := AsGraphQLError(err)
	return isGraphQL
}
