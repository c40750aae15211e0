package github

import "time"

const (
	providerName       = "github"
	defaultGraphQLURL  = "https://api.github.com/graphql"
	defaultHTTPTimeout = 30 * time.Second
	maxErrorBody       = 512

	headerRateRemaining = "X-RateLimit-Remaining"
	headerRateReset     = "X-RateLimit-Reset"
	headerRetryAfter    = "Retry-After"

	errorTypeNotFound = "NOT_FOUND"
)

const contributionsQuery = `query($login: String!, $from: DateTime!, $to: DateTime!) {
  user(login: $login) {
    contributionsCollection(from: $from, to: $to) {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            date
            contributionCount
          }
        }
      }
    }
  }
}`
