package config

import "time"

// GitHubConfig controls how we talk to the GitHub GraphQL API.
type GitHubConfig struct {
	GraphQLURL string
	Username   string
	Timeout    time.Duration
	// MinInterval spaces upstream calls made by the rate-limited provider.
	MinInterval time.Duration
}

func loadGitHub() GitHubConfig {
	return GitHubConfig{
		GraphQLURL:  envOrDefault(envGraphQLURL, defaultGraphQLURL),
		Username:    envOrDefault(envUsername, defaultUsername),
		Timeout:     durationEnvOrDefault(envGitHubTimeout, defaultGitHubTimeout),
		MinInterval: durationEnvOrDefault(envProviderMinSpacing, defaultProviderMinSpacing),
	}
}
