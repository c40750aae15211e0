package server

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/contrib-widget-service/internal/providers"
)

// normalizeProviderName returns a lower-cased provider name, deriving from instance when not explicitly configured.
// Keeps naming consistent between metrics and logs.
func normalizeProviderName(raw string, provider providers.ContributionProvider) string {
	if raw != "" {
		return strings.ToLower(raw)
	}
	if provider != nil {
		return strings.ToLower(fmt.Sprintf("%T", provider))
	}
	return "provider"
}
