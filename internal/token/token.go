package token

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/preston-bernstein/contrib-widget-service/internal/config"
	"github.com/preston-bernstein/contrib-widget-service/internal/logging"
)

// Source names where the current credential came from.
type Source string

const (
	SourceNone      Source = "none"
	SourceRuntime   Source = "runtime"
	SourceResources Source = "resources"
)

// Provider resolves the GitHub credential. A runtime token set by an operator takes precedence
// over the statically declared resource mapping. Lookups never fail: a missing credential is "".
type Provider struct {
	mu        sync.RWMutex
	runtime   string
	resources config.Resources
	logger    *slog.Logger
	warnOnce  sync.Once
}

// NewProvider builds a Provider over the resources loaded at startup.
func NewProvider(resources config.Resources, logger *slog.Logger) *Provider {
	return &Provider{resources: resources, logger: logger}
}

// Token returns the credential, or "" when none is configured.
func (p *Provider) Token() string {
	tok, _ := p.Resolve()
	return tok
}

// Resolve returns the credential together with where it was found.
func (p *Provider) Resolve() (string, Source) {
	if p == nil {
		return "", SourceNone
	}
	p.mu.RLock()
	runtime := p.runtime
	p.mu.RUnlock()
	if runtime != "" {
		return runtime, SourceRuntime
	}
	if tok, ok := p.resources.Get(config.KeyGitHubToken); ok {
		if tok = strings.TrimSpace(tok); tok != "" {
			return tok, SourceResources
		}
	}
	p.warnOnce.Do(func() {
		logging.Warn(p.logger, "github token not configured; requests are unauthenticated",
			slog.String("key", config.KeyGitHubToken))
	})
	return "", SourceNone
}

// Set replaces the runtime token. An empty value reverts to the resource mapping.
func (p *Provider) Set(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.runtime = strings.TrimSpace(token)
}
