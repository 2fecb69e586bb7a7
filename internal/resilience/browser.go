package resilience

import (
	"context"

	"github.com/arvindram27/memex-agent/pkg/page"
)

// BrowserGuard wraps a browser session's Describer and Automator behind a
// single circuit breaker. A browser that keeps failing (crashed tab, dead
// DevTools connection) trips the breaker so commands fail fast instead of
// waiting out the navigation timeout on every attempt.
type BrowserGuard struct {
	describer page.Describer
	automator page.Automator
	breaker   *CircuitBreaker
}

// Compile-time interface assertions.
var (
	_ page.Describer = (*BrowserGuard)(nil)
	_ page.Automator = (*BrowserGuard)(nil)
)

// NewBrowserGuard wraps the given session. describer and automator are usually
// the same value (a *rodpage.Session).
func NewBrowserGuard(describer page.Describer, automator page.Automator, cfg CircuitBreakerConfig) *BrowserGuard {
	if cfg.Name == "" {
		cfg.Name = "browser"
	}
	return &BrowserGuard{
		describer: describer,
		automator: automator,
		breaker:   NewCircuitBreaker(cfg),
	}
}

// Describe forwards to the wrapped describer through the breaker.
func (g *BrowserGuard) Describe(ctx context.Context) (*page.Description, error) {
	var desc *page.Description
	err := g.breaker.Execute(func() error {
		var innerErr error
		desc, innerErr = g.describer.Describe(ctx)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return desc, nil
}

// Execute forwards to the wrapped automator through the breaker.
func (g *BrowserGuard) Execute(ctx context.Context, action page.Action) (*page.Result, error) {
	var result *page.Result
	err := g.breaker.Execute(func() error {
		var innerErr error
		result, innerErr = g.automator.Execute(ctx, action)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// State exposes the breaker state for readiness checks.
func (g *BrowserGuard) State() State {
	return g.breaker.State()
}
