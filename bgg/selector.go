package bgg

import (
	"log/slog"
	"sync"

	"github.com/openshelf/meeplesync/config"
)

// Selector picks and caches one backend instance for the process lifetime.
// A configured credential selects the authenticated API backend; otherwise
// the JSON/scrape fallback is used. Reset exists for test isolation.
type Selector struct {
	remoteCfg  config.RemoteConfig
	browserCfg config.BrowserConfig

	mu     sync.Mutex
	cached Client
}

// NewSelector creates a Selector. No backend is constructed until the first
// Client call.
func NewSelector(remoteCfg config.RemoteConfig, browserCfg config.BrowserConfig) *Selector {
	return &Selector{remoteCfg: remoteCfg, browserCfg: browserCfg}
}

// Client returns the cached backend, constructing it on first use.
func (s *Selector) Client() Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return s.cached
	}

	if s.remoteCfg.Token != "" {
		slog.Info("backend selected", "backend", "api")
		s.cached = NewAPIClient(s.remoteCfg)
	} else {
		slog.Info("backend selected", "backend", "scrape")
		s.cached = NewScrapeClient(s.remoteCfg, s.browserCfg)
	}
	return s.cached
}

// BackendName reports which backend Client would return, without
// constructing it.
func (s *Selector) BackendName() string {
	if s.remoteCfg.Token != "" {
		return "api"
	}
	return "scrape"
}

// Reset drops the cached backend so the next Client call constructs a fresh
// one. Intended for tests.
func (s *Selector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
}
