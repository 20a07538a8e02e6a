package imagesearch

import (
	"context"
	"strings"

	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	appLog "github.com/Laisky/image-mcp/library/log"
)

const (
	// MaxResultsCap bounds how many hits a single query may request,
	// capping scraping cost.
	MaxResultsCap = 20

	defaultMaxResults = 10
)

// Engine defines a concrete image search strategy.
type Engine interface {
	// Name returns the unique identifier for the engine instance.
	Name() string
	// Available reports whether the engine's runtime dependency is present.
	Available() bool
	// SearchImages executes the query and returns per-image results.
	SearchImages(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// Provider exposes the high level image search capability used by MCP tools.
type Provider interface {
	SearchImages(ctx context.Context, query string, maxResults int) []Result
}

// ManagerOption customises a Manager during construction.
type ManagerOption func(*Manager)

// WithLogger overrides the default named logger.
func WithLogger(logger logSDK.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDefaultMaxResults overrides how many hits a query gets when the
// caller does not ask for a count. Values outside (0, MaxResultsCap] are ignored.
func WithDefaultMaxResults(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 && n <= MaxResultsCap {
			m.defaultMax = n
		}
	}
}

// Manager orchestrates the engines in priority order with failover.
//
// The availability of every engine is checked once at construction; engines
// whose runtime dependency is missing (for example no Chrome binary on the
// host) never participate in routing.
type Manager struct {
	engines    []Engine
	logger     logSDK.Logger
	defaultMax int
}

// NewManager constructs a Manager from engines in fallback order.
// Unavailable engines are dropped up front.
func NewManager(engines []Engine, opts ...ManagerOption) *Manager {
	m := &Manager{
		logger:     appLog.Logger.Named("imagesearch_manager"),
		defaultMax: defaultMaxResults,
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, engine := range engines {
		if engine == nil {
			continue
		}
		if !engine.Available() {
			m.logger.Info("image search engine unavailable, skipped",
				zap.String("engine", engine.Name()))
			continue
		}
		m.engines = append(m.engines, engine)
	}

	return m
}

// AvailableEngines returns the names of the engines that passed the
// construction-time capability check, in routing order.
func (m *Manager) AvailableEngines() []string {
	names := make([]string, 0, len(m.engines))
	for _, engine := range m.engines {
		names = append(names, engine.Name())
	}
	return names
}

// SearchImages routes the query through the available engines in order.
// An engine that errors, or returns zero successful entries, falls through
// to the next one. Every outcome is a structured result list; the method
// never returns a Go error.
func (m *Manager) SearchImages(ctx context.Context, query string, maxResults int) []Result {
	if strings.TrimSpace(query) == "" {
		return []Result{FailureResult("search query cannot be empty")}
	}

	if maxResults <= 0 {
		maxResults = m.defaultMax
	}
	if maxResults > MaxResultsCap {
		maxResults = MaxResultsCap
	}

	if len(m.engines) == 0 {
		return []Result{FailureResult("no image search engine is available")}
	}

	for _, engine := range m.engines {
		results, err := engine.SearchImages(ctx, query, maxResults)
		if err != nil {
			m.logger.Warn("image search engine failed, trying next",
				zap.String("engine", engine.Name()),
				zap.Error(err))
			continue
		}

		if SuccessCount(results) == 0 {
			m.logger.Info("image search engine returned no hits, trying next",
				zap.String("engine", engine.Name()),
				zap.Int("entries", len(results)))
			continue
		}

		if len(results) > maxResults {
			results = results[:maxResults]
		}

		m.logger.Info("image search completed",
			zap.String("engine", engine.Name()),
			zap.Int("hits", SuccessCount(results)))
		return results
	}

	return []Result{FailureResult("all image search strategies exhausted without results")}
}
