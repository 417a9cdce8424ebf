// Package core wires configuration, handlers and observers into a resolution service.
package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"foxypack/internal/store"
	"foxypack/pkg/foxypack"
	"foxypack/pkg/platform"
)

const (
	// ModeSync resolves statistics with the synchronous collector entry points.
	ModeSync = "sync"
	// ModeAsync resolves statistics with the asynchronous collector entry points.
	ModeAsync = "async"
)

// Service resolves URLs against a controller built from configuration.
type Service struct {
	controller *foxypack.Controller
	caches     []*store.AnalysisCache
	analyzers  []string
	collectors []string
	logger     *zap.Logger
}

// NewService builds the handler chains described by cfg. Extra observers, such
// as metrics, receive the same routing decisions as the logger.
func NewService(cfg *Config, logger *zap.Logger, observers ...foxypack.Observer) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	policy, err := cfg.Chain.bypassPolicy()
	if err != nil {
		return nil, err
	}

	observer := append(MultiObserver{NewZapObserver(logger)}, observers...)
	s := &Service{
		controller: foxypack.New(foxypack.WithObserver(observer), foxypack.WithStatisticsBypass(policy)),
		analyzers:  append([]string(nil), cfg.Chain.Analyzers...),
		collectors: append([]string(nil), cfg.Chain.Collectors...),
		logger:     logger,
	}

	for _, name := range cfg.Chain.Analyzers {
		analyzer, err := platform.NewAnalyzer(name)
		if err != nil {
			return nil, err
		}
		if cfg.Chain.CacheSize > 0 {
			cache, err := store.NewAnalysisCache(analyzer, cfg.Chain.CacheSize, cfg.Chain.CacheFalsePositiveRate)
			if err != nil {
				return nil, fmt.Errorf("failed to create cache for analyzer %s: %w", name, err)
			}
			s.caches = append(s.caches, cache)
			analyzer = cache
		}
		s.controller.WithAnalyzer(analyzer)
	}

	for _, name := range cfg.Chain.Collectors {
		collector, err := platform.NewCollector(name)
		if err != nil {
			return nil, err
		}
		s.controller.WithCollector(foxypack.WithTimeout(collector, cfg.Chain.CollectorTimeout))
	}

	logger.Debug("Handler chains configured",
		zap.Strings("analyzers", s.analyzers),
		zap.Strings("collectors", s.collectors),
		zap.String("bypass_policy", cfg.Chain.BypassPolicy),
		zap.Int("cache_size", cfg.Chain.CacheSize))

	return s, nil
}

// Analyze classifies url. A nil analysis with a nil error means no analyzer
// recognized it.
func (s *Service) Analyze(url string) (*foxypack.Analysis, error) {
	return s.controller.ResolveAnalysis(url)
}

// Statistics collects statistics for url in the given mode. A nil result with a
// nil error means no handler produced statistics. If ctx ends before an
// asynchronous resolution completes the result is abandoned, not cancelled.
func (s *Service) Statistics(ctx context.Context, url, mode string) (foxypack.Statistics, error) {
	switch mode {
	case ModeSync, "":
		return s.controller.ResolveStatistics(url)
	case ModeAsync:
		select {
		case res := <-s.controller.ResolveStatisticsAsync(ctx, url):
			return res.Statistics, res.Err
		case <-ctx.Done():
			return nil, fmt.Errorf("statistics resolution abandoned: %w", ctx.Err())
		}
	default:
		return nil, foxypack.NewUnsupportedOperation(fmt.Sprintf("unknown resolution mode %q (use %s or %s)",
			mode, ModeSync, ModeAsync))
	}
}

// Handlers returns the configured analyzer and collector names in trial order.
func (s *Service) Handlers() (analyzers, collectors []string) {
	return append([]string(nil), s.analyzers...), append([]string(nil), s.collectors...)
}

// CacheStats returns the combined counters of all analysis caches.
func (s *Service) CacheStats() store.Stats {
	var total store.Stats
	for _, c := range s.caches {
		st := c.Stats()
		total.Size += st.Size
		total.Hits += st.Hits
		total.Misses += st.Misses
	}
	return total
}
