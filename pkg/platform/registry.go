package platform

import (
	"fmt"
	"slices"

	"foxypack/pkg/foxypack"
)

var analyzerFactories = map[string]func() foxypack.Analyzer{
	"fakesocial": func() foxypack.Analyzer { return NewFakeSocialAnalyzer() },
	"youtube":    func() foxypack.Analyzer { return NewYouTubeAnalyzer() },
	"soundcloud": func() foxypack.Analyzer { return NewSoundCloudAnalyzer() },
}

var collectorFactories = map[string]func() foxypack.Collector{
	"fakesocial": func() foxypack.Collector { return NewFakeSocialCollector() },
}

// DefaultAnalyzers lists the analyzers of NewController in trial order.
var DefaultAnalyzers = []string{"fakesocial", "youtube", "soundcloud"}

// DefaultCollectors lists the collectors of NewController in trial order.
var DefaultCollectors = []string{"fakesocial"}

// NewAnalyzer returns the analyzer registered under name.
func NewAnalyzer(name string) (foxypack.Analyzer, error) {
	factory, ok := analyzerFactories[name]
	if !ok {
		return nil, foxypack.NewConfiguration(fmt.Sprintf("unknown analyzer %q (available: %v)", name, AnalyzerNames()))
	}
	return factory(), nil
}

// NewCollector returns the collector registered under name.
func NewCollector(name string) (foxypack.Collector, error) {
	factory, ok := collectorFactories[name]
	if !ok {
		return nil, foxypack.NewConfiguration(fmt.Sprintf("unknown collector %q (available: %v)", name, CollectorNames()))
	}
	return factory(), nil
}

// AnalyzerNames returns the registered analyzer names, sorted.
func AnalyzerNames() []string {
	return sortedKeys(analyzerFactories)
}

// CollectorNames returns the registered collector names, sorted.
func CollectorNames() []string {
	return sortedKeys(collectorFactories)
}

// NewController creates a controller with every built-in handler in default order.
func NewController(opts ...foxypack.Option) *foxypack.Controller {
	c := foxypack.New(opts...)
	for _, name := range DefaultAnalyzers {
		c.WithAnalyzer(analyzerFactories[name]())
	}
	for _, name := range DefaultCollectors {
		c.WithCollector(collectorFactories[name]())
	}
	return c
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
