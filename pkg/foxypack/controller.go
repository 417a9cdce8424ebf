package foxypack

import (
	"context"
	"fmt"
	"reflect"
	"slices"
)

// Role names the two handler chains.
type Role string

const (
	RoleAnalysis   Role = "analysis"
	RoleStatistics Role = "statistics"
)

// Observer is notified about routing decisions. The controller does not log;
// callers that want bypasses logged or counted install an Observer.
type Observer interface {
	// HandlerBypassed is called for every error the chain swallowed.
	HandlerBypassed(role Role, handler string, err error)
	// ChainResolved is called with the handler whose result was returned.
	ChainResolved(role Role, handler string)
	// ChainExhausted is called when no handler produced a result.
	ChainExhausted(role Role)
}

type nopObserver struct{}

func (nopObserver) HandlerBypassed(Role, string, error) {}
func (nopObserver) ChainResolved(Role, string)          {}
func (nopObserver) ChainExhausted(Role)                 {}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver installs an observer for routing decisions.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithStatisticsBypass replaces the policy deciding which collector errors let
// the statistics chain continue. The default is BypassCollection.
func WithStatisticsBypass(p BypassPolicy) Option {
	return func(c *Controller) {
		if p != nil {
			c.statsBypass = p
		}
	}
}

// Resolution is the single value delivered by ResolveStatisticsAsync.
// Statistics and Err are both nil when no handler produced a result.
type Resolution struct {
	Statistics Statistics
	Err        error
}

// Controller holds ordered analyzer and collector chains and resolves URLs
// against them, first success wins.
//
// A Controller is built with New and the With* methods and must not be modified
// while a resolution is running.
type Controller struct {
	analyzers   []Analyzer
	collectors  []Collector
	statsBypass BypassPolicy
	observer    Observer
	misuse      error
}

// New creates an empty controller.
func New(opts ...Option) *Controller {
	c := &Controller{
		statsBypass: BypassCollection,
		observer:    nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithAnalyzer appends a to the analysis chain and returns c.
func (c *Controller) WithAnalyzer(a Analyzer) *Controller {
	if a == nil && c.misuse == nil {
		c.misuse = NewUsage(fmt.Sprintf("nil analyzer registered at position %d", len(c.analyzers)))
	}
	c.analyzers = append(c.analyzers, a)
	return c
}

// WithCollector appends col to the statistics chain and returns c.
func (c *Controller) WithCollector(col Collector) *Controller {
	if col == nil && c.misuse == nil {
		c.misuse = NewUsage(fmt.Sprintf("nil collector registered at position %d", len(c.collectors)))
	}
	c.collectors = append(c.collectors, col)
	return c
}

// Analyzers returns a copy of the analysis chain in trial order.
func (c *Controller) Analyzers() []Analyzer {
	return slices.Clone(c.analyzers)
}

// Collectors returns a copy of the statistics chain in trial order.
func (c *Controller) Collectors() []Collector {
	return slices.Clone(c.collectors)
}

// ResolveAnalysis classifies url with the first analyzer that accepts it.
// It returns (nil, nil) when every analyzer declined. Errors outside the bypass
// family are returned unchanged.
func (c *Controller) ResolveAnalysis(url string) (*Analysis, error) {
	if c.misuse != nil {
		return nil, c.misuse
	}

	for _, a := range c.analyzers {
		name := HandlerName(a)
		result, err := a.Analyze(url)
		switch Classify(err, BypassCollection) {
		case OutcomeDeclined:
			c.observer.HandlerBypassed(RoleAnalysis, name, err)
			continue
		case OutcomeFatal:
			return nil, err
		}

		if err := checkAnalysis(name, result); err != nil {
			return nil, err
		}
		c.observer.ChainResolved(RoleAnalysis, name)
		return result, nil
	}

	c.observer.ChainExhausted(RoleAnalysis)
	return nil, nil
}

// ResolveStatistics classifies url and collects statistics for it using the
// synchronous entry point of each collector. It returns (nil, nil) when either
// chain is exhausted; collectors are never called without a classification.
func (c *Controller) ResolveStatistics(url string) (Statistics, error) {
	analysis, err := c.ResolveAnalysis(url)
	if err != nil || analysis == nil {
		return nil, err
	}

	return c.collect(analysis, func(col Collector) (Statistics, error) {
		return col.Statistics(analysis)
	})
}

// ResolveStatisticsAsync is the asynchronous form of ResolveStatistics. The
// returned channel receives exactly one Resolution and is then closed.
//
// Collectors are awaited one at a time in chain order. ctx is handed to each
// collector; the controller itself never interrupts a running collector.
func (c *Controller) ResolveStatisticsAsync(ctx context.Context, url string) <-chan Resolution {
	out := make(chan Resolution, 1)

	go func() {
		defer close(out)

		analysis, err := c.ResolveAnalysis(url)
		if err != nil || analysis == nil {
			out <- Resolution{Err: err}
			return
		}

		stats, err := c.collect(analysis, func(col Collector) (Statistics, error) {
			return col.StatisticsAsync(ctx, analysis)
		})
		out <- Resolution{Statistics: stats, Err: err}
	}()

	return out
}

func (c *Controller) collect(analysis *Analysis, call func(Collector) (Statistics, error)) (Statistics, error) {
	for _, col := range c.collectors {
		name := HandlerName(col)
		stats, err := call(col)
		switch Classify(err, c.statsBypass) {
		case OutcomeDeclined:
			c.observer.HandlerBypassed(RoleStatistics, name, err)
			continue
		case OutcomeFatal:
			return nil, err
		}

		if err := checkStatistics(name, stats); err != nil {
			return nil, err
		}
		c.observer.ChainResolved(RoleStatistics, name)
		return stats, nil
	}

	c.observer.ChainExhausted(RoleStatistics)
	return nil, nil
}

// HandlerName returns the name used for h in errors and observer calls.
func HandlerName(h any) string {
	if n, ok := h.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", h)
}

func checkAnalysis(handler string, a *Analysis) error {
	switch {
	case a == nil:
		return NewContractViolation(handler, "returned neither an analysis nor an error")
	case a.URL == "":
		return NewContractViolation(handler, "analysis has no URL")
	case a.Platform == "":
		return NewContractViolation(handler, "analysis has no platform")
	case a.Category == "":
		return NewContractViolation(handler, "analysis has no content category")
	}
	return nil
}

func checkStatistics(handler string, s Statistics) error {
	if s == nil {
		return NewContractViolation(handler, "returned neither statistics nor an error")
	}
	if v := reflect.ValueOf(s); v.Kind() == reflect.Pointer && v.IsNil() {
		return NewContractViolation(handler, "returned a nil statistics value")
	}
	if s.Analysis() == nil {
		return NewContractViolation(handler, "statistics do not reference an analysis")
	}
	return nil
}
