package foxypack

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutCollector bounds the asynchronous entry point of another collector.
type TimeoutCollector struct {
	next    Collector
	timeout time.Duration
}

// WithTimeout wraps c so that StatisticsAsync gives up after d and reports
// ErrTimeout. A non-positive d returns c unchanged.
func WithTimeout(c Collector, d time.Duration) Collector {
	if d <= 0 {
		return c
	}
	return &TimeoutCollector{next: c, timeout: d}
}

// Name reports the wrapped collector's name.
func (t *TimeoutCollector) Name() string {
	return HandlerName(t.next)
}

// Statistics delegates to the wrapped collector.
func (t *TimeoutCollector) Statistics(a *Analysis) (Statistics, error) {
	return t.next.Statistics(a)
}

// StatisticsAsync calls the wrapped collector with a deadline. The wrapped
// collector must honor ctx for the deadline to take effect.
func (t *TimeoutCollector) StatisticsAsync(ctx context.Context, a *Analysis) (Statistics, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	stats, err := t.next.StatisticsAsync(ctx, a)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrSystem) {
		return nil, WrapError(KindTimeout, t.Name(), fmt.Errorf("no result within %s: %w", t.timeout, err))
	}
	return stats, err
}
