package foxypack

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// stubAnalyzer returns a fixed result or error and counts its calls.
type stubAnalyzer struct {
	name   string
	result *Analysis
	err    error
	calls  int
}

func (s *stubAnalyzer) Name() string { return s.name }

func (s *stubAnalyzer) Analyze(string) (*Analysis, error) {
	s.calls++
	return s.result, s.err
}

// stubCollector returns fixed values from both entry points and counts calls.
type stubCollector struct {
	name       string
	result     Statistics
	err        error
	asyncErr   error
	calls      int
	asyncCalls int
}

func (s *stubCollector) Name() string { return s.name }

func (s *stubCollector) Statistics(*Analysis) (Statistics, error) {
	s.calls++
	return s.result, s.err
}

func (s *stubCollector) StatisticsAsync(context.Context, *Analysis) (Statistics, error) {
	s.asyncCalls++
	if s.asyncErr != nil {
		return nil, s.asyncErr
	}
	return s.result, s.err
}

// asyncOnlyCollector has no synchronous mode.
type asyncOnlyCollector struct {
	AsyncOnly
	result Statistics
}

func (a *asyncOnlyCollector) StatisticsAsync(context.Context, *Analysis) (Statistics, error) {
	return a.result, nil
}

type recordingObserver struct {
	mu        sync.Mutex
	bypassed  []string
	resolved  []string
	exhausted []Role
}

func (r *recordingObserver) HandlerBypassed(role Role, handler string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bypassed = append(r.bypassed, string(role)+":"+handler)
}

func (r *recordingObserver) ChainResolved(role Role, handler string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved = append(r.resolved, string(role)+":"+handler)
}

func (r *recordingObserver) ChainExhausted(role Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exhausted = append(r.exhausted, role)
}

func channelAnalysis() *Analysis {
	return &Analysis{URL: "https://fakesocialmedia.com/qsgqsdrr", Platform: "FakeSocialMedia", Category: CategoryChannel}
}

func containerStats(a *Analysis, id string) *ContainerStats {
	return &ContainerStats{StatisticsBase: NewStatisticsBase(a), SystemID: id}
}

func TestController_EmptyChains(t *testing.T) {
	c := New()

	analysis, err := c.ResolveAnalysis("https://fakesocialmedia.com/qsgqsdrr")
	if err != nil || analysis != nil {
		t.Errorf("ResolveAnalysis() = %v, %v, want nil, nil", analysis, err)
	}

	stats, err := c.ResolveStatistics("https://fakesocialmedia.com/qsgqsdrr")
	if err != nil || stats != nil {
		t.Errorf("ResolveStatistics() = %v, %v, want nil, nil", stats, err)
	}

	res := <-c.ResolveStatisticsAsync(context.Background(), "https://fakesocialmedia.com/qsgqsdrr")
	if res.Err != nil || res.Statistics != nil {
		t.Errorf("ResolveStatisticsAsync() = %+v, want empty resolution", res)
	}
}

func TestController_EmptyCollectorsWithAnalysis(t *testing.T) {
	c := New().WithAnalyzer(&stubAnalyzer{name: "a", result: channelAnalysis()})

	stats, err := c.ResolveStatistics("https://fakesocialmedia.com/qsgqsdrr")
	if err != nil || stats != nil {
		t.Errorf("ResolveStatistics() = %v, %v, want nil, nil", stats, err)
	}
}

func TestController_FirstSuccessWins(t *testing.T) {
	r := channelAnalysis()
	r2 := &Analysis{URL: "other", Platform: "Other", Category: CategoryVideo}

	a := &stubAnalyzer{name: "A", err: Decline("u", "")}
	b := &stubAnalyzer{name: "B", result: r}
	c := &stubAnalyzer{name: "C", result: r2}

	ctrl := New().WithAnalyzer(a).WithAnalyzer(b).WithAnalyzer(c)

	got, err := ctrl.ResolveAnalysis("u")
	if err != nil {
		t.Fatalf("ResolveAnalysis() unexpected error: %v", err)
	}
	if got != r {
		t.Errorf("ResolveAnalysis() = %+v, want %+v", got, r)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = A:%d B:%d, want 1 each", a.calls, b.calls)
	}
	if c.calls != 0 {
		t.Errorf("C should never be invoked, got %d calls", c.calls)
	}
}

func TestController_AllDecline(t *testing.T) {
	obs := &recordingObserver{}
	ctrl := New(WithObserver(obs)).
		WithAnalyzer(&stubAnalyzer{name: "A", err: Decline("u", "")}).
		WithAnalyzer(&stubAnalyzer{name: "B", err: NewCollection("B", "no data")}).
		WithAnalyzer(&stubAnalyzer{name: "C", err: Decline("u", "wrong domain")})

	got, err := ctrl.ResolveAnalysis("u")
	if err != nil || got != nil {
		t.Errorf("ResolveAnalysis() = %v, %v, want nil, nil", got, err)
	}
	if len(obs.bypassed) != 3 {
		t.Errorf("bypassed = %v, want 3 entries", obs.bypassed)
	}
	if len(obs.exhausted) != 1 || obs.exhausted[0] != RoleAnalysis {
		t.Errorf("exhausted = %v, want [analysis]", obs.exhausted)
	}
}

func TestController_AnalysisFatalErrorsPropagate(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{name: "usage", err: NewUsage("bad call"), target: ErrUsage},
		{name: "configuration", err: NewConfiguration("missing key"), target: ErrConfiguration},
		{name: "unsupported operation", err: NewUnsupportedOperation("nope"), target: ErrUnsupportedOperation},
		{name: "contract violation", err: NewContractViolation("A", "broken"), target: ErrContractViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &stubAnalyzer{name: "B", result: channelAnalysis()}
			ctrl := New().WithAnalyzer(&stubAnalyzer{name: "A", err: tt.err}).WithAnalyzer(next)

			_, err := ctrl.ResolveAnalysis("u")
			if !errors.Is(err, tt.target) {
				t.Errorf("ResolveAnalysis() error = %v, want %v", err, tt.target)
			}
			if next.calls != 0 {
				t.Errorf("handler after a fatal error should not run, got %d calls", next.calls)
			}
		})
	}
}

func TestController_AnalysisContractViolations(t *testing.T) {
	tests := []struct {
		name   string
		result *Analysis
	}{
		{name: "nil result", result: nil},
		{name: "missing url", result: &Analysis{Platform: "P", Category: CategoryVideo}},
		{name: "missing platform", result: &Analysis{URL: "u", Category: CategoryVideo}},
		{name: "missing category", result: &Analysis{URL: "u", Platform: "P"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := New().WithAnalyzer(&stubAnalyzer{name: "A", result: tt.result})
			_, err := ctrl.ResolveAnalysis("u")
			if !errors.Is(err, ErrContractViolation) {
				t.Errorf("ResolveAnalysis() error = %v, want contract violation", err)
			}
		})
	}
}

func TestController_NilHandlerIsUsageError(t *testing.T) {
	ctrl := New().WithAnalyzer(&stubAnalyzer{name: "A", result: channelAnalysis()}).WithAnalyzer(nil)

	if _, err := ctrl.ResolveAnalysis("u"); !errors.Is(err, ErrUsage) {
		t.Errorf("ResolveAnalysis() error = %v, want usage error", err)
	}
	if _, err := ctrl.ResolveStatistics("u"); !errors.Is(err, ErrUsage) {
		t.Errorf("ResolveStatistics() error = %v, want usage error", err)
	}

	ctrl = New().WithCollector(nil)
	res := <-ctrl.ResolveStatisticsAsync(context.Background(), "u")
	if !errors.Is(res.Err, ErrUsage) {
		t.Errorf("ResolveStatisticsAsync() error = %v, want usage error", res.Err)
	}
}

func TestController_NoCollectorCallsWithoutAnalysis(t *testing.T) {
	spy := &stubCollector{name: "spy", result: containerStats(channelAnalysis(), "CH_001")}
	ctrl := New().
		WithAnalyzer(&stubAnalyzer{name: "A", err: Decline("u", "")}).
		WithCollector(spy)

	stats, err := ctrl.ResolveStatistics("u")
	if err != nil || stats != nil {
		t.Errorf("ResolveStatistics() = %v, %v, want nil, nil", stats, err)
	}

	res := <-ctrl.ResolveStatisticsAsync(context.Background(), "u")
	if res.Err != nil || res.Statistics != nil {
		t.Errorf("ResolveStatisticsAsync() = %+v, want empty resolution", res)
	}

	if spy.calls != 0 || spy.asyncCalls != 0 {
		t.Errorf("collector calls = sync:%d async:%d, want 0", spy.calls, spy.asyncCalls)
	}
}

func TestController_AnalysisResolvedOncePerStatistics(t *testing.T) {
	a := &stubAnalyzer{name: "A", result: channelAnalysis()}
	ctrl := New().
		WithAnalyzer(a).
		WithCollector(&stubCollector{name: "first", err: NewCollection("first", "down")}).
		WithCollector(&stubCollector{name: "second", err: NewTimeout("second", "slow")})

	if _, err := ctrl.ResolveStatistics("u"); err != nil {
		t.Fatalf("ResolveStatistics() unexpected error: %v", err)
	}
	if a.calls != 1 {
		t.Errorf("analyzer calls = %d, want 1", a.calls)
	}
}

func TestController_CollectionErrorFallsThrough(t *testing.T) {
	analysis := channelAnalysis()
	want := containerStats(analysis, "CH_002")

	ctrl := New().
		WithAnalyzer(&stubAnalyzer{name: "A", result: analysis}).
		WithCollector(&stubCollector{name: "broken", err: NewCollection("broken", "always fails")}).
		WithCollector(&stubCollector{name: "working", result: want})

	got, err := ctrl.ResolveStatistics("u")
	if err != nil {
		t.Fatalf("ResolveStatistics() unexpected error: %v", err)
	}
	if got != Statistics(want) {
		t.Errorf("ResolveStatistics() = %+v, want %+v", got, want)
	}

	res := <-ctrl.ResolveStatisticsAsync(context.Background(), "u")
	if res.Err != nil {
		t.Fatalf("ResolveStatisticsAsync() unexpected error: %v", res.Err)
	}
	if res.Statistics != Statistics(want) {
		t.Errorf("ResolveStatisticsAsync() = %+v, want %+v", res.Statistics, want)
	}
}

func TestController_ModeUnsupportedBypass(t *testing.T) {
	analysis := channelAnalysis()
	asyncStats := containerStats(analysis, "ASYNC")
	syncStats := containerStats(analysis, "SYNC")

	asyncOnly := &asyncOnlyCollector{AsyncOnly: AsyncOnly{Handler: "asyncOnly"}, result: asyncStats}
	syncOnly := &stubCollector{name: "syncOnly", result: syncStats, asyncErr: NewAsyncUnsupported("syncOnly")}

	t.Run("sync call on async-only handler fails fast", func(t *testing.T) {
		_, err := asyncOnly.Statistics(analysis)
		if !errors.Is(err, ErrSyncUnsupported) {
			t.Errorf("Statistics() error = %v, want ErrSyncUnsupported", err)
		}
	})

	t.Run("broad policy skips wrong mode", func(t *testing.T) {
		ctrl := New().
			WithAnalyzer(&stubAnalyzer{name: "A", result: analysis}).
			WithCollector(asyncOnly).
			WithCollector(syncOnly)

		got, err := ctrl.ResolveStatistics("u")
		if err != nil || got != Statistics(syncStats) {
			t.Errorf("ResolveStatistics() = %v, %v, want sync stats", got, err)
		}

		res := <-ctrl.ResolveStatisticsAsync(context.Background(), "u")
		if res.Err != nil || res.Statistics != Statistics(asyncStats) {
			t.Errorf("ResolveStatisticsAsync() = %+v, want async stats", res)
		}
	})

	t.Run("strict policy aborts on wrong mode", func(t *testing.T) {
		ctrl := New(WithStatisticsBypass(BypassCollectionStrict)).
			WithAnalyzer(&stubAnalyzer{name: "A", result: analysis}).
			WithCollector(asyncOnly).
			WithCollector(syncOnly)

		_, err := ctrl.ResolveStatistics("u")
		if !errors.Is(err, ErrSyncUnsupported) {
			t.Errorf("ResolveStatistics() error = %v, want ErrSyncUnsupported", err)
		}
	})
}

func TestController_StatisticsFatalErrorPropagates(t *testing.T) {
	next := &stubCollector{name: "next", result: containerStats(channelAnalysis(), "X")}
	ctrl := New().
		WithAnalyzer(&stubAnalyzer{name: "A", result: channelAnalysis()}).
		WithCollector(&stubCollector{name: "misconfigured", err: NewConfiguration("no api key")}).
		WithCollector(next)

	_, err := ctrl.ResolveStatistics("u")
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("ResolveStatistics() error = %v, want configuration error", err)
	}
	if next.calls != 0 {
		t.Errorf("next collector calls = %d, want 0", next.calls)
	}

	res := <-ctrl.ResolveStatisticsAsync(context.Background(), "u")
	if !errors.Is(res.Err, ErrConfiguration) || res.Statistics != nil {
		t.Errorf("ResolveStatisticsAsync() = %+v, want configuration error", res)
	}
}

func TestController_StatisticsContractViolation(t *testing.T) {
	ctrl := New().
		WithAnalyzer(&stubAnalyzer{name: "A", result: channelAnalysis()}).
		WithCollector(&stubCollector{name: "empty"})

	if _, err := ctrl.ResolveStatistics("u"); !errors.Is(err, ErrContractViolation) {
		t.Errorf("nil statistics: error = %v, want contract violation", err)
	}

	ctrl = New().
		WithAnalyzer(&stubAnalyzer{name: "A", result: channelAnalysis()}).
		WithCollector(&stubCollector{name: "orphan", result: &ContainerStats{}})

	if _, err := ctrl.ResolveStatistics("u"); !errors.Is(err, ErrContractViolation) {
		t.Errorf("orphan statistics: error = %v, want contract violation", err)
	}

	var typedNil *ContainerStats
	ctrl = New().
		WithAnalyzer(&stubAnalyzer{name: "A", result: channelAnalysis()}).
		WithCollector(&stubCollector{name: "typedNil", result: typedNil})

	if _, err := ctrl.ResolveStatistics("u"); !errors.Is(err, ErrContractViolation) {
		t.Errorf("typed nil statistics: error = %v, want contract violation", err)
	}
	res := <-ctrl.ResolveStatisticsAsync(context.Background(), "u")
	if !errors.Is(res.Err, ErrContractViolation) || res.Statistics != nil {
		t.Errorf("typed nil statistics async: %+v, want contract violation", res)
	}
}

// orderedCollector records the order in which collectors start and finish.
type orderedCollector struct {
	name  string
	log   *[]string
	mu    *sync.Mutex
	delay time.Duration
	err   error
}

func (o *orderedCollector) Name() string { return o.name }

func (o *orderedCollector) Statistics(*Analysis) (Statistics, error) {
	return nil, NewSyncUnsupported(o.name)
}

func (o *orderedCollector) StatisticsAsync(_ context.Context, a *Analysis) (Statistics, error) {
	o.mu.Lock()
	*o.log = append(*o.log, "start:"+o.name)
	o.mu.Unlock()

	time.Sleep(o.delay)

	o.mu.Lock()
	*o.log = append(*o.log, "end:"+o.name)
	o.mu.Unlock()

	if o.err != nil {
		return nil, o.err
	}
	return containerStats(a, o.name), nil
}

func TestController_AsyncIsSequential(t *testing.T) {
	var (
		log []string
		mu  sync.Mutex
	)
	ctrl := New().
		WithAnalyzer(&stubAnalyzer{name: "A", result: channelAnalysis()}).
		WithCollector(&orderedCollector{name: "slow", log: &log, mu: &mu, delay: 20 * time.Millisecond, err: NewTimeout("slow", "x")}).
		WithCollector(&orderedCollector{name: "fast", log: &log, mu: &mu})

	res := <-ctrl.ResolveStatisticsAsync(context.Background(), "u")
	if res.Err != nil {
		t.Fatalf("ResolveStatisticsAsync() unexpected error: %v", res.Err)
	}

	want := []string{"start:slow", "end:slow", "start:fast", "end:fast"}
	mu.Lock()
	defer mu.Unlock()
	if len(log) != len(want) {
		t.Fatalf("call log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("call log = %v, want %v", log, want)
			break
		}
	}

	stats, ok := res.Statistics.(*ContainerStats)
	if !ok || stats.SystemID != "fast" {
		t.Errorf("ResolveStatisticsAsync() = %+v, want stats from fast", res.Statistics)
	}
}

func TestController_AsyncChannelClosedAfterResult(t *testing.T) {
	ch := New().ResolveStatisticsAsync(context.Background(), "u")
	<-ch
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after the single resolution")
	}
}

func TestController_ObserverReportsWinner(t *testing.T) {
	obs := &recordingObserver{}
	ctrl := New(WithObserver(obs)).
		WithAnalyzer(&stubAnalyzer{name: "A", err: Decline("u", "")}).
		WithAnalyzer(&stubAnalyzer{name: "B", result: channelAnalysis()}).
		WithCollector(&stubCollector{name: "X", err: NewServiceUnavailable("X", "down")}).
		WithCollector(&stubCollector{name: "Y", result: containerStats(channelAnalysis(), "Y")})

	if _, err := ctrl.ResolveStatistics("u"); err != nil {
		t.Fatalf("ResolveStatistics() unexpected error: %v", err)
	}

	wantBypassed := []string{"analysis:A", "statistics:X"}
	wantResolved := []string{"analysis:B", "statistics:Y"}
	for i := range wantBypassed {
		if obs.bypassed[i] != wantBypassed[i] {
			t.Errorf("bypassed = %v, want %v", obs.bypassed, wantBypassed)
		}
		if obs.resolved[i] != wantResolved[i] {
			t.Errorf("resolved = %v, want %v", obs.resolved, wantResolved)
		}
	}
}

func TestController_HandlerListsAreCopies(t *testing.T) {
	ctrl := New().WithAnalyzer(&stubAnalyzer{name: "A"}).WithCollector(&stubCollector{name: "X"})

	analyzers := ctrl.Analyzers()
	analyzers[0] = nil
	if ctrl.Analyzers()[0] == nil {
		t.Error("Analyzers() should return a copy")
	}

	if got := len(ctrl.Collectors()); got != 1 {
		t.Errorf("len(Collectors()) = %d, want 1", got)
	}
}

func TestHandlerName(t *testing.T) {
	if got := HandlerName(&stubAnalyzer{name: "named"}); got != "named" {
		t.Errorf("HandlerName() = %q, want %q", got, "named")
	}
	if got := HandlerName(asyncOnlyCollector{}); got != "foxypack.asyncOnlyCollector" {
		t.Errorf("HandlerName() = %q, want type name", got)
	}
}

func TestStatisticsIdentity(t *testing.T) {
	analysis := channelAnalysis()
	first := NewStatisticsBase(analysis)
	second := NewStatisticsBase(analysis)

	if first.ID() == second.ID() {
		t.Error("each statistics value should get a fresh identifier")
	}
	if first.Analysis() != second.Analysis() {
		t.Error("statistics should share the same analysis reference")
	}
	if first.CollectedAt().IsZero() {
		t.Error("CollectedAt should be set")
	}
}
