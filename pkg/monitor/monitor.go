package monitor

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"augur-hq/augur/pkg/analyzer"
)

const (
	// globalWindowCap bounds the global rolling window of durations.
	globalWindowCap = 1000

	// typeWindowCap bounds each per-type rolling window.
	typeWindowCap = 100

	// defaultSlowThreshold is the advisory threshold for a single
	// slow analysis and for a type's rolling average.
	defaultSlowThreshold = 5 * time.Second

	// defaultSuccessRateFloor is the advisory floor for the global
	// success rate.
	defaultSuccessRateFloor = 0.8

	// minSamplesForRateWarning avoids noisy warnings on tiny samples.
	minSamplesForRateWarning = 20
)

// Config contains monitor configuration. Zero values apply defaults.
type Config struct {
	// SlowThreshold flags a single analysis, or a type average, as slow.
	SlowThreshold time.Duration

	// SuccessRateFloor triggers an advisory warning when the global
	// success rate drops below it (after MinSamples analyses).
	SuccessRateFloor float64

	// MinSamples is the minimum sample size before rate warnings fire.
	MinSamples int
}

// TypeStats are percentile-free statistics for one analysis type.
type TypeStats struct {
	Count   int
	Min     time.Duration
	Max     time.Duration
	Median  time.Duration
	Average time.Duration
}

// Snapshot is a point-in-time view of the monitor state.
type Snapshot struct {
	TotalAnalyses  int64
	Successes      int64
	Failures       int64
	SuccessRate    float64
	RollingAverage time.Duration
	Peak           time.Duration
}

// Monitor collects rolling performance statistics. It is safe for
// concurrent use.
type Monitor struct {
	mu sync.Mutex

	durations []time.Duration
	perType   map[analyzer.AnalysisType][]time.Duration

	successes int64
	failures  int64
	peak      time.Duration

	slowThreshold    time.Duration
	successRateFloor float64
	minSamples       int

	logger *slog.Logger
}

// New creates a monitor.
func New(cfg Config, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = defaultSlowThreshold
	}
	floor := cfg.SuccessRateFloor
	if floor <= 0 {
		floor = defaultSuccessRateFloor
	}
	minSamples := cfg.MinSamples
	if minSamples <= 0 {
		minSamples = minSamplesForRateWarning
	}

	return &Monitor{
		perType:          make(map[analyzer.AnalysisType][]time.Duration),
		slowThreshold:    slow,
		successRateFloor: floor,
		minSamples:       minSamples,
		logger:           logger.With("component", "monitor"),
	}
}

// Record records one completed analysis and emits advisory warnings
// when thresholds are crossed.
func (m *Monitor) Record(t analyzer.AnalysisType, d time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.durations = appendBounded(m.durations, d, globalWindowCap)
	m.perType[t] = appendBounded(m.perType[t], d, typeWindowCap)

	if success {
		m.successes++
	} else {
		m.failures++
	}
	if d > m.peak {
		m.peak = d
	}

	if d > m.slowThreshold {
		m.logger.Warn("slow analysis",
			"type", t,
			"duration", d,
			"threshold", m.slowThreshold,
		)
	}

	if avg := average(m.perType[t]); avg > m.slowThreshold {
		m.logger.Warn("slow rolling average for analysis type",
			"type", t,
			"average", avg,
			"threshold", m.slowThreshold,
		)
	}

	total := m.successes + m.failures
	if total >= int64(m.minSamples) {
		rate := float64(m.successes) / float64(total)
		if rate < m.successRateFloor {
			m.logger.Warn("global success rate below floor",
				"success_rate", fmt.Sprintf("%.2f", rate),
				"floor", m.successRateFloor,
				"samples", total,
			)
		}
	}
}

// Snapshot returns current aggregate statistics.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.successes + m.failures
	rate := 0.0
	if total > 0 {
		rate = float64(m.successes) / float64(total)
	}

	return Snapshot{
		TotalAnalyses:  total,
		Successes:      m.successes,
		Failures:       m.failures,
		SuccessRate:    rate,
		RollingAverage: average(m.durations),
		Peak:           m.peak,
	}
}

// TypeStats returns statistics for one analysis type. The zero value
// is returned when no analyses of that type have been recorded.
func (m *Monitor) TypeStats(t analyzer.AnalysisType) TypeStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	window := m.perType[t]
	if len(window) == 0 {
		return TypeStats{}
	}

	sorted := append([]time.Duration(nil), window...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return TypeStats{
		Count:   len(sorted),
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
		Median:  median(sorted),
		Average: average(sorted),
	}
}

// Report renders a human-readable summary of all recorded statistics.
func (m *Monitor) Report() string {
	snap := m.Snapshot()

	m.mu.Lock()
	types := make([]analyzer.AnalysisType, 0, len(m.perType))
	for t := range m.perType {
		types = append(types, t)
	}
	m.mu.Unlock()
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	var sb strings.Builder
	sb.WriteString("Performance Report\n")
	fmt.Fprintf(&sb, "  analyses: %d (success %d, failure %d, rate %.1f%%)\n",
		snap.TotalAnalyses, snap.Successes, snap.Failures, snap.SuccessRate*100)
	fmt.Fprintf(&sb, "  rolling average: %s, peak: %s\n", snap.RollingAverage, snap.Peak)

	for _, t := range types {
		stats := m.TypeStats(t)
		fmt.Fprintf(&sb, "  %s: n=%d min=%s max=%s median=%s avg=%s\n",
			t, stats.Count, stats.Min, stats.Max, stats.Median, stats.Average)
	}
	return sb.String()
}

// appendBounded appends to a rolling window, dropping the oldest
// element once the cap is reached.
func appendBounded(window []time.Duration, d time.Duration, limit int) []time.Duration {
	if len(window) >= limit {
		copy(window, window[1:])
		window[len(window)-1] = d
		return window
	}
	return append(window, d)
}

func average(window []time.Duration) time.Duration {
	if len(window) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range window {
		sum += d
	}
	return sum / time.Duration(len(window))
}

// median returns the median of a sorted window.
func median(sorted []time.Duration) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
