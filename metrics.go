package flashonata

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks evaluator performance using lock-free atomic operations.
// All methods are safe for concurrent use.
type Metrics struct {
	// Evaluation counts
	evaluationsTotal atomic.Uint64
	evaluationsOK    atomic.Uint64

	// Timing (stored as nanoseconds)
	evaluationTimeTotal atomic.Uint64
	evaluationTimeMin   atomic.Uint64
	evaluationTimeMax   atomic.Uint64

	// Regex cache metrics
	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64

	// Pool metrics (Env / PathBuilder acquire-release)
	poolAcquires atomic.Uint64
	poolReleases atomic.Uint64

	// Virtual-rule synthesis
	virtualRulesTotal    atomic.Uint64
	virtualRuleErrors    atomic.Uint64
	slicesErrorsDiscarded atomic.Uint64

	// Error counts
	errorsTotal atomic.Uint64

	// Per-stage timing (context/subexpr/children/primitives/assembly/
	// slicing/meta/mandatory), map access protected by sync.Map.
	stageTiming sync.Map // map[string]*stageMetrics
}

// stageMetrics tracks metrics for a single evaluate_flash stage.
type stageMetrics struct {
	invocations atomic.Uint64
	totalTime   atomic.Uint64 // nanoseconds
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.evaluationTimeMin.Store(^uint64(0))
	return m
}

// RecordEvaluate records one completed evaluate_flash invocation.
func (m *Metrics) RecordEvaluate(duration time.Duration, ok bool) {
	m.evaluationsTotal.Add(1)
	if ok {
		m.evaluationsOK.Add(1)
	}

	ns := uint64(duration.Nanoseconds())
	m.evaluationTimeTotal.Add(ns)

	for {
		old := m.evaluationTimeMin.Load()
		if ns >= old {
			break
		}
		if m.evaluationTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.evaluationTimeMax.Load()
		if ns <= old {
			break
		}
		if m.evaluationTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordCacheHit records a regex-cache hit.
func (m *Metrics) RecordCacheHit() { m.cacheHits.Add(1) }

// RecordCacheMiss records a regex-cache miss.
func (m *Metrics) RecordCacheMiss() { m.cacheMisses.Add(1) }

// RecordPoolAcquire records an Env/PathBuilder pool acquire.
func (m *Metrics) RecordPoolAcquire() { m.poolAcquires.Add(1) }

// RecordPoolRelease records an Env/PathBuilder pool release.
func (m *Metrics) RecordPoolRelease() { m.poolReleases.Add(1) }

// RecordVirtualRule records a virtual-rule synthesis attempt, and whether
// it produced a captured error.
func (m *Metrics) RecordVirtualRule(hadError bool) {
	m.virtualRulesTotal.Add(1)
	if hadError {
		m.virtualRuleErrors.Add(1)
	}
}

// RecordSliceErrorDiscarded records a collected slice error that was
// filtered out at the flash-block boundary (spec §7 deferral heuristic).
func (m *Metrics) RecordSliceErrorDiscarded() { m.slicesErrorsDiscarded.Add(1) }

// RecordError records a raised EvalError.
func (m *Metrics) RecordError() { m.errorsTotal.Add(1) }

// RecordStage records metrics for one evaluate_flash stage invocation.
func (m *Metrics) RecordStage(stage string, duration time.Duration) {
	sm := m.getOrCreateStageMetrics(stage)
	sm.invocations.Add(1)
	sm.totalTime.Add(uint64(duration.Nanoseconds()))
}

func (m *Metrics) getOrCreateStageMetrics(name string) *stageMetrics {
	if v, ok := m.stageTiming.Load(name); ok {
		return v.(*stageMetrics)
	}
	sm := &stageMetrics{}
	actual, _ := m.stageTiming.LoadOrStore(name, sm)
	return actual.(*stageMetrics)
}

// EvaluationsTotal returns the total number of evaluate_flash invocations.
func (m *Metrics) EvaluationsTotal() uint64 { return m.evaluationsTotal.Load() }

// EvaluationsOK returns the number of invocations that completed without error.
func (m *Metrics) EvaluationsOK() uint64 { return m.evaluationsOK.Load() }

// CacheHitRate returns the regex cache hit rate (0.0 to 1.0).
func (m *Metrics) CacheHitRate() float64 {
	hits := m.cacheHits.Load()
	misses := m.cacheMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// ErrorsTotal returns the total number of raised EvalErrors.
func (m *Metrics) ErrorsTotal() uint64 { return m.errorsTotal.Load() }

// PoolLeaks returns potential pool leaks (acquires - releases).
func (m *Metrics) PoolLeaks() int64 {
	return int64(m.poolAcquires.Load()) - int64(m.poolReleases.Load())
}

// AvgEvaluationTime returns the average evaluate_flash duration.
func (m *Metrics) AvgEvaluationTime() time.Duration {
	total := m.evaluationsTotal.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(m.evaluationTimeTotal.Load() / total)
}

// StageStats summarizes a single evaluate_flash stage.
type StageStats struct {
	Name        string
	Invocations uint64
	TotalTime   time.Duration
	AvgTime     time.Duration
}

// StageStats returns statistics for a specific stage.
func (m *Metrics) StageStats(stage string) (StageStats, bool) {
	v, ok := m.stageTiming.Load(stage)
	if !ok {
		return StageStats{Name: stage}, false
	}
	sm := v.(*stageMetrics)
	invocations := sm.invocations.Load()
	totalTime := sm.totalTime.Load()
	var avg time.Duration
	if invocations > 0 {
		avg = time.Duration(totalTime / invocations)
	}
	return StageStats{Name: stage, Invocations: invocations, TotalTime: time.Duration(totalTime), AvgTime: avg}, true
}

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Timestamp             time.Time `json:"timestamp"`
	EvaluationsTotal       uint64    `json:"evaluations_total"`
	EvaluationsOK          uint64    `json:"evaluations_ok"`
	AvgEvaluationTimeNs    uint64    `json:"avg_evaluation_time_ns"`
	MinEvaluationTimeNs    uint64    `json:"min_evaluation_time_ns"`
	MaxEvaluationTimeNs    uint64    `json:"max_evaluation_time_ns"`
	CacheHits              uint64    `json:"cache_hits"`
	CacheMisses            uint64    `json:"cache_misses"`
	CacheHitRate           float64   `json:"cache_hit_rate"`
	PoolLeaks              int64     `json:"pool_leaks"`
	VirtualRulesTotal      uint64    `json:"virtual_rules_total"`
	VirtualRuleErrors      uint64    `json:"virtual_rule_errors"`
	SliceErrorsDiscarded   uint64    `json:"slice_errors_discarded"`
	ErrorsTotal            uint64    `json:"errors_total"`
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	minTime := m.evaluationTimeMin.Load()
	if minTime == ^uint64(0) {
		minTime = 0
	}
	var avg uint64
	if total := m.evaluationsTotal.Load(); total > 0 {
		avg = m.evaluationTimeTotal.Load() / total
	}
	return Snapshot{
		Timestamp:            time.Now(),
		EvaluationsTotal:      m.evaluationsTotal.Load(),
		EvaluationsOK:         m.evaluationsOK.Load(),
		AvgEvaluationTimeNs:   avg,
		MinEvaluationTimeNs:   minTime,
		MaxEvaluationTimeNs:   m.evaluationTimeMax.Load(),
		CacheHits:             m.cacheHits.Load(),
		CacheMisses:           m.cacheMisses.Load(),
		CacheHitRate:          m.CacheHitRate(),
		PoolLeaks:             m.PoolLeaks(),
		VirtualRulesTotal:     m.virtualRulesTotal.Load(),
		VirtualRuleErrors:     m.virtualRuleErrors.Load(),
		SliceErrorsDiscarded:  m.slicesErrorsDiscarded.Load(),
		ErrorsTotal:           m.errorsTotal.Load(),
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.evaluationsTotal.Store(0)
	m.evaluationsOK.Store(0)
	m.evaluationTimeTotal.Store(0)
	m.evaluationTimeMin.Store(^uint64(0))
	m.evaluationTimeMax.Store(0)
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
	m.poolAcquires.Store(0)
	m.poolReleases.Store(0)
	m.virtualRulesTotal.Store(0)
	m.virtualRuleErrors.Store(0)
	m.slicesErrorsDiscarded.Store(0)
	m.errorsTotal.Store(0)
	m.stageTiming.Range(func(key, _ any) bool {
		m.stageTiming.Delete(key)
		return true
	})
}
