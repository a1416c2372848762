package dineauth

import (
	"sync/atomic"
	"time"
)

// MetricID identifies an in-process counter or histogram maintained by a
// [Core].
type MetricID uint16

const (
	// MetricLoginSuccess counts logins that produced a full token pair.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts logins rejected by the backend.
	MetricLoginFailure
	// MetricTwoFactorRequired counts logins answered with a challenge.
	MetricTwoFactorRequired
	// MetricTwoFactorSuccess counts accepted authenticator codes.
	MetricTwoFactorSuccess
	// MetricTwoFactorFailure counts rejected authenticator codes.
	MetricTwoFactorFailure
	// MetricChallengeExpired counts verifications that hit an expired
	// challenge token.
	MetricChallengeExpired
	// MetricBackupCodeUsed counts accepted backup codes.
	MetricBackupCodeUsed
	// MetricBackupCodeFailed counts rejected backup codes.
	MetricBackupCodeFailed
	// MetricRefreshSuccess counts refresh calls that rotated the pair.
	MetricRefreshSuccess
	// MetricRefreshRejected counts refresh calls rejected by the backend.
	MetricRefreshRejected
	// MetricRefreshDeduplicated counts callers that piggybacked on an
	// already in-flight refresh instead of issuing their own.
	MetricRefreshDeduplicated
	// MetricRetryAfterRefresh counts requests replayed by [Transport]
	// after a successful transparent refresh.
	MetricRetryAfterRefresh
	// MetricUnreachable counts transport-level failures.
	MetricUnreachable
	// MetricLogout counts explicit logouts.
	MetricLogout
	// MetricSessionRestored counts sessions rehydrated from the store.
	MetricSessionRestored
	// MetricEnrollStarted counts two-factor enrollments begun.
	MetricEnrollStarted
	// MetricEnrollConfirmed counts two-factor enrollments completed.
	MetricEnrollConfirmed
	// MetricTwoFactorDisabled counts two-factor deactivations.
	MetricTwoFactorDisabled
	// MetricBackupCodesRegenerated counts backup-code regenerations.
	MetricBackupCodesRegenerated
	// MetricRequestLatency is the histogram of authentication request
	// round-trip time.
	MetricRequestLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters and an optional latency histogram.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all metric values.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a Metrics instance per the given config.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the latency histogram is being recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample for id. Only [MetricRequestLatency] is
// histogrammed.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricRequestLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current counter value for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters and histograms into maps. The maps are
// freshly allocated on every call.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricRequestLatency].buckets[i])
		}
		s.Histograms[MetricRequestLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
