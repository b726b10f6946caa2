package waitnotify

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics is a snapshot of the statistics of an Engine, see WithMetrics.
//
// Every wait attempt (one call of Wait, or one iteration of Await and its
// variants) ends in exactly one outcome, so:
//
//	Waits == Immediate + Woken + Spurious + Timeouts
type Metrics struct {
	// ParkLatency is the distribution of time spent parked.
	ParkLatency LatencyMetrics

	// Waits is the number of wait attempts.
	Waits uint64
	// Immediate counts attempts that observed the condition without parking,
	// including every successful spin.
	Immediate uint64
	// Woken counts parked attempts ended by a notification.
	Woken uint64
	// Spurious counts parked attempts that returned without a notification
	// or a timeout.
	Spurious uint64
	// Timeouts counts attempts that ended at their deadline.
	Timeouts uint64
	// Parks counts attempts that registered a ticket.
	Parks uint64

	// Notifies is the number of notify calls that found a parked waiter.
	Notifies uint64
	// Unparked is the number of tickets claimed by notifies.
	Unparked uint64
}

// LatencyMetrics summarizes a latency distribution, with percentiles
// estimated by P-Square.
type LatencyMetrics struct {
	P50   time.Duration
	P90   time.Duration
	P99   time.Duration
	Max   time.Duration
	Mean  time.Duration
	Count int
}

// outcome of a single wait attempt
type outcome int

const (
	outcomeImmediate outcome = iota
	outcomeWoken
	outcomeSpurious
	outcomeTimeout
)

func (x outcome) String() string {
	switch x {
	case outcomeImmediate:
		return "immediate"
	case outcomeWoken:
		return "woken"
	case outcomeSpurious:
		return "spurious"
	case outcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// metrics is the collector behind Metrics. A nil *metrics records nothing.
type metrics struct {
	latency struct {
		sync.Mutex
		p50, p90, p99 quantile
		sum, max      time.Duration
	}
	outcomes [4]atomic.Uint64
	parks    atomic.Uint64
	notifies atomic.Uint64
	unparked atomic.Uint64
}

func newMetrics() *metrics {
	m := new(metrics)
	m.latency.p50 = newQuantile(0.50)
	m.latency.p90 = newQuantile(0.90)
	m.latency.p99 = newQuantile(0.99)
	return m
}

func (m *metrics) recordOutcome(o outcome) {
	if m == nil {
		return
	}
	m.outcomes[o].Add(1)
}

func (m *metrics) recordPark(d time.Duration) {
	if m == nil {
		return
	}
	m.parks.Add(1)
	m.latency.Lock()
	defer m.latency.Unlock()
	v := float64(d)
	m.latency.p50.observe(v)
	m.latency.p90.observe(v)
	m.latency.p99.observe(v)
	m.latency.sum += d
	m.latency.max = max(m.latency.max, d)
}

func (m *metrics) recordNotify(woken int) {
	if m == nil || woken == 0 {
		return
	}
	m.notifies.Add(1)
	m.unparked.Add(uint64(woken))
}

func (m *metrics) snapshot() Metrics {
	if m == nil {
		return Metrics{}
	}
	var s Metrics
	s.Immediate = m.outcomes[outcomeImmediate].Load()
	s.Woken = m.outcomes[outcomeWoken].Load()
	s.Spurious = m.outcomes[outcomeSpurious].Load()
	s.Timeouts = m.outcomes[outcomeTimeout].Load()
	s.Waits = s.Immediate + s.Woken + s.Spurious + s.Timeouts
	s.Parks = m.parks.Load()
	s.Notifies = m.notifies.Load()
	s.Unparked = m.unparked.Load()

	m.latency.Lock()
	defer m.latency.Unlock()
	s.ParkLatency = LatencyMetrics{
		P50:   time.Duration(m.latency.p50.value()),
		P90:   time.Duration(m.latency.p90.value()),
		P99:   time.Duration(m.latency.p99.value()),
		Max:   m.latency.max,
		Count: m.latency.p50.count,
	}
	if n := m.latency.p50.count; n > 0 {
		s.ParkLatency.Mean = m.latency.sum / time.Duration(n)
	}
	return s
}
