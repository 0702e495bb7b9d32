package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	eventsProcessed atomic.Uint64
	ordersInserted  atomic.Uint64
	ordersCancelled atomic.Uint64
	ordersFilled    atomic.Uint64
	hedgesSent      atomic.Uint64
	hedgesFilled    atomic.Uint64
	staleDropped    atomic.Uint64
	errorsTotal     atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	connected atomic.Int32 // 1 = execution link up
}

// RecordEvent records an event dispatch with latency.
func (m *Metrics) RecordEvent(latencyNs int64) {
	m.eventsProcessed.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordOrderInserted records an emitted insert command.
func (m *Metrics) RecordOrderInserted() {
	m.ordersInserted.Add(1)
}

// RecordOrderCancelled records an emitted cancel command.
func (m *Metrics) RecordOrderCancelled() {
	m.ordersCancelled.Add(1)
}

// RecordOrderFilled records a fill of one of our quotes.
func (m *Metrics) RecordOrderFilled() {
	m.ordersFilled.Add(1)
}

// RecordHedgeSent records an emitted hedge order.
func (m *Metrics) RecordHedgeSent() {
	m.hedgesSent.Add(1)
}

// RecordHedgeFilled records a hedge fill notification.
func (m *Metrics) RecordHedgeFilled() {
	m.hedgesFilled.Add(1)
}

// RecordStaleDrop records a market-data event dropped for a stale
// exchange sequence number.
func (m *Metrics) RecordStaleDrop() {
	m.staleDropped.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// SetConnected sets the execution link gauge.
func (m *Metrics) SetConnected(up bool) {
	if up {
		m.connected.Store(1)
	} else {
		m.connected.Store(0)
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	EventsProcessed uint64
	OrdersInserted  uint64
	OrdersCancelled uint64
	OrdersFilled    uint64
	HedgesSent      uint64
	HedgesFilled    uint64
	StaleDropped    uint64
	ErrorsTotal     uint64
	AvgLatencyNs    int64
	Connected       bool
	Timestamp       time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		EventsProcessed: m.eventsProcessed.Load(),
		OrdersInserted:  m.ordersInserted.Load(),
		OrdersCancelled: m.ordersCancelled.Load(),
		OrdersFilled:    m.ordersFilled.Load(),
		HedgesSent:      m.hedgesSent.Load(),
		HedgesFilled:    m.hedgesFilled.Load(),
		StaleDropped:    m.staleDropped.Load(),
		ErrorsTotal:     m.errorsTotal.Load(),
		AvgLatencyNs:    avgLatency,
		Connected:       m.connected.Load() == 1,
		Timestamp:       time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.eventsProcessed.Store(0)
	m.ordersInserted.Store(0)
	m.ordersCancelled.Store(0)
	m.ordersFilled.Store(0)
	m.hedgesSent.Store(0)
	m.hedgesFilled.Store(0)
	m.staleDropped.Store(0)
	m.errorsTotal.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.connected.Store(0)
}
