package event

import (
	"sync"
)

// Pools for the two high-frequency market-data events. Fills, statuses and
// errors are rare enough that pooling them would be noise.
//
// Usage:
//
//	ev := AcquireOrderBookEvent()
//	ev.Instrument = domain.InstrumentFuture
//	// ... dispatch event ...
//	ReleaseOrderBookEvent(ev)  // Return to pool after processing
var orderBookPool = sync.Pool{
	New: func() interface{} {
		return &OrderBookEvent{}
	},
}

// AcquireOrderBookEvent gets an OrderBookEvent from the pool.
// The returned event has zero values and must be initialized.
func AcquireOrderBookEvent() *OrderBookEvent {
	return orderBookPool.Get().(*OrderBookEvent)
}

// ReleaseOrderBookEvent returns an OrderBookEvent to the pool.
// The event is reset to zero values before being pooled.
func ReleaseOrderBookEvent(ev *OrderBookEvent) {
	if ev == nil {
		return
	}
	ev.BaseEvent = BaseEvent{}
	ev.BookSnapshot = BookSnapshot{}
	orderBookPool.Put(ev)
}

// TradeTicksEvent pool
var tradeTicksPool = sync.Pool{
	New: func() interface{} {
		return &TradeTicksEvent{}
	},
}

// AcquireTradeTicksEvent gets a TradeTicksEvent from the pool.
func AcquireTradeTicksEvent() *TradeTicksEvent {
	return tradeTicksPool.Get().(*TradeTicksEvent)
}

// ReleaseTradeTicksEvent returns a TradeTicksEvent to the pool.
func ReleaseTradeTicksEvent(ev *TradeTicksEvent) {
	if ev == nil {
		return
	}
	ev.BaseEvent = BaseEvent{}
	ev.BookSnapshot = BookSnapshot{}
	tradeTicksPool.Put(ev)
}

// Warmup pre-allocates event objects to reduce GC pressure at startup.
func Warmup() {
	const batchSize = 1000

	bookEvs := make([]*OrderBookEvent, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		bookEvs = append(bookEvs, AcquireOrderBookEvent())
	}
	for _, ev := range bookEvs {
		ReleaseOrderBookEvent(ev)
	}

	tickEvs := make([]*TradeTicksEvent, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		tickEvs = append(tickEvs, AcquireTradeTicksEvent())
	}
	for _, ev := range tickEvs {
		ReleaseTradeTicksEvent(ev)
	}
}
