package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/MCarmody17/ReadyTraderGo/internal/event"
	"github.com/MCarmody17/ReadyTraderGo/internal/infra"
	"github.com/MCarmody17/ReadyTraderGo/internal/storage"
	"github.com/MCarmody17/ReadyTraderGo/internal/trader"
)

// Sequencer is the core single-threaded event processor. Exactly one event
// is processed to completion before the next: every trader handler runs on
// the goroutine that calls Run, in the order the gateway emitted events.
type Sequencer struct {
	inbox   chan event.Event
	nextSeq uint64
	journal *storage.Journal
	trader  *trader.Trader
	mets    *infra.Metrics

	mu sync.RWMutex // Used only for external reads (e.g. status logging)
}

// NewSequencer creates a new sequencer instance. The inbox is passed in so
// the gateway can be constructed against the same channel.
func NewSequencer(inbox chan event.Event, journal *storage.Journal, t *trader.Trader, mets *infra.Metrics) *Sequencer {
	return &Sequencer{
		inbox:   inbox,
		nextSeq: 1,
		journal: journal,
		trader:  t,
		mets:    mets,
	}
}

// Inbox returns the event channel. The gateway sends decoded events here.
func (s *Sequencer) Inbox() chan<- event.Event {
	return s.inbox
}

// Run starts the main event loop. This MUST be run in a single goroutine.
func (s *Sequencer) Run(ctx context.Context) {
	slog.Info("Sequencer started (Single-Thread Hotpath)")

	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			s.DumpState("panic_dump.json")
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Sequencer stopping...")
			return
		case ev := <-s.inbox:
			s.processEvent(ev)
		}
	}
}

func (s *Sequencer) processEvent(ev event.Event) {
	start := time.Now()

	// 1. Sequence Gap Check (Halt Policy). The lifecycle bookkeeping is
	// only correct when events are applied in gateway emission order.
	if ev.GetSeq() != s.nextSeq {
		panic(fmt.Sprintf("SEQUENCE_GAP_DETECTED: expected %d, got %d", s.nextSeq, ev.GetSeq()))
	}

	// 2. Journal-first: persist before applying.
	if s.journal != nil {
		if err := s.journal.SaveEvent(ev); err != nil {
			panic(fmt.Sprintf("PERSISTENCE_FAILURE: %v", err))
		}
	}

	// 3. Logic Dispatch
	s.mu.Lock()
	switch e := ev.(type) {
	case *event.OrderBookEvent:
		s.trader.OnOrderBook(e)
		event.ReleaseOrderBookEvent(e)
	case *event.TradeTicksEvent:
		s.trader.OnTradeTicks(e)
		event.ReleaseTradeTicksEvent(e)
	case *event.OrderFilledEvent:
		s.trader.OnOrderFilled(e)
		s.journalFill(e.ClientOrderID, int64(e.Price), int64(e.Volume), false, int64(e.Ts))
	case *event.OrderStatusEvent:
		s.trader.OnOrderStatus(e)
	case *event.HedgeFilledEvent:
		s.trader.OnHedgeFilled(e)
		s.journalFill(e.ClientOrderID, int64(e.AveragePrice), int64(e.Volume), true, int64(e.Ts))
	case *event.ErrorEvent:
		s.trader.OnError(e)
	case *event.DisconnectEvent:
		s.trader.OnDisconnect(e)
	default:
		slog.Warn("Unknown event type", slog.Any("type", ev.GetType()))
	}
	s.mu.Unlock()

	// 4. Increment Sequence
	s.nextSeq++

	if s.mets != nil {
		s.mets.RecordEvent(time.Since(start).Nanoseconds())
	}
}

func (s *Sequencer) journalFill(id, price, volume int64, hedge bool, ts int64) {
	if s.journal == nil {
		return
	}
	if err := s.journal.SaveFill(id, price, volume, hedge, ts); err != nil {
		slog.Error("Failed to journal fill", slog.Int64("id", id), slog.Any("error", err))
	}
}

// TraderState returns a snapshot of the trader state (external read).
func (s *Sequencer) TraderState() trader.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trader.Snapshot()
}

// DumpState writes the trader state to a file (for post-mortem).
func (s *Sequencer) DumpState(filename string) {
	slog.Info("Dumping internal state...", slog.String("file", filename))

	data := struct {
		NextSeq uint64          `json:"next_seq"`
		Trader  trader.Snapshot `json:"trader"`
	}{
		NextSeq: s.nextSeq,
		Trader:  s.trader.Snapshot(),
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	if err := os.WriteFile(filename, b, 0644); err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}
