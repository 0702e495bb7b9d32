package trader

import (
	"testing"

	"github.com/MCarmody17/ReadyTraderGo/internal/accounting"
	"github.com/MCarmody17/ReadyTraderGo/internal/domain"
	"github.com/MCarmody17/ReadyTraderGo/internal/event"
	"github.com/MCarmody17/ReadyTraderGo/internal/execution"
	"github.com/MCarmody17/ReadyTraderGo/internal/infra"
	"github.com/MCarmody17/ReadyTraderGo/pkg/quant"
)

func testConfig() Config {
	return Config{
		TickSize:      100,
		BaseTicks:     3,
		InventoryUnit: 50,
		ClipSize:      50,
		PositionLimit: 100,
		MinimumBid:    1,
		MaximumAsk:    2147483647,
	}
}

func newTestTrader() (*Trader, *execution.Recorder) {
	rec := execution.NewRecorder()
	rec.Quiet = true
	tr := New(testConfig(), rec, accounting.NewLedger(), &infra.Metrics{})
	return tr, rec
}

func bookEvent(seq uint64, bidPrice, askPrice quant.Price, bidVol, askVol quant.Volume) *event.OrderBookEvent {
	ev := &event.OrderBookEvent{}
	ev.Instrument = domain.InstrumentFuture
	ev.SequenceNumber = seq
	ev.BidPrices[0] = bidPrice
	ev.AskPrices[0] = askPrice
	ev.BidVolumes[0] = bidVol
	ev.AskVolumes[0] = askVol
	return ev
}

func TestTrader_FirstBookQuotesBothSides(t *testing.T) {
	tr, rec := newTestTrader()

	// theo = (10000*50 + 10200*100)/150 = 10133 -> 10100
	tr.OnOrderBook(bookEvent(1, 10000, 10200, 100, 50))

	inserts := rec.ByKind(execution.CmdInsert)
	if len(inserts) != 2 {
		t.Fatalf("expected 2 inserts, got %d", len(inserts))
	}
	if len(rec.ByKind(execution.CmdCancel)) != 0 {
		t.Fatal("no cancels expected on first quote")
	}

	ask, bid := inserts[0], inserts[1]
	if ask.Side != domain.SideSell || bid.Side != domain.SideBuy {
		t.Fatalf("expected ask then bid, got %s then %s", ask.Side, bid.Side)
	}
	if ask.Price != 10400 || ask.Volume != 50 {
		t.Errorf("ask = %d @ %d, want 50 @ 10400", ask.Volume, ask.Price)
	}
	if bid.Price != 9800 || bid.Volume != 50 {
		t.Errorf("bid = %d @ %d, want 50 @ 9800", bid.Volume, bid.Price)
	}
	if ask.Lifespan != domain.LifespanGoodForDay || bid.Lifespan != domain.LifespanGoodForDay {
		t.Error("quotes must rest good-for-day")
	}
}

func TestTrader_UnchangedPriceIsNoOp(t *testing.T) {
	tr, rec := newTestTrader()

	tr.OnOrderBook(bookEvent(1, 10000, 10200, 100, 50))
	rec.Reset()

	// The same top of book (new sequence) must emit nothing.
	tr.OnOrderBook(bookEvent(2, 10000, 10200, 100, 50))
	if len(rec.Commands) != 0 {
		t.Fatalf("expected 0 commands, got %d: %+v", len(rec.Commands), rec.Commands)
	}
}

func TestTrader_PriceChangeCancelsThenReinserts(t *testing.T) {
	tr, rec := newTestTrader()

	tr.OnOrderBook(bookEvent(1, 10000, 10200, 100, 50))
	firstAskID := rec.ByKind(execution.CmdInsert)[0].ClientOrderID
	firstBidID := rec.ByKind(execution.CmdInsert)[1].ClientOrderID
	rec.Reset()

	// Shift the book a tick: theo moves, both sides re-quote.
	tr.OnOrderBook(bookEvent(2, 10100, 10300, 100, 50))

	cancels := rec.ByKind(execution.CmdCancel)
	inserts := rec.ByKind(execution.CmdInsert)
	if len(cancels) != 2 || len(inserts) != 2 {
		t.Fatalf("expected 2 cancels and 2 inserts, got %d and %d", len(cancels), len(inserts))
	}
	if cancels[0].ClientOrderID != firstAskID || cancels[1].ClientOrderID != firstBidID {
		t.Errorf("cancels target %d,%d, want %d,%d",
			cancels[0].ClientOrderID, cancels[1].ClientOrderID, firstAskID, firstBidID)
	}
	for _, ins := range inserts {
		if ins.ClientOrderID == firstAskID || ins.ClientOrderID == firstBidID {
			t.Error("client order ids must never be reused")
		}
	}
	// Cancel precedes insert for each side within the same cycle.
	if rec.Commands[0].Kind != execution.CmdCancel {
		t.Error("cancel must precede reinsert")
	}
}

func TestTrader_ZeroLiquidityBothSidesEmitsNothing(t *testing.T) {
	tr, rec := newTestTrader()

	tr.OnOrderBook(bookEvent(1, 10000, 10200, 0, 0))
	if len(rec.Commands) != 0 {
		t.Fatalf("expected 0 commands on degenerate book, got %d", len(rec.Commands))
	}
	if tr.Theo() != 0 {
		t.Errorf("no fair value should be recorded, got %d", tr.Theo())
	}
}

func TestTrader_StaleSequenceDropped(t *testing.T) {
	tr, rec := newTestTrader()

	tr.OnOrderBook(bookEvent(5, 10000, 10200, 100, 50))
	rec.Reset()

	// A replayed or reordered snapshot must not trigger a quote cycle.
	tr.OnOrderBook(bookEvent(5, 10100, 10300, 100, 50))
	tr.OnOrderBook(bookEvent(4, 10100, 10300, 100, 50))
	if len(rec.Commands) != 0 {
		t.Fatalf("stale snapshots produced %d commands", len(rec.Commands))
	}
}

func TestTrader_ETFBookDoesNotQuote(t *testing.T) {
	tr, rec := newTestTrader()

	ev := bookEvent(1, 10000, 10200, 100, 50)
	ev.Instrument = domain.InstrumentETF
	tr.OnOrderBook(ev)
	if len(rec.Commands) != 0 {
		t.Fatalf("ETF book update produced %d commands", len(rec.Commands))
	}
}

func TestTrader_AskFillHedgesWithBuy(t *testing.T) {
	tr, rec := newTestTrader()

	tr.OnOrderBook(bookEvent(1, 10000, 10200, 100, 50))
	askID := rec.ByKind(execution.CmdInsert)[0].ClientOrderID
	rec.Reset()

	tr.OnOrderFilled(&event.OrderFilledEvent{ClientOrderID: askID, Price: 10400, Volume: 20})

	if tr.Position() != -20 {
		t.Errorf("position = %d, want -20", tr.Position())
	}
	hedges := rec.ByKind(execution.CmdHedge)
	if len(hedges) != 1 {
		t.Fatalf("expected exactly 1 hedge, got %d", len(hedges))
	}
	h := hedges[0]
	if h.Side != domain.SideBuy {
		t.Errorf("hedge side = %s, want BUY", h.Side)
	}
	if h.Volume != 20 {
		t.Errorf("hedge volume = %d, want 20", h.Volume)
	}
	// Ceiling price floored to tick granularity: 2147483647 -> 2147483600.
	if h.Price != 2147483600 {
		t.Errorf("hedge price = %d, want 2147483600", h.Price)
	}
}

func TestTrader_BidFillHedgesWithSell(t *testing.T) {
	tr, rec := newTestTrader()

	tr.OnOrderBook(bookEvent(1, 10000, 10200, 100, 50))
	bidID := rec.ByKind(execution.CmdInsert)[1].ClientOrderID
	rec.Reset()

	tr.OnOrderFilled(&event.OrderFilledEvent{ClientOrderID: bidID, Price: 9800, Volume: 15})

	if tr.Position() != 15 {
		t.Errorf("position = %d, want 15", tr.Position())
	}
	hedges := rec.ByKind(execution.CmdHedge)
	if len(hedges) != 1 || hedges[0].Side != domain.SideSell || hedges[0].Price != 1 {
		t.Fatalf("expected 1 SELL hedge at the floor price, got %+v", hedges)
	}
}

func TestTrader_UnknownFillIsIgnored(t *testing.T) {
	tr, rec := newTestTrader()

	tr.OnOrderFilled(&event.OrderFilledEvent{ClientOrderID: 999, Price: 10000, Volume: 10})
	if tr.Position() != 0 {
		t.Errorf("position = %d, want 0", tr.Position())
	}
	if len(rec.ByKind(execution.CmdHedge)) != 0 {
		t.Error("no hedge expected for an unknown id")
	}
	if n := tr.ledger.Summary().QuoteFills; n != 0 {
		t.Errorf("quote fills recorded = %d, want 0", n)
	}
	if n := tr.mets.Snapshot().OrdersFilled; n != 0 {
		t.Errorf("fill metric = %d, want 0", n)
	}
}

func TestTrader_StatusZeroRemainingClearsSide(t *testing.T) {
	tr, rec := newTestTrader()

	tr.OnOrderBook(bookEvent(1, 10000, 10200, 100, 50))
	askID := rec.ByKind(execution.CmdInsert)[0].ClientOrderID
	rec.Reset()

	tr.OnOrderStatus(&event.OrderStatusEvent{ClientOrderID: askID, RemainingVolume: 0})

	// The ask is Absent now: the same book re-quotes that side only.
	tr.OnOrderBook(bookEvent(2, 10000, 10200, 100, 50))
	inserts := rec.ByKind(execution.CmdInsert)
	if len(inserts) != 1 || inserts[0].Side != domain.SideSell {
		t.Fatalf("expected exactly one SELL reinsert, got %+v", inserts)
	}
	if len(rec.ByKind(execution.CmdCancel)) != 0 {
		t.Error("no cancel expected for an already-done order")
	}

	// A late duplicate status for the retired id is a no-op.
	rec.Reset()
	tr.OnOrderStatus(&event.OrderStatusEvent{ClientOrderID: askID, RemainingVolume: 0})
	if len(rec.Commands) != 0 {
		t.Error("duplicate status must be a no-op")
	}
}

func TestTrader_FeesCreditedOnceAcrossStatusReplay(t *testing.T) {
	tr, rec := newTestTrader()

	tr.OnOrderBook(bookEvent(1, 10000, 10200, 100, 50))
	askID := rec.ByKind(execution.CmdInsert)[0].ClientOrderID

	// Fees are cumulative per order: 10 cents after the partial, 20 total
	// after the terminal status. Only the deltas reach the ledger.
	tr.OnOrderStatus(&event.OrderStatusEvent{ClientOrderID: askID, FillVolume: 25, RemainingVolume: 25, Fees: 10})
	tr.OnOrderStatus(&event.OrderStatusEvent{ClientOrderID: askID, FillVolume: 50, RemainingVolume: 0, Fees: 20})
	if got := tr.ledger.Summary().Fees.StringFixed(2); got != "0.20" {
		t.Fatalf("fees = %s, want 0.20", got)
	}

	// A replayed terminal status for the retired id must not re-book the
	// cumulative fee.
	tr.OnOrderStatus(&event.OrderStatusEvent{ClientOrderID: askID, FillVolume: 50, RemainingVolume: 0, Fees: 20})
	if got := tr.ledger.Summary().Fees.StringFixed(2); got != "0.20" {
		t.Errorf("fees after replayed status = %s, want 0.20", got)
	}
}

func TestTrader_PartialStatusKeepsSideResting(t *testing.T) {
	tr, rec := newTestTrader()

	tr.OnOrderBook(bookEvent(1, 10000, 10200, 100, 50))
	askID := rec.ByKind(execution.CmdInsert)[0].ClientOrderID
	rec.Reset()

	tr.OnOrderStatus(&event.OrderStatusEvent{ClientOrderID: askID, FillVolume: 10, RemainingVolume: 40})

	tr.OnOrderBook(bookEvent(2, 10000, 10200, 100, 50))
	if len(rec.Commands) != 0 {
		t.Fatalf("partially filled order must keep resting, got %+v", rec.Commands)
	}
}

func TestTrader_ErrorActsAsZeroRemainingStatus(t *testing.T) {
	tr, rec := newTestTrader()

	tr.OnOrderBook(bookEvent(1, 10000, 10200, 100, 50))
	bidID := rec.ByKind(execution.CmdInsert)[1].ClientOrderID
	rec.Reset()

	tr.OnError(&event.ErrorEvent{ClientOrderID: bidID, Message: "order rejected"})

	tr.OnOrderBook(bookEvent(2, 10000, 10200, 100, 50))
	inserts := rec.ByKind(execution.CmdInsert)
	if len(inserts) != 1 || inserts[0].Side != domain.SideBuy {
		t.Fatalf("expected exactly one BUY reinsert after rejection, got %+v", inserts)
	}
}

func TestTrader_ErrorWithoutOrderIDChangesNothing(t *testing.T) {
	tr, rec := newTestTrader()

	tr.OnOrderBook(bookEvent(1, 10000, 10200, 100, 50))
	rec.Reset()

	tr.OnError(&event.ErrorEvent{ClientOrderID: 0, Message: "throttled"})

	tr.OnOrderBook(bookEvent(2, 10000, 10200, 100, 50))
	if len(rec.Commands) != 0 {
		t.Fatalf("expected both sides still resting, got %+v", rec.Commands)
	}
}

func TestTrader_AtMostOneOrderPerSide(t *testing.T) {
	tr, rec := newTestTrader()

	books := []struct {
		seq      uint64
		bid, ask quant.Price
	}{
		{1, 10000, 10200},
		{2, 10100, 10300},
		{3, 10100, 10300},
		{4, 9900, 10100},
		{5, 10000, 10200},
	}
	for _, b := range books {
		tr.OnOrderBook(bookEvent(b.seq, b.bid, b.ask, 100, 50))

		live := 0
		for _, c := range rec.Commands {
			switch c.Kind {
			case execution.CmdInsert:
				live++
			case execution.CmdCancel:
				live--
			}
		}
		if live > 2 {
			t.Fatalf("more than one resting order per side after seq %d", b.seq)
		}
	}
}

func TestTrader_ClientOrderIDsStrictlyIncrease(t *testing.T) {
	tr, rec := newTestTrader()

	tr.OnOrderBook(bookEvent(1, 10000, 10200, 100, 50))
	askID := rec.ByKind(execution.CmdInsert)[0].ClientOrderID
	tr.OnOrderFilled(&event.OrderFilledEvent{ClientOrderID: askID, Price: 10400, Volume: 5})
	tr.OnOrderBook(bookEvent(2, 10100, 10300, 100, 50))

	var last int64
	for _, c := range rec.Commands {
		if c.Kind == execution.CmdCancel {
			continue
		}
		if c.ClientOrderID <= last {
			t.Fatalf("id %d not greater than previous %d", c.ClientOrderID, last)
		}
		last = c.ClientOrderID
	}
}

func TestTrader_DisconnectStopsActivity(t *testing.T) {
	tr, rec := newTestTrader()

	tr.OnOrderBook(bookEvent(1, 10000, 10200, 100, 50))
	askID := rec.ByKind(execution.CmdInsert)[0].ClientOrderID
	rec.Reset()

	tr.OnDisconnect(&event.DisconnectEvent{})

	tr.OnOrderBook(bookEvent(2, 10100, 10300, 100, 50))
	tr.OnOrderFilled(&event.OrderFilledEvent{ClientOrderID: askID, Price: 10400, Volume: 5})
	if len(rec.Commands) != 0 {
		t.Fatalf("core must be inert after disconnect, got %+v", rec.Commands)
	}
	if tr.Position() != 0 {
		t.Errorf("position must not change after disconnect, got %d", tr.Position())
	}
}

func TestTrader_LongInventorySkewsQuotes(t *testing.T) {
	tr, rec := newTestTrader()

	// Build a long position of 80 through bid fills.
	tr.OnOrderBook(bookEvent(1, 10000, 10200, 100, 50))
	bidID := rec.ByKind(execution.CmdInsert)[1].ClientOrderID
	tr.OnOrderFilled(&event.OrderFilledEvent{ClientOrderID: bidID, Price: 9800, Volume: 50})
	tr.OnOrderStatus(&event.OrderStatusEvent{ClientOrderID: bidID, FillVolume: 50, RemainingVolume: 0})

	// Position 50 reshapes the market: ask re-quoted at 10300, fresh bid
	// at 9700. Fill another 30 lots on the new bid.
	tr.OnOrderBook(bookEvent(2, 10000, 10200, 100, 50))
	inserts := rec.ByKind(execution.CmdInsert)
	bidID = inserts[len(inserts)-1].ClientOrderID
	tr.OnOrderFilled(&event.OrderFilledEvent{ClientOrderID: bidID, Price: 9700, Volume: 30})
	tr.OnOrderStatus(&event.OrderStatusEvent{ClientOrderID: bidID, FillVolume: 30, RemainingVolume: 0})

	if tr.Position() != 80 {
		t.Fatalf("position = %d, want 80", tr.Position())
	}
	rec.Reset()

	// theo moves to 10200; position 80 puts the ask 2 ticks out at 80
	// lots and the bid 4 ticks out at 20 lots.
	tr.OnOrderBook(bookEvent(3, 10100, 10300, 100, 50))
	inserts = rec.ByKind(execution.CmdInsert)
	if len(inserts) != 2 {
		t.Fatalf("expected 2 inserts, got %+v", inserts)
	}
	ask, bid := inserts[0], inserts[1]
	if ask.Price != 10400 || ask.Volume != 80 {
		t.Errorf("ask = %d @ %d, want 80 @ 10400", ask.Volume, ask.Price)
	}
	if bid.Price != 9800 || bid.Volume != 20 {
		t.Errorf("bid = %d @ %d, want 20 @ 9800", bid.Volume, bid.Price)
	}
}
