package trader

import (
	"log/slog"

	"github.com/MCarmody17/ReadyTraderGo/internal/accounting"
	"github.com/MCarmody17/ReadyTraderGo/internal/domain"
	"github.com/MCarmody17/ReadyTraderGo/internal/event"
	"github.com/MCarmody17/ReadyTraderGo/internal/execution"
	"github.com/MCarmody17/ReadyTraderGo/internal/infra"
	"github.com/MCarmody17/ReadyTraderGo/internal/strategy"
	"github.com/MCarmody17/ReadyTraderGo/pkg/quant"
	"github.com/MCarmody17/ReadyTraderGo/pkg/safe"
)

// Config carries the trading constants for one session.
type Config struct {
	TickSize      quant.Price
	BaseTicks     int64
	InventoryUnit int64
	ClipSize      quant.Volume
	PositionLimit quant.Volume
	MinimumBid    quant.Price // aggressive floor for hedge sells
	MaximumAsk    quant.Price // aggressive ceiling for hedge buys, floored to tick
}

// Trader owns the quoting state machine for one session: the per-side
// resting orders, the live-id membership sets, the position and the client
// order id sequence. All handlers run on the single dispatch goroutine;
// state is never touched from anywhere else.
type Trader struct {
	cfg    Config
	engine *strategy.PriceEngine
	policy *strategy.QuotePolicy
	conn   execution.Connection
	ledger *accounting.Ledger
	mets   *infra.Metrics

	nextClientOrderID int64
	position          quant.Volume
	theo              quant.Price

	bid  domain.RestingOrder
	ask  domain.RestingOrder
	bids map[int64]struct{} // live bid ids, for fill classification
	asks map[int64]struct{}

	// Last-issued cancel payload per side, refreshed at the end of every
	// quoting cycle so a cancel never recomputes identity.
	bidCancelID int64
	askCancelID int64

	// Cumulative fees last reported per order, for delta accounting.
	feesByOrder map[int64]int64

	// Exchange feed sequence tracking, per instrument, for stale drops.
	lastBookSeq [2]uint64
	lastTickSeq [2]uint64

	hedgeBuyPrice  quant.Price
	hedgeSellPrice quant.Price

	disconnected bool
}

// New creates a trader for one session. Client order ids start at 1; id 0
// is reserved as "no order".
func New(cfg Config, conn execution.Connection, ledger *accounting.Ledger, mets *infra.Metrics) *Trader {
	return &Trader{
		cfg:    cfg,
		engine: strategy.NewPriceEngine(cfg.TickSize),
		policy: strategy.NewQuotePolicy(strategy.QuoteConfig{
			TickSize:      cfg.TickSize,
			BaseTicks:     cfg.BaseTicks,
			InventoryUnit: cfg.InventoryUnit,
			ClipSize:      cfg.ClipSize,
			PositionLimit: cfg.PositionLimit,
		}),
		conn:           conn,
		ledger:         ledger,
		mets:           mets,
		bids:           make(map[int64]struct{}),
		asks:           make(map[int64]struct{}),
		feesByOrder:    make(map[int64]int64),
		hedgeBuyPrice:  quant.FloorToTick(cfg.MaximumAsk, cfg.TickSize),
		hedgeSellPrice: cfg.MinimumBid,
	}
}

func (t *Trader) nextID() int64 {
	t.nextClientOrderID++
	return t.nextClientOrderID
}

// Position returns the current net inventory in the future.
func (t *Trader) Position() quant.Volume {
	return t.position
}

// Theo returns the last computed fair value, zero before the first one.
func (t *Trader) Theo() quant.Price {
	return t.theo
}

// OnOrderBook runs one quoting cycle: fair value, target quotes, then
// cancel-then-reinsert for each side whose price moved.
func (t *Trader) OnOrderBook(e *event.OrderBookEvent) {
	if t.disconnected {
		return
	}
	if e.SequenceNumber <= t.lastBookSeq[e.Instrument] {
		t.mets.RecordStaleDrop()
		return
	}
	t.lastBookSeq[e.Instrument] = e.SequenceNumber

	if e.Instrument != domain.InstrumentFuture {
		slog.Debug("order book received",
			slog.String("instrument", e.Instrument.String()),
			slog.Uint64("sequence", e.SequenceNumber))
		return
	}

	theo, ok := t.engine.FairValue(e.BidPrices[0], e.AskPrices[0], e.BidVolumes[0], e.AskVolumes[0])
	if !ok {
		slog.Debug("no fair value: book empty on both sides",
			slog.Uint64("sequence", e.SequenceNumber))
		return
	}
	t.theo = theo

	q := t.policy.Quotes(theo, t.position, e.BidPrices[0], e.AskPrices[0])

	// Cancel stale quotes. The next insert block re-quotes the side within
	// the same cycle, so a price change is always cancel-then-reinsert.
	if t.ask.Live() && !q.Ask.Absent() && q.Ask.Price != t.ask.Price {
		t.sendCancel(t.askCancelID)
		t.ask = domain.RestingOrder{}
	}
	if t.bid.Live() && !q.Bid.Absent() && q.Bid.Price != t.bid.Price {
		t.sendCancel(t.bidCancelID)
		t.bid = domain.RestingOrder{}
	}

	if !t.ask.Live() && !q.Ask.Absent() {
		id := t.nextID()
		t.ask = domain.RestingOrder{ClientOrderID: id, Price: q.Ask.Price, Volume: q.Ask.Volume}
		t.asks[id] = struct{}{}
		t.sendInsert(id, domain.SideSell, q.Ask.Price, q.Ask.Volume)
	}
	if !t.bid.Live() && !q.Bid.Absent() {
		id := t.nextID()
		t.bid = domain.RestingOrder{ClientOrderID: id, Price: q.Bid.Price, Volume: q.Bid.Volume}
		t.bids[id] = struct{}{}
		t.sendInsert(id, domain.SideBuy, q.Bid.Price, q.Bid.Volume)
	}

	t.bidCancelID = t.bid.ClientOrderID
	t.askCancelID = t.ask.ClientOrderID
}

// OnTradeTicks is advisory only: the agent takes no trading action on
// trade ticks, it just tracks feed sequence and logs.
func (t *Trader) OnTradeTicks(e *event.TradeTicksEvent) {
	if t.disconnected {
		return
	}
	if e.SequenceNumber <= t.lastTickSeq[e.Instrument] {
		t.mets.RecordStaleDrop()
		return
	}
	t.lastTickSeq[e.Instrument] = e.SequenceNumber

	slog.Debug("trade ticks received",
		slog.String("instrument", e.Instrument.String()),
		slog.Uint64("sequence", e.SequenceNumber),
		slog.Int64("best_ask", int64(e.AskPrices[0])),
		slog.Int64("best_bid", int64(e.BidPrices[0])))
}

// OnOrderFilled updates the position and immediately hedges the fill with
// an aggressively priced order in the ETF. Hedge ids come from the shared
// sequence but are not tracked by the side membership sets.
func (t *Trader) OnOrderFilled(e *event.OrderFilledEvent) {
	if t.disconnected {
		return
	}

	if _, ok := t.asks[e.ClientOrderID]; ok {
		t.position = quant.Volume(safe.Sub(int64(t.position), int64(e.Volume)))
		t.sendHedge(t.nextID(), domain.SideBuy, t.hedgeBuyPrice, e.Volume)
	} else if _, ok := t.bids[e.ClientOrderID]; ok {
		t.position = quant.Volume(safe.Add(int64(t.position), int64(e.Volume)))
		t.sendHedge(t.nextID(), domain.SideSell, t.hedgeSellPrice, e.Volume)
	} else {
		// Not one of ours: a late fill for a retired id, or a hedge fill
		// misdelivered on the quote channel. Log only.
		slog.Debug("fill for unknown order", slog.Int64("id", e.ClientOrderID))
		return
	}

	t.ledger.RecordQuoteFill(e.Price, e.Volume)
	t.mets.RecordOrderFilled()

	slog.Info("order filled",
		slog.Int64("id", e.ClientOrderID),
		slog.Int64("price", int64(e.Price)),
		slog.Int64("volume", int64(e.Volume)),
		slog.Int64("position", int64(t.position)))
}

// OnOrderStatus retires done orders. A zero remaining volume clears the
// side the id belongs to and removes it from both membership sets, so a
// late duplicate status is a no-op.
func (t *Trader) OnOrderStatus(e *event.OrderStatusEvent) {
	if t.disconnected {
		return
	}

	// Fees are cumulative per order; credit only the delta, and only for
	// ids still in a membership set so a replayed terminal status cannot
	// re-book fees already taken when the order was retired.
	_, liveAsk := t.asks[e.ClientOrderID]
	_, liveBid := t.bids[e.ClientOrderID]
	if liveAsk || liveBid {
		if last := t.feesByOrder[e.ClientOrderID]; e.Fees != last {
			t.ledger.AddFees(e.Fees - last)
			t.feesByOrder[e.ClientOrderID] = e.Fees
		}
	}

	if e.RemainingVolume == 0 {
		t.retire(e.ClientOrderID)
	}
}

// retire clears an id from whichever side it occupies. Shared by the
// order-status path and the error path.
func (t *Trader) retire(clientOrderID int64) {
	if clientOrderID == t.ask.ClientOrderID {
		t.ask = domain.RestingOrder{}
	} else if clientOrderID == t.bid.ClientOrderID {
		t.bid = domain.RestingOrder{}
	}
	delete(t.asks, clientOrderID)
	delete(t.bids, clientOrderID)
	delete(t.feesByOrder, clientOrderID)
}

// OnHedgeFilled is observational: hedges are assumed to fully offset the
// triggering quote fill, so no further hedging is derived from them.
func (t *Trader) OnHedgeFilled(e *event.HedgeFilledEvent) {
	if t.disconnected {
		return
	}
	t.ledger.RecordHedgeFill(e.AveragePrice, e.Volume)
	t.mets.RecordHedgeFilled()

	slog.Info("hedge order filled",
		slog.Int64("id", e.ClientOrderID),
		slog.Int64("average_price", int64(e.AveragePrice)),
		slog.Int64("volume", int64(e.Volume)))
}

// OnError treats an order-specific error as an implicit "fully done, zero
// remaining" status, so a rejected order never leaves a side stuck Resting.
func (t *Trader) OnError(e *event.ErrorEvent) {
	if t.disconnected {
		return
	}
	slog.Warn("error message from exchange",
		slog.Int64("id", e.ClientOrderID),
		slog.String("message", e.Message))
	t.mets.RecordError()

	if e.ClientOrderID != 0 {
		t.retire(e.ClientOrderID)
	}
}

// OnDisconnect ends the session. Outstanding orders are abandoned to the
// exchange's own teardown; the core stops issuing commands.
func (t *Trader) OnDisconnect(e *event.DisconnectEvent) {
	if t.disconnected {
		return
	}
	t.disconnected = true

	s := t.ledger.Summary()
	slog.Info("execution connection lost",
		slog.Int64("position", int64(t.position)),
		slog.Int("quote_fills", s.QuoteFills),
		slog.Int("hedge_fills", s.HedgeFills),
		slog.String("traded_value", s.TradedValue.StringFixed(2)),
		slog.String("fees", s.Fees.StringFixed(2)))
}

// Snapshot is a serializable view of the trader state, used for the
// post-mortem dump and external reads.
type Snapshot struct {
	NextClientOrderID int64               `json:"next_client_order_id"`
	Position          int64               `json:"position"`
	Theo              int64               `json:"theo"`
	Bid               domain.RestingOrder `json:"bid"`
	Ask               domain.RestingOrder `json:"ask"`
	LiveBids          int                 `json:"live_bids"`
	LiveAsks          int                 `json:"live_asks"`
	Disconnected      bool                `json:"disconnected"`
}

// Snapshot returns a copy of the trader state.
func (t *Trader) Snapshot() Snapshot {
	return Snapshot{
		NextClientOrderID: t.nextClientOrderID,
		Position:          int64(t.position),
		Theo:              int64(t.theo),
		Bid:               t.bid,
		Ask:               t.ask,
		LiveBids:          len(t.bids),
		LiveAsks:          len(t.asks),
		Disconnected:      t.disconnected,
	}
}

func (t *Trader) sendInsert(id int64, side string, price quant.Price, volume quant.Volume) {
	if err := t.conn.SendInsertOrder(id, side, price, volume, domain.LifespanGoodForDay); err != nil {
		slog.Warn("insert order emit failed", slog.Int64("id", id), slog.Any("error", err))
		t.mets.RecordError()
		return
	}
	t.mets.RecordOrderInserted()
	slog.Info("quoting",
		slog.Int64("id", id),
		slog.String("side", side),
		slog.Int64("price", int64(price)),
		slog.Int64("volume", int64(volume)))
}

func (t *Trader) sendCancel(id int64) {
	if err := t.conn.SendCancelOrder(id); err != nil {
		slog.Warn("cancel order emit failed", slog.Int64("id", id), slog.Any("error", err))
		t.mets.RecordError()
		return
	}
	t.mets.RecordOrderCancelled()
}

func (t *Trader) sendHedge(id int64, side string, price quant.Price, volume quant.Volume) {
	if err := t.conn.SendHedgeOrder(id, side, price, volume); err != nil {
		slog.Warn("hedge order emit failed", slog.Int64("id", id), slog.Any("error", err))
		t.mets.RecordError()
		return
	}
	t.mets.RecordHedgeSent()
	slog.Info("hedging",
		slog.Int64("id", id),
		slog.String("side", side),
		slog.Int64("price", int64(price)),
		slog.Int64("volume", int64(volume)))
}
