package event

import (
	"github.com/MCarmody17/ReadyTraderGo/internal/domain"
	"github.com/MCarmody17/ReadyTraderGo/pkg/quant"
)

// Type defines the type of event.
type Type uint16

const (
	EvOrderBook Type = iota + 1
	EvTradeTicks
	EvOrderFilled
	EvOrderStatus
	EvHedgeFilled
	EvError
	EvDisconnect
)

func (t Type) String() string {
	switch t {
	case EvOrderBook:
		return "ORDER_BOOK"
	case EvTradeTicks:
		return "TRADE_TICKS"
	case EvOrderFilled:
		return "ORDER_FILLED"
	case EvOrderStatus:
		return "ORDER_STATUS"
	case EvHedgeFilled:
		return "HEDGE_FILLED"
	case EvError:
		return "ERROR"
	case EvDisconnect:
		return "DISCONNECT"
	default:
		return "UNKNOWN"
	}
}

// Event is the interface for all sequencer events.
type Event interface {
	GetSeq() uint64
	GetTs() quant.TimeStamp
	GetType() Type
}

// BaseEvent contains common fields for all events. Seq is the internal
// dispatch sequence stamped by the gateway, not the exchange feed number.
type BaseEvent struct {
	Seq uint64          `json:"seq"`
	Ts  quant.TimeStamp `json:"ts"`
}

func (e BaseEvent) GetSeq() uint64         { return e.Seq }
func (e BaseEvent) GetTs() quant.TimeStamp { return e.Ts }

// BookSnapshot is a fixed-depth top-of-book view, index 0 best. It is shared
// by order-book and trade-tick events and is immutable per event: the core
// must not retain it beyond the handling of that event.
type BookSnapshot struct {
	Instrument     domain.Instrument              `json:"instrument"`
	SequenceNumber uint64                         `json:"sequence_number"`
	AskPrices      [domain.TopLevels]quant.Price  `json:"ask_prices"`
	AskVolumes     [domain.TopLevels]quant.Volume `json:"ask_volumes"`
	BidPrices      [domain.TopLevels]quant.Price  `json:"bid_prices"`
	BidVolumes     [domain.TopLevels]quant.Volume `json:"bid_volumes"`
}

// OrderBookEvent reports the periodic state of an instrument's order book.
type OrderBookEvent struct {
	BaseEvent
	BookSnapshot
}

func (e OrderBookEvent) GetType() Type { return EvOrderBook }

// TradeTicksEvent reports recent trading activity, aggregated per price level.
type TradeTicksEvent struct {
	BaseEvent
	BookSnapshot
}

func (e TradeTicksEvent) GetType() Type { return EvTradeTicks }

// OrderFilledEvent reports a partial or full fill of one of our orders.
type OrderFilledEvent struct {
	BaseEvent
	ClientOrderID int64        `json:"client_order_id"`
	Price         quant.Price  `json:"price"`
	Volume        quant.Volume `json:"volume"`
}

func (e OrderFilledEvent) GetType() Type { return EvOrderFilled }

// OrderStatusEvent reports the lifecycle status of one of our orders.
// RemainingVolume of zero means the order is done (filled or cancelled).
// Fees can be negative: makers receive fees, takers pay them.
type OrderStatusEvent struct {
	BaseEvent
	ClientOrderID   int64        `json:"client_order_id"`
	FillVolume      quant.Volume `json:"fill_volume"`
	RemainingVolume quant.Volume `json:"remaining_volume"`
	Fees            int64        `json:"fees"`
}

func (e OrderStatusEvent) GetType() Type { return EvOrderStatus }

// HedgeFilledEvent reports a fill of one of our hedge orders. AveragePrice
// may be better than the hedge order's limit. Price and volume are both
// zero when the hedge order was unsuccessful.
type HedgeFilledEvent struct {
	BaseEvent
	ClientOrderID int64        `json:"client_order_id"`
	AveragePrice  quant.Price  `json:"average_price"`
	Volume        quant.Volume `json:"volume"`
}

func (e HedgeFilledEvent) GetType() Type { return EvHedgeFilled }

// ErrorEvent reports an exchange-detected error. A zero ClientOrderID means
// no specific order is implicated.
type ErrorEvent struct {
	BaseEvent
	ClientOrderID int64  `json:"client_order_id"`
	Message       string `json:"message"`
}

func (e ErrorEvent) GetType() Type { return EvError }

// DisconnectEvent reports loss of the execution connection. Terminal for
// the session: no further core activity follows it.
type DisconnectEvent struct {
	BaseEvent
}

func (e DisconnectEvent) GetType() Type { return EvDisconnect }
