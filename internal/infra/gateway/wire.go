package gateway

// JSON envelopes exchanged with the exchange simulator. One frame per
// websocket message; Type selects which fields are meaningful.

const (
	// Inbound frame types
	frameOrderBook   = "order_book_update"
	frameTradeTicks  = "trade_ticks"
	frameOrderFilled = "order_filled"
	frameOrderStatus = "order_status"
	frameHedgeFilled = "hedge_filled"
	frameError       = "error"

	// Outbound frame types
	frameLogin       = "login"
	frameInsertOrder = "insert_order"
	frameCancelOrder = "cancel_order"
	frameHedgeOrder  = "hedge_order"
)

// inboundFrame is the decoded envelope for messages from the exchange.
type inboundFrame struct {
	Type string `json:"type"`

	// Market data
	Instrument     int     `json:"instrument,omitempty"`
	SequenceNumber uint64  `json:"sequence_number,omitempty"`
	AskPrices      []int64 `json:"ask_prices,omitempty"`
	AskVolumes     []int64 `json:"ask_volumes,omitempty"`
	BidPrices      []int64 `json:"bid_prices,omitempty"`
	BidVolumes     []int64 `json:"bid_volumes,omitempty"`

	// Order lifecycle
	ClientOrderID   int64  `json:"client_order_id,omitempty"`
	Price           int64  `json:"price,omitempty"`
	Volume          int64  `json:"volume,omitempty"`
	FillVolume      int64  `json:"fill_volume,omitempty"`
	RemainingVolume int64  `json:"remaining_volume,omitempty"`
	Fees            int64  `json:"fees,omitempty"`
	AveragePrice    int64  `json:"average_price,omitempty"`
	Message         string `json:"message,omitempty"`
}

// outboundFrame is the envelope for commands sent to the exchange.
type outboundFrame struct {
	Type string `json:"type"`

	TeamName string `json:"team_name,omitempty"`
	Secret   string `json:"secret,omitempty"`

	ClientOrderID int64  `json:"client_order_id,omitempty"`
	Side          string `json:"side,omitempty"`
	Price         int64  `json:"price,omitempty"`
	Volume        int64  `json:"volume,omitempty"`
	Lifespan      string `json:"lifespan,omitempty"`
}
