package domain

import (
	"github.com/MCarmody17/ReadyTraderGo/pkg/quant"
)

// RestingOrder is one side's live quote on the exchange.
// A zero ClientOrderID means the side is absent: id 0 is never assigned.
type RestingOrder struct {
	ClientOrderID int64        `json:"client_order_id"`
	Price         quant.Price  `json:"price"`
	Volume        quant.Volume `json:"volume"`
}

// Live reports whether an order currently rests on this side.
func (o RestingOrder) Live() bool {
	return o.ClientOrderID != 0
}
