package execution

import (
	"github.com/MCarmody17/ReadyTraderGo/pkg/quant"
)

// Connection is the outbound half of the execution link. All calls are
// emit-and-continue: the core never waits for an acknowledgement, and a
// returned error only means the command could not be written.
type Connection interface {
	// SendInsertOrder submits a new limit order.
	SendInsertOrder(clientOrderID int64, side string, price quant.Price, volume quant.Volume, lifespan string) error

	// SendCancelOrder requests cancellation of a resting order by id.
	SendCancelOrder(clientOrderID int64) error

	// SendHedgeOrder submits a liquidity-taking order in the correlated
	// instrument to offset inventory.
	SendHedgeOrder(clientOrderID int64, side string, price quant.Price, volume quant.Volume) error
}
