package strategy

import (
	"github.com/MCarmody17/ReadyTraderGo/pkg/quant"
	"github.com/MCarmody17/ReadyTraderGo/pkg/safe"
)

// PriceEngine derives a fair-value estimate from the top of the future's
// order book. It is stateless and deterministic.
type PriceEngine struct {
	tick quant.Price
}

// NewPriceEngine creates a price engine for the given tick size.
func NewPriceEngine(tick quant.Price) *PriceEngine {
	if tick <= 0 {
		panic("PriceEngine: tick size must be positive")
	}
	return &PriceEngine{tick: tick}
}

// FairValue computes the volume-weighted mid price, weighting each side's
// best price by the opposite side's resting volume, then rounds half-up to
// the nearest tick.
//
// When both best volumes are zero there is no liquidity to weight by and no
// fair value exists; ok is false and the caller must skip the quote cycle.
func (e *PriceEngine) FairValue(bidPrice, askPrice quant.Price, bidVolume, askVolume quant.Volume) (theo quant.Price, ok bool) {
	total := int64(bidVolume) + int64(askVolume)
	if total == 0 {
		return 0, false
	}

	weighted := safe.Add(
		safe.Mul(int64(bidPrice), int64(askVolume)),
		safe.Mul(int64(askPrice), int64(bidVolume)),
	)
	raw := quant.Price(weighted / total)

	return quant.RoundToTick(raw, e.tick), true
}
