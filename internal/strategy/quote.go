package strategy

import (
	"github.com/MCarmody17/ReadyTraderGo/pkg/quant"
)

// QuoteConfig carries the fixed quoting constants.
type QuoteConfig struct {
	TickSize      quant.Price  // minimum price increment
	BaseTicks     int64        // unskewed distance from fair value, in ticks
	InventoryUnit int64        // lots of position per one tick of skew
	ClipSize      quant.Volume // base quote size per side
	PositionLimit quant.Volume // hard inventory bound
}

// Quote is one side of a desired two-sided market. A zero price means the
// side should not be quoted.
type Quote struct {
	Price  quant.Price
	Volume quant.Volume
}

// Absent reports whether this side is suppressed.
func (q Quote) Absent() bool {
	return q.Price == 0
}

// DesiredQuotes is the policy's target market for one quoting cycle.
type DesiredQuotes struct {
	Bid Quote
	Ask Quote
}

// QuotePolicy turns a fair value and the current inventory into a target
// bid and ask. It is stateless: every cycle is computed fresh.
type QuotePolicy struct {
	cfg QuoteConfig
}

// NewQuotePolicy creates a quote policy.
func NewQuotePolicy(cfg QuoteConfig) *QuotePolicy {
	if cfg.TickSize <= 0 || cfg.BaseTicks <= 0 || cfg.InventoryUnit <= 0 || cfg.ClipSize <= 0 {
		panic("QuotePolicy: quoting constants must be positive")
	}
	return &QuotePolicy{cfg: cfg}
}

// Quotes computes the target market around theo for the given position.
//
// Skew: the side that would grow inventory is quoted further from fair
// value, the side that sheds it closer. The linear skew is clamped so a
// side never quotes nearer than one tick from theo (unclamped, a large
// position would flip the sign and quote through fair value).
//
// Sizing: beyond one clip of inventory the de-risking side grows and the
// risk-adding side shrinks by the excess. A size that would go negative
// suppresses the side instead.
//
// A side is also suppressed when the market itself has no resting
// liquidity on that side (best price zero), or when inserting it could
// push inventory past the position limit.
func (p *QuotePolicy) Quotes(theo quant.Price, position quant.Volume, bestBid, bestAsk quant.Price) DesiredQuotes {
	pos := int64(position)
	clip := int64(p.cfg.ClipSize)

	bidTicks := p.cfg.BaseTicks + pos/p.cfg.InventoryUnit
	askTicks := p.cfg.BaseTicks - pos/p.cfg.InventoryUnit
	if bidTicks < 1 {
		bidTicks = 1
	}
	if askTicks < 1 {
		askTicks = 1
	}

	bidVolume := clip
	askVolume := clip
	if pos > clip {
		diff := pos - clip
		bidVolume = clip - diff
		askVolume = clip + diff
	}
	if pos < -clip {
		diff := -pos - clip
		askVolume = clip - diff
		bidVolume = clip + diff
	}

	var q DesiredQuotes
	if bestBid != 0 && bidVolume > 0 && position < p.cfg.PositionLimit {
		q.Bid = Quote{
			Price:  theo - quant.Price(bidTicks)*p.cfg.TickSize,
			Volume: quant.Volume(bidVolume),
		}
	}
	if bestAsk != 0 && askVolume > 0 && position > -p.cfg.PositionLimit {
		q.Ask = Quote{
			Price:  theo + quant.Price(askTicks)*p.cfg.TickSize,
			Volume: quant.Volume(askVolume),
		}
	}
	return q
}
