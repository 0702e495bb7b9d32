package accounting

import (
	"github.com/shopspring/decimal"

	"github.com/MCarmody17/ReadyTraderGo/pkg/quant"
)

// Ledger accumulates session trade statistics: quote fills, hedge fills and
// exchange fees. It is owned by the dispatch goroutine, so no locking.
// Monetary sums are kept as decimal dollars because traded value can exceed
// what int64 cents comfortably expresses once multiplied by volume.
type Ledger struct {
	quoteFills  int
	hedgeFills  int
	quoteVolume quant.Volume
	hedgeVolume quant.Volume

	tradedValue decimal.Decimal // quote fills, price*volume
	hedgeValue  decimal.Decimal // hedge fills, avgPrice*volume
	fees        decimal.Decimal // signed: negative means we earned rebates
}

// NewLedger creates an empty session ledger.
func NewLedger() *Ledger {
	return &Ledger{
		tradedValue: decimal.Zero,
		hedgeValue:  decimal.Zero,
		fees:        decimal.Zero,
	}
}

// cents converts an integer minor-currency amount to decimal dollars.
func cents(v int64) decimal.Decimal {
	return decimal.New(v, -2)
}

// RecordQuoteFill accounts a fill of one of our resting quotes.
func (l *Ledger) RecordQuoteFill(price quant.Price, volume quant.Volume) {
	l.quoteFills++
	l.quoteVolume += volume
	l.tradedValue = l.tradedValue.Add(cents(int64(price)).Mul(decimal.NewFromInt(int64(volume))))
}

// RecordHedgeFill accounts a fill of one of our hedge orders.
func (l *Ledger) RecordHedgeFill(averagePrice quant.Price, volume quant.Volume) {
	l.hedgeFills++
	l.hedgeVolume += volume
	l.hedgeValue = l.hedgeValue.Add(cents(int64(averagePrice)).Mul(decimal.NewFromInt(int64(volume))))
}

// AddFees accounts the cumulative-fee delta reported by an order status.
func (l *Ledger) AddFees(feesCents int64) {
	l.fees = l.fees.Add(cents(feesCents))
}

// Summary is a point-in-time view of the session ledger.
type Summary struct {
	QuoteFills  int
	HedgeFills  int
	QuoteVolume quant.Volume
	HedgeVolume quant.Volume
	TradedValue decimal.Decimal
	HedgeValue  decimal.Decimal
	Fees        decimal.Decimal
}

// Summary returns the current totals.
func (l *Ledger) Summary() Summary {
	return Summary{
		QuoteFills:  l.quoteFills,
		HedgeFills:  l.hedgeFills,
		QuoteVolume: l.quoteVolume,
		HedgeVolume: l.hedgeVolume,
		TradedValue: l.tradedValue,
		HedgeValue:  l.hedgeValue,
		Fees:        l.fees,
	}
}

// AverageHedgePrice returns the volume-weighted average hedge fill price in
// dollars, or zero when no hedge has filled.
func (l *Ledger) AverageHedgePrice() decimal.Decimal {
	if l.hedgeVolume == 0 {
		return decimal.Zero
	}
	return l.hedgeValue.Div(decimal.NewFromInt(int64(l.hedgeVolume)))
}
