package domain

// Instrument identifies one of the two correlated products traded by the
// agent: the future we quote in and the ETF it tracks.
type Instrument uint8

const (
	InstrumentFuture Instrument = iota
	InstrumentETF
)

func (i Instrument) String() string {
	switch i {
	case InstrumentFuture:
		return "FUTURE"
	case InstrumentETF:
		return "ETF"
	default:
		return "UNKNOWN"
	}
}

// TopLevels is the fixed order-book depth reported by the exchange.
const TopLevels = 5

const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	LifespanGoodForDay  = "GOOD_FOR_DAY"
	LifespanFillAndKill = "FILL_AND_KILL"
)
