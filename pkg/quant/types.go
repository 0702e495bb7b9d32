package quant

import (
	"fmt"
	"sync/atomic"
)

// Price is a limit or trade price in minor currency units (cents).
type Price int64

// Volume is an order or fill size in whole lots.
type Volume int64

// TimeStamp represents Unix Microseconds.
type TimeStamp int64

// PriceScale is the number of minor units per major currency unit.
const PriceScale = 100

// RoundToTick rounds p to the nearest multiple of tick, half up:
// add half a tick, then truncate to tick granularity.
func RoundToTick(p Price, tick Price) Price {
	return (p + tick/2) / tick * tick
}

// FloorToTick truncates p down to tick granularity.
func FloorToTick(p Price, tick Price) Price {
	return p / tick * tick
}

func (p Price) String() string {
	return fmt.Sprintf("$%.2f", float64(p)/PriceScale)
}

func (v Volume) String() string {
	return fmt.Sprintf("%d lots", int64(v))
}

// NextSeq generates the next sequence number atomically.
func NextSeq(ptr *uint64) uint64 {
	return atomic.AddUint64(ptr, 1)
}
