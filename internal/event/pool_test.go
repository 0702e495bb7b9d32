package event

import (
	"testing"

	"github.com/MCarmody17/ReadyTraderGo/internal/domain"
)

func TestOrderBookPool_ResetOnRelease(t *testing.T) {
	ev := AcquireOrderBookEvent()
	ev.Seq = 9
	ev.Instrument = domain.InstrumentETF
	ev.SequenceNumber = 42
	ev.BidPrices[0] = 10000

	ReleaseOrderBookEvent(ev)

	got := AcquireOrderBookEvent()
	defer ReleaseOrderBookEvent(got)
	if got.Seq != 0 || got.SequenceNumber != 0 || got.BidPrices[0] != 0 {
		t.Errorf("pooled event not reset: %+v", got)
	}
}

func TestReleaseNilIsSafe(t *testing.T) {
	ReleaseOrderBookEvent(nil)
	ReleaseTradeTicksEvent(nil)
}

func TestEventTypes(t *testing.T) {
	tests := []struct {
		ev   Event
		want Type
	}{
		{OrderBookEvent{}, EvOrderBook},
		{TradeTicksEvent{}, EvTradeTicks},
		{OrderFilledEvent{}, EvOrderFilled},
		{OrderStatusEvent{}, EvOrderStatus},
		{HedgeFilledEvent{}, EvHedgeFilled},
		{ErrorEvent{}, EvError},
		{DisconnectEvent{}, EvDisconnect},
	}
	for _, tt := range tests {
		if got := tt.ev.GetType(); got != tt.want {
			t.Errorf("GetType() = %v, want %v", got, tt.want)
		}
	}
}
