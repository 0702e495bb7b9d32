package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MCarmody17/ReadyTraderGo/internal/domain"
	"github.com/MCarmody17/ReadyTraderGo/internal/event"
	"github.com/MCarmody17/ReadyTraderGo/internal/infra"
)

var testUpgrader = websocket.Upgrader{}

// newTestExchange serves one websocket session per connection and hands it
// to handler after the upgrade.
func newTestExchange(t *testing.T, handler func(*websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newTestWorker(url string) (*Worker, chan event.Event) {
	cfg := &infra.Config{}
	cfg.Exchange.WSURL = url
	cfg.Exchange.TeamName = "TraderGo"
	cfg.Exchange.Secret = "secret"
	inbox := make(chan event.Event, 64)
	seq := uint64(0)
	return NewWorker(cfg, inbox, &seq, &infra.Metrics{}), inbox
}

func awaitEvent(t *testing.T, inbox chan event.Event) event.Event {
	t.Helper()
	select {
	case ev := <-inbox:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no event from gateway within 5s")
		return nil
	}
}

func TestWorker_SendBeforeConnectNotConnected(t *testing.T) {
	w, _ := newTestWorker("ws://127.0.0.1:1/execution")

	err := w.SendCancelOrder(1)
	if !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
}

func TestWorker_DisconnectDuringActiveReadIsClean(t *testing.T) {
	frame := []byte(`{"type":"order_book_update","instrument":0,"sequence_number":1,` +
		`"ask_prices":[10200],"ask_volumes":[50],"bid_prices":[10000],"bid_volumes":[100]}`)

	url := newTestExchange(t, func(conn *websocket.Conn) {
		if _, _, err := conn.ReadMessage(); err != nil { // login
			return
		}
		for {
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	})

	w, inbox := newTestWorker(url)
	if err := w.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	// First decoded event proves the read loop is live mid-stream.
	ev := awaitEvent(t, inbox)
	if _, ok := ev.(*event.OrderBookEvent); !ok {
		t.Fatalf("first event = %T, want *event.OrderBookEvent", ev)
	}

	// Tearing the session down while reads are in flight must terminate
	// both loops without touching a closed connection.
	w.Disconnect()
	if w.IsConnected() {
		t.Error("worker still reports connected after Disconnect")
	}
	if err := w.SendInsertOrder(1, domain.SideBuy, 10000, 10, domain.LifespanGoodForDay); !errors.Is(err, domain.ErrSessionClosed) {
		t.Errorf("err = %v, want ErrSessionClosed", err)
	}
}

func TestWorker_ServerDropEndsSession(t *testing.T) {
	url := newTestExchange(t, func(conn *websocket.Conn) {
		conn.ReadMessage() // login, then drop the session
	})

	w, inbox := newTestWorker(url)
	if err := w.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer w.Disconnect()

	ev := awaitEvent(t, inbox)
	if _, ok := ev.(*event.DisconnectEvent); !ok {
		t.Fatalf("event = %T, want *event.DisconnectEvent", ev)
	}

	// The session is terminal: every subsequent command is refused.
	if err := w.SendHedgeOrder(2, domain.SideSell, 1, 10); !errors.Is(err, domain.ErrSessionClosed) {
		t.Errorf("err = %v, want ErrSessionClosed", err)
	}
}
