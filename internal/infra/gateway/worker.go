package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MCarmody17/ReadyTraderGo/internal/domain"
	"github.com/MCarmody17/ReadyTraderGo/internal/event"
	"github.com/MCarmody17/ReadyTraderGo/internal/execution"
	"github.com/MCarmody17/ReadyTraderGo/internal/infra"
	"github.com/MCarmody17/ReadyTraderGo/pkg/quant"
)

const (
	maxRetries       = 10
	handshakeTimeout = 10 * time.Second
	readTimeout      = 60 * time.Second
)

// Worker owns the websocket session with the exchange simulator. Inbound
// frames are decoded into events and delivered to the sequencer inbox in
// arrival order; the Worker is also the outbound execution.Connection.
//
// A session is terminal: the dial is retried with backoff up to maxRetries
// before the first successful login, but once an established session drops
// the Worker emits a DisconnectEvent and stops. After either ending, every
// outbound command fails with ErrSessionClosed.
type Worker struct {
	url      string
	teamName string
	secret   string
	inbox    chan<- event.Event
	seq      *uint64
	mets     *infra.Metrics

	conn         *websocket.Conn
	mu           sync.RWMutex
	writeMu      sync.Mutex
	connected    bool
	sessionEnded bool
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewWorker creates a gateway worker for one exchange session.
func NewWorker(cfg *infra.Config, inbox chan<- event.Event, seq *uint64, mets *infra.Metrics) *Worker {
	return &Worker{
		url:      cfg.Exchange.WSURL,
		teamName: cfg.Exchange.TeamName,
		secret:   cfg.Exchange.Secret,
		inbox:    inbox,
		seq:      seq,
		mets:     mets,
	}
}

// Connect starts the session in the background.
func (w *Worker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.sessionLoop(ctx)
	return nil
}

func (w *Worker) sessionLoop(ctx context.Context) {
	defer w.wg.Done()

	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			if !domain.IsRetriable(err) {
				slog.Error("Exchange session unrecoverable", slog.Any("error", err))
				w.endSession(ctx)
				return
			}
			delay := infra.CalculateBackoff(retryCount)
			retryCount++
			if retryCount > maxRetries {
				slog.Error("Exchange unreachable, giving up",
					slog.Any("error", domain.ErrConnectionFailed),
					slog.Int("attempts", retryCount))
				w.endSession(ctx)
				return
			}
			slog.Warn("Exchange connection failed", slog.Any("error", err), slog.Int("retry", retryCount))
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		w.readLoop(ctx)

		// The session dropped after login: terminal, no reconnect.
		w.endSession(ctx)
		return
	}
}

// endSession marks the session terminal, so outbound commands fail with
// ErrSessionClosed, and notifies the core.
func (w *Worker) endSession(ctx context.Context) {
	w.mu.Lock()
	w.sessionEnded = true
	w.mu.Unlock()
	w.emit(ctx, &event.DisconnectEvent{BaseEvent: w.stamp()})
}

func (w *Worker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	header := make(http.Header)

	conn, _, err := dialer.DialContext(ctx, w.url, header)
	if err != nil {
		return domain.NewNetworkError("dial", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()

	if err := w.login(); err != nil {
		w.closeConnection()
		return domain.NewNetworkError("login", err)
	}

	w.mets.SetConnected(true)
	slog.Info("Exchange connected", slog.String("url", w.url), slog.String("team", w.teamName))
	return nil
}

func (w *Worker) login() error {
	frame := outboundFrame{
		Type:     frameLogin,
		TeamName: w.teamName,
		Secret:   w.secret,
	}
	b, _ := json.Marshal(frame)
	return w.threadSafeWrite(websocket.TextMessage, b)
}

func (w *Worker) threadSafeWrite(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.sessionEnded {
		return domain.ErrSessionClosed
	}
	if w.conn == nil {
		return domain.ErrNotConnected
	}
	return w.conn.WriteMessage(msgType, data)
}

func (w *Worker) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.mu.RLock()
		conn := w.conn
		w.mu.RUnlock()

		if conn == nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		_, msg, err := conn.ReadMessage()
		if err != nil {
			w.closeConnection()
			return
		}
		w.handleMessage(ctx, msg)
	}
}

func (w *Worker) stamp() event.BaseEvent {
	return event.BaseEvent{
		Seq: quant.NextSeq(w.seq),
		Ts:  quant.TimeStamp(time.Now().UnixMicro()),
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg []byte) {
	var f inboundFrame
	if err := json.Unmarshal(msg, &f); err != nil {
		slog.Warn("Undecodable frame from exchange", slog.Any("error", err))
		return
	}

	switch f.Type {
	case frameOrderBook, frameTradeTicks:
		if f.Instrument != int(domain.InstrumentFuture) && f.Instrument != int(domain.InstrumentETF) {
			slog.Warn("Unknown instrument in market data frame", slog.Int("instrument", f.Instrument))
			return
		}
	}

	switch f.Type {
	case frameOrderBook:
		ev := event.AcquireOrderBookEvent()
		ev.BaseEvent = w.stamp()
		ev.BookSnapshot = decodeSnapshot(&f)
		w.emit(ctx, ev)
	case frameTradeTicks:
		ev := event.AcquireTradeTicksEvent()
		ev.BaseEvent = w.stamp()
		ev.BookSnapshot = decodeSnapshot(&f)
		w.emit(ctx, ev)
	case frameOrderFilled:
		w.emit(ctx, &event.OrderFilledEvent{
			BaseEvent:     w.stamp(),
			ClientOrderID: f.ClientOrderID,
			Price:         quant.Price(f.Price),
			Volume:        quant.Volume(f.Volume),
		})
	case frameOrderStatus:
		w.emit(ctx, &event.OrderStatusEvent{
			BaseEvent:       w.stamp(),
			ClientOrderID:   f.ClientOrderID,
			FillVolume:      quant.Volume(f.FillVolume),
			RemainingVolume: quant.Volume(f.RemainingVolume),
			Fees:            f.Fees,
		})
	case frameHedgeFilled:
		w.emit(ctx, &event.HedgeFilledEvent{
			BaseEvent:     w.stamp(),
			ClientOrderID: f.ClientOrderID,
			AveragePrice:  quant.Price(f.AveragePrice),
			Volume:        quant.Volume(f.Volume),
		})
	case frameError:
		w.emit(ctx, &event.ErrorEvent{
			BaseEvent:     w.stamp(),
			ClientOrderID: f.ClientOrderID,
			Message:       f.Message,
		})
	default:
		slog.Warn("Unknown frame type", slog.String("type", f.Type))
	}
}

func decodeSnapshot(f *inboundFrame) event.BookSnapshot {
	snap := event.BookSnapshot{
		Instrument:     domain.Instrument(f.Instrument),
		SequenceNumber: f.SequenceNumber,
	}
	for i := 0; i < domain.TopLevels; i++ {
		if i < len(f.AskPrices) {
			snap.AskPrices[i] = quant.Price(f.AskPrices[i])
		}
		if i < len(f.AskVolumes) {
			snap.AskVolumes[i] = quant.Volume(f.AskVolumes[i])
		}
		if i < len(f.BidPrices) {
			snap.BidPrices[i] = quant.Price(f.BidPrices[i])
		}
		if i < len(f.BidVolumes) {
			snap.BidVolumes[i] = quant.Volume(f.BidVolumes[i])
		}
	}
	return snap
}

// emit blocks until the sequencer accepts the event. Dropping here would
// open a sequence gap and halt the core, so backpressure is the only
// correct behavior.
func (w *Worker) emit(ctx context.Context, ev event.Event) {
	select {
	case w.inbox <- ev:
	case <-ctx.Done():
	}
}

// SendInsertOrder submits a new limit order.
func (w *Worker) SendInsertOrder(clientOrderID int64, side string, price quant.Price, volume quant.Volume, lifespan string) error {
	frame := outboundFrame{
		Type:          frameInsertOrder,
		ClientOrderID: clientOrderID,
		Side:          side,
		Price:         int64(price),
		Volume:        int64(volume),
		Lifespan:      lifespan,
	}
	return w.sendFrame(&frame)
}

// SendCancelOrder requests cancellation of a resting order.
func (w *Worker) SendCancelOrder(clientOrderID int64) error {
	frame := outboundFrame{
		Type:          frameCancelOrder,
		ClientOrderID: clientOrderID,
	}
	return w.sendFrame(&frame)
}

// SendHedgeOrder submits a hedge order in the correlated instrument.
func (w *Worker) SendHedgeOrder(clientOrderID int64, side string, price quant.Price, volume quant.Volume) error {
	frame := outboundFrame{
		Type:          frameHedgeOrder,
		ClientOrderID: clientOrderID,
		Side:          side,
		Price:         int64(price),
		Volume:        int64(volume),
	}
	return w.sendFrame(&frame)
}

func (w *Worker) sendFrame(f *outboundFrame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", f.Type, err)
	}
	if err := w.threadSafeWrite(websocket.TextMessage, b); err != nil {
		if errors.Is(err, domain.ErrSessionClosed) || errors.Is(err, domain.ErrNotConnected) {
			return err
		}
		return domain.NewFatalNetworkError("write", err)
	}
	return nil
}

func (w *Worker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	w.connected = false
	w.mets.SetConnected(false)
}

// IsConnected reports whether the session is up.
func (w *Worker) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// Disconnect tears the session down and waits for the loops to exit.
func (w *Worker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Lock()
	w.sessionEnded = true
	w.mu.Unlock()
	w.closeConnection()
	w.wg.Wait()
}

var _ execution.Connection = (*Worker)(nil)
