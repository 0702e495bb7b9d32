package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/MCarmody17/ReadyTraderGo/internal/accounting"
	"github.com/MCarmody17/ReadyTraderGo/internal/app"
	"github.com/MCarmody17/ReadyTraderGo/internal/engine"
	"github.com/MCarmody17/ReadyTraderGo/internal/event"
	"github.com/MCarmody17/ReadyTraderGo/internal/infra"
	"github.com/MCarmody17/ReadyTraderGo/internal/infra/gateway"
	"github.com/MCarmody17/ReadyTraderGo/internal/trader"
	"github.com/MCarmody17/ReadyTraderGo/pkg/quant"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Pre-warm the event pools before the hotpath starts
	event.Warmup()

	// 5. Wire gateway -> sequencer -> trader -> gateway
	mets := &infra.Metrics{}
	ledger := accounting.NewLedger()

	inbox := make(chan event.Event, 1024)
	inboxSeq := uint64(0)
	worker := gateway.NewWorker(cfg, inbox, &inboxSeq, mets)

	tr := trader.New(trader.Config{
		TickSize:      quant.Price(cfg.Trading.TickSize),
		BaseTicks:     cfg.Trading.BaseTicks,
		InventoryUnit: cfg.Trading.InventoryUnit,
		ClipSize:      quant.Volume(cfg.Trading.ClipSize),
		PositionLimit: quant.Volume(cfg.Trading.PositionLimit),
		MinimumBid:    quant.Price(cfg.Trading.MinimumBid),
		MaximumAsk:    quant.Price(cfg.Trading.MaximumAsk),
	}, worker, ledger, mets)

	seq := engine.NewSequencer(inbox, bootstrap.Journal, tr, mets)

	// Start Sequencer in its own goroutine (The Hotpath Loop)
	go seq.Run(ctx)
	slog.InfoContext(ctx, "Sequencer (Hotpath) started")

	if err := worker.Connect(ctx); err != nil {
		slog.Error("Failed to start exchange gateway", slog.Any("error", err))
		os.Exit(1)
	}
	defer worker.Disconnect()
	slog.InfoContext(ctx, "Exchange gateway started", slog.String("url", cfg.Exchange.WSURL))

	// Wait for shutdown signal
	<-ctx.Done()

	snap := mets.Snapshot()
	state := seq.TraderState()
	slog.Info("Shutting down gracefully",
		slog.Uint64("events", snap.EventsProcessed),
		slog.Uint64("inserts", snap.OrdersInserted),
		slog.Uint64("cancels", snap.OrdersCancelled),
		slog.Uint64("fills", snap.OrdersFilled),
		slog.Uint64("hedges", snap.HedgesSent),
		slog.Int64("position", state.Position))
}
