package app

import (
	"log/slog"

	"github.com/MCarmody17/ReadyTraderGo/internal/infra"
	"github.com/MCarmody17/ReadyTraderGo/internal/storage"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Journal *storage.Journal
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, journal).
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("Bootstrapping autotrader...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Open the session journal
	journal, err := storage.NewJournal(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Journal = journal
	slog.Info("Session journal ready", slog.String("path", cfg.Storage.Path))

	return nil
}
