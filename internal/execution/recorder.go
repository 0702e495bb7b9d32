package execution

import (
	"log/slog"

	"github.com/MCarmody17/ReadyTraderGo/pkg/quant"
)

// CommandKind tags a recorded outbound command.
type CommandKind uint8

const (
	CmdInsert CommandKind = iota + 1
	CmdCancel
	CmdHedge
)

func (k CommandKind) String() string {
	switch k {
	case CmdInsert:
		return "INSERT"
	case CmdCancel:
		return "CANCEL"
	case CmdHedge:
		return "HEDGE"
	default:
		return "UNKNOWN"
	}
}

// Command is one captured outbound command.
type Command struct {
	Kind          CommandKind
	ClientOrderID int64
	Side          string
	Price         quant.Price
	Volume        quant.Volume
	Lifespan      string
}

// Recorder is a Connection that captures commands instead of sending them.
// Used by tests and by dry-run mode.
type Recorder struct {
	Commands []Command
	Quiet    bool // suppress logging in tests
}

// NewRecorder creates a recording execution connection.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SendInsertOrder(clientOrderID int64, side string, price quant.Price, volume quant.Volume, lifespan string) error {
	r.Commands = append(r.Commands, Command{
		Kind:          CmdInsert,
		ClientOrderID: clientOrderID,
		Side:          side,
		Price:         price,
		Volume:        volume,
		Lifespan:      lifespan,
	})
	if !r.Quiet {
		slog.Info("DRY RUN: Insert Order",
			slog.Int64("id", clientOrderID),
			slog.String("side", side),
			slog.Int64("price", int64(price)),
			slog.Int64("volume", int64(volume)),
			slog.String("lifespan", lifespan),
		)
	}
	return nil
}

func (r *Recorder) SendCancelOrder(clientOrderID int64) error {
	r.Commands = append(r.Commands, Command{
		Kind:          CmdCancel,
		ClientOrderID: clientOrderID,
	})
	if !r.Quiet {
		slog.Info("DRY RUN: Cancel Order", slog.Int64("id", clientOrderID))
	}
	return nil
}

func (r *Recorder) SendHedgeOrder(clientOrderID int64, side string, price quant.Price, volume quant.Volume) error {
	r.Commands = append(r.Commands, Command{
		Kind:          CmdHedge,
		ClientOrderID: clientOrderID,
		Side:          side,
		Price:         price,
		Volume:        volume,
	})
	if !r.Quiet {
		slog.Info("DRY RUN: Hedge Order",
			slog.Int64("id", clientOrderID),
			slog.String("side", side),
			slog.Int64("price", int64(price)),
			slog.Int64("volume", int64(volume)),
		)
	}
	return nil
}

// Reset clears captured commands.
func (r *Recorder) Reset() {
	r.Commands = r.Commands[:0]
}

// ByKind returns the captured commands of one kind, in emission order.
func (r *Recorder) ByKind(kind CommandKind) []Command {
	var out []Command
	for _, c := range r.Commands {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

var _ Connection = (*Recorder)(nil)
