// Package recovery is the external collaborator the distilled
// specification treats purely as a contract: it consumes the tail
// scanner's verdict and decides whether the store can start untouched,
// must be treated as brand new, must replay from a position, or must
// abort. It also carries the write side of the WAL (recovery.Writer),
// which the scanner itself never touches but which tests and the
// cmd/logtail seed subcommand need to build fixtures.
package recovery

import (
	"fmt"
	"log/slog"

	"github.com/waldb/logtail/logformat"
	"github.com/waldb/logtail/tailscaninfo"
)

// PlanKind tags which of the four outcomes Decide reached.
type PlanKind int

const (
	// NothingToDo means the store shut down cleanly: no replay needed.
	NothingToDo PlanKind = iota
	// FreshStore means there are no logs, and that is acceptable
	// (either AllowMissingLogs is set, or the caller otherwise knows
	// this is a brand new store) — the engine should initialize empty
	// rather than attempt recovery.
	FreshStore
	// Replay means the engine must redo/undo entries starting at From.
	Replay
	// Abort means recovery cannot proceed; Reason explains why.
	Abort
)

func (k PlanKind) String() string {
	switch k {
	case NothingToDo:
		return "NothingToDo"
	case FreshStore:
		return "FreshStore"
	case Replay:
		return "Replay"
	case Abort:
		return "Abort"
	default:
		return "Unknown"
	}
}

// Plan is the decision Decide returns. Only the fields relevant to Kind
// are meaningful: From for Replay, Reason for Abort.
type Plan struct {
	Kind   PlanKind
	From   logformat.LogPosition
	Reason string
}

// Options configures Decide. AllowMissingLogs mirrors the original
// system's recovery.fail_on_missing_files setting, inverted: when false
// (the default) a store reporting LogsMissing is fatal, because for an
// established store that almost always means the WAL directory was
// lost or never mounted; when true, missing logs are treated as a fresh
// store instead.
type Options struct {
	AllowMissingLogs bool
}

// Decide turns a tail scan verdict into a recovery plan, following the
// distilled specification's rule 9 branching plus the AllowMissingLogs
// policy layered on top of LogsMissing.
func Decide(info tailscaninfo.TailInformation, opts Options) Plan {
	if info.LogsMissing {
		if opts.AllowMissingLogs {
			return Plan{Kind: FreshStore}
		}
		return Plan{Kind: Abort, Reason: "no WAL segments found and allow_missing_logs is false"}
	}

	if !info.IsRecoveryRequired {
		return Plan{Kind: NothingToDo}
	}

	if info.LastCheckPoint != nil {
		return Plan{Kind: Replay, From: info.LastCheckPoint.Target}
	}

	// No checkpoint was ever recorded: replay the entire tail the
	// scanner actually opened, starting right after that segment's
	// Header entry.
	return Plan{Kind: Replay, From: logformat.LogPosition{
		SegmentVersion: uint64(info.OldestSegmentVersionFound),
		ByteOffset:     logformat.HeaderFrameSize,
	}}
}

// Apply logs the plan the way the teacher's StateLoader logs each phase
// of its own recovery, and returns an error for Abort so a caller can
// propagate it with %w without re-deriving the reason string.
func Apply(plan Plan, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "recovery")

	switch plan.Kind {
	case NothingToDo:
		logger.Info("no recovery required")
		return nil
	case FreshStore:
		logger.Info("no WAL segments found, initializing fresh store")
		return nil
	case Replay:
		logger.Info("recovery required", "from", plan.From.String())
		return nil
	case Abort:
		logger.Error("recovery aborted", "reason", plan.Reason)
		return fmt.Errorf("recovery: aborted: %s", plan.Reason)
	default:
		return fmt.Errorf("recovery: unknown plan kind %v", plan.Kind)
	}
}
