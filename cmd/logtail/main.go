// Command logtail is the inspection tool for the log-tail scanner: the
// idiomatic-Go analogue of the teacher's tools/debug/inspect_wal, built
// on cobra/pflag the way bft-labs-walship's CLI is, instead of a bare
// flag.Parse.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/waldb/logtail/config"
	"github.com/waldb/logtail/logfileset"
	"github.com/waldb/logtail/logformat"
	"github.com/waldb/logtail/recovery"
	"github.com/waldb/logtail/tailscan"
	"github.com/waldb/logtail/tailscaninfo"
)

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := config.Default()
	var cfgPath string
	var asJSON bool

	root := &cobra.Command{
		Use:     "logtail",
		Short:   "Inspect a write-ahead log's tail and decide whether recovery is required",
		Version: fmt.Sprintf("%s %s/%s", version(), runtime.GOOS, runtime.GOARCH),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadFile(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			changed := cmd.Flags().Changed
			if !changed("dir") {
				cfg.Dir = loaded.Dir
			}
			if !changed("prefix") {
				cfg.Prefix = loaded.Prefix
			}
			if !changed("max-segment-size") {
				cfg.MaxSegmentSizeBytes = loaded.MaxSegmentSizeBytes
			}
			if !changed("allow-missing-logs") {
				cfg.AllowMissingLogs = loaded.AllowMissingLogs
			}
			if !changed("log-level") {
				cfg.LogLevel = loaded.LogLevel
			}
			if !changed("log-format") {
				cfg.LogFormat = loaded.LogFormat
			}
			return cfg.Validate()
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "logtail.toml", "path to a logtail.toml config file")
	root.PersistentFlags().StringVar(&cfg.Dir, "dir", cfg.Dir, "WAL segment directory")
	root.PersistentFlags().StringVar(&cfg.Prefix, "prefix", cfg.Prefix, "segment file name prefix")
	root.PersistentFlags().Int64Var(&cfg.MaxSegmentSizeBytes, "max-segment-size", cfg.MaxSegmentSizeBytes, "segment rollover size in bytes, used by seed")
	root.PersistentFlags().BoolVar(&cfg.AllowMissingLogs, "allow-missing-logs", cfg.AllowMissingLogs, "treat a directory with no segments as a fresh store")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn, or error")
	root.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "console or json")

	root.AddCommand(
		newScanCmd(&cfg, &asJSON),
		newSeedCmd(&cfg),
		newWatchCmd(&cfg),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	return slog.New(newZerologHandler(cfg))
}

func runScan(cfg config.Config, logger *slog.Logger) (tailscaninfo.TailInformation, recovery.Plan, error) {
	fs := logfileset.New(cfg.Dir, cfg.Prefix)
	scanner := tailscan.New(tailscan.Options{LogFileSet: fs, Logger: logger})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	info, err := scanner.ScanTail(ctx)
	if err != nil {
		return tailscaninfo.TailInformation{}, recovery.Plan{}, fmt.Errorf("scan tail: %w", err)
	}
	plan := recovery.Decide(info, recovery.Options{AllowMissingLogs: cfg.AllowMissingLogs})
	return info, plan, nil
}

func newScanCmd(cfg *config.Config, asJSON *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the WAL tail and print the verdict",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(*cfg)
			info, plan, err := runScan(*cfg, logger)
			if err != nil {
				return err
			}
			if *asJSON {
				return printJSON(cmd, info, plan)
			}
			printText(cmd, info, plan)
			return nil
		},
	}
	cmd.Flags().BoolVar(asJSON, "json", false, "print the verdict as JSON instead of text")
	return cmd
}

func printText(cmd *cobra.Command, info tailscaninfo.TailInformation, plan recovery.Plan) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "logs missing:            %v\n", info.LogsMissing)
	fmt.Fprintf(out, "latest segment version:  %d\n", info.LatestSegmentVersion)
	fmt.Fprintf(out, "oldest segment opened:   %d\n", info.OldestSegmentVersionFound)
	fmt.Fprintf(out, "corrupt tail seen:       %v\n", info.CorruptTailSeen)
	if info.LastCheckPoint != nil {
		fmt.Fprintf(out, "last checkpoint:         %s\n", info.LastCheckPoint.Target.String())
	} else {
		fmt.Fprintf(out, "last checkpoint:         none\n")
	}
	fmt.Fprintf(out, "commits after checkpoint: %v\n", info.CommitsAfterLastCheckPoint)
	if info.FirstTxIDAfterLastCheckPoint == tailscaninfo.NoTransactionID {
		fmt.Fprintf(out, "first tx id after:       none\n")
	} else {
		fmt.Fprintf(out, "first tx id after:       %d\n", info.FirstTxIDAfterLastCheckPoint)
	}
	fmt.Fprintf(out, "recovery required:       %v\n", info.IsRecoveryRequired)
	fmt.Fprintf(out, "plan:                    %s", plan.Kind)
	switch plan.Kind {
	case recovery.Replay:
		fmt.Fprintf(out, " from %s\n", plan.From.String())
	case recovery.Abort:
		fmt.Fprintf(out, " (%s)\n", plan.Reason)
	default:
		fmt.Fprintln(out)
	}
}

type jsonVerdict struct {
	LogsMissing                  bool   `json:"logs_missing"`
	LatestSegmentVersion         int64  `json:"latest_segment_version"`
	OldestSegmentVersionFound    int64  `json:"oldest_segment_version_found"`
	CorruptTailSeen              bool   `json:"corrupt_tail_seen"`
	LastCheckPoint                string `json:"last_checkpoint,omitempty"`
	CommitsAfterLastCheckPoint   bool   `json:"commits_after_last_checkpoint"`
	FirstTxIDAfterLastCheckPoint *int64 `json:"first_tx_id_after_last_checkpoint,omitempty"`
	IsRecoveryRequired           bool   `json:"is_recovery_required"`
	PlanKind                     string `json:"plan_kind"`
	PlanFrom                     string `json:"plan_from,omitempty"`
	PlanReason                   string `json:"plan_reason,omitempty"`
}

func printJSON(cmd *cobra.Command, info tailscaninfo.TailInformation, plan recovery.Plan) error {
	v := jsonVerdict{
		LogsMissing:                info.LogsMissing,
		LatestSegmentVersion:       info.LatestSegmentVersion,
		OldestSegmentVersionFound:  info.OldestSegmentVersionFound,
		CorruptTailSeen:            info.CorruptTailSeen,
		CommitsAfterLastCheckPoint: info.CommitsAfterLastCheckPoint,
		IsRecoveryRequired:         info.IsRecoveryRequired,
		PlanKind:                   plan.Kind.String(),
	}
	if info.LastCheckPoint != nil {
		v.LastCheckPoint = info.LastCheckPoint.Target.String()
	}
	if info.FirstTxIDAfterLastCheckPoint != tailscaninfo.NoTransactionID {
		id := info.FirstTxIDAfterLastCheckPoint
		v.FirstTxIDAfterLastCheckPoint = &id
	}
	if plan.Kind == recovery.Replay {
		v.PlanFrom = plan.From.String()
	}
	if plan.Kind == recovery.Abort {
		v.PlanReason = plan.Reason
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSeedCmd(cfg *config.Config) *cobra.Command {
	var transactions int
	var checkpointEvery int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a synthetic WAL directory for manual testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(*cfg)
			fs := logfileset.New(cfg.Dir, cfg.Prefix)
			storeID := logformat.StoreID{CreationTime: time.Now().Unix(), RandomID: rand.Uint64()}

			w, err := recovery.NewWriter(fs, storeID, cfg.MaxSegmentSizeBytes, logger)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			defer w.Close()

			for i := 1; i <= transactions; i++ {
				txID := int64(i)
				if _, err := w.WriteStart(0, time.Now().UnixNano(), txID-1, nil); err != nil {
					return fmt.Errorf("seed: write start %d: %w", txID, err)
				}
				if _, err := w.WriteCommit(txID, time.Now().UnixNano(), 0); err != nil {
					return fmt.Errorf("seed: write commit %d: %w", txID, err)
				}
				if checkpointEvery > 0 && i%checkpointEvery == 0 {
					if _, err := w.WriteCheckPoint(w.CurrentPosition()); err != nil {
						return fmt.Errorf("seed: write checkpoint after tx %d: %w", txID, err)
					}
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d transactions to %s\n", transactions, cfg.Dir)
			return nil
		},
	}
	cmd.Flags().IntVar(&transactions, "transactions", 10, "number of Start/Commit pairs to write")
	cmd.Flags().IntVar(&checkpointEvery, "checkpoint-every", 0, "write a CheckPoint after every N transactions (0 disables)")
	return cmd
}

func newWatchCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-run the scan whenever a file in the directory is created, renamed or written",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(*cfg)

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("watch: create watcher: %w", err)
			}
			defer watcher.Close()

			if err := watcher.Add(cfg.Dir); err != nil {
				return fmt.Errorf("watch: watch %s: %w", cfg.Dir, err)
			}

			info, plan, err := runScan(*cfg, logger)
			if err != nil {
				return err
			}
			printText(cmd, info, plan)

			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if event.Op&(fsnotify.Create|fsnotify.Rename|fsnotify.Write) == 0 {
						continue
					}
					info, plan, err := runScan(*cfg, logger)
					if err != nil {
						logger.Error("rescan failed", "error", err)
						continue
					}
					fmt.Fprintln(cmd.OutOrStdout(), "---")
					printText(cmd, info, plan)
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					logger.Error("watcher error", "error", err)
				}
			}
		},
	}
}
