// Package tailscan implements the reverse scan over a LogFileSet that
// decides whether a store needs recovery, and if so from where. It is
// the orchestrator: logfileset lists segments, entryreader decodes them,
// and tailscan walks backward from the newest segment applying the
// decision rules that turn what it read into a TailInformation verdict.
package tailscan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/waldb/logtail/entryreader"
	"github.com/waldb/logtail/logfileset"
	"github.com/waldb/logtail/logformat"
	"github.com/waldb/logtail/monitor"
	"github.com/waldb/logtail/tailscaninfo"
)

// Options configures a TailScanner. LogFileSet is required; Monitor and
// Logger default to a no-op observer and slog.Default respectively,
// mirroring wal.Options' defaulting in the teacher package this module
// is grounded on.
type Options struct {
	LogFileSet *logfileset.LogFileSet
	Monitor    monitor.Monitor
	Logger     *slog.Logger
}

// TailScanner runs one scan over a LogFileSet. It holds no mutable state
// between calls to ScanTail — a fresh scan starts clean every time.
type TailScanner struct {
	fs      *logfileset.LogFileSet
	monitor monitor.Monitor
	logger  *slog.Logger
}

// New builds a TailScanner from opts, applying defaults for any field
// left zero.
func New(opts Options) *TailScanner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := opts.Monitor
	if m == nil {
		m = monitor.NoopMonitor{}
	}
	return &TailScanner{
		fs:      opts.LogFileSet,
		monitor: monitor.Safe(m, logger),
		logger:  logger.With("component", "tailscan"),
	}
}

type positionedEntry struct {
	position logformat.LogPosition
	entry    logformat.Entry
}

// segmentScan is what scanning one segment yields. header is nil when
// the segment lacks a valid Header and must be treated as absent (§4.4
// rule 8): nothing else in the struct is meaningful in that case.
type segmentScan struct {
	header     *logformat.HeaderEntry
	checkpoint *logformat.CheckPointEntry
	entries    []positionedEntry
	corrupt    bool
}

// ScanTail performs the reverse scan and returns the resulting verdict.
// ctx is checked for cancellation between segments only — never in the
// middle of decoding one, so a single segment's scan always runs to a
// clean, corrupt, or end-of-segment conclusion.
func (s *TailScanner) ScanTail(ctx context.Context) (tailscaninfo.TailInformation, error) {
	any, err := s.fs.AnyFiles()
	if err != nil {
		return tailscaninfo.TailInformation{}, fmt.Errorf("tailscan: listing segments: %w", err)
	}
	if !any {
		info := tailscaninfo.TailInformation{
			OldestSegmentVersionFound:    -1,
			LatestSegmentVersion:         -1,
			FirstTxIDAfterLastCheckPoint: tailscaninfo.NoTransactionID,
			LogsMissing:                  true,
			IsRecoveryRequired:           true,
		}
		s.monitor.OnScanComplete(info)
		return info, nil
	}

	highest, _, err := s.fs.HighestVersion()
	if err != nil {
		return tailscaninfo.TailInformation{}, fmt.Errorf("tailscan: finding highest segment: %w", err)
	}

	var (
		latestCheckPoint    *logformat.CheckPointEntry
		oldestSegmentSeen   int64 = -1
		corruptTailSeen     bool
		latestFormatVersion uint8
		storeID             logformat.StoreID
		haveHeader          bool
		collected           []positionedEntry
	)

	for version := highest; ; {
		if err := ctx.Err(); err != nil {
			return tailscaninfo.TailInformation{}, fmt.Errorf("tailscan: scan cancelled: %w", err)
		}

		scan, err := s.scanSegment(version)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				s.logger.Warn("segment vanished during scan, treating as absent", "version", version)
			} else {
				return tailscaninfo.TailInformation{}, err
			}
		} else if scan.header != nil {
			oldestSegmentSeen = int64(version)
			if !haveHeader {
				latestFormatVersion = scan.header.FormatVersion
				storeID = scan.header.StoreID
				haveHeader = true
			}
			collected = append(collected, scan.entries...)
			if latestCheckPoint == nil && scan.checkpoint != nil {
				latestCheckPoint = scan.checkpoint
			}
			if scan.corrupt {
				corruptTailSeen = true
			}
		}

		if latestCheckPoint != nil && version <= latestCheckPoint.Target.SegmentVersion {
			break
		}

		prev, ok, err := s.fs.PreviousVersion(version)
		if err != nil {
			return tailscaninfo.TailInformation{}, fmt.Errorf("tailscan: finding segment before %d: %w", version, err)
		}
		if !ok {
			break
		}
		version = prev
	}

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].position.Before(collected[j].position)
	})

	target := logformat.LogPosition{}
	if latestCheckPoint != nil {
		target = latestCheckPoint.Target
	}
	commitsAfter, firstTxID := evaluateTail(collected, target, latestCheckPoint == nil)

	info := tailscaninfo.TailInformation{
		LastCheckPoint:               latestCheckPoint,
		CommitsAfterLastCheckPoint:   commitsAfter,
		FirstTxIDAfterLastCheckPoint: firstTxID,
		OldestSegmentVersionFound:    oldestSegmentSeen,
		LatestSegmentVersion:         int64(highest),
		CorruptTailSeen:              corruptTailSeen,
		LatestEntryFormatVersion:     latestFormatVersion,
		StoreID:                      storeID,
	}
	info.IsRecoveryRequired = info.LogsMissing || info.CommitsAfterLastCheckPoint || info.CorruptTailSeen || info.LastCheckPoint == nil

	s.monitor.OnScanComplete(info)
	return info, nil
}

// scanSegment opens one segment, validates its Header, and reads every
// entry after it to end of file (clean or corrupt). It never returns a
// partial error for tail corruption — that is reported via scan.corrupt
// and a Monitor call, because a corrupt tail does not fail the scan.
func (s *TailScanner) scanSegment(version uint64) (segmentScan, error) {
	ch, err := s.fs.Open(version)
	if err != nil {
		return segmentScan{}, err
	}
	defer ch.Close()

	s.monitor.OnSegmentOpened(version)

	r := entryreader.New(version, ch)

	first := r.Next()
	if first.Done {
		if first.Corrupt {
			s.monitor.OnCorruptedLogFile(version, first.Position.ByteOffset, corruptionReason(first.Err))
		}
		return segmentScan{}, nil
	}

	header, ok := first.Entry.(logformat.HeaderEntry)
	if !ok || header.SegmentVersion != version {
		s.logger.Warn("segment lacks a valid header, treating as absent", "version", version)
		return segmentScan{}, nil
	}
	if header.FormatVersion > logformat.CurrentFormatVersion {
		return segmentScan{}, fmt.Errorf("tailscan: segment %d declares format version %d: %w", version, header.FormatVersion, ErrUnsupportedFormat)
	}

	scan := segmentScan{header: &header}
	for {
		res := r.Next()
		if res.Done {
			if res.Corrupt {
				scan.corrupt = true
				s.monitor.OnCorruptedLogFile(version, res.Position.ByteOffset, corruptionReason(res.Err))
			}
			return scan, nil
		}
		scan.entries = append(scan.entries, positionedEntry{position: res.Position, entry: res.Entry})
		if cp, ok := res.Entry.(logformat.CheckPointEntry); ok {
			cpCopy := cp
			scan.checkpoint = &cpCopy
		}
	}
}

func corruptionReason(err error) string {
	if err == nil {
		return "invalid header"
	}
	return err.Error()
}

// evaluateTail applies §4.4 rules 4 and 5 to entries already filtered to
// the segments the scan walked. noCheckpoint selects the "any Start
// exists in any segment" fallback when the log has never been
// checkpointed.
func evaluateTail(entries []positionedEntry, target logformat.LogPosition, noCheckpoint bool) (commitsAfter bool, firstTxID int64) {
	firstTxID = tailscaninfo.NoTransactionID

	var anyStartAtOrAfter, anyCommitAfter, anyStartAnywhere, found bool
	var currentStart *logformat.LogPosition

	for _, pe := range entries {
		switch e := pe.entry.(type) {
		case logformat.StartEntry:
			anyStartAnywhere = true
			pos := pe.position
			if !pos.Before(target) {
				anyStartAtOrAfter = true
			}
			currentStart = &pos
		case logformat.CommitEntry:
			if pe.position.After(target) {
				anyCommitAfter = true
			}
			if !found && currentStart != nil && !currentStart.Before(target) {
				firstTxID = e.TxID
				found = true
			}
			currentStart = nil
		}
	}

	commitsAfter = anyStartAtOrAfter || anyCommitAfter || (noCheckpoint && anyStartAnywhere)
	return commitsAfter, firstTxID
}
