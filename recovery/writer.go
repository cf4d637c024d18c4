package recovery

import (
	"fmt"
	"log/slog"

	"github.com/waldb/logtail/logfileset"
	"github.com/waldb/logtail/logformat"
)

// Writer is the append-only WAL writer recovery needs to build fixtures:
// the scanner itself never writes (§6), but tests and the cmd/logtail
// seed subcommand need a real producer of segment files. It rolls over
// to a new segment once the current one reaches MaxSegmentSizeBytes,
// stamping a fresh Header at the start of each one.
type Writer struct {
	fs             *logfileset.LogFileSet
	storeID        logformat.StoreID
	maxSegmentSize int64
	logger         *slog.Logger

	version uint64
	ch      *logfileset.WriteChannel
	w       *logformat.Writer
	offset  int64
}

// NewWriter opens (or continues) the WAL under fs for storeID, starting
// a new segment one past the highest version already present.
func NewWriter(fs *logfileset.LogFileSet, storeID logformat.StoreID, maxSegmentSizeBytes int64, logger *slog.Logger) (*Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	highest, ok, err := fs.HighestVersion()
	if err != nil {
		return nil, fmt.Errorf("recovery: writer: listing segments: %w", err)
	}
	next := uint64(0)
	if ok {
		next = highest + 1
	}

	w := &Writer{
		fs:             fs,
		storeID:        storeID,
		maxSegmentSize: maxSegmentSizeBytes,
		logger:         logger.With("component", "recovery.Writer"),
	}
	if err := w.openSegment(next); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) openSegment(version uint64) error {
	ch, err := w.fs.Create(version)
	if err != nil {
		return fmt.Errorf("recovery: writer: create segment %d: %w", version, err)
	}
	w.version = version
	w.ch = ch
	w.w = logformat.NewWriter(ch)
	w.offset = 0

	n, err := w.w.WriteEntry(logformat.HeaderEntry{
		SegmentVersion: version,
		StoreID:        w.storeID,
		FormatVersion:  logformat.CurrentFormatVersion,
	})
	if err != nil {
		return fmt.Errorf("recovery: writer: write header for segment %d: %w", version, err)
	}
	w.offset += int64(n)
	w.logger.Info("opened new segment", "version", version)
	return nil
}

func (w *Writer) rolloverIfNeeded() error {
	if w.offset < w.maxSegmentSize {
		return nil
	}
	if err := w.ch.Close(); err != nil {
		return fmt.Errorf("recovery: writer: close segment %d before rollover: %w", w.version, err)
	}
	return w.openSegment(w.version + 1)
}

// position returns the position the next entry written will start at.
func (w *Writer) position() logformat.LogPosition {
	return logformat.LogPosition{SegmentVersion: w.version, ByteOffset: uint64(w.offset)}
}

func (w *Writer) write(e logformat.Entry) (logformat.LogPosition, error) {
	if err := w.rolloverIfNeeded(); err != nil {
		return logformat.LogPosition{}, err
	}
	pos := w.position()
	n, err := w.w.WriteEntry(e)
	if err != nil {
		return logformat.LogPosition{}, fmt.Errorf("recovery: writer: write %s entry: %w", e.Kind(), err)
	}
	w.offset += int64(n)
	return pos, nil
}

// WriteStart appends a Start entry and returns the position it was
// written at.
func (w *Writer) WriteStart(previousChecksum uint32, timeWritten, lastCommittedTx int64, additional []byte) (logformat.LogPosition, error) {
	return w.write(logformat.StartEntry{
		PreviousChecksum: previousChecksum,
		TimeWritten:      timeWritten,
		LastCommittedTx:  lastCommittedTx,
		Additional:       additional,
	})
}

// WriteCommit appends a Commit entry for txID.
func (w *Writer) WriteCommit(txID int64, timeCommitted int64, checksum uint32) (logformat.LogPosition, error) {
	return w.write(logformat.CommitEntry{
		TxID:          txID,
		TimeCommitted: timeCommitted,
		Checksum:      checksum,
	})
}

// WriteCheckPoint appends a CheckPoint entry recording durability up to
// target.
func (w *Writer) WriteCheckPoint(target logformat.LogPosition) (logformat.LogPosition, error) {
	return w.write(logformat.CheckPointEntry{Target: target})
}

// CurrentPosition returns the position the next entry will be written
// at, for a caller that wants to record a CheckPoint pointing at "here".
func (w *Writer) CurrentPosition() logformat.LogPosition {
	return w.position()
}

// Sync flushes and fsyncs the current segment.
func (w *Writer) Sync() error {
	return w.ch.Sync()
}

// Close flushes and closes the current segment.
func (w *Writer) Close() error {
	return w.ch.Close()
}
