package tailscan

import "fmt"

// Sentinel errors of the scanner. Every other error it surfaces
// is wrapped around one of these, or around the opaque I/O error that
// caused it, with fmt.Errorf's %w — never string concatenation.
var (
	// ErrUnsupportedFormat means a segment's Header declared a format
	// version newer than this module understands. Fatal: the scanner
	// aborts without producing a verdict.
	ErrUnsupportedFormat = fmt.Errorf("tailscan: unsupported log format version")
	// ErrSegmentMissing names a segment LogFileSet listed that vanished
	// before the scanner could open it. ScanTail does not return it: it
	// logs such a segment and treats it as absent.
	ErrSegmentMissing = fmt.Errorf("tailscan: segment file missing")
)

// CorruptionError carries structured detail about one corrupt tail, for
// callers that want more than the boolean CorruptTailSeen flag.
type CorruptionError struct {
	SegmentVersion uint64
	BytePosition   uint64
	Reason         string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("tailscan: corrupt tail in segment %d at byte %d: %s", e.SegmentVersion, e.BytePosition, e.Reason)
}
