// Package monitor defines the tail scanner's observability hooks: a
// push-only observer the scanner calls as it scans, with a safe no-op
// default so TailScanner never needs a nil check at a call site.
package monitor

import "github.com/waldb/logtail/tailscaninfo"

// Monitor receives best-effort notifications during a scan. Implementations
// must not block or retain the TailInformation passed to OnScanComplete
// beyond the call.
type Monitor interface {
	// OnCorruptedLogFile is called once per segment that yielded a
	// corrupt tail, with the byte position the corruption starts at.
	OnCorruptedLogFile(segmentVersion uint64, bytePosition uint64, reason string)
	// OnSegmentOpened is called each time the scanner opens a segment
	// for reading, before any entry is decoded from it.
	OnSegmentOpened(segmentVersion uint64)
	// OnScanComplete is called exactly once, with the finished verdict.
	OnScanComplete(info tailscaninfo.TailInformation)
}

// NoopMonitor implements Monitor by doing nothing. It is the default
// injected at TailScanner construction time so callers who don't care
// about observability never write nil checks.
type NoopMonitor struct{}

func (NoopMonitor) OnCorruptedLogFile(segmentVersion uint64, bytePosition uint64, reason string) {}
func (NoopMonitor) OnSegmentOpened(segmentVersion uint64)                                         {}
func (NoopMonitor) OnScanComplete(info tailscaninfo.TailInformation)                              {}

var _ Monitor = NoopMonitor{}
