package monitor

import (
	"log/slog"

	"github.com/waldb/logtail/tailscaninfo"
)

// Safe wraps m so that a panic inside any hook is recovered and logged
// rather than propagated into the scanner's own control flow — a
// misbehaving Monitor must never be able to turn a successful scan into
// a crash. TailScanner always calls through a Safe-wrapped Monitor,
// including the NoopMonitor default.
func Safe(m Monitor, logger *slog.Logger) Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &safeMonitor{wrapped: m, logger: logger}
}

type safeMonitor struct {
	wrapped Monitor
	logger  *slog.Logger
}

func (s *safeMonitor) guard(hook string) {
	if r := recover(); r != nil {
		s.logger.Error("monitor hook panicked", "hook", hook, "panic", r)
	}
}

func (s *safeMonitor) OnCorruptedLogFile(segmentVersion uint64, bytePosition uint64, reason string) {
	defer s.guard("OnCorruptedLogFile")
	s.wrapped.OnCorruptedLogFile(segmentVersion, bytePosition, reason)
}

func (s *safeMonitor) OnSegmentOpened(segmentVersion uint64) {
	defer s.guard("OnSegmentOpened")
	s.wrapped.OnSegmentOpened(segmentVersion)
}

func (s *safeMonitor) OnScanComplete(info tailscaninfo.TailInformation) {
	defer s.guard("OnScanComplete")
	s.wrapped.OnScanComplete(info)
}

var _ Monitor = (*safeMonitor)(nil)
