package monitor

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/waldb/logtail/tailscaninfo"
)

// TestNoopMonitorNeverPanics guards against a no-op hook accidentally
// dereferencing its arguments; TailScanner relies on NoopMonitor being
// safe to call with zero values.
func TestNoopMonitorNeverPanics(t *testing.T) {
	var m Monitor = NoopMonitor{}
	m.OnCorruptedLogFile(0, 0, "")
	m.OnSegmentOpened(0)
	m.OnScanComplete(tailscaninfo.TailInformation{})
}

type panickyMonitor struct{}

func (panickyMonitor) OnCorruptedLogFile(uint64, uint64, string)   { panic("boom") }
func (panickyMonitor) OnSegmentOpened(uint64)                      { panic("boom") }
func (panickyMonitor) OnScanComplete(tailscaninfo.TailInformation) { panic("boom") }

// TestSafeRecoversPanicsFromEachHook guards the scanner's own control
// flow against a Monitor implementation that panics: Safe must swallow
// it and log rather than let it unwind into ScanTail.
func TestSafeRecoversPanicsFromEachHook(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m := Safe(panickyMonitor{}, logger)

	assert.NotPanics(t, func() { m.OnCorruptedLogFile(1, 2, "reason") })
	assert.NotPanics(t, func() { m.OnSegmentOpened(1) })
	assert.NotPanics(t, func() { m.OnScanComplete(tailscaninfo.TailInformation{}) })

	assert.Equal(t, 3, bytes.Count(buf.Bytes(), []byte("monitor hook panicked")))
}
