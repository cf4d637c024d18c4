// Package entryreader turns one open segment channel into a positioned
// sequence of (LogPosition, Entry) pairs, decoding frames with logformat
// and tracking byte offset as it goes. A reader is single-segment,
// single-pass, and cheap enough to construct and discard per segment.
package entryreader

import (
	"bufio"

	"github.com/waldb/logtail/logformat"
	"github.com/waldb/logtail/logfileset"
)

// Result is what Next returns: exactly one of Entry (when Done is false
// and Err is nil), a clean end-of-segment, or a corrupt tail.
type Result struct {
	Position logformat.LogPosition // position the entry (or corruption) started at
	Entry    logformat.Entry
	Done     bool // true on StatusCleanEnd or StatusCorrupt: no more entries follow
	Corrupt  bool // true on StatusCorrupt specifically
	Err      error
}

// EntryReader reads entries forward from the current position of one
// segment. It never buffers across segment boundaries — callers open a
// new EntryReader (over a new logfileset.ReadChannel) for the next one.
type EntryReader struct {
	segmentVersion uint64
	br             *bufio.Reader
	offset         uint64
}

// New wraps ch for decoding, starting at byte offset 0 of segmentVersion.
func New(segmentVersion uint64, ch *logfileset.ReadChannel) *EntryReader {
	return &EntryReader{segmentVersion: segmentVersion, br: ch.Reader}
}

// Next decodes the entry at the reader's current position and advances
// past it. Calling Next again after a Done result is a programming
// error; the scanner never does so.
func (r *EntryReader) Next() Result {
	pos := logformat.LogPosition{SegmentVersion: r.segmentVersion, ByteOffset: r.offset}
	decoded := logformat.Decode(r.br)

	switch decoded.Status {
	case logformat.StatusCleanEnd:
		return Result{Position: pos, Done: true}
	case logformat.StatusCorrupt:
		return Result{Position: pos, Done: true, Corrupt: true, Err: decoded.Err}
	default:
		r.offset += uint64(decoded.BytesConsumed)
		return Result{Position: pos, Entry: decoded.Entry}
	}
}

// Offset returns the reader's current byte offset (i.e. where the next
// entry, if any, begins).
func (r *EntryReader) Offset() uint64 {
	return r.offset
}
