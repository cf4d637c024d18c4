package logformat

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// Writer is the symmetric counterpart to Decode: it frames and checksums
// entries the same way a real WAL writer would. The scanner never uses
// it (§6: "the scanner writes nothing") — it exists for recovery.Writer,
// for the cmd/logtail seed subcommand, and for round-trip tests.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w for entry-at-a-time framing.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteEntry encodes and writes one frame, returning the number of bytes
// written (equal to what a subsequent Decode would report consumed).
func (wr *Writer) WriteEntry(e Entry) (int, error) {
	payload, err := encodePayload(e)
	if err != nil {
		return 0, fmt.Errorf("logformat: encode %s entry: %w", e.Kind(), err)
	}

	frame := make([]byte, frameOverhead+len(payload))
	frame[0] = byte(e.Kind())
	binary.BigEndian.PutUint32(frame[1:5], uint32(len(payload)))
	copy(frame[5:5+len(payload)], payload)

	checksum := crc32.Checksum(frame[:5+len(payload)], crc32cTable)
	binary.BigEndian.PutUint32(frame[5+len(payload):], checksum)

	n, err := wr.w.Write(frame)
	if err != nil {
		return n, fmt.Errorf("logformat: write frame: %w", err)
	}
	return n, nil
}

func encodePayload(e Entry) ([]byte, error) {
	switch v := e.(type) {
	case HeaderEntry:
		buf := make([]byte, headerPayloadLen)
		binary.BigEndian.PutUint64(buf[0:8], v.SegmentVersion)
		binary.BigEndian.PutUint64(buf[8:16], uint64(v.StoreID.CreationTime))
		binary.BigEndian.PutUint64(buf[16:24], v.StoreID.RandomID)
		buf[24] = v.FormatVersion
		return buf, nil

	case StartEntry:
		buf := make([]byte, startFixedPayloadLen+len(v.Additional))
		binary.BigEndian.PutUint32(buf[0:4], v.PreviousChecksum)
		binary.BigEndian.PutUint64(buf[4:12], uint64(v.TimeWritten))
		binary.BigEndian.PutUint64(buf[12:20], uint64(v.LastCommittedTx))
		copy(buf[startFixedPayloadLen:], v.Additional)
		return buf, nil

	case CommitEntry:
		buf := make([]byte, commitPayloadLen)
		binary.BigEndian.PutUint64(buf[0:8], uint64(v.TxID))
		binary.BigEndian.PutUint64(buf[8:16], uint64(v.TimeCommitted))
		binary.BigEndian.PutUint32(buf[16:20], v.Checksum)
		return buf, nil

	case CheckPointEntry:
		buf := make([]byte, checkPointPayloadLen)
		binary.BigEndian.PutUint64(buf[0:8], v.Target.SegmentVersion)
		binary.BigEndian.PutUint64(buf[8:16], v.Target.ByteOffset)
		return buf, nil

	case CommandEntry:
		buf := make([]byte, 1+len(v.Payload))
		buf[0] = v.Tag
		copy(buf[1:], v.Payload)
		return buf, nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownTag, e)
	}
}
