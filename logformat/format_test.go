package logformat

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFixtureEntries() []Entry {
	return []Entry{
		HeaderEntry{SegmentVersion: 7, StoreID: StoreID{CreationTime: 1000, RandomID: 42}, FormatVersion: CurrentFormatVersion},
		StartEntry{PreviousChecksum: 0xdeadbeef, TimeWritten: 111, LastCommittedTx: 9, Additional: []byte("extra")},
		CommitEntry{TxID: 10, TimeCommitted: 222, Checksum: 0xcafef00d},
		CheckPointEntry{Target: LogPosition{SegmentVersion: 6, ByteOffset: 128}},
		CommandEntry{Tag: 'R', Payload: []byte("rollback-payload")},
	}
}

func TestRoundTrip_WritingThenReadingYieldsSameEntriesInOrder(t *testing.T) {
	entries := testFixtureEntries()

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, e := range entries {
		_, err := w.WriteEntry(e)
		require.NoError(t, err)
	}

	br := bufio.NewReader(&buf)
	for i, want := range entries {
		result := Decode(br)
		require.Equal(t, StatusOK, result.Status, "entry %d", i)
		assert.Equal(t, want, result.Entry, "entry %d", i)
	}

	final := Decode(br)
	assert.Equal(t, StatusCleanEnd, final.Status, "EOF should land exactly at a frame boundary")
}

func TestDecode_EmptyReaderIsCleanEnd(t *testing.T) {
	br := bufio.NewReader(bytes.NewReader(nil))
	result := Decode(br)
	assert.Equal(t, StatusCleanEnd, result.Status)
}

func TestDecode_TruncatedMidFrameIsCorrupt(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_, err := w.WriteEntry(CommitEntry{TxID: 1, TimeCommitted: 2, Checksum: 3})
	require.NoError(t, err)

	truncated := buf.Bytes()[:buf.Len()-3]
	br := bufio.NewReader(bytes.NewReader(truncated))
	result := Decode(br)
	assert.Equal(t, StatusCorrupt, result.Status)
	assert.ErrorIs(t, result.Err, ErrTruncatedFrame)
}

func TestDecode_ChecksumMismatchIsCorrupt(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_, err := w.WriteEntry(CommitEntry{TxID: 1, TimeCommitted: 2, Checksum: 3})
	require.NoError(t, err)

	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] ^= 0xFF // flip every bit of the checksum's last byte

	br := bufio.NewReader(bytes.NewReader(corrupted))
	result := Decode(br)
	assert.Equal(t, StatusCorrupt, result.Status)
	assert.ErrorIs(t, result.Err, ErrChecksumMismatch)
}

func TestDecode_UnknownTagWithValidChecksumIsCorrupt(t *testing.T) {
	tag := byte(0x7F) // not a valid EntryKind
	var lenBuf [4]byte
	frameHeader := append([]byte{tag}, lenBuf[:]...)
	checksum := crc32.Checksum(frameHeader, crc32cTable)

	var buf bytes.Buffer
	buf.Write(frameHeader)
	var checksumBuf [4]byte
	binary.BigEndian.PutUint32(checksumBuf[:], checksum)
	buf.Write(checksumBuf[:])

	br := bufio.NewReader(bytes.NewReader(buf.Bytes()))
	result := Decode(br)
	assert.Equal(t, StatusCorrupt, result.Status)
	assert.ErrorIs(t, result.Err, ErrUnknownTag)
}
