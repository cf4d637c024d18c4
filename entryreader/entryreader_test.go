package entryreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waldb/logtail/logfileset"
	"github.com/waldb/logtail/logformat"
)

func writeSegment(t *testing.T, fs *logfileset.LogFileSet, version uint64, entries []logformat.Entry) {
	t.Helper()
	w, err := fs.Create(version)
	require.NoError(t, err)
	lw := logformat.NewWriter(w)
	for _, e := range entries {
		_, err := lw.WriteEntry(e)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestNext_YieldsEntriesInOrderThenCleanEnd(t *testing.T) {
	dir := t.TempDir()
	fs := logfileset.New(dir, "neostore.transaction.db")

	entries := []logformat.Entry{
		logformat.StartEntry{TimeWritten: 1, LastCommittedTx: 0},
		logformat.CommitEntry{TxID: 1, TimeCommitted: 2},
	}
	writeSegment(t, fs, 5, entries)

	ch, err := fs.Open(5)
	require.NoError(t, err)
	defer ch.Close()

	r := New(5, ch)

	first := r.Next()
	require.False(t, first.Done)
	assert.Equal(t, logformat.LogPosition{SegmentVersion: 5, ByteOffset: 0}, first.Position)
	assert.Equal(t, entries[0], first.Entry)

	second := r.Next()
	require.False(t, second.Done)
	assert.Equal(t, entries[1], second.Entry)

	third := r.Next()
	assert.True(t, third.Done)
	assert.False(t, third.Corrupt)
}

func TestNext_TruncatedTailIsCorruptNotFatal(t *testing.T) {
	dir := t.TempDir()
	fs := logfileset.New(dir, "neostore.transaction.db")

	entries := []logformat.Entry{
		logformat.StartEntry{TimeWritten: 1, LastCommittedTx: 0},
		logformat.CommitEntry{TxID: 2, TimeCommitted: 2},
	}
	writeSegment(t, fs, 43, entries)

	size, err := fs.Size(43)
	require.NoError(t, err)
	require.NoError(t, fs.Truncate(43, size-3))

	ch, err := fs.Open(43)
	require.NoError(t, err)
	defer ch.Close()

	r := New(43, ch)

	first := r.Next()
	require.False(t, first.Done)
	assert.Equal(t, entries[0], first.Entry)

	second := r.Next()
	assert.True(t, second.Done)
	assert.True(t, second.Corrupt)
	assert.Error(t, second.Err)
}
