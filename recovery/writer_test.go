package recovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waldb/logtail/logfileset"
	"github.com/waldb/logtail/logformat"
	"github.com/waldb/logtail/tailscan"
	"github.com/waldb/logtail/tailscaninfo"
)

var testStoreID = logformat.StoreID{CreationTime: 1, RandomID: 2}

func TestWriter_RoundTripThroughScanner(t *testing.T) {
	fs := logfileset.New(t.TempDir(), "neostore.transaction.db")
	w, err := NewWriter(fs, testStoreID, 1<<20, nil)
	require.NoError(t, err)

	startPos, err := w.WriteStart(0, 100, 0, nil)
	require.NoError(t, err)
	_ = startPos
	_, err = w.WriteCommit(1, 101, 0xdeadbeef)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	scanner := tailscan.New(tailscan.Options{LogFileSet: fs})
	info, err := scanner.ScanTail(context.Background())
	require.NoError(t, err)

	assert.True(t, info.CommitsAfterLastCheckPoint)
	assert.Equal(t, int64(1), info.FirstTxIDAfterLastCheckPoint)
	assert.Nil(t, info.LastCheckPoint)
}

func TestWriter_RollsOverAtMaxSegmentSize(t *testing.T) {
	fs := logfileset.New(t.TempDir(), "neostore.transaction.db")
	// Small enough that the header alone forces a rollover on the next write.
	w, err := NewWriter(fs, testStoreID, 1, nil)
	require.NoError(t, err)

	_, err = w.WriteStart(0, 1, 0, nil)
	require.NoError(t, err)
	_, err = w.WriteCommit(1, 2, 0)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	highest, ok, err := fs.HighestVersion()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Greater(t, highest, uint64(0))
}

func TestWriter_CheckPointRoundTrip(t *testing.T) {
	fs := logfileset.New(t.TempDir(), "neostore.transaction.db")
	w, err := NewWriter(fs, testStoreID, 1<<20, nil)
	require.NoError(t, err)

	target := w.CurrentPosition()
	_, err = w.WriteCheckPoint(target)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	scanner := tailscan.New(tailscan.Options{LogFileSet: fs})
	info, err := scanner.ScanTail(context.Background())
	require.NoError(t, err)

	require.NotNil(t, info.LastCheckPoint)
	assert.Equal(t, target, info.LastCheckPoint.Target)
	assert.False(t, info.CommitsAfterLastCheckPoint)
	assert.Equal(t, tailscaninfo.NoTransactionID, info.FirstTxIDAfterLastCheckPoint)
}
