package recovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/waldb/logtail/logformat"
	"github.com/waldb/logtail/tailscaninfo"
)

func TestDecide_LogsMissing_NotAllowed(t *testing.T) {
	plan := Decide(tailscaninfo.TailInformation{LogsMissing: true, IsRecoveryRequired: true}, Options{AllowMissingLogs: false})
	assert.Equal(t, Abort, plan.Kind)
	assert.NotEmpty(t, plan.Reason)
}

func TestDecide_LogsMissing_Allowed(t *testing.T) {
	plan := Decide(tailscaninfo.TailInformation{LogsMissing: true, IsRecoveryRequired: true}, Options{AllowMissingLogs: true})
	assert.Equal(t, FreshStore, plan.Kind)
}

func TestDecide_NothingToDo(t *testing.T) {
	cp := logformat.CheckPointEntry{Target: logformat.LogPosition{SegmentVersion: 3, ByteOffset: 10}}
	info := tailscaninfo.TailInformation{
		LastCheckPoint:     &cp,
		IsRecoveryRequired: false,
	}
	plan := Decide(info, Options{})
	assert.Equal(t, NothingToDo, plan.Kind)
}

func TestDecide_ReplayFromCheckpoint(t *testing.T) {
	cp := logformat.CheckPointEntry{Target: logformat.LogPosition{SegmentVersion: 3, ByteOffset: 10}}
	info := tailscaninfo.TailInformation{
		LastCheckPoint:             &cp,
		CommitsAfterLastCheckPoint: true,
		IsRecoveryRequired:         true,
	}
	plan := Decide(info, Options{})
	assert.Equal(t, Replay, plan.Kind)
	assert.Equal(t, cp.Target, plan.From)
}

func TestDecide_ReplayFromOldestSegment_NoCheckpoint(t *testing.T) {
	info := tailscaninfo.TailInformation{
		LastCheckPoint:             nil,
		CommitsAfterLastCheckPoint: true,
		OldestSegmentVersionFound:  7,
		IsRecoveryRequired:         true,
	}
	plan := Decide(info, Options{})
	assert.Equal(t, Replay, plan.Kind)
	assert.Equal(t, logformat.LogPosition{SegmentVersion: 7, ByteOffset: logformat.HeaderFrameSize}, plan.From)
}

func TestApply_AbortReturnsError(t *testing.T) {
	err := Apply(Plan{Kind: Abort, Reason: "no logs"}, nil)
	assert.Error(t, err)
}

func TestApply_OtherKindsNoError(t *testing.T) {
	assert.NoError(t, Apply(Plan{Kind: NothingToDo}, nil))
	assert.NoError(t, Apply(Plan{Kind: FreshStore}, nil))
	assert.NoError(t, Apply(Plan{Kind: Replay}, nil))
}
