package logformat

import "fmt"

// LogPosition identifies a byte within the WAL as a (segment version, byte
// offset) pair. It is totally ordered: positions in a newer segment always
// sort after positions in an older one, and within a segment byte offset
// decides the order.
type LogPosition struct {
	SegmentVersion uint64
	ByteOffset     uint64
}

// Compare returns -1, 0 or 1 as p sorts before, equal to, or after other.
func (p LogPosition) Compare(other LogPosition) int {
	switch {
	case p.SegmentVersion < other.SegmentVersion:
		return -1
	case p.SegmentVersion > other.SegmentVersion:
		return 1
	case p.ByteOffset < other.ByteOffset:
		return -1
	case p.ByteOffset > other.ByteOffset:
		return 1
	default:
		return 0
	}
}

// Before reports whether p sorts strictly before other.
func (p LogPosition) Before(other LogPosition) bool { return p.Compare(other) < 0 }

// After reports whether p sorts strictly after other.
func (p LogPosition) After(other LogPosition) bool { return p.Compare(other) > 0 }

func (p LogPosition) String() string {
	return fmt.Sprintf("%d:%d", p.SegmentVersion, p.ByteOffset)
}
