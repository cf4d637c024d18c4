// Package tailscaninfo holds the TailInformation verdict value shared
// between tailscan (which produces it) and monitor (whose OnScanComplete
// hook receives it) — split out from tailscan to avoid an import cycle
// between the two.
package tailscaninfo

import "github.com/waldb/logtail/logformat"

// NoTransactionID is the reserved sentinel for "no transaction id",
// stable across the module. It is outside the valid (non-negative) txId
// domain, matching the original system's LogTailScanner.NO_TRANSACTION_ID.
const NoTransactionID int64 = -1

// TailInformation is the immutable verdict produced by one scan. It is
// built once, handed to the recovery collaborator, and then discarded.
type TailInformation struct {
	LastCheckPoint             *logformat.CheckPointEntry
	CommitsAfterLastCheckPoint bool
	FirstTxIDAfterLastCheckPoint int64
	OldestSegmentVersionFound  int64
	LatestSegmentVersion       int64
	LogsMissing                bool
	CorruptTailSeen            bool
	LatestEntryFormatVersion   uint8
	StoreID                    logformat.StoreID
	IsRecoveryRequired         bool
}
