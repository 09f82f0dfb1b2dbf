package measureutil

import "dntl-dsa/measure"

// SnapshotAndReset returns the global measurement map and clears it.
func SnapshotAndReset() map[string]uint64 {
	return measure.Global.SnapshotAndReset()
}
