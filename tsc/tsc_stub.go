//go:build (!amd64 && !arm64) || noasm

// tsc_stub.go
//
// Portable counter for targets without a dedicated reader: the runtime's
// monotonic nanosecond clock, reached through linkname so there is no
// time.Time construction on the stamp path.  Counts are already
// nanoseconds, so calibration is the identity.

package tsc

import _ "unsafe"

//go:linkname nanotime runtime.nanotime
func nanotime() int64

// Now reads the runtime monotonic clock.
//
//go:nosplit
func Now() uint64 { return uint64(nanotime()) }

// NowID reads the runtime monotonic clock; no unit attribution is
// available on this path.
//
//go:nosplit
func NowID() (uint64, uint32) { return uint64(nanotime()), 0 }

func platformCalibrate() (Adjust, string) {
	return Adjust{Mult: 1, Shift: 0}, "nanotime"
}
