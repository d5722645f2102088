//go:build arm64 && !noasm

// tsc_arm64.go
//
// Go declarations for the arm64 counter readers, implemented in
// tsc_arm64.s.  CNTVCT_EL0 is the generic-timer virtual count; CNTFRQ_EL0
// reports its exact frequency, so calibration on arm64 needs no estimate.
// The architecture has no per-stamp core id register readable from EL0;
// NowID reports unit 0 and pinning is validated by the harness instead.

package tsc

// cntvct reads the virtual counter CNTVCT_EL0.
//
//go:noescape
func cntvct() uint64

// cntfrq reads the counter frequency register CNTFRQ_EL0 in Hz.
//
//go:noescape
func cntfrq() uint64

// Now reads the generic-timer virtual count.
//
//go:nosplit
//go:inline
func Now() uint64 { return cntvct() }

// NowID reads the counter; the unit is always 0 on arm64.
//
//go:nosplit
//go:inline
func NowID() (uint64, uint32) { return cntvct(), 0 }
