// ════════════════════════════════════════════════════════════════════════════════════════════════
// Cycle Counter Access & Calibration
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Clock Speed Measurement Harness
// Component: Clock Source
//
// Description:
//   Raw access to the cheapest monotonic cycle counter the platform offers, plus the
//   calibration that relates raw counts to nanoseconds.  Reads are single instructions
//   (RDTSCP on amd64, CNTVCT_EL0 on arm64) so the instrument itself costs tens of cycles;
//   everything recorded during a run stays in raw counts and is converted only at report
//   time through an Adjust.
//
// Calibration sources, in preference order:
//   - perf:     kernel-exported mult/shift from the perf_event mmap page (exact, amd64 linux)
//   - cntfrq:   architectural counter frequency register (exact, arm64)
//   - wall:     median of repeated counter-vs-wall-clock comparisons (estimate)
//   - nanotime: counter already reads nanoseconds, identity conversion (fallback builds)
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package tsc

import "math/bits"

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONVERSION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Adjust converts raw cycle counts to nanoseconds as ns = cycles * Mult >> Shift,
// the same fixed-point form the kernel uses in the perf mmap page.  The multiply
// runs through a full 128-bit intermediate so counts of any age survive.
type Adjust struct {
	Mult  uint32 // fixed-point nanoseconds per cycle, scaled by 2^Shift
	Shift uint32 // fixed-point scale, always < 64
}

// Nanos converts a raw cycle count (or a difference of two counts) to
// nanoseconds.
//
//go:nosplit
//go:inline
func (a Adjust) Nanos(cycles uint64) uint64 {
	hi, lo := bits.Mul64(cycles, uint64(a.Mult))
	if a.Shift == 0 {
		return lo
	}
	return hi<<(64-a.Shift) | lo>>a.Shift
}

// Usable reports whether calibration produced a meaningful conversion.
//
//go:nosplit
//go:inline
func (a Adjust) Usable() bool { return a.Mult != 0 }

// Calibrate relates the platform counter to nanoseconds.  It never fails:
// when the exact kernel- or architecture-provided conversion is unavailable
// it falls back to a wall-clock estimate.  The second return names the
// source actually used ("perf", "cntfrq", "wall", "nanotime") for the run
// report.
func Calibrate() (Adjust, string) {
	return platformCalibrate()
}

// fit derives a mult/shift pair from a counter frequency in Hz, choosing
// the largest shift whose mult still fits 32 bits.
func fit(hz uint64) Adjust {
	if hz == 0 {
		return Adjust{}
	}
	for shift := uint32(32); shift > 0; shift-- {
		mult := (uint64(1_000_000_000) << shift) / hz
		if mult < 1<<32 {
			return Adjust{Mult: uint32(mult), Shift: shift}
		}
	}
	return Adjust{Mult: uint32(1_000_000_000 / hz), Shift: 0}
}
