// ════════════════════════════════════════════════════════════════════════════════════════════════
// Causal Event Stamps
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Clock Speed Measurement Harness
// Component: Event Capture
//
// Description:
//   The record format for the causal event log.  A Stamp is one observed instant: probe
//   point, logical processor, raw cycle count.  An Entry pairs an event stamp with a
//   value copy of the stamp that caused it, giving every logged event exactly one causal
//   edge that later mutation of the source cannot corrupt.
//
//   Stamps stay in raw cycles end to end; the report applies a tsc.Adjust once, after
//   merging.  Capturing costs one RDTSCP plus three stores, so instrumentation points can
//   sit inside measured phases without drowning the signal.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package pstamp

import "github.com/dpreed/clock-speed/tsc"

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CORE DATA STRUCTURES
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Stamp is one recorded instant.
//
//go:align 16
type Stamp struct {
	Point  int32  // 4B - probe point tag (points registry assigns them)
	Unit   uint32 // 4B - logical processor id (RDTSCP aux word; 0 where unavailable)
	Cycles uint64 // 8B - raw cycle count, calibrated only at report time
}

// Entry is one logged event together with the value copy of its cause.
//
//go:align 32
type Entry struct {
	Event Stamp // 16B - what happened
	Cause Stamp // 16B - the stamp that provoked it, copied at record time
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CAPTURE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Capture fills s with the current instant.  Used to create cause stamps
// at phase boundaries; Ring.Record does its own capture for logged events.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:registerparams
func Capture(point int32, s *Stamp) {
	c, u := tsc.NowID()
	s.Point = point
	s.Unit = u
	s.Cycles = c
}
