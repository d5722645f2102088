// control.go — Global control flags for the ring feeder and pinned workers
// ============================================================================
// RUN CONTROL ORCHESTRATION
// ============================================================================
//
// Control package provides lightweight global signaling infrastructure for
// coordinating the measurement run lifecycle across pinned worker threads
// and the background ring feeder with zero-allocation operations.
//
// Architecture overview:
//   • Global live/stop flags for lock-free inter-thread communication
//   • Worker registration through a shared WaitGroup for drain-on-exit
//   • Zero-allocation flag access for polling loops
//
// Threading model:
//   • The driver raises `live` around the measured portion of the run
//   • The ring feeder polls `live` to know when extension work matters
//   • Signal handling raises `stop`; feeder and report loops honor it
//   • Workers register on the WaitGroup; the driver waits before merging
//
// Safety guarantees:
//   • Race-free flag access with proper memory ordering
//   • Deterministic shutdown behavior across all cores

package control

import "sync"

// ============================================================================
// GLOBAL STATE MANAGEMENT
// ============================================================================

var (
	// Global coordination flags - accessed by the feeder and all workers
	live uint32 // Run indicator: 1 = timed phases in flight, 0 = idle
	stop uint32 // Shutdown signal: 1 = abandon the run, 0 = running

	// Workers is the run-scope WaitGroup. Workers Add before launch and
	// Done on exit; the driver waits on it before touching lane rings.
	Workers sync.WaitGroup
)

// ============================================================================
// RUN LIFECYCLE SIGNALING
// ============================================================================

// BeginRun marks the measured portion of the run as in flight. The feeder
// starts watching lane rings once this is up.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func BeginRun() {
	live = 1
}

// EndRun clears the live flag after the last timed phase. The feeder goes
// quiet; spare rings stop being attached.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func EndRun() {
	live = 0
}

// ============================================================================
// SYSTEM SHUTDOWN (ABANDON RUN)
// ============================================================================

// Shutdown initiates termination by setting the global stop flag. The
// feeder and any phase still polling between rounds terminate cleanly
// upon detection.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func Shutdown() {
	stop = 1
}

// Stopped reports whether Shutdown has been requested.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func Stopped() bool {
	return stop == 1
}

// ============================================================================
// FLAG ACCESS (FEEDER INTEGRATION)
// ============================================================================

// Flags returns direct pointers to the global coordination flags for
// zero-allocation polling by the ring feeder.
//
// Return values: (*stop_flag, *live_flag)
// Memory safety: returned pointers remain valid for application lifetime
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func Flags() (*uint32, *uint32) {
	return &stop, &live
}
