// ════════════════════════════════════════════════════════════════════════════════════════════════
// Single-Writer Event Ring
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Clock Speed Measurement Harness
// Component: Causal Event Log Storage
//
// Description:
//   Bounded in-memory log for Entry records with exactly one writer thread.  When the
//   window fills the ring either hands the write stream to a linked successor ring
//   (attached by a background feeder, never the writer itself) or overwrites its oldest
//   entry and counts the loss.  Either way Record stays wait-free: no locks, no
//   allocation, no scheduler, every call lands in bounded cycles.
//
//   Successor links are claimed exactly once through an atomic compare-and-swap and never
//   cleared, so chains are append-only and acyclic by construction.  The writer hops one
//   link per Record call and marks the abandoned ring inactive, which retires it for
//   enumeration and merging.
//
// Memory layout:
//   Writer-owned cursor fields share one cache line; the fields other threads touch
//   (successor link, inactive flag, overflow counter) live on their own lines so feeder
//   polling never bounces the writer's line.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package pstamp

import (
	"sync/atomic"

	"github.com/dpreed/clock-speed/tsc"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CORE DATA STRUCTURES
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Ring is a fixed-capacity single-writer event log.  Construct with NewRing.
//
//go:notinheap
//go:align 64
type Ring struct {
	next     uint32   // 4B  - slot the next write lands in
	used     uint32   // 4B  - retained entries, saturates at capacity
	capacity uint32   // 4B  - slot count, fixed at construction
	_        [4]byte  // 4B  - align the slice header
	buf      []Entry  // 24B - slot storage, len == capacity
	_        [24]byte // 24B - writer line ends here

	succ     atomic.Pointer[Ring] // 8B  - at-most-one successor, CAS-claimed
	inactive atomic.Bool          // 4B  - set once, never cleared
	_        [52]byte             // 52B - link line padding

	overflows atomic.Uint64 // 8B  - entries lost to wraparound overwrite
	_         [56]byte      // 56B - keep the counter off the link line
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONSTRUCTION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// NewRing returns an empty active ring with the given slot count.
// Panics if capacity is zero: a windowless log can retain nothing.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		panic("pstamp: ring capacity must be >= 1")
	}
	return &Ring{
		capacity: uint32(capacity),
		buf:      make([]Entry, capacity),
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// RECORDING (WRITER THREAD ONLY)
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Record captures the current instant and appends {event, *cause} to the
// log, returning the ring the caller must use for its next Record.  The
// caller rebinds on every call; that single-hop handover is how a chain
// grows without the writer ever allocating or waiting.
//
// Full window with a successor linked: this ring is marked inactive, the
// write lands on the successor, and the successor is returned.  Exactly
// one hop per call; a successor that is itself full wraps rather than
// chasing further links.
//
// Full window without a successor: the oldest retained entry is
// overwritten and the overflow counter incremented.
//
// ⚠️ Single writer only, and cause must be non-nil; the hot path checks
// neither.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:registerparams
func (r *Ring) Record(point int32, cause *Stamp) *Ring {
	if r.used == r.capacity {
		if next := r.succ.Load(); next != nil {
			r.inactive.Store(true)
			r = next
		}
	}
	slot := &r.buf[r.next]
	c, u := tsc.NowID()
	slot.Event.Point = point
	slot.Event.Unit = u
	slot.Event.Cycles = c
	slot.Cause = *cause
	if r.used == r.capacity {
		r.overflows.Add(1)
	} else {
		r.used++
	}
	r.next++
	if r.next == r.capacity {
		r.next = 0
	}
	return r
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// EXTENSION (ANY THREAD)
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Extend offers next as this ring's successor.  The attach is a single
// compare-and-swap: the first offer wins, every later offer (and any
// offer against a retired ring) returns false.  Losing is not an error;
// the caller keeps its spare ring and tries again elsewhere.
//
// Panics on nil or self attachment, which would corrupt the chain.
//
//go:nosplit
func (r *Ring) Extend(next *Ring) bool {
	if next == nil || next == r {
		panic("pstamp: successor must be a distinct ring")
	}
	if r.inactive.Load() {
		return false
	}
	return r.succ.CompareAndSwap(nil, next)
}

// Seal retires the ring explicitly.  The driver seals chain tails once
// the run is over so no further extension can land and consumers know the
// window is final.
//
//go:nosplit
func (r *Ring) Seal() {
	r.inactive.Store(true)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ENUMERATION & OBSERVABILITY
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Enumerate calls visit for every retained entry, oldest to newest, at
// most capacity times.  Entries are visited in place; callers that keep
// them copy them.  The walk is exact on retired rings and best-effort on
// a ring still being written.
func (r *Ring) Enumerate(visit func(*Entry)) {
	used, next := r.used, r.next
	if used < r.capacity {
		// Never wrapped: retained window is a prefix in write order.
		for i := uint32(0); i < used; i++ {
			visit(&r.buf[i])
		}
		return
	}
	// Wrapped at least once: oldest retained entry sits at the cursor.
	for i := uint32(0); i < used; i++ {
		slot := next + i
		if slot >= r.capacity {
			slot -= r.capacity
		}
		visit(&r.buf[slot])
	}
}

// Len reports how many entries the window currently retains.
//
//go:nosplit
//go:inline
func (r *Ring) Len() int { return int(r.used) }

// Capacity reports the fixed slot count.
//
//go:nosplit
//go:inline
func (r *Ring) Capacity() int { return int(r.capacity) }

// Overflows reports how many entries were lost to wraparound overwrite.
//
//go:nosplit
//go:inline
func (r *Ring) Overflows() uint64 { return r.overflows.Load() }

// Extended reports whether a successor has been claimed.
//
//go:nosplit
//go:inline
func (r *Ring) Extended() bool { return r.succ.Load() != nil }

// Successor returns the linked successor, nil if none.
//
//go:nosplit
//go:inline
func (r *Ring) Successor() *Ring { return r.succ.Load() }

// Inactive reports whether the ring has been retired, either by the
// writer hopping past it or by Seal.
//
//go:nosplit
//go:inline
func (r *Ring) Inactive() bool { return r.inactive.Load() }
