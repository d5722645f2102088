// ════════════════════════════════════════════════════════════════════════════════════════════════
// Self-Resetting Spin Barrier
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Clock Speed Measurement Harness
// Component: Thread Rendezvous Primitive
//
// Description:
//   N-thread rendezvous on a single atomic word, reusable for an unbounded number of rounds
//   with no reinitialization between rounds. Arrival is one atomic increment; release is a
//   phase-bit flip observed by busy-polling waiters. The kernel is never involved, so the
//   skew between released threads stays in the tens-of-cycles range that pthread-style
//   barriers cannot reach.
//
// Counter layout (capacity C = participants rounded up to a power of two):
//   - bits [0, log2(C))   arrival field: correction + arrivals this round
//   - bit  log2(C)        phase bit: flips once per round, releases waiters
//   - higher bits         round carry, wraps harmlessly mod 2^32
//
// The arrival field starts each round at correction = C - participants, so the Nth arrival
// is exactly the one that carries into the phase bit. That thread, the releaser, re-adds
// the correction and the barrier is armed for the next round before any waiter returns.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package spinbar

import (
	"math/bits"
	"sync/atomic"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CORE DATA STRUCTURES
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Barrier is a self-resetting rendezvous for a fixed set of participant threads.
// The zero value is not usable; construct with New.
//
// All rounds share the single atomic word; capacity, correction, and participant
// count are fixed at construction and read-only afterwards.
//
//go:notinheap
//go:align 64
type Barrier struct {
	word atomic.Uint32 // 4B  - arrival field + phase bit + round carry
	_    [60]byte      // 60B - hot word owns its cache line

	capacity   uint32   // 4B  - participants rounded up to a power of two
	correction uint32   // 4B  - capacity - participants, re-added each round
	procs      uint32   // 4B  - configured participant count
	_          [52]byte // 52B - cold fields padded off the next line
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONSTRUCTION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// New returns a barrier for exactly count participant threads.
// Panics if count is zero: a barrier with no participants has no releaser.
func New(count uint32) *Barrier {
	if count < 1 {
		panic("spinbar: participant count must be >= 1")
	}
	capacity := uint32(1) << bits.Len32(count-1)
	b := &Barrier{
		capacity:   capacity,
		correction: capacity - count,
		procs:      count,
	}
	b.word.Store(b.correction)
	return b
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// RENDEZVOUS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Wait blocks the calling thread until all participants of the current round
// have arrived, then returns with the barrier already armed for the next round.
//
// The final arrival carries the arrival field into the phase bit and becomes
// the releaser: it re-adds the correction and returns without spinning. Every
// other arrival captures the phase it arrived under and busy-polls until the
// bit flips. cpuRelax keeps the poll loop polite to the sibling hyperthread.
//
// A waiter can never miss its flip: the next round cannot complete (and flip
// the bit back) until this waiter has returned and arrived again.
//
// ⚠️ Calling Wait with more threads than the configured count corrupts the
// arrival field. One call per participant per round.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:registerparams
func (b *Barrier) Wait() {
	v := b.word.Add(1)
	if v&(b.capacity-1) != 0 {
		phase := v & b.capacity
		for b.word.Load()&b.capacity == phase {
			cpuRelax()
		}
	} else if b.correction != 0 {
		b.word.Add(b.correction)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// OBSERVABILITY
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Arrived reports how many participants of the round in progress have arrived.
// Best-effort: the value is exact only while the caller itself has not arrived.
//
//go:nosplit
//go:inline
func (b *Barrier) Arrived() uint32 {
	return (b.word.Load() - b.correction) & (b.capacity - 1)
}

// Participants returns the configured participant count.
//
//go:nosplit
//go:inline
func (b *Barrier) Participants() uint32 { return b.procs }

// Capacity returns the power-of-two arrival-field size.
//
//go:nosplit
//go:inline
func (b *Barrier) Capacity() uint32 { return b.capacity }

// Correction returns the per-round reset value (Capacity - Participants).
//
//go:nosplit
//go:inline
func (b *Barrier) Correction() uint32 { return b.correction }
