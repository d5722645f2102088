package pstamp

import (
	"sync"
	"sync/atomic"
	"testing"
)

// fillRing appends synthetic entries through the same slot arithmetic the
// writer uses, so merge and enumeration tests can pick exact cycle counts.
func fillRing(r *Ring, unit uint32, cycles ...uint64) *Ring {
	for _, c := range cycles {
		r.buf[r.next] = Entry{
			Event: Stamp{Point: int32(c), Unit: unit, Cycles: c},
			Cause: Stamp{Point: -1, Unit: unit, Cycles: c - 1},
		}
		if r.used == r.capacity {
			r.overflows.Add(1)
		} else {
			r.used++
		}
		r.next++
		if r.next == r.capacity {
			r.next = 0
		}
	}
	return r
}

// points drains a ring's retained window into point tags, oldest first.
func points(r *Ring) []int32 {
	var out []int32
	r.Enumerate(func(e *Entry) { out = append(out, e.Event.Point) })
	return out
}

func equalPoints(a []int32, b ...int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ============================================================================
// CONSTRUCTION
// ============================================================================

func TestNewRingPanicsOnZeroCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("NewRing(%d) should panic", capacity)
				}
			}()
			_ = NewRing(capacity)
		}()
	}
}

// ============================================================================
// RECORDING
// ============================================================================

// TestRecordRetainsWriteOrder drives the real capture path and checks the
// retained window reads back in write order with monotone stamps.
func TestRecordRetainsWriteOrder(t *testing.T) {
	r := NewRing(8)
	var cause Stamp
	Capture(0, &cause)

	w := r
	for p := int32(1); p <= 5; p++ {
		w = w.Record(p, &cause)
	}
	if w != r {
		t.Fatal("Record hopped without a successor")
	}
	if r.Len() != 5 || r.Overflows() != 0 {
		t.Fatalf("Len=%d Overflows=%d after 5 records", r.Len(), r.Overflows())
	}
	if got := points(r); !equalPoints(got, 1, 2, 3, 4, 5) {
		t.Fatalf("points = %v", got)
	}

	var prev uint64
	r.Enumerate(func(e *Entry) {
		if e.Event.Cycles < prev {
			t.Fatalf("stamps regressed: %d after %d", e.Event.Cycles, prev)
		}
		if e.Event.Cycles < cause.Cycles {
			t.Fatal("event predates its cause")
		}
		prev = e.Event.Cycles
	})
}

// TestOverflowDropsOldest: capacity writes then one more must cost exactly
// the original oldest entry and nothing else.
func TestOverflowDropsOldest(t *testing.T) {
	r := NewRing(4)
	var cause Stamp
	Capture(0, &cause)

	w := r
	for p := int32(1); p <= 4; p++ {
		w = w.Record(p, &cause)
	}
	if r.Overflows() != 0 {
		t.Fatalf("Overflows=%d before wraparound", r.Overflows())
	}
	w = w.Record(5, &cause)
	if w != r {
		t.Fatal("unextended ring must keep the writer")
	}
	if r.Overflows() != 1 {
		t.Fatalf("Overflows=%d after capacity+1 writes, want 1", r.Overflows())
	}
	if r.Len() != 4 {
		t.Fatalf("Len=%d, want capacity", r.Len())
	}
	if got := points(r); !equalPoints(got, 2, 3, 4, 5) {
		t.Fatalf("points = %v, want oldest dropped", got)
	}
}

// TestExtensionAvoidsOverflow: with a successor linked before exhaustion,
// capacity+k writes lose nothing and enumeration follows write order
// across the hop.
func TestExtensionAvoidsOverflow(t *testing.T) {
	r1 := NewRing(4)
	r2 := NewRing(4)
	if !r1.Extend(r2) {
		t.Fatal("Extend on a fresh ring must succeed")
	}

	var cause Stamp
	Capture(0, &cause)
	w := r1
	for p := int32(1); p <= 6; p++ {
		w = w.Record(p, &cause)
		switch {
		case p <= 4 && w != r1:
			t.Fatalf("write %d hopped early", p)
		case p >= 5 && w != r2:
			t.Fatalf("write %d did not land on the successor", p)
		}
	}

	if r1.Overflows() != 0 || r2.Overflows() != 0 {
		t.Fatalf("overflows %d/%d, want 0/0", r1.Overflows(), r2.Overflows())
	}
	if !r1.Inactive() {
		t.Error("hopped-past ring must be inactive")
	}
	if r2.Inactive() {
		t.Error("live successor must stay active")
	}
	if got := points(r1); !equalPoints(got, 1, 2, 3, 4) {
		t.Fatalf("ring1 points = %v", got)
	}
	if got := points(r2); !equalPoints(got, 5, 6) {
		t.Fatalf("ring2 points = %v", got)
	}
}

// TestCapacityOneHandover pins the smallest legal window: the first write
// fills it, the second hops.
func TestCapacityOneHandover(t *testing.T) {
	r1 := NewRing(1)
	r2 := NewRing(1)
	if !r1.Extend(r2) {
		t.Fatal("Extend failed")
	}
	var cause Stamp
	Capture(0, &cause)

	w := r1.Record(1, &cause)
	if w != r1 || r1.Len() != 1 {
		t.Fatalf("first record: w==r1=%v Len=%d", w == r1, r1.Len())
	}
	w = w.Record(2, &cause)
	if w != r2 || !r1.Inactive() || r2.Len() != 1 {
		t.Fatalf("second record did not hand over cleanly")
	}
	if r1.Overflows() != 0 {
		t.Fatalf("handover cost %d overflows", r1.Overflows())
	}
}

// TestOneHopPerCall: a full successor absorbs the write by wrapping; the
// writer never chases a second link within one call.
func TestOneHopPerCall(t *testing.T) {
	r1 := fillRing(NewRing(2), 0, 10, 20)
	r2 := fillRing(NewRing(2), 0, 30, 40)
	r3 := NewRing(2)
	if !r1.Extend(r2) || !r2.Extend(r3) {
		t.Fatal("chain setup failed")
	}

	var cause Stamp
	Capture(0, &cause)
	w := r1.Record(99, &cause)

	if w != r2 {
		t.Fatal("write must land exactly one hop away")
	}
	if r2.Overflows() != 1 {
		t.Fatalf("full successor Overflows=%d, want 1 (wrap, not chase)", r2.Overflows())
	}
	if r3.Len() != 0 {
		t.Fatal("second link must stay untouched within one call")
	}
}

// TestCauseValueCopy: the log keeps a copy; the caller's stamp is dead to
// it after Record returns.
func TestCauseValueCopy(t *testing.T) {
	r := NewRing(2)
	cause := Stamp{Point: 7, Unit: 3, Cycles: 100}
	r.Record(1, &cause)

	cause.Point = -1
	cause.Unit = 999
	cause.Cycles = 0

	r.Enumerate(func(e *Entry) {
		if e.Cause.Point != 7 || e.Cause.Unit != 3 || e.Cause.Cycles != 100 {
			t.Fatalf("logged cause mutated: %+v", e.Cause)
		}
	})
}

// ============================================================================
// EXTENSION CLAIMS
// ============================================================================

func TestExtendFirstWins(t *testing.T) {
	r := NewRing(2)
	a, b := NewRing(2), NewRing(2)
	if !r.Extend(a) {
		t.Fatal("first Extend must succeed")
	}
	if r.Extend(b) {
		t.Fatal("second Extend must fail")
	}
	if !r.Extended() || r.Successor() != a {
		t.Fatal("successor identity lost")
	}
}

func TestExtendSealedRingFails(t *testing.T) {
	r := NewRing(2)
	r.Seal()
	if r.Extend(NewRing(2)) {
		t.Fatal("sealed ring accepted a successor")
	}
	if !r.Inactive() {
		t.Fatal("Seal did not retire the ring")
	}
}

func TestExtendPanicsOnBadSuccessor(t *testing.T) {
	r := NewRing(2)
	for name, next := range map[string]*Ring{"nil": nil, "self": r} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Extend(%s) should panic", name)
				}
			}()
			r.Extend(next)
		}()
	}
}

// TestExtendConcurrentSingleWinner races many claimants at one ring and
// counts the survivors: the CAS must admit exactly one.
func TestExtendConcurrentSingleWinner(t *testing.T) {
	const claimants = 16
	r := NewRing(2)
	spares := make([]*Ring, claimants)
	for i := range spares {
		spares[i] = NewRing(2)
	}

	var wins atomic.Int32
	var start, done sync.WaitGroup
	start.Add(1)
	for i := 0; i < claimants; i++ {
		done.Add(1)
		go func(spare *Ring) {
			defer done.Done()
			start.Wait()
			if r.Extend(spare) {
				wins.Add(1)
			}
		}(spares[i])
	}
	start.Done()
	done.Wait()

	if wins.Load() != 1 {
		t.Fatalf("%d claims succeeded, want exactly 1", wins.Load())
	}
	won := r.Successor()
	found := false
	for _, s := range spares {
		if s == won {
			found = true
		}
	}
	if !found {
		t.Fatal("successor is not one of the offered rings")
	}
}

// ============================================================================
// ENUMERATION
// ============================================================================

func TestEnumerateEmpty(t *testing.T) {
	visits := 0
	NewRing(4).Enumerate(func(*Entry) { visits++ })
	if visits != 0 {
		t.Fatalf("empty ring visited %d entries", visits)
	}
}

func TestEnumerateRestartable(t *testing.T) {
	r := fillRing(NewRing(4), 0, 10, 20, 30, 40, 50) // wraps once
	first := points(r)
	second := points(r)
	if !equalPoints(first, 20, 30, 40, 50) {
		t.Fatalf("first walk = %v", first)
	}
	if !equalPoints(second, first...) {
		t.Fatalf("second walk = %v, want repeat of %v", second, first)
	}
}

// ============================================================================
// BENCHMARKS
// ============================================================================

// BenchmarkRecord measures the steady-state append: capture, two stores,
// cursor bump.  Zero allocations or the instrument is lying about itself.
func BenchmarkRecord(b *testing.B) {
	r := NewRing(1 << 16)
	var cause Stamp
	Capture(0, &cause)

	b.ReportAllocs()
	b.ResetTimer()
	w := r
	for i := 0; i < b.N; i++ {
		w = w.Record(1, &cause)
	}
}

func BenchmarkCapture(b *testing.B) {
	var s Stamp
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Capture(1, &s)
	}
}
