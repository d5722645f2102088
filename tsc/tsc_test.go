package tsc

import (
	"testing"
	"time"
)

// TestNowNonDecreasing reads the counter back-to-back many times; a single
// inversion means the reader or the platform counter is unusable for
// interval timing.
func TestNowNonDecreasing(t *testing.T) {
	prev := Now()
	for i := 0; i < 100_000; i++ {
		cur := Now()
		if cur < prev {
			t.Fatalf("counter went backwards: %d then %d (iteration %d)", prev, cur, i)
		}
		prev = cur
	}
}

// TestNowAdvancesAcrossSleep pins down that the counter actually ticks at
// a plausible rate rather than returning a cached value.
func TestNowAdvancesAcrossSleep(t *testing.T) {
	c0 := Now()
	time.Sleep(5 * time.Millisecond)
	c1 := Now()
	if c1 <= c0 {
		t.Fatalf("counter did not advance across sleep: %d -> %d", c0, c1)
	}
}

// TestNowIDConsistent checks the two readers observe the same timeline.
func TestNowIDConsistent(t *testing.T) {
	c0 := Now()
	c1, _ := NowID()
	c2 := Now()
	if c1 < c0 || c2 < c1 {
		t.Fatalf("NowID out of line with Now: %d, %d, %d", c0, c1, c2)
	}
}

// TestAdjustNanosExact verifies the 128-bit fixed-point conversion against
// hand-computed values, including counts large enough to overflow a naive
// 64-bit multiply.
func TestAdjustNanosExact(t *testing.T) {
	cases := []struct {
		a      Adjust
		cycles uint64
		want   uint64
	}{
		{Adjust{Mult: 1, Shift: 0}, 12345, 12345},
		{Adjust{Mult: 3, Shift: 0}, 1000, 3000},
		{Adjust{Mult: 1 << 20, Shift: 20}, 987654321, 987654321},
		{Adjust{Mult: 1, Shift: 1}, 7, 3},
		// 2^40 cycles at mult 2^32-1, shift 32:
		// (2^40 * (2^32-1)) >> 32 = 2^40 + 2^32 - 256
		{Adjust{Mult: ^uint32(0), Shift: 32}, 1 << 40, 1<<40 + 1<<32 - 256},
	}
	for _, c := range cases {
		if got := c.a.Nanos(c.cycles); got != c.want {
			t.Errorf("Adjust%+v.Nanos(%d) = %d, want %d", c.a, c.cycles, got, c.want)
		}
	}
}

// TestFitRoundTrips checks that fit() produces conversions accurate to
// 0.01% across the frequency range we meet in practice (24 MHz generic
// timers up to 5 GHz TSCs).
func TestFitRoundTrips(t *testing.T) {
	for _, hz := range []uint64{24_000_000, 1_000_000_000, 2_400_000_000, 3_500_000_000, 5_000_000_000} {
		a := fit(hz)
		if !a.Usable() {
			t.Fatalf("fit(%d) unusable", hz)
		}
		got := a.Nanos(hz) // one second of cycles
		const wantNs = 1_000_000_000
		diff := int64(got) - wantNs
		if diff < 0 {
			diff = -diff
		}
		if diff > wantNs/10_000 {
			t.Errorf("fit(%d): one second converts to %d ns (off by %d)", hz, got, diff)
		}
	}
}

func TestFitZero(t *testing.T) {
	if fit(0).Usable() {
		t.Error("fit(0) should be unusable")
	}
}

// TestCalibrate exercises whichever source the platform provides and
// sanity-checks the result against a real sleep.  Bounds are loose: CI
// virtualization stretches sleeps, never shrinks them below the request.
func TestCalibrate(t *testing.T) {
	a, source := Calibrate()
	if source == "" {
		t.Fatal("Calibrate returned empty source")
	}
	if !a.Usable() {
		t.Fatalf("Calibrate(%s) returned unusable adjust", source)
	}
	t.Logf("calibration source=%s mult=%d shift=%d", source, a.Mult, a.Shift)

	c0 := Now()
	time.Sleep(50 * time.Millisecond)
	ns := a.Nanos(Now() - c0)
	if ns < 40_000_000 || ns > 5_000_000_000 {
		t.Errorf("50ms sleep converted to %d ns", ns)
	}
}

func BenchmarkNow(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Now()
	}
}

func BenchmarkNowID(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = NowID()
	}
}
