// ════════════════════════════════════════════════════════════════════════════════════════════════
// Measurement Engine
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Clock Speed Measurement Harness
// Component: Timed Operation Core
//
// Description:
//   Turns "how long does X take" into numbers with a known noise floor.  Every interval is
//   bracketed by two cycle-counter reads; the cost of an empty bracket is estimated once
//   per run and subtracted from everything measured after it, with its own deviation kept
//   so the report can say how much to trust small values.
//
//   Single-threaded operations run through timeOp on the caller's (pinned) thread.  The
//   cross-core phases live in phases.go and coordinate through the spin barrier.
//
// ⚠️ Callers pin and LockOSThread before measuring; the engine never changes
//    scheduling state behind the caller's back except where an operation's
//    whole point is to (affinity switches, which restore the home cpu).
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package harness

import (
	"github.com/dpreed/clock-speed/stats"
	"github.com/dpreed/clock-speed/tsc"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONFIGURATION & RESULTS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Config carries one run's measurement parameters.  The driver fills it
// from flags and calibration; the engine treats it as read-only except for
// EstimateOverhead arming the Overhead field.
type Config struct {
	Primary   int // home cpu, the driver's own thread
	Alternate int // partner cpu for the pair suite

	Reps            int    // repetitions per timed operation
	OverheadSamples int    // empty-bracket samples for the noise floor
	SkewRounds      int    // release-skew rounds per gate kind
	PingPongRounds  int    // cacheline handoffs in the poll phase
	MutexBudget     uint64 // cycle budget for the contended mutex phase

	Adjust   tsc.Adjust // cycles→ns conversion for reported means
	Overhead float64    // mean empty-bracket cost in cycles, subtracted per sample
}

// Measurement is one labeled result: per-operation statistics over Samples
// repetitions, overhead already subtracted.
type Measurement struct {
	Label        string
	Samples      uint64
	MeanCycles   float64
	StdDevCycles float64
	MeanNanos    float64
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TIMING CORE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// nanosOf converts a (possibly fractional) cycle count with the run's
// calibration.  Shift is at most 32, so the divisor is exact.
func (c *Config) nanosOf(cycles float64) float64 {
	return cycles * float64(c.Adjust.Mult) / float64(uint64(1)<<c.Adjust.Shift)
}

// deduct subtracts the armed overhead, clamping at zero so an operation
// cheaper than the bracket itself reads as 0 rather than wrapping.
func (c *Config) deduct(cycles uint64) float64 {
	d := float64(cycles) - c.Overhead
	if d < 0 {
		return 0
	}
	return d
}

// finish folds an accumulator into a reportable row.  Rows with fewer
// than two samples report deviation 0, not NaN: NaN would round-trip as
// NULL through the sqlite archive.
func (c *Config) finish(label string, w *stats.Welford) Measurement {
	sd := 0.0
	if w.Count() > 1 {
		sd = w.StdDev()
	}
	return Measurement{
		Label:        label,
		Samples:      w.Count(),
		MeanCycles:   w.Mean(),
		StdDevCycles: sd,
		MeanNanos:    c.nanosOf(w.Mean()),
	}
}

// timeOp measures fn Reps times with bracketing counter reads.
func (c *Config) timeOp(label string, fn func()) Measurement {
	var w stats.Welford
	for i := 0; i < c.Reps; i++ {
		start := tsc.Now()
		fn()
		stop := tsc.Now()
		w.Add(c.deduct(stop - start))
	}
	return c.finish(label, &w)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// NOISE FLOOR
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// EstimateOverhead times OverheadSamples empty brackets, arms the config's
// per-sample subtraction with the mean, and returns the row (reported
// unsubtracted: it is the thing being estimated).
func (c *Config) EstimateOverhead() Measurement {
	var w stats.Welford
	for i := 0; i < c.OverheadSamples; i++ {
		start := tsc.Now()
		stop := tsc.Now()
		w.Add(float64(stop - start))
	}
	c.Overhead = w.Mean()
	return c.finish("read-pair overhead", &w)
}
