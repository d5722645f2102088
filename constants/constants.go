// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — Global Measurement Tunables
//
// Purpose:
//   - Defines run-wide constants for event rings, the ring feeder, and the
//     timed-operation suite.
//
// Notes:
//   - Sized so a full run's event storage stays inside L2 per lane
//   - Spare-ring budgets trade memory for loss-free traces
//
// ⚠️ No runtime logic here — all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ───────────────────────────── Event Rings ─────────────────────────────────

const (
	// RingBits sizes each event ring: 2^10 entries = 1,024 slots ≈ 40 KiB.
	// One ring per chain link; the feeder attaches fresh rings before the
	// live one fills, so capacity bounds loss, not trace length.
	RingBits = 10

	// RingCapacity is the slot count derived from RingBits.
	RingCapacity = 1 << RingBits

	// HighWaterShift sets the feeder's extension threshold to
	// capacity - capacity>>HighWaterShift (7/8 full with shift 3).
	// Extending earlier wastes rings; later risks overwrites while the
	// feeder is between polls.
	HighWaterShift = 3

	// SpareRings is the feeder's per-run ring budget per lane. When spent,
	// live rings wrap and drop oldest entries; the overflow counters keep
	// the loss visible in the report.
	SpareRings = 8
)

// ─────────────────────────── Timed Operations ───────────────────────────────

const (
	// TimedReps is how many times each timed operation is repeated per
	// sample line, matching one screenful of comparable rows.
	TimedReps = 20

	// OverheadSamples is the population size for the read-pair overhead
	// estimate subtracted from every reported interval.
	OverheadSamples = 100

	// MutexBudgetCycles bounds the contended-mutex phase: both sides stop
	// handing the lock back and forth once the primary has burned this
	// many cycles (~0.15 s at 3.5 GHz).
	MutexBudgetCycles = 500_000_000

	// SkewRounds is the rendezvous count for the arrival-skew phases.
	SkewRounds = 1_000

	// PingPongRounds is the round-trip count for the cache-line ping/pong
	// phase.
	PingPongRounds = 10_000
)

// ───────────────────────────── CPU Topology ─────────────────────────────────

const (
	// MaxCPUs bounds parsed CPU ids; matches the kernel CPU_SETSIZE.
	MaxCPUs = 1024
)

// ───────────────────────────── Probe Registry ───────────────────────────────

const (
	// PointTableCapacity sizes the probe-point name table. Power of two;
	// the table refuses registration past 75% occupancy.
	PointTableCapacity = 256
)

// ────────────────────────────── Persistence ─────────────────────────────────

const (
	// DefaultDBPath is where run results land unless -db overrides it.
	DefaultDBPath = "clock_speed.db"

	// DefaultTracePath is the merged-event JSONL destination unless -trace
	// overrides it.
	DefaultTracePath = "clock_speed_trace.jsonl"
)
