// ════════════════════════════════════════════════════════════════════════════════════════════════
// Cross-Core Pair Suite
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Clock Speed Measurement Harness
// Component: Two-Thread Measurement Phases
//
// Description:
//   Two pinned threads, four phases, every phase boundary crossed together:
//     1. gate release skew      - rendezvous through a channel close (kernel-assisted
//                                 baseline), both sides stamping on release;
//     2. spin release skew      - the same rendezvous through the spin barrier;
//     3. cacheline round trip   - alternating stores on one shared word, polled with the
//                                 cpu's relax hint;
//     4. mutex round trip       - contended lock handoffs under a fixed cycle budget.
//
//   Role 0 is the caller's thread (pinned to the primary cpu); role 1 is spawned here,
//   locked, and pinned to the alternate.  When both roles share one cpu the spin phases
//   cannot make progress inside a timeslice, so the suite downgrades phase separation to
//   the cooperative gate, skips the spin-measured phases, and says so on stderr.
//
//   Every phase records probe points into its lane's ring chain with the phase-start
//   stamp as cause, so the exported trace shows which release each stamp answered.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package harness

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/dpreed/clock-speed/affinity"
	"github.com/dpreed/clock-speed/control"
	"github.com/dpreed/clock-speed/debug"
	"github.com/dpreed/clock-speed/points"
	"github.com/dpreed/clock-speed/pstamp"
	"github.com/dpreed/clock-speed/spinbar"
	"github.com/dpreed/clock-speed/stats"
	"github.com/dpreed/clock-speed/tsc"
	"github.com/dpreed/clock-speed/utils"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PROBE POINTS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Probes holds the point tags the pair suite records with.
type Probes struct {
	PhaseStart   int32
	GateRelease  int32
	SpinRelease  int32
	PongSeen     int32
	MutexAcquire int32
}

// RegisterProbes interns the suite's point names once, before any timed
// phase runs.
func RegisterProbes(reg *points.Registry) Probes {
	return Probes{
		PhaseStart:   reg.Register("phase start"),
		GateRelease:  reg.Register("gate release"),
		SpinRelease:  reg.Register("spin release"),
		PongSeen:     reg.Register("pong seen"),
		MutexAcquire: reg.Register("mutex acquire"),
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PHASE SEPARATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// pairSync brings both roles to a common point between rounds.  Spin mode
// is the barrier under test elsewhere; gate mode is a two-message channel
// rendezvous for the same-core downgrade.
type pairSync struct {
	spin *spinbar.Barrier // nil in gate mode
	a    chan struct{}
	b    chan struct{}
}

func newPairSync(spin bool) *pairSync {
	if spin {
		return &pairSync{spin: spinbar.New(2)}
	}
	return &pairSync{a: make(chan struct{}), b: make(chan struct{})}
}

func (s *pairSync) sync(role int) {
	if s.spin != nil {
		s.spin.Wait()
		return
	}
	if role == 0 {
		s.a <- struct{}{}
		<-s.b
	} else {
		<-s.a
		s.b <- struct{}{}
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SHARED PHASE STATE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// paddedU64 keeps per-role hot words on separate cache lines.
type paddedU64 struct {
	v uint64
	_ [56]byte
}

type pairCtx struct {
	cfg    *Config
	probes Probes

	sep  *pairSync        // between-round separation
	meas *spinbar.Barrier // the barrier whose release skew phase 2 measures

	gate   chan struct{} // per-round gate, role 0 recreates it
	stamps [2]paddedU64  // release stamps
	word   atomic.Uint64 // ping-pong cacheline
	mu     sync.Mutex
	turn   atomic.Uint32
	grabs  [2]paddedU64

	abort    atomic.Bool // latched stop flag, role 0 writes
	budgetUp atomic.Bool // mutex budget exhausted, role 0 writes
	sameCore bool

	lanes       [2]*pstamp.Ring
	cause       [2]pstamp.Stamp // per-lane phase-start stamps
	rows        []Measurement   // role 0 only
	partnerDone chan struct{}
}

// beginRound latches the global stop flag on role 0 and synchronizes, so
// both sides leave a phase on the same round instead of deadlocking on a
// half-abandoned rendezvous.
func (p *pairCtx) beginRound(role int) bool {
	if role == 0 {
		p.abort.Store(control.Stopped())
	}
	p.sep.sync(role)
	return !p.abort.Load()
}

// openPhase stamps the phase boundary for this lane; every point recorded
// during the phase carries this stamp as its cause.
func (p *pairCtx) openPhase(role int, w *pstamp.Ring) *pstamp.Ring {
	pstamp.Capture(p.probes.PhaseStart, &p.cause[role])
	return w.Record(p.probes.PhaseStart, &p.cause[role])
}

func absDelta(a, b uint64) float64 {
	if a > b {
		return float64(a - b)
	}
	return float64(b - a)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SUITE ENTRY
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// PairSuite runs the cross-core phases.  The calling goroutine is role 0
// and must already be locked and pinned to Primary; role 1 is spawned,
// locked, and pinned to Alternate here.  lane0 and lane1 are the live
// ring heads the roles record into.
func (c *Config) PairSuite(probes Probes, lane0, lane1 *pstamp.Ring) []Measurement {
	p := &pairCtx{
		cfg:         c,
		probes:      probes,
		meas:        spinbar.New(2),
		lanes:       [2]*pstamp.Ring{lane0, lane1},
		partnerDone: make(chan struct{}),
	}
	p.sameCore = c.Primary == c.Alternate
	if p.sameCore {
		debug.DropMessage("PAIR_DOWNGRADE",
			"primary and alternate share a core: gate separation, spin phases skipped")
	}
	p.sep = newPairSync(!p.sameCore)

	control.Workers.Add(1)
	go p.partner()

	p.runPhases(0)
	<-p.partnerDone
	return p.rows
}

func (p *pairCtx) partner() {
	defer control.Workers.Done()
	defer close(p.partnerDone)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if err := affinity.Pin(p.cfg.Alternate); err != nil {
		debug.DropError("PIN_ALT", err)
	}
	p.runPhases(1)
}

func (p *pairCtx) runPhases(role int) {
	w := p.lanes[role]
	w = p.gateSkew(role, w)
	if !p.sameCore {
		w = p.spinSkew(role, w)
		w = p.pingPong(role, w)
	}
	p.mutexPhase(role, w)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PHASE 1 & 2: RELEASE SKEW
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// gateSkew measures how far apart the two threads observe a channel-close
// release.  Role 0 closes and stamps; role 1 wakes and stamps.
func (p *pairCtx) gateSkew(role int, w *pstamp.Ring) *pstamp.Ring {
	w = p.openPhase(role, w)
	var skew stats.Welford
	for r := 0; r < p.cfg.SkewRounds; r++ {
		if role == 0 {
			p.gate = make(chan struct{})
		}
		if !p.beginRound(role) {
			break
		}
		if role == 0 {
			close(p.gate)
			p.stamps[0].v = tsc.Now()
		} else {
			<-p.gate
			p.stamps[1].v = tsc.Now()
		}
		w = w.Record(p.probes.GateRelease, &p.cause[role])
		p.sep.sync(role)
		if role == 0 {
			skew.Add(absDelta(p.stamps[0].v, p.stamps[1].v))
		}
	}
	if role == 0 {
		p.rows = append(p.rows, p.cfg.finish("gate release skew", &skew))
	}
	return w
}

// spinSkew measures the same release through the spin barrier: both
// threads stamp the instant Wait returns.
func (p *pairCtx) spinSkew(role int, w *pstamp.Ring) *pstamp.Ring {
	w = p.openPhase(role, w)
	var skew stats.Welford
	for r := 0; r < p.cfg.SkewRounds; r++ {
		if !p.beginRound(role) {
			break
		}
		p.meas.Wait()
		p.stamps[role].v = tsc.Now()
		w = w.Record(p.probes.SpinRelease, &p.cause[role])
		p.sep.sync(role)
		if role == 0 {
			skew.Add(absDelta(p.stamps[0].v, p.stamps[1].v))
		}
	}
	if role == 0 {
		p.rows = append(p.rows, p.cfg.finish("spin release skew", &skew))
	}
	return w
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PHASE 3: CACHELINE ROUND TRIP
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// pingPong bounces one atomic word between the cores: role 0 stores odd
// sequence values, role 1 answers with even ones, both polling with the
// relax hint.  Timed in chunks so the row carries a deviation.
func (p *pairCtx) pingPong(role int, w *pstamp.Ring) *pstamp.Ring {
	w = p.openPhase(role, w)
	const chunks = 100
	perChunk := p.cfg.PingPongRounds / chunks
	if perChunk < 1 {
		perChunk = 1
	}
	var rt stats.Welford
	seq := uint64(0)
	for ck := 0; ck < chunks; ck++ {
		if !p.beginRound(role) {
			break
		}
		var start uint64
		if role == 0 {
			start = tsc.Now()
		}
		for i := 0; i < perChunk; i++ {
			if role == 0 {
				seq++
				p.word.Store(seq) // ping
				seq++
				for p.word.Load() != seq {
					cpuRelax()
				}
			} else {
				seq++
				for p.word.Load() != seq {
					cpuRelax()
				}
				seq++
				p.word.Store(seq) // pong
			}
		}
		if role == 0 {
			rt.Add(float64(tsc.Now()-start) / float64(perChunk))
		}
		w = w.Record(p.probes.PongSeen, &p.cause[role])
		p.sep.sync(role)
	}
	if role == 0 {
		p.rows = append(p.rows, p.cfg.finish("cacheline round trip", &rt))
	}
	return w
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PHASE 4: CONTENDED MUTEX
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// mutexPhase hammers one mutex from both threads, alternating by turn,
// until the cycle budget is spent.  Runs in the same-core downgrade too:
// the futex path yields the core on contention.
func (p *pairCtx) mutexPhase(role int, w *pstamp.Ring) *pstamp.Ring {
	w = p.openPhase(role, w)
	const chunk = 256
	var (
		lat        stats.Welford
		start      uint64
		chunkStart uint64
	)
	if !p.beginRound(role) {
		if role == 0 {
			p.rows = append(p.rows, p.cfg.finish("mutex round trip", &lat))
		}
		return w
	}
	if role == 0 {
		start = tsc.Now()
	}
	other := uint32(1 - role)
	grabs := uint64(0)
	for !p.budgetUp.Load() {
		p.mu.Lock()
		if p.turn.Load() == uint32(role) {
			p.turn.Store(other)
			grabs++
			if grabs&(chunk-1) == 0 {
				if role == 0 {
					now := tsc.Now()
					if chunkStart != 0 {
						lat.Add(float64(now-chunkStart) / chunk)
					}
					chunkStart = now
					if now-start > p.cfg.MutexBudget || control.Stopped() {
						p.budgetUp.Store(true)
					}
				}
				w = w.Record(p.probes.MutexAcquire, &p.cause[role])
			}
		}
		p.mu.Unlock()
	}
	p.grabs[role].v = grabs
	p.sep.sync(role)
	if role == 0 {
		p.rows = append(p.rows, p.cfg.finish("mutex round trip", &lat))
		debug.DropMessage("PAIR_MUTEX",
			"acquisitions="+utils.Utoa(p.grabs[0].v+p.grabs[1].v))
	}
	return w
}
