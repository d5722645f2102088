// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: collector.go — background ring feeder (double-buffering of rings)
//
// Purpose:
//   - Keeps every worker lane's event chain ahead of its writer by attaching
//     spare rings before the live window fills.
//   - Owns the spare-ring FIFO; writers never allocate, never wait, and never
//     know the feeder exists.
//
// Model:
//   - One feeder goroutine, pinned nowhere special because it only touches
//     cold fields: Len/Extended polls and the successor CAS.
//   - The spare budget is allocated up front.  When it runs dry the live
//     rings wrap and drop their oldest entries; the overflow counters keep
//     that loss visible in the report instead of blocking a writer.
//   - A failed extension (ring already sealed at run end) returns the spare
//     to the FIFO for the next lane.
//
// ⚠️ The FIFO and lane tails are feeder-goroutine state.  Construction and
//    Finish happen strictly before Start and after Stop respectively.
// ─────────────────────────────────────────────────────────────────────────────

package collector

import (
	"sync/atomic"
	"time"

	"github.com/eapache/queue"

	"github.com/dpreed/clock-speed/control"
	"github.com/dpreed/clock-speed/debug"
	"github.com/dpreed/clock-speed/pstamp"
	"github.com/dpreed/clock-speed/utils"
)

// lane tracks one writer's chain: the head anchors merging, the tail is
// the newest ring the feeder has discovered by walking successor links.
type lane struct {
	head *pstamp.Ring
	tail *pstamp.Ring
}

// Feeder watches lane rings and extends them from a fixed spare budget.
type Feeder struct {
	lanes     []lane
	spares    *queue.Queue // *pstamp.Ring FIFO, feeder goroutine only
	highWater int          // extend once Len reaches this
	poll      time.Duration
	quit      atomic.Bool
	done      chan struct{}

	attached atomic.Uint64 // rings successfully linked
	starved  atomic.Uint64 // sweeps that wanted a ring and had none
}

// New builds a feeder for laneCount writers with ringCap-slot rings and a
// budget of spares rings per lane.  Panics on a zero lane count; rings
// panic on bad capacities themselves.
func New(laneCount, ringCap, spares int) *Feeder {
	if laneCount < 1 {
		panic("collector: lane count must be >= 1")
	}
	f := &Feeder{
		lanes:     make([]lane, laneCount),
		spares:    queue.New(),
		highWater: ringCap - ringCap>>3,
		poll:      100 * time.Microsecond,
		done:      make(chan struct{}),
	}
	for i := range f.lanes {
		head := pstamp.NewRing(ringCap)
		f.lanes[i] = lane{head: head, tail: head}
	}
	for i := 0; i < laneCount*spares; i++ {
		f.spares.Add(pstamp.NewRing(ringCap))
	}
	return f
}

// Head returns the ring lane's writer starts recording into.
func (f *Feeder) Head(laneIdx int) *pstamp.Ring { return f.lanes[laneIdx].head }

// Chains returns every lane's chain head for merging.  Call after Finish.
func (f *Feeder) Chains() []*pstamp.Ring {
	heads := make([]*pstamp.Ring, len(f.lanes))
	for i := range f.lanes {
		heads[i] = f.lanes[i].head
	}
	return heads
}

// Start launches the feeder goroutine.
func (f *Feeder) Start() {
	go f.run()
}

// Stop asks the feeder to exit and waits until it has.
func (f *Feeder) Stop() {
	f.quit.Store(true)
	<-f.done
}

// Finish seals every chain tail so late extensions bounce and consumers
// see final windows.  Call after Stop, with the writers already joined.
func (f *Feeder) Finish() {
	for i := range f.lanes {
		f.advance(i)
		f.lanes[i].tail.Seal()
	}
}

// Attached reports how many spare rings were linked into chains.
func (f *Feeder) Attached() uint64 { return f.attached.Load() }

// Starved reports how many sweeps found a hungry lane and an empty FIFO.
func (f *Feeder) Starved() uint64 { return f.starved.Load() }

// run polls lanes while the run is live, until Stop or a global shutdown.
func (f *Feeder) run() {
	defer close(f.done)
	stopFlag, liveFlag := control.Flags()
	for {
		if f.quit.Load() || atomic.LoadUint32(stopFlag) == 1 {
			return
		}
		if atomic.LoadUint32(liveFlag) == 1 {
			f.sweep()
		}
		time.Sleep(f.poll)
	}
}

// sweep walks every lane once: follow the chain to its current tail, and
// extend the tail if the writer is closing in on the window end.
func (f *Feeder) sweep() {
	for i := range f.lanes {
		tail := f.advance(i)
		if tail.Len() < f.highWater || tail.Extended() {
			continue
		}
		if f.spares.Length() == 0 {
			f.starved.Add(1)
			continue
		}
		spare := f.spares.Remove().(*pstamp.Ring)
		if tail.Extend(spare) {
			f.attached.Add(1)
		} else {
			// Sealed underneath us at run end; keep the ring.
			f.spares.Add(spare)
		}
	}
}

// advance follows successor links from the last known tail and returns
// the chain's current end.
func (f *Feeder) advance(laneIdx int) *pstamp.Ring {
	t := f.lanes[laneIdx].tail
	for next := t.Successor(); next != nil; next = t.Successor() {
		t = next
	}
	f.lanes[laneIdx].tail = t
	return t
}

// Report drops a cold-path summary of feeder activity to stderr.
func (f *Feeder) Report() {
	debug.DropMessage("COLLECT",
		"rings attached="+utils.Utoa(f.attached.Load())+
			" starved sweeps="+utils.Utoa(f.starved.Load())+
			" spares left="+utils.Itoa(int64(f.spares.Length())))
}
