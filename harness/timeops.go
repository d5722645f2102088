// timeops.go — the single-thread operation suite.
//
// Each entry times one Go-level primitive the way the engine times
// everything: bracketed counter reads, overhead subtracted.  Results feed
// the report and the archive; none of this runs during the pair phases.

package harness

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dpreed/clock-speed/pstamp"
	"github.com/dpreed/clock-speed/tsc"
)

// Sinks keep the optimizer from deleting measured work.
var (
	sinkU64  uint64
	sinkTime time.Time
	sinkBuf  []byte

	srcBlock [4096]byte
	dstBlock [4096]byte
)

// nopAdd is the call-cost baseline; kept out of line on purpose.
//
//go:noinline
func nopAdd(x uint64) uint64 { return x + 1 }

// TimedOps measures the portable primitive suite plus whatever the
// platform file contributes (syscalls, affinity switches on linux).
func (c *Config) TimedOps() []Measurement {
	out := make([]Measurement, 0, 16)

	out = append(out, c.timeOp("cycle counter read", func() {
		sinkU64 = tsc.Now()
	}))
	out = append(out, c.timeOp("wall clock read", func() {
		sinkTime = time.Now()
	}))

	var word uint64
	out = append(out, c.timeOp("atomic add", func() {
		atomic.AddUint64(&word, 1)
	}))

	var casWord, casN uint64
	out = append(out, c.timeOp("atomic cas", func() {
		atomic.CompareAndSwapUint64(&casWord, casN, casN+1)
		casN++
	}))

	var mu sync.Mutex
	out = append(out, c.timeOp("mutex lock/unlock", func() {
		mu.Lock()
		mu.Unlock()
	}))

	ch := make(chan uint64, 1)
	out = append(out, c.timeOp("channel send/recv", func() {
		ch <- 1
		sinkU64 = <-ch
	}))

	table := make(map[uint64]uint64, 64)
	for i := uint64(0); i < 64; i++ {
		table[i] = i * 3
	}
	out = append(out, c.timeOp("map hit", func() {
		sinkU64 = table[17]
	}))

	out = append(out, c.timeOp("alloc 256B", func() {
		sinkBuf = make([]byte, 256)
	}))
	out = append(out, c.timeOp("copy 4KiB", func() {
		copy(dstBlock[:], srcBlock[:])
	}))
	out = append(out, c.timeOp("call (noinline)", func() {
		sinkU64 = nopAdd(sinkU64)
	}))

	out = append(out, c.systemOps()...)
	return out
}

// StampOps times the instrumentation primitives themselves so traces can
// be read with their own cost in mind.
func (c *Config) StampOps() []Measurement {
	var s pstamp.Stamp
	capture := c.timeOp("pstamp capture", func() {
		pstamp.Capture(0, &s)
	})

	ring := pstamp.NewRing(c.Reps + 1)
	w := ring
	record := c.timeOp("pstamp record", func() {
		w = w.Record(0, &s)
	})

	return []Measurement{capture, record}
}
