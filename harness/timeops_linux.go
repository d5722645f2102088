//go:build linux

// timeops_linux.go — syscall and cpu-migration rows.
//
// The migration rows move the calling thread between the run's two cpus
// with the raw affinity path and time each switch.  The caller must be on
// a locked OS thread; the rows end with the thread pinned home again.

package harness

import (
	"golang.org/x/sys/unix"

	"github.com/dpreed/clock-speed/affinity"
	"github.com/dpreed/clock-speed/debug"
	"github.com/dpreed/clock-speed/stats"
	"github.com/dpreed/clock-speed/tsc"
)

var sinkPid int

func (c *Config) systemOps() []Measurement {
	out := make([]Measurement, 0, 5)

	out = append(out, c.timeOp("getpid syscall", func() {
		sinkPid = unix.Getpid()
	}))
	out = append(out, c.timeOp("sched_yield syscall", func() {
		unix.RawSyscall(unix.SYS_SCHED_YIELD, 0, 0, 0)
	}))

	out = append(out, c.pinOps()...)
	return out
}

// pinOps times sched_setaffinity switches.  Skipped entirely when pinning
// is unavailable (containers without CAP_SYS_NICE style restrictions).
func (c *Config) pinOps() []Measurement {
	if err := affinity.Pin(c.Primary); err != nil {
		debug.DropError("PIN_SKIP", err)
		return nil
	}

	rows := []Measurement{c.migration("pin home->home", c.Primary, c.Primary)}
	if c.Alternate != c.Primary {
		rows = append(rows,
			c.migration("pin home->alt", c.Primary, c.Alternate),
			c.migration("pin alt->home", c.Alternate, c.Primary),
		)
	}
	affinity.Pin(c.Primary)
	return rows
}

// migration times Pin(to) with the thread parked on from beforehand, so
// the row isolates one direction of the switch.
func (c *Config) migration(label string, from, to int) Measurement {
	var w stats.Welford
	for i := 0; i < c.Reps; i++ {
		affinity.Pin(from)
		start := tsc.Now()
		affinity.Pin(to)
		stop := tsc.Now()
		w.Add(c.deduct(stop - start))
	}
	return c.finish(label, &w)
}
