// ════════════════════════════════════════════════════════════════════════════════════════════════
// Clock Speed Measurement Harness - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Clock Speed Measurement Harness
// Component: Main Entry Point & Run Orchestration
//
// Description:
//   Run orchestration with phased initialization and clean separation of concerns.
//   Topology → Calibration → Quiesce → Measurement → Merge/Export/Archive → Report
//
// Architecture:
//   - Phase 0: Resolve cpu topology from flags, pin the process
//   - Phase 1: Calibrate the cycle counter against nanoseconds
//   - Phase 2: Memory cleanup, then GC disabled for the measured window
//   - Phase 3: Timed-operation suite and cross-core pair phases, lanes feeding
//              event rings extended in the background
//   - Phase 4: Merge lane chains, export the JSONL trace with its digest
//   - Phase 5: Archive the run to sqlite
//   - Phase 6: Print the report
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	rtdebug "runtime/debug"
	"syscall"
	"time"

	"github.com/dpreed/clock-speed/affinity"
	"github.com/dpreed/clock-speed/collector"
	"github.com/dpreed/clock-speed/constants"
	"github.com/dpreed/clock-speed/control"
	"github.com/dpreed/clock-speed/cpulist"
	"github.com/dpreed/clock-speed/debug"
	"github.com/dpreed/clock-speed/export"
	"github.com/dpreed/clock-speed/harness"
	"github.com/dpreed/clock-speed/points"
	"github.com/dpreed/clock-speed/store"
	"github.com/dpreed/clock-speed/tsc"
	"github.com/dpreed/clock-speed/utils"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// FLAGS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

var (
	flagPrimary = flag.Int("c", -1, "primary cpu (default: the cpu the driver starts on)")
	flagAlt     = flag.Int("a", -1, "alternate cpu for the pair phases (default: primary+1)")
	flagSet     = flag.String("s", "", "usable cpu list, e.g. 0-3,7 (default: the two run cpus)")
	flagRing    = flag.Int("ring", constants.RingCapacity, "event ring capacity per chain link")
	flagRounds  = flag.Int("rounds", constants.SkewRounds, "rendezvous rounds per skew phase")
	flagDB      = flag.String("db", constants.DefaultDBPath, "result archive path (empty disables)")
	flagTrace   = flag.String("trace", constants.DefaultTracePath, "merged trace JSONL path (empty disables)")
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TOPOLOGY RESOLUTION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// resolveTopology turns flag values into the run's cpu assignment: the
// primary (driver) cpu, the alternate (partner) cpu, and the usable set
// the process is restricted to.  cur is where the driver currently runs,
// ncpu the online count.
func resolveTopology(cur, ncpu, primary, alternate int, list string) (int, int, []int, error) {
	if primary < 0 {
		primary = cur
	}
	if alternate < 0 {
		alternate = primary + 1
		if alternate >= ncpu {
			alternate = primary
		}
	}

	if list == "" {
		set := []int{primary}
		if alternate != primary {
			if alternate < primary {
				set = []int{alternate, primary}
			} else {
				set = append(set, alternate)
			}
		}
		return primary, alternate, set, nil
	}

	set, err := cpulist.Parse(list)
	if err != nil {
		return 0, 0, nil, err
	}
	inSet := func(cpu int) bool {
		for _, c := range set {
			if c == cpu {
				return true
			}
		}
		return false
	}
	if !inSet(primary) {
		return 0, 0, nil, fmt.Errorf("primary cpu %d not in usable set %q", primary, list)
	}
	if !inSet(alternate) {
		return 0, 0, nil, fmt.Errorf("alternate cpu %d not in usable set %q", alternate, list)
	}
	return primary, alternate, set, nil
}

// formatCPUList renders a cpu set the way -s accepts it.
func formatCPUList(set []int) string {
	s := ""
	for i, c := range set {
		if i > 0 {
			s += ","
		}
		s += utils.Itoa(int64(c))
	}
	return s
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// MAIN ORCHESTRATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// main runs one complete measurement pass.  Every phase leaves breadcrumbs
// on stderr; the product (the report) goes to stdout at the end.
func main() {
	flag.Parse()
	if *flagRing < 1 {
		fmt.Fprintln(os.Stderr, "-ring must be at least 1")
		os.Exit(2)
	}
	if *flagRounds < 0 {
		fmt.Fprintln(os.Stderr, "-rounds must not be negative")
		os.Exit(2)
	}
	started := time.Now()

	// PHASE 0: Topology resolution and pinning
	cur, err := affinity.Current()
	if err != nil {
		debug.DropError("CPU_CURRENT", err)
		cur = 0
	}
	primary, alternate, set, err := resolveTopology(cur, runtime.NumCPU(), *flagPrimary, *flagAlt, *flagSet)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cpuList := formatCPUList(set)
	debug.DropMessage("TOPO", "primary="+utils.Itoa(int64(primary))+
		" alternate="+utils.Itoa(int64(alternate))+" set="+cpuList)

	if err := affinity.PinSet(set); err != nil {
		debug.DropError("PIN_SET", err)
	}
	runtime.LockOSThread()
	if err := affinity.Pin(primary); err != nil {
		debug.DropError("PIN_PRIMARY", err)
	}

	setupSignalHandling()

	// PHASE 1: Counter calibration
	adj, src := tsc.Calibrate()
	if !adj.Usable() {
		adj = tsc.Adjust{Mult: 1, Shift: 0}
		src = "raw"
	}
	debug.DropMessage("CALIB", src+" mult="+utils.Utoa(uint64(adj.Mult))+
		" shift="+utils.Utoa(uint64(adj.Shift)))

	// PHASE 2: Memory quiesce before the measured window
	runtime.GC()
	runtime.GC()
	rtdebug.FreeOSMemory()
	rtdebug.SetGCPercent(-1)

	// PHASE 3: Measurement
	cfg := &harness.Config{
		Primary:         primary,
		Alternate:       alternate,
		Reps:            constants.TimedReps,
		OverheadSamples: constants.OverheadSamples,
		SkewRounds:      *flagRounds,
		PingPongRounds:  constants.PingPongRounds,
		MutexBudget:     constants.MutexBudgetCycles,
		Adjust:          adj,
	}
	reg := points.New(constants.PointTableCapacity)
	probes := harness.RegisterProbes(reg)
	feeder := collector.New(2, *flagRing, constants.SpareRings)

	control.BeginRun()
	feeder.Start()

	rows := make([]harness.Measurement, 0, 32)
	rows = append(rows, cfg.EstimateOverhead())
	rows = append(rows, cfg.TimedOps()...)
	rows = append(rows, cfg.StampOps()...)
	rows = append(rows, cfg.PairSuite(probes, feeder.Head(0), feeder.Head(1))...)

	control.EndRun()
	feeder.Stop()
	feeder.Finish()
	feeder.Report()
	rtdebug.SetGCPercent(100)

	// PHASE 4: Merge and export
	digest := ""
	traceEvents := uint64(0)
	if *flagTrace != "" {
		digest, traceEvents = writeTrace(*flagTrace, reg, adj, feeder)
	}

	// PHASE 5: Archive
	runID := int64(0)
	if *flagDB != "" {
		runID = archiveRun(*flagDB, started, cpuList, src, adj, cfg.Overhead, digest, rows)
	}

	// PHASE 6: Report
	printReport(os.Stdout, reportHeader{
		Host:      hostname(),
		CPUList:   cpuList,
		Source:    src,
		Adjust:    adj,
		SameCore:  primary == alternate,
		Events:    traceEvents,
		Lost:      lostEntries(feeder),
		TracePath: *flagTrace,
		Digest:    digest,
		DBPath:    *flagDB,
		RunID:     runID,
	}, rows)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// COLD-PATH STAGES
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// writeTrace merges the sealed lane chains and streams them to path,
// returning the stream digest and event count.  Export failures cost the
// trace, never the run.
func writeTrace(path string, reg *points.Registry, adj tsc.Adjust, feeder *collector.Feeder) (string, uint64) {
	f, err := os.Create(path)
	if err != nil {
		debug.DropError("TRACE_CREATE", err)
		return "", 0
	}
	bw := bufio.NewWriter(f)
	n, digest, err := export.Chains(bw, reg, adj, feeder.Chains()...)
	if err != nil {
		debug.DropError("TRACE_WRITE", err)
		f.Close()
		return "", 0
	}
	if err := bw.Flush(); err != nil {
		debug.DropError("TRACE_FLUSH", err)
		f.Close()
		return "", 0
	}
	if err := f.Close(); err != nil {
		debug.DropError("TRACE_CLOSE", err)
		return "", 0
	}
	debug.DropMessage("TRACE", utils.Utoa(n)+" events -> "+path)
	return digest, n
}

// archiveRun persists the run row plus results, returning the run id (0
// when archiving failed; the report still prints).
func archiveRun(path string, started time.Time, cpuList, src string, adj tsc.Adjust,
	overhead float64, digest string, rows []harness.Measurement) int64 {
	st, err := store.Open(path)
	if err != nil {
		debug.DropError("ARCHIVE_OPEN", err)
		return 0
	}
	defer st.Close()

	results := make([]store.Result, len(rows))
	for i, r := range rows {
		results[i] = store.Result{
			Label:        r.Label,
			Samples:      r.Samples,
			MeanCycles:   r.MeanCycles,
			StdDevCycles: r.StdDevCycles,
			MeanNanos:    r.MeanNanos,
		}
	}
	runID, err := st.SaveRun(store.RunInfo{
		StartedAt:      started.Unix(),
		Host:           hostname(),
		CPUList:        cpuList,
		Source:         src,
		Mult:           adj.Mult,
		Shift:          adj.Shift,
		OverheadCycles: overhead,
		TraceDigest:    digest,
	}, results)
	if err != nil {
		debug.DropError("ARCHIVE_SAVE", err)
		return 0
	}
	return runID
}

// lostEntries totals overwritten entries across both lane chains.
func lostEntries(feeder *collector.Feeder) uint64 {
	lost := uint64(0)
	for _, head := range feeder.Chains() {
		for r := head; r != nil; r = r.Successor() {
			lost += r.Overflows()
		}
	}
	return lost
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// RUN LIFECYCLE MANAGEMENT
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// setupSignalHandling drains the run on the first interrupt (phases abort
// at their next round boundary and the partial results still report) and
// hard-exits on the second.
func setupSignalHandling() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		debug.DropMessage("SIGNAL", "interrupt: draining run")
		control.Shutdown()
		<-sigChan
		debug.DropMessage("SIGNAL", "second interrupt: hard exit")
		os.Exit(130)
	}()
}
