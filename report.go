// report.go — human-readable run summary, the tool's stdout product.
//
// Everything here is cold path after the measured window; fmt is fine.

package main

import (
	"fmt"
	"io"

	"github.com/dpreed/clock-speed/harness"
	"github.com/dpreed/clock-speed/tsc"
)

// reportHeader carries the run context the table rows are read against.
type reportHeader struct {
	Host      string
	CPUList   string
	Source    string
	Adjust    tsc.Adjust
	SameCore  bool
	Events    uint64
	Lost      uint64
	TracePath string
	Digest    string
	DBPath    string
	RunID     int64
}

// printReport renders the run summary.  Cycle columns are post-subtraction
// (the read-pair overhead row shows what was subtracted); stddev NaN means
// too few samples survived.
func printReport(w io.Writer, hdr reportHeader, rows []harness.Measurement) {
	fmt.Fprintf(w, "clock-speed: host %s, cpus %s, counter %s (mult %d shift %d)\n",
		hdr.Host, hdr.CPUList, hdr.Source, hdr.Adjust.Mult, hdr.Adjust.Shift)
	if hdr.SameCore {
		fmt.Fprintln(w, "note: primary and alternate share a core; spin phases skipped")
	}

	fmt.Fprintf(w, "\n%-26s %9s %13s %13s %13s\n", "operation", "samples", "cycles", "stddev", "ns")
	for _, r := range rows {
		fmt.Fprintf(w, "%-26s %9d %13.1f %13.1f %13.2f\n",
			r.Label, r.Samples, r.MeanCycles, r.StdDevCycles, r.MeanNanos)
	}
	fmt.Fprintln(w)

	if hdr.TracePath != "" && hdr.Events > 0 {
		fmt.Fprintf(w, "trace:   %d events -> %s (sha3-256 %s)\n", hdr.Events, hdr.TracePath, hdr.Digest)
	}
	if hdr.Lost > 0 {
		fmt.Fprintf(w, "dropped: %d events overwritten before merge\n", hdr.Lost)
	}
	if hdr.DBPath != "" && hdr.RunID > 0 {
		fmt.Fprintf(w, "archive: run %d -> %s\n", hdr.RunID, hdr.DBPath)
	}
}
