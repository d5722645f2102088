package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dpreed/clock-speed/harness"
	"github.com/dpreed/clock-speed/tsc"
)

func TestResolveTopologyDefaults(t *testing.T) {
	// No flags: primary is the current cpu, alternate its neighbor.
	primary, alternate, set, err := resolveTopology(2, 8, -1, -1, "")
	if err != nil {
		t.Fatalf("resolveTopology: %v", err)
	}
	if primary != 2 || alternate != 3 {
		t.Fatalf("cpus = (%d, %d), want (2, 3)", primary, alternate)
	}
	if len(set) != 2 || set[0] != 2 || set[1] != 3 {
		t.Fatalf("set = %v, want [2 3]", set)
	}
}

func TestResolveTopologySingleCPU(t *testing.T) {
	primary, alternate, set, err := resolveTopology(0, 1, -1, -1, "")
	if err != nil {
		t.Fatalf("resolveTopology: %v", err)
	}
	if primary != 0 || alternate != 0 {
		t.Fatalf("cpus = (%d, %d), want (0, 0)", primary, alternate)
	}
	if len(set) != 1 || set[0] != 0 {
		t.Fatalf("set = %v, want [0]", set)
	}
}

func TestResolveTopologyExplicit(t *testing.T) {
	primary, alternate, set, err := resolveTopology(0, 16, 5, 2, "")
	if err != nil {
		t.Fatalf("resolveTopology: %v", err)
	}
	if primary != 5 || alternate != 2 {
		t.Fatalf("cpus = (%d, %d), want (5, 2)", primary, alternate)
	}
	if len(set) != 2 || set[0] != 2 || set[1] != 5 {
		t.Fatalf("set = %v, want [2 5]", set)
	}
}

func TestResolveTopologyWithList(t *testing.T) {
	primary, alternate, set, err := resolveTopology(0, 16, 1, 3, "0-3")
	if err != nil {
		t.Fatalf("resolveTopology: %v", err)
	}
	if primary != 1 || alternate != 3 {
		t.Fatalf("cpus = (%d, %d), want (1, 3)", primary, alternate)
	}
	if len(set) != 4 {
		t.Fatalf("set = %v, want 4 cpus", set)
	}
}

func TestResolveTopologyRejectsCPUOutsideList(t *testing.T) {
	if _, _, _, err := resolveTopology(0, 16, 5, 1, "0-3"); err == nil {
		t.Fatal("primary outside -s accepted")
	}
	if _, _, _, err := resolveTopology(0, 16, 1, 9, "0-3"); err == nil {
		t.Fatal("alternate outside -s accepted")
	}
	if _, _, _, err := resolveTopology(0, 16, 1, 2, "3-0"); err == nil {
		t.Fatal("reversed range accepted")
	}
}

func TestFormatCPUList(t *testing.T) {
	if got := formatCPUList([]int{2, 4, 5}); got != "2,4,5" {
		t.Fatalf("formatCPUList = %q", got)
	}
	if got := formatCPUList([]int{7}); got != "7" {
		t.Fatalf("formatCPUList = %q", got)
	}
}

func TestPrintReport(t *testing.T) {
	rows := []harness.Measurement{
		{Label: "read-pair overhead", Samples: 100, MeanCycles: 24, StdDevCycles: 1.5, MeanNanos: 8},
		{Label: "atomic add", Samples: 20, MeanCycles: 6.5, StdDevCycles: 0.5, MeanNanos: 2.2},
	}
	hdr := reportHeader{
		Host:      "bench-01",
		CPUList:   "2,3",
		Source:    "perf",
		Adjust:    tsc.Adjust{Mult: 2796203, Shift: 23},
		Events:    128,
		Lost:      3,
		TracePath: "trace.jsonl",
		Digest:    "cafe",
		DBPath:    "runs.db",
		RunID:     7,
	}

	var buf bytes.Buffer
	printReport(&buf, hdr, rows)
	out := buf.String()

	for _, want := range []string{
		"host bench-01",
		"cpus 2,3",
		"counter perf",
		"read-pair overhead",
		"atomic add",
		"trace:   128 events -> trace.jsonl (sha3-256 cafe)",
		"dropped: 3 events",
		"archive: run 7 -> runs.db",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "share a core") {
		t.Fatal("same-core note printed for distinct cpus")
	}

	hdr.SameCore = true
	buf.Reset()
	printReport(&buf, hdr, rows)
	if !strings.Contains(buf.String(), "share a core") {
		t.Fatal("same-core note missing")
	}
}
