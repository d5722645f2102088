//go:build amd64 && !noasm

// tsc_amd64.go
//
// Go declarations for the x86_64 timestamp readers.  Implementations live
// in tsc_amd64.s.  NowID uses RDTSCP, which also yields IA32_TSC_AUX: on
// Linux the kernel loads that MSR with the logical processor id, so every
// stamp carries the core it was taken on for free.

package tsc

// Now reads the timestamp counter (RDTSC).
//
//go:noescape
func Now() uint64

// NowID reads the timestamp counter and the logical processor id in one
// instruction (RDTSCP).
//
//go:noescape
func NowID() (cycles uint64, unit uint32)
