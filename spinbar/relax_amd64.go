//go:build amd64 && !noasm

// relax_amd64.go
//
// amd64 declaration for cpuRelax; the body is in relax_amd64.s.  Waiters
// parked on the barrier issue it once per poll so the spin stays cheap
// for the sibling hyperthread.

package spinbar

// cpuRelax executes the x86_64 PAUSE instruction.
//
//go:noescape
func cpuRelax()
