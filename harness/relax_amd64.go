//go:build amd64 && !noasm

// relax_amd64.go
//
// Go declaration for cpuRelax on amd64; implementation in relax_amd64.s.
// The pair suite's poll loops issue it between shared-word probes.

package harness

// cpuRelax executes the x86_64 PAUSE instruction.
//
//go:noescape
func cpuRelax()
