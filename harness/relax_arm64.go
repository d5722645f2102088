//go:build arm64 && !noasm

// relax_arm64.go
//
// Go declaration for cpuRelax on arm64; implementation in relax_arm64.s.

package harness

// cpuRelax executes the arm64 YIELD instruction.
//
//go:noescape
func cpuRelax()
