//go:build arm64 && !noasm

// relax_arm64.go
//
// Go declaration for cpuRelax on arm64.  The implementation lives in
// relax_arm64.s and emits a YIELD hint so busy-wait loops share the core
// politely, including on Apple Silicon.

package spinbar

// cpuRelax executes the arm64 YIELD instruction.
//
//go:noescape
func cpuRelax()
