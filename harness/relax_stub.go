//go:build (!amd64 && !arm64) || noasm

// relax_stub.go
//
// No spin-wait hint on this target; poll loops run bare.

package harness

// cpuRelax is a no-op on unsupported targets.
//
//go:nosplit
//go:inline
func cpuRelax() {}
