//go:build (!amd64 && !arm64) || noasm

// relax_stub.go
//
// Targets without a spin-wait hint (or builds with noasm) get an empty
// cpuRelax so the barrier's poll loop compiles everywhere.

package spinbar

// cpuRelax is a no-op on unsupported targets.
//
//go:nosplit
//go:inline
func cpuRelax() {}
