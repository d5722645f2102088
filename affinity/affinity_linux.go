//go:build linux && !tinygo

// affinity_linux.go
//
// Linux-only binding for `sched_setaffinity(2)` that pins OS threads to
// logical CPUs.  The single-CPU path is intentionally ultra-lightweight:
// no heap allocations, no per-call masks built on the stack.
//
// Design notes
// ------------
//   • A compile-time array `cpuMasks` pre-defines one `uintptr` bitmask for
//     every logical CPU 0–63.  Each mask lives in read-only data so the
//     Go compiler can embed it directly; the kernel sees a contiguous
//     8-byte buffer, exactly what `sched_setaffinity` expects on 64-bit.
//   • CPUs ≥ 64 and multi-CPU sets go through unix.CPUSet, which sizes the
//     mask buffer for the full kernel CPU_SETSIZE.
//   • Errors are returned, not swallowed: a failed pin means the numbers
//     the harness is about to print describe the wrong core, and the
//     driver must know.
//
// This file is built only when `GOOS=linux` and **not** under TinyGo.

package affinity

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/dpreed/clock-speed/constants"
)

// Pre-computed one-word affinity masks for logical CPUs 0-63.
var cpuMasks = [...][1]uintptr{
	{1 << 0}, {1 << 1}, {1 << 2}, {1 << 3}, {1 << 4}, {1 << 5}, {1 << 6}, {1 << 7},
	{1 << 8}, {1 << 9}, {1 << 10}, {1 << 11}, {1 << 12}, {1 << 13}, {1 << 14}, {1 << 15},
	{1 << 16}, {1 << 17}, {1 << 18}, {1 << 19}, {1 << 20}, {1 << 21}, {1 << 22}, {1 << 23},
	{1 << 24}, {1 << 25}, {1 << 26}, {1 << 27}, {1 << 28}, {1 << 29}, {1 << 30}, {1 << 31},
	{1 << 32}, {1 << 33}, {1 << 34}, {1 << 35}, {1 << 36}, {1 << 37}, {1 << 38}, {1 << 39},
	{1 << 40}, {1 << 41}, {1 << 42}, {1 << 43}, {1 << 44}, {1 << 45}, {1 << 46}, {1 << 47},
	{1 << 48}, {1 << 49}, {1 << 50}, {1 << 51}, {1 << 52}, {1 << 53}, {1 << 54}, {1 << 55},
	{1 << 56}, {1 << 57}, {1 << 58}, {1 << 59}, {1 << 60}, {1 << 61}, {1 << 62}, {1 << 63},
}

// Pin restricts the *current thread* to `cpu` (0-based).  Callers must
// have the thread locked (runtime.LockOSThread) or the pin outlives the
// goroutine that asked for it.
func Pin(cpu int) error {
	if cpu < 0 || cpu >= constants.MaxCPUs {
		return unix.EINVAL
	}
	if cpu < len(cpuMasks) {
		mask := &cpuMasks[cpu]
		_, _, errno := syscall.RawSyscall(
			syscall.SYS_SCHED_SETAFFINITY,
			0,                               // pid 0 → current thread
			uintptr(unsafe.Sizeof(mask[0])), // mask length (8 bytes)
			uintptr(unsafe.Pointer(mask)),
		)
		if errno != 0 {
			return errno
		}
		return nil
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}

// PinSet restricts the current thread to the union of cpus.  The driver
// applies this to the whole process early, before worker threads exist,
// so every later thread inherits the usable set.
func PinSet(cpus []int) error {
	if len(cpus) == 0 {
		return unix.EINVAL
	}
	var set unix.CPUSet
	set.Zero()
	for _, cpu := range cpus {
		if cpu < 0 || cpu >= constants.MaxCPUs {
			return unix.EINVAL
		}
		set.Set(cpu)
	}
	return unix.SchedSetaffinity(0, &set)
}

// Mask returns the current thread's allowed-CPU set.
func Mask() (unix.CPUSet, error) {
	var set unix.CPUSet
	err := unix.SchedGetaffinity(0, &set)
	return set, err
}

// Current returns the CPU the calling thread is executing on right now.
// Without a pin the answer can be stale by the next instruction.
func Current() (int, error) {
	cpu, _, err := unix.Getcpu()
	return cpu, err
}
