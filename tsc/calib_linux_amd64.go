//go:build linux && amd64 && !noasm

// calib_linux_amd64.go
//
// Exact TSC calibration from the kernel.  A perf_event mmap page carries
// the mult/shift the kernel itself uses to turn TSC counts into
// nanoseconds; when cap_user_time is set those fields are authoritative
// and no measurement is needed.  The counted event is irrelevant (and
// never even enabled) — only the mmap page header matters.

package tsc

import (
	"errors"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// cap_user_time bit in perf_event_mmap_page.capabilities.
const capUserTime = 1 << 3

var errNoUserTime = errors.New("perf mmap page lacks cap_user_time")

func platformCalibrate() (Adjust, string) {
	if a, err := perfCalibrate(); err == nil {
		return a, "perf"
	}
	return wallCalibrate(), "wall"
}

// perfCalibrate opens a dummy disabled counter on the calling thread and
// reads the time conversion fields from its mmap page.
func perfCalibrate() (Adjust, error) {
	attr := unix.PerfEventAttr{
		Type:   unix.PERF_TYPE_HARDWARE,
		Config: unix.PERF_COUNT_HW_INSTRUCTIONS,
		Bits:   unix.PerfBitDisabled | unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv,
	}
	attr.Size = uint32(unsafe.Sizeof(attr))

	fd, err := unix.PerfEventOpen(&attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
	if err != nil {
		return Adjust{}, err // typically EACCES under perf_event_paranoid
	}
	defer unix.Close(fd)

	page, err := unix.Mmap(fd, 0, os.Getpagesize(), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return Adjust{}, err
	}
	defer unix.Munmap(page)

	meta := (*unix.PerfEventMmapPage)(unsafe.Pointer(&page[0]))
	if meta.Capabilities&capUserTime == 0 {
		return Adjust{}, errNoUserTime
	}
	return Adjust{Mult: meta.Time_mult, Shift: uint32(meta.Time_shift)}, nil
}
