//go:build !linux || tinygo

// affinity_stub.go — CPU affinity stubs for platforms without
// sched_setaffinity(2).
//
// Pins silently succeed so cross-platform callers need no conditional
// logic; Current reports that placement is unknown so the driver can say
// so in the report instead of printing a fabricated core id.

package affinity

import "errors"

var errUnsupported = errors.New("affinity: not supported on this platform")

// Pin is a no-op; the scheduler keeps placement authority.
func Pin(cpu int) error { return nil }

// PinSet is a no-op; the scheduler keeps placement authority.
func PinSet(cpus []int) error { return nil }

// Current cannot be answered without a getcpu equivalent.
func Current() (int, error) { return 0, errUnsupported }
