// utils.go — low-level formatting helpers shared by debug, report & export.
package utils

import (
	"syscall"
	"unsafe"
)

///////////////////////////////////////////////////////////////////////////////
// Warning Output — Raw fd 2 Writes
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes msg straight to stderr via the write syscall.
// No fmt, no buffering: the string's backing bytes go to the kernel as-is.
// ⚠️ Cold paths only — callers on measurement paths must not log.
//
//go:nosplit
func PrintWarning(msg string) {
	if len(msg) == 0 {
		return
	}
	_, _ = syscall.Write(2, unsafe.Slice(unsafe.StringData(msg), len(msg)))
}

///////////////////////////////////////////////////////////////////////////////
// Integer Formatting — strconv Without the Baggage
///////////////////////////////////////////////////////////////////////////////

// Utoa renders an unsigned integer into a stack buffer and returns the
// string. One small copy at the end, nothing else.
//
//go:nosplit
func Utoa(v uint64) string {
	var buf [20]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
		if v == 0 {
			break
		}
	}
	return string(buf[i:])
}

// Itoa is Utoa with a sign.
//
//go:nosplit
func Itoa(v int64) string {
	if v < 0 {
		return "-" + Utoa(uint64(-v))
	}
	return Utoa(uint64(v))
}

///////////////////////////////////////////////////////////////////////////////
// Tiny Zero-Alloc Conversions
///////////////////////////////////////////////////////////////////////////////

// B2s converts a []byte to a string **without** allocation.
// ⚠️ Caller must ensure the input slice remains valid and unchanged.
// Used for human-readable print paths.
//
//go:nosplit
//go:inline
func B2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}
