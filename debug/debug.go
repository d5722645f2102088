// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — measurement-safe diagnostic logging (zero-alloc)
//
// Purpose:
//   - Logs infrequent error paths without introducing heap pressure.
//   - Used only in cold paths: calibration fallbacks, pin failures, db errors.
//
// Notes:
//   - Avoids fmt.Sprintf to minimize footprint and latency.
//   - Uses stackless logging model: no alloc, no interfaces.
//   - Aggressively inlined and nosplit — never perturbs a timed section
//     when invoked between phases.
//
// ⚠️ Never invoke inside a timed section — use only between phases and in
//    failure diagnostics.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import "github.com/dpreed/clock-speed/utils"

// DropError logs error messages with a custom alloc-free print strategy.
// It writes directly to stderr (file descriptor 2), bypassing any heap allocations.
//
//go:nosplit
//go:inline
//go:registerparams
func DropError(prefix string, err error) {
	if err != nil {
		msg := prefix + ": " + err.Error() + "\n"
		utils.PrintWarning(msg)
	} else {
		// No error case: print just the prefix (for tagged warnings).
		msg := prefix + "\n"
		utils.PrintWarning(msg)
	}
}

// DropMessage logs debug messages with zero-allocation print strategy.
// Used for cold-path diagnostics: phase transitions, collector state,
// calibration source selection.
//
//go:nosplit
//go:inline
//go:registerparams
func DropMessage(prefix, message string) {
	msg := prefix + ": " + message + "\n"
	utils.PrintWarning(msg)
}
