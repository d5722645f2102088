//go:build arm64 && !noasm

// calib_arm64.go
//
// arm64 publishes the generic-timer frequency architecturally, so the
// conversion is exact.  Firmware that leaves CNTFRQ_EL0 unprogrammed
// (reads as 0) pushes us onto the wall-clock estimate.

package tsc

func platformCalibrate() (Adjust, string) {
	if hz := cntfrq(); hz != 0 {
		return fit(hz), "cntfrq"
	}
	return wallCalibrate(), "wall"
}
