// wall.go
//
// Wall-clock calibration fallback: compare counter deltas against the
// system clock across several short sleeps and keep the median rate.
// Accurate to the sleep jitter, which is plenty for reporting; exact
// sources are preferred whenever the platform offers one.

package tsc

import (
	"sort"
	"time"
)

const (
	wallSamples = 5
	wallWindow  = 10 * time.Millisecond
)

func wallCalibrate() Adjust {
	rates := make([]uint64, 0, wallSamples)
	for i := 0; i < wallSamples; i++ {
		w0 := time.Now()
		c0 := Now()
		time.Sleep(wallWindow)
		c1 := Now()
		elapsed := time.Since(w0).Nanoseconds()
		if elapsed <= 0 || c1 <= c0 {
			continue
		}
		rates = append(rates, (c1-c0)*1_000_000_000/uint64(elapsed))
	}
	if len(rates) == 0 {
		return Adjust{}
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i] < rates[j] })
	return fit(rates[len(rates)/2])
}
