// stats.go — running mean/variance in single-pass Welford form.
//
// Used for the overhead estimate that gets subtracted from every reported
// interval: feed it back-to-back counter reads, subtract Mean, carry
// StdDev into the report so the noise floor stays visible.
package stats

import "math"

// Welford accumulates samples one at a time with O(1) state and no
// catastrophic cancellation.  The zero value is ready to use.
type Welford struct {
	samples uint64
	mean    float64
	m2      float64
}

// Add folds one sample into the running state.
//
//go:nosplit
func (w *Welford) Add(x float64) {
	w.samples++
	delta := x - w.mean
	w.mean += delta / float64(w.samples)
	w.m2 += (x - w.mean) * delta
}

// Count returns how many samples have been added.
func (w *Welford) Count() uint64 { return w.samples }

// Mean returns the running mean (0 before the first sample).
func (w *Welford) Mean() float64 { return w.mean }

// Variance returns the population variance, NaN until there are at least
// two samples.
func (w *Welford) Variance() float64 {
	if w.samples > 1 {
		return w.m2 / float64(w.samples)
	}
	return math.NaN()
}

// SampleVariance returns the Bessel-corrected variance, NaN until there
// are more than two samples.
func (w *Welford) SampleVariance() float64 {
	if w.samples > 2 {
		return w.m2 / float64(w.samples-1)
	}
	return math.NaN()
}

// StdDev returns the population standard deviation, NaN until Variance is
// defined.
func (w *Welford) StdDev() float64 {
	return math.Sqrt(w.Variance())
}

// Reset clears the accumulator for reuse.
func (w *Welford) Reset() { *w = Welford{} }
