package tuner

import (
	"fmt"
	"math"
)

/*
 * A fixed-length block of mono samples normalized to [-1, 1], together with
 * the rate they were captured at.
 *
 * A window is owned by the analysis cycle it was handed to and must not be
 * modified afterwards.
 */
type SampleWindow struct {
	samples    []float64
	sampleRate float64
}

/*
 * Creates a sample window. The number of samples must be a power of two and
 * the sample rate must be positive and finite.
 */
func NewSampleWindow(samples []float64, sampleRate float64) (SampleWindow, error) {
	n := len(samples)

	if n == 0 || n&(n-1) != 0 {
		return SampleWindow{}, fmt.Errorf("%w: length %d is not a power of two", ErrInvalidWindow, n)
	}

	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return SampleWindow{}, fmt.Errorf("%w: sample rate %v", ErrInvalidWindow, sampleRate)
	}

	w := SampleWindow{
		samples:    samples,
		sampleRate: sampleRate,
	}

	return w, nil
}

/*
 * Returns the samples of the window. Callers must treat the slice as
 * read-only.
 */
func (w SampleWindow) Samples() []float64 {
	return w.samples
}

/*
 * Returns the capture sample rate in Hz.
 */
func (w SampleWindow) SampleRate() float64 {
	return w.sampleRate
}

/*
 * Returns the number of samples in the window.
 */
func (w SampleWindow) Len() int {
	return len(w.samples)
}
