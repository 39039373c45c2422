package tuner

import "math"

/*
 * Computes the root-mean-square energy of a block of samples.
 */
func RMS(samples []float64) float64 {
	n := len(samples)

	if n == 0 {
		return 0
	}

	sum := 0.0

	for _, s := range samples {
		sum += s * s
	}

	return math.Sqrt(sum / float64(n))
}

/*
 * An energy gate that rejects windows below a noise floor before any pitch
 * analysis is attempted.
 */
type Gate struct {
	Threshold float64
}

/*
 * Reports whether the window carries enough energy to be analyzed.
 */
func (g Gate) Open(w SampleWindow) bool {
	rms := RMS(w.Samples())
	return rms >= g.Threshold && !math.IsNaN(rms)
}
