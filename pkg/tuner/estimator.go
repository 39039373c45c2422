package tuner

import (
	"math"
	"math/cmplx"

	"github.com/andrepxx/go-dsp-guitar/fft"
)

/*
 * Estimates the fundamental period of a window by autocorrelation with
 * parabolic sub-sample refinement of the correlation peak.
 *
 * An estimator keeps scratch buffers between calls and must only be used by
 * one analysis cycle at a time.
 */
type Estimator struct {
	trimThreshold    float64
	method           Method
	fourierTransform fft.FourierTransform
	bufCorrelation   []float64
	bufFFT           []complex128
	acf              []float64
}

/*
 * Creates a period estimator.
 */
func NewEstimator(trimThreshold float64, method Method) *Estimator {
	e := Estimator{
		trimThreshold: trimThreshold,
		method:        method,
	}

	if method == MethodFFT {
		e.fourierTransform = fft.CreateFourierTransform()
	}

	return &e
}

/*
 * Returns the estimated fundamental frequency of the window in Hz. The
 * second return value is false when no pitch could be found.
 */
func (e *Estimator) Estimate(w SampleWindow) (float64, bool) {
	slice := trimEdges(w.Samples(), e.trimThreshold)

	if len(slice) < 3 {
		return 0, false
	}

	acf, ok := e.autocorrelate(slice)

	if !ok {
		return 0, false
	}

	period, ok := refinedPeriod(acf)

	if !ok {
		return 0, false
	}

	freq := w.SampleRate() / period

	if !finite(freq) || freq <= 0 {
		return 0, false
	}

	return freq, true
}

/*
 * Drops the leading and trailing samples up to the first sample whose
 * magnitude falls below the threshold on each side. The result is the
 * half-open range [r1, r2).
 */
func trimEdges(samples []float64, threshold float64) []float64 {
	n := len(samples)
	r1 := 0
	r2 := n

	for i := 0; i < n; i++ {

		if math.Abs(samples[i]) < threshold {
			r1 = i
			break
		}

	}

	for i := n - 1; i >= 0; i-- {

		if math.Abs(samples[i]) < threshold {
			r2 = i
			break
		}

	}

	if r2 <= r1 {
		return nil
	}

	return samples[r1:r2]
}

func (e *Estimator) autocorrelate(slice []float64) ([]float64, bool) {
	m := len(slice)

	if cap(e.acf) < m {
		e.acf = make([]float64, m)
	}

	acf := e.acf[:m]

	if e.method == MethodFFT {
		return acf, e.autocorrelateFFT(slice, acf)
	}

	autocorrelateDirect(slice, acf)
	return acf, true
}

/*
 * Brute-force autocorrelation: out[i] = sum of x[j] * x[j+i].
 */
func autocorrelateDirect(x []float64, out []float64) {
	m := len(x)

	for i := 0; i < m; i++ {
		sum := 0.0
		shifted := x[i:]

		for j, v := range shifted {
			sum += x[j] * v
		}

		out[i] = sum
	}

}

/*
 * Autocorrelation through the power spectrum of the zero-padded signal.
 * Padding to at least twice the signal length keeps the circular
 * correlation free of wrap-around terms.
 */
func (e *Estimator) autocorrelateFFT(x []float64, out []float64) bool {
	n := len(x)
	fftSize, _ := fft.NextPowerOfTwo(uint64(2 * n))
	size := int(fftSize)

	if len(e.bufCorrelation) != size {
		e.bufCorrelation = make([]float64, size)
	}

	if len(e.bufFFT) != size {
		e.bufFFT = make([]complex128, size)
	}

	if e.fourierTransform == nil {
		e.fourierTransform = fft.CreateFourierTransform()
	}

	bufCorrelation := e.bufCorrelation
	bufFFT := e.bufFFT
	ft := e.fourierTransform
	copy(bufCorrelation, x)
	fft.ZeroFloat(bufCorrelation[n:])
	err := ft.RealFourier(bufCorrelation, bufFFT, fft.SCALING_DEFAULT)

	if err != nil {
		return false
	}

	/*
	 * Multiply each element of the spectrum with its complex conjugate.
	 */
	for i, elem := range bufFFT {
		bufFFT[i] = elem * cmplx.Conj(elem)
	}

	err = ft.RealInverseFourier(bufFFT, bufCorrelation, fft.SCALING_DEFAULT)

	if err != nil {
		return false
	}

	copy(out, bufCorrelation[:n])
	return true
}

/*
 * Finds the correlation peak past the zero-lag descent and refines its
 * position by fitting a parabola through the peak and its neighbours.
 */
func refinedPeriod(c []float64) (float64, bool) {
	t0, ok := findPeak(c)

	if !ok {
		return 0, false
	}

	left := c[t0-1]
	mid := c[t0]
	right := c[t0+1]
	a := (left + right - 2*mid) / 2
	b := (right - left) / 2
	period := float64(t0)

	if a != 0 {
		period -= b / (2 * a)
	}

	if !finite(period) || period <= 0 {
		return 0, false
	}

	return period, true
}

/*
 * Returns the lag of the maximum of c after skipping the initial descent
 * from lag zero. The peak must have a neighbour on both sides.
 */
func findPeak(c []float64) (int, bool) {
	m := len(c)

	if m < 3 {
		return 0, false
	}

	d := 0

	for d+1 < m && c[d] > c[d+1] {
		d++
	}

	maxVal := math.Inf(-1)
	maxIdx := -1

	for i := d; i < m; i++ {

		if c[i] > maxVal {
			maxVal = c[i]
			maxIdx = i
		}

	}

	if maxIdx < 1 || maxIdx > m-2 || !finite(maxVal) {
		return 0, false
	}

	return maxIdx, true
}
