package source

import (
	"github.com/metalblueberry/bard-tuner/pkg/circular"
	"github.com/metalblueberry/bard-tuner/pkg/tuner"
)

/*
 * Holds the most recent window of captured samples. Driver callbacks write
 * into it from their own thread; the analysis cycle reads a copy.
 */
type captureRing struct {
	buffer     *circular.Buffer[float64]
	sampleRate float64
	scratch    []float64
}

func newCaptureRing(windowSize int, sampleRate float64) *captureRing {
	r := captureRing{
		buffer:     circular.CreateBuffer[float64](windowSize),
		sampleRate: sampleRate,
	}

	return &r
}

/*
 * Append samples of any floating point type. The scratch slice is reused,
 * so push must not be called concurrently with itself.
 */
func pushSamples[S ~float32 | ~float64](r *captureRing, in []S) {

	if cap(r.scratch) < len(in) {
		r.scratch = make([]float64, len(in))
	}

	buf := r.scratch[:len(in)]

	for i, s := range in {
		buf[i] = float64(s)
	}

	r.buffer.Enqueue(buf...)
}

/*
 * Returns a copy of the latest window, or ErrNotReady until the ring has
 * been filled once.
 */
func (r *captureRing) window() (tuner.SampleWindow, error) {

	if !r.buffer.Full() {
		return tuner.SampleWindow{}, tuner.ErrNotReady
	}

	samples := make([]float64, r.buffer.Length())
	err := r.buffer.Retrieve(samples)

	if err != nil {
		return tuner.SampleWindow{}, err
	}

	return tuner.NewSampleWindow(samples, r.sampleRate)
}
