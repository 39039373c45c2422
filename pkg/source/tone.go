package source

import (
	"fmt"
	"math"
	"sync"

	"github.com/metalblueberry/bard-tuner/pkg/tuner"
)

// Tone generates a phase-continuous sine wave. Each call to Next advances
// the signal by the hop size.
type Tone struct {
	frequency  float64
	amplitude  float64
	sampleRate float64
	windowSize int
	hop        int

	mutex sync.Mutex
	open  bool
	phase float64
}

// NewTone creates a tone source.
func NewTone(opts Options) (*Tone, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	if opts.SampleRate == 0 {
		opts.SampleRate = DefaultSampleRate
	}

	if opts.Frequency < 0 || opts.Frequency >= opts.SampleRate/2 {
		return nil, fmt.Errorf("%w: tone frequency %v", ErrInvalidOptions, opts.Frequency)
	}

	t := Tone{
		frequency:  opts.Frequency,
		amplitude:  opts.Amplitude,
		sampleRate: opts.SampleRate,
		windowSize: opts.WindowSize,
		hop:        opts.Hop,
	}

	return &t, nil
}

// SetFrequency changes the generated frequency from the next window on.
func (t *Tone) SetFrequency(freq float64) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.frequency = freq
}

// Open restarts the tone at phase zero.
func (t *Tone) Open() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.open = true
	t.phase = 0
	return nil
}

// Next returns the next window of the tone.
func (t *Tone) Next() (tuner.SampleWindow, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if !t.open {
		return tuner.SampleWindow{}, ErrClosed
	}

	samples := make([]float64, t.windowSize)
	step := 2 * math.Pi * t.frequency / t.sampleRate

	for i := range samples {
		samples[i] = t.amplitude * math.Sin(t.phase+step*float64(i))
	}

	t.phase = math.Mod(t.phase+step*float64(t.hop), 2*math.Pi)
	return tuner.NewSampleWindow(samples, t.sampleRate)
}

// Close stops the tone.
func (t *Tone) Close() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.open = false
	return nil
}

// Active reports whether the tone is open.
func (t *Tone) Active() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.open {
		return 1
	}

	return 0
}
