// Package source provides audio frame sources for the tuner engine: capture
// devices (PortAudio, JACK), WAV files and a synthetic tone.
package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/metalblueberry/bard-tuner/pkg/tuner"
)

// Source kinds accepted by New.
const (
	KindPortAudio = "portaudio"
	KindJack      = "jack"
	KindWAV       = "wav"
	KindTone      = "tone"
)

// Defaults for Options.
const (
	DefaultWindowSize = 4096
	DefaultSampleRate = 44100.0
	DefaultFrequency  = 440.0
	DefaultAmplitude  = 0.5
)

var (
	ErrUnknownKind    = errors.New("unknown source kind")
	ErrUnsupported    = errors.New("source not supported by this build")
	ErrDeviceNotFound = errors.New("input device not found")
	ErrClosed         = errors.New("source is closed")
	ErrInvalidOptions = errors.New("invalid source options")
)

// Options selects and parameterizes a source.
type Options struct {
	Kind string

	// Device is a substring of the capture device name for portaudio, or
	// the port to connect the input to for jack. Empty selects the default.
	Device string

	// Path of the file read by the wav source.
	Path string

	// Frequency and Amplitude of the tone source.
	Frequency float64
	Amplitude float64

	// SampleRate requested from devices and produced by the tone source.
	// Zero selects the device default.
	SampleRate float64

	// WindowSize is the number of samples per window, a power of two.
	WindowSize int

	// Hop is the number of new samples between windows for the file and
	// tone sources. Zero selects a quarter window.
	Hop int

	// FramesPerBuffer requested from the portaudio driver. Zero lets the
	// driver choose.
	FramesPerBuffer int
}

func (o Options) normalize() (Options, error) {

	if o.WindowSize == 0 {
		o.WindowSize = DefaultWindowSize
	}

	if o.WindowSize < 0 || o.WindowSize&(o.WindowSize-1) != 0 {
		return o, fmt.Errorf("%w: window size %d is not a power of two", ErrInvalidOptions, o.WindowSize)
	}

	if o.Hop == 0 {
		o.Hop = o.WindowSize / 4
	}

	if o.Hop < 1 {
		o.Hop = 1
	}

	if o.SampleRate < 0 {
		return o, fmt.Errorf("%w: sample rate %v", ErrInvalidOptions, o.SampleRate)
	}

	if o.Frequency == 0 {
		o.Frequency = DefaultFrequency
	}

	if o.Amplitude == 0 {
		o.Amplitude = DefaultAmplitude
	}

	return o, nil
}

// Counter is implemented by sources that report how many capture resources
// they currently hold open.
type Counter interface {
	Active() int
}

// New creates the source selected by opts.Kind.
func New(opts Options) (tuner.Source, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	var src tuner.Source

	switch strings.ToLower(opts.Kind) {
	case KindPortAudio, "":
		src, err = NewPortAudio(opts)
	case KindJack:
		src, err = newJack(opts)
	case KindWAV:
		src, err = NewWAVFile(opts)
	case KindTone:
		src, err = NewTone(opts)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownKind, opts.Kind)
	}

	if err != nil {
		return nil, err
	}

	return src, nil
}
