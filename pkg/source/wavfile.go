package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/metalblueberry/bard-tuner/pkg/circular"
	"github.com/metalblueberry/bard-tuner/pkg/tuner"
)

const wavFormatPCM = 1

// WAVFile streams windows from a PCM WAV file. Each call to Next advances
// the window by the hop size; multi-channel files are mixed down to mono.
type WAVFile struct {
	path       string
	windowSize int
	hop        int

	mutex      sync.Mutex
	file       *os.File
	decoder    *wav.Decoder
	pcm        *audio.IntBuffer
	ring       *circular.Buffer[float64]
	mono       []float64
	channels   int
	offset     float64
	scale      float64
	sampleRate float64
}

// NewWAVFile creates a WAV file source. The file is only opened by Open.
func NewWAVFile(opts Options) (*WAVFile, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	if opts.Path == "" {
		return nil, fmt.Errorf("%w: wav source needs a path", ErrInvalidOptions)
	}

	w := WAVFile{
		path:       opts.Path,
		windowSize: opts.WindowSize,
		hop:        opts.Hop,
	}

	return &w, nil
}

// Open opens the file and validates its header.
func (w *WAVFile) Open() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.file != nil {
		return nil
	}

	f, err := os.Open(w.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", w.path, err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()
		return fmt.Errorf("%s: not a valid WAV file", w.path)
	}

	if decoder.WavAudioFormat != wavFormatPCM {
		f.Close()
		return fmt.Errorf("%s: unsupported WAV format %d", w.path, decoder.WavAudioFormat)
	}

	channels := int(decoder.NumChans)
	bitDepth := int(decoder.BitDepth)
	if channels < 1 || bitDepth < 1 || decoder.SampleRate == 0 {
		f.Close()
		return fmt.Errorf("%s: invalid WAV header", w.path)
	}

	w.file = f
	w.decoder = decoder
	w.channels = channels
	w.scale = float64(int(1) << (uint(bitDepth) - 1))
	w.offset = 0

	// 8-bit PCM is unsigned with silence at 128.
	if bitDepth == 8 {
		w.offset = w.scale
	}

	w.sampleRate = float64(decoder.SampleRate)
	w.ring = circular.CreateBuffer[float64](w.windowSize)
	w.mono = make([]float64, 0, w.hop)
	w.pcm = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  int(decoder.SampleRate),
		},
		Data:           make([]int, w.hop*channels),
		SourceBitDepth: bitDepth,
	}

	return nil
}

// SampleRate returns the rate of the open file, or zero.
func (w *WAVFile) SampleRate() float64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.sampleRate
}

// readHop decodes up to one hop of frames into the ring. It returns the
// number of frames read.
func (w *WAVFile) readHop() (int, error) {
	n, err := w.decoder.PCMBuffer(w.pcm)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("decode %s: %w", w.path, err)
	}

	frames := n / w.channels
	mono := w.mono[:0]

	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < w.channels; c++ {
			sum += float64(w.pcm.Data[i*w.channels+c]) - w.offset
		}
		mono = append(mono, sum/float64(w.channels)/w.scale)
	}

	w.mono = mono
	w.ring.Enqueue(mono...)
	return frames, nil
}

// Next advances by one hop and returns the window ending there. At the
// end of the file it returns tuner.ErrStreamEnded.
func (w *WAVFile) Next() (tuner.SampleWindow, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.file == nil {
		return tuner.SampleWindow{}, ErrClosed
	}

	for {
		frames, err := w.readHop()
		if err != nil {
			return tuner.SampleWindow{}, err
		}

		if frames == 0 {
			return tuner.SampleWindow{}, tuner.ErrStreamEnded
		}

		if w.ring.Full() {
			break
		}
	}

	samples := make([]float64, w.ring.Length())
	if err := w.ring.Retrieve(samples); err != nil {
		return tuner.SampleWindow{}, err
	}

	return tuner.NewSampleWindow(samples, w.sampleRate)
}

// Close closes the file.
func (w *WAVFile) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.file == nil {
		return nil
	}

	f := w.file
	w.file = nil
	w.decoder = nil
	w.ring = nil
	return f.Close()
}

// Active reports whether the file is open.
func (w *WAVFile) Active() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.file != nil {
		return 1
	}

	return 0
}
