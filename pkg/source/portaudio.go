package source

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/metalblueberry/bard-tuner/pkg/tuner"
)

// PortAudio captures mono samples from a PortAudio input device.
type PortAudio struct {
	device          string
	sampleRate      float64
	windowSize      int
	framesPerBuffer int

	mutex  sync.Mutex
	stream *portaudio.Stream
	ring   *captureRing
}

// NewPortAudio creates a PortAudio source. The device is only opened by Open.
func NewPortAudio(opts Options) (*PortAudio, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	p := PortAudio{
		device:          opts.Device,
		sampleRate:      opts.SampleRate,
		windowSize:      opts.WindowSize,
		framesPerBuffer: opts.FramesPerBuffer,
	}

	return &p, nil
}

// InputDevices lists the devices that can capture audio. PortAudio must be
// initialized by the caller.
func InputDevices() ([]*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	inputs := make([]*portaudio.DeviceInfo, 0, len(devices))
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			inputs = append(inputs, d)
		}
	}

	return inputs, nil
}

func (p *PortAudio) inputDevice() (*portaudio.DeviceInfo, error) {
	if p.device == "" {
		return portaudio.DefaultInputDevice()
	}

	inputs, err := InputDevices()
	if err != nil {
		return nil, err
	}

	for _, d := range inputs {
		if strings.Contains(d.Name, p.device) {
			return d, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrDeviceNotFound, p.device)
}

// Open initializes PortAudio and starts a mono input stream.
func (p *PortAudio) Open() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.stream != nil {
		return nil
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}

	device, err := p.inputDevice()
	if err != nil {
		portaudio.Terminate()
		return err
	}

	params := portaudio.HighLatencyParameters(device, nil)
	params.Input.Channels = 1
	if p.sampleRate > 0 {
		params.SampleRate = p.sampleRate
	}
	if p.framesPerBuffer > 0 {
		params.FramesPerBuffer = p.framesPerBuffer
	}

	ring := newCaptureRing(p.windowSize, params.SampleRate)
	stream, err := portaudio.OpenStream(params, func(in []float32) {
		pushSamples(ring, in)
	})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("open stream on %q: %w", device.Name, err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("start stream on %q: %w", device.Name, err)
	}

	p.stream = stream
	p.ring = ring
	return nil
}

// Next returns the latest captured window.
func (p *PortAudio) Next() (tuner.SampleWindow, error) {
	p.mutex.Lock()
	ring := p.ring
	p.mutex.Unlock()

	if ring == nil {
		return tuner.SampleWindow{}, ErrClosed
	}

	return ring.window()
}

// Close stops the stream and releases PortAudio.
func (p *PortAudio) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.stream == nil {
		return nil
	}

	stream := p.stream
	p.stream = nil
	p.ring = nil

	errStop := stream.Stop()
	errClose := stream.Close()
	errTerm := portaudio.Terminate()

	switch {
	case errStop != nil:
		return fmt.Errorf("stop stream: %w", errStop)
	case errClose != nil:
		return fmt.Errorf("close stream: %w", errClose)
	case errTerm != nil:
		return fmt.Errorf("terminate portaudio: %w", errTerm)
	}

	return nil
}

// Active reports whether the input stream is open.
func (p *PortAudio) Active() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.stream != nil {
		return 1
	}

	return 0
}
