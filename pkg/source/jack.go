//go:build jack

package source

import (
	"fmt"
	"sync"

	"github.com/metalblueberry/bard-tuner/pkg/tuner"
	"github.com/xthexder/go-jack"
)

const jackClientName = "bard-tuner"

// Jack captures samples from a JACK input port.
type Jack struct {
	connect    string
	windowSize int

	mutex  sync.Mutex
	client *jack.Client
	port   *jack.Port
	ring   *captureRing
}

func newJack(opts Options) (tuner.Source, error) {
	return NewJack(opts)
}

// NewJack creates a JACK source. If opts.Device is set, the input port is
// connected to that output port once the client is active.
func NewJack(opts Options) (*Jack, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	j := Jack{
		connect:    opts.Device,
		windowSize: opts.WindowSize,
	}

	return &j, nil
}

// Open registers a client with an input port and activates it.
func (j *Jack) Open() error {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	if j.client != nil {
		return nil
	}

	client, status := jack.ClientOpen(jackClientName, jack.NoStartServer)
	if status != 0 {
		return fmt.Errorf("open jack client: %s", jack.StrError(status))
	}

	port := client.PortRegister("in", jack.DEFAULT_AUDIO_TYPE, jack.PortIsInput, 0)
	if port == nil {
		client.Close()
		return fmt.Errorf("register jack input port")
	}

	ring := newCaptureRing(j.windowSize, float64(client.GetSampleRate()))
	process := func(nframes uint32) int {
		pushSamples(ring, port.GetBuffer(nframes))
		return 0
	}

	if code := client.SetProcessCallback(process); code != 0 {
		client.Close()
		return fmt.Errorf("set jack process callback: %s", jack.StrError(code))
	}

	if code := client.Activate(); code != 0 {
		client.Close()
		return fmt.Errorf("activate jack client: %s", jack.StrError(code))
	}

	if j.connect != "" {
		if code := client.Connect(j.connect, port.GetName()); code != 0 {
			client.Close()
			return fmt.Errorf("connect %s: %s", j.connect, jack.StrError(code))
		}
	}

	j.client = client
	j.port = port
	j.ring = ring
	return nil
}

// Next returns the latest captured window.
func (j *Jack) Next() (tuner.SampleWindow, error) {
	j.mutex.Lock()
	ring := j.ring
	j.mutex.Unlock()

	if ring == nil {
		return tuner.SampleWindow{}, ErrClosed
	}

	return ring.window()
}

// Close deactivates and closes the client.
func (j *Jack) Close() error {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	if j.client == nil {
		return nil
	}

	client := j.client
	j.client = nil
	j.port = nil
	j.ring = nil

	if code := client.Close(); code != 0 {
		return fmt.Errorf("close jack client: %s", jack.StrError(code))
	}

	return nil
}

// Active reports whether the client is open.
func (j *Jack) Active() int {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	if j.client != nil {
		return 1
	}

	return 0
}
