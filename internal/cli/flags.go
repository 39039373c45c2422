// Package cli wires command-line flags to source options and engine
// configuration for the tuner binaries.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/metalblueberry/bard-tuner/pkg/source"
	"github.com/metalblueberry/bard-tuner/pkg/tuner"
)

// Flags holds the parsed values of the shared flags.
type Flags struct {
	Source   source.Options
	method   string
	a4       float64
	interval time.Duration
	verbose  bool
}

// Register adds the shared flags to fs.
func Register(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Source.Kind, "source", source.KindPortAudio, "audio source: portaudio, jack, wav or tone")
	fs.StringVar(&f.Source.Device, "device", "", "capture device name substring (portaudio) or output port to connect (jack)")
	fs.StringVar(&f.Source.Path, "file", "", "WAV file for the wav source")
	fs.Float64Var(&f.Source.Frequency, "freq", source.DefaultFrequency, "frequency of the tone source in Hz")
	fs.Float64Var(&f.Source.SampleRate, "rate", 0, "sample rate in Hz (0 selects the device default)")
	fs.IntVar(&f.Source.WindowSize, "window", source.DefaultWindowSize, "analysis window length in samples, a power of two")
	fs.IntVar(&f.Source.Hop, "hop", 0, "samples between windows for file and tone sources (0 is a quarter window)")
	fs.IntVar(&f.Source.FramesPerBuffer, "frames", 0, "frames per driver buffer (0 lets the driver choose)")
	fs.StringVar(&f.method, "method", tuner.MethodDirect.String(), "autocorrelation method: direct or fft")
	fs.Float64Var(&f.a4, "a4", tuner.DefaultReferencePitch, "reference pitch of A4 in Hz")
	fs.DurationVar(&f.interval, "interval", tuner.DefaultCycleInterval, "time between analysis cycles (0 runs back-to-back)")
	fs.BoolVar(&f.verbose, "v", false, "log engine lifecycle messages")
	return f
}

// Config returns the engine configuration selected by the flags.
func (f *Flags) Config() (tuner.Config, error) {
	method, err := tuner.ParseMethod(f.method)
	if err != nil {
		return tuner.Config{}, err
	}

	cfg := tuner.DefaultConfig()
	cfg.Method = method
	cfg.ReferencePitch = f.a4
	cfg.CycleInterval = f.interval

	if err := cfg.Validate(); err != nil {
		return tuner.Config{}, err
	}

	return cfg, nil
}

// Logger returns the engine logger: stderr with -v, silent otherwise.
func (f *Flags) Logger() *log.Logger {
	var out io.Writer = io.Discard
	if f.verbose {
		out = os.Stderr
	}
	return log.New(out, "tuner: ", log.LstdFlags)
}

// NewEngine builds the source and the engine selected by the flags.
func (f *Flags) NewEngine() (*tuner.Engine, tuner.Source, error) {
	cfg, err := f.Config()
	if err != nil {
		return nil, nil, err
	}

	src, err := source.New(f.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s source: %w", f.Source.Kind, err)
	}

	engine, err := tuner.NewEngine(src, cfg, tuner.WithLogger(f.Logger()))
	if err != nil {
		return nil, nil, err
	}

	return engine, src, nil
}
