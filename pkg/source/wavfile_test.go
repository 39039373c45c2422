package source

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/metalblueberry/bard-tuner/pkg/tuner"
)

// writeToneWAV writes a 16-bit PCM file holding a sine on every channel.
func writeToneWAV(t *testing.T, freq float64, rate, channels int, seconds float64) string {
	t.Helper()
	return writePCM(t, freq, rate, channels, 16, seconds)
}

// writePCM writes a PCM file of the given bit depth holding a half-scale
// sine on every channel. 8-bit samples are stored unsigned around 128.
func writePCM(t *testing.T, freq float64, rate, channels, bitDepth int, seconds float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	full := float64(int(1)<<(bitDepth-1) - 1)
	frames := int(seconds * float64(rate))
	data := make([]int, frames*channels)
	for i := 0; i < frames; i++ {
		v := int(math.Round(0.5 * full * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))))
		if bitDepth == 8 {
			v += 128
		}
		for c := 0; c < channels; c++ {
			data[i*channels+c] = v
		}
	}

	enc := wav.NewEncoder(f, rate, bitDepth, channels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func readAll(t *testing.T, src *WAVFile) []tuner.SampleWindow {
	t.Helper()
	var windows []tuner.SampleWindow
	for {
		w, err := src.Next()
		if errors.Is(err, tuner.ErrStreamEnded) {
			return windows
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		windows = append(windows, w)
		if len(windows) > 10000 {
			t.Fatal("file never ended")
		}
	}
}

func TestWAVFileStreamsWindows(t *testing.T) {
	for _, channels := range []int{1, 2} {
		path := writeToneWAV(t, 220, 44100, channels, 0.5)
		src, err := NewWAVFile(Options{Path: path, WindowSize: 2048, Hop: 512})
		if err != nil {
			t.Fatalf("NewWAVFile: %v", err)
		}
		if err := src.Open(); err != nil {
			t.Fatalf("Open: %v", err)
		}

		windows := readAll(t, src)
		// 22050 frames: one full window, then one window per 512-frame hop.
		if len(windows) < 35 || len(windows) > 45 {
			t.Fatalf("%d channels: %d windows", channels, len(windows))
		}

		analyzer := tuner.NewAnalyzer(tuner.DefaultConfig())
		reading, ok := analyzer.Analyze(windows[len(windows)/2])
		if !ok || reading.Name != "A" || reading.Octave != 3 {
			t.Fatalf("%d channels: reading = %+v, %v", channels, reading, ok)
		}

		peak := 0.0
		for _, s := range windows[0].Samples() {
			peak = math.Max(peak, math.Abs(s))
		}
		if math.Abs(peak-0.5) > 0.01 {
			t.Fatalf("%d channels: peak %v, want 0.5", channels, peak)
		}

		if err := src.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if src.Active() != 0 {
			t.Fatal("file still open after Close")
		}
	}
}

func TestWAVFileUnsigned8Bit(t *testing.T) {
	path := writePCM(t, 440, 44100, 1, 8, 0.5)
	src, err := NewWAVFile(Options{Path: path, WindowSize: 4096})
	if err != nil {
		t.Fatalf("NewWAVFile: %v", err)
	}
	if err := src.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	w, err := src.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}

	lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
	for _, s := range w.Samples() {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
		sum += s
	}
	if lo < -0.51 || hi > 0.51 {
		t.Fatalf("sample range [%v, %v], want within half scale", lo, hi)
	}
	if mean := sum / float64(w.Len()); math.Abs(mean) > 0.01 {
		t.Fatalf("mean %v, want no offset", mean)
	}

	reading, ok := tuner.NewAnalyzer(tuner.DefaultConfig()).Analyze(w)
	if !ok || reading.Name != "A" || reading.Octave != 4 || math.Abs(reading.Cents) > 3 {
		t.Fatalf("reading = %+v, %v", reading, ok)
	}
}

func TestWAVFileDrivesEngine(t *testing.T) {
	path := writeToneWAV(t, 329.63, 44100, 1, 1)
	src, err := NewWAVFile(Options{Path: path})
	if err != nil {
		t.Fatalf("NewWAVFile: %v", err)
	}

	cfg := tuner.DefaultConfig()
	cfg.CycleInterval = 0
	engine, err := tuner.NewEngine(src, cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	states, unsubscribe := engine.Subscribe()
	defer unsubscribe()

	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	seen := false
	for !seen {
		select {
		case s := <-states:
			seen = s.Note == "E" && s.Octave == 4
		case <-engine.Done():
			select {
			case s := <-states:
				seen = s.Note == "E"
			default:
			}
			if !seen {
				t.Fatal("engine finished without reading E4")
			}
		}
	}

	<-engine.Done()
	if src.Active() != 0 {
		t.Fatal("file left open at stream end")
	}
}

func TestWAVFileOpenErrors(t *testing.T) {
	if _, err := NewWAVFile(Options{}); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("missing path err = %v", err)
	}

	missing, err := NewWAVFile(Options{Path: filepath.Join(t.TempDir(), "missing.wav")})
	if err != nil {
		t.Fatalf("NewWAVFile: %v", err)
	}
	if err := missing.Open(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file err = %v", err)
	}

	garbage := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(garbage, []byte("definitely not a riff file"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	bad, _ := NewWAVFile(Options{Path: garbage})
	if err := bad.Open(); err == nil {
		t.Fatal("garbage file opened")
	}
	if bad.Active() != 0 {
		t.Fatal("garbage file left open")
	}
}
