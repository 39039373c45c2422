package tuner

import (
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"github.com/metalblueberry/bard-tuner/internal/testutil"
	"github.com/mjibson/go-dsp/fft"
)

const testSampleRate = 44100.0

func mustWindow(t testing.TB, samples []float64, rate float64) SampleWindow {
	t.Helper()
	w, err := NewSampleWindow(samples, rate)
	if err != nil {
		t.Fatalf("NewSampleWindow: %v", err)
	}
	return w
}

func TestEstimateSineAccuracy(t *testing.T) {
	freqs := []float64{70, 82.41, 110, 146.83, 196, 246.94, 329.63, 440, 587.33, 777.7, 1000}

	for _, method := range []Method{MethodDirect, MethodFFT} {
		est := NewEstimator(DefaultTrimThreshold, method)

		for _, size := range []int{2048, 4096} {
			for _, f := range freqs {
				t.Run(fmt.Sprintf("%s/%d/%.2fHz", method, size, f), func(t *testing.T) {
					w := mustWindow(t, testutil.Sine(f, testSampleRate, 0.5, size), testSampleRate)
					got, ok := est.Estimate(w)
					if !ok {
						t.Fatalf("no pitch for %.2f Hz", f)
					}
					testutil.RequireWithinPercent(t, got, f, 1)
				})
			}
		}
	}
}

func TestEstimateMethodsAgree(t *testing.T) {
	direct := NewEstimator(DefaultTrimThreshold, MethodDirect)
	viaFFT := NewEstimator(DefaultTrimThreshold, MethodFFT)

	for _, f := range []float64{98, 220, 440, 880} {
		w := mustWindow(t, testutil.SinePhase(f, testSampleRate, 0.8, 0.3, 2048), testSampleRate)
		a, okA := direct.Estimate(w)
		b, okB := viaFFT.Estimate(w)
		if !okA || !okB {
			t.Fatalf("%.0f Hz: ok direct=%v fft=%v", f, okA, okB)
		}
		if math.Abs(a-b) > 1e-6*a {
			t.Fatalf("%.0f Hz: direct %v, fft %v", f, a, b)
		}
	}
}

func TestAutocorrelateDirectMatchesSpectralReference(t *testing.T) {
	x := testutil.Noise(7, 1, 64)
	got := make([]float64, len(x))
	autocorrelateDirect(x, got)

	padded := make([]float64, 2*len(x))
	copy(padded, x)
	spectrum := fft.FFTReal(padded)
	for i, v := range spectrum {
		spectrum[i] = v * cmplx.Conj(v)
	}
	inverse := fft.IFFT(spectrum)
	want := make([]float64, len(x))
	for i := range want {
		want[i] = real(inverse[i])
	}

	testutil.RequireSliceNearlyEqual(t, got, want, 1e-9)
}

func TestTrimEdges(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    []float64
	}{
		{
			name:    "both edges",
			samples: []float64{0.5, 0.1, 0.9, 0.05, 0.7},
			want:    []float64{0.1, 0.9},
		},
		{
			name:    "no quiet sample keeps everything",
			samples: []float64{0.5, -0.6, 0.7},
			want:    []float64{0.5, -0.6, 0.7},
		},
		{
			name:    "single quiet sample",
			samples: []float64{0.9, 0.1, 0.9},
			want:    nil,
		},
		{
			name:    "quiet at both ends",
			samples: []float64{0, 0.5, 0.5, 0},
			want:    []float64{0, 0.5, 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := trimEdges(tt.samples, 0.2)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestFindPeak(t *testing.T) {
	tests := []struct {
		name string
		c    []float64
		want int
		ok   bool
	}{
		{"skips zero-lag descent", []float64{10, 6, 2, 5, 8, 4, 1}, 4, true},
		{"monotonic descent has no peak", []float64{5, 4, 3, 2, 1}, 0, false},
		{"peak at last lag", []float64{5, 1, 2, 3}, 0, false},
		{"flat start", []float64{1, 1, 1}, 0, false},
		{"too short", []float64{3, 1}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := findPeak(tt.c)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Fatalf("findPeak = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRefinedPeriod(t *testing.T) {
	// Samples of -(x-4.25)^2 + 100 around the peak.
	parabola := func(x float64) float64 { return 100 - (x-4.25)*(x-4.25) }
	c := []float64{200, 50, 10}
	for i := 3; i <= 6; i++ {
		c = append(c, parabola(float64(i)))
	}
	c = append(c, 0)

	got, ok := refinedPeriod(c)
	if !ok {
		t.Fatal("refinedPeriod reported no peak")
	}
	if math.Abs(got-4.25) > 1e-12 {
		t.Fatalf("period = %v, want 4.25", got)
	}
}

func TestEstimateNoPitch(t *testing.T) {
	nan := testutil.DC(math.NaN(), 1024)
	trimmedAway := testutil.DC(0.9, 1024)
	trimmedAway[1] = 0.1

	tests := []struct {
		name    string
		samples []float64
	}{
		{"constant offset", testutil.DC(0.5, 1024)},
		{"trimmed slice too short", trimmedAway},
		{"not a number", nan},
		{"silence", make([]float64, 1024)},
	}

	for _, method := range []Method{MethodDirect, MethodFFT} {
		est := NewEstimator(DefaultTrimThreshold, method)

		for _, tt := range tests {
			t.Run(method.String()+"/"+tt.name, func(t *testing.T) {
				freq, ok := est.Estimate(mustWindow(t, tt.samples, testSampleRate))
				if ok {
					t.Fatalf("got pitch %v, want none", freq)
				}
			})
		}
	}
}

func BenchmarkEstimate(b *testing.B) {
	for _, method := range []Method{MethodDirect, MethodFFT} {
		for _, size := range []int{2048, 4096} {
			b.Run(fmt.Sprintf("%s/%d", method, size), func(b *testing.B) {
				est := NewEstimator(DefaultTrimThreshold, method)
				w := mustWindow(b, testutil.Sine(196, testSampleRate, 0.5, size), testSampleRate)
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					est.Estimate(w)
				}
			})
		}
	}
}
