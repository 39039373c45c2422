package cli

import (
	"strings"
	"testing"

	"github.com/metalblueberry/bard-tuner/pkg/tuner"
)

func TestNeedle(t *testing.T) {
	tests := []struct {
		name     string
		cents    float64
		tracking bool
		shown    bool
		want     string
	}{
		{"idle", 0, false, false, "[----------|----------]"},
		{"in tune", 0, true, true, "[----------*----------]"},
		{"sharp", 25, true, true, "[----------|----*-----]"},
		{"flat", -50, true, true, "[*---------|----------]"},
		{"clamped", 80, true, true, "[----------|---------*]"},
		{"decaying", 14, false, true, "[----------|--o-------]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Needle(tt.cents, tt.tracking, tt.shown); got != tt.want {
				t.Fatalf("Needle(%v) = %q, want %q", tt.cents, got, tt.want)
			}
		})
	}
}

func TestLine(t *testing.T) {
	got := Line(tuner.State{Note: "E", Octave: 2, Cents: -12.4, Frequency: 81.82, Tracking: true})
	for _, part := range []string{"E2", "-12 c", "81.82 Hz", "*"} {
		if !strings.Contains(got, part) {
			t.Fatalf("Line = %q, missing %q", got, part)
		}
	}

	lost := Line(tuner.State{Note: "E", Octave: 2, Cents: -20, Frequency: 81.82})
	if !strings.Contains(lost, "[------o---|") {
		t.Fatalf("decaying line = %q", lost)
	}

	idle := Line(tuner.InitialState())
	if !strings.HasPrefix(idle, tuner.NoNote) || strings.Contains(idle, "Hz") {
		t.Fatalf("idle line = %q", idle)
	}
}
