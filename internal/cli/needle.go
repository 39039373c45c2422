package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/metalblueberry/bard-tuner/pkg/tuner"
)

// NeedleWidth is the number of cells on each side of the centre mark.
const NeedleWidth = 10

// Needle marks.
const (
	markTracking = '*'
	markDecaying = 'o'
)

// Needle draws the cents deviation as a text gauge spanning -50 to +50.
// While the pitch is lost the decaying deviation is drawn with a hollow
// mark until the tuner is reset.
func Needle(cents float64, tracking, shown bool) string {
	cells := []byte(strings.Repeat("-", 2*NeedleWidth+1))
	cells[NeedleWidth] = '|'

	if shown && !math.IsNaN(cents) {
		pos := NeedleWidth + int(math.Round(cents/50*NeedleWidth))
		if pos < 0 {
			pos = 0
		} else if pos > 2*NeedleWidth {
			pos = 2 * NeedleWidth
		}
		cells[pos] = markDecaying

		if tracking {
			cells[pos] = markTracking
		}

	}

	return "[" + string(cells) + "]"
}

// Line formats a state as one line of the console tuner.
func Line(s tuner.State) string {
	if s.Note == tuner.NoNote {
		return fmt.Sprintf("%-4s %6s %s", tuner.NoNote, "", Needle(0, false, false))
	}

	note := fmt.Sprintf("%s%d", s.Note, s.Octave)
	return fmt.Sprintf("%-4s %+4d c %s %8.2f Hz", note, s.RoundedCents(), Needle(s.Cents, s.Tracking, true), s.Frequency)
}
