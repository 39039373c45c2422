package tuner

import (
	"fmt"
	"math"
)

/*
 * Pitch class names in chromatic order, starting at C.
 */
var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

/*
 * MIDI number of A4, the reference pitch.
 */
const midiA4 = 69

/*
 * A reading of the nearest equal-tempered note and the deviation from it.
 *
 * Cents lies in the half-open interval (-50, +50].
 */
type NoteReading struct {
	Name      string
	Octave    int
	MIDI      int
	Cents     float64
	Frequency float64
}

/*
 * Returns the note in scientific pitch notation, e.g. "A4".
 */
func (r NoteReading) String() string {
	return fmt.Sprintf("%s%d %+.0f¢", r.Name, r.Octave, r.Cents)
}

/*
 * Maps frequencies to notes relative to a reference pitch for A4.
 */
type Mapper struct {
	Reference float64
}

/*
 * Maps a frequency to the nearest note. The second return value is false
 * for frequencies that are not positive and finite.
 *
 * n = 12 * log2(f / ref) is the continuous semitone offset from A4.
 */
func (m Mapper) Map(frequency float64) (NoteReading, bool) {
	ref := m.Reference

	if ref == 0 {
		ref = DefaultReferencePitch
	}

	if !finite(frequency) || frequency <= 0 || !finite(ref) || ref <= 0 {
		return NoteReading{}, false
	}

	noteNumber := 12 * math.Log2(frequency/ref)

	if !finite(noteNumber) {
		return NoteReading{}, false
	}

	rounded := math.Round(noteNumber)
	cents := math.Round(100 * (noteNumber - rounded))

	/*
	 * Rounding can land exactly on the lower boundary. Express it
	 * relative to the semitone below instead.
	 */
	if cents <= -50 {
		rounded--
		cents += 100
	}

	/*
	 * Clear a negative zero left by rounding.
	 */
	if cents == 0 {
		cents = 0
	}

	midi := int(rounded) + midiA4
	pitchClass := midi % 12

	if pitchClass < 0 {
		pitchClass += 12
	}

	octave := floorDiv(midi, 12) - 1

	reading := NoteReading{
		Name:      pitchClasses[pitchClass],
		Octave:    octave,
		MIDI:      midi,
		Cents:     cents,
		Frequency: frequency,
	}

	return reading, true
}

func floorDiv(a, b int) int {
	q := a / b

	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}

	return q
}
