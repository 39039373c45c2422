package tuner

import "math"

/*
 * Note name published before the first pitch has been detected.
 */
const NoNote = "--"

/*
 * A snapshot of the tuner as published to display consumers.
 */
type State struct {
	Note      string
	Octave    int
	Cents     float64
	Frequency float64
	Tracking  bool
}

/*
 * Returns the initial state of a session.
 */
func InitialState() State {
	return State{
		Note: NoNote,
	}
}

/*
 * Returns the smoothed deviation rounded to the nearest cent.
 */
func (s State) RoundedCents() int {
	return int(math.Round(s.Cents))
}

/*
 * Turns per-cycle readings into a stable tuner state.
 *
 * While a pitch is tracked the deviation follows an exponential moving
 * average. When the pitch is lost the deviation decays towards zero and the
 * note name is kept. Updates smaller than the publish threshold with an
 * unchanged note name are not published.
 */
type Smoother struct {
	alpha            float64
	decay            float64
	decayFloor       float64
	publishThreshold float64
	current          State
	published        State
}

/*
 * Creates a smoother from the engine configuration.
 */
func NewSmoother(cfg Config) *Smoother {
	cfg = normalizeConfig(cfg)
	s := Smoother{
		alpha:            cfg.Smoothing,
		decay:            cfg.Decay,
		decayFloor:       cfg.DecayFloor,
		publishThreshold: cfg.PublishThreshold,
	}

	s.Reset()
	return &s
}

/*
 * Restores the initial state.
 */
func (s *Smoother) Reset() {
	s.current = InitialState()
	s.published = s.current
}

/*
 * Returns the internal, possibly unpublished, state.
 */
func (s *Smoother) Current() State {
	return s.current
}

/*
 * Returns the most recently published state.
 */
func (s *Smoother) Published() State {
	return s.published
}

/*
 * Advances the smoother by one cycle. If ok is false the cycle produced no
 * pitch and the reading is ignored. The returned flag reports whether the
 * new state passed the publish gate, in which case it becomes the published
 * state.
 */
func (s *Smoother) Update(reading NoteReading, ok bool) (State, bool) {
	next := s.current

	if ok {
		next.Cents = next.Cents*(1-s.alpha) + reading.Cents*s.alpha
		next.Note = reading.Name
		next.Octave = reading.Octave
		next.Frequency = reading.Frequency
		next.Tracking = true
	} else {
		next.Tracking = false

		if math.Abs(next.Cents) > s.decayFloor {
			next.Cents *= s.decay
		}

	}

	s.current = next
	changed := next.Note != s.published.Note || next.Octave != s.published.Octave
	moved := math.Abs(next.Cents-s.published.Cents) > s.publishThreshold

	if !changed && !moved {
		return s.published, false
	}

	s.published = next
	return next, true
}
