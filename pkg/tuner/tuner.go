/*
 * Package tuner implements a chromatic instrument tuner.
 *
 * Sample windows pass an energy gate, an autocorrelation period estimator
 * and a frequency to note mapper. A smoother turns the per-window readings
 * into the state shown on a tuner display. The Engine drives this pipeline
 * from an audio frame source until it is stopped.
 */
package tuner

/*
 * The stateless part of an analysis cycle: gate, estimator and mapper.
 */
type Analyzer struct {
	gate      Gate
	estimator *Estimator
	mapper    Mapper
}

/*
 * Creates an analyzer from the engine configuration.
 */
func NewAnalyzer(cfg Config) *Analyzer {
	cfg = normalizeConfig(cfg)

	a := Analyzer{
		gate:      Gate{Threshold: cfg.NoiseFloor},
		estimator: NewEstimator(cfg.TrimThreshold, cfg.Method),
		mapper:    Mapper{Reference: cfg.ReferencePitch},
	}

	return &a
}

/*
 * Analyze a sample window. The second return value is false when the window
 * is silent or carries no detectable pitch.
 */
func (a *Analyzer) Analyze(w SampleWindow) (NoteReading, bool) {

	if !a.gate.Open(w) {
		return NoteReading{}, false
	}

	freq, ok := a.estimator.Estimate(w)

	if !ok {
		return NoteReading{}, false
	}

	return a.mapper.Map(freq)
}
