package tuner

import (
	"fmt"
	"io"
	"log"
	"math"
	"time"
)

/*
 * Default engine parameters.
 */
const (
	DefaultNoiseFloor       = 0.015
	DefaultTrimThreshold    = 0.2
	DefaultSmoothing        = 0.15
	DefaultDecay            = 0.9
	DefaultDecayFloor       = 0.5
	DefaultPublishThreshold = 0.1
	DefaultReferencePitch   = 440.0
	DefaultCycleInterval    = time.Second / 60
)

/*
 * Selects how the autocorrelation function is computed.
 */
type Method int

const (
	MethodDirect Method = iota
	MethodFFT
)

func (m Method) String() string {
	switch m {
	case MethodDirect:
		return "direct"
	case MethodFFT:
		return "fft"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

/*
 * Parses a method name as accepted on command lines.
 */
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "direct":
		return MethodDirect, nil
	case "fft":
		return MethodFFT, nil
	default:
		return MethodDirect, fmt.Errorf("%w: unknown method %q", ErrInvalidConfig, s)
	}
}

/*
 * Config holds the tuning parameters of the analysis pipeline.
 *
 * Zero-valued fields are replaced by their defaults, except CycleInterval,
 * where zero means cycles run back-to-back. Use a negative value there to
 * select the default frame clock.
 */
type Config struct {
	NoiseFloor       float64
	TrimThreshold    float64
	Smoothing        float64
	Decay            float64
	DecayFloor       float64
	PublishThreshold float64
	ReferencePitch   float64
	CycleInterval    time.Duration
	Method           Method
}

/*
 * Returns the default configuration.
 */
func DefaultConfig() Config {
	return Config{
		NoiseFloor:       DefaultNoiseFloor,
		TrimThreshold:    DefaultTrimThreshold,
		Smoothing:        DefaultSmoothing,
		Decay:            DefaultDecay,
		DecayFloor:       DefaultDecayFloor,
		PublishThreshold: DefaultPublishThreshold,
		ReferencePitch:   DefaultReferencePitch,
		CycleInterval:    DefaultCycleInterval,
		Method:           MethodDirect,
	}
}

func normalizeConfig(cfg Config) Config {
	def := DefaultConfig()

	if cfg.NoiseFloor == 0 {
		cfg.NoiseFloor = def.NoiseFloor
	}

	if cfg.TrimThreshold == 0 {
		cfg.TrimThreshold = def.TrimThreshold
	}

	if cfg.Smoothing == 0 {
		cfg.Smoothing = def.Smoothing
	}

	if cfg.Decay == 0 {
		cfg.Decay = def.Decay
	}

	if cfg.DecayFloor == 0 {
		cfg.DecayFloor = def.DecayFloor
	}

	if cfg.PublishThreshold == 0 {
		cfg.PublishThreshold = def.PublishThreshold
	}

	if cfg.ReferencePitch == 0 {
		cfg.ReferencePitch = def.ReferencePitch
	}

	if cfg.CycleInterval < 0 {
		cfg.CycleInterval = def.CycleInterval
	}

	return cfg
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

/*
 * Validate reports the first out-of-range parameter.
 */
func (cfg Config) Validate() error {
	switch {
	case !finite(cfg.NoiseFloor) || cfg.NoiseFloor < 0:
		return fmt.Errorf("%w: noise floor must be >= 0: %v", ErrInvalidConfig, cfg.NoiseFloor)
	case !finite(cfg.TrimThreshold) || cfg.TrimThreshold <= 0:
		return fmt.Errorf("%w: trim threshold must be > 0: %v", ErrInvalidConfig, cfg.TrimThreshold)
	case !finite(cfg.Smoothing) || cfg.Smoothing <= 0 || cfg.Smoothing > 1:
		return fmt.Errorf("%w: smoothing must be in (0,1]: %v", ErrInvalidConfig, cfg.Smoothing)
	case !finite(cfg.Decay) || cfg.Decay <= 0 || cfg.Decay >= 1:
		return fmt.Errorf("%w: decay must be in (0,1): %v", ErrInvalidConfig, cfg.Decay)
	case !finite(cfg.DecayFloor) || cfg.DecayFloor < 0:
		return fmt.Errorf("%w: decay floor must be >= 0: %v", ErrInvalidConfig, cfg.DecayFloor)
	case !finite(cfg.PublishThreshold) || cfg.PublishThreshold < 0:
		return fmt.Errorf("%w: publish threshold must be >= 0: %v", ErrInvalidConfig, cfg.PublishThreshold)
	case !finite(cfg.ReferencePitch) || cfg.ReferencePitch <= 0:
		return fmt.Errorf("%w: reference pitch must be > 0: %v", ErrInvalidConfig, cfg.ReferencePitch)
	case cfg.Method != MethodDirect && cfg.Method != MethodFFT:
		return fmt.Errorf("%w: unknown method %v", ErrInvalidConfig, cfg.Method)
	}

	return nil
}

/*
 * Option mutates the engine settings that are not part of Config.
 */
type Option func(*Engine)

/*
 * Sets the logger used for session lifecycle messages.
 */
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
