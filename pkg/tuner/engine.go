package tuner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

/*
 * Pause before the next back-to-back cycle when the source has no complete
 * window yet.
 */
const notReadyBackoff = time.Millisecond

/*
 * Engine runs analysis cycles against an audio frame source and publishes
 * the resulting tuner state.
 *
 * Cycles run one at a time on a single goroutine per session. The smoother
 * state belongs to that goroutine; consumers only see published snapshots.
 */
type Engine struct {
	source Source
	cfg    Config
	logger *log.Logger

	mutex    sync.Mutex
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	closeErr error

	mutexState sync.RWMutex
	state      State

	mutexSubs sync.Mutex
	subs      map[int]chan State
	nextSub   int
}

/*
 * Creates an engine reading from the given source.
 */
func NewEngine(source Source, cfg Config, opts ...Option) (*Engine, error) {

	if source == nil {
		return nil, fmt.Errorf("%w: nil source", ErrInvalidConfig)
	}

	cfg = normalizeConfig(cfg)
	err := cfg.Validate()

	if err != nil {
		return nil, err
	}

	closed := make(chan struct{})
	close(closed)

	e := Engine{
		source: source,
		cfg:    cfg,
		logger: discardLogger(),
		done:   closed,
		state:  InitialState(),
		subs:   make(map[int]chan State),
	}

	for _, opt := range opts {

		if opt != nil {
			opt(&e)
		}

	}

	return &e, nil
}

/*
 * Returns the effective configuration.
 */
func (e *Engine) Config() Config {
	return e.cfg
}

/*
 * Opens the source and starts running cycles. A failure to open the source
 * is returned wrapped in ErrDeviceUnavailable. The session ends when Stop is
 * called, when ctx is cancelled or when the stream ends.
 */
func (e *Engine) Start(ctx context.Context) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.running {
		return ErrAlreadyRunning
	}

	err := e.source.Open()

	if err != nil {
		e.source.Close()
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	e.setState(InitialState())
	sessionCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.running = true
	e.cancel = cancel
	e.done = done
	e.closeErr = nil
	e.logger.Printf("tuner started (method %s, interval %s)", e.cfg.Method, e.cfg.CycleInterval)
	go e.run(sessionCtx, done)
	return nil
}

/*
 * Halts the cycles and releases the source. Waits for an in-flight cycle to
 * complete. Calling Stop on a stopped engine does nothing.
 */
func (e *Engine) Stop() error {
	e.mutex.Lock()

	if !e.running {
		e.mutex.Unlock()
		return nil
	}

	cancel := e.cancel
	done := e.done
	e.mutex.Unlock()
	cancel()
	<-done
	e.mutex.Lock()
	err := e.closeErr
	e.closeErr = nil
	e.mutex.Unlock()
	return err
}

/*
 * Returns a channel that is closed when the current session ends. For an
 * engine that is not running the channel is already closed.
 */
func (e *Engine) Done() <-chan struct{} {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.done
}

/*
 * Reports whether a session is running.
 */
func (e *Engine) Running() bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.running
}

/*
 * Returns the most recently published state.
 */
func (e *Engine) CurrentState() State {
	e.mutexState.RLock()
	defer e.mutexState.RUnlock()
	return e.state
}

/*
 * Registers a subscriber for published states. The channel holds at most
 * one pending state; a slow reader only sees the latest one. The returned
 * function unsubscribes and closes the channel.
 */
func (e *Engine) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	e.mutexSubs.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	e.mutexSubs.Unlock()
	var once sync.Once

	unsubscribe := func() {
		once.Do(func() {
			e.mutexSubs.Lock()
			delete(e.subs, id)
			e.mutexSubs.Unlock()
			close(ch)
		})
	}

	return ch, unsubscribe
}

func (e *Engine) setState(s State) {
	e.mutexState.Lock()
	e.state = s
	e.mutexState.Unlock()
}

/*
 * Stores a published state and hands it to every subscriber, replacing any
 * state they have not consumed yet.
 */
func (e *Engine) publish(s State) {
	e.setState(s)
	e.mutexSubs.Lock()
	defer e.mutexSubs.Unlock()

	for _, ch := range e.subs {

		select {
		case <-ch:
		default:
		}

		select {
		case ch <- s:
		default:
		}

	}

}

func (e *Engine) run(ctx context.Context, done chan struct{}) {
	analyzer := NewAnalyzer(e.cfg)
	smoother := NewSmoother(e.cfg)

	defer func() {
		err := e.source.Close()
		e.publish(InitialState())
		e.mutex.Lock()
		e.running = false
		e.closeErr = err
		e.cancel()
		e.mutex.Unlock()
		close(done)
	}()

	var tick <-chan time.Time

	if e.cfg.CycleInterval > 0 {
		ticker := time.NewTicker(e.cfg.CycleInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {

		if tick == nil {

			select {
			case <-ctx.Done():
				e.logger.Printf("tuner stopped")
				return
			default:
			}

		} else {

			select {
			case <-ctx.Done():
				e.logger.Printf("tuner stopped")
				return
			case <-tick:
			}

		}

		switch e.cycle(analyzer, smoother) {
		case cycleEnded:
			e.logger.Printf("audio stream ended, stopping tuner")
			return
		case cycleNotReady:

			if tick == nil {

				select {
				case <-ctx.Done():
				case <-time.After(notReadyBackoff):
				}

			}

		}

	}

}

/*
 * Outcome of one analysis cycle.
 */
type cycleResult int

const (
	cycleDone cycleResult = iota
	cycleNotReady
	cycleEnded
)

/*
 * Runs one analysis cycle.
 */
func (e *Engine) cycle(analyzer *Analyzer, smoother *Smoother) cycleResult {
	w, err := e.source.Next()

	switch {
	case err == nil:
	case errors.Is(err, ErrNotReady):
		return cycleNotReady
	case errors.Is(err, ErrStreamEnded):
		return cycleEnded
	default:
		e.logger.Printf("failed to read sample window: %v", err)
		return cycleDone
	}

	reading, ok := analyzer.Analyze(w)
	state, publish := smoother.Update(reading, ok)

	if publish {
		e.publish(state)
	}

	return cycleDone
}
