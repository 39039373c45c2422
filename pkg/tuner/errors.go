package tuner

import "errors"

/*
 * Errors reported by the engine and its collaborators.
 */
var (
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrAlreadyRunning    = errors.New("engine already running")
	ErrInvalidWindow     = errors.New("invalid sample window")
	ErrInvalidConfig     = errors.New("invalid tuner configuration")

	/*
	 * Returned by Source.Next when not enough samples have been captured
	 * yet. The cycle is skipped.
	 */
	ErrNotReady = errors.New("sample window not ready")

	/*
	 * Returned by Source.Next when the capture stream has ended. The engine
	 * treats it like a stop.
	 */
	ErrStreamEnded = errors.New("audio stream ended")
)
