package tuner

/*
 * Source is the audio frame source the engine pulls sample windows from.
 *
 * Open acquires the underlying resource (device, port, file). Next returns
 * the most recent window without blocking on I/O; it reports ErrNotReady
 * while the capture buffer is still filling and ErrStreamEnded once the
 * stream is gone. Close releases the resource and must be safe to call on a
 * source that failed to open. A closed source may be opened again.
 */
type Source interface {
	Open() error
	Next() (SampleWindow, error)
	Close() error
}
