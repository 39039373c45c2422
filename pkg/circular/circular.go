package circular

import (
	"errors"
	"sync"
)

/*
 * Returned when a retrieval target does not match the buffer size.
 */
var ErrSizeMismatch = errors.New("target buffer must be of the same size as source buffer")

/*
 * Data structure implementing a circular buffer of audio samples.
 *
 * Writers (typically an audio driver callback) and readers (the analysis
 * cycle) may run on different goroutines.
 */
type Buffer[T any] struct {
	mutex   sync.RWMutex
	values  []T
	pointer int
	written uint64
}

/*
 * Add elements to the circular buffer, potentially overwriting unread elements.
 *
 * Semantics: First write to buffer, then increment pointer.
 *
 * Pointer points to "oldest" element, or next element to be overwritten.
 */
func (b *Buffer[T]) Enqueue(elems ...T) {
	numElems := len(elems)
	values := b.values
	n := len(values)

	if n == 0 || numElems == 0 {
		return
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.written += uint64(numElems)

	/*
	 * If there are more elements than fit into the buffer, keep only the
	 * tail of the element array, otherwise perform a circular write.
	 */
	if numElems >= n {
		copy(values, elems[numElems-n:])
		b.pointer = 0
		return
	}

	ptr := b.pointer
	ptrInc := ptr + numElems

	if ptrInc < n {
		copy(values[ptr:ptrInc], elems)
		b.pointer = ptrInc
		return
	}

	tail := n - ptr
	head := ptrInc - n
	copy(values[ptr:n], elems[:tail])
	copy(values[:head], elems[tail:])
	b.pointer = head
}

/*
 * Returns the capacity of the buffer.
 */
func (b *Buffer[T]) Length() int {
	return len(b.values)
}

/*
 * Returns the total number of elements ever enqueued since creation or the
 * last reset.
 */
func (b *Buffer[T]) Written() uint64 {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.written
}

/*
 * Reports whether the buffer has been completely filled at least once.
 */
func (b *Buffer[T]) Full() bool {
	return b.Written() >= uint64(len(b.values))
}

/*
 * Retrieve all elements from the circular buffer, oldest first.
 */
func (b *Buffer[T]) Retrieve(buf []T) error {
	values := b.values
	n := len(values)

	if len(buf) != n {
		return ErrSizeMismatch
	}

	b.mutex.RLock()
	ptr := b.pointer
	tailSize := n - ptr
	copy(buf[:tailSize], values[ptr:n])
	copy(buf[tailSize:n], values[:ptr])
	b.mutex.RUnlock()
	return nil
}

/*
 * Clears the buffer contents and the write counter.
 */
func (b *Buffer[T]) Reset() {
	var zero T
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for i := range b.values {
		b.values[i] = zero
	}

	b.pointer = 0
	b.written = 0
}

/*
 * Creates a circular buffer of a certain size.
 */
func CreateBuffer[T any](size int) *Buffer[T] {
	if size < 0 {
		size = 0
	}

	return &Buffer[T]{
		values: make([]T, size),
	}
}
