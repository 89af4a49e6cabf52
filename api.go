// Package pytauri bridges a Go host's poll-driven asynchronous values to
// computations running inside an embedded, lock-protected interpreter.
//
// The interpreter has its own cooperative task model and may only be
// touched while holding a process-wide interpreter lock (the Gate).
// The host side is modeled as an explicit poll/waker protocol:
// an executor polls a Future, the Future reports Pending until the
// interpreter reports an outcome through a Completion, and the
// interpreter's report wakes the executor to poll again.
//
// The bridge is the sole legal crossing point between the two worlds.
// Everything it consumes from the interpreter binding layer is narrow:
// a Gate, an opaque awaitable handle, and a RunnerFunc that schedules
// interpreter-side work and returns promptly.  Everything it gives back
// is a Future that resolves to a value or an error.
package pytauri

// Waker is the wake callback an executor registers when it polls.
// Calling Wake signals that the pending value should be polled again.
//
// Wake must be safe to call from any goroutine, and must not block.
type Waker interface {
	Wake()
}

// WakerFunc adapts a plain func into a Waker.
type WakerFunc func()

func (f WakerFunc) Wake() { f() }

// Pollable is any asynchronous value driven by the poll/waker protocol.
//
// Poll is not safe for concurrent use: the executor driving a Pollable
// must serialize its polls (Await does this for you).
type Pollable[T any] interface {
	Poll(Waker) Poll[T]
}

// Poll is the result of a single poll: either pending, or ready with
// the final outcome (a value or an error, never both meaningful).
type Poll[T any] struct {
	value T
	err   error
	ready bool
}

// Pending reports that the value is not ready yet and that the waker
// will be invoked when it is worth polling again.
func Pending[T any]() Poll[T] {
	return Poll[T]{}
}

// Ready reports the final outcome.
func Ready[T any](value T, err error) Poll[T] {
	return Poll[T]{value: value, err: err, ready: true}
}

// IsReady reports whether this poll produced the final outcome.
func (p Poll[T]) IsReady() bool {
	return p.ready
}

// Result returns the final outcome.  Calling it on a pending poll is a
// programming error and panics.
func (p Poll[T]) Result() (T, error) {
	if !p.ready {
		panic("Result() called on a pending Poll")
	}
	return p.value, p.err
}

// Gate is the interpreter lock: the process-wide critical section that
// must be held whenever native code touches interpreter-owned memory.
//
// The bridge never stores a Gate globally; it is handed in as an
// explicit capability, so that tests can substitute a recording gate
// and assert acquisition order.  Hold it for the minimum necessary
// critical section, and never across a suspension point.
type Gate interface {
	Acquire()
	Release()
}

// Holding runs fn while holding the gate.
func Holding(g Gate, fn func()) {
	g.Acquire()
	defer g.Release()
	fn()
}
