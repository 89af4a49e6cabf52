package pytauri

import "sync"

// Runner is the factory that turns awaitable handles into Futures.
// One Runner is created per embedded-interpreter session, wrapping the
// session's scheduling callable, and is explicitly closed by its owner
// when the interpreter stops accepting work.
//
// Closing is monotonic: once closed, a Runner stays closed forever.
// Closing only refuses *new* Future creation -- Futures already handed
// out hold their own copy of the runner callable and are unaffected.
//
// Unlike Future, a Runner is safe for concurrent use: sessions hand it
// to many tasks at once.
type Runner[T any] struct {
	mu  sync.Mutex
	run RunnerFunc[T] // nil once closed; the alive/closed state.

	gate Gate

	// closed is the single-fire close broadcast: closed exactly once,
	// by Close.  Notificators wait on it without polling.
	closed chan struct{}
}

// NewRunner creates an alive Runner around the interpreter session's
// scheduling callable.
func NewRunner[T any](gate Gate, run RunnerFunc[T]) *Runner[T] {
	if gate == nil || run == nil {
		panic("NewRunner() requires a Gate and a runner callable")
	}
	return &Runner[T]{
		run:    run,
		gate:   gate,
		closed: make(chan struct{}),
	}
}

// Close transitions the Runner to its terminal closed state and fires
// the close broadcast.  Calling Close on an already-closed Runner is a
// no-op.
func (r *Runner[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.run == nil {
		return
	}
	r.run = nil
	close(r.closed)
}

// IsClosed peeks at whether Close has been called.
func (r *Runner[T]) IsClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.run == nil
}

// TryFuture creates a Future for the given awaitable handle, or
// reports false if the Runner is closed.
func (r *Runner[T]) TryFuture(awaitable any) (*Future[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.run == nil {
		return nil, false
	}
	return newFuture[T](r.gate, r.run, awaitable), true
}

// Future is TryFuture for callers who have already checked liveness:
// creating a Future on a closed Runner panics.
func (r *Runner[T]) Future(awaitable any) *Future[T] {
	f, ok := r.TryFuture(awaitable)
	if !ok {
		panic("the Runner is already closed")
	}
	return f
}

// ClosedNotificator returns an observer of this Runner's close
// broadcast, or false if the Runner is already closed (there is nothing
// left to observe; notificators obtained earlier keep working).
func (r *Runner[T]) ClosedNotificator() (*ClosedNotificator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.run == nil {
		return nil, false
	}
	return &ClosedNotificator{closed: r.closed}, true
}
