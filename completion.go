package pytauri

// Completion is the interpreter-visible half of a Future: the shared
// object through which the interpreter side reports an outcome and
// wakes the native poller.
//
// A Completion stores at most one outcome.  The interpreter-side runner
// contract guarantees at most one call across SetResult and SetError
// combined; a second call is a contract violation and panics.
//
// Completion carries no lock of its own.  Every method must be called
// while holding the interpreter Gate; because both the native poll path
// and the interpreter callback path acquire the Gate, all access to the
// outcome cell is strictly serialized and no torn reads are possible.
type Completion[T any] struct {
	awaitable any
	waker     Waker
	outcome   *outcome[T]
}

// outcome is the set-once cell: a value or an error, never both.
type outcome[T any] struct {
	value T
	err   error
}

func newCompletion[T any](awaitable any, wk Waker) *Completion[T] {
	return &Completion[T]{awaitable: awaitable, waker: wk}
}

// Awaitable returns the opaque interpreter-side task handle this
// Completion was created for.  Read-only; the bridge never inspects it.
func (c *Completion[T]) Awaitable() any {
	return c.awaitable
}

// SetResult stores a success outcome and wakes the current waker.
// Interpreter side only; Gate must be held.
func (c *Completion[T]) SetResult(value T) {
	c.set(&outcome[T]{value: value})
}

// SetError stores a failure outcome and wakes the current waker.
// Interpreter side only; Gate must be held.
func (c *Completion[T]) SetError(err error) {
	if err == nil {
		panic("SetError() requires a non-nil error; use SetResult for success")
	}
	c.set(&outcome[T]{err: err})
}

func (c *Completion[T]) set(o *outcome[T]) {
	if c.outcome != nil {
		panic("multiple SetResult()/SetError() calls on Completion")
	}
	c.outcome = o
	c.waker.Wake()
}

// rebindWaker replaces the stored wake callback.  The native poller
// calls this on every poll that observes no outcome, because the waker
// captured earlier may belong to a stale executor task context.
// Native side only; Gate must be held.
func (c *Completion[T]) rebindWaker(wk Waker) {
	c.waker = wk
}

// peek is a non-consuming read of the outcome cell; nil means not yet
// completed.  Gate must be held.
func (c *Completion[T]) peek() *outcome[T] {
	return c.outcome
}
