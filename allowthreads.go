package pytauri

// AllowThreads wraps a Pollable so that each poll releases the Gate for
// the duration of the inner poll and reacquires it before handing
// control back.
//
// Use it in polling contexts that hold the Gate: a CPU-bound or
// blocking-capable inner value can then make progress without starving
// every other interpreter-lock user.  The calling goroutine must hold
// the Gate when Poll is invoked.
type AllowThreads[T any] struct {
	Gate  Gate
	Inner Pollable[T]
}

func (a AllowThreads[T]) Poll(wk Waker) Poll[T] {
	a.Gate.Release()
	defer a.Gate.Acquire()
	return a.Inner.Poll(wk)
}
