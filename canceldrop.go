package pytauri

// CancelOnDrop decorates a Future so that abandoning it requests
// cancellation of the interpreter-side task.
//
// This is deliberately not the Future's own Close behavior: the cancel
// token may need the Gate, and taking the Gate on every teardown path
// is much too prone to deadlocks.  Wrapping in CancelOnDrop makes that
// trade-off explicit and opt-in at each call site, and makes the places
// where the Gate may be taken for cancellation easy to find.
type CancelOnDrop[T any] struct {
	Inner *Future[T]
}

// Poll forwards to the inner Future unchanged.
func (w *CancelOnDrop[T]) Poll(wk Waker) Poll[T] {
	return w.Inner.Poll(wk)
}

// Close cancels the inner Future if it is still running and no
// cancellation was requested yet.  A cancellation failure is logged and
// discarded -- by the time we are here the caller has already abandoned
// interest in the outcome, so there is nobody left to propagate to.
func (w *CancelOnDrop[T]) Close() {
	f := w.Inner
	if f.State() == FutureState_Running && !f.CancellationRequested() {
		if err := f.Cancel(); err != nil {
			diag().Warn("error while cancelling an abandoned Future", "err", err)
		}
	}
	f.Close()
}
