package pytauri

import "context"

// closeable is satisfied by *Future and *CancelOnDrop.
type closeable interface {
	Close()
}

// Await is a minimal executor loop: it drives a Pollable to completion
// with a channel-backed waker and returns the outcome.
//
// If ctx is done before the value resolves, Await abandons it: the
// pollable's Close is called if it has one (so wrap in CancelOnDrop if
// abandonment should also request interpreter-side cancellation), and
// ctx.Err() is returned.
//
// Await never polls past completion, and serializes all polls, so it
// is always a correct driver for a Future.
func Await[T any](ctx context.Context, p Pollable[T]) (T, error) {
	// Capacity one plus a non-blocking send collapses wake bursts into
	// a single re-poll, and keeps Wake safe to call from anywhere.
	wakeCh := make(chan struct{}, 1)
	wk := WakerFunc(func() {
		select {
		case wakeCh <- struct{}{}:
		default:
		}
	})

	for {
		if poll := p.Poll(wk); poll.IsReady() {
			return poll.Result()
		}
		select {
		case <-wakeCh:
		case <-ctx.Done():
			if c, ok := p.(closeable); ok {
				c.Close()
			}
			var zero T
			return zero, ctx.Err()
		}
	}
}
