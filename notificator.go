package pytauri

import "context"

// ClosedNotificator lets any number of observers learn, without
// polling, that a Runner has been permanently closed.  It holds only
// the Runner's close broadcast; it has no ownership over the Runner
// and no way to close it.
type ClosedNotificator struct {
	closed <-chan struct{}
}

// IsClosed is the non-blocking check.
func (n *ClosedNotificator) IsClosed() bool {
	select {
	case <-n.closed:
		return true
	default:
		return false
	}
}

// Wait suspends the calling goroutine until the Runner closes, or
// until ctx is done, whichever comes first.  There is no busy-polling;
// the goroutine parks on the close broadcast.
func (n *ClosedNotificator) Wait(ctx context.Context) error {
	select {
	case <-n.closed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BlockingWait waits for the Runner to close with no escape hatch.
// For call sites that have no context to thread through.
func (n *ClosedNotificator) BlockingWait() {
	<-n.closed
}
