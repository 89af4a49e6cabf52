package pytauri

import (
	"fmt"
	"reflect"
	"runtime"
)

// RunnerFunc starts interpreter-side execution of the completion's
// awaitable.  It is invoked with the Gate held and must return
// promptly: schedule the work and come back, never block on it.
//
// The returned CancelFunc requests best-effort cancellation of the
// scheduled work.  RunnerFunc must arrange for exactly one of the
// completion's SetResult/SetError to eventually be called -- or
// neither, in which case the Future never resolves.
//
// A non-nil error return means the integration itself is broken (the
// work could not even be scheduled); the Future treats that as fatal.
type RunnerFunc[T any] func(c *Completion[T]) (CancelFunc, error)

// CancelFunc requests cancellation of in-flight interpreter work.
// If it needs the Gate it must acquire the Gate itself; it is always
// invoked without it.  Cancellation is best-effort: an error typically
// just means the work already finished.
type CancelFunc func() error

// FutureState enumerates the lifecycle of a Future.
type FutureState uint8

const (
	FutureState_Init    FutureState = iota // Nothing started; the runner fires on first poll.
	FutureState_Running                    // Runner invoked; outcome not yet extracted.
	FutureState_Done                       // Terminal.  Polling again is a programming error.
)

// Future is a native asynchronous value resolving to the outcome of an
// interpreter-side task.  It is a three-state machine:
//
//	Init -> Running  on first poll: acquire the Gate, build a
//	                 Completion bound to the current waker, invoke the
//	                 runner, and report Pending.  The first poll always
//	                 reports Pending, even if the runner completed the
//	                 task synchronously.
//	Running          on later polls: under the Gate, either rebind the
//	                 waker (still pending) or copy the outcome out.
//	Running -> Done  once the outcome is extracted, or never.
//
// A Future is owned by exactly one executor task.  Poll, Cancel, and
// Close require exclusive access; the bridge does not serialize them
// internally.
type Future[T any] struct {
	gate  Gate
	state FutureState

	// FutureState_Init only.  Consumed exactly once on first poll.
	init *futureInit[T]

	// FutureState_Running only.
	completion            *Completion[T]
	cancel                CancelFunc
	cancellationRequested bool
}

type futureInit[T any] struct {
	awaitable any
	runner    RunnerFunc[T]
}

func newFuture[T any](gate Gate, runner RunnerFunc[T], awaitable any) *Future[T] {
	return &Future[T]{
		gate:  gate,
		state: FutureState_Init,
		init:  &futureInit[T]{awaitable: awaitable, runner: runner},
	}
}

// State peeks at the current state.  Like any peek, it can be stale the
// moment it returns; it is meant for inspection, not control flow.
func (f *Future[T]) State() FutureState {
	return f.state
}

// CancellationRequested reports whether Cancel has successfully run.
// False for any non-running state.
func (f *Future[T]) CancellationRequested() bool {
	return f.state == FutureState_Running && f.cancellationRequested
}

// Poll advances the state machine.  See the Future doc for the
// transition rules.  Polling a done Future panics.
func (f *Future[T]) Poll(wk Waker) Poll[T] {
	switch f.state {
	case FutureState_Init:
		init := f.init
		if init == nil {
			// unreachable: each init payload is consumed exactly once
			// before the state changes.
			panic("Future init payload already consumed; constructor implemented incorrectly")
		}
		f.init = nil
		completion := newCompletion[T](init.awaitable, wk)
		f.gate.Acquire()
		cancel, err := init.runner(completion)
		f.gate.Release()
		if err != nil {
			// A runner that cannot even schedule work is a broken
			// integration, not a recoverable runtime condition.
			panic(fmt.Sprintf("error while calling runner %s: %v", funcName(init.runner), err))
		}
		f.completion = completion
		f.cancel = cancel
		f.cancellationRequested = false
		f.state = FutureState_Running
		return Pending[T]()

	case FutureState_Running:
		f.gate.Acquire()
		o := f.completion.peek()
		if o == nil {
			f.completion.rebindWaker(wk)
			f.gate.Release()
			return Pending[T]()
		}
		// Copy the outcome out under the Gate; the original stays
		// owned by the Completion until both sides drop it.
		value, err := o.value, o.err
		f.gate.Release()
		f.state = FutureState_Done
		return Ready(value, err)

	case FutureState_Done:
		panic("polling a done Future")

	default:
		panic(fmt.Sprintf("Future in impossible state %d", f.state))
	}
}

// Cancel requests cancellation of the in-flight interpreter task by
// invoking the runner's cancel token, and on success records that
// cancellation was requested.
//
// The token acquires the Gate itself if it needs it; Cancel adds no
// locking of its own.  This keeps tokens that must not wait for the
// interpreter -- interrupt flags, for instance, whose whole point is to
// fire while a task holds the Gate -- deadlock-free.
//
// Only one cancellation request is ever issued: a second Cancel on the
// same Future is an idempotent no-op.  Cancelling a Future that is not
// running is a fatal misuse and panics.
//
// Cancel requires the same exclusive access as Poll; concurrent
// cancellation attempts must be serialized by the caller.
func (f *Future[T]) Cancel() error {
	if f.state != FutureState_Running {
		panic("cancelling a non-running Future")
	}
	if f.cancellationRequested {
		return nil
	}
	if err := f.cancel(); err != nil {
		return err
	}
	f.cancellationRequested = true
	return nil
}

// Close abandons the Future.  If it is still running and cancellation
// was never requested, a diagnostic warning is logged -- but no cancel
// is issued, because issuing one from an arbitrary teardown point may
// need the Gate in a context where taking it could deadlock.  Wrap the
// Future in CancelOnDrop to opt in to lock-safe cancel-on-abandon.
func (f *Future[T]) Close() {
	if f.state == FutureState_Running && !f.cancellationRequested {
		diag().Warn("Future abandoned while the interpreter task may still be running",
			"state", "running")
	}
}

func funcName(fn any) string {
	pc := reflect.ValueOf(fn).Pointer()
	if f := runtime.FuncForPC(pc); f != nil {
		return f.Name()
	}
	return "<unknown>"
}
