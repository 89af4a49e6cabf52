// Package jshost embeds the goja JavaScript interpreter behind the
// bridge: scripts are scheduled as interpreter-side tasks, and their
// results come back to the host as bridge futures.
//
// goja runtimes are not safe for concurrent use, so the runtime plays
// the part of the interpreter-owned memory: it may only be touched
// while holding the host's Gate.  Cancellation maps onto the runtime's
// interrupt flag, which is the one goja facility that is legal to use
// from any goroutine without the lock.
package jshost

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/rakataprime/pytauri"
)

// ErrClosed is returned by Eval once the host has been closed.
var ErrClosed = errors.New("jshost: host is closed")

// ErrInterrupted is the failure outcome of a script whose future was
// cancelled while it ran.
var ErrInterrupted = errors.New("jshost: script interrupted")

// Script is the awaitable handle this host's runner understands: a
// chunk of JavaScript source plus a name for stack traces.
type Script struct {
	Name string
	Src  string
}

// Host owns one goja runtime and the Runner that schedules work on it.
type Host struct {
	gate   *pytauri.ReentrantGate
	vm     *goja.Runtime
	runner *pytauri.Runner[goja.Value]

	// intrMu serializes interrupt delivery against run boundaries.
	// The runtime's interrupt flag is runtime-wide, so a cancel must
	// only fire it while its own script is the one executing; current
	// identifies that script.  Taken after the Gate, never around a
	// script run.
	intrMu  sync.Mutex
	current *scriptRun
}

// scriptRun is the per-run lifecycle record shared between the
// executing goroutine and the cancel token.  Guarded by intrMu.
type scriptRun struct {
	done      bool
	cancelled bool
}

func New() *Host {
	h := &Host{
		gate: &pytauri.ReentrantGate{},
		vm:   goja.New(),
	}
	h.runner = pytauri.NewRunner[goja.Value](h.gate, h.run)
	return h
}

// Gate returns the interpreter lock guarding this host's runtime.
func (h *Host) Gate() pytauri.Gate { return h.gate }

// Runtime returns the underlying goja runtime.  Touch it only while
// holding the Gate.
func (h *Host) Runtime() *goja.Runtime { return h.vm }

// Runner returns the bridge Runner for this host, for callers who want
// to build and drive futures themselves.
func (h *Host) Runner() *pytauri.Runner[goja.Value] { return h.runner }

// Close stops accepting new scripts.  In-flight scripts run to
// completion (or interruption); the runtime itself needs no teardown.
func (h *Host) Close() { h.runner.Close() }

// run is the RunnerFunc: it schedules the script on a fresh goroutine
// and returns at once.  The goroutine takes the Gate for the whole
// execution, which is exactly the single-owner semantic goja requires.
func (h *Host) run(c *pytauri.Completion[goja.Value]) (pytauri.CancelFunc, error) {
	script, ok := c.Awaitable().(Script)
	if !ok {
		return nil, fmt.Errorf("awaitable must be a jshost.Script, got %T", c.Awaitable())
	}

	st := &scriptRun{}
	go h.exec(c, script, st)

	cancel := func() error {
		h.intrMu.Lock()
		defer h.intrMu.Unlock()
		if st.done {
			return errors.New("jshost: script already finished")
		}
		st.cancelled = true
		// Interrupt is goroutine-safe and needs no Gate, but it hits
		// whatever the runtime is executing.  Only fire it while that
		// is this run's script; a run that has not started yet honors
		// the cancelled flag before it gets to RunScript.
		if h.current == st {
			h.vm.Interrupt("cancelled")
		}
		return nil
	}
	return cancel, nil
}

func (h *Host) exec(c *pytauri.Completion[goja.Value], script Script, st *scriptRun) {
	h.gate.Acquire()
	defer h.gate.Release()

	h.intrMu.Lock()
	if st.cancelled {
		st.done = true
		h.intrMu.Unlock()
		c.SetError(ErrInterrupted)
		return
	}
	h.current = st
	h.intrMu.Unlock()

	v, err := h.vm.RunScript(script.Name, script.Src)

	// Unpublish and clear in one critical section: a cancel that saw
	// this run as current has either delivered its interrupt already
	// or never will, so no stale interrupt can leak into a later run.
	h.intrMu.Lock()
	h.current = nil
	h.vm.ClearInterrupt()
	st.done = true
	h.intrMu.Unlock()

	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			err = fmt.Errorf("%w: %v", ErrInterrupted, interrupted.Value())
		}
		c.SetError(err)
		return
	}
	c.SetResult(v)
}

// Eval schedules src on the host and awaits its value.  Cancelling ctx
// abandons the future and interrupts the script.
func (h *Host) Eval(ctx context.Context, name, src string) (goja.Value, error) {
	f, ok := h.runner.TryFuture(Script{Name: name, Src: src})
	if !ok {
		return nil, ErrClosed
	}
	return pytauri.Await[goja.Value](ctx, &pytauri.CancelOnDrop[goja.Value]{Inner: f})
}
