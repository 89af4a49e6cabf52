// Package luahost embeds a gopher-lua interpreter behind the bridge,
// running each chunk as a coroutine.
//
// This is the bridge's cooperative-scheduling shape: a chunk is resumed
// step by step under the Gate, the Gate is released between yields so
// other interpreter work can interleave, and cancellation is a flag
// honored at the next yield -- requested, never forced.
package luahost

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"

	"github.com/rakataprime/pytauri"
)

// ErrClosed is returned by Eval once the host has been closed.
var ErrClosed = errors.New("luahost: host is closed")

// ErrCancelled is the failure outcome of a chunk cancelled between
// resumption steps.
var ErrCancelled = errors.New("luahost: chunk cancelled")

// Chunk is the awaitable handle this host's runner understands: lua
// source compiled and run as a coroutine body.  The chunk may call
// coroutine.yield freely; each yield is a cancellation point.
type Chunk struct {
	Name string
	Src  string
}

// Host owns one lua state and the Runner that schedules work on it.
type Host struct {
	gate   *pytauri.ReentrantGate
	state  *lua.LState
	runner *pytauri.Runner[lua.LValue]
}

func New() *Host {
	h := &Host{
		gate:  &pytauri.ReentrantGate{},
		state: lua.NewState(),
	}
	h.runner = pytauri.NewRunner[lua.LValue](h.gate, h.run)
	return h
}

// Gate returns the interpreter lock guarding this host's lua state.
func (h *Host) Gate() pytauri.Gate { return h.gate }

// State returns the underlying lua state.  Touch it only while holding
// the Gate.
func (h *Host) State() *lua.LState { return h.state }

// Runner returns the bridge Runner for this host.
func (h *Host) Runner() *pytauri.Runner[lua.LValue] { return h.runner }

// Close stops accepting new chunks; in-flight chunks run out on their
// own.
func (h *Host) Close() { h.runner.Close() }

func (h *Host) run(c *pytauri.Completion[lua.LValue]) (pytauri.CancelFunc, error) {
	chunk, ok := c.Awaitable().(Chunk)
	if !ok {
		return nil, fmt.Errorf("awaitable must be a luahost.Chunk, got %T", c.Awaitable())
	}

	var done, cancelled atomic.Bool
	go h.drive(c, chunk, &done, &cancelled)

	cancel := func() error {
		if done.Load() {
			return errors.New("luahost: chunk already finished")
		}
		cancelled.Store(true)
		return nil
	}
	return cancel, nil
}

// drive resumes the chunk's coroutine to completion.  The Gate is held
// for each resumption step and dropped between them: a chunk that
// yields cooperates both with other interpreter users and with its own
// cancellation.
func (h *Host) drive(c *pytauri.Completion[lua.LValue], chunk Chunk, done, cancelled *atomic.Bool) {
	h.gate.Acquire()
	fn, err := h.state.Load(strings.NewReader(chunk.Src), chunk.Name)
	if err != nil {
		done.Store(true)
		c.SetError(err)
		h.gate.Release()
		return
	}
	co, _ := h.state.NewThread()
	h.gate.Release()

	for {
		if cancelled.Load() {
			pytauri.Holding(h.gate, func() {
				done.Store(true)
				c.SetError(ErrCancelled)
			})
			return
		}

		h.gate.Acquire()
		st, rerr, values := h.state.Resume(co, fn)
		switch st {
		case lua.ResumeYield:
			// Cooperative step done; give the Gate back and go again.
			h.gate.Release()
		case lua.ResumeOK:
			ret := lua.LValue(lua.LNil)
			if len(values) > 0 {
				ret = values[0]
			}
			done.Store(true)
			c.SetResult(ret)
			h.gate.Release()
			return
		default: // lua.ResumeError
			done.Store(true)
			c.SetError(rerr)
			h.gate.Release()
			return
		}
	}
}

// Eval schedules src on the host and awaits its value.  Cancelling ctx
// abandons the future and requests cancellation of the chunk.
func (h *Host) Eval(ctx context.Context, name, src string) (lua.LValue, error) {
	f, ok := h.runner.TryFuture(Chunk{Name: name, Src: src})
	if !ok {
		return nil, ErrClosed
	}
	return pytauri.Await[lua.LValue](ctx, &pytauri.CancelOnDrop[lua.LValue]{Inner: f})
}
