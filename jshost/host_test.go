package jshost

import (
	"context"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakataprime/pytauri"
)

func TestEval(t *testing.T) {
	t.Run("value round trip", func(t *testing.T) {
		h := New()
		defer h.Close()

		v, err := h.Eval(context.Background(), "add.js", "2 + 2")
		require.NoError(t, err)
		assert.Equal(t, int64(4), v.ToInteger())
	})

	t.Run("script failure is a normal outcome", func(t *testing.T) {
		h := New()
		defer h.Close()

		_, err := h.Eval(context.Background(), "throw.js", `throw new Error("boom")`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")

		// The host survives a failed script.
		v, err := h.Eval(context.Background(), "after.js", "1 + 1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), v.ToInteger())
	})

	t.Run("state persists across evals", func(t *testing.T) {
		h := New()
		defer h.Close()

		_, err := h.Eval(context.Background(), "def.js", "var counter = 40")
		require.NoError(t, err)
		v, err := h.Eval(context.Background(), "use.js", "counter + 2")
		require.NoError(t, err)
		assert.Equal(t, int64(42), v.ToInteger())
	})
}

func TestEvalCancellation(t *testing.T) {
	h := New()
	defer h.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := h.Eval(ctx, "spin.js", "for(;;){}")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The interrupt lands and the runtime is reusable afterwards.
	v, err := h.Eval(context.Background(), "after.js", "'alive'")
	require.NoError(t, err)
	assert.Equal(t, "alive", v.String())
}

func TestConcurrentCancelDoesNotInterruptOtherScript(t *testing.T) {
	h := New()
	defer h.Close()

	// A slow script owns the runtime while a second, never-started
	// future is cancelled.  The cancel must not interrupt the slow
	// script: only its own run may be hit by the runtime-wide flag.
	type outcome struct {
		v   goja.Value
		err error
	}
	slow := make(chan outcome, 1)
	go func() {
		v, err := h.Eval(context.Background(), "slow.js",
			"var t = Date.now(); while (Date.now() - t < 200) {} 'slow done'")
		slow <- outcome{v, err}
	}()

	// Let the slow script take the Gate, then cancel a pending future.
	time.Sleep(50 * time.Millisecond)
	f := h.Runner().Future(Script{Name: "queued.js", Src: "'never runs'"})
	wk := pytauri.WakerFunc(func() {})
	require.False(t, f.Poll(wk).IsReady())
	require.NoError(t, f.Cancel())

	got := <-slow
	require.NoError(t, got.err)
	assert.Equal(t, "slow done", got.v.String())

	// The cancelled future resolves to its own interruption once its
	// turn on the runtime comes around.
	_, err := pytauri.Await[goja.Value](context.Background(), f)
	assert.ErrorIs(t, err, ErrInterrupted)
}

func TestClose(t *testing.T) {
	h := New()
	h.Close()

	_, err := h.Eval(context.Background(), "late.js", "1")
	assert.ErrorIs(t, err, ErrClosed)

	_, ok := h.Runner().TryFuture(Script{Name: "late.js", Src: "1"})
	assert.False(t, ok)
}

func TestRunnerRejectsForeignAwaitable(t *testing.T) {
	h := New()
	defer h.Close()

	// A wrong awaitable type means the integration is broken; the
	// first poll surfaces that loudly.
	f := h.Runner().Future("not a Script")
	assert.Panics(t, func() { f.Poll(pytauri.WakerFunc(func() {})) })
}

func TestDrivingAFutureByHand(t *testing.T) {
	h := New()
	defer h.Close()

	f := h.Runner().Future(Script{Name: "direct.js", Src: "3 * 3"})
	wk := pytauri.WakerFunc(func() {})
	require.False(t, f.Poll(wk).IsReady(), "the starting poll is always pending")

	v, err := pytauri.Await[goja.Value](context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, int64(9), v.ToInteger())
}
