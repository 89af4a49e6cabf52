package luahost

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/rakataprime/pytauri"
)

func TestEval(t *testing.T) {
	t.Run("value round trip", func(t *testing.T) {
		h := New()
		defer h.Close()

		v, err := h.Eval(context.Background(), "add.lua", "return 1 + 2")
		require.NoError(t, err)
		assert.Equal(t, lua.LNumber(3), v)
	})

	t.Run("no return value resolves to nil", func(t *testing.T) {
		h := New()
		defer h.Close()

		v, err := h.Eval(context.Background(), "noop.lua", "local x = 1")
		require.NoError(t, err)
		assert.Equal(t, lua.LNil, v)
	})

	t.Run("yielding chunk resolves after its last step", func(t *testing.T) {
		h := New()
		defer h.Close()

		v, err := h.Eval(context.Background(), "steps.lua",
			"for i = 1, 3 do coroutine.yield(i) end return 'done'")
		require.NoError(t, err)
		assert.Equal(t, lua.LString("done"), v)
	})

	t.Run("runtime error is a normal failure outcome", func(t *testing.T) {
		h := New()
		defer h.Close()

		_, err := h.Eval(context.Background(), "err.lua", `error("kaboom")`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "kaboom")
	})

	t.Run("syntax error is a normal failure outcome", func(t *testing.T) {
		h := New()
		defer h.Close()

		_, err := h.Eval(context.Background(), "bad.lua", "return ((")
		require.Error(t, err)
	})
}

func TestCancellationBetweenYields(t *testing.T) {
	h := New()
	defer h.Close()

	f := h.Runner().Future(Chunk{
		Name: "forever.lua",
		Src:  "while true do coroutine.yield() end",
	})

	// Start it, then request cancellation; the flag is honored at the
	// next yield and the outcome is the cancellation failure.
	wk := pytauri.WakerFunc(func() {})
	require.False(t, f.Poll(wk).IsReady())
	require.NoError(t, f.Cancel())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := pytauri.Await[lua.LValue](ctx, f)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestEvalContextCancellation(t *testing.T) {
	h := New()
	defer h.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := h.Eval(ctx, "forever.lua", "while true do coroutine.yield() end")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The chunk noticed the cancel and the host is reusable.
	v, err := h.Eval(context.Background(), "after.lua", "return 'alive'")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("alive"), v)
}

func TestClose(t *testing.T) {
	h := New()
	h.Close()

	_, err := h.Eval(context.Background(), "late.lua", "return 1")
	assert.ErrorIs(t, err, ErrClosed)

	n, ok := h.Runner().ClosedNotificator()
	assert.False(t, ok)
	assert.Nil(t, n)
}
