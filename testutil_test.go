package pytauri

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func mustEqual(t *testing.T, actual, expect interface{}) {
	t.Helper()
	if actual != expect {
		t.Fatalf("%+v != %+v", actual, expect)
	}
}

func shouldEqual(t *testing.T, actual, expect interface{}) {
	t.Helper()
	if actual != expect {
		t.Errorf("%+v != %+v", actual, expect)
	}
}

func mustPanic(t *testing.T, substr string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic containing %q, got none", substr)
		}
		if !strings.Contains(fmt.Sprint(r), substr) {
			t.Fatalf("expected a panic containing %q, got %v", substr, r)
		}
	}()
	fn()
}

// countWaker counts wakes.  Single-goroutine tests only.
type countWaker struct {
	n int
}

func (w *countWaker) Wake() { w.n++ }

// traceGate is a single-goroutine Gate that records every transition,
// so tests can assert acquisition order and balance.
type traceGate struct {
	depth int
	trace []string
}

func (g *traceGate) Acquire() {
	g.depth++
	g.trace = append(g.trace, "acquire")
}

func (g *traceGate) Release() {
	if g.depth == 0 {
		panic("traceGate released while not held")
	}
	g.depth--
	g.trace = append(g.trace, "release")
}

// recordedLogs captures the bridge's diagnostic output for the duration
// of one test.
type recordedLogs struct {
	mu   sync.Mutex
	msgs []string
}

func captureLogs(t *testing.T) *recordedLogs {
	t.Helper()
	rec := &recordedLogs{}
	SetLogger(slog.New(rec))
	t.Cleanup(func() { SetLogger(slog.Default()) })
	return rec
}

func (r *recordedLogs) containing(substr string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if strings.Contains(m, substr) {
			n++
		}
	}
	return n
}

func (r *recordedLogs) Enabled(context.Context, slog.Level) bool { return true }

func (r *recordedLogs) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, rec.Message)
	return nil
}

func (r *recordedLogs) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *recordedLogs) WithGroup(string) slog.Handler      { return r }
