package pytauri

import (
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// ReentrantGate is the standard Gate implementation: a process-wide
// mutual exclusion lock that the holding goroutine may re-acquire.
//
// Reentrancy matters because cancellation paths are allowed to run
// while a poll already holds the gate (see CancelOnDrop); with a plain
// mutex those paths would deadlock.  Goroutine identity is used to
// recognize the holder.
//
// The zero value is ready to use.
type ReentrantGate struct {
	mu    sync.Mutex
	owner atomic.Int64 // goroutine id of the holder, 0 when unheld.
	depth int          // re-acquisition count; only touched by the holder.
}

func (g *ReentrantGate) Acquire() {
	gid := goid.Get()
	if g.owner.Load() == gid {
		g.depth++
		return
	}
	g.mu.Lock()
	g.owner.Store(gid)
	g.depth = 1
}

func (g *ReentrantGate) Release() {
	if g.owner.Load() != goid.Get() {
		panic("Release() of a Gate not held by this goroutine")
	}
	g.depth--
	if g.depth == 0 {
		g.owner.Store(0)
		g.mu.Unlock()
	}
}
