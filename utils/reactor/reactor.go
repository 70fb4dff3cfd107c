// Package reactor runs scheduled functions sequentially on a single
// dedicated goroutine. State confined to that goroutine needs no other
// synchronization. Schedule never blocks, so any goroutine can hand
// work to the loop, including the loop itself.
package reactor

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

type Reactor struct {
	mu      sync.Mutex
	queue   []func()
	stopped bool

	wake chan struct{}
	done chan struct{}
	gid  atomic.Uint64
}

// New starts the loop goroutine and returns the running reactor.
func New() *Reactor {
	r := &Reactor{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	started := make(chan struct{})
	go r.loop(started)
	<-started
	return r
}

// Schedule queues fn to run on the loop goroutine and returns without
// waiting for it. Functions scheduled from the same goroutine run in
// order. After Stop, fn is dropped.
func (r *Reactor) Schedule(fn func()) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.queue = append(r.queue, fn)
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// OnLoop reports whether the caller is running on the loop goroutine.
func (r *Reactor) OnLoop() bool {
	return goid() == r.gid.Load()
}

// MustOnLoop panics when the caller is not on the loop goroutine.
func (r *Reactor) MustOnLoop() {
	if !r.OnLoop() {
		panic("reactor: not on loop goroutine")
	}
}

// Stop lets the loop drain the already queued functions, then stops
// it. Stop waits for the loop to exit unless called from the loop
// itself. Calling it more than once is fine.
func (r *Reactor) Stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
	if !r.OnLoop() {
		<-r.done
	}
}

func (r *Reactor) loop(started chan<- struct{}) {
	r.gid.Store(goid())
	close(started)
	defer close(r.done)
	for {
		r.mu.Lock()
		for len(r.queue) == 0 {
			if r.stopped {
				r.mu.Unlock()
				return
			}
			r.mu.Unlock()
			<-r.wake
			r.mu.Lock()
		}
		q := r.queue
		r.queue = nil
		r.mu.Unlock()
		for _, fn := range q {
			fn()
		}
	}
}

// goid returns the current goroutine id, parsed from the
// runtime.Stack header line.
func goid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	s, _, _ = strings.Cut(s, " ")
	id, _ := strconv.ParseUint(s, 10, 64)
	return id
}
