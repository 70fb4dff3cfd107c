// Package task provides a completion handle for asynchronous
// operations. A Task is created by the caller of an async API, handed
// to the implementation, and finishes exactly once with a Status.
//
// Holds delay the finish: while at least one hold is outstanding the
// task stays unfinished even after its status was returned, so an
// implementation can keep the task observable-as-running across its
// own setup. Resources attached with OwnUntilDone are closed when the
// task finishes, in reverse attach order.
package task

import (
	"io"
	"sync"
)

type Task struct {
	mu       sync.Mutex
	returned bool
	finished bool
	status   Status
	holds    int
	owned    []io.Closer
	done     chan struct{}
}

func New() *Task {
	return &Task{done: make(chan struct{})}
}

// Hold delays the task finish until a matching Release. Holding an
// already finished task is a programming error.
func (t *Task) Hold() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished {
		panic("task: hold after finish")
	}
	t.holds++
}

// Release drops a hold. The task finishes once its status was
// returned and the last hold is gone.
func (t *Task) Release() {
	t.mu.Lock()
	if t.holds == 0 {
		t.mu.Unlock()
		panic("task: release without hold")
	}
	t.holds--
	t.finishLocked()
}

// Return records the terminal status. Only the first call takes
// effect; it reports whether this call set the status.
func (t *Task) Return(s Status) bool {
	t.mu.Lock()
	if t.returned {
		t.mu.Unlock()
		return false
	}
	t.returned = true
	t.status = s
	t.finishLocked()
	return true
}

// OwnUntilDone transfers c to the task; it is closed when the task
// finishes. If the task already finished, c is closed right away.
// Owned closers are closed in reverse order of attachment.
func (t *Task) OwnUntilDone(c io.Closer) {
	t.mu.Lock()
	if !t.finished {
		t.owned = append(t.owned, c)
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	c.Close()
}

// Done is closed once the task finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes and returns its status.
func (t *Task) Wait() Status {
	<-t.done
	return t.Status()
}

// Status returns the terminal status. It must only be called on a
// finished task; the zero Status reads as OK, so an early read would
// silently misreport failures.
func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.finished {
		panic("task: status read before finish")
	}
	return t.status
}

// finishLocked completes the task when the status was returned and no
// holds remain. Called with t.mu held; unlocks it.
func (t *Task) finishLocked() {
	if t.finished || !t.returned || t.holds > 0 {
		t.mu.Unlock()
		return
	}
	t.finished = true
	owned := t.owned
	t.owned = nil
	t.mu.Unlock()

	for i := len(owned) - 1; i >= 0; i-- {
		owned[i].Close()
	}
	close(t.done)
}
