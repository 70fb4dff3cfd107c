// Package internal implements the asynchronous fetcher core: request
// normalization, the per-fetch transaction state machine, and the
// bridge between the loop goroutine and blocking network I/O.
package internal

import (
	"sync"
	"time"

	"github.com/frankli0324/go-fetch/internal/model"
	"github.com/frankli0324/go-fetch/internal/transport"
	"github.com/frankli0324/go-fetch/utils/netpool"
	"github.com/frankli0324/go-fetch/utils/reactor"
	"github.com/frankli0324/go-fetch/utils/task"
)

// DefaultTimeout caps requests that come in without a deadline.
const DefaultTimeout = 60 * time.Second

// Fetcher issues asynchronous HTTP requests over pooled plaintext
// connections. Base is required, the rest of the fields have usable
// zero values:
//
//	f := &internal.Fetcher{Base: base}
//
// One Fetcher is safe for Fetch calls from any goroutine.
type Fetcher struct {
	// Base is the reactor all fetch state transitions run on.
	Base *reactor.Reactor
	// Pool overrides where connections come from. Defaults to a
	// host:port keyed pool of plaintext TCP connections.
	Pool ConnPool
	// Timeout is the deadline horizon for requests that come without
	// one. Defaults to DefaultTimeout.
	Timeout time.Duration

	// submit bridges to the transport, swappable in tests.
	submit submitFunc

	poolOnce    sync.Once
	defaultPool ConnPool
}

// Fetch starts fetching req and returns without waiting for the
// exchange. resp and t must stay alive until t finishes; resp carries
// the outcome once t finished OK. req itself is copied, the caller
// may reuse it right away.
func (f *Fetcher) Fetch(req *model.Request, resp *model.Response, t *task.Task) {
	t.Hold()
	defer t.Release()

	x := newTransaction(f, normalize(req, f.timeout()), resp, t)
	t.OwnUntilDone(x)
	f.Base.Schedule(x.makeRequest)
}

func (f *Fetcher) timeout() time.Duration {
	if f.Timeout > 0 {
		return f.Timeout
	}
	return DefaultTimeout
}

func (f *Fetcher) pool() ConnPool {
	if f.Pool != nil {
		return f.Pool
	}
	f.poolOnce.Do(func() { f.defaultPool = NewConnPool(f.Base) })
	return f.defaultPool
}

func (f *Fetcher) send(conn *netpool.Conn, req *transport.Request, done func(*transport.Response)) error {
	if f.submit != nil {
		return f.submit(f.Base, conn, req, done)
	}
	return submitRequest(f.Base, conn, req, done)
}

// normalize returns a deep copy of req with the implied pieces filled
// in: a deadline, a root path, and a Host header naming the target.
func normalize(req *model.Request, timeout time.Duration) *model.Request {
	r := req.Clone()
	if r.Deadline.IsZero() {
		r.Deadline = time.Now().Add(timeout)
	}
	if r.URL != nil {
		if r.URL.Path() == "" {
			r.URL.SetPath("/")
		}
		if !r.Headers.Has("Host") {
			r.Headers.Add("Host", r.URL.Host())
		}
	}
	return r
}
