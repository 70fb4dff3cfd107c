package internal

import (
	"time"

	"go.uber.org/zap"

	"github.com/frankli0324/go-fetch/internal/model"
	"github.com/frankli0324/go-fetch/internal/transport"
	"github.com/frankli0324/go-fetch/utils/netpool"
	"github.com/frankli0324/go-fetch/utils/task"
)

type txState int

const (
	txCreated txState = iota
	txValidated
	txConnecting
	txAwaiting
	txDone
)

// transaction drives one fetch from validation to completion. All
// transitions happen on the loop goroutine. The task owns the
// transaction; Close fires when the task finishes and asserts that no
// connection leaked.
type transaction struct {
	fetcher *Fetcher
	req     *model.Request
	resp    *model.Response
	task    *task.Task

	state txState
	conn  *netpool.Conn
}

// newTransaction validates what can be validated without touching any
// shared resource. It runs on the caller's goroutine; a rejected
// transaction is terminal before it ever reaches the loop.
func newTransaction(f *Fetcher, req *model.Request, resp *model.Response, t *task.Task) *transaction {
	x := &transaction{fetcher: f, req: req, resp: resp, task: t}
	proto := ""
	if req.URL != nil {
		proto = req.URL.Protocol()
	}
	if proto != "http" {
		Logger().Debug("fetch: unsupported protocol", zap.String("protocol", proto))
		x.finish(task.Errorf(task.InvalidArgument, "unsupported protocol: %s", proto))
		return x
	}
	x.state = txValidated
	return x
}

// finish is the single exit point: it makes the transaction terminal
// and hands the task its status. Any held connection must have been
// released by then.
func (x *transaction) finish(s task.Status) {
	x.state = txDone
	x.task.Return(s)
}

// makeRequest is the send step, scheduled exactly once per fetch.
func (x *transaction) makeRequest() {
	x.fetcher.Base.MustOnLoop()
	if x.state == txDone {
		// rejected at construction, nothing to send
		return
	}
	if x.conn != nil {
		panic("fetch: transaction already holds a connection")
	}

	if !x.req.Deadline.After(time.Now()) {
		Logger().Debug("fetch: deadline expired before send",
			zap.Time("deadline", x.req.Deadline))
		x.finish(task.NewStatus(task.DeadlineExceeded, "request exceeded deadline"))
		return
	}

	wreq := transport.NewRequest(x.req.Verb.Method(), x.req.URL.PathQuery(), x.req.Headers)
	if err := wreq.SetBody(x.req.Body); err != nil {
		Logger().Debug("fetch: rejected request body", zap.Error(err))
		x.finish(task.NewStatus(task.Internal, "could not set the request body"))
		return
	}

	x.state = txConnecting
	x.conn = x.fetcher.pool().Acquire(x.req.URL)
	if err := x.fetcher.send(x.conn, wreq, x.requestDone); err != nil {
		// the callback never fires for a failed submission
		c := x.conn
		x.conn = nil
		x.fetcher.pool().Release(c)
		Logger().Debug("fetch: submission rejected", zap.Error(err))
		x.finish(task.NewStatus(task.Internal, "request submission error"))
		return
	}
	x.state = txAwaiting
}

// requestDone runs on the loop goroutine, exactly once per submitted
// request. The connection goes back to the pool first, whatever the
// outcome.
func (x *transaction) requestDone(wresp *transport.Response) {
	x.fetcher.Base.MustOnLoop()
	c := x.conn
	x.conn = nil
	x.fetcher.pool().Release(c)

	if wresp == nil {
		// a lost connection and a malformed response land here alike
		Logger().Debug("fetch: no usable response")
		x.finish(task.NewStatus(task.Unknown, "connection error"))
		return
	}
	x.resp.StatusCode = wresp.StatusCode
	if wresp.StatusCode < 100 {
		Logger().Debug("fetch: refused status code",
			zap.Int("status", wresp.StatusCode))
		x.finish(task.NewStatus(task.FailedPrecondition, "connection refused"))
		return
	}
	x.resp.Headers = wresp.Header
	x.resp.Body = wresp.Body
	Logger().Debug("fetch: request done",
		zap.Int("status", wresp.StatusCode), zap.Int("body_bytes", len(wresp.Body)))
	x.finish(task.StatusOK)
}

// Close implements io.Closer for task ownership.
func (x *transaction) Close() error {
	if x.conn != nil {
		panic("fetch: transaction finished while holding a connection")
	}
	return nil
}
