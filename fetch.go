// Package fetch is an asynchronous HTTP client. Requests are issued
// against a single-threaded reactor and complete through tasks, so a
// caller can keep many fetches in flight without a goroutine per
// request. Connections to each host are pooled and reused.
package fetch

import (
	"github.com/frankli0324/go-fetch/internal"
	"github.com/frankli0324/go-fetch/internal/model"
	"github.com/frankli0324/go-fetch/utils/reactor"
	"github.com/frankli0324/go-fetch/utils/task"
)

type Fetcher = internal.Fetcher
type ConnPool = internal.ConnPool

type Verb = model.Verb
type Field = model.Field
type Headers = model.Headers
type URL = model.URL
type Request = model.Request
type Response = model.Response

type Reactor = reactor.Reactor
type Task = task.Task
type Status = task.Status
type Code = task.Code

const (
	GET    = model.GET
	POST   = model.POST
	PUT    = model.PUT
	DELETE = model.DELETE
)

const (
	OK                 = task.OK
	Canceled           = task.Canceled
	Unknown            = task.Unknown
	InvalidArgument    = task.InvalidArgument
	DeadlineExceeded   = task.DeadlineExceeded
	FailedPrecondition = task.FailedPrecondition
	Internal           = task.Internal
)

// DefaultTimeout bounds requests whose deadline is left zero.
const DefaultTimeout = internal.DefaultTimeout

// NewReactor starts the event loop a Fetcher and its pool run on.
func NewReactor() *Reactor { return reactor.New() }

// NewTask returns a task ready to track one fetch.
func NewTask() *Task { return task.New() }

// NewConnPool builds the per-host connection pool used by a Fetcher.
// A Fetcher with a nil Pool creates its own, so this is only needed to
// share one pool across fetchers on the same reactor.
func NewConnPool(base *Reactor) ConnPool { return internal.NewConnPool(base) }

// ParseURL parses raw into the URL form requests carry.
func ParseURL(raw string) (*URL, error) { return model.ParseURL(raw) }
