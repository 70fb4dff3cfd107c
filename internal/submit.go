package internal

import (
	"go.uber.org/zap"

	"github.com/frankli0324/go-fetch/internal/transport"
	"github.com/frankli0324/go-fetch/utils/netpool"
	"github.com/frankli0324/go-fetch/utils/reactor"
)

// submitFunc hands one wire request to a connection. A nil return
// means the exchange is under way and done will be scheduled onto
// base exactly once, carrying the response, or nil when the exchange
// failed. A non-nil return means the request never left the fetcher
// and done will not be called.
type submitFunc func(base *reactor.Reactor, conn *netpool.Conn, req *transport.Request, done func(*transport.Response)) error

// submitRequest is the production submitFunc. The blocking I/O runs
// on a goroutine of its own, so the loop goroutine never waits on the
// network.
func submitRequest(base *reactor.Reactor, conn *netpool.Conn, req *transport.Request, done func(*transport.Response)) error {
	if err := req.Validate(); err != nil {
		return err
	}
	go func() {
		resp, err := exchange(conn, req)
		if err != nil {
			Logger().Debug("fetch: exchange failed",
				zap.String("addr", conn.Addr()), zap.Error(err))
			conn.MarkBroken()
			resp = nil
		}
		base.Schedule(func() { done(resp) })
	}()
	return nil
}

// exchange runs one request/response round trip on conn.
func exchange(conn *netpool.Conn, req *transport.Request) (*transport.Response, error) {
	if err := conn.Connect(); err != nil {
		return nil, err
	}
	if err := transport.Write(conn, req); err != nil {
		return nil, err
	}
	resp, err := transport.Read(conn.Reader())
	if err != nil {
		return nil, err
	}
	if resp.Close {
		conn.MarkBroken()
	}
	return resp, nil
}
