package netpool

import (
	"bufio"
	"io"
	"net"
	"sync/atomic"

	"go.uber.org/zap"
)

// DialFunc opens the transport connection for addr ("host:port").
type DialFunc func(addr string) (net.Conn, error)

func defaultDial(addr string) (net.Conn, error) {
	return net.Dial("tcp", addr)
}

// Conn is a handle to a pooled connection. Handles are cheap to
// create: the underlying connection is dialed at the first Connect,
// never at Acquire, so the loop goroutine is free of network waits.
//
// A handle belongs to one exchange at a time. Connect must succeed
// before Read or Write. I/O errors mark the handle broken; the pool
// closes broken handles instead of re-idling them.
type Conn struct {
	addr string
	dial DialFunc

	raw    net.Conn
	br     *bufio.Reader
	broken atomic.Bool
	idle   bool // maintained by the pool, on the loop goroutine
}

// NewConn returns an unconnected handle for addr. A nil dial means
// plain TCP.
func NewConn(addr string, dial DialFunc) *Conn {
	if dial == nil {
		dial = defaultDial
	}
	return &Conn{addr: addr, dial: dial}
}

// Connect dials the underlying connection unless the handle already
// has one.
func (c *Conn) Connect() error {
	if c.raw != nil {
		return nil
	}
	raw, err := c.dial(c.addr)
	if err != nil {
		c.broken.Store(true)
		return err
	}
	Logger().Debug("netpool: dialed", zap.String("addr", c.addr))
	c.raw = raw
	// the buffered reader goes through the handle so read errors mark
	// it broken
	c.br = bufio.NewReader(c)
	return nil
}

func (c *Conn) Read(p []byte) (int, error) {
	n, err := c.raw.Read(p)
	if err != nil {
		if err != io.EOF {
			Logger().Debug("netpool: read error",
				zap.String("addr", c.addr), zap.Error(err))
		}
		c.broken.Store(true)
	}
	return n, err
}

func (c *Conn) Write(p []byte) (int, error) {
	n, err := c.raw.Write(p)
	if err != nil {
		if err != io.EOF {
			Logger().Debug("netpool: write error",
				zap.String("addr", c.addr), zap.Error(err))
		}
		c.broken.Store(true)
	}
	return n, err
}

// Reader returns the buffered reader for the handle. The buffer
// persists across exchanges, so bytes a response left behind are
// still there when the handle is reused.
func (c *Conn) Reader() *bufio.Reader { return c.br }

// Addr returns the "host:port" the handle belongs to.
func (c *Conn) Addr() string { return c.addr }

// MarkBroken excludes the handle from reuse.
func (c *Conn) MarkBroken() { c.broken.Store(true) }

func (c *Conn) Broken() bool { return c.broken.Load() }

func (c *Conn) Close() error {
	c.broken.Store(true)
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}
