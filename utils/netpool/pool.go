// Package netpool keeps idle connections around per address so
// consecutive exchanges with the same host reuse them.
package netpool

import (
	"go.uber.org/zap"

	"github.com/frankli0324/go-fetch/utils/nettools"
	"github.com/frankli0324/go-fetch/utils/reactor"
)

// MaxIdlePerAddr bounds how many idle connections are kept for one
// address.
const MaxIdlePerAddr = 8

// Pool hands out connection handles keyed by "host:port" and keeps
// released ones for reuse. All methods are confined to the loop
// goroutine of the reactor the pool was built with; that confinement
// is the pool's only synchronization.
type Pool struct {
	base *reactor.Reactor
	dial DialFunc
	idle map[string][]*Conn
}

// New returns a pool bound to base. A nil dial means plain TCP.
func New(base *reactor.Reactor, dial DialFunc) *Pool {
	return &Pool{base: base, dial: dial, idle: map[string][]*Conn{}}
}

// Acquire returns a live idle handle for addr when one exists,
// otherwise a fresh unconnected one. It never blocks on the network.
func (p *Pool) Acquire(addr string) *Conn {
	p.base.MustOnLoop()
	for {
		ic := p.idle[addr]
		if len(ic) == 0 {
			return NewConn(addr, p.dial)
		}
		c := ic[len(ic)-1]
		p.idle[addr] = ic[:len(ic)-1]
		c.idle = false
		if p.reusable(c) {
			Logger().Debug("netpool: reusing idle connection",
				zap.String("addr", addr))
			return c
		}
		Logger().Debug("netpool: discarding idle connection",
			zap.String("addr", addr))
		c.Close()
	}
}

// reusable double-checks an idle handle before handing it out again.
func (p *Pool) reusable(c *Conn) bool {
	if c.Broken() || c.raw == nil {
		return false
	}
	if c.br.Buffered() > 0 {
		// stray bytes left over from the previous exchange
		return false
	}
	return nettools.Alive(c.raw)
}

// Release returns a handle to the pool. Broken and never-connected
// handles are discarded. When the per-address cap is hit the oldest
// idle handle is closed to make room. Releasing a handle twice is a
// programming error and panics.
func (p *Pool) Release(c *Conn) {
	p.base.MustOnLoop()
	if c.idle {
		panic("netpool: connection released twice")
	}
	if c.raw == nil {
		return
	}
	if c.Broken() {
		c.Close()
		return
	}
	c.idle = true
	ic := append(p.idle[c.addr], c)
	if len(ic) > MaxIdlePerAddr {
		Logger().Debug("netpool: idle cap reached, evicting",
			zap.String("addr", c.addr))
		ic[0].Close()
		ic = ic[1:]
	}
	p.idle[c.addr] = ic
}

// Close discards every idle connection. Handles currently out for an
// exchange are unaffected.
func (p *Pool) Close() {
	p.base.MustOnLoop()
	for _, ic := range p.idle {
		for _, c := range ic {
			c.Close()
		}
	}
	p.idle = map[string][]*Conn{}
}
