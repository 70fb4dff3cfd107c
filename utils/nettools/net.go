// Package nettools answers low-level questions about sockets that the
// net package does not expose.
package nettools

import (
	"net"
	"syscall"
)

// Alive reports whether an idle connection is still usable for a new
// exchange. An idle connection that polls readable carries either
// stray bytes or a close notification, so readability means not
// reusable. Connections that expose no file descriptor, and platforms
// without a probe, count as alive.
func Alive(c net.Conn) bool {
	rc := rawConn(c)
	if rc == nil {
		return true
	}
	alive := false
	if err := rc.Control(func(fd uintptr) {
		alive = probeIdle(fd)
	}); err != nil {
		return false
	}
	return alive
}

func rawConn(c net.Conn) syscall.RawConn {
	if t, ok := c.(interface{ NetConn() net.Conn }); ok {
		// wrapped connection, probe the transport underneath
		c = t.NetConn()
	}
	if sc, ok := c.(syscall.Conn); ok {
		if rc, err := sc.SyscallConn(); err == nil {
			return rc
		}
	}
	return nil
}
