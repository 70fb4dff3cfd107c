package internal

import (
	"net"
	"unicode/utf8"

	"golang.org/x/net/idna"

	"github.com/frankli0324/go-fetch/internal/model"
	"github.com/frankli0324/go-fetch/utils/netpool"
	"github.com/frankli0324/go-fetch/utils/reactor"
)

// ConnPool hands out connections for fetch transactions. Acquire must
// not block: handles dial lazily once the exchange starts. Both
// methods are confined to the loop goroutine.
type ConnPool interface {
	Acquire(u *model.URL) *netpool.Conn
	Release(c *netpool.Conn)
}

// NewConnPool returns the default pool: plaintext TCP connections
// keyed by host:port, idle ones kept around for reuse.
func NewConnPool(base *reactor.Reactor) ConnPool {
	return &hostPool{pool: netpool.New(base, nil)}
}

type hostPool struct {
	pool *netpool.Pool
}

func (p *hostPool) Acquire(u *model.URL) *netpool.Conn {
	return p.pool.Acquire(dialAddr(u))
}

func (p *hostPool) Release(c *netpool.Conn) {
	p.pool.Release(c)
}

// dialAddr maps a URL to the address its connections are keyed and
// dialed by. International hostnames get the same punycoding net/http
// applies; the scheme's default port fills in when the URL has none.
func dialAddr(u *model.URL) string {
	host := u.Host()
	if !isASCII(host) {
		if a, err := idna.Lookup.ToASCII(host); err == nil {
			host = a
		}
	}
	port := u.Port()
	if port == "" {
		port = "80"
	}
	return net.JoinHostPort(host, port)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
