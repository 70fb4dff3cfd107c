package internal

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-fetch/internal/model"
	"github.com/frankli0324/go-fetch/internal/transport"
	"github.com/frankli0324/go-fetch/utils/netpool"
	"github.com/frankli0324/go-fetch/utils/reactor"
)

// pipeConn returns a pool handle whose dial yields the client end of
// an in-memory connection, plus the server end for the test to drive.
func pipeConn(t *testing.T) (*netpool.Conn, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	conn := netpool.NewConn("example.com:80", func(string) (net.Conn, error) {
		return client, nil
	})
	return conn, server
}

// serve reads one request head off the server end, then plays back the
// canned response. The consumed head is reported on the channel.
func serve(server net.Conn, response string) <-chan string {
	head := make(chan string, 1)
	go func() {
		br := bufio.NewReader(server)
		var b strings.Builder
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				head <- b.String()
				return
			}
			b.WriteString(line)
			if line == "\r\n" {
				break
			}
		}
		head <- b.String()
		if response != "" {
			server.Write([]byte(response))
		}
		server.Close()
	}()
	return head
}

func submitAndWait(t *testing.T, base *reactor.Reactor, conn *netpool.Conn, wreq *transport.Request) *transport.Response {
	t.Helper()
	got := make(chan *transport.Response, 1)
	require.NoError(t, submitRequest(base, conn, wreq, func(r *transport.Response) {
		base.MustOnLoop()
		got <- r
	}))
	return <-got
}

func TestSubmitRoundTrip(t *testing.T) {
	base := reactor.New()
	t.Cleanup(base.Stop)
	conn, server := pipeConn(t)
	head := serve(server, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok")

	wreq := transport.NewRequest("GET", "/", model.Headers{{Name: "Host", Value: "example.com"}})
	resp := submitAndWait(t, base, conn, wreq)

	require.NotNil(t, resp)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "ok", string(resp.Body))
	assert.False(t, conn.Broken())
	assert.Equal(t, "GET / HTTP/1.1\r\nHost: example.com\r\n\r\n", <-head)
}

func TestSubmitInvalidRequestFailsBeforeDialing(t *testing.T) {
	base := reactor.New()
	t.Cleanup(base.Stop)
	dialed := false
	conn := netpool.NewConn("example.com:80", func(string) (net.Conn, error) {
		dialed = true
		return nil, errors.New("unexpected dial")
	})

	wreq := transport.NewRequest("GET", "/", model.Headers{{Name: "X-Bad", Value: "a\r\nb"}})
	err := submitRequest(base, conn, wreq, func(*transport.Response) {
		t.Error("completion must not run for a rejected request")
	})

	assert.Error(t, err)
	assert.False(t, dialed)
	assert.False(t, conn.Broken())
}

func TestSubmitDialFailure(t *testing.T) {
	base := reactor.New()
	t.Cleanup(base.Stop)
	conn := netpool.NewConn("example.com:80", func(string) (net.Conn, error) {
		return nil, errors.New("connect: connection refused")
	})

	wreq := transport.NewRequest("GET", "/", model.Headers{{Name: "Host", Value: "example.com"}})
	resp := submitAndWait(t, base, conn, wreq)

	assert.Nil(t, resp)
	assert.True(t, conn.Broken())
}

func TestSubmitMalformedResponse(t *testing.T) {
	base := reactor.New()
	t.Cleanup(base.Stop)
	conn, server := pipeConn(t)
	serve(server, "not a status line\r\n\r\n")

	wreq := transport.NewRequest("GET", "/", model.Headers{{Name: "Host", Value: "example.com"}})
	resp := submitAndWait(t, base, conn, wreq)

	assert.Nil(t, resp)
	assert.True(t, conn.Broken())
}

func TestSubmitPeerClosesEarly(t *testing.T) {
	base := reactor.New()
	t.Cleanup(base.Stop)
	conn, server := pipeConn(t)
	serve(server, "")

	wreq := transport.NewRequest("GET", "/", model.Headers{{Name: "Host", Value: "example.com"}})
	resp := submitAndWait(t, base, conn, wreq)

	assert.Nil(t, resp)
	assert.True(t, conn.Broken())
}

func TestSubmitConnectionCloseMarksBroken(t *testing.T) {
	base := reactor.New()
	t.Cleanup(base.Stop)
	conn, server := pipeConn(t)
	serve(server, "HTTP/1.1 200 OK\r\nContent-Length: 0\r\nConnection: close\r\n\r\n")

	wreq := transport.NewRequest("GET", "/", model.Headers{{Name: "Host", Value: "example.com"}})
	resp := submitAndWait(t, base, conn, wreq)

	require.NotNil(t, resp)
	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, conn.Broken())
}
