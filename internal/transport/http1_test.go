package transport_test

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-fetch/internal/model"
	"github.com/frankli0324/go-fetch/internal/transport"
)

func TestRequestSerialize(t *testing.T) {
	reqShouldBe := map[string]struct {
		req  *transport.Request
		body []byte
		data string
	}{
		"BasicRequest": {
			req:  transport.NewRequest("GET", "/", model.Headers{{Name: "Host", Value: "www.example.com"}}),
			data: "GET / HTTP/1.1\r\nHost: www.example.com\r\n\r\n",
		},
		"QueryNonStandard": {
			req:  transport.NewRequest("GET", "/test?1=33=1", model.Headers{{Name: "Host", Value: "www.example.com"}}),
			data: "GET /test?1=33=1 HTTP/1.1\r\nHost: www.example.com\r\n\r\n",
		},
		"HeaderNotCanonicalized": {
			req: transport.NewRequest("GET", "/", model.Headers{
				{Name: "Host", Value: "www.example.com"}, {Name: "x-123-vv", Value: "1"},
			}),
			data: "GET / HTTP/1.1\r\nHost: www.example.com\r\nx-123-vv: 1\r\n\r\n",
		},
		"DuplicatesKeepOrder": {
			req: transport.NewRequest("GET", "/", model.Headers{
				{Name: "X-Dup", Value: "a"}, {Name: "x-dup", Value: "b"},
			}),
			data: "GET / HTTP/1.1\r\nX-Dup: a\r\nx-dup: b\r\n\r\n",
		},
		"BodyAppendsContentLength": {
			req:  transport.NewRequest("POST", "/upload", model.Headers{{Name: "Host", Value: "h"}}),
			body: []byte("hello"),
			data: "POST /upload HTTP/1.1\r\nHost: h\r\nContent-Length: 5\r\n\r\nhello",
		},
		"DeclaredContentLengthKept": {
			req: transport.NewRequest("PUT", "/x", model.Headers{
				{Name: "content-length", Value: "2"}, {Name: "Host", Value: "h"},
			}),
			body: []byte("ab"),
			data: "PUT /x HTTP/1.1\r\ncontent-length: 2\r\nHost: h\r\n\r\nab",
		},
	}
	for name, cas := range reqShouldBe {
		tCase := cas
		t.Run(name, func(t *testing.T) {
			if tCase.body != nil {
				require.NoError(t, tCase.req.SetBody(tCase.body))
			}
			var buf bytes.Buffer
			require.NoError(t, transport.Write(&buf, tCase.req))
			assert.Equal(t, tCase.data, buf.String())
		})
	}
}

func TestSetBody(t *testing.T) {
	t.Run("MismatchRefused", func(t *testing.T) {
		r := transport.NewRequest("POST", "/", model.Headers{{Name: "Content-Length", Value: "5"}})
		assert.Error(t, r.SetBody([]byte("ab")))
	})
	t.Run("UnparsableDeclared", func(t *testing.T) {
		r := transport.NewRequest("POST", "/", model.Headers{{Name: "Content-Length", Value: "five"}})
		assert.Error(t, r.SetBody([]byte("hello")))
	})
	t.Run("EmptyBodyNoHeader", func(t *testing.T) {
		r := transport.NewRequest("GET", "/", nil)
		require.NoError(t, r.SetBody(nil))
		assert.False(t, r.Header.Has("Content-Length"))
	})
	t.Run("DeclaredZeroMatchesEmpty", func(t *testing.T) {
		r := transport.NewRequest("POST", "/", model.Headers{{Name: "Content-Length", Value: "0"}})
		assert.NoError(t, r.SetBody(nil))
	})
}

func TestValidate(t *testing.T) {
	good := transport.NewRequest("GET", "/a?b=c", model.Headers{
		{Name: "Host", Value: "example.com"}, {Name: "X-Token", Value: "v1"},
	})
	assert.NoError(t, good.Validate())

	bad := map[string]*transport.Request{
		"EmptyMethod":      transport.NewRequest("", "/", nil),
		"MethodNotToken":   transport.NewRequest("GE T", "/", nil),
		"EmptyTarget":      transport.NewRequest("GET", "", nil),
		"TargetWithSpace":  transport.NewRequest("GET", "/a b", nil),
		"TargetWithCRLF":   transport.NewRequest("GET", "/a\r\nX: 1", nil),
		"BadHeaderName":    transport.NewRequest("GET", "/", model.Headers{{Name: "X Y", Value: "v"}}),
		"HeaderNameCRLF":   transport.NewRequest("GET", "/", model.Headers{{Name: "X\r\nY", Value: "v"}}),
		"HeaderValueCRLF":  transport.NewRequest("GET", "/", model.Headers{{Name: "X", Value: "a\r\nInjected: 1"}}),
		"HeaderValueCtl":   transport.NewRequest("GET", "/", model.Headers{{Name: "X", Value: "a\x00b"}}),
		"EmptyHeaderName":  transport.NewRequest("GET", "/", model.Headers{{Name: "", Value: "v"}}),
	}
	for name, req := range bad {
		req := req
		t.Run(name, func(t *testing.T) {
			assert.Error(t, req.Validate())
		})
	}
}

func read(t *testing.T, wire string) (*transport.Response, *bufio.Reader, error) {
	t.Helper()
	br := bufio.NewReader(strings.NewReader(wire))
	resp, err := transport.Read(br)
	return resp, br, err
}

func TestReadBasicResponse(t *testing.T) {
	resp, br, err := read(t,
		"HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\nhelloNEXT")
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1", resp.Proto)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "OK", resp.Reason)
	assert.Equal(t, "hello", string(resp.Body))
	assert.False(t, resp.Close)

	b, err := br.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('N'), b)
}

func TestReadHeadersKeepWireForm(t *testing.T) {
	resp, _, err := read(t,
		"HTTP/1.1 200 OK\r\nX-Dup: a\r\nx-dup:   b\t\r\nContent-Length: 0\r\n\r\n")
	require.NoError(t, err)
	assert.Equal(t, model.Headers{
		{Name: "X-Dup", Value: "a"},
		{Name: "x-dup", Value: "b"},
		{Name: "Content-Length", Value: "0"},
	}, resp.Header)
}

func TestReadNoBodyStatuses(t *testing.T) {
	for _, wire := range []string{
		"HTTP/1.1 204 No Content\r\n\r\nNEXT",
		"HTTP/1.1 304 Not Modified\r\n\r\nNEXT",
		"HTTP/1.1 100 Continue\r\n\r\nNEXT",
	} {
		resp, br, err := read(t, wire)
		require.NoError(t, err)
		assert.Empty(t, resp.Body)
		assert.False(t, resp.Close)

		b, err := br.ReadByte()
		require.NoError(t, err)
		assert.Equal(t, byte('N'), b)
	}
}

func TestReadChunkedBody(t *testing.T) {
	resp, br, err := read(t,
		"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n"+
			"3\r\nfoo\r\n4\r\nbarb\r\n0\r\nX-Trailer: 1\r\n\r\nNEXT")
	require.NoError(t, err)
	assert.Equal(t, "foobarb", string(resp.Body))
	assert.False(t, resp.Close)

	b, err := br.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('N'), b)
}

func TestReadSubHundredStatus(t *testing.T) {
	resp, _, err := read(t, "HTTP/1.1 99 Refused\r\nContent-Length: 0\r\n\r\n")
	require.NoError(t, err)
	assert.Equal(t, 99, resp.StatusCode)
	assert.Equal(t, "Refused", resp.Reason)
}

func TestReadConnectionClose(t *testing.T) {
	resp, _, err := read(t,
		"HTTP/1.1 200 OK\r\nContent-Length: 0\r\nConnection: keep-alive, close\r\n\r\n")
	require.NoError(t, err)
	assert.True(t, resp.Close)
}

func TestReadHTTP10Closes(t *testing.T) {
	resp, _, err := read(t, "HTTP/1.0 200 OK\r\nContent-Length: 2\r\n\r\nok")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))
	assert.True(t, resp.Close)
}

func TestReadBodyToEOF(t *testing.T) {
	resp, _, err := read(t, "HTTP/1.1 200 OK\r\n\r\neverything until shutdown")
	require.NoError(t, err)
	assert.Equal(t, "everything until shutdown", string(resp.Body))
	assert.True(t, resp.Close)
}

func TestReadContentLengthConflicts(t *testing.T) {
	_, _, err := read(t,
		"HTTP/1.1 200 OK\r\nContent-Length: 5\r\nContent-Length: 6\r\n\r\nhello")
	assert.Error(t, err)

	resp, _, err := read(t,
		"HTTP/1.1 200 OK\r\nContent-Length: 5\r\nContent-Length: 5\r\n\r\nhello")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(resp.Body))
}

func TestReadMalformed(t *testing.T) {
	cases := map[string]string{
		"NoSpaceInStatusLine": "HTTP/1.1\r\n\r\n",
		"NotHTTP":             "ICY 200 OK\r\n\r\n",
		"BadStatusCode":       "HTTP/1.1 20x OK\r\n\r\n",
		"FourDigitStatus":     "HTTP/1.1 2000 OK\r\n\r\n",
		"HeaderWithoutColon":  "HTTP/1.1 200 OK\r\nBadHeader\r\n\r\n",
		"HeaderNameWithSpace": "HTTP/1.1 200 OK\r\nBad Header: v\r\n\r\n",
		"NegativeLength":      "HTTP/1.1 200 OK\r\nContent-Length: -1\r\n\r\n",
	}
	for name, wire := range cases {
		wire := wire
		t.Run(name, func(t *testing.T) {
			_, _, err := read(t, wire)
			assert.Error(t, err)
		})
	}
}

func TestReadTruncated(t *testing.T) {
	for _, wire := range []string{
		"",
		"HTTP/1.1 200 OK\r\n",
		"HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhe",
	} {
		_, _, err := read(t, wire)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "wire %q", wire)
	}
}

func TestReadHugeContentLength(t *testing.T) {
	for _, wire := range []string{
		"HTTP/1.1 200 OK\r\nContent-Length: 9223372036854775806\r\n\r\n",
		"HTTP/1.1 200 OK\r\nContent-Length: 9223372036854775806\r\n\r\nhello",
	} {
		resp, _, err := read(t, wire)
		assert.Nil(t, resp, "wire %q", wire)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "wire %q", wire)
	}
}
