// Package transport speaks HTTP/1.1 on raw byte streams. It turns a
// wire request into bytes and one response's bytes back into a fully
// materialized message, and stays agnostic of where the stream comes
// from.
package transport

import (
	"fmt"
	"strconv"

	"golang.org/x/net/http/httpguts"

	"github.com/frankli0324/go-fetch/internal/model"
)

// Request is a single HTTP/1.1 message, ready to be written to a
// connection.
type Request struct {
	Method string
	Target string
	Header model.Headers
	Body   []byte
}

// NewRequest assembles a wire request. The header list is copied, so
// the message stays stable when the caller keeps mutating theirs.
func NewRequest(method, target string, headers model.Headers) *Request {
	return &Request{Method: method, Target: target, Header: headers.Clone()}
}

// SetBody attaches body to the message. A Content-Length the caller
// already declared must match the body size, otherwise the body is
// refused. Without a declared one, a matching field is appended for
// non-empty bodies.
func (r *Request) SetBody(body []byte) error {
	if cl := r.Header.Get("Content-Length"); cl != "" {
		declared, err := strconv.ParseInt(cl, 10, 64)
		if err != nil {
			return fmt.Errorf("transport: bad Content-Length %q: %w", cl, err)
		}
		if declared != int64(len(body)) {
			return fmt.Errorf("transport: Content-Length %d does not match body of %d bytes",
				declared, len(body))
		}
	} else if len(body) > 0 {
		r.Header.Add("Content-Length", strconv.Itoa(len(body)))
	}
	r.Body = body
	return nil
}

// Validate checks the message against the method, target and header
// field grammar before it touches a connection.
func (r *Request) Validate() error {
	if !validMethod(r.Method) {
		return fmt.Errorf("transport: invalid method %q", r.Method)
	}
	if !validTarget(r.Target) {
		return fmt.Errorf("transport: invalid request target %q", r.Target)
	}
	for _, f := range r.Header {
		if !httpguts.ValidHeaderFieldName(f.Name) {
			return fmt.Errorf("transport: invalid header field name %q", f.Name)
		}
		if !httpguts.ValidHeaderFieldValue(f.Value) {
			return fmt.Errorf("transport: invalid value for header field %q", f.Name)
		}
	}
	return nil
}

func validMethod(m string) bool {
	if m == "" {
		return false
	}
	for _, r := range m {
		if !httpguts.IsTokenRune(r) {
			return false
		}
	}
	return true
}

func validTarget(t string) bool {
	if t == "" {
		return false
	}
	for i := 0; i < len(t); i++ {
		if t[i] <= ' ' || t[i] == 0x7f {
			return false
		}
	}
	return true
}
