// Package model defines the value types a fetch moves around: the
// request, the response, and their pieces.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Request describes one HTTP fetch. A zero Deadline means the fetcher
// applies its default timeout when the request is handed over.
type Request struct {
	Verb     Verb
	URL      *URL
	Headers  Headers
	Body     []byte
	Deadline time.Time
}

// Clone returns a deep copy: headers, body and URL do not alias r.
func (r *Request) Clone() *Request {
	c := *r
	c.Headers = r.Headers.Clone()
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	if r.URL != nil {
		u := *r.URL
		c.URL = &u
	}
	return &c
}

func (r *Request) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "verb: %s\nurl: %s\n", r.Verb, r.URL)
	if !r.Deadline.IsZero() {
		fmt.Fprintf(&b, "deadline: %s\n", r.Deadline.Format(time.RFC3339Nano))
	}
	writeHeaders(&b, r.Headers)
	writeBody(&b, r.Body)
	return b.String()
}

// Response holds a fully materialized HTTP response. A zero
// StatusCode means no response was recorded. The fields are only
// meaningful once the task the fetch was started with finished OK;
// an OK task still says nothing about the HTTP status itself.
type Response struct {
	StatusCode int
	Headers    Headers
	Body       []byte
}

func (r *Response) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "status_code: %d\n", r.StatusCode)
	writeHeaders(&b, r.Headers)
	writeBody(&b, r.Body)
	return b.String()
}

func writeHeaders(b *strings.Builder, h Headers) {
	b.WriteString("headers {\n")
	for _, f := range h {
		fmt.Fprintf(b, "  %s: %s\n", f.Name, f.Value)
	}
	b.WriteString("}\n")
}

func writeBody(b *strings.Builder, body []byte) {
	fmt.Fprintf(b, "body: <<EOF\n%s\nEOF\n", body)
}
