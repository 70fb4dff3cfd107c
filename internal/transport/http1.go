package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/frankli0324/go-fetch/internal/model"
	"github.com/frankli0324/go-fetch/internal/transport/chunked"
)

// Write emits r as an HTTP/1.1 message on w, e.g.:
//
//	GET /path?q=1 HTTP/1.1\r\n
//	Host: example.com\r\n
//	X-Custom: v\r\n
//	\r\n
//	<body>
func Write(w io.Writer, r *Request) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(r.Method)
	bw.WriteByte(' ')
	bw.WriteString(r.Target)
	bw.WriteString(" HTTP/1.1\r\n")
	for _, f := range r.Header {
		bw.WriteString(f.Name)
		bw.WriteString(": ")
		bw.WriteString(f.Value)
		bw.WriteString("\r\n")
	}
	bw.WriteString("\r\n")
	if len(r.Body) > 0 {
		bw.Write(r.Body)
	}
	return bw.Flush()
}

// Response is one fully materialized HTTP/1.1 response message. Close
// set means the connection must not be reused for another exchange.
type Response struct {
	Proto      string
	StatusCode int
	Reason     string
	Header     model.Headers
	Body       []byte
	Close      bool
}

// Read consumes exactly one response message from br. The body is
// fully materialized; unless Close is set, br is left at the first
// byte after the message.
func Read(br *bufio.Reader) (*Response, error) {
	line, err := readLine(br)
	if err != nil {
		return nil, err
	}
	resp := &Response{}
	rest := ""
	ok := false
	if resp.Proto, rest, ok = strings.Cut(line, " "); !ok {
		return nil, errors.New("transport: malformed status line")
	}
	if !strings.HasPrefix(resp.Proto, "HTTP/") {
		return nil, fmt.Errorf("transport: malformed protocol version %q", resp.Proto)
	}
	code, reason, _ := strings.Cut(rest, " ")
	if !validStatusCode(code) {
		return nil, fmt.Errorf("transport: malformed status code %q", code)
	}
	resp.StatusCode, _ = strconv.Atoi(code)
	resp.Reason = reason

	if err := readHeader(br, resp); err != nil {
		return nil, err
	}
	if err := readBody(br, resp); err != nil {
		return nil, err
	}
	if resp.Proto != "HTTP/1.1" {
		resp.Close = true
	}
	if httpguts.HeaderValuesContainsToken(resp.Header.Values("Connection"), "close") {
		resp.Close = true
	}
	return resp, nil
}

// validStatusCode accepts one to three digits. Responses with sub-100
// codes are still delivered; classifying them is the caller's call.
func validStatusCode(s string) bool {
	if len(s) == 0 || len(s) > 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// readHeader parses header lines up to the blank line, keeping field
// order, casing and duplicates exactly as received.
func readHeader(br *bufio.Reader, resp *Response) error {
	for {
		line, err := readLine(br)
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || name == "" || strings.ContainsAny(name, " \t") {
			return fmt.Errorf("transport: malformed header line %q", line)
		}
		resp.Header = append(resp.Header, model.Field{
			Name:  name,
			Value: strings.Trim(value, " \t"),
		})
	}
}

func readBody(br *bufio.Reader, resp *Response) error {
	if noBody(resp.StatusCode) {
		return nil
	}
	if strings.EqualFold(resp.Header.Get("Transfer-Encoding"), "chunked") {
		body, err := io.ReadAll(chunked.NewReader(br))
		if err != nil {
			return err
		}
		resp.Body = body
		return nil
	}
	cl, hasCL, err := contentLength(resp.Header)
	if err != nil {
		return err
	}
	if hasCL {
		// allocation tracks the bytes that arrive, never the
		// peer-declared length
		body, err := io.ReadAll(io.LimitReader(br, cl))
		if err != nil {
			return err
		}
		if int64(len(body)) != cl {
			return io.ErrUnexpectedEOF
		}
		resp.Body = body
		return nil
	}
	// no framing left: the body runs until the peer shuts down
	body, err := io.ReadAll(br)
	if err != nil {
		return err
	}
	resp.Body = body
	resp.Close = true
	return nil
}

// noBody reports status codes that never carry a message body.
func noBody(code int) bool {
	return (code >= 100 && code <= 199) || code == 204 || code == 304
}

// contentLength extracts the Content-Length and rejects conflicting
// duplicates, per RFC 7230 section 3.3.2.
func contentLength(h model.Headers) (int64, bool, error) {
	vv := h.Values("Content-Length")
	if len(vv) == 0 {
		return 0, false, nil
	}
	for _, v := range vv[1:] {
		if v != vv[0] {
			return 0, false, fmt.Errorf("transport: conflicting Content-Length headers %q and %q", vv[0], v)
		}
	}
	n, err := strconv.ParseUint(vv[0], 10, 63)
	if err != nil {
		return 0, false, fmt.Errorf("transport: bad Content-Length %q", vv[0])
	}
	return int64(n), true, nil
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"), nil
}
