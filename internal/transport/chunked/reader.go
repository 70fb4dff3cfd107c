// Package chunked decodes HTTP/1.1 chunked transfer encoding.
package chunked

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Reader decodes a chunked body. The terminal zero-length chunk and
// any trailer fields are consumed too, leaving the underlying reader
// at the first byte after the message so the connection can be
// reused.
type Reader struct {
	br   *bufio.Reader
	n    uint64 // bytes left in the current chunk
	done bool
	err  error
}

func NewReader(br *bufio.Reader) *Reader {
	return &Reader{br: br}
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	for r.n == 0 {
		if r.done {
			return 0, io.EOF
		}
		if err := r.nextChunk(); err != nil {
			r.err = err
			return 0, err
		}
	}
	if uint64(len(p)) > r.n {
		p = p[:r.n]
	}
	n, err := r.br.Read(p)
	r.n -= uint64(n)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		r.err = err
		return n, err
	}
	if r.n == 0 {
		if err := r.chunkBoundary(); err != nil {
			r.err = err
			return n, err
		}
	}
	return n, nil
}

// nextChunk reads a chunk-size line. At the terminal chunk it also
// consumes the trailer section.
func (r *Reader) nextChunk() error {
	line, err := readLine(r.br)
	if err != nil {
		return err
	}
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i] // chunk extensions are ignored
	}
	size, err := parseHexUint(line)
	if err != nil {
		return err
	}
	if size == 0 {
		r.done = true
		return r.readTrailer()
	}
	r.n = size
	return nil
}

// readTrailer consumes trailer fields up to the blank line that ends
// the message.
func (r *Reader) readTrailer() error {
	for {
		line, err := readLine(r.br)
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}
	}
}

// chunkBoundary consumes the CRLF that follows every chunk's data.
func (r *Reader) chunkBoundary() error {
	cr, err := r.br.ReadByte()
	if err != nil {
		return unexpectedEOF(err)
	}
	lf, err := r.br.ReadByte()
	if err != nil {
		return unexpectedEOF(err)
	}
	if cr != '\r' || lf != '\n' {
		return errors.New("chunked: malformed chunk boundary")
	}
	return nil
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return "", unexpectedEOF(err)
	}
	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"), nil
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// parseHexUint parses a chunk length of at most 16 hex digits.
func parseHexUint(s string) (uint64, error) {
	if s == "" {
		return 0, errors.New("chunked: empty chunk length")
	}
	if len(s) > 16 {
		return 0, errors.New("chunked: chunk length too large")
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case '0' <= b && b <= '9':
			b = b - '0'
		case 'a' <= b && b <= 'f':
			b = b - 'a' + 10
		case 'A' <= b && b <= 'F':
			b = b - 'A' + 10
		default:
			return 0, errors.New("chunked: invalid byte in chunk length")
		}
		n = n<<4 | uint64(b)
	}
	return n, nil
}
