package core

// streaming.go wraps CSV input so imports never hold a whole file in memory.
//
//   - sizeLimitReader fails once more than the configured raw bytes were read
//   - skipBOM drops a leading UTF-8 byte order mark
//   - utf8Sanitizer replaces invalid byte sequences with '?'
//
// ImportReader stacks them in that order, innermost first.

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// DefaultMaxImportSize bounds a single CSV import.
const DefaultMaxImportSize int64 = 10 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrFileTooLarge is returned by ImportReader when the input exceeds its limit.
var ErrFileTooLarge = errors.New("file too large")

// ImportReader returns r with the BOM stripped, invalid UTF-8 replaced and
// reads capped at limit bytes. A limit <= 0 uses DefaultMaxImportSize.
func ImportReader(r io.Reader, limit int64) io.Reader {
	if limit <= 0 {
		limit = DefaultMaxImportSize
	}
	return newUTF8Sanitizer(skipBOM(&sizeLimitReader{r: r, limit: limit}))
}

// skipBOM returns a reader positioned after a leading UTF-8 BOM, if any.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// utf8Sanitizer rewrites invalid UTF-8 to '?' one chunk at a time. Chunks are
// cleaned in an internal buffer and handed out in whatever size the caller
// asks for. A multi-byte rune split across underlying reads is carried over to
// the next chunk.
type utf8Sanitizer struct {
	r       io.Reader
	buf     []byte
	out     []byte // cleaned bytes not yet handed out
	pending []byte // incomplete rune from the end of the last chunk
	err     error
}

const sanitizeChunk = 4096

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{
		r:       r,
		buf:     make([]byte, sanitizeChunk+utf8.UTFMax),
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		s.fill()
	}
	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

func (s *utf8Sanitizer) fill() {
	carry := copy(s.buf, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(s.buf[carry : carry+sanitizeChunk])
	data := s.buf[:carry+n]
	s.out = data[:s.sanitize(data, err != nil)]
	s.err = err
}

// sanitize rewrites data in place and returns the number of bytes to hand out.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		if data[read] < utf8.RuneSelf {
			data[write] = data[read]
			write++
			read++
			continue
		}
		if !atEOF && !utf8.FullRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			break
		}
		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// sizeLimitReader fails with ErrFileTooLarge once more than limit bytes were read.
type sizeLimitReader struct {
	r     io.Reader
	limit int64
	read  int64
}

func (l *sizeLimitReader) Read(p []byte) (int, error) {
	if l.read > l.limit {
		return 0, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, l.limit)
	}
	// Allow one byte past the limit so an exact-size file still succeeds.
	if remaining := l.limit - l.read + 1; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.read > l.limit {
		return 0, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, l.limit)
	}
	return n, err
}
