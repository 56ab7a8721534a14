// Package linereader produces delimiter-terminated lines from a byte stream
// one at a time, for delimiters of any length.
package linereader

import (
	"bufio"
	"io"
	"iter"
	"unicode/utf8"

	"github.com/kolkov/usse/internal/split"
)

// DefaultBufferSize is the read buffer size used by New.
const DefaultBufferSize = 64 * 1024

// Line is one record of the input.
type Line struct {
	Text       string // Decoded line content, without the delimiter
	Raw        []byte // Undecoded bytes; set only alongside a *DecodeError
	Terminated bool   // A full delimiter followed the content
	Number     int    // 1-based line number
}

type result struct {
	line Line
	err  error
}

// Reader splits an io.Reader into lines separated by an exact delimiter.
//
// The underlying reader is consumed through "read until byte" calls, one per
// delimiter byte. For multi-byte delimiters this can stop early or late; the
// accumulated bytes are therefore re-split exactly after every refill and
// only confirmed lines are released.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	src   *bufio.Reader
	delim []byte

	buf   []byte   // read but not yet resolved into lines
	queue []result // resolved lines and errors awaiting delivery
	head  int

	end    bool  // no more reads will be issued
	lineNo int   // number of the last resolved line
	offset int64 // stream offset of buf[0]
}

// New returns a Reader with the default buffer size.
// The delimiter must not be empty; see split.Check.
func New(r io.Reader, delim []byte) *Reader {
	return NewSize(r, delim, DefaultBufferSize)
}

// NewSize returns a Reader whose bounded read buffer has at least size bytes.
func NewSize(r io.Reader, delim []byte, size int) *Reader {
	d := make([]byte, len(delim))
	copy(d, delim)
	return &Reader{
		src:   bufio.NewReaderSize(r, size),
		delim: d,
		end:   len(d) == 0,
	}
}

// Delimiter returns the line delimiter.
func (r *Reader) Delimiter() []byte {
	return r.delim
}

// Next returns the next line.
//
// A line whose bytes are not valid UTF-8 is returned together with a
// *DecodeError; reading may continue after it. A read error from the
// underlying reader is returned once, after every line resolved before it,
// and ends the stream. Next returns io.EOF when no lines remain.
func (r *Reader) Next() (Line, error) {
	if r.head == len(r.queue) {
		r.fill()
	}
	if r.head == len(r.queue) {
		return Line{}, io.EOF
	}
	res := r.queue[r.head]
	r.queue[r.head] = result{}
	r.head++
	if r.head == len(r.queue) {
		r.queue = r.queue[:0]
		r.head = 0
	}
	return res.line, res.err
}

// All returns an iterator over the remaining lines and errors.
// Iteration stops at io.EOF, which is not yielded.
func (r *Reader) All() iter.Seq2[Line, error] {
	return func(yield func(Line, error) bool) {
		for {
			line, err := r.Next()
			if err == io.EOF {
				return
			}
			if !yield(line, err) {
				return
			}
		}
	}
}

// fill refills the queue. It keeps reading until at least one result is
// resolved or the input is exhausted; seeing one delimiter byte is not enough.
func (r *Reader) fill() {
	for r.head == len(r.queue) && !r.end {
		var readErr error
		for _, b := range r.delim {
			n, err := r.readUntil(b)
			if err == io.EOF {
				r.end = true
				break
			}
			if err != nil {
				readErr = err
				r.end = true
				break
			}
			if n == 0 {
				r.end = true
				break
			}
		}

		r.resolve()

		if readErr != nil {
			// Whatever is left is an incomplete record cut short by the failure.
			r.buf = r.buf[:0]
			r.push(Line{}, readErr)
			return
		}
		if r.end && len(r.buf) > 0 {
			r.emit(r.buf, false)
			r.buf = r.buf[:0]
		}
	}
}

// readUntil appends bytes up to and including b to buf, in bounded chunks.
func (r *Reader) readUntil(b byte) (int, error) {
	n := 0
	for {
		chunk, err := r.src.ReadSlice(b)
		r.buf = append(r.buf, chunk...)
		n += len(chunk)
		if err != bufio.ErrBufferFull {
			return n, err
		}
	}
}

// resolve moves every confirmed line out of buf and keeps the remainder.
func (r *Reader) resolve() {
	if len(r.buf) == 0 {
		return
	}
	lines, rest := split.Cut(r.buf, r.delim)
	if len(lines) == 0 {
		return
	}
	for _, line := range lines {
		r.emit(line, true)
	}
	r.buf = append(r.buf[:0], rest...)
}

// emit decodes one segment and queues it. seg may alias buf.
func (r *Reader) emit(seg []byte, terminated bool) {
	r.lineNo++
	line := Line{Terminated: terminated, Number: r.lineNo}
	start := r.offset
	r.offset += int64(len(seg))
	if terminated {
		r.offset += int64(len(r.delim))
	}

	if bad := InvalidAt(seg); bad >= 0 {
		line.Raw = append([]byte(nil), seg...)
		r.push(line, &DecodeError{Line: line.Number, Offset: start + int64(bad)})
		return
	}
	line.Text = string(seg)
	r.push(line, nil)
}

func (r *Reader) push(line Line, err error) {
	r.queue = append(r.queue, result{line: line, err: err})
}

// InvalidAt returns the index of the first byte that is not part of a valid
// UTF-8 sequence, or -1.
func InvalidAt(b []byte) int {
	if utf8.Valid(b) {
		return -1
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
