// Package split divides byte sequences on an exact, possibly multi-byte,
// delimiter.
package split

import (
	"bytes"
	"errors"
	"iter"
)

// ErrEmptyDelimiter is returned by Check for a zero-length delimiter.
var ErrEmptyDelimiter = errors.New("delimiter must not be empty")

// Check validates a delimiter.
func Check(delim []byte) error {
	if len(delim) == 0 {
		return ErrEmptyDelimiter
	}
	return nil
}

// Split yields the segments of haystack separated by delim, in order.
//
// Each segment is paired with whether a full delimiter followed it. Only the
// last segment can be unterminated; it means "possibly a partial record".
// A haystack that ends exactly on a delimiter yields no trailing empty
// segment. An empty haystack or an empty delimiter yields nothing.
//
// The yielded slices alias haystack.
func Split(haystack, delim []byte) iter.Seq2[[]byte, bool] {
	return func(yield func([]byte, bool) bool) {
		if len(delim) == 0 {
			return
		}
		rest := haystack
		for len(rest) > 0 {
			i := bytes.Index(rest, delim)
			if i < 0 {
				yield(rest, false)
				return
			}
			if !yield(rest[:i:i], true) {
				return
			}
			rest = rest[i+len(delim):]
		}
	}
}

// Cut splits haystack like Split but separates the terminated segments from
// the unterminated remainder. rest is nil when haystack ends on a delimiter.
func Cut(haystack, delim []byte) (lines [][]byte, rest []byte) {
	for seg, terminated := range Split(haystack, delim) {
		if !terminated {
			rest = seg
			break
		}
		lines = append(lines, seg)
	}
	return lines, rest
}

// Join is the inverse of Split: it appends every segment to dst, followed by
// delim when the segment is terminated.
func Join(dst []byte, segs iter.Seq2[[]byte, bool], delim []byte) []byte {
	for seg, terminated := range segs {
		dst = append(dst, seg...)
		if terminated {
			dst = append(dst, delim...)
		}
	}
	return dst
}
