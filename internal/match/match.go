// Package match turns regex matches over a text into an ordered sequence of
// unmatched spans and capture sets.
package match

import "iter"

// Regexp is the regex capability consumed by this package.
// *regexp.Regexp and the coregex-backed runtime.Regex both satisfy it.
type Regexp interface {
	FindStringSubmatchIndex(s string) []int
	FindAllStringSubmatchIndex(s string, n int) [][]int
	SubexpIndex(name string) int
	SubexpNames() []string
}

// Captures is the capture set of one match.
type Captures struct {
	text  string
	index []int
	re    Regexp
}

// Find returns the leftmost match of re in s.
func Find(re Regexp, s string) (Captures, bool) {
	idx := re.FindStringSubmatchIndex(s)
	if idx == nil {
		return Captures{}, false
	}
	return Captures{text: s, index: idx, re: re}, true
}

// Len returns the number of groups, including group 0.
func (c Captures) Len() int {
	return len(c.index) / 2
}

// Group returns the text of group i and whether it participated in the match.
// Groups the pattern does not have report false.
func (c Captures) Group(i int) (string, bool) {
	if i < 0 || 2*i+1 >= len(c.index) {
		return "", false
	}
	start, end := c.index[2*i], c.index[2*i+1]
	if start < 0 || end < 0 {
		return "", false
	}
	return c.text[start:end], true
}

// Named returns the text of the named group and whether it participated.
func (c Captures) Named(name string) (string, bool) {
	if c.re == nil {
		return "", false
	}
	i := c.re.SubexpIndex(name)
	if i < 0 {
		return "", false
	}
	return c.Group(i)
}

// Text returns the whole match.
func (c Captures) Text() string {
	s, _ := c.Group(0)
	return s
}

// Span returns the byte offsets of the whole match.
func (c Captures) Span() (start, end int) {
	if len(c.index) < 2 {
		return -1, -1
	}
	return c.index[0], c.index[1]
}

// Strings returns the text of every group; groups that did not participate
// are empty.
func (c Captures) Strings() []string {
	out := make([]string, c.Len())
	for i := range out {
		out[i], _ = c.Group(i)
	}
	return out
}

// NamedStrings returns the participating named groups.
func (c Captures) NamedStrings() map[string]string {
	out := make(map[string]string)
	if c.re == nil {
		return out
	}
	for i, name := range c.re.SubexpNames() {
		if name == "" {
			continue
		}
		if s, ok := c.Group(i); ok {
			out[name] = s
		}
	}
	return out
}

// Kind tells the two kinds of Segment apart.
type Kind uint8

const (
	CopyText      Kind = iota // Unmatched input, copied verbatim
	MatchedGroups             // One match
)

func (k Kind) String() string {
	if k == CopyText {
		return "CopyText"
	}
	return "MatchedGroups"
}

// Segment is one item produced by an Iterator.
type Segment struct {
	Kind     Kind
	Text     string   // CopyText only
	Captures Captures // MatchedGroups only
}

// Iterator walks the matches of a pattern over a text, left to right.
// With nice set it also yields the unmatched text around the matches, so the
// concatenation of every CopyText and every whole match equals the input.
//
// The pattern is not run until the first call to Next.
type Iterator struct {
	text string
	re   Regexp
	nice bool

	started bool
	matches [][]int
	next    int
	pos     int // end of the previous match
	pending *Segment
	done    bool
}

// New returns an Iterator over text.
func New(text string, re Regexp, nice bool) *Iterator {
	return &Iterator{text: text, re: re, nice: nice}
}

// Next returns the next segment, or false when the sequence is exhausted.
func (it *Iterator) Next() (Segment, bool) {
	if it.pending != nil {
		seg := *it.pending
		it.pending = nil
		return seg, true
	}
	if !it.started {
		it.started = true
		it.matches = it.re.FindAllStringSubmatchIndex(it.text, -1)
	}
	if it.next < len(it.matches) {
		idx := it.matches[it.next]
		it.matches[it.next] = nil
		it.next++

		seg := Segment{Kind: MatchedGroups, Captures: Captures{text: it.text, index: idx, re: it.re}}
		gap := it.pos
		it.pos = idx[1]
		if it.nice && idx[0] > gap {
			it.pending = &seg
			return Segment{Kind: CopyText, Text: it.text[gap:idx[0]]}, true
		}
		return seg, true
	}
	if !it.done {
		it.done = true
		if it.nice && it.pos < len(it.text) {
			return Segment{Kind: CopyText, Text: it.text[it.pos:]}, true
		}
	}
	return Segment{}, false
}

// All returns an iterator over the remaining segments.
func (it *Iterator) All() iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		for {
			seg, ok := it.Next()
			if !ok || !yield(seg) {
				return
			}
		}
	}
}
