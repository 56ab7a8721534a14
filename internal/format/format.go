// Package format compiles replacement templates into instruction lists and
// expands them against regex captures.
//
// Template syntax:
//
//	%N          numbered capture group N (one digit, 0-9)
//	%<NN>       numbered capture group (two or more digits)
//	%<name>     named capture group (lowercase letter + 1 or more alphanumerics)
//	%%text      text up to the next % is emitted verbatim
//	\t \n \r \v \\
//	\u{H} \x{H} \U{H}   Unicode scalar value, H is 1-8 hex digits
//
// Anything else is copied literally.
package format

import (
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Op identifies the kind of an Instruction.
type Op uint8

const (
	OpCopy    Op = iota // Copy Text
	OpGroup             // Numbered group Index
	OpNamed             // Named group Text
	OpEscaped           // Text from a %% escape
	OpChar              // Single character Char
)

var opNames = [...]string{
	OpCopy:    "Copy",
	OpGroup:   "Group",
	OpNamed:   "Named",
	OpEscaped: "Escaped",
	OpChar:    "Char",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "Op(" + strconv.Itoa(int(op)) + ")"
}

// Instruction is one step of a compiled template.
type Instruction struct {
	Op    Op
	Text  string // OpCopy, OpEscaped: literal text; OpNamed: group name
	Index int    // OpGroup
	Char  rune   // OpChar
}

func (in Instruction) String() string {
	switch in.Op {
	case OpGroup:
		return "Group(" + strconv.Itoa(in.Index) + ")"
	case OpChar:
		return "Char(" + strconv.QuoteRune(in.Char) + ")"
	default:
		return in.Op.String() + "(" + strconv.Quote(in.Text) + ")"
	}
}

// Groups gives access to the capture groups of one match.
type Groups interface {
	// Group returns the text of group i and whether it participated.
	Group(i int) (string, bool)
	// Named returns the text of the named group and whether it participated.
	Named(name string) (string, bool)
}

// Program is a compiled template. It is immutable and safe for concurrent use.
type Program struct {
	source string
	insts  []Instruction
}

// Compile parses a template. Compilation cannot fail: text that is not a
// recognised token is copied literally and invalid Unicode escapes are
// dropped.
func Compile(src string) *Program {
	var c compiler
	c.groups(src)
	return &Program{source: src, insts: c.insts}
}

// Source returns the template text.
func (p *Program) Source() string {
	return p.source
}

// Instructions returns a copy of the instruction list.
func (p *Program) Instructions() []Instruction {
	out := make([]Instruction, len(p.insts))
	copy(out, p.insts)
	return out
}

// Refs reports the numbered and named groups the template references,
// in order of first appearance.
func (p *Program) Refs() (numbers []int, names []string) {
	seenNum := make(map[int]bool)
	seenName := make(map[string]bool)
	for _, in := range p.insts {
		switch in.Op {
		case OpGroup:
			if !seenNum[in.Index] {
				seenNum[in.Index] = true
				numbers = append(numbers, in.Index)
			}
		case OpNamed:
			if !seenName[in.Text] {
				seenName[in.Text] = true
				names = append(names, in.Text)
			}
		}
	}
	return numbers, names
}

// Append appends the expansion of the template for g to dst.
func (p *Program) Append(dst []byte, g Groups) []byte {
	for _, in := range p.insts {
		switch in.Op {
		case OpCopy, OpEscaped:
			dst = append(dst, in.Text...)
		case OpChar:
			dst = utf8.AppendRune(dst, in.Char)
		case OpGroup:
			if s, ok := g.Group(in.Index); ok {
				dst = append(dst, s...)
			}
		case OpNamed:
			if s, ok := g.Named(in.Text); ok {
				dst = append(dst, s...)
			}
		}
	}
	return dst
}

// String returns the expansion of the template for g.
func (p *Program) String(g Groups) string {
	var sb strings.Builder
	p.write(&sb, g)
	return sb.String()
}

// Expand writes the expansion of the template for g to w, one instruction at
// a time. The bytes written equal Append's output.
func (p *Program) Expand(w io.Writer, g Groups) error {
	sw, ok := w.(io.StringWriter)
	if !ok {
		sw = stringWriter{w}
	}
	return p.write(sw, g)
}

func (p *Program) write(w io.StringWriter, g Groups) error {
	var rb [utf8.UTFMax]byte
	for _, in := range p.insts {
		var s string
		switch in.Op {
		case OpCopy, OpEscaped:
			s = in.Text
		case OpChar:
			n := utf8.EncodeRune(rb[:], in.Char)
			s = string(rb[:n])
		case OpGroup:
			s, _ = g.Group(in.Index)
		case OpNamed:
			s, _ = g.Named(in.Text)
		}
		if s == "" {
			continue
		}
		if _, err := w.WriteString(s); err != nil {
			return err
		}
	}
	return nil
}

type stringWriter struct {
	w io.Writer
}

func (s stringWriter) WriteString(str string) (int, error) {
	return s.w.Write([]byte(str))
}
