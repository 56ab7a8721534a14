package format

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// compiler accumulates instructions in source order.
type compiler struct {
	insts []Instruction
}

// groups is the first pass: it finds group references and %% escapes and
// hands the text between them to literals.
func (c *compiler) groups(src string) {
	start := 0 // start of pending literal text
	i := 0
	for i < len(src) {
		if src[i] != '%' || i+1 >= len(src) {
			i++
			continue
		}
		next := src[i+1]
		switch {
		case next == '%':
			c.literals(src[start:i])
			rest := src[i+2:]
			n := strings.IndexByte(rest, '%')
			if n < 0 {
				n = len(rest)
			}
			text := rest[:n]
			if text == "" {
				// A bare %% stands for one percent sign.
				text = "%"
			}
			c.emit(Instruction{Op: OpEscaped, Text: text})
			i += 2 + n
			start = i

		case next == '<':
			in, n, ok := bracketed(src[i+2:])
			if !ok {
				i++
				continue
			}
			c.literals(src[start:i])
			c.emit(in)
			i += 2 + n
			start = i

		case isDigit(next):
			c.literals(src[start:i])
			c.emit(Instruction{Op: OpGroup, Index: int(next - '0')})
			i += 2
			start = i

		default:
			i++
		}
	}
	c.literals(src[start:])
}

// bracketed parses the body of %<...> after the '<'. It returns the
// instruction and the number of bytes consumed including the closing '>'.
func bracketed(s string) (Instruction, int, bool) {
	end := strings.IndexByte(s, '>')
	if end < 0 {
		return Instruction{}, 0, false
	}
	body := s[:end]
	switch {
	case len(body) >= 2 && allDigits(body):
		n, err := strconv.Atoi(body)
		if err != nil {
			return Instruction{}, 0, false
		}
		return Instruction{Op: OpGroup, Index: n}, end + 1, true
	case isName(body):
		return Instruction{Op: OpNamed, Text: body}, end + 1, true
	}
	return Instruction{}, 0, false
}

// literals is the second pass over plain text: it extracts backslash escapes.
func (c *compiler) literals(s string) {
	start := 0
	i := 0
	for i < len(s) {
		if s[i] != '\\' || i+1 >= len(s) {
			i++
			continue
		}
		if ch, ok := simpleEscape(s[i+1]); ok {
			c.copy(s[start:i])
			c.emit(Instruction{Op: OpChar, Char: ch})
			i += 2
			start = i
			continue
		}
		if r, n, ok := unicodeEscape(s[i+1:]); ok {
			c.copy(s[start:i])
			if utf8.ValidRune(r) {
				c.emit(Instruction{Op: OpChar, Char: r})
			}
			i += 1 + n
			start = i
			continue
		}
		i++
	}
	c.copy(s[start:])
}

func (c *compiler) copy(s string) {
	if s != "" {
		c.emit(Instruction{Op: OpCopy, Text: s})
	}
}

func (c *compiler) emit(in Instruction) {
	c.insts = append(c.insts, in)
}

func simpleEscape(b byte) (rune, bool) {
	switch b {
	case 't':
		return '\t', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 'v':
		return '\v', true
	case '\\':
		return '\\', true
	}
	return 0, false
}

// unicodeEscape parses u{H}, x{H} or U{H} at the start of s. The returned
// rune may be outside the valid scalar range; n is the bytes consumed.
func unicodeEscape(s string) (r rune, n int, ok bool) {
	if len(s) < 4 || (s[0] != 'u' && s[0] != 'x' && s[0] != 'U') || s[1] != '{' {
		return 0, 0, false
	}
	end := strings.IndexByte(s[2:], '}')
	if end < 1 || end > 8 {
		return 0, 0, false
	}
	hex := s[2 : 2+end]
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return rune(v), 2 + end + 1, true
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// isName reports whether s is a lowercase letter followed by one or more
// ASCII letters or digits.
func isName(s string) bool {
	if len(s) < 2 || s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		b := s[i]
		if !isDigit(b) && !('a' <= b && b <= 'z') && !('A' <= b && b <= 'Z') {
			return false
		}
	}
	return true
}
