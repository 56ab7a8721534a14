package runtime

import "strings"

// stripExtended removes unescaped whitespace and #-comments outside
// character classes, the way extended (x) mode reads a pattern.
func stripExtended(p string) string {
	var sb strings.Builder
	sb.Grow(len(p))
	inClass := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch {
		case c == '\\' && i+1 < len(p):
			if isSpace(p[i+1]) {
				// "\ " keeps a literal blank; RE2 rejects escaped spaces.
				sb.WriteString(`\x{`)
				sb.WriteString(hexByte(p[i+1]))
				sb.WriteByte('}')
			} else {
				sb.WriteByte(c)
				sb.WriteByte(p[i+1])
			}
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
			sb.WriteByte(c)
		case c == '[':
			inClass = true
			sb.WriteByte(c)
			if i+1 < len(p) && p[i+1] == '^' {
				sb.WriteByte('^')
				i++
			}
			if i+1 < len(p) && p[i+1] == ']' {
				sb.WriteByte(']')
				i++
			}
		case c == '#':
			for i+1 < len(p) && p[i+1] != '\n' {
				i++
			}
		case isSpace(c):
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

const (
	uniDigit = `\p{Nd}`
	uniWord  = `\p{L}\p{M}\p{Nd}\p{Pc}`
	uniSpace = `\t\n\v\f\r\x{85}\p{Z}`
)

// widenClasses rewrites the Perl classes \d \w \s (and their negations
// outside brackets) to Unicode-aware equivalents. RE2 defines them as ASCII.
func widenClasses(p string) string {
	if !strings.Contains(p, `\`) {
		return p
	}
	var sb strings.Builder
	sb.Grow(len(p) + 16)
	inClass := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c != '\\' || i+1 >= len(p) {
			switch {
			case c == '[' && !inClass:
				inClass = true
				sb.WriteByte(c)
				if i+1 < len(p) && p[i+1] == '^' {
					sb.WriteByte('^')
					i++
				}
				if i+1 < len(p) && p[i+1] == ']' {
					sb.WriteByte(']')
					i++
				}
				continue
			case c == ']' && inClass:
				inClass = false
			}
			sb.WriteByte(c)
			continue
		}

		e := p[i+1]
		if e == 'Q' {
			// \Q...\E is copied untouched.
			end := strings.Index(p[i+2:], `\E`)
			if end < 0 {
				sb.WriteString(p[i:])
				return sb.String()
			}
			sb.WriteString(p[i : i+2+end+2])
			i += 2 + end + 1
			continue
		}

		var body string
		negated := false
		switch e {
		case 'd':
			body = uniDigit
		case 'D':
			body, negated = uniDigit, true
		case 'w':
			body = uniWord
		case 'W':
			body, negated = uniWord, true
		case 's':
			body = uniSpace
		case 'S':
			body, negated = uniSpace, true
		}
		switch {
		case body == "" || (negated && inClass):
			// Negated classes inside brackets keep their ASCII meaning.
			sb.WriteByte(c)
			sb.WriteByte(e)
		case inClass:
			sb.WriteString(body)
		case negated:
			sb.WriteString("[^" + body + "]")
		default:
			sb.WriteString("[" + body + "]")
		}
		i++
	}
	return sb.String()
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func hexByte(b byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0x0f]})
}
