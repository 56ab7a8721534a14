package runtime

import (
	"strings"
	"unicode/utf8"
)

// LiteralInfo holds extracted literal substrings from a regex pattern.
// These literals enable fast rejection using SIMD-optimized string functions
// before falling back to the full engine.
type LiteralInfo struct {
	Prefix   string   // Anchored prefix (^prefix) - use HasPrefix
	Suffix   string   // Anchored suffix (suffix$) - use HasSuffix
	Required []string // Must appear somewhere - use strings.Contains
}

// minRequired is the shortest literal worth a Contains call.
const minRequired = 3

type tokenKind uint8

const (
	tokLiteral tokenKind = iota // one literal character
	tokBreak                    // anything that is not a literal
	tokBegin                    // ^ at the start of the pattern
	tokEnd                      // $ at the end of the pattern
)

type litToken struct {
	kind tokenKind
	text string
}

// extractLiterals analyzes a regex pattern and extracts literal substrings
// that can be used for fast prefiltering. Returns nil if no useful literals
// found.
//
// This is a conservative extractor. It may miss some literals, but it must
// never reject a string that matches. Examples:
//   - "^error.*failed$" -> prefix="error", suffix="failed"
//   - "warning.*error" -> required=["warning", "error"]
//   - "\\d+.*test" -> required=["test"]
//   - "colou?r" -> required=["colo"]
//   - "foo|bar" -> nil
func extractLiterals(pattern string) *LiteralInfo {
	tokens, ok := tokenize(pattern)
	if !ok || len(tokens) == 0 {
		return nil
	}

	info := &LiteralInfo{}
	if tokens[0].kind == tokBegin {
		info.Prefix = run(tokens[1:])
	}
	if last := len(tokens) - 1; last > 0 && tokens[last].kind == tokEnd {
		i := last
		for i > 0 && tokens[i-1].kind == tokLiteral {
			i--
		}
		info.Suffix = run(tokens[i:last])
	}

	// Runs already checked as prefix or suffix are not required again.
	last := len(tokens) - 1
	for i := 0; i < len(tokens); {
		if tokens[i].kind != tokLiteral {
			i++
			continue
		}
		start := i
		lit := run(tokens[i:])
		for i < len(tokens) && tokens[i].kind == tokLiteral {
			i++
		}
		if start == 1 && info.Prefix != "" {
			continue
		}
		if i == last && info.Suffix != "" {
			continue
		}
		if len(lit) >= minRequired {
			info.Required = append(info.Required, lit)
		}
	}

	if info.Prefix == "" && info.Suffix == "" && len(info.Required) == 0 {
		return nil
	}
	return info
}

// run concatenates the leading literal tokens.
func run(tokens []litToken) string {
	var sb strings.Builder
	for _, t := range tokens {
		if t.kind != tokLiteral {
			break
		}
		sb.WriteString(t.text)
	}
	return sb.String()
}

// tokenize splits the top level of a pattern into literal characters and
// breaks. It reports false when the pattern has top-level alternation, where
// no literal is required.
func tokenize(p string) ([]litToken, bool) {
	var out []litToken
	brk := litToken{kind: tokBreak}

	// demote turns a literal that a quantifier made optional into a break.
	demote := func() {
		if n := len(out); n > 0 && out[n-1].kind == tokLiteral {
			out[n-1] = brk
		}
		out = append(out, brk)
	}

	for i := 0; i < len(p); {
		c := p[i]
		switch {
		case c == '|':
			return nil, false
		case c == '[':
			i = skipCharClass(p, i)
			out = append(out, brk)
		case c == '(':
			i = skipGroup(p, i)
			out = append(out, brk)
		case c == '^' && i == 0:
			out = append(out, litToken{kind: tokBegin})
			i++
		case c == '$' && i == len(p)-1:
			out = append(out, litToken{kind: tokEnd})
			i++
		case c == '*' || c == '?':
			demote()
			i++
		case c == '{':
			demote()
			if end := strings.IndexByte(p[i:], '}'); end >= 0 {
				i += end + 1
			} else {
				i++
			}
		case c == '+':
			// The character stays required but the run is not contiguous.
			out = append(out, brk)
			i++
		case isMetaChar(c):
			out = append(out, brk)
			i++
		case c == '\\':
			if i+1 < len(p) && isLiteralEscape(p[i+1]) {
				out = append(out, litToken{kind: tokLiteral, text: p[i+1 : i+2]})
				i += 2
				continue
			}
			i = skipEscape(p, i)
			out = append(out, brk)
		default:
			_, size := utf8.DecodeRuneInString(p[i:])
			out = append(out, litToken{kind: tokLiteral, text: p[i : i+size]})
			i += size
		}
	}
	return out, true
}

// skipEscape returns the index after the escape sequence starting at p[i].
func skipEscape(p string, i int) int {
	if i+1 >= len(p) {
		return len(p)
	}
	switch p[i+1] {
	case 'p', 'P', 'x':
		if i+2 < len(p) && p[i+2] == '{' {
			if end := strings.IndexByte(p[i+2:], '}'); end >= 0 {
				return i + 2 + end + 1
			}
			return len(p)
		}
		if p[i+1] == 'x' {
			return min(i+4, len(p))
		}
		return min(i+3, len(p))
	case 'Q':
		if end := strings.Index(p[i+2:], `\E`); end >= 0 {
			return i + 2 + end + 2
		}
		return len(p)
	}
	j := i + 2
	if p[i+1] >= '0' && p[i+1] <= '7' {
		for j < len(p) && j < i+4 && p[j] >= '0' && p[j] <= '7' {
			j++
		}
	}
	return j
}

// skipCharClass returns the index after the closing ] of a character class.
func skipCharClass(p string, start int) int {
	if start >= len(p) || p[start] != '[' {
		return start + 1
	}

	i := start + 1

	// Handle ^ and a leading literal ]
	if i < len(p) && p[i] == '^' {
		i++
	}
	if i < len(p) && p[i] == ']' {
		i++
	}

	for i < len(p) {
		if p[i] == '\\' && i+1 < len(p) {
			i += 2 // Skip escaped char
			continue
		}
		if p[i] == '[' && i+1 < len(p) && p[i+1] == ':' {
			// [:alpha:]
			if end := strings.Index(p[i:], ":]"); end >= 0 {
				i += end + 2
				continue
			}
		}
		if p[i] == ']' {
			return i + 1
		}
		i++
	}

	return len(p) // Unclosed - return end
}

// skipGroup returns the index after the closing ) of a group.
func skipGroup(p string, start int) int {
	if start >= len(p) || p[start] != '(' {
		return start + 1
	}

	depth := 1
	i := start + 1

	for i < len(p) && depth > 0 {
		if p[i] == '\\' && i+1 < len(p) {
			i += 2 // Skip escaped char
			continue
		}
		if p[i] == '[' {
			i = skipCharClass(p, i)
			continue
		}
		if p[i] == '(' {
			depth++
		} else if p[i] == ')' {
			depth--
		}
		i++
	}

	return i
}

// isMetaChar returns true if c is a regex metacharacter that cannot be a literal.
func isMetaChar(c byte) bool {
	switch c {
	case '.', '*', '+', '?', '{', '}', '[', ']', '(', ')', '|', '^', '$':
		return true
	}
	return false
}

// isLiteralEscape returns true if the character after backslash represents
// a literal character (not a special escape like \d, \s, \w).
func isLiteralEscape(c byte) bool {
	switch c {
	case '.', '*', '+', '?', '{', '}', '[', ']', '(', ')', '|', '^', '$', '\\', '/', '-', '#', '&', '~', ',', ':', ';', '<', '=', '>', '@', '!', '%', '"', '\'', '`', '_':
		return true
	}
	return false
}

// CanReject checks if the literal info can definitely reject the string
// without running the full regex. Returns true if the string cannot match.
// This is the hot path - must have zero allocations.
func (li *LiteralInfo) CanReject(s string) bool {
	if li.Prefix != "" && !strings.HasPrefix(s, li.Prefix) {
		return true
	}
	if li.Suffix != "" && !strings.HasSuffix(s, li.Suffix) {
		return true
	}
	for _, req := range li.Required {
		if !strings.Contains(s, req) {
			return true
		}
	}
	return false
}
