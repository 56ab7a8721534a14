// Package runtime provides the regex capability, the literal prefilter and
// the input/output plumbing used by the transform engine.
package runtime

import (
	"fmt"
	"regexp"
	"regexp/syntax"
	"strings"
	"unicode/utf8"

	"github.com/coregx/coregex"
)

// PatternConfig holds the matching flags applied to a pattern.
type PatternConfig struct {
	IgnoreCase bool // (?i)
	MultiLine  bool // (?m): ^ and $ match at line boundaries
	DotAll     bool // (?s): . matches \n
	SwapGreed  bool // (?U): x* is lazy, x*? is greedy
	Extended   bool // whitespace and # comments in the pattern are ignored
	ASCII      bool // \d \w \s keep their ASCII meaning
	Literal    bool // the pattern is a literal string, not a regex

	// Longest enables leftmost-longest (POSIX) match selection.
	// When false, uses leftmost-first matching (faster, Perl-like).
	Longest bool
}

// literalSafe reports whether the literal prefilter gives the same answers
// as the compiled expression under these flags.
func (c PatternConfig) literalSafe() bool {
	return !c.IgnoreCase && !c.MultiLine && !c.Extended
}

// Regex wraps coregex with capture-name lookup and literal prefiltering.
// A Regex is safe for concurrent use.
type Regex struct {
	pattern  string
	expr     string
	config   PatternConfig
	re       *coregex.Regexp
	std      *regexp.Regexp // Subjects with non-ASCII bytes
	names    []string
	index    map[string]int
	literals *LiteralInfo // Fast rejection for patterns with literal substrings
}

// Compile builds a Regex from pattern with the given flags.
func Compile(pattern string, config PatternConfig) (*Regex, error) {
	expr := Expression(pattern, config)

	// regexp/syntax gives positioned error messages and the capture names.
	parsed, err := syntax.Parse(expr, syntax.Perl)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	names := parsed.CapNames()

	re, err := coregex.Compile(expr)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	// coregex reports byte offsets inside multi-byte runes, so subjects that
	// are not pure ASCII go to the standard engine.
	std, err := regexp.Compile(expr)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	if config.Longest {
		re.Longest()
		std.Longest()
	}

	index := make(map[string]int)
	for i, name := range names {
		if name != "" {
			if _, dup := index[name]; !dup {
				index[name] = i
			}
		}
	}

	r := &Regex{
		pattern: pattern,
		expr:    expr,
		config:  config,
		re:      re,
		std:     std,
		names:   names,
		index:   index,
	}
	if body := exprBody(pattern, config); config.literalSafe() && !hasInlineFlags(body) {
		r.literals = extractLiterals(body)
	}
	return r, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string, config PatternConfig) *Regex {
	re, err := Compile(pattern, config)
	if err != nil {
		panic(err)
	}
	return re
}

// Expression returns the regex source that Compile hands to the engine for
// pattern under config.
func Expression(pattern string, config PatternConfig) string {
	expr := exprBody(pattern, config)
	var flags strings.Builder
	if config.IgnoreCase {
		flags.WriteByte('i')
	}
	if config.MultiLine {
		flags.WriteByte('m')
	}
	if config.DotAll {
		flags.WriteByte('s')
	}
	if config.SwapGreed {
		flags.WriteByte('U')
	}
	if flags.Len() == 0 {
		return expr
	}
	return "(?" + flags.String() + ")" + expr
}

// exprBody rewrites pattern according to config, without the flag group.
func exprBody(pattern string, config PatternConfig) string {
	if config.Literal {
		return regexp.QuoteMeta(pattern)
	}
	expr := pattern
	if config.Extended {
		expr = stripExtended(expr)
	}
	if !config.ASCII {
		expr = widenClasses(expr)
	}
	return expr
}

// hasInlineFlags reports whether p may switch flags mid-pattern, as in
// (?i) or (?s:...). Named groups do not count.
func hasInlineFlags(p string) bool {
	for i := strings.Index(p, "(?"); i >= 0; {
		rest := p[i+2:]
		if !strings.HasPrefix(rest, "P<") && !strings.HasPrefix(rest, "<") {
			return true
		}
		j := strings.Index(rest, "(?")
		if j < 0 {
			return false
		}
		i += 2 + j
	}
	return false
}

// Pattern returns the pattern as given to Compile.
func (r *Regex) Pattern() string {
	return r.pattern
}

// Expr returns the expression actually compiled.
func (r *Regex) Expr() string {
	return r.expr
}

// Config returns the flags the Regex was compiled with.
func (r *Regex) Config() PatternConfig {
	return r.config
}

// NumSubexp returns the number of capture groups, excluding group 0.
func (r *Regex) NumSubexp() int {
	return len(r.names) - 1
}

// SubexpNames returns the names of the capture groups; index 0 and unnamed
// groups are empty.
func (r *Regex) SubexpNames() []string {
	return r.names
}

// SubexpIndex returns the index of the first group with the given name,
// or -1.
func (r *Regex) SubexpIndex(name string) int {
	if i, ok := r.index[name]; ok {
		return i
	}
	return -1
}

// CanReject reports whether the prefilter proves s has no match.
func (r *Regex) CanReject(s string) bool {
	return r.literals != nil && r.literals.CanReject(s)
}

// MatchString reports whether s contains any match.
func (r *Regex) MatchString(s string) bool {
	if r.CanReject(s) {
		return false
	}
	if !isASCII(s) {
		return r.std.MatchString(s)
	}
	return r.re.MatchString(s)
}

// FindStringSubmatchIndex returns the index pairs of the leftmost match and
// its groups, or nil. Groups that did not participate hold -1.
func (r *Regex) FindStringSubmatchIndex(s string) []int {
	if r.CanReject(s) {
		return nil
	}
	if !isASCII(s) {
		return r.std.FindStringSubmatchIndex(s)
	}
	return r.re.FindStringSubmatchIndex(s)
}

// FindAllStringSubmatchIndex returns the index pairs of successive
// non-overlapping matches. If n >= 0 at most n matches are returned.
func (r *Regex) FindAllStringSubmatchIndex(s string, n int) [][]int {
	if r.CanReject(s) {
		return nil
	}
	if !isASCII(s) {
		return r.std.FindAllStringSubmatchIndex(s, n)
	}
	return r.re.FindAllStringSubmatchIndex(s, n)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// PatternError reports a pattern that does not compile.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}
