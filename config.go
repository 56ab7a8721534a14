package usse

import (
	"log/slog"

	"github.com/kolkov/usse/internal/engine"
	"github.com/kolkov/usse/internal/runtime"
)

// Mode selects how input is divided before matching.
type Mode = engine.Mode

const (
	ModeLine       = engine.ModeLine       // one match per delimited line
	ModeContinuous = engine.ModeContinuous // every match over the whole input
)

// DecodePolicy decides whether a line that is not valid UTF-8 stops a run.
type DecodePolicy = engine.DecodePolicy

const (
	DecodeAuto    = engine.DecodeAuto    // terminal for in-place rewrites, advisory otherwise
	DecodeStrict  = engine.DecodeStrict  // always terminal
	DecodeLenient = engine.DecodeLenient // always advisory
)

// Syntax selects the template language.
type Syntax uint8

const (
	// SyntaxPercent is the %-template language: %1, %<name>, %<12>, %%text,
	// and the escapes \t \n \r \v \\ \u{H}.
	SyntaxPercent Syntax = iota
	// SyntaxGo is Go text/template, executed with the captures as data.
	SyntaxGo
)

func (s Syntax) String() string {
	if s == SyntaxGo {
		return "go"
	}
	return "percent"
}

// Config holds configuration options for a transform.
type Config struct {
	// Pattern flags.
	IgnoreCase bool // case-insensitive matching
	MultiLine  bool // ^ and $ match at line boundaries
	DotAll     bool // . matches \n
	SwapGreed  bool // x* is lazy and x*? greedy
	Extended   bool // whitespace and # comments in the pattern are ignored
	ASCII      bool // \d \w \s are ASCII-only instead of Unicode
	Literal    bool // the pattern is literal text

	// Longest enables leftmost-longest (POSIX) match selection.
	// When false, uses leftmost-first matching (faster, Perl-like).
	Longest bool

	// Mode selects per-line or whole-input matching (default: ModeLine).
	Mode Mode

	// Delimiter separates lines in ModeLine. Nil means "\n"; an empty
	// non-nil slice is rejected.
	Delimiter []byte

	// DelimiterPreset names a delimiter (unix, windows, mac, acorn, nl, rs)
	// or spells one in hex (hex:0d0a). It takes precedence over Delimiter.
	DelimiterPreset string

	// Nice copies text outside matches to the output unchanged.
	Nice bool

	// Syntax selects the template language (default: SyntaxPercent).
	Syntax Syntax

	// DecodePolicy decides how invalid UTF-8 is handled (default: DecodeAuto).
	DecodePolicy DecodePolicy

	// Logger receives debug and warning events. If nil, they are discarded.
	Logger *slog.Logger

	// BufferSize bounds each read in ModeLine. Zero uses 64 KiB.
	BufferSize int
}

// applyDefaults fills in default values for unset Config fields.
func (c *Config) applyDefaults() {
	if c.Delimiter == nil {
		c.Delimiter = []byte("\n")
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}

// delimiter resolves the effective line delimiter.
func (c *Config) delimiter() ([]byte, error) {
	if c.DelimiterPreset != "" {
		return runtime.Delimiter(c.DelimiterPreset)
	}
	return c.Delimiter, nil
}

func (c *Config) patternConfig() runtime.PatternConfig {
	return runtime.PatternConfig{
		IgnoreCase: c.IgnoreCase,
		MultiLine:  c.MultiLine,
		DotAll:     c.DotAll,
		SwapGreed:  c.SwapGreed,
		Extended:   c.Extended,
		ASCII:      c.ASCII,
		Literal:    c.Literal,
		Longest:    c.Longest,
	}
}

// OutputKind selects where a file-level run writes.
type OutputKind = runtime.SinkKind

const (
	Stdout  = runtime.Stdout  // standard output
	Stderr  = runtime.Stderr  // standard error
	File    = runtime.File    // a named file, created or truncated
	InPlace = runtime.InPlace // the input file itself
)

// Output describes the destination of Program.RunFile.
type Output = runtime.Target

// Stats summarizes a run: lines read, matches expanded, lines rejected by the
// literal prefilter, invalid lines skipped, and bytes written.
type Stats = engine.Stats
