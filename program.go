package usse

import (
	"fmt"
	"io"
	"strings"

	"github.com/kolkov/usse/internal/engine"
	"github.com/kolkov/usse/internal/format"
	"github.com/kolkov/usse/internal/runtime"
)

// Program is a compiled pattern and template ready for execution.
// It is safe for concurrent use; each run has its own reader and output.
type Program struct {
	re       *runtime.Regex
	format   *format.Program // nil for SyntaxGo
	engine   *engine.Engine
	config   Config
	pattern  string
	template string
}

// Run transforms input and returns the output as a string.
func (p *Program) Run(input io.Reader) (string, error) {
	var sb strings.Builder
	if _, err := p.Exec(input, &sb); err != nil {
		return sb.String(), err
	}
	return sb.String(), nil
}

// Exec transforms input and writes the result to output. Output is
// buffered and flushed before Exec returns, also when it fails part way.
func (p *Program) Exec(input io.Reader, output io.Writer) (Stats, error) {
	in := runtime.NewInput(input, "")
	stats, err := p.engine.Run(in, Output{Kind: Stdout, Writer: output})
	return stats, convertError(err)
}

// RunFile transforms the file at path, or standard input when path is ""
// or "-", and writes to out. When out is the input file itself, the file is
// replaced only after the whole input has been read and transformed.
func (p *Program) RunFile(path string, out Output) (Stats, error) {
	in, err := runtime.OpenInput(path)
	if err != nil {
		return Stats{}, convertError(err)
	}
	stats, err := p.engine.Run(in, out)
	return stats, convertError(err)
}

// Pattern returns the pattern as given to Compile.
func (p *Program) Pattern() string {
	return p.pattern
}

// Expr returns the regular expression actually compiled, after the flags
// were applied.
func (p *Program) Expr() string {
	return p.re.Expr()
}

// Template returns the template source.
func (p *Program) Template() string {
	return p.template
}

// NumSubexp returns the number of capture groups in the pattern.
func (p *Program) NumSubexp() int {
	return p.re.NumSubexp()
}

// Disassemble returns a human-readable listing of the compiled template
// instructions, one per line. It is empty for SyntaxGo templates.
func (p *Program) Disassemble() string {
	if p.format == nil {
		return ""
	}
	var sb strings.Builder
	for i, in := range p.format.Instructions() {
		fmt.Fprintf(&sb, "%04d %s\n", i, in)
	}
	return sb.String()
}

// UnknownRefs describes template references to groups the pattern does not
// have. Such references expand to nothing.
func (p *Program) UnknownRefs() []string {
	if p.format == nil {
		return nil
	}
	var out []string
	numbers, names := p.format.Refs()
	for _, n := range numbers {
		if n > p.re.NumSubexp() {
			out = append(out, fmt.Sprintf("group %d (pattern has %d)", n, p.re.NumSubexp()))
		}
	}
	for _, name := range names {
		if p.re.SubexpIndex(name) < 0 {
			out = append(out, fmt.Sprintf("group %q", name))
		}
	}
	return out
}
