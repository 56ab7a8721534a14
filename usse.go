package usse

import (
	"errors"
	"io"

	"github.com/kolkov/usse/internal/engine"
	"github.com/kolkov/usse/internal/format"
	"github.com/kolkov/usse/internal/gotmpl"
	"github.com/kolkov/usse/internal/runtime"
	"github.com/kolkov/usse/internal/split"
)

// Version is the usse version string.
const Version = "0.1.0"

// Run transforms input and returns the output as a string.
// This is a convenience function for one-off execution.
// For repeated execution, use Compile followed by Program.Run.
//
// Parameters:
//   - pattern: the regular expression to match
//   - template: the output template for each match
//   - input: input data reader
//   - config: configuration (can be nil for defaults)
//
// Example:
//
//	output, err := usse.Run(`(\w),(\d)`, "%2-%1", strings.NewReader("a,1\nb,2\n"), nil)
//	// output: "1-a\n2-b\n"
func Run(pattern, template string, input io.Reader, config *Config) (string, error) {
	prog, err := Compile(pattern, template, config)
	if err != nil {
		return "", err
	}
	return prog.Run(input)
}

// Compile builds the pattern and the template into a Program.
// The returned Program can be run many times with different inputs.
// All configuration errors are reported here as *ConfigError.
//
// Example:
//
//	prog, err := usse.Compile(`(?P<key>\w+)=(?P<val>\w+)`, "%<val>=%<key>", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	stats, err := prog.Exec(os.Stdin, os.Stdout)
func Compile(pattern, template string, config *Config) (*Program, error) {
	var cfg Config
	if config != nil {
		cfg = *config
	}
	cfg.applyDefaults()

	re, err := runtime.Compile(pattern, cfg.patternConfig())
	if err != nil {
		var pe *runtime.PatternError
		if errors.As(err, &pe) {
			err = pe.Err
		}
		return nil, &ConfigError{Field: "pattern", Err: err}
	}

	prog := &Program{
		re:       re,
		pattern:  pattern,
		template: template,
		config:   cfg,
	}
	var exp engine.Expander
	switch cfg.Syntax {
	case SyntaxPercent:
		prog.format = format.Compile(template)
		exp = prog.format
	case SyntaxGo:
		t, err := gotmpl.Parse("output", template)
		if err != nil {
			return nil, &ConfigError{Field: "template", Err: err}
		}
		exp = t
	default:
		return nil, &ConfigError{Field: "syntax", Err: errors.New("unknown template syntax")}
	}

	delim, err := cfg.delimiter()
	if err != nil {
		return nil, &ConfigError{Field: "delimiter", Err: err}
	}
	if cfg.Mode != ModeContinuous {
		if err := split.Check(delim); err != nil {
			return nil, &ConfigError{Field: "delimiter", Err: err}
		}
	}

	prog.engine, err = engine.New(re, exp, engine.Config{
		Mode:         cfg.Mode,
		Delimiter:    delim,
		Nice:         cfg.Nice,
		DecodePolicy: cfg.DecodePolicy,
		Logger:       cfg.Logger,
		BufferSize:   cfg.BufferSize,
	})
	if err != nil {
		return nil, &ConfigError{Field: "mode", Err: err}
	}
	return prog, nil
}

// Exec transforms input and writes the result to output.
//
// This function is useful for integration with I/O pipelines
// where you need control over the output writer.
//
// Example:
//
//	_, err := usse.Exec(`(\d+)`, "<%1>", os.Stdin, os.Stdout, &usse.Config{Nice: true})
func Exec(pattern, template string, input io.Reader, output io.Writer, config *Config) (Stats, error) {
	prog, err := Compile(pattern, template, config)
	if err != nil {
		return Stats{}, err
	}
	return prog.Exec(input, output)
}

// MustCompile is like Compile but panics if the pattern or template cannot
// be compiled. It simplifies initialization of global programs.
//
// Example:
//
//	var swap = usse.MustCompile(`(\w),(\d)`, "%2-%1", nil)
func MustCompile(pattern, template string, config *Config) *Program {
	prog, err := Compile(pattern, template, config)
	if err != nil {
		panic(err)
	}
	return prog
}
