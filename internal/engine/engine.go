// Package engine runs a compiled pattern and template over an input and
// writes the transformed text to an output.
package engine

import (
	"bytes"
	"errors"
	"io"
	"log/slog"

	"github.com/kolkov/usse/internal/format"
	"github.com/kolkov/usse/internal/linereader"
	"github.com/kolkov/usse/internal/match"
	"github.com/kolkov/usse/internal/runtime"
	"github.com/kolkov/usse/internal/split"
)

// Expander writes the output for one match.
// *format.Program and *gotmpl.Template implement it.
type Expander interface {
	Expand(w io.Writer, g format.Groups) error
}

// rejecter is implemented by regexes with a literal prefilter.
type rejecter interface {
	CanReject(s string) bool
}

// Stats summarizes a run.
type Stats struct {
	Lines        int   // lines read (ModeLine)
	Matches      int   // matches expanded
	Prefiltered  int   // lines rejected without running the regex
	DecodeErrors int   // invalid lines skipped under an advisory policy
	Written      int64 // bytes written to the output
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("lines", s.Lines),
		slog.Int("matches", s.Matches),
		slog.Int("prefiltered", s.Prefiltered),
		slog.Int("decode_errors", s.DecodeErrors),
		slog.Int64("written", s.Written),
	)
}

// Engine is a configured transform. It holds no per-run state, so one
// Engine may run over many inputs, one at a time or concurrently.
type Engine struct {
	re     match.Regexp
	reject rejecter
	exp    Expander
	cfg    Config
	log    *slog.Logger
}

// New returns an Engine. In ModeLine the delimiter must not be empty.
func New(re match.Regexp, exp Expander, cfg Config) (*Engine, error) {
	if re == nil || exp == nil {
		return nil, errors.New("engine: nil regex or template")
	}
	if cfg.Mode == ModeLine {
		if err := split.Check(cfg.Delimiter); err != nil {
			return nil, err
		}
	}
	cfg.Delimiter = bytes.Clone(cfg.Delimiter)
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = linereader.DefaultBufferSize
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	e := &Engine{re: re, exp: exp, cfg: cfg, log: log}
	if r, ok := re.(rejecter); ok {
		e.reject = r
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// writer is the output of transform: a Sink or an in-memory buffer.
type writer interface {
	io.Writer
	io.StringWriter
}

// Run transforms in and writes the result to out, then closes in.
//
// When out would overwrite the file in reads from, the whole result is
// built in memory and the file is replaced only after the input has been
// read without error. Otherwise output is streamed and committed at the end,
// including when the run fails part way.
func (e *Engine) Run(in *runtime.Input, out runtime.Target) (stats Stats, err error) {
	defer func() {
		if cerr := in.Close(); err == nil {
			err = cerr
		}
	}()

	buffered := out.Aliases(in)
	e.log.Debug("run",
		"mode", e.cfg.Mode.String(),
		"input", in.Name(),
		"output", out.Kind.String(),
		"buffered", buffered,
		"nice", e.cfg.Nice)

	if buffered {
		stats, err = e.rewrite(in, out)
	} else {
		stats, err = e.stream(in, out)
	}
	if err == nil {
		e.log.Debug("done", "stats", stats)
	}
	return stats, err
}

func (e *Engine) stream(in *runtime.Input, out runtime.Target) (Stats, error) {
	sink, err := runtime.OpenSink(out)
	if err != nil {
		return Stats{}, err
	}
	stats, err := e.transform(in, sink, e.cfg.DecodePolicy.advisory(false))

	// What was produced before a failure is still delivered.
	if cerr := sink.Commit(); err == nil {
		err = cerr
	}
	if cerr := sink.Close(); err == nil {
		err = cerr
	}
	stats.Written = sink.Written()
	return stats, err
}

func (e *Engine) rewrite(in *runtime.Input, out runtime.Target) (Stats, error) {
	path := out.Path
	if out.Kind == runtime.InPlace {
		path = in.Path()
	}
	if path == "" {
		return Stats{}, &runtime.IOError{Op: "open", Path: in.Name(), Err: errors.New("cannot rewrite standard input in place")}
	}

	var buf bytes.Buffer
	stats, err := e.transform(in, &buf, e.cfg.DecodePolicy.advisory(true))
	if err != nil {
		return stats, err
	}
	if err := in.Close(); err != nil {
		return stats, err
	}

	sink, err := runtime.OpenSink(runtime.Target{Kind: out.Kind, Path: path})
	if err != nil {
		return stats, err
	}
	_, err = sink.Write(buf.Bytes())
	if err == nil {
		err = sink.Commit()
	}
	if cerr := sink.Close(); err == nil {
		err = cerr
	}
	stats.Written = sink.Written()
	return stats, err
}

func (e *Engine) transform(in *runtime.Input, w writer, advisory bool) (Stats, error) {
	if e.cfg.Mode == ModeContinuous {
		return e.continuous(in, w)
	}
	return e.lines(in, w, advisory)
}

func (e *Engine) lines(in *runtime.Input, w writer, advisory bool) (Stats, error) {
	var stats Stats
	delim := e.cfg.Delimiter
	r := linereader.NewSize(in, delim, e.cfg.BufferSize)

	for line, err := range r.All() {
		if err != nil {
			var de *linereader.DecodeError
			if !errors.As(err, &de) {
				return stats, &runtime.IOError{Op: "read", Path: in.Name(), Err: err}
			}
			if !advisory {
				return stats, err
			}
			stats.Lines++
			stats.DecodeErrors++
			e.log.Warn("skipping invalid line", "input", in.Name(), "line", de.Line, "offset", de.Offset)
			if e.cfg.Nice {
				if _, err := w.Write(line.Raw); err != nil {
					return stats, err
				}
				if err := e.terminate(w, line); err != nil {
					return stats, err
				}
			}
			continue
		}

		stats.Lines++
		var caps match.Captures
		ok := false
		if e.reject != nil && e.reject.CanReject(line.Text) {
			stats.Prefiltered++
		} else {
			caps, ok = match.Find(e.re, line.Text)
		}

		switch {
		case ok:
			stats.Matches++
			if err := e.exp.Expand(w, caps); err != nil {
				return stats, err
			}
		case e.cfg.Nice:
			if _, err := w.WriteString(line.Text); err != nil {
				return stats, err
			}
		default:
			continue
		}
		if err := e.terminate(w, line); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (e *Engine) terminate(w writer, line linereader.Line) error {
	if !line.Terminated {
		return nil
	}
	_, err := w.Write(e.cfg.Delimiter)
	return err
}

func (e *Engine) continuous(in *runtime.Input, w writer) (Stats, error) {
	var stats Stats
	data, err := io.ReadAll(in)
	if err != nil {
		return stats, &runtime.IOError{Op: "read", Path: in.Name(), Err: err}
	}
	if bad := linereader.InvalidAt(data); bad >= 0 {
		return stats, &linereader.DecodeError{
			Line:   1 + bytes.Count(data[:bad], []byte{'\n'}),
			Offset: int64(bad),
		}
	}

	for seg := range match.New(string(data), e.re, e.cfg.Nice).All() {
		switch seg.Kind {
		case match.CopyText:
			if _, err := w.WriteString(seg.Text); err != nil {
				return stats, err
			}
		case match.MatchedGroups:
			stats.Matches++
			if err := e.exp.Expand(w, seg.Captures); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}
