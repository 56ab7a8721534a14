package runtime

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Input is an open input source: standard input or a named file.
type Input struct {
	r    io.Reader
	path string   // empty for standard input
	file *os.File // set when the Input owns the file
}

// OpenInput opens path for reading. An empty path or "-" selects standard
// input, which is never closed.
func OpenInput(path string) (*Input, error) {
	if path == "" || path == "-" {
		return &Input{r: os.Stdin}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	return &Input{r: f, path: path, file: f}, nil
}

// NewInput wraps r. The path names the file r reads from, if any, and is
// used to detect when the output would overwrite the input. The caller
// keeps ownership of r.
func NewInput(r io.Reader, path string) *Input {
	return &Input{r: r, path: path}
}

func (in *Input) Read(p []byte) (int, error) {
	return in.r.Read(p)
}

// Path returns the file path, or "" for standard input.
func (in *Input) Path() string {
	return in.path
}

// Name returns a printable name for error messages.
func (in *Input) Name() string {
	if in.path == "" {
		return "<stdin>"
	}
	return in.path
}

// Close releases the file if the Input opened it. It is safe to call more
// than once.
func (in *Input) Close() error {
	if in.file == nil {
		return nil
	}
	f := in.file
	in.file = nil
	if err := f.Close(); err != nil {
		return &IOError{Op: "close", Path: in.path, Err: err}
	}
	return nil
}

// SinkKind selects where output goes.
type SinkKind uint8

const (
	Stdout  SinkKind = iota // standard output
	Stderr                  // standard error
	File                    // a named file, created or truncated
	InPlace                 // the input file itself
)

func (k SinkKind) String() string {
	switch k {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	case File:
		return "file"
	case InPlace:
		return "in-place"
	}
	return fmt.Sprintf("SinkKind(%d)", k)
}

// Target describes an output destination before it is opened.
type Target struct {
	Kind SinkKind
	Path string // File only; InPlace takes the input path

	// FinalNewline terminates nonempty standard output that does not end
	// in a newline when the sink is committed.
	FinalNewline bool

	// Writer replaces the process stream for Stdout and Stderr.
	Writer io.Writer
}

// Aliases reports whether writing to t would overwrite the file in reads.
func (t Target) Aliases(in *Input) bool {
	switch t.Kind {
	case InPlace:
		return true
	case File:
		if in.path == "" || t.Path == "" {
			return false
		}
		a, err := os.Stat(in.path)
		if err != nil {
			return false
		}
		b, err := os.Stat(t.Path)
		if err != nil {
			return false
		}
		return os.SameFile(a, b)
	}
	return false
}

// Sink is an opened, buffered output destination.
type Sink struct {
	kind         SinkKind
	name         string
	file         *os.File // File and InPlace only
	regular      bool     // file is a regular file and can be synced
	writer       *bufio.Writer
	finalNewline bool
	last         byte
	written      int64
}

// OpenSink opens t. File and InPlace targets are created or truncated.
func OpenSink(t Target) (*Sink, error) {
	s := &Sink{kind: t.Kind, finalNewline: t.FinalNewline}
	var w io.Writer
	switch t.Kind {
	case Stdout:
		s.name = "<stdout>"
		w = os.Stdout
	case Stderr:
		s.name = "<stderr>"
		w = os.Stderr
	case File, InPlace:
		if t.Path == "" {
			return nil, &IOError{Op: "open", Path: t.Kind.String(), Err: errors.New("no path")}
		}
		f, err := os.OpenFile(t.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return nil, &IOError{Op: "open", Path: t.Path, Err: err}
		}
		s.name = t.Path
		s.file = f
		if fi, err := f.Stat(); err == nil {
			s.regular = fi.Mode().IsRegular()
		}
		w = f
	default:
		return nil, fmt.Errorf("unknown sink kind %d", t.Kind)
	}
	if t.Writer != nil && s.file == nil {
		w = t.Writer
	}
	s.writer = bufio.NewWriter(w)
	return s, nil
}

// Name returns a printable name for error messages.
func (s *Sink) Name() string {
	return s.name
}

// Written returns the number of bytes accepted so far.
func (s *Sink) Written() int64 {
	return s.written
}

func (s *Sink) Write(p []byte) (int, error) {
	n, err := s.writer.Write(p)
	s.track(p[:n])
	if err != nil {
		return n, &IOError{Op: "write", Path: s.name, Err: err}
	}
	return n, nil
}

func (s *Sink) WriteString(str string) (int, error) {
	n, err := s.writer.WriteString(str)
	if n > 0 {
		s.written += int64(n)
		s.last = str[n-1]
	}
	if err != nil {
		return n, &IOError{Op: "write", Path: s.name, Err: err}
	}
	return n, nil
}

func (s *Sink) track(p []byte) {
	if len(p) > 0 {
		s.written += int64(len(p))
		s.last = p[len(p)-1]
	}
}

// Commit flushes buffered output. Standard output gets its final newline
// here; regular files are synced to stable storage. Devices and pipes are
// only flushed.
func (s *Sink) Commit() error {
	if s.kind == Stdout && s.finalNewline && s.written > 0 && s.last != '\n' {
		if err := s.writer.WriteByte('\n'); err != nil {
			return &IOError{Op: "write", Path: s.name, Err: err}
		}
		s.written++
		s.last = '\n'
	}
	if err := s.writer.Flush(); err != nil {
		return &IOError{Op: "flush", Path: s.name, Err: err}
	}
	if s.file != nil && s.regular {
		if err := s.file.Sync(); err != nil {
			return &IOError{Op: "sync", Path: s.name, Err: err}
		}
	}
	return nil
}

// Close releases the file behind a File or InPlace sink without flushing.
// It is safe to call more than once.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	f := s.file
	s.file = nil
	if err := f.Close(); err != nil {
		return &IOError{Op: "close", Path: s.name, Err: err}
	}
	return nil
}

// IOError records a failed operation on an input or output.
type IOError struct {
	Op   string // open, read, write, flush, sync or close
	Path string
	Err  error
}

func (e *IOError) Error() string {
	err := e.Err
	var pe *os.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return e.Op + " " + e.Path + ": " + err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Delimiter presets by name.
var delimiters = map[string]string{
	"unix":    "\n",
	"windows": "\r\n",
	"mac":     "\r",
	"acorn":   "\n\r",
	"nl":      "\x15",
	"rs":      "\x1e",
}

// ErrUnknownDelimiter is returned by Delimiter for an unrecognised name.
var ErrUnknownDelimiter = errors.New("unknown delimiter")

// Delimiter resolves a preset name (unix, windows, mac, acorn, nl, rs) or a
// "hex:" spelling such as hex:0d0a to delimiter bytes.
func Delimiter(name string) ([]byte, error) {
	if d, ok := delimiters[strings.ToLower(name)]; ok {
		return []byte(d), nil
	}
	if h, ok := strings.CutPrefix(name, "hex:"); ok {
		d, err := hex.DecodeString(h)
		if err != nil {
			return nil, fmt.Errorf("delimiter %q: %w", name, err)
		}
		if len(d) == 0 {
			return nil, fmt.Errorf("delimiter %q: empty", name)
		}
		return d, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownDelimiter, name)
}

// DelimiterNames lists the preset names in display order.
func DelimiterNames() []string {
	return []string{"unix", "windows", "mac", "acorn", "nl", "rs"}
}
