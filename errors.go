package usse

import (
	"errors"
	"fmt"
	"os"

	"github.com/kolkov/usse/internal/linereader"
	"github.com/kolkov/usse/internal/runtime"
)

// ConfigError reports an invalid pattern, template, delimiter or other
// setting. It is returned before any input is read.
type ConfigError struct {
	Field string // pattern, template, delimiter, ...
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// DecodeError reports input that is not valid UTF-8.
type DecodeError struct {
	Line   int   // 1-based line number
	Offset int64 // byte offset of the first invalid byte in the input
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: line %d: invalid UTF-8 at byte offset %d", e.Line, e.Offset)
}

// IOError reports a failed open, read, write, flush, sync or close.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	err := e.Err
	var pe *os.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// convertError maps internal errors to the public types.
func convertError(err error) error {
	if err == nil {
		return nil
	}
	var de *linereader.DecodeError
	if errors.As(err, &de) {
		return &DecodeError{Line: de.Line, Offset: de.Offset}
	}
	var ioe *runtime.IOError
	if errors.As(err, &ioe) {
		return &IOError{Op: ioe.Op, Path: ioe.Path, Err: ioe.Err}
	}
	// Anything else failed while producing output, such as a template
	// that could not be executed.
	return &IOError{Op: "write", Path: "output", Err: err}
}
