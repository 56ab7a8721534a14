package linereader

import "fmt"

// DecodeError reports a line whose bytes are not valid UTF-8.
type DecodeError struct {
	Line   int   // 1-based line number
	Offset int64 // Stream offset of the first invalid byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: invalid UTF-8 at byte offset %d", e.Line, e.Offset)
}
