package engine

import (
	"fmt"
	"log/slog"
	"strings"
)

// Mode selects how input is divided before matching.
type Mode uint8

const (
	// ModeLine matches once per delimited line.
	ModeLine Mode = iota
	// ModeContinuous reads the whole input and matches over it as one text.
	ModeContinuous
)

func (m Mode) String() string {
	switch m {
	case ModeLine:
		return "line"
	case ModeContinuous:
		return "continuous"
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// ParseMode converts "line" or "continuous" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "line":
		return ModeLine, nil
	case "continuous", "whole":
		return ModeContinuous, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// DecodePolicy decides whether a line that is not valid UTF-8 stops the run.
type DecodePolicy uint8

const (
	// DecodeAuto is terminal when rewriting the input file, where a partial
	// result must not replace it, and advisory when streaming.
	DecodeAuto DecodePolicy = iota
	// DecodeStrict always stops at the first invalid line.
	DecodeStrict
	// DecodeLenient logs invalid lines and keeps going.
	DecodeLenient
)

func (p DecodePolicy) String() string {
	switch p {
	case DecodeAuto:
		return "auto"
	case DecodeStrict:
		return "strict"
	case DecodeLenient:
		return "lenient"
	}
	return fmt.Sprintf("DecodePolicy(%d)", p)
}

// ParseDecodePolicy converts "auto", "strict" or "lenient" to a policy.
func ParseDecodePolicy(s string) (DecodePolicy, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return DecodeAuto, nil
	case "strict":
		return DecodeStrict, nil
	case "lenient":
		return DecodeLenient, nil
	}
	return 0, fmt.Errorf("unknown decode policy %q", s)
}

// advisory reports whether decode failures are skipped rather than fatal.
func (p DecodePolicy) advisory(buffered bool) bool {
	switch p {
	case DecodeStrict:
		return false
	case DecodeLenient:
		return true
	}
	return !buffered
}

// Config controls a transform run.
type Config struct {
	Mode Mode

	// Delimiter separates lines in ModeLine. It must not be empty there.
	Delimiter []byte

	// Nice relays text outside matches unchanged.
	Nice bool

	DecodePolicy DecodePolicy

	// Logger receives debug and warning events. Nil discards them.
	Logger *slog.Logger

	// BufferSize bounds each read from the input in ModeLine.
	// Zero uses the line reader's default.
	BufferSize int
}
