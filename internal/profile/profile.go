// Package profile loads saved transform jobs from YAML.
//
// A profile names the pattern, the template and every option of a run:
//
//	pattern: '(\w+),(\d+)'
//	template: '%2-%1'
//	delimiter: windows
//	nice: true
//	flags:
//	  ignore_case: true
//	input: data.csv
//	output: in-place
package profile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/kolkov/usse"
	"github.com/kolkov/usse/internal/engine"
)

// ErrProfile marks every error returned by this package.
var ErrProfile = errors.New("profile")

// Profile is one saved job.
type Profile struct {
	Pattern       string `yaml:"pattern"`
	Template      string `yaml:"template"`
	Syntax        string `yaml:"syntax,omitempty"`         // percent or go
	Mode          string `yaml:"mode,omitempty"`           // line or continuous
	Delimiter     string `yaml:"delimiter,omitempty"`      // preset name or hex:...
	DelimiterText string `yaml:"delimiter_text,omitempty"` // literal delimiter text
	Nice          bool   `yaml:"nice,omitempty"`
	Decode        string `yaml:"decode,omitempty"` // auto, strict or lenient
	Flags         Flags  `yaml:"flags,omitempty"`
	Input         string `yaml:"input,omitempty"`  // path; empty or - for stdin
	Output        string `yaml:"output,omitempty"` // path, -, stderr or in-place
	FinalNewline  *bool  `yaml:"final_newline,omitempty"`
}

// Flags are the pattern flags of a profile.
type Flags struct {
	IgnoreCase bool `yaml:"ignore_case,omitempty"`
	MultiLine  bool `yaml:"multi_line,omitempty"`
	DotAll     bool `yaml:"dot_all,omitempty"`
	SwapGreed  bool `yaml:"swap_greed,omitempty"`
	Extended   bool `yaml:"extended,omitempty"`
	ASCII      bool `yaml:"ascii,omitempty"`
	Literal    bool `yaml:"literal,omitempty"`
	Longest    bool `yaml:"longest,omitempty"`
}

// Load reads the profile at path.
func Load(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfile, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes one profile document. Unknown keys are rejected.
func Parse(r io.Reader) (*Profile, error) {
	decoder := yaml.NewDecoder(r, yaml.DisallowUnknownField())
	var p Profile
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: failed to decode YAML: %v", ErrProfile, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Encode renders p as YAML.
func Encode(p *Profile) ([]byte, error) {
	payload, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: encode YAML: %v", ErrProfile, err)
	}
	return payload, nil
}

// Validate checks the fields that do not need compiling.
func (p *Profile) Validate() error {
	if p.Pattern == "" {
		return fmt.Errorf("%w: missing required 'pattern' field", ErrProfile)
	}
	if p.Delimiter != "" && p.DelimiterText != "" {
		return fmt.Errorf("%w: 'delimiter' and 'delimiter_text' are exclusive", ErrProfile)
	}
	if _, err := parseSyntax(p.Syntax); err != nil {
		return err
	}
	if _, err := engine.ParseMode(p.Mode); err != nil {
		return fmt.Errorf("%w: %v", ErrProfile, err)
	}
	if _, err := engine.ParseDecodePolicy(p.Decode); err != nil {
		return fmt.Errorf("%w: %v", ErrProfile, err)
	}
	return nil
}

// Config converts p to a usse.Config. The pattern and template are not
// compiled here.
func (p *Profile) Config() (*usse.Config, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	syntax, _ := parseSyntax(p.Syntax)
	mode, _ := engine.ParseMode(p.Mode)
	policy, _ := engine.ParseDecodePolicy(p.Decode)

	cfg := &usse.Config{
		IgnoreCase:      p.Flags.IgnoreCase,
		MultiLine:       p.Flags.MultiLine,
		DotAll:          p.Flags.DotAll,
		SwapGreed:       p.Flags.SwapGreed,
		Extended:        p.Flags.Extended,
		ASCII:           p.Flags.ASCII,
		Literal:         p.Flags.Literal,
		Longest:         p.Flags.Longest,
		Mode:            mode,
		DelimiterPreset: p.Delimiter,
		Nice:            p.Nice,
		Syntax:          syntax,
		DecodePolicy:    policy,
	}
	if p.DelimiterText != "" {
		cfg.Delimiter = []byte(p.DelimiterText)
	}
	return cfg, nil
}

// Target returns where the profile writes. Standard output is terminated
// with a newline unless final_newline is false.
func (p *Profile) Target() usse.Output {
	out := usse.Output{FinalNewline: p.FinalNewline == nil || *p.FinalNewline}
	switch strings.ToLower(p.Output) {
	case "", "-", "stdout":
		out.Kind = usse.Stdout
	case "stderr":
		out.Kind = usse.Stderr
	case "in-place", "inplace":
		out.Kind = usse.InPlace
	default:
		out.Kind = usse.File
		out.Path = p.Output
	}
	return out
}

func parseSyntax(s string) (usse.Syntax, error) {
	switch strings.ToLower(s) {
	case "", "percent":
		return usse.SyntaxPercent, nil
	case "go", "gotmpl":
		return usse.SyntaxGo, nil
	}
	return 0, fmt.Errorf("%w: unknown syntax %q", ErrProfile, s)
}
