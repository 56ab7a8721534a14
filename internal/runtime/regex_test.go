package runtime

import (
	"errors"
	"regexp/syntax"
	"testing"
)

var ascii = PatternConfig{ASCII: true}

func TestCompile(t *testing.T) {
	tests := []struct {
		pattern string
		wantErr bool
	}{
		{"hello", false},
		{"^[a-z]+$", false},
		{"(foo|bar)", false},
		{`(?P<word>\w+)`, false},
		{`\d+`, false},
		{"[invalid", true},
		{"(unclosed", true},
		{"a**", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			re, err := Compile(tt.pattern, PatternConfig{})
			if tt.wantErr {
				var pe *PatternError
				if !errors.As(err, &pe) {
					t.Fatalf("expected *PatternError for %q, got %v", tt.pattern, err)
				}
				if pe.Pattern != tt.pattern {
					t.Errorf("PatternError.Pattern = %q", pe.Pattern)
				}
				var se *syntax.Error
				if !errors.As(err, &se) {
					t.Errorf("expected wrapped *syntax.Error, got %v", pe.Err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if re.Pattern() != tt.pattern {
				t.Errorf("Pattern() = %q, want %q", re.Pattern(), tt.pattern)
			}
		})
	}
}

func TestMustCompile(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for invalid pattern")
		}
	}()
	MustCompile("[invalid", ascii)
}

func TestExpression(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		config  PatternConfig
		want    string
	}{
		{"plain", "a.b", ascii, "a.b"},
		{"ignore case", "abc", PatternConfig{ASCII: true, IgnoreCase: true}, "(?i)abc"},
		{"all flags", "x", PatternConfig{ASCII: true, IgnoreCase: true, MultiLine: true, DotAll: true, SwapGreed: true}, "(?imsU)x"},
		{"literal", "a.b*", PatternConfig{Literal: true}, `a\.b\*`},
		{"literal keeps class escapes", `\d`, PatternConfig{Literal: true}, `\\d`},
		{"extended", "a b # comment\n c", PatternConfig{ASCII: true, Extended: true}, "abc"},
		{"unicode digits", `\d+`, PatternConfig{}, `[\p{Nd}]+`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expression(tt.pattern, tt.config); got != tt.want {
				t.Errorf("Expression(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestStripExtended(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a b c", "abc"},
		{"a\tb\nc", "abc"},
		{`a\ b`, `a\x{20}b`},
		{"[a b]", "[a b]"},
		{"[^] ]x y", "[^] ]xy"},
		{"a # note\nb", "ab"},
		{`a\#b`, `a\#b`},
		{"a # trailing", "a"},
		{`\d + \w`, `\d+\w`},
	}
	for _, tt := range tests {
		if got := stripExtended(tt.in); got != tt.want {
			t.Errorf("stripExtended(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWidenClasses(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc", "abc"},
		{`\d`, `[\p{Nd}]`},
		{`\D`, `[^\p{Nd}]`},
		{`\w+`, `[\p{L}\p{M}\p{Nd}\p{Pc}]+`},
		{`[\d,]`, `[\p{Nd},]`},
		{`[^\d]`, `[^\p{Nd}]`},
		{`[\D]`, `[\D]`},
		{`\S`, `[^\t\n\v\f\r\x{85}\p{Z}]`},
		{`\.\b`, `\.\b`},
		{`\\d`, `\\d`},
		{`\Q\d\E\d`, `\Q\d\E[\p{Nd}]`},
	}
	for _, tt := range tests {
		if got := widenClasses(tt.in); got != tt.want {
			t.Errorf("widenClasses(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFindStringSubmatchIndex(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		config  PatternConfig
		input   string
		want    []int
	}{
		{"groups", `(\w),(\d)`, ascii, "a,1", []int{0, 3, 0, 1, 2, 3}},
		{"no match", `(\w),(\d)`, ascii, "noMatch", nil},
		{"optional group", `(a)(x)?`, ascii, "a", []int{0, 1, 0, 1, -1, -1}},
		{"ignore case", "hello", PatternConfig{ASCII: true, IgnoreCase: true}, "say HeLLo", []int{4, 9}},
		{"literal", "a.c", PatternConfig{Literal: true}, "abc a.c", []int{4, 7}},
		{"unicode digits", `\d+`, PatternConfig{}, "x٣٤y", []int{1, 5}},
		{"unicode groups", `(\w),(\d)`, PatternConfig{}, "é,٣", []int{0, 5, 0, 2, 3, 5}},
		{"dot over runes", `(.),(.)`, PatternConfig{}, "é,٣", []int{0, 5, 0, 2, 3, 5}},
		{"negated class over runes", `[^,]+`, PatternConfig{}, "ïx,", []int{0, 3}},
		{"ascii digits only", `\d+`, ascii, "x٣٤y", nil},
		{"dot all", "a.b", PatternConfig{ASCII: true, DotAll: true}, "a\nb", []int{0, 3}},
		{"no dot all", "a.b", ascii, "a\nb", nil},
		{"multi line", "^b$", PatternConfig{ASCII: true, MultiLine: true}, "a\nb\nc", []int{2, 3}},
		{"swap greed", "a+", PatternConfig{ASCII: true, SwapGreed: true}, "aaa", []int{0, 1}},
		{"extended", `(\w) , (\d)`, PatternConfig{ASCII: true, Extended: true}, "a,1", []int{0, 3, 0, 1, 2, 3}},
		{"longest", "a|ab", PatternConfig{ASCII: true, Longest: true}, "ab", []int{0, 2}},
		{"leftmost first", "a|ab", ascii, "ab", []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := MustCompile(tt.pattern, tt.config)
			got := re.FindStringSubmatchIndex(tt.input)
			if !intSliceEqual(got, tt.want) {
				t.Errorf("FindStringSubmatchIndex(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFindAllStringSubmatchIndex(t *testing.T) {
	re := MustCompile(`(\d)(\d)?`, ascii)
	got := re.FindAllStringSubmatchIndex("a1b23c4", -1)
	want := [][]int{{1, 2, 1, 2, -1, -1}, {3, 5, 3, 4, 4, 5}, {6, 7, 6, 7, -1, -1}}
	if len(got) != len(want) {
		t.Fatalf("got %d matches, want %d", len(got), len(want))
	}
	for i := range want {
		if !intSliceEqual(got[i], want[i]) {
			t.Errorf("match %d: got %v, want %v", i, got[i], want[i])
		}
	}

	re = MustCompile(`\d+`, PatternConfig{})
	got = re.FindAllStringSubmatchIndex("naïve café: 42", -1)
	if len(got) != 1 || !intSliceEqual(got[0], []int{14, 16}) {
		t.Errorf("non-ASCII subject: got %v, want [[14 16]]", got)
	}

	re = MustCompile("^error", ascii)
	if got := re.FindAllStringSubmatchIndex("warning", -1); got != nil {
		t.Errorf("prefiltered input returned %v", got)
	}
}

func TestSubexpNames(t *testing.T) {
	re := MustCompile(`(?P<key>\w+)=(\w+)=(?P<val>\w+)`, ascii)
	if n := re.NumSubexp(); n != 3 {
		t.Errorf("NumSubexp = %d, want 3", n)
	}
	names := re.SubexpNames()
	if len(names) != 4 || names[1] != "key" || names[2] != "" || names[3] != "val" {
		t.Errorf("SubexpNames = %q", names)
	}
	if i := re.SubexpIndex("val"); i != 3 {
		t.Errorf("SubexpIndex(val) = %d, want 3", i)
	}
	if i := re.SubexpIndex("nope"); i != -1 {
		t.Errorf("SubexpIndex(nope) = %d, want -1", i)
	}
}

func TestMatchString(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"hello", "hello world", true},
		{"hello", "goodbye world", false},
		{"^hello", "say hello", false},
		{"world$", "hello world", true},
		{"^$", "", true},
		{"foo|bar", "bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.input, func(t *testing.T) {
			re := MustCompile(tt.pattern, ascii)
			if got := re.MatchString(tt.input); got != tt.want {
				t.Errorf("MatchString(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
