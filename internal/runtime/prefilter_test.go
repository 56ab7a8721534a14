package runtime

import (
	"regexp"
	"testing"
)

func TestExtractLiterals(t *testing.T) {
	tests := []struct {
		name       string
		pattern    string
		wantPrefix string
		wantSuffix string
		wantReq    []string
	}{
		{
			name:       "anchored prefix simple",
			pattern:    "^error",
			wantPrefix: "error",
		},
		{
			name:       "anchored suffix simple",
			pattern:    "failed$",
			wantSuffix: "failed",
		},
		{
			name:       "anchored prefix and suffix",
			pattern:    "^error.*failed$",
			wantPrefix: "error",
			wantSuffix: "failed",
		},
		{
			name:       "anchored prefix with wildcard",
			pattern:    "^GET /api/.*",
			wantPrefix: "GET /api/",
		},
		{
			name:    "required literals in middle",
			pattern: ".*warning.*error.*",
			wantReq: []string{"warning", "error"},
		},
		{
			name:    "required literal after metachar",
			pattern: `\d+.*test`,
			wantReq: []string{"test"},
		},
		{
			name:       "escaped dot in prefix",
			pattern:    `^www\.example\.com`,
			wantPrefix: "www.example.com",
		},
		{
			name:       "escaped dot in suffix",
			pattern:    `test\.log$`,
			wantSuffix: "test.log",
		},
		{
			name:    "no useful literals - only metachar",
			pattern: ".*",
		},
		{
			name:    "no useful literals - short required",
			pattern: ".*ab.*",
		},
		{
			name:       "prefix stops at metachar",
			pattern:    "^hello.world",
			wantPrefix: "hello",
			wantReq:    []string{"world"},
		},
		{
			name:       "complex pattern with all components",
			pattern:    "^START.*middle.*END$",
			wantPrefix: "START",
			wantSuffix: "END",
			wantReq:    []string{"middle"},
		},
		{
			name:    "character class patterns - no literals",
			pattern: "[a-z]+",
		},
		{
			name:       "mixed literal and char class",
			pattern:    "^error[0-9]+warning",
			wantPrefix: "error",
			wantReq:    []string{"warning"},
		},
		{
			name:    "alternation",
			pattern: "foo|bar",
		},
		{
			name:    "alternation with anchor",
			pattern: "^foobar|bazqux",
		},
		{
			name:    "optional character drops out",
			pattern: "colou?r",
			wantReq: []string{"colo"},
		},
		{
			name:       "star after prefix character",
			pattern:    "^abb*c",
			wantPrefix: "ab",
		},
		{
			name:    "counted repetition",
			pattern: "a{2,3}bcd",
			wantReq: []string{"bcd"},
		},
		{
			name:    "plus keeps the character",
			pattern: "héllo+ world",
			wantReq: []string{"héllo", " world"},
		},
		{
			name:    "named group is skipped",
			pattern: `(?P<x>\w+)=value`,
			wantReq: []string{"=value"},
		},
		{
			name:    "unicode class escape",
			pattern: `x\p{Greek}yzw`,
			wantReq: []string{"yzw"},
		},
		{
			name:    "hex escape",
			pattern: `\x{41}bcd\x41efg`,
			wantReq: []string{"bcd", "efg"},
		},
		{
			name:    "quoted literal mode",
			pattern: regexp.QuoteMeta("a.b*c"),
			wantReq: []string{"a.b*c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractLiterals(tt.pattern)

			if tt.wantPrefix == "" && tt.wantSuffix == "" && len(tt.wantReq) == 0 {
				if got != nil {
					t.Errorf("extractLiterals(%q) = %+v, want nil", tt.pattern, got)
				}
				return
			}

			if got == nil {
				t.Fatalf("extractLiterals(%q) = nil, want non-nil", tt.pattern)
			}

			if got.Prefix != tt.wantPrefix {
				t.Errorf("Prefix = %q, want %q", got.Prefix, tt.wantPrefix)
			}
			if got.Suffix != tt.wantSuffix {
				t.Errorf("Suffix = %q, want %q", got.Suffix, tt.wantSuffix)
			}
			if !stringSliceEqual(got.Required, tt.wantReq) {
				t.Errorf("Required = %v, want %v", got.Required, tt.wantReq)
			}
		})
	}
}

// TestLiteralPrefiltering checks that prefiltering never rejects a line the
// full expression would match.
func TestLiteralPrefiltering(t *testing.T) {
	patterns := []string{
		"^error", "failed$", "^error.*failed$", "colou?r", "^abb*c", "a{2,3}bcd",
		`\d+.*test`, "foo|bar", `(?P<k>\w+)=value`, `test\.log$`, "héllo+",
	}
	inputs := []string{
		"", "error", "error: it failed", "color", "colour", "ac", "abc", "abbbc",
		"bcd", "aabcd", "12 test", "foo", "bar", "key=value", "test.log", "héllooo",
		"warning", "fail", "x failed", "colr",
	}

	for _, p := range patterns {
		re := MustCompile(p, PatternConfig{ASCII: true})
		std := regexp.MustCompile(p)
		for _, in := range inputs {
			if re.CanReject(in) && std.MatchString(in) {
				t.Errorf("pattern %q rejected matching input %q", p, in)
			}
		}
	}
}

func TestPrefilterDisabledByFlags(t *testing.T) {
	configs := []PatternConfig{
		{IgnoreCase: true},
		{MultiLine: true},
		{Extended: true},
	}
	for _, c := range configs {
		c.ASCII = true
		if re := MustCompile("^error", c); re.literals != nil {
			t.Errorf("config %+v: prefilter should be disabled", c)
		}
	}
	if re := MustCompile("(?i)^error", PatternConfig{ASCII: true}); re.literals != nil {
		t.Error("inline flags should disable the prefilter")
	}
	if re := MustCompile("^error", PatternConfig{ASCII: true, DotAll: true}); re.literals == nil {
		t.Error("dotall does not affect literals; prefilter expected")
	}
}

func TestCanReject(t *testing.T) {
	tests := []struct {
		name     string
		literals *LiteralInfo
		input    string
		want     bool // true if should reject
	}{
		{
			name:     "prefix rejects",
			literals: &LiteralInfo{Prefix: "error"},
			input:    "warning: test",
			want:     true,
		},
		{
			name:     "prefix accepts",
			literals: &LiteralInfo{Prefix: "error"},
			input:    "error: test",
			want:     false,
		},
		{
			name:     "suffix rejects",
			literals: &LiteralInfo{Suffix: ".log"},
			input:    "test.txt",
			want:     true,
		},
		{
			name:     "suffix accepts",
			literals: &LiteralInfo{Suffix: ".log"},
			input:    "test.log",
			want:     false,
		},
		{
			name:     "multiple required first missing",
			literals: &LiteralInfo{Required: []string{"error", "warning"}},
			input:    "only warning here",
			want:     true,
		},
		{
			name:     "multiple required all present",
			literals: &LiteralInfo{Required: []string{"error", "warning"}},
			input:    "error and warning both here",
			want:     false,
		},
		{
			name:     "all components accept",
			literals: &LiteralInfo{Prefix: "start", Suffix: "end", Required: []string{"middle"}},
			input:    "start middle end",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.literals.CanReject(tt.input)
			if got != tt.want {
				t.Errorf("CanReject(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSkipEscape(t *testing.T) {
	tests := []struct {
		p    string
		want int
	}{
		{`\d`, 2},
		{`\p{Greek}x`, 9},
		{`\pLx`, 3},
		{`\x41z`, 4},
		{`\x{1F600}z`, 9},
		{`\Qa.b\Ez`, 7},
		{`\101z`, 4},
		{`\`, 1},
	}
	for _, tt := range tests {
		if got := skipEscape(tt.p, 0); got != tt.want {
			t.Errorf("skipEscape(%q) = %d, want %d", tt.p, got, tt.want)
		}
	}
}

func TestIsMetaChar(t *testing.T) {
	metas := ".?*+{}[]()^$|"
	nonMetas := "abcdefghijklmnopqrstuvwxyz0123456789_-=;:'\"<>,/\\"

	for _, c := range metas {
		if !isMetaChar(byte(c)) {
			t.Errorf("isMetaChar(%q) = false, want true", c)
		}
	}

	for _, c := range nonMetas {
		if isMetaChar(byte(c)) {
			t.Errorf("isMetaChar(%q) = true, want false", c)
		}
	}
}

func stringSliceEqual(a, b []string) bool {
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
