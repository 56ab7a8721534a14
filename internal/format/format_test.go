package format

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// fakeGroups is a capture set backed by plain maps.
type fakeGroups struct {
	numbered map[int]string
	named    map[string]string
}

func (f fakeGroups) Group(i int) (string, bool) {
	s, ok := f.numbered[i]
	return s, ok
}

func (f fakeGroups) Named(name string) (string, bool) {
	s, ok := f.named[name]
	return s, ok
}

func copyOp(s string) Instruction  { return Instruction{Op: OpCopy, Text: s} }
func escOp(s string) Instruction   { return Instruction{Op: OpEscaped, Text: s} }
func namedOp(s string) Instruction { return Instruction{Op: OpNamed, Text: s} }
func groupOp(n int) Instruction    { return Instruction{Op: OpGroup, Index: n} }
func charOp(r rune) Instruction    { return Instruction{Op: OpChar, Char: r} }

func TestCompile(t *testing.T) {
	tests := []struct {
		src  string
		want []Instruction
	}{
		{"", nil},
		{"plain", []Instruction{copyOp("plain")}},
		{"%1", []Instruction{groupOp(1)}},
		{"%<11>", []Instruction{groupOp(11)}},
		{"%<201>", []Instruction{groupOp(201)}},
		{"%<group6>", []Instruction{namedOp("group6")}},
		{"%2-%1", []Instruction{groupOp(2), copyOp("-"), groupOp(1)}},
		{"%%1 literal", []Instruction{escOp("1 literal")}},
		{"%%0", []Instruction{escOp("0")}},
		{"a%%b%1", []Instruction{copyOp("a"), escOp("b"), groupOp(1)}},
		{"100%%", []Instruction{copyOp("100"), escOp("%")}},
		{"%%\\t", []Instruction{escOp("\\t")}},
		{
			"hello %<11> world %2 weird%3%<world> pattern%4",
			[]Instruction{
				copyOp("hello "), groupOp(11), copyOp(" world "), groupOp(2),
				copyOp(" weird"), groupOp(3), namedOp("world"), copyOp(" pattern"), groupOp(4),
			},
		},
		{
			`hello %<11> weird%3%<world> pattern%4\tfoobar`,
			[]Instruction{
				copyOp("hello "), groupOp(11), copyOp(" weird"), groupOp(3), namedOp("world"),
				copyOp(" pattern"), groupOp(4), charOp('\t'), copyOp("foobar"),
			},
		},
		{`\t\n\r\v\\`, []Instruction{charOp('\t'), charOp('\n'), charOp('\r'), charOp('\v'), charOp('\\')}},
		{`\u{2764}\x{41}\U{1F600}`, []Instruction{charOp('❤'), charOp('A'), charOp('\U0001F600')}},
		{`a\u{D800}b`, []Instruction{copyOp("a"), copyOp("b")}},
		{`\u{110000}`, nil},
		{`\u{123456789}`, []Instruction{copyOp(`\u{123456789}`)}},
		{`\u{}`, []Instruction{copyOp(`\u{}`)}},
		{`\q`, []Instruction{copyOp(`\q`)}},
		{`trailing\`, []Instruction{copyOp(`trailing\`)}},
		{"%", []Instruction{copyOp("%")}},
		{"%x", []Instruction{copyOp("%x")}},
		{"%<1>", []Instruction{copyOp("%<1>")}},
		{"%<Upper>", []Instruction{copyOp("%<Upper>")}},
		{"%<a>", []Instruction{copyOp("%<a>")}},
		{"%<open", []Instruction{copyOp("%<open")}},
		{"%<x1>%<y2>", []Instruction{namedOp("x1"), namedOp("y2")}},
		{"%12", []Instruction{groupOp(1), copyOp("2")}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := Compile(tt.src).Instructions()
			if len(got) != len(tt.want) {
				t.Fatalf("Compile(%q) = %v, want %v", tt.src, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("instruction %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExpand(t *testing.T) {
	g := fakeGroups{
		numbered: map[int]string{0: "a,1", 1: "a", 2: "1"},
		named:    map[string]string{"key": "K"},
	}
	tests := []struct {
		src  string
		want string
	}{
		{"%2-%1", "1-a"},
		{"[%0]", "[a,1]"},
		{"%<key>=%1", "K=a"},
		{"%9|%<99>|%<missing>", "||"},
		{"%%1 literal", "1 literal"},
		{`%1\t%2\n`, "a\t1\n"},
		{`\u{2764}`, "❤"},
		{"50%% of %1", "50 of a"},
		{"%1%%", "a%"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p := Compile(tt.src)
			if got := p.String(g); got != tt.want {
				t.Errorf("String = %q, want %q", got, tt.want)
			}
			if got := string(p.Append([]byte("pre:"), g)); got != "pre:"+tt.want {
				t.Errorf("Append = %q, want %q", got, "pre:"+tt.want)
			}
			var buf bytes.Buffer
			if err := p.Expand(&buf, g); err != nil {
				t.Fatalf("Expand: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Expand = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestExpandDeterministic(t *testing.T) {
	g := fakeGroups{numbered: map[int]string{1: "x", 2: "y"}}
	p := Compile(`%2\u{e9}%1%<n>%%z`)
	first := p.Append(nil, g)
	second := p.Append(nil, g)
	if !bytes.Equal(first, second) {
		t.Errorf("expansions differ: %q vs %q", first, second)
	}
}

func TestExpandMissingGroups(t *testing.T) {
	p := Compile("%0%1%<10>%<name>")
	empty := fakeGroups{}
	if got := p.String(empty); got != "" {
		t.Errorf("String = %q, want empty", got)
	}
	var buf bytes.Buffer
	if err := p.Expand(&buf, empty); err != nil || buf.Len() != 0 {
		t.Errorf("Expand = %q, %v", buf.String(), err)
	}
}

type errWriter struct{ err error }

func (e errWriter) Write([]byte) (int, error) { return 0, e.err }

func TestExpandWriteError(t *testing.T) {
	boom := errors.New("boom")
	err := Compile("abc").Expand(errWriter{boom}, fakeGroups{})
	if !errors.Is(err, boom) {
		t.Errorf("Expand error = %v, want %v", err, boom)
	}
}

func TestRefs(t *testing.T) {
	nums, names := Compile("%1%<a1>%2%1%<a1>%<bb>").Refs()
	if len(nums) != 2 || nums[0] != 1 || nums[1] != 2 {
		t.Errorf("numbers = %v", nums)
	}
	if len(names) != 2 || names[0] != "a1" || names[1] != "bb" {
		t.Errorf("names = %v", names)
	}
}

func TestInstructionsIsCopy(t *testing.T) {
	p := Compile("%1x")
	ins := p.Instructions()
	ins[0] = copyOp("mutated")
	if p.String(fakeGroups{numbered: map[int]string{1: "g"}}) != "gx" {
		t.Error("mutating Instructions() changed the program")
	}
	if p.Source() != "%1x" {
		t.Errorf("Source = %q", p.Source())
	}
}

func TestInstructionString(t *testing.T) {
	got := []string{
		groupOp(3).String(),
		charOp('\t').String(),
		namedOp("n1").String(),
		escOp("x").String(),
	}
	want := []string{`Group(3)`, `Char('\t')`, `Named("n1")`, `Escaped("x")`}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
}

func FuzzCompile(f *testing.F) {
	seeds := []string{
		"%2-%1", "%%1 literal", `\u{2764}`, "%<name>%<12>", `\x{}`, "%%", "%<", `\`,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	g := fakeGroups{numbered: map[int]string{1: "one"}, named: map[string]string{"ab": "AB"}}
	f.Fuzz(func(t *testing.T, src string) {
		p := Compile(src)
		var buf bytes.Buffer
		if err := p.Expand(&buf, g); err != nil {
			t.Fatal(err)
		}
		if got := string(p.Append(nil, g)); got != buf.String() {
			t.Fatalf("Append %q != Expand %q", got, buf.String())
		}
	})
}
