// Package gotmpl renders matches through Go text/template output templates,
// as an alternative to the %-template language.
package gotmpl

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/kolkov/usse/internal/format"
)

// Data is the value a template executes against for one match.
type Data struct {
	Groups []string          // Groups[0] is the whole match; unmatched groups are ""
	Named  map[string]string // named groups that participated
	Env    map[string]string // process environment at compile time
}

// Group returns group n, or "" when it does not exist or did not match.
func (d Data) Group(n int) string {
	if n < 0 || n >= len(d.Groups) {
		return ""
	}
	return d.Groups[n]
}

// capturer is implemented by match.Captures.
type capturer interface {
	Strings() []string
	NamedStrings() map[string]string
}

// Template is a parsed output template. It is safe for concurrent use.
type Template struct {
	tmpl *template.Template
	env  map[string]string
}

// Parse parses text as an output template named name.
func Parse(name, text string) (*Template, error) {
	env := environ()
	tmpl, err := template.New(name).Option("missingkey=zero").Funcs(FuncMap(env)).Parse(text)
	if err != nil {
		return nil, err
	}
	return &Template{tmpl: tmpl, env: env}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(name, text string) *Template {
	t, err := Parse(name, text)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the template name.
func (t *Template) Name() string {
	return t.tmpl.Name()
}

// Data builds the template data for g.
func (t *Template) Data(g format.Groups) Data {
	d := Data{Env: t.env}
	if c, ok := g.(capturer); ok {
		d.Groups = c.Strings()
		d.Named = c.NamedStrings()
		return d
	}
	// Without a group count, groups are read up to the first one that did
	// not participate.
	n := -1
	if l, ok := g.(interface{ Len() int }); ok {
		n = l.Len()
	}
	for i := 0; n < 0 || i < n; i++ {
		s, ok := g.Group(i)
		if !ok && n < 0 {
			break
		}
		d.Groups = append(d.Groups, s)
	}
	return d
}

// Expand executes the template for one match and writes the result to w.
func (t *Template) Expand(w io.Writer, g format.Groups) error {
	if err := t.tmpl.Execute(w, t.Data(g)); err != nil {
		return fmt.Errorf("template %s: %w", t.tmpl.Name(), err)
	}
	return nil
}

func environ() map[string]string {
	vars := os.Environ()
	env := make(map[string]string, len(vars))
	for _, kv := range vars {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
