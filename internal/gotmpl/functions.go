package gotmpl

import (
	"strings"
	"text/template"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// FuncMap returns the functions available to output templates.
// env is consulted by the env function.
func FuncMap(env map[string]string) template.FuncMap {
	return template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"title": titleCase,
		"trim":  strings.TrimSpace,

		"uuid": generateUUID,
		"now":  timeNow,

		"env": func(key string) string {
			return env[key]
		},
		"default": defaultValue,
	}
}

func generateUUID() string {
	return uuid.New().String()
}

func timeNow() string {
	return time.Now().Format(time.RFC3339)
}

// titleCase upper-cases the first rune of each space-separated word and
// collapses runs of spaces.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// defaultValue returns def when v is empty, so a pipeline such as
// {{.Group 3 | default "none"}} fills in for a group that did not match.
func defaultValue(def, v string) string {
	if v == "" {
		return def
	}
	return v
}
