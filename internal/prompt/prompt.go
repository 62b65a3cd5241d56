// Package prompt builds the text instructions sent to the image model.
//
// Prompt templates are stored as text files under templates/ and embedded at
// compile time.
package prompt

import (
	"bytes"
	_ "embed"
	"regexp"
	"text/template"
)

//go:embed templates/primary.txt
var primaryTemplate string

//go:embed templates/fallback.txt
var fallbackTemplate string

var (
	primaryTmpl  = template.Must(template.New("primary").Parse(primaryTemplate))
	fallbackTmpl = template.Must(template.New("fallback").Parse(fallbackTemplate))
)

// decadePattern matches four digits followed by a literal "s", e.g. "1970s".
var decadePattern = regexp.MustCompile(`\d{4}s`)

// decades are the eras offered by the web front end.
var decades = []string{"1950s", "1960s", "1970s", "1980s", "1990s", "2000s"}

// Decades returns the built-in decade choices.
func Decades() []string {
	out := make([]string, len(decades))
	copy(out, decades)
	return out
}

// ExtractDecade returns the first decade token in the prompt.
func ExtractDecade(prompt string) (string, bool) {
	m := decadePattern.FindString(prompt)
	return m, m != ""
}

// Fallback returns the neutral instruction used after the model declines the
// original prompt.
func Fallback(decade string) string {
	return render(fallbackTmpl, decade)
}

// Primary returns the standard styling prompt for a decade.
func Primary(decade string) string {
	return render(primaryTmpl, decade)
}

func render(tmpl *template.Template, decade string) string {
	var buf bytes.Buffer
	data := struct{ Decade string }{Decade: decade}
	if err := tmpl.Execute(&buf, data); err != nil {
		// Templates are parsed at init and take a single string field.
		panic("prompt: execute " + tmpl.Name() + ": " + err.Error())
	}
	return buf.String()
}
