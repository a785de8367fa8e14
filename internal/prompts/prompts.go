// Package prompts builds the instruction text sent to the generation model.
// Templates are embedded; the orchestrator only sees an opaque string.
package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/sachkhoj/vichar/internal/banidb"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// SystemPrompt returns the scholarly-analysis system prompt.
func SystemPrompt() string {
	return systemPrompt
}

// notAvailable substitutes for upstream fields that are frequently missing.
const notAvailable = "Not available"

// Build assembles the full prompt for one ang: system prompt, the ang's
// content, and any section-specific guidance for well-known banis.
func Build(page *banidb.Page) string {
	data := struct {
		Ang             int
		Unicode         string
		Transliteration string
		Translation     string
		Raag            string
		Writer          string
	}{
		Ang:             page.Ang,
		Unicode:         orDefault(page.Unicode, "N/A"),
		Transliteration: orDefault(page.Transliteration, notAvailable),
		Translation:     orDefault(page.Translation, notAvailable),
		Raag:            page.Raag,
		Writer:          page.Writer,
	}

	var buf bytes.Buffer
	if err := userTemplate.Execute(&buf, data); err != nil {
		// Template and data are both fixed at compile time; a failure here
		// would be a programming error, so fall back to something usable.
		buf.Reset()
		fmt.Fprintf(&buf, "Analyze Ang %d of Sri Guru Granth Sahib Ji:\n\n%s", page.Ang, page.Unicode)
	}

	prompt := systemPrompt + "\n\n---\n\n" + buf.String()

	if note := SectionNote(page.Ang); note != "" {
		prompt += "\n\n" + note
	}

	return prompt + "\n\nPlease provide your complete analysis now."
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
