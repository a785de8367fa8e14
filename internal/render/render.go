// Package render turns a normalized page plus generated commentary into
// presentation documents. Everything here is a pure function of its inputs:
// no I/O, no failure modes. Missing transliteration degrades to a fixed
// placeholder, and verse line breaks are preserved verbatim.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/sachkhoj/vichar/internal/banidb"
)

// Document bundles everything a rendering needs. Date is injected by the
// caller so rendering stays deterministic.
type Document struct {
	Page       *banidb.Page
	Commentary string
	Date       string
	TotalAngs  int
}

// Placeholders for absent upstream transliteration.
const (
	htmlTranslitPlaceholder = "Transliteration not available for this Ang"
	textTranslitPlaceholder = "(Transliteration not available)"
)

// markdown converts the model's commentary. GFM covers the word-analysis
// tables the prompt asks for; hard wraps keep the model's line breaks.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// markdownToHTML renders commentary markdown to HTML. Conversion errors are
// not propagated: the fallback is the raw text, escaped, in a pre block, so
// a rendering is always produced.
func markdownToHTML(md string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(md) + "</pre>")
	}
	return template.HTML(buf.String())
}

// HTML renders the full styled HTML page for one ang.
func HTML(doc Document) string {
	data := htmlData{
		Ang:             doc.Page.Ang,
		TotalAngs:       doc.TotalAngs,
		Date:            doc.Date,
		Gurmukhi:        doc.Page.Unicode,
		Transliteration: doc.Page.Transliteration,
		Raag:            doc.Page.Raag,
		Writer:          doc.Page.Writer,
		Commentary:      markdownToHTML(doc.Commentary),
	}
	if data.Transliteration == "" {
		data.TranslitMissing = true
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		// Fixed template over plain data; reaching this would be a bug.
		return fmt.Sprintf("<html><body><h1>Ang %d</h1><pre>%s</pre></body></html>",
			doc.Page.Ang, template.HTMLEscapeString(doc.Commentary))
	}
	return buf.String()
}

// Text renders the plain-text version of one ang.
func Text(doc Document) string {
	translit := doc.Page.Transliteration
	if translit == "" {
		translit = textTranslitPlaceholder
	}

	const divider = "═════════════════════════════════════════════"

	return fmt.Sprintf(`ੴ Daily Gurbani Wisdom 🙏

📅 %s
📖 Ang %d/%d

%s

Gurmukhi:
%s

Transliteration:
%s

Raag: %s
Writer: %s

%s

%s

%s

🔗 sikhitothemax.org/ang?ang=%d&source=G

🙏 Waheguru Ji Ka Khalsa, Waheguru Ji Ki Fateh 🙏
`,
		doc.Date, doc.Page.Ang, doc.TotalAngs,
		divider,
		doc.Page.Unicode,
		translit,
		doc.Page.Raag, doc.Page.Writer,
		divider,
		doc.Commentary,
		divider,
		doc.Page.Ang,
	)
}

type htmlData struct {
	Ang             int
	TotalAngs       int
	Date            string
	Gurmukhi        string
	Transliteration string
	TranslitMissing bool
	Raag            string
	Writer          string
	Commentary      template.HTML
}
