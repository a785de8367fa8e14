package banidb

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Normalize converts a raw BaniDB payload into a Page. It is total: missing
// or oddly-shaped fields degrade to empty strings or the Unknown sentinel,
// and a payload with no verses yields a valid empty page. The returned
// Page.Ang is always requestedAng regardless of what the payload reports.
func (c *Client) Normalize(raw []byte, requestedAng int) *Page {
	page := &Page{
		Ang:    requestedAng,
		Raag:   UnknownTag,
		Writer: UnknownTag,
	}

	verses := gjson.GetBytes(raw, "page")
	if !verses.IsArray() {
		return page
	}

	var unicodeLines, translitLines, translationLines []string

	verses.ForEach(func(_, verse gjson.Result) bool {
		line := Line{
			Gurmukhi:        verse.Get("verse.gurmukhi").String(),
			Unicode:         verse.Get("verse.unicode").String(),
			Transliteration: extractTransliteration(verse),
			Translation:     c.extractTranslation(verse),
			Raag:            extractTag(verse.Get("raag"), "unicode", "english"),
			Writer:          extractTag(verse.Get("writer"), "english"),
		}
		page.Lines = append(page.Lines, line)

		if line.Unicode != "" {
			unicodeLines = append(unicodeLines, line.Unicode)
		}
		if line.Transliteration != "" {
			translitLines = append(translitLines, line.Transliteration)
		}
		if line.Translation != "" {
			translationLines = append(translationLines, line.Translation)
		}
		return true
	})

	page.Unicode = strings.Join(unicodeLines, "\n")
	page.Transliteration = strings.Join(translitLines, "\n")
	page.Translation = strings.Join(translationLines, "\n")

	if len(page.Lines) > 0 {
		page.Raag = page.Lines[0].Raag
		page.Writer = page.Lines[0].Writer
	}

	return page
}

// extractTransliteration handles both shapes the API has served: a plain
// string (legacy) or an object keyed by language code.
func extractTransliteration(verse gjson.Result) string {
	trans := verse.Get("transliteration")
	switch {
	case trans.Type == gjson.String:
		return trans.String()
	case trans.IsObject():
		if v := trans.Get("english"); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
		if v := trans.Get("en"); v.Type == gjson.String {
			return v.String()
		}
	}
	return ""
}

// extractTranslation picks the English translation, preferring sources in
// the client's configured priority order. translation.en is itself served
// either as a string or as a source-keyed object.
func (c *Client) extractTranslation(verse gjson.Result) string {
	en := verse.Get("translation.en")
	switch {
	case en.Type == gjson.String:
		return en.String()
	case en.IsObject():
		for _, source := range c.translationSources {
			if v := en.Get(source); v.Type == gjson.String && v.String() != "" {
				return v.String()
			}
		}
	}
	return ""
}

// extractTag pulls a metadata tag (raag, writer), trying the given keys in
// order and falling back to the Unknown sentinel.
func extractTag(obj gjson.Result, keys ...string) string {
	if obj.IsObject() {
		for _, key := range keys {
			if v := obj.Get(key); v.Type == gjson.String && v.String() != "" {
				return v.String()
			}
		}
	}
	if obj.Type == gjson.String && obj.String() != "" {
		return obj.String()
	}
	return UnknownTag
}
