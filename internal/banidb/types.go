package banidb

// Line is one verse line of an ang.
type Line struct {
	Gurmukhi        string `json:"gurmukhi"`
	Unicode         string `json:"unicode"`
	Transliteration string `json:"transliteration,omitempty"`
	Translation     string `json:"translation,omitempty"`
	Raag            string `json:"raag"`
	Writer          string `json:"writer"`
}

// Page is the normalized content of one ang. Ang is always the id that was
// requested; the upstream payload's own page-number field is not trusted
// (it has been observed absent and zero).
type Page struct {
	Ang   int    `json:"ang"`
	Lines []Line `json:"lines"`

	// Combined fields join each line's text with newlines, skipping lines
	// where the field is empty.
	Unicode         string `json:"unicode"`
	Transliteration string `json:"transliteration"`
	Translation     string `json:"translation"`

	// Raag and Writer come from the first line, defaulting to "Unknown".
	Raag   string `json:"raag"`
	Writer string `json:"writer"`
}

// UnknownTag is the sentinel for absent raag/writer metadata.
const UnknownTag = "Unknown"
