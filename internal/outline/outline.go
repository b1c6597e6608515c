// Package outline defines the chapter-outline data model shared by every
// extractor, plus the reconciliation and refinement steps that run on it.
package outline

// Entry is one candidate chapter heading. Level is 1-based nesting depth.
// Exactly one anchor kind is meaningful per source: Page (1-based) for PDF
// outlines, Href (fragment-free, container-absolute path) for EPUB ones.
// PlayOrder carries the EPUB navigation ordinal for last-resort resolution.
type Entry struct {
	Level     int    `json:"level"`
	Title     string `json:"title"`
	Page      int    `json:"page,omitempty"`
	Href      string `json:"href,omitempty"`
	PlayOrder int    `json:"play_order,omitempty"`
}

// Resolved is an Entry bound to a concrete start boundary in the document's
// linear unit: a 0-based page index for PDF, a spine index for EPUB.
type Resolved struct {
	Entry
	StartUnit int
	// Degraded marks entries whose boundary came from a last-resort
	// fallback rather than an exact match.
	Degraded bool
}

// Chapter is the final output unit: a title, its content span with
// child-heading text truncated away, and the non-whitespace character count
// of that content.
type Chapter struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
}

// Candidate is one extractor's complete output, tagged with its source name
// and whether the source is considered structurally complete (an
// object-model walk that already merges duplicate navigation sources).
type Candidate struct {
	Source     string
	Structured bool
	Entries    []Entry
}
