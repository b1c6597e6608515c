package pdf

import (
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/liushu2048/booktoc/internal/heading"
	"github.com/liushu2048/booktoc/internal/outline"
	"github.com/liushu2048/booktoc/internal/textnorm"
)

// topLines is how many leading rows of a page are considered when looking
// for a chapter heading.
const topLines = 5

// ScanOutline builds a flat outline by scanning each page's top rows for a
// chapter-heading line. It is the fallback when a document carries no
// bookmark tree.
func ScanOutline(d *Document, log *zap.Logger) []outline.Entry {
	if log == nil {
		log = zap.NewNop()
	}
	var entries []outline.Entry
	for n := 1; n <= d.PageCount(); n++ {
		lines := d.PageLines(n)
		if len(lines) > topLines {
			lines = lines[:topLines]
		}
		for _, line := range lines {
			line = textnorm.Normalize(line)
			if heading.IsHeadingLine(line) {
				entries = append(entries, outline.Entry{
					Level: 1,
					Title: line,
					Page:  n,
				})
				break
			}
		}
	}
	log.Debug("page scan outline", zap.Int("entries", len(entries)))
	return entries
}

// SniffPageHeading guesses a title for one page: a heading-shaped top row
// if there is one, else the first short, clean row.
func SniffPageHeading(d *Document, n int) string {
	lines := d.PageLines(n)
	if len(lines) > topLines {
		lines = lines[:topLines]
	}
	for _, line := range lines {
		line = textnorm.Normalize(line)
		if heading.IsHeadingLine(line) {
			return line
		}
	}
	for _, line := range lines {
		line = textnorm.Normalize(line)
		if line == "" || utf8.RuneCountInString(line) > 30 {
			continue
		}
		if !textnorm.IsGarbled(line) {
			return line
		}
	}
	return ""
}
