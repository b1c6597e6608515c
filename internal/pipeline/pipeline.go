// Package pipeline ties format detection, outline extraction, title repair
// and chapter slicing into the two operations the command line exposes.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/liushu2048/booktoc/internal/heading"
	"github.com/liushu2048/booktoc/internal/outline"
	"github.com/liushu2048/booktoc/internal/textnorm"
)

var ErrNoOutlineFound = errors.New("no outline found")

// Options configures one extraction run.
type Options struct {
	Refiner *outline.Refiner
	Logger  *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// TOC is the extracted table of contents plus the book's identity.
type TOC struct {
	Title    string          `json:"title,omitempty"`
	Author   string          `json:"author,omitempty"`
	Language string          `json:"language"`
	Kind     Kind            `json:"kind"`
	Entries  []outline.Entry `json:"entries"`
}

// ExtractTOC extracts and repairs the outline of a PDF or EPUB held in
// memory. Titles come back normalized, de-garbled where a cleaner source
// exists, and with corrupt chapter numbering rewritten.
func ExtractTOC(ctx context.Context, data []byte, filename string, opts Options) (*TOC, error) {
	kind, err := DetectKind(filename, data)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindPDF:
		return extractPDFTOC(ctx, data, opts)
	case KindEPUB:
		return extractEPUBTOC(ctx, data, opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
}

// ExtractChapters slices the book's text into per-chapter content along
// the accepted outline, typically the result of ExtractTOC after any human
// or automated editing. A nil outline extracts one from the book first.
func ExtractChapters(ctx context.Context, data []byte, filename string, accepted []outline.Entry, opts Options) ([]outline.Chapter, error) {
	kind, err := DetectKind(filename, data)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindPDF:
		return extractPDFChapters(ctx, data, accepted, opts)
	case KindEPUB:
		return extractEPUBChapters(ctx, data, accepted, opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
}

// cleanTitles runs each entry's title through normalization, replaces
// titles that remain garbled with a sniffed fallback when the fallback
// reads better, rewrites corrupt chapter numbering, and drops entries left
// with nothing. sniff may be nil when no secondary title source exists.
func cleanTitles(entries []outline.Entry, sniff func(outline.Entry) string, log *zap.Logger) []outline.Entry {
	if log == nil {
		log = zap.NewNop()
	}
	canon := heading.NewCanonicalizer()
	out := make([]outline.Entry, 0, len(entries))
	for _, e := range entries {
		title := textnorm.Normalize(e.Title)
		if textnorm.IsGarbled(title) && sniff != nil {
			fallback := textnorm.Normalize(sniff(e))
			if chosen := textnorm.ChooseBetter(title, fallback); chosen != title {
				log.Debug("garbled title replaced",
					zap.String("original", title),
					zap.String("replacement", chosen))
				title = chosen
			}
		}
		title = canon.Canonicalize(e.Level, title)
		if title == "" {
			log.Debug("entry dropped, empty title", zap.Int("page", e.Page))
			continue
		}
		e.Title = title
		out = append(out, e)
	}
	return out
}

func refine(ctx context.Context, r *outline.Refiner, entries []outline.Entry) []outline.Entry {
	if r == nil {
		return entries
	}
	return r.Refine(ctx, entries)
}

// classifyLanguage tags a text sample as Chinese or other by CJK density.
func classifyLanguage(sample string) string {
	if textnorm.IsPrimarilyCJK(sample, 0.3) {
		return "zh"
	}
	return "other"
}

// countWords counts non-whitespace runes, the convention for CJK text
// where space-separated words do not exist.
func countWords(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// isTitleNoise reports the characters an outline title and its rendering
// in the body text routinely disagree on.
func isTitleNoise(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}

// titleKey reduces a heading to its comparable core: whitespace and
// punctuation removed, case folded.
func titleKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isTitleNoise(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// titleIndex returns the byte offset of the first occurrence of title in
// content, comparing by titleKey so line wrapping, variant punctuation or
// casing cannot hide the heading. -1 when the title does not occur.
func titleIndex(content, title string) int {
	needle := titleKey(title)
	if needle == "" {
		return -1
	}

	// Build the reduced view alongside a map back to byte offsets.
	var compact strings.Builder
	offsets := make([]int, 0, len(content))
	for i, r := range content {
		if isTitleNoise(r) {
			continue
		}
		r = unicode.ToLower(r)
		compact.WriteRune(r)
		for k := 0; k < utf8.RuneLen(r); k++ {
			offsets = append(offsets, i)
		}
	}
	idx := strings.Index(compact.String(), needle)
	if idx < 0 {
		return -1
	}
	return offsets[idx]
}

// cutAtTitle truncates content just before the first occurrence of title,
// or returns it unchanged when the title does not occur.
func cutAtTitle(content, title string) string {
	if n := titleIndex(content, title); n >= 0 {
		return content[:n]
	}
	return content
}

// truncateAtChildren cuts a parent chapter's content at its first child
// heading, so section text is not duplicated under both levels.
func truncateAtChildren(content string, self int, entries []outline.Entry) string {
	for _, child := range entries[self+1:] {
		if child.Level <= entries[self].Level {
			break
		}
		if cut := cutAtTitle(content, child.Title); len(cut) < len(content) {
			return cut
		}
	}
	return content
}

// endBoundary returns the index of the next entry at the same or a
// shallower level, or len(entries) when the chapter runs to the end.
func endBoundary(entries []outline.Entry, i int) int {
	for j := i + 1; j < len(entries); j++ {
		if entries[j].Level <= entries[i].Level {
			return j
		}
	}
	return len(entries)
}

func buildChapter(title, content string) outline.Chapter {
	content = strings.TrimSpace(content)
	return outline.Chapter{
		Title:     title,
		Content:   content,
		WordCount: countWords(content),
	}
}
