package pipeline

import (
	"context"
	"strings"

	"github.com/liushu2048/booktoc/internal/outline"
	"github.com/liushu2048/booktoc/internal/pdf"
)

func extractPDFTOC(ctx context.Context, data []byte, opts Options) (*TOC, error) {
	doc, err := pdf.Open(data)
	if err != nil {
		return nil, err
	}

	entries := pdfOutline(doc, data, opts)
	if len(entries) == 0 {
		return nil, ErrNoOutlineFound
	}
	entries = refine(ctx, opts.Refiner, entries)
	if len(entries) == 0 {
		return nil, ErrNoOutlineFound
	}

	return &TOC{
		Language: pdfLanguage(doc),
		Kind:     KindPDF,
		Entries:  entries,
	}, nil
}

func extractPDFChapters(ctx context.Context, data []byte, accepted []outline.Entry, opts Options) ([]outline.Chapter, error) {
	doc, err := pdf.Open(data)
	if err != nil {
		return nil, err
	}

	entries := accepted
	if len(entries) == 0 {
		entries = pdfOutline(doc, data, opts)
		if len(entries) == 0 {
			return nil, ErrNoOutlineFound
		}
		entries = refine(ctx, opts.Refiner, entries)
	}
	if len(entries) == 0 {
		return nil, ErrNoOutlineFound
	}

	chapters := make([]outline.Chapter, 0, len(entries))
	for i, e := range entries {
		content := pdfChapterText(doc, entries, i)
		content = truncateAtChildren(content, i, entries)
		chapters = append(chapters, buildChapter(e.Title, content))
	}
	return chapters, nil
}

// pdfOutline extracts the bookmark tree, falls back to a page heading scan
// when the document carries none, and repairs the titles.
func pdfOutline(doc *pdf.Document, data []byte, opts Options) []outline.Entry {
	log := opts.logger()

	entries := pdf.BookmarkOutline(data, log)
	if len(entries) == 0 {
		entries = pdf.ScanOutline(doc, log)
	}
	return cleanTitles(entries, func(e outline.Entry) string {
		return pdf.SniffPageHeading(doc, e.Page)
	}, log)
}

// pdfChapterText gathers the chapter's pages, through the page where the
// next sibling-or-shallower chapter starts, and trims the joined text at
// that chapter's heading.
func pdfChapterText(doc *pdf.Document, entries []outline.Entry, i int) string {
	start := entries[i].Page
	if start < 1 {
		start = 1
	}

	j := endBoundary(entries, i)
	endPage := doc.PageCount()
	var nextTitle string
	if j < len(entries) {
		endPage = entries[j].Page
		nextTitle = entries[j].Title
	}

	var pages []string
	for p := start; p <= endPage && p <= doc.PageCount(); p++ {
		pages = append(pages, doc.PageText(p))
	}
	return chapterSpanText(pages, entries[i].Title, nextTitle)
}

// chapterSpanText joins a chapter's page texts and cuts them at the first
// occurrence of the next chapter's heading, wherever in the span it
// appears. nextTitle is empty for the final chapter. When the heading is
// not found and the span covers more than one page, the shared boundary
// page belongs to the next chapter and is dropped; a single-page span is a
// chapter sharing its page with the next, so its text starts at its own
// heading.
func chapterSpanText(pages []string, ownTitle, nextTitle string) string {
	content := joinPages(pages)
	if nextTitle == "" {
		return content
	}

	if cut := cutAtTitle(content, nextTitle); len(cut) < len(content) {
		content = cut
	} else if len(pages) > 1 {
		content = joinPages(pages[:len(pages)-1])
	}
	if len(pages) == 1 {
		if n := titleIndex(content, ownTitle); n >= 0 {
			content = content[n:]
		}
	}
	return content
}

func joinPages(pages []string) string {
	var parts []string
	for _, p := range pages {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}

// pdfLanguage samples the opening pages to classify the document language.
func pdfLanguage(doc *pdf.Document) string {
	var sample strings.Builder
	for p := 1; p <= doc.PageCount() && p <= 3; p++ {
		sample.WriteString(doc.PageText(p))
	}
	return classifyLanguage(sample.String())
}
