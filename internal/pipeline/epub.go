package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/liushu2048/booktoc/internal/epub"
	"github.com/liushu2048/booktoc/internal/outline"
)

func extractEPUBTOC(ctx context.Context, data []byte, opts Options) (*TOC, error) {
	log := opts.logger()

	book, err := epub.Open(data, log)
	if err != nil {
		return nil, err
	}
	if len(book.Entries) == 0 {
		return nil, ErrNoOutlineFound
	}

	resolver := epub.NewResolver(book.Spine, log)
	resolved := resolver.ResolveAll(book.Entries)

	entries := cleanTitles(book.Entries, func(e outline.Entry) string {
		return sniffEPUBTitle(book, resolver, e)
	}, log)
	entries = refine(ctx, opts.Refiner, entries)
	if len(entries) == 0 {
		return nil, ErrNoOutlineFound
	}

	for _, r := range resolved {
		if r.Degraded {
			log.Warn("anchor resolution degraded",
				zap.String("title", r.Title),
				zap.Int("spineIndex", r.StartUnit))
		}
	}

	return &TOC{
		Title:    book.Metadata.Title,
		Author:   book.Metadata.Creator,
		Language: epubLanguage(book),
		Kind:     KindEPUB,
		Entries:  entries,
	}, nil
}

func extractEPUBChapters(ctx context.Context, data []byte, accepted []outline.Entry, opts Options) ([]outline.Chapter, error) {
	log := opts.logger()

	book, err := epub.Open(data, log)
	if err != nil {
		return nil, err
	}

	entries := accepted
	if len(entries) == 0 {
		if len(book.Entries) == 0 {
			return nil, ErrNoOutlineFound
		}
		resolver := epub.NewResolver(book.Spine, log)
		entries = cleanTitles(book.Entries, func(e outline.Entry) string {
			return sniffEPUBTitle(book, resolver, e)
		}, log)
		entries = refine(ctx, opts.Refiner, entries)
	}
	if len(entries) == 0 {
		return nil, ErrNoOutlineFound
	}

	resolved := epub.NewResolver(book.Spine, log).ResolveAll(entries)

	chapters := make([]outline.Chapter, 0, len(entries))
	for i, res := range resolved {
		end := len(book.Spine)
		if j := endBoundary(entries, i); j < len(entries) {
			end = resolved[j].StartUnit
		}

		content := spineText(book, res.StartUnit, end)
		if end <= res.StartUnit {
			// Next chapter starts in the same document: slice within it.
			content = spineText(book, res.StartUnit, res.StartUnit+1)
			if j := endBoundary(entries, i); j < len(entries) {
				content = sliceBetweenTitles(content, entries[i].Title, entries[j].Title)
			}
		}
		content = truncateAtChildren(content, i, entries)
		chapters = append(chapters, buildChapter(entries[i].Title, content))
	}
	return chapters, nil
}

// spineText concatenates the text of spine documents [start, end).
func spineText(book *epub.Book, start, end int) string {
	var parts []string
	for u := start; u < end && u < len(book.Spine); u++ {
		raw, err := book.ReadSpineItem(u)
		if err != nil {
			continue
		}
		if text := epub.DocumentText(raw); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// sliceBetweenTitles trims content to the span between two headings that
// share one document, keeping the text from the first heading up to the
// second.
func sliceBetweenTitles(content, from, to string) string {
	content = cutAtTitle(content, to)
	if n := titleIndex(content, from); n >= 0 {
		content = content[n:]
	}
	return content
}

func sniffEPUBTitle(book *epub.Book, resolver *epub.Resolver, e outline.Entry) string {
	res := resolver.Resolve(e)
	raw, err := book.ReadSpineItem(res.StartUnit)
	if err != nil {
		return ""
	}
	return epub.SniffHeading(raw)
}

func epubLanguage(book *epub.Book) string {
	if lang := strings.ToLower(book.Metadata.Language); strings.HasPrefix(lang, "zh") {
		return "zh"
	}
	sample := spineText(book, 0, min(3, len(book.Spine)))
	return classifyLanguage(sample)
}
