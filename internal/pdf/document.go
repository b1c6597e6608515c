// Package pdf extracts outlines and page text from PDF documents. It uses
// ledongthuc/pdf for page content and layout and pdfcpu for the bookmark
// tree, both pure Go.
package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// rowTolerance is the vertical distance in points within which glyphs are
// considered to sit on the same text row.
const rowTolerance = 2.0

// Document is an open PDF held in memory.
type Document struct {
	data   []byte
	reader *pdf.Reader
}

func Open(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty PDF content")
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &Document{data: data, reader: r}, nil
}

// Bytes returns the raw document, for readers that need their own pass.
func (d *Document) Bytes() []byte {
	return d.data
}

func (d *Document) PageCount() int {
	return d.reader.NumPage()
}

// PageText returns the plain text of one page. Pages are 1-based;
// unreadable pages yield an empty string rather than an error, since a
// scanned or malformed page should not abort the whole book.
func (d *Document) PageText(n int) string {
	if n < 1 || n > d.reader.NumPage() {
		return ""
	}
	page := d.reader.Page(n)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// PageLines returns the text of one page as visual lines: glyphs grouped
// into rows by Y position, rows ordered top to bottom, glyphs within a row
// ordered left to right.
func (d *Document) PageLines(n int) []string {
	rows := d.pageRows(n)
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var b strings.Builder
		for _, t := range row {
			b.WriteString(t.S)
		}
		if line := strings.TrimSpace(b.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// pageRows groups the page's glyphs into rows. Malformed content streams
// can panic inside the parser, so the walk is guarded.
func (d *Document) pageRows(n int) (rows [][]pdf.Text) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
		}
	}()

	if n < 1 || n > d.reader.NumPage() {
		return nil
	}
	page := d.reader.Page(n)
	if page.V.IsNull() {
		return nil
	}
	texts := page.Content().Text
	if len(texts) == 0 {
		return nil
	}

	type bucket struct {
		yMin, yMax float64
		texts      []pdf.Text
	}
	var buckets []bucket
	for _, t := range texts {
		placed := false
		for i := range buckets {
			if t.Y >= buckets[i].yMin-rowTolerance && t.Y <= buckets[i].yMax+rowTolerance {
				buckets[i].texts = append(buckets[i].texts, t)
				if t.Y < buckets[i].yMin {
					buckets[i].yMin = t.Y
				}
				if t.Y > buckets[i].yMax {
					buckets[i].yMax = t.Y
				}
				placed = true
				break
			}
		}
		if !placed {
			buckets = append(buckets, bucket{yMin: t.Y, yMax: t.Y, texts: []pdf.Text{t}})
		}
	}

	// PDF Y grows upward, so higher Y comes first on the page.
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].yMax > buckets[j].yMax
	})

	rows = make([][]pdf.Text, len(buckets))
	for i, b := range buckets {
		row := b.texts
		sort.Slice(row, func(a, c int) bool { return row[a].X < row[c].X })
		rows[i] = row
	}
	return rows
}
