package epub

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/liushu2048/booktoc/internal/heading"
	"github.com/liushu2048/booktoc/internal/textnorm"
)

// blockTags are elements that terminate a text line when walking XHTML.
var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "br": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "blockquote": true, "pre": true,
	"table": true, "figure": true, "hr": true,
}

// TextLines extracts the readable text of an XHTML document as lines, one
// per block element, with scripts and styles dropped. Parse failures yield
// nil; a content file that cannot be read is an empty unit, not an error.
func TextLines(content []byte) []string {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil
	}

	var lines []string
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			lines = append(lines, s)
		}
		cur.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				if cur.Len() > 0 {
					cur.WriteByte(' ')
				}
				cur.WriteString(t)
			}
		}
		block := n.Type == html.ElementNode && blockTags[n.Data]
		if block {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			flush()
		}
	}
	walk(doc)
	flush()
	return lines
}

// DocumentText returns the full readable text of an XHTML document,
// newline-joined.
func DocumentText(content []byte) string {
	return strings.Join(TextLines(content), "\n")
}

// maxSniffedHeadingLen bounds how long a sniffed heading line may be;
// anything longer is body text.
const maxSniffedHeadingLen = 50

// SniffHeading guesses a chapter title for a spine document with no
// navigation entry: the first non-empty heading tag, else the first short
// opening line that reads like a chapter heading. Empty string when
// nothing plausible exists.
func SniffHeading(content []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err == nil {
		title := ""
		doc.Find("h1, h2, h3, h4, h5, h6").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if t := strings.TrimSpace(s.Text()); t != "" {
				title = t
				return false
			}
			return true
		})
		if title != "" && !textnorm.IsGarbled(title) {
			return title
		}
	}

	// Only the opening lines are heading candidates.
	lines := TextLines(content)
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		if utf8.RuneCountInString(line) > maxSniffedHeadingLen {
			continue
		}
		if heading.IsHeadingLine(line) && !textnorm.IsGarbled(line) {
			return line
		}
	}
	return ""
}
