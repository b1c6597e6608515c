package epub

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NCX represents the parsed navigation control structure from an NCX or NAV
// document.
type NCX struct {
	UID       string
	Depth     int
	DocTitle  string
	NavPoints []NavPoint
}

// NavPoint represents a single navigation point in the table of contents.
type NavPoint struct {
	ID          string
	PlayOrder   int
	Label       string
	ContentPath string // fragment-free, absolute path within EPUB
	Fragment    string // fragment identifier (without #)
	Children    []NavPoint
}

// splitFragment splits a source path into the path and fragment identifier.
func splitFragment(src string) (path, fragment string) {
	if src == "" {
		return "", ""
	}
	parts := strings.SplitN(src, "#", 2)
	path = parts[0]
	if len(parts) == 2 {
		fragment = parts[1]
	}
	return path, fragment
}

// NCX XML structure.
type xmlNCX struct {
	Head struct {
		Meta []struct {
			Name    string `xml:"name,attr"`
			Content string `xml:"content,attr"`
		} `xml:"meta"`
	} `xml:"head"`
	DocTitle struct {
		Text string `xml:"text"`
	} `xml:"docTitle"`
	NavMap struct {
		NavPoints []xmlNavPoint `xml:"navPoint"`
	} `xml:"navMap"`
}

type xmlNavPoint struct {
	ID        string `xml:"id,attr"`
	PlayOrder string `xml:"playOrder,attr"`
	Label     struct {
		Text string `xml:"text"`
	} `xml:"navLabel"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []xmlNavPoint `xml:"navPoint"`
}

// parseNCX parses NCX content. baseDir is the directory holding the NCX
// file; content srcs are resolved against it.
func parseNCX(content []byte, baseDir string) (*NCX, error) {
	var doc xmlNCX
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse NCX XML: %w", err)
	}

	ncx := &NCX{DocTitle: strings.TrimSpace(doc.DocTitle.Text)}
	for _, m := range doc.Head.Meta {
		switch m.Name {
		case "dtb:uid":
			ncx.UID = m.Content
		case "dtb:depth":
			ncx.Depth, _ = strconv.Atoi(m.Content)
		}
	}
	ncx.NavPoints = convertNavPoints(doc.NavMap.NavPoints, baseDir)
	return ncx, nil
}

func convertNavPoints(points []xmlNavPoint, baseDir string) []NavPoint {
	var out []NavPoint
	for _, p := range points {
		src, fragment := splitFragment(p.Content.Src)
		np := NavPoint{
			ID:          p.ID,
			Label:       strings.TrimSpace(p.Label.Text),
			ContentPath: resolveNavPath(baseDir, src),
			Fragment:    fragment,
		}
		np.PlayOrder, _ = strconv.Atoi(p.PlayOrder)
		np.Children = convertNavPoints(p.Children, baseDir)
		out = append(out, np)
	}
	return out
}

// parseNAV parses an EPUB3 HTML navigation document: the <nav> whose
// epub:type tokens include "toc", walked as nested ordered lists. IDs and
// playOrder are synthesized in document order since the nav format has
// neither.
func parseNAV(content []byte, baseDir string) (*NCX, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse NAV document: %w", err)
	}

	nav := findTOCNav(doc)
	if nav == nil {
		return &NCX{}, nil
	}

	ncx := &NCX{DocTitle: strings.TrimSpace(doc.Find("title").First().Text())}
	order := 0
	ncx.NavPoints = parseNavList(nav.ChildrenFiltered("ol").First(), baseDir, &order)
	return ncx, nil
}

// findTOCNav picks the toc nav element, falling back to the first nav.
func findTOCNav(doc *goquery.Document) *goquery.Selection {
	var toc *goquery.Selection
	doc.Find("nav").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		typ, _ := s.Attr("epub:type")
		for _, token := range strings.Fields(typ) {
			if token == "toc" {
				toc = s
				return false
			}
		}
		return true
	})
	if toc != nil {
		return toc
	}
	first := doc.Find("nav").First()
	if first.Length() == 0 {
		return nil
	}
	return first
}

func parseNavList(ol *goquery.Selection, baseDir string, order *int) []NavPoint {
	var out []NavPoint
	if ol == nil || ol.Length() == 0 {
		return out
	}
	ol.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		*order++
		np := NavPoint{
			ID:        "nav-" + strconv.Itoa(*order),
			PlayOrder: *order,
		}

		// Strip nested lists first so a child's link is never mistaken
		// for this entry's own.
		own := li.Clone()
		own.Find("ol, ul").Remove()
		link := own.Find("a").First()
		if link.Length() > 0 {
			np.Label = strings.TrimSpace(link.Text())
			if href, ok := link.Attr("href"); ok {
				src, fragment := splitFragment(href)
				np.ContentPath = resolveNavPath(baseDir, src)
				np.Fragment = fragment
			}
		} else {
			// Heading-only entry: the li's own text.
			np.Label = strings.TrimSpace(own.Text())
		}

		np.Children = parseNavList(li.ChildrenFiltered("ol").First(), baseDir, order)
		out = append(out, np)
	})
	return out
}

// findNAVPath locates the EPUB3 navigation document in the manifest.
func findNAVPath(opf *OPF) (string, bool) {
	for _, item := range opf.Manifest {
		for _, prop := range item.Properties {
			if prop == "nav" {
				return item.Href, true
			}
		}
	}
	return "", false
}

// LoadNCX loads navigation data, preferring the NCX document and falling
// back to the EPUB3 NAV document. Returns (nil, nil) when the book has
// neither; that is a condition for the spine fallback, not an error.
func LoadNCX(r *Reader, opf *OPF) (*NCX, error) {
	if opf.NCXPath != "" {
		content, err := r.ReadFile(opf.NCXPath)
		switch {
		case err == nil:
			return parseNCX(content, path.Dir(opf.NCXPath))
		case errors.Is(err, ErrFileNotFound):
			// fall through to NAV
		default:
			return nil, err
		}
	}

	if navPath, ok := findNAVPath(opf); ok {
		content, err := r.ReadFile(navPath)
		if err == nil {
			return parseNAV(content, path.Dir(navPath))
		}
		if !errors.Is(err, ErrFileNotFound) {
			return nil, err
		}
	}

	return nil, nil
}

// resolveNavPath resolves a navigation src against the directory of the
// document it appeared in.
func resolveNavPath(baseDir, src string) string {
	if src == "" {
		return ""
	}
	if baseDir == "" || baseDir == "." {
		return path.Clean(src)
	}
	return path.Clean(path.Join(baseDir, src))
}
