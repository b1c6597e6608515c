package epub

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	goepub "github.com/taylorskalyo/goreader/epub"
	"go.uber.org/zap"

	"github.com/liushu2048/booktoc/internal/outline"
)

// richOutlineMin is the entry count at which the container navigation
// document is trusted outright, without consulting other sources.
const richOutlineMin = 10

// Book is a parsed EPUB with its reconciled outline and reading order.
type Book struct {
	Entries  []outline.Entry
	Spine    []string
	Metadata Metadata

	reader *Reader
}

// ReadSpineItem returns the raw content of one spine document by index.
func (b *Book) ReadSpineItem(i int) ([]byte, error) {
	if i < 0 || i >= len(b.Spine) {
		return nil, fmt.Errorf("spine index %d out of range [0,%d)", i, len(b.Spine))
	}
	return b.reader.ReadFile(b.Spine[i])
}

// Open parses an EPUB from memory and extracts its outline. The container
// navigation document wins when it is rich enough; otherwise it is
// reconciled against the package object model, and a bare spine scan is
// the last resort. A book with no recoverable outline yields zero entries,
// not an error.
func Open(data []byte, log *zap.Logger) (*Book, error) {
	if log == nil {
		log = zap.NewNop()
	}

	r, err := NewReader(data)
	if err != nil {
		return nil, err
	}
	opfContent, err := r.ReadFile(r.OPFPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read package document: %w", err)
	}
	opf, err := ParseOPF(opfContent, path.Dir(r.OPFPath()))
	if err != nil {
		return nil, err
	}

	book := &Book{
		Spine:    opf.SpinePaths(),
		Metadata: opf.Metadata,
		reader:   r,
	}

	direct, err := ContainerOutline(r, opf)
	if err != nil {
		log.Debug("container outline unavailable", zap.Error(err))
	}
	if len(direct) >= richOutlineMin {
		log.Debug("using container outline",
			zap.Int("entries", len(direct)))
		book.Entries = direct
		return book, nil
	}

	object := ObjectModelOutline(data, log)

	candidates := make([]outline.Candidate, 0, 2)
	if len(direct) > 0 {
		candidates = append(candidates, outline.Candidate{
			Source:  "container",
			Entries: direct,
		})
	}
	if len(object) > 0 {
		candidates = append(candidates, outline.Candidate{
			Source:     "object-model",
			Structured: true,
			Entries:    object,
		})
	}
	book.Entries = outline.Reconcile(candidates, log)

	if len(book.Entries) == 0 {
		book.Entries = SpineFallbackOutline(r, opf, log)
		if len(book.Entries) > 0 {
			log.Debug("using spine fallback outline",
				zap.Int("entries", len(book.Entries)))
		}
	}
	return book, nil
}

// ContainerOutline extracts the navigation document named by the package:
// the NCX when present, the EPUB 3 nav document otherwise.
func ContainerOutline(r *Reader, opf *OPF) ([]outline.Entry, error) {
	ncx, err := LoadNCX(r, opf)
	if err != nil {
		return nil, err
	}
	if ncx == nil {
		return nil, nil
	}
	return flattenNavPoints(ncx.NavPoints, 1, nil), nil
}

// ObjectModelOutline re-reads the EPUB through its package object model
// and walks the navigation control file the manifest declares. It serves
// as an independent second opinion on the outline; failures are logged,
// never fatal.
func ObjectModelOutline(data []byte, log *zap.Logger) []outline.Entry {
	if log == nil {
		log = zap.NewNop()
	}
	rc, err := goepub.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.Debug("object model open failed", zap.Error(err))
		return nil
	}
	if len(rc.Rootfiles) == 0 {
		log.Debug("object model has no rootfiles")
		return nil
	}
	book := rc.Rootfiles[0]

	for _, item := range book.Manifest.Items {
		if item.MediaType != "application/x-dtbncx+xml" {
			continue
		}
		f, err := item.Open()
		if err != nil {
			log.Debug("object model NCX open failed", zap.Error(err))
			return nil
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			log.Debug("object model NCX read failed", zap.Error(err))
			return nil
		}
		ncx, err := parseNCX(content, path.Dir(item.HREF))
		if err != nil {
			log.Debug("object model NCX parse failed", zap.Error(err))
			return nil
		}
		return flattenNavPoints(ncx.NavPoints, 1, nil)
	}
	return nil
}

// SpineFallbackOutline synthesizes a flat outline by sniffing a heading
// from each linear spine document. Documents with no plausible heading
// fall back to their filename stem.
func SpineFallbackOutline(r *Reader, opf *OPF, log *zap.Logger) []outline.Entry {
	if log == nil {
		log = zap.NewNop()
	}
	var entries []outline.Entry
	for _, item := range opf.Spine {
		if !item.Linear || item.Href == "" {
			continue
		}
		content, err := r.ReadFile(item.Href)
		if err != nil {
			log.Debug("spine item unreadable",
				zap.String("href", item.Href), zap.Error(err))
			continue
		}
		title := SniffHeading(content)
		if title == "" {
			title = filenameStem(item.Href)
		}
		entries = append(entries, outline.Entry{
			Level: 1,
			Title: title,
			Href:  item.Href,
		})
	}
	return entries
}

func flattenNavPoints(points []NavPoint, depth int, acc []outline.Entry) []outline.Entry {
	for _, np := range points {
		acc = append(acc, outline.Entry{
			Level:     depth,
			Title:     strings.TrimSpace(np.Label),
			Href:      np.ContentPath,
			PlayOrder: np.PlayOrder,
		})
		acc = flattenNavPoints(np.Children, depth+1, acc)
	}
	return acc
}

func filenameStem(href string) string {
	base := path.Base(stripFragment(href))
	return strings.TrimSuffix(base, path.Ext(base))
}
