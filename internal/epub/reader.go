// Package epub parses EPUB containers directly: ZIP + container.xml + OPF +
// NCX/NAV, without going through a higher-level object model. The direct
// walk is the most reliable outline source for damaged books; the
// object-model walk in outline.go exists as a competing candidate.
package epub

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Reader provides access to the contents of an in-memory EPUB container.
// It holds no file handle; the byte buffer is owned by the caller.
type Reader struct {
	files   map[string]*zip.File
	opfPath string
}

// container.xml structure
type container struct {
	Rootfiles struct {
		Rootfile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

var (
	ErrInvalidMimetype   = errors.New("invalid mimetype: must be 'application/epub+zip'")
	ErrContainerNotFound = errors.New("META-INF/container.xml not found")
	ErrOPFPathNotFound   = errors.New("OPF path not found in container.xml")
	ErrFileNotFound      = errors.New("file not found in EPUB")
)

// NewReader opens an EPUB from its raw bytes and validates its structure.
// A missing mimetype file is tolerated (common in the wild); a present but
// wrong one is not.
func NewReader(b []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("failed to open EPUB: %w", err)
	}

	r := &Reader{files: make(map[string]*zip.File)}
	for _, f := range zr.File {
		r.files[normalizeZipPath(f.Name)] = f
	}

	if err := r.validateMimetype(); err != nil {
		return nil, err
	}
	if err := r.parseContainer(); err != nil {
		return nil, err
	}
	return r, nil
}

// OPFPath returns the path to the OPF file.
func (r *Reader) OPFPath() string {
	return r.opfPath
}

// HasFile reports whether the container holds the given path.
func (r *Reader) HasFile(path string) bool {
	_, ok := r.files[normalizeZipPath(path)]
	return ok
}

// ReadFile reads the contents of a file from the EPUB.
func (r *Reader) ReadFile(path string) ([]byte, error) {
	path = normalizeZipPath(path)
	f, ok := r.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

func (r *Reader) validateMimetype() error {
	if _, ok := r.files["mimetype"]; !ok {
		return nil
	}
	content, err := r.ReadFile("mimetype")
	if err != nil {
		return fmt.Errorf("failed to read mimetype: %w", err)
	}
	if strings.TrimSpace(string(content)) != "application/epub+zip" {
		return ErrInvalidMimetype
	}
	return nil
}

func (r *Reader) parseContainer() error {
	content, err := r.ReadFile("META-INF/container.xml")
	if err != nil {
		return ErrContainerNotFound
	}

	var c container
	if err := xml.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("failed to parse container.xml: %w", err)
	}

	for _, rf := range c.Rootfiles.Rootfile {
		if rf.MediaType == "application/oebps-package+xml" || rf.MediaType == "" {
			r.opfPath = normalizeZipPath(rf.FullPath)
			return nil
		}
	}
	if len(c.Rootfiles.Rootfile) > 0 {
		r.opfPath = normalizeZipPath(c.Rootfiles.Rootfile[0].FullPath)
		return nil
	}
	return ErrOPFPathNotFound
}

// normalizeZipPath normalizes archive paths (removes ./ prefix).
func normalizeZipPath(path string) string {
	return strings.TrimPrefix(path, "./")
}
