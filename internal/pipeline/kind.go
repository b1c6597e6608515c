package pipeline

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind identifies the container format of a book.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindEPUB Kind = "epub"
)

var ErrUnsupportedFormat = errors.New("unsupported book format")

// DetectKind identifies a book by file extension first and content
// sniffing second, so a mislabeled file still opens under its real format.
func DetectKind(filename string, data []byte) (Kind, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF, nil
	case ".epub":
		return KindEPUB, nil
	}

	if bytes.HasPrefix(data, []byte("%PDF")) {
		return KindPDF, nil
	}
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) && looksLikeEPUB(data) {
		return KindEPUB, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
}

// looksLikeEPUB reports whether a ZIP archive carries the EPUB container
// descriptor. A plain ZIP is not a book.
func looksLikeEPUB(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name == "META-INF/container.xml" {
			return true
		}
	}
	return false
}
