package epub

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func TestNewReader_OPFPath(t *testing.T) {
	r, err := NewReader(buildTestEPUB(t, map[string]string{
		"OEBPS/content.opf": "<package/>",
	}))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	if got := r.OPFPath(); got != "OEBPS/content.opf" {
		t.Errorf("OPFPath() = %q, want %q", got, "OEBPS/content.opf")
	}
}

func TestNewReader_InvalidMimetype(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	mw, _ := w.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	mw.Write([]byte("application/zip"))
	cw, _ := w.Create("META-INF/container.xml")
	cw.Write([]byte(`<container><rootfiles><rootfile full-path="content.opf"/></rootfiles></container>`))
	w.Close()

	_, err := NewReader(buf.Bytes())
	if !errors.Is(err, ErrInvalidMimetype) {
		t.Errorf("NewReader() error = %v, want ErrInvalidMimetype", err)
	}
}

func TestNewReader_MissingMimetypeTolerated(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	cw, _ := w.Create("META-INF/container.xml")
	cw.Write([]byte(`<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`))
	w.Close()

	r, err := NewReader(buf.Bytes())
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	if r.OPFPath() != "content.opf" {
		t.Errorf("OPFPath() = %q, want %q", r.OPFPath(), "content.opf")
	}
}

func TestNewReader_MissingContainer(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	cw, _ := w.Create("chapter1.xhtml")
	cw.Write([]byte("<html/>"))
	w.Close()

	_, err := NewReader(buf.Bytes())
	if !errors.Is(err, ErrContainerNotFound) {
		t.Errorf("NewReader() error = %v, want ErrContainerNotFound", err)
	}
}

func TestNewReader_NotAZip(t *testing.T) {
	_, err := NewReader([]byte("definitely not a zip archive"))
	if err == nil {
		t.Fatal("NewReader() error = nil, want error")
	}
}

func TestReadFile(t *testing.T) {
	r, err := NewReader(buildTestEPUB(t, map[string]string{
		"OEBPS/chapter1.xhtml": "<html><body>hello</body></html>",
	}))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}

	got, err := r.ReadFile("OEBPS/chapter1.xhtml")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "<html><body>hello</body></html>" {
		t.Errorf("ReadFile() = %q", got)
	}

	if !r.HasFile("OEBPS/chapter1.xhtml") {
		t.Error("HasFile() = false, want true")
	}
	if r.HasFile("OEBPS/other.xhtml") {
		t.Error("HasFile() = true, want false")
	}

	_, err = r.ReadFile("nonexistent.file")
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("ReadFile() error = %v, want ErrFileNotFound", err)
	}
}
