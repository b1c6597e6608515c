package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestEPUB(t *testing.T) string {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	mw, _ := w.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	mw.Write([]byte("application/epub+zip"))
	cw, _ := w.Create("META-INF/container.xml")
	cw.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`))
	files := map[string]string{
		"OEBPS/content.opf": `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>命令行测试书</dc:title>
    <dc:language>zh</dc:language>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="ch1"/>
  </spine>
</package>`,
		"OEBPS/toc.ncx": `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <head/>
  <navMap>
    <navPoint id="np1" playOrder="1">
      <navLabel><text>第一章 开端</text></navLabel>
      <content src="ch1.xhtml"/>
    </navPoint>
  </navMap>
</ncx>`,
		"OEBPS/ch1.xhtml": `<html><body><h1>第一章 开端</h1><p>故事从这里开始。</p></body></html>`,
	}
	for path, content := range files {
		fw, err := w.Create(path)
		if err != nil {
			t.Fatalf("zip create %s: %v", path, err)
		}
		fw.Write([]byte(content))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}

	path := filepath.Join(t.TempDir(), "book.epub")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write epub: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTOCCommand(t *testing.T) {
	path := writeTestEPUB(t)
	out, err := runCommand(t, "toc", path, "--config", filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("toc command error = %v", err)
	}
	if !strings.Contains(out, "第一章 开端") {
		t.Errorf("output missing chapter title: %s", out)
	}
	if !strings.Contains(out, `"kind": "epub"`) {
		t.Errorf("output missing kind: %s", out)
	}
}

func TestChaptersCommand(t *testing.T) {
	path := writeTestEPUB(t)
	out, err := runCommand(t, "chapters", path, "--config", filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("chapters command error = %v", err)
	}
	if !strings.Contains(out, "故事从这里开始") {
		t.Errorf("output missing chapter content: %s", out)
	}
	if !strings.Contains(out, `"word_count"`) {
		t.Errorf("output missing word count: %s", out)
	}
}

func TestChaptersCommand_AcceptedTOC(t *testing.T) {
	path := writeTestEPUB(t)

	// An edited TOC, as a reader would save it after running the toc command.
	tocPath := filepath.Join(t.TempDir(), "toc.json")
	edited := `{"entries": [{"level": 1, "title": "第一章 新的开端", "href": "ch1.xhtml"}]}`
	if err := os.WriteFile(tocPath, []byte(edited), 0o644); err != nil {
		t.Fatalf("write toc: %v", err)
	}

	out, err := runCommand(t, "chapters", path, "--toc", tocPath,
		"--config", filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("chapters command error = %v", err)
	}
	if !strings.Contains(out, "第一章 新的开端") {
		t.Errorf("output missing edited chapter title: %s", out)
	}
	if !strings.Contains(out, "故事从这里开始") {
		t.Errorf("output missing chapter content: %s", out)
	}
}

func TestChaptersCommand_BadTOCFile(t *testing.T) {
	path := writeTestEPUB(t)
	tocPath := filepath.Join(t.TempDir(), "toc.json")
	if err := os.WriteFile(tocPath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write toc: %v", err)
	}
	if _, err := runCommand(t, "chapters", path, "--toc", tocPath,
		"--config", filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatal("chapters command error = nil, want parse error")
	}
}

func TestTOCCommand_MissingFile(t *testing.T) {
	_, err := runCommand(t, "toc", "/no/such/book.epub")
	if err == nil {
		t.Fatal("toc command error = nil, want error")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version command error = %v", err)
	}
	if !strings.Contains(out, "booktoc") {
		t.Errorf("version output = %q", out)
	}
}
