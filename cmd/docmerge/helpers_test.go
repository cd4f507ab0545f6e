package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-docmerge"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fakes for the external renderer and merger
// ---------------------------------------------------------------------------

// Compile-time interface checks.
var (
	_ docmerge.DocumentConverter = (*stubConverter)(nil)
	_ docmerge.ArtifactMerger    = (*stubMerger)(nil)
	_ docmerge.CommandRunner     = (*fakeRunner)(nil)
)

// stubConverter writes a placeholder PDF per document, or fails with err.
type stubConverter struct {
	err error

	mu    sync.Mutex
	calls int
}

func (c *stubConverter) Convert(_ context.Context, req docmerge.ConvertRequest) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	if c.err != nil {
		return "", c.err
	}
	pdf := filepath.Join(req.OutDir, strings.TrimSuffix(filepath.Base(req.Input), ".docx")+".pdf")
	return pdf, os.WriteFile(pdf, []byte("%PDF-1.4 stub"), 0o644)
}

// stubMerger records its inputs and writes their count to dest.
type stubMerger struct {
	mu     sync.Mutex
	inputs []string
}

func (m *stubMerger) Merge(_ context.Context, inputs []string, dest string) error {
	m.mu.Lock()
	m.inputs = append([]string(nil), inputs...)
	m.mu.Unlock()
	return os.WriteFile(dest, []byte(fmt.Sprint(len(inputs))), 0o644)
}

// fakeRunner returns a canned output for every command.
type fakeRunner struct {
	out string
	err error
}

func (r *fakeRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return []byte(r.out), r.err
}

// fixedNow is the clock used by test environments.
var fixedNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

// testEnv returns an Environment writing to fresh buffers.
func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Environment{
		Now:    func() time.Time { return fixedNow },
		Stdout: &stdout,
		Stderr: &stderr,
		Runner: &fakeRunner{out: "LibreOffice 7.6.4.1 60(Build:1)\n"},
	}, &stdout, &stderr
}

// writeFile writes content under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeDocx writes a minimal DOCX with one paragraph per field.
func writeDocx(t *testing.T, dir string, fields ...string) string {
	t.Helper()

	var body strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&body, `<w:p><w:fldSimple w:instr=" MERGEFIELD %s "><w:r><w:t>«%s»</w:t></w:r></w:fldSimple></w:p>`, f, f)
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `<w:sectPr/></w:body></w:document>`

	path := filepath.Join(dir, "letter.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, content := range map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"word/document.xml":   doc,
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(w, content); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

// jsonLines decodes every stdout line, failing on anything that is not JSON.
func jsonLines(t *testing.T, out string) []map[string]any {
	t.Helper()

	var lines []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(out), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(l), &m); err != nil {
			t.Fatalf("stdout line is not JSON: %q (%v)", l, err)
		}
		lines = append(lines, m)
	}
	return lines
}
